package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/tatylu/storefront/internal/events"
	"github.com/tatylu/storefront/internal/models"
	"github.com/tatylu/storefront/internal/pricing"
	"github.com/tatylu/storefront/internal/repository"
)

// fakeCatalog tracks collaborator calls so tests can assert when the
// checkout flow must not touch it.
type fakeCatalog struct {
	products      map[string]models.Product
	resolveCalls  int
	decrements    map[string]int
	failDecrement bool
	failResolve   bool
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: map[string]models.Product{
			"p1": {ID: "p1", Name: "Plain Widget", Price: 10.00, Stock: 100},
			"p2": {ID: "p2", Name: "Rare Widget", Price: 25.00, Stock: 2},
		},
		decrements: make(map[string]int),
	}
}

func (c *fakeCatalog) GetAll(ctx context.Context) ([]models.Product, error) {
	out := make([]models.Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	return out, nil
}

func (c *fakeCatalog) GetByKey(ctx context.Context, key string) (*models.Product, error) {
	p, ok := c.products[key]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return &p, nil
}

func (c *fakeCatalog) Resolve(ctx context.Context, keys []string) (map[string]models.Product, error) {
	c.resolveCalls++
	if c.failResolve {
		return nil, errors.New("catalog unavailable")
	}
	out := make(map[string]models.Product)
	for _, key := range keys {
		if p, ok := c.products[key]; ok {
			out[key] = p
		}
	}
	return out, nil
}

func (c *fakeCatalog) DecrementStock(ctx context.Context, key string, amount int) (*models.Product, error) {
	if c.failDecrement {
		return nil, errors.New("catalog unavailable")
	}
	p, ok := c.products[key]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	if amount > p.Stock {
		return nil, &repository.InsufficientStockError{Product: p.Name}
	}
	p.Stock -= amount
	c.products[key] = p
	c.decrements[key] += amount
	return &p, nil
}

// fakePublisher records published events; it can be told to fail.
type fakePublisher struct {
	published []events.OrderEvent
	fail      bool
}

func (p *fakePublisher) PublishOrder(ctx context.Context, event events.OrderEvent) error {
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, event)
	return nil
}

type checkoutFixture struct {
	catalog   *fakeCatalog
	orders    *repository.InMemoryOrderStore
	users     *repository.InMemoryUserStore
	publisher *fakePublisher
	service   *CheckoutService
}

func newCheckoutFixture(t *testing.T, status models.OrderStatus) *checkoutFixture {
	t.Helper()

	f := &checkoutFixture{
		catalog:   newFakeCatalog(),
		orders:    repository.NewInMemoryOrderStore(),
		users:     repository.NewInMemoryUserStore(),
		publisher: &fakePublisher{},
	}
	f.service = NewCheckoutService(
		f.catalog,
		f.orders,
		f.users,
		pricing.NewEngine(pricing.DefaultPolicy()),
		f.publisher,
		status,
		slog.Default(),
	)
	return f
}

func TestCheckoutService_Checkout(t *testing.T) {
	f := newCheckoutFixture(t, "")

	result, err := f.service.Checkout(context.Background(), CheckoutRequest{
		UserID:         "user-1",
		Items:          []models.LineItem{{ProductID: "p1", Quantity: 3}},
		ShippingOption: "standard",
	})
	if err != nil {
		t.Fatalf("Checkout() unexpected error = %v", err)
	}

	if result.OrderID == "" {
		t.Error("Checkout() order ID is empty")
	}
	// 3 x 10.00: subtotal 30, tax 3.60, shipping 2.00, total 35.60.
	if result.Summary.Total != 35.60 {
		t.Errorf("Total = %v, want 35.60", result.Summary.Total)
	}
	if result.LoyaltyPointsAwarded != 35 {
		t.Errorf("LoyaltyPointsAwarded = %d, want 35", result.LoyaltyPointsAwarded)
	}

	// Order persisted with the default initial status.
	order, err := f.orders.GetByID(context.Background(), result.OrderID)
	if err != nil {
		t.Fatalf("order not persisted: %v", err)
	}
	if order.Status != models.StatusConfirmed {
		t.Errorf("Status = %s, want confirmed", order.Status)
	}

	// Stock decremented.
	if f.catalog.decrements["p1"] != 3 {
		t.Errorf("stock decrement = %d, want 3", f.catalog.decrements["p1"])
	}

	// Loyalty credited.
	account, err := f.users.GetAccount(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetAccount() unexpected error = %v", err)
	}
	if account.PointsBalance != 35 {
		t.Errorf("PointsBalance = %d, want 35", account.PointsBalance)
	}

	// Order event published.
	if len(f.publisher.published) != 1 {
		t.Fatalf("published %d events, want 1", len(f.publisher.published))
	}
	if f.publisher.published[0].OrderID != result.OrderID {
		t.Errorf("event order id = %s, want %s", f.publisher.published[0].OrderID, result.OrderID)
	}
}

func TestCheckoutService_Checkout_CouponAndTier(t *testing.T) {
	f := newCheckoutFixture(t, "")

	// user-3 sits at 4501 points (GOLD); a big enough order promotes them.
	result, err := f.service.Checkout(context.Background(), CheckoutRequest{
		UserID:     "user-3",
		Items:      []models.LineItem{{ProductID: "p1", Quantity: 3}},
		CouponCode: "PROMO10",
	})
	if err != nil {
		t.Fatalf("Checkout() unexpected error = %v", err)
	}

	// Subtotal 30, coupon 3.00, tax 3.24, shipping 2.00 -> 32.24.
	if result.Summary.CouponDiscount != 3.00 {
		t.Errorf("CouponDiscount = %v, want 3.00", result.Summary.CouponDiscount)
	}
	if result.Summary.Total != 32.24 {
		t.Errorf("Total = %v, want 32.24", result.Summary.Total)
	}

	account, err := f.users.GetAccount(context.Background(), "user-3")
	if err != nil {
		t.Fatalf("GetAccount() unexpected error = %v", err)
	}
	if account.PointsBalance != 4533 {
		t.Errorf("PointsBalance = %d, want 4533", account.PointsBalance)
	}
	if account.Tier != models.TierGold {
		t.Errorf("Tier = %s, want GOLD (4533 is below the platinum threshold)", account.Tier)
	}
}

func TestCheckoutService_Checkout_EmptyCart(t *testing.T) {
	f := newCheckoutFixture(t, "")

	_, err := f.service.Checkout(context.Background(), CheckoutRequest{UserID: "user-1"})
	if !errors.Is(err, ErrEmptyCart) {
		t.Errorf("error = %v, want ErrEmptyCart", err)
	}

	// No collaborator calls for an empty cart.
	if f.catalog.resolveCalls != 0 {
		t.Errorf("catalog resolve calls = %d, want 0", f.catalog.resolveCalls)
	}
	orders, _ := f.orders.ListRecent(context.Background(), 10)
	if len(orders) != 0 {
		t.Errorf("orders persisted = %d, want 0", len(orders))
	}
}

func TestCheckoutService_Checkout_InsufficientStock(t *testing.T) {
	f := newCheckoutFixture(t, "")

	_, err := f.service.Checkout(context.Background(), CheckoutRequest{
		UserID: "user-1",
		Items:  []models.LineItem{{ProductID: "p2", Quantity: 3}},
	})

	var stockErr *repository.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("error = %v, want *InsufficientStockError", err)
	}
	if stockErr.Product != "Rare Widget" {
		t.Errorf("error names %q, want the offending product", stockErr.Product)
	}

	// Nothing persisted, nothing decremented.
	orders, _ := f.orders.ListRecent(context.Background(), 10)
	if len(orders) != 0 {
		t.Errorf("orders persisted = %d, want 0", len(orders))
	}
	if len(f.catalog.decrements) != 0 {
		t.Errorf("stock decremented despite failed validation: %v", f.catalog.decrements)
	}
}

func TestCheckoutService_Checkout_Errors(t *testing.T) {
	f := newCheckoutFixture(t, "")

	tests := []struct {
		name    string
		items   []models.LineItem
		wantErr error
	}{
		{"zero quantity", []models.LineItem{{ProductID: "p1", Quantity: 0}}, ErrInvalidQuantity},
		{"negative quantity", []models.LineItem{{ProductID: "p1", Quantity: -2}}, ErrInvalidQuantity},
		{"unknown product", []models.LineItem{{ProductID: "ghost", Quantity: 1}}, ErrProductNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Checkout(context.Background(), CheckoutRequest{UserID: "user-1", Items: tt.items})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckoutService_Checkout_BestEffortSteps(t *testing.T) {
	t.Run("loyalty failure does not fail checkout", func(t *testing.T) {
		f := newCheckoutFixture(t, "")

		result, err := f.service.Checkout(context.Background(), CheckoutRequest{
			UserID: "stranger",
			Items:  []models.LineItem{{ProductID: "p1", Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("Checkout() unexpected error = %v", err)
		}
		if result.LoyaltyPointsAwarded != 0 {
			t.Errorf("LoyaltyPointsAwarded = %d, want 0", result.LoyaltyPointsAwarded)
		}
		if _, err := f.orders.GetByID(context.Background(), result.OrderID); err != nil {
			t.Errorf("order should stand despite loyalty failure: %v", err)
		}
	})

	t.Run("stock decrement failure does not fail checkout", func(t *testing.T) {
		f := newCheckoutFixture(t, "")
		f.catalog.failDecrement = true

		result, err := f.service.Checkout(context.Background(), CheckoutRequest{
			UserID: "user-1",
			Items:  []models.LineItem{{ProductID: "p1", Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("Checkout() unexpected error = %v", err)
		}
		if _, err := f.orders.GetByID(context.Background(), result.OrderID); err != nil {
			t.Errorf("order should stand despite decrement failure: %v", err)
		}
	})

	t.Run("publish failure does not fail checkout", func(t *testing.T) {
		f := newCheckoutFixture(t, "")
		f.publisher.fail = true

		if _, err := f.service.Checkout(context.Background(), CheckoutRequest{
			UserID: "user-1",
			Items:  []models.LineItem{{ProductID: "p1", Quantity: 1}},
		}); err != nil {
			t.Fatalf("Checkout() unexpected error = %v", err)
		}
	})
}

func TestCheckoutService_Checkout_CatalogDown(t *testing.T) {
	f := newCheckoutFixture(t, "")
	f.catalog.failResolve = true

	_, err := f.service.Checkout(context.Background(), CheckoutRequest{
		UserID: "user-1",
		Items:  []models.LineItem{{ProductID: "p1", Quantity: 1}},
	})
	if !errors.Is(err, ErrCollaboratorUnavailable) {
		t.Errorf("error = %v, want ErrCollaboratorUnavailable", err)
	}

	orders, _ := f.orders.ListRecent(context.Background(), 10)
	if len(orders) != 0 {
		t.Errorf("orders persisted = %d, want 0", len(orders))
	}
}

func TestCheckoutService_InitialStatus(t *testing.T) {
	f := newCheckoutFixture(t, models.StatusPendingPayment)

	result, err := f.service.Checkout(context.Background(), CheckoutRequest{
		UserID: "user-1",
		Items:  []models.LineItem{{ProductID: "p1", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Checkout() unexpected error = %v", err)
	}

	order, err := f.orders.GetByID(context.Background(), result.OrderID)
	if err != nil {
		t.Fatalf("GetByID() unexpected error = %v", err)
	}
	if order.Status != models.StatusPendingPayment {
		t.Errorf("Status = %s, want pending_payment", order.Status)
	}
}

func TestCheckoutService_ValidateCart(t *testing.T) {
	f := newCheckoutFixture(t, "")

	if err := f.service.ValidateCart(context.Background(), []models.LineItem{{ProductID: "p1", Quantity: 2}}); err != nil {
		t.Errorf("ValidateCart() unexpected error = %v", err)
	}

	var stockErr *repository.InsufficientStockError
	err := f.service.ValidateCart(context.Background(), []models.LineItem{{ProductID: "p2", Quantity: 99}})
	if !errors.As(err, &stockErr) {
		t.Errorf("error = %v, want *InsufficientStockError", err)
	}

	// Validation never mutates stock.
	if len(f.catalog.decrements) != 0 {
		t.Errorf("validation decremented stock: %v", f.catalog.decrements)
	}
}

func TestCheckoutService_CartTotals(t *testing.T) {
	f := newCheckoutFixture(t, "")

	// Stock is not enforced for a pricing preview.
	summary, err := f.service.CartTotals(context.Background(),
		[]models.LineItem{{ProductID: "p2", Quantity: 99}},
		pricing.Options{ShippingOption: "standard"},
	)
	if err != nil {
		t.Fatalf("CartTotals() unexpected error = %v", err)
	}

	// 99 x 25.00 = 2475, free shipping, tax 297.00.
	if summary.Subtotal != 2475.00 {
		t.Errorf("Subtotal = %v, want 2475.00", summary.Subtotal)
	}
	if summary.ShippingCost != 0 {
		t.Errorf("ShippingCost = %v, want 0", summary.ShippingCost)
	}
	if summary.Total != 2772.00 {
		t.Errorf("Total = %v, want 2772.00", summary.Total)
	}
}
