package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tatylu/storefront/internal/events"
	"github.com/tatylu/storefront/internal/loyalty"
	"github.com/tatylu/storefront/internal/models"
	"github.com/tatylu/storefront/internal/pricing"
	"github.com/tatylu/storefront/internal/repository"
)

var (
	ErrEmptyCart       = pricing.ErrEmptyCart
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrProductNotFound = repository.ErrProductNotFound

	// ErrCollaboratorUnavailable wraps failures from the catalog, order store
	// or user store themselves, as opposed to validation failures they report.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
)

// OrderPublisher publishes confirmed orders to the fulfillment queue.
type OrderPublisher interface {
	PublishOrder(ctx context.Context, event events.OrderEvent) error
}

// CheckoutRequest is the checkout-facing request surface.
type CheckoutRequest struct {
	UserID         string            `json:"userId"`
	Items          []models.LineItem `json:"items"`
	ShippingOption string            `json:"shippingOption,omitempty"`
	CouponCode     string            `json:"couponCode,omitempty"`
}

// CheckoutResult is the response for a successful checkout.
type CheckoutResult struct {
	OrderID              string              `json:"orderId"`
	Summary              models.OrderSummary `json:"summary"`
	LoyaltyPointsAwarded int                 `json:"loyaltyPointsAwarded"`
}

// CheckoutService orchestrates a checkout: validate, price, persist, then
// best-effort stock decrement, loyalty crediting and event publishing. The
// three collaborators are not transactional together; once the order is
// persisted it is the source of truth and later steps never roll it back.
type CheckoutService struct {
	catalog       repository.Catalog
	orders        repository.OrderStore
	users         repository.UserStore
	engine        *pricing.Engine
	publisher     OrderPublisher
	initialStatus models.OrderStatus
	log           *slog.Logger
}

// NewCheckoutService creates a checkout service. publisher may be nil when no
// broker is configured.
func NewCheckoutService(
	catalog repository.Catalog,
	orders repository.OrderStore,
	users repository.UserStore,
	engine *pricing.Engine,
	publisher OrderPublisher,
	initialStatus models.OrderStatus,
	log *slog.Logger,
) *CheckoutService {
	if initialStatus == "" {
		initialStatus = models.StatusConfirmed
	}
	return &CheckoutService{
		catalog:       catalog,
		orders:        orders,
		users:         users,
		engine:        engine,
		publisher:     publisher,
		initialStatus: initialStatus,
		log:           log,
	}
}

// resolveLines validates the cart and resolves every line against the
// catalog, enforcing positive quantities and stock sufficiency.
func (s *CheckoutService) resolveLines(ctx context.Context, items []models.LineItem) ([]pricing.Line, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	keys := make([]string, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		keys = append(keys, item.ProductID)
	}

	resolved, err := s.catalog.Resolve(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("%w: catalog lookup: %w", ErrCollaboratorUnavailable, err)
	}

	lines := make([]pricing.Line, 0, len(items))
	for _, item := range items {
		product, ok := resolved[item.ProductID]
		if !ok {
			return nil, ErrProductNotFound
		}
		if item.Quantity > product.Stock {
			return nil, &repository.InsufficientStockError{Product: product.Name}
		}
		lines = append(lines, pricing.Line{Product: product, Quantity: item.Quantity})
	}

	return lines, nil
}

// ValidateCart checks the cart against the catalog without side effects.
func (s *CheckoutService) ValidateCart(ctx context.Context, items []models.LineItem) error {
	_, err := s.resolveLines(ctx, items)
	return err
}

// CartTotals prices a cart without persisting anything. Quantities must be
// positive and products must exist, but stock is not enforced here.
func (s *CheckoutService) CartTotals(ctx context.Context, items []models.LineItem, opts pricing.Options) (models.OrderSummary, error) {
	if len(items) == 0 {
		return models.OrderSummary{}, ErrEmptyCart
	}

	keys := make([]string, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return models.OrderSummary{}, ErrInvalidQuantity
		}
		keys = append(keys, item.ProductID)
	}

	resolved, err := s.catalog.Resolve(ctx, keys)
	if err != nil {
		return models.OrderSummary{}, fmt.Errorf("%w: catalog lookup: %w", ErrCollaboratorUnavailable, err)
	}

	lines := make([]pricing.Line, 0, len(items))
	for _, item := range items {
		product, ok := resolved[item.ProductID]
		if !ok {
			return models.OrderSummary{}, ErrProductNotFound
		}
		lines = append(lines, pricing.Line{Product: product, Quantity: item.Quantity})
	}

	return s.engine.Price(lines, opts)
}

// Checkout runs the full checkout sequence for one request.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	lines, err := s.resolveLines(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	summary, err := s.engine.Price(lines, pricing.Options{
		CouponCode:     req.CouponCode,
		ShippingOption: req.ShippingOption,
	})
	if err != nil {
		return nil, err
	}

	shippingOption := req.ShippingOption
	if shippingOption == "" {
		shippingOption = pricing.ShippingStandard
	}

	order := models.Order{
		ID:             uuid.New().String(),
		UserID:         req.UserID,
		Items:          summary.Items,
		Summary:        summary,
		ShippingOption: shippingOption,
		CouponCode:     req.CouponCode,
		Status:         s.initialStatus,
		CreatedAt:      time.Now().UTC(),
	}

	persisted, err := s.orders.Create(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("%w: order persist: %w", ErrCollaboratorUnavailable, err)
	}

	// Stock decrements after persistence are best-effort: a failure here is
	// a data-integrity warning, never a rollback.
	for _, item := range req.Items {
		if _, err := s.catalog.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.log.Warn("stock decrement failed after order persisted",
				"order_id", persisted.ID,
				"product_id", item.ProductID,
				"quantity", item.Quantity,
				"error", err,
			)
		}
	}

	pointsAwarded := s.creditLoyalty(ctx, persisted.UserID, persisted.Summary.Total, persisted.ID)

	if s.publisher != nil {
		if err := s.publisher.PublishOrder(ctx, events.NewOrderEvent(*persisted)); err != nil {
			s.log.Warn("order event publish failed", "order_id", persisted.ID, "error", err)
		}
	}

	s.log.Info("checkout completed",
		"order_id", persisted.ID,
		"user_id", persisted.UserID,
		"total", persisted.Summary.Total,
		"points_awarded", pointsAwarded,
	)

	return &CheckoutResult{
		OrderID:              persisted.ID,
		Summary:              persisted.Summary,
		LoyaltyPointsAwarded: pointsAwarded,
	}, nil
}

// creditLoyalty awards points for a completed order. Failures are logged and
// swallowed: the order stands, points may arrive late or not at all.
func (s *CheckoutService) creditLoyalty(ctx context.Context, userID string, total float64, orderID string) int {
	account, err := s.users.GetAccount(ctx, userID)
	if err != nil {
		s.log.Warn("could not load loyalty account", "order_id", orderID, "user_id", userID, "error", err)
		return 0
	}

	award, err := loyalty.AwardPoints(total, account.PointsBalance)
	if err != nil {
		s.log.Warn("could not compute loyalty points", "order_id", orderID, "user_id", userID, "error", err)
		return 0
	}

	if _, err := s.users.IncrementLoyalty(ctx, userID, award.Points); err != nil {
		s.log.Warn("could not credit loyalty points", "order_id", orderID, "user_id", userID, "error", err)
		return 0
	}

	if award.NewTier != account.Tier {
		if err := s.users.SetTier(ctx, userID, award.NewTier); err != nil {
			s.log.Warn("could not update loyalty tier", "order_id", orderID, "user_id", userID, "error", err)
		}
	}

	return award.Points
}
