package service

import (
	"context"
	"testing"
	"time"

	"github.com/tatylu/storefront/internal/models"
	"github.com/tatylu/storefront/internal/repository"
)

func seedOrders(t *testing.T) *repository.InMemoryOrderStore {
	t.Helper()

	store := repository.NewInMemoryOrderStore()
	orders := []models.Order{
		{
			ID: "o1",
			Items: []models.PricedLineItem{
				{ProductID: "p1", Name: "Plain Widget", Quantity: 3, LineTotal: 30.00},
			},
			Summary:   models.OrderSummary{Total: 35.60, ItemCount: 3},
			CreatedAt: time.Now().UTC(),
		},
		{
			ID: "o2",
			Items: []models.PricedLineItem{
				{ProductID: "p1", Name: "Plain Widget", Quantity: 1, LineTotal: 10.00},
				{ProductID: "p2", Name: "Rare Widget", Quantity: 2, LineTotal: 50.00},
			},
			Summary:   models.OrderSummary{Total: 67.20, ItemCount: 3},
			CreatedAt: time.Now().UTC(),
		},
	}
	for _, o := range orders {
		if _, err := store.Create(context.Background(), o); err != nil {
			t.Fatalf("Create() unexpected error = %v", err)
		}
	}
	return store
}

func TestAnalyticsService_SalesSummary(t *testing.T) {
	analytics := NewAnalyticsService(seedOrders(t))

	summary, err := analytics.SalesSummary(context.Background())
	if err != nil {
		t.Fatalf("SalesSummary() unexpected error = %v", err)
	}

	if summary.TotalOrders != 2 {
		t.Errorf("TotalOrders = %d, want 2", summary.TotalOrders)
	}
	if summary.TotalRevenue != 102.80 {
		t.Errorf("TotalRevenue = %v, want 102.80", summary.TotalRevenue)
	}
	if summary.TotalItems != 6 {
		t.Errorf("TotalItems = %d, want 6", summary.TotalItems)
	}
	if summary.AvgOrderValue != 51.40 {
		t.Errorf("AvgOrderValue = %v, want 51.40", summary.AvgOrderValue)
	}
}

func TestAnalyticsService_TopProducts(t *testing.T) {
	analytics := NewAnalyticsService(seedOrders(t))

	rows, err := analytics.TopProducts(context.Background(), 10)
	if err != nil {
		t.Fatalf("TopProducts() unexpected error = %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	// p1 sold 4 units across both orders, p2 sold 2.
	if rows[0].ProductID != "p1" || rows[0].UnitsSold != 4 {
		t.Errorf("rows[0] = %+v, want p1 with 4 units", rows[0])
	}
	if rows[0].TotalRevenue != 40.00 {
		t.Errorf("p1 revenue = %v, want 40.00", rows[0].TotalRevenue)
	}
	if rows[1].ProductID != "p2" || rows[1].UnitsSold != 2 {
		t.Errorf("rows[1] = %+v, want p2 with 2 units", rows[1])
	}

	t.Run("limit", func(t *testing.T) {
		rows, err := analytics.TopProducts(context.Background(), 1)
		if err != nil {
			t.Fatalf("TopProducts() unexpected error = %v", err)
		}
		if len(rows) != 1 {
			t.Errorf("got %d rows, want 1", len(rows))
		}
	})
}

func TestLoyaltyService_GetStatus(t *testing.T) {
	loyaltyService := NewLoyaltyService(repository.NewInMemoryUserStore())

	status, err := loyaltyService.GetStatus(context.Background(), "user-2")
	if err != nil {
		t.Fatalf("GetStatus() unexpected error = %v", err)
	}

	if status.Points != 750 {
		t.Errorf("Points = %d, want 750", status.Points)
	}
	if status.Tier != models.TierSilver {
		t.Errorf("Tier = %s, want SILVER", status.Tier)
	}
	if status.NextTierPoints != 1000 {
		t.Errorf("NextTierPoints = %d, want 1000", status.NextTierPoints)
	}

	if _, err := loyaltyService.GetStatus(context.Background(), "ghost"); err == nil {
		t.Error("expected error for unknown user, got nil")
	}
}
