package service

import (
	"context"
	"sort"

	"github.com/tatylu/storefront/internal/pricing"
	"github.com/tatylu/storefront/internal/repository"
)

// analyticsWindow caps how many stored orders analytics scans.
const analyticsWindow = 200

// SalesSummary aggregates revenue over recent orders.
type SalesSummary struct {
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalOrders   int     `json:"totalOrders"`
	TotalItems    int     `json:"totalItems"`
	AvgOrderValue float64 `json:"avgOrderValue"`
}

// TopProduct is one row of the best-sellers report.
type TopProduct struct {
	ProductID    string  `json:"productId"`
	Name         string  `json:"name"`
	UnitsSold    int     `json:"unitsSold"`
	TotalRevenue float64 `json:"totalRevenue"`
}

// AnalyticsService computes sales reports over the order store.
type AnalyticsService struct {
	orders repository.OrderStore
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(orders repository.OrderStore) *AnalyticsService {
	return &AnalyticsService{orders: orders}
}

// SalesSummary totals revenue, orders and items over recent orders.
func (s *AnalyticsService) SalesSummary(ctx context.Context) (*SalesSummary, error) {
	orders, err := s.orders.ListRecent(ctx, analyticsWindow)
	if err != nil {
		return nil, err
	}

	summary := &SalesSummary{}
	for _, o := range orders {
		summary.TotalRevenue = pricing.Round2(summary.TotalRevenue + o.Summary.Total)
		summary.TotalOrders++
		summary.TotalItems += o.Summary.ItemCount
	}
	if summary.TotalOrders > 0 {
		summary.AvgOrderValue = pricing.Round2(summary.TotalRevenue / float64(summary.TotalOrders))
	}
	return summary, nil
}

// TopProducts returns the best-selling products by units sold.
func (s *AnalyticsService) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	if limit <= 0 {
		limit = 10
	}

	orders, err := s.orders.ListRecent(ctx, analyticsWindow)
	if err != nil {
		return nil, err
	}

	byProduct := make(map[string]*TopProduct)
	for _, o := range orders {
		for _, item := range o.Items {
			row, ok := byProduct[item.ProductID]
			if !ok {
				row = &TopProduct{ProductID: item.ProductID, Name: item.Name}
				byProduct[item.ProductID] = row
			}
			row.UnitsSold += item.Quantity
			row.TotalRevenue = pricing.Round2(row.TotalRevenue + item.LineTotal)
		}
	}

	rows := make([]TopProduct, 0, len(byProduct))
	for _, row := range byProduct {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].UnitsSold != rows[j].UnitsSold {
			return rows[i].UnitsSold > rows[j].UnitsSold
		}
		return rows[i].ProductID < rows[j].ProductID
	})

	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}
