package models

import "time"

// LineItem is a single product + quantity entry in an incoming cart.
type LineItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// PricedLineItem is a line item after catalog resolution and per-line
// discount computation.
type PricedLineItem struct {
	ProductID              string  `json:"productId"`
	Name                   string  `json:"name"`
	UnitPrice              float64 `json:"unitPrice"`
	LineDiscountPercent    float64 `json:"lineDiscountPercent"`
	UnitPriceAfterDiscount float64 `json:"unitPriceAfterDiscount"`
	Quantity               int     `json:"quantity"`
	LineTotal              float64 `json:"lineTotal"`
}

// OrderSummary is the full price breakdown for a cart or order.
type OrderSummary struct {
	Subtotal       float64          `json:"subtotal"`
	DiscountTotal  float64          `json:"discountTotal"`
	CouponDiscount float64          `json:"couponDiscount"`
	TaxRate        float64          `json:"taxRate"`
	TaxAmount      float64          `json:"taxAmount"`
	ShippingCost   float64          `json:"shippingCost"`
	Total          float64          `json:"total"`
	ItemCount      int              `json:"itemCount"`
	Items          []PricedLineItem `json:"items"`
}

// OrderStatus is the lifecycle state of a persisted order.
type OrderStatus string

const (
	StatusPendingPayment OrderStatus = "pending_payment"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusShipped        OrderStatus = "shipped"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case StatusPendingPayment, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from one status to another.
// The forward chain is pending_payment -> confirmed -> shipped -> delivered;
// cancelled is reachable from any non-terminal state.
func CanTransition(from, to OrderStatus) bool {
	if from == StatusDelivered || from == StatusCancelled {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	switch from {
	case StatusPendingPayment:
		return to == StatusConfirmed
	case StatusConfirmed:
		return to == StatusShipped
	case StatusShipped:
		return to == StatusDelivered
	}
	return false
}

// Order is a persisted order. Created once at checkout; afterwards only the
// status changes.
type Order struct {
	ID             string           `json:"id"`
	UserID         string           `json:"userId"`
	Items          []PricedLineItem `json:"items"`
	Summary        OrderSummary     `json:"summary"`
	ShippingOption string           `json:"shippingOption"`
	CouponCode     string           `json:"couponCode,omitempty"`
	Status         OrderStatus      `json:"status"`
	CreatedAt      time.Time        `json:"createdAt"`
}
