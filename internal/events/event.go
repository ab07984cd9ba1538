// Package events publishes confirmed orders to the fulfillment queue and
// consumes them on the warehouse side. Publishing is best-effort: checkout
// never fails because the broker is down.
package events

import (
	"time"

	"github.com/tatylu/storefront/internal/models"
)

// OrderItem is one line of a fulfillment event.
type OrderItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// OrderEvent is the message published for each confirmed order.
type OrderEvent struct {
	OrderID   string      `json:"orderId"`
	UserID    string      `json:"userId"`
	Items     []OrderItem `json:"items"`
	Total     float64     `json:"total"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
}

// NewOrderEvent builds a fulfillment event from a persisted order.
func NewOrderEvent(order models.Order) OrderEvent {
	items := make([]OrderItem, len(order.Items))
	for i, it := range order.Items {
		items[i] = OrderItem{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return OrderEvent{
		OrderID:   order.ID,
		UserID:    order.UserID,
		Items:     items,
		Total:     order.Summary.Total,
		Status:    string(order.Status),
		CreatedAt: order.CreatedAt,
	}
}
