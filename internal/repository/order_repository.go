package repository

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/tatylu/storefront/internal/models"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrInvalidStatus = errors.New("invalid order status transition")
)

// OrderStore persists orders. Orders are created once and afterwards mutated
// only through status transitions.
type OrderStore interface {
	Create(ctx context.Context, order models.Order) (*models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	ListRecent(ctx context.Context, limit int) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error)
}

// InMemoryOrderStore implements OrderStore with in-memory storage.
type InMemoryOrderStore struct {
	mu     sync.RWMutex
	orders map[string]*models.Order
}

// NewInMemoryOrderStore creates an empty order store.
func NewInMemoryOrderStore() *InMemoryOrderStore {
	return &InMemoryOrderStore{
		orders: make(map[string]*models.Order),
	}
}

// Create stores a new order under its already-generated ID.
func (s *InMemoryOrderStore) Create(ctx context.Context, order models.Order) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := order
	s.orders[order.ID] = &stored
	out := stored
	return &out, nil
}

// GetByID returns an order by its ID.
func (s *InMemoryOrderStore) GetByID(ctx context.Context, id string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	out := *order
	return &out, nil
}

// ListRecent returns up to limit orders, newest first.
func (s *InMemoryOrderStore) ListRecent(ctx context.Context, limit int) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		orders = append(orders, *o)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

// UpdateStatus moves an order through its status machine, rejecting unknown
// statuses and invalid transitions.
func (s *InMemoryOrderStore) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if !models.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	if !models.CanTransition(order.Status, status) {
		return nil, ErrInvalidStatus
	}

	order.Status = status
	out := *order
	return &out, nil
}
