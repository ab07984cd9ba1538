package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/tatylu/storefront/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserStore persists loyalty accounts.
type UserStore interface {
	GetAccount(ctx context.Context, userID string) (*models.LoyaltyAccount, error)
	// IncrementLoyalty adds pointsDelta to a user's balance and returns the
	// new balance.
	IncrementLoyalty(ctx context.Context, userID string, pointsDelta int) (int, error)
	SetTier(ctx context.Context, userID string, tier models.Tier) error
}

// InMemoryUserStore implements UserStore with in-memory storage.
type InMemoryUserStore struct {
	mu       sync.RWMutex
	accounts map[string]*models.LoyaltyAccount
}

// NewInMemoryUserStore creates a user store seeded with demo accounts.
func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		accounts: map[string]*models.LoyaltyAccount{
			"user-1": {UserID: "user-1", PointsBalance: 0, Tier: models.TierBronze},
			"user-2": {UserID: "user-2", PointsBalance: 750, Tier: models.TierSilver},
			"user-3": {UserID: "user-3", PointsBalance: 4501, Tier: models.TierGold},
		},
	}
}

// GetAccount returns a user's loyalty account.
func (s *InMemoryUserStore) GetAccount(ctx context.Context, userID string) (*models.LoyaltyAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := *acc
	return &out, nil
}

// IncrementLoyalty adds points to a balance and returns the new balance.
func (s *InMemoryUserStore) IncrementLoyalty(ctx context.Context, userID string, pointsDelta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[userID]
	if !ok {
		return 0, ErrUserNotFound
	}
	acc.PointsBalance += pointsDelta
	return acc.PointsBalance, nil
}

// SetTier records a user's membership tier.
func (s *InMemoryUserStore) SetTier(ctx context.Context, userID string, tier models.Tier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[userID]
	if !ok {
		return ErrUserNotFound
	}
	acc.Tier = tier
	return nil
}
