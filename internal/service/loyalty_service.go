package service

import (
	"context"

	"github.com/tatylu/storefront/internal/loyalty"
	"github.com/tatylu/storefront/internal/models"
	"github.com/tatylu/storefront/internal/repository"
)

// LoyaltyStatus is the loyalty surface for one user.
type LoyaltyStatus struct {
	UserID         string      `json:"userId"`
	Points         int         `json:"points"`
	Tier           models.Tier `json:"tier"`
	NextTierPoints int         `json:"nextTierPoints"`
}

// LoyaltyService exposes loyalty account state.
type LoyaltyService struct {
	users repository.UserStore
}

// NewLoyaltyService creates a new loyalty service.
func NewLoyaltyService(users repository.UserStore) *LoyaltyService {
	return &LoyaltyService{users: users}
}

// GetStatus returns a user's points, tier and the next tier threshold.
func (s *LoyaltyService) GetStatus(ctx context.Context, userID string) (*LoyaltyStatus, error) {
	account, err := s.users.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &LoyaltyStatus{
		UserID:         account.UserID,
		Points:         account.PointsBalance,
		Tier:           account.Tier,
		NextTierPoints: loyalty.NextTierPoints(account.Tier),
	}, nil
}
