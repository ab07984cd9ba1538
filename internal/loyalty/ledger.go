// Package loyalty computes loyalty points and membership tiers. All
// functions are pure; persisting balances and tiers is the caller's job.
package loyalty

import (
	"errors"
	"math"

	"github.com/tatylu/storefront/internal/models"
)

var ErrInvalidAmount = errors.New("order total must not be negative")

// Tier thresholds on the cumulative points balance.
const (
	silverThreshold   = 500
	goldThreshold     = 1000
	platinumThreshold = 5000
)

// Award is the result of crediting one order against a points balance.
type Award struct {
	Points     int         `json:"points"`
	NewBalance int         `json:"newBalance"`
	NewTier    models.Tier `json:"newTier"`
}

// AwardPoints credits one completed order: 1 point per whole currency unit
// spent, fractional totals award no partial points. The returned tier is
// derived from the new balance; since balances only grow through this path,
// tiers only ever move upward.
func AwardPoints(orderTotal float64, currentBalance int) (Award, error) {
	if orderTotal < 0 {
		return Award{}, ErrInvalidAmount
	}

	points := int(math.Floor(orderTotal))
	newBalance := currentBalance + points

	return Award{
		Points:     points,
		NewBalance: newBalance,
		NewTier:    TierFor(newBalance),
	}, nil
}

// TierFor returns the membership tier for a points balance.
func TierFor(balance int) models.Tier {
	switch {
	case balance >= platinumThreshold:
		return models.TierPlatinum
	case balance >= goldThreshold:
		return models.TierGold
	case balance >= silverThreshold:
		return models.TierSilver
	default:
		return models.TierBronze
	}
}

// NextTierPoints reports the balance needed to reach the next tier, or 0 for
// PLATINUM, which has none.
func NextTierPoints(tier models.Tier) int {
	switch tier {
	case models.TierBronze:
		return silverThreshold
	case models.TierSilver:
		return goldThreshold
	case models.TierGold:
		return platinumThreshold
	default:
		return 0
	}
}
