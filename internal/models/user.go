package models

// Tier is a loyalty membership level, derived from the points balance.
type Tier string

const (
	TierBronze   Tier = "BRONZE"
	TierSilver   Tier = "SILVER"
	TierGold     Tier = "GOLD"
	TierPlatinum Tier = "PLATINUM"
)

// LoyaltyAccount is a user's running loyalty state. Tier is always derived
// from PointsBalance, never set independently.
type LoyaltyAccount struct {
	UserID        string `json:"userId"`
	PointsBalance int    `json:"pointsBalance"`
	Tier          Tier   `json:"tier"`
}
