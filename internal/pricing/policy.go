package pricing

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Shipping option names accepted from clients.
const (
	ShippingStandard = "standard"
	ShippingExpress  = "express"
)

// Shipping schedule names.
const (
	ScheduleFlat   = "flat"
	ScheduleTiered = "tiered"
)

// TierFee is one step of the tiered shipping schedule: carts with a subtotal
// strictly below UpTo pay Fee.
type TierFee struct {
	UpTo float64 `yaml:"upTo"`
	Fee  float64 `yaml:"fee"`
}

// ShippingPolicy selects one of the two observed shipping schedules.
//
// flat:   express pays ExpressFee; otherwise free above FreeThreshold, else
//         StandardFee.
// tiered: express pays ExpressFee; otherwise the first TierFee whose UpTo
//         exceeds the subtotal applies, free beyond the last tier.
type ShippingPolicy struct {
	Schedule      string    `yaml:"schedule"`
	ExpressFee    float64   `yaml:"expressFee"`
	StandardFee   float64   `yaml:"standardFee"`
	FreeThreshold float64   `yaml:"freeThreshold"`
	Tiers         []TierFee `yaml:"tiers,omitempty"`
}

// CampaignFile points the coupon validator at a bulk code file granting a
// single percentage to every code it contains.
type CampaignFile struct {
	Path    string  `yaml:"path"`
	Percent float64 `yaml:"percent"`
}

// Policy is the injected pricing configuration: coupon table, tax rate and
// shipping schedule. Keeping it injectable lets policy vary per deployment
// without code changes.
type Policy struct {
	TaxRate   float64            `yaml:"taxRate"`
	Coupons   map[string]float64 `yaml:"coupons"`
	Shipping  ShippingPolicy     `yaml:"shipping"`
	Campaigns []CampaignFile     `yaml:"campaigns,omitempty"`
}

// DefaultPolicy returns the built-in policy: 12% VAT, the three fixed coupon
// codes, and the flat shipping schedule.
func DefaultPolicy() Policy {
	return Policy{
		TaxRate: 0.12,
		Coupons: map[string]float64{
			"PROMO10":  10,
			"PROMO20":  20,
			"WELCOME5": 5,
		},
		Shipping: ShippingPolicy{
			Schedule:      ScheduleFlat,
			ExpressFee:    5.00,
			StandardFee:   2.00,
			FreeThreshold: 50,
		},
	}
}

// DefaultTieredShipping is the alternate tiered schedule: 3.00 under 25,
// 2.00 under 50, free above.
func DefaultTieredShipping() ShippingPolicy {
	return ShippingPolicy{
		Schedule:   ScheduleTiered,
		ExpressFee: 5.00,
		Tiers: []TierFee{
			{UpTo: 25, Fee: 3.00},
			{UpTo: 50, Fee: 2.00},
		},
	}
}

// LoadPolicy reads a policy from a YAML file. Fields left empty in the file
// keep their default values.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()

	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("failed to read policy file: %w", err)
	}

	if err := yaml.Unmarshal(data, &policy); err != nil {
		return Policy{}, fmt.Errorf("failed to parse policy file: %w", err)
	}

	if err := policy.Validate(); err != nil {
		return Policy{}, err
	}

	return policy, nil
}

// Validate checks the policy for values the engine cannot price with.
func (p Policy) Validate() error {
	if p.TaxRate < 0 {
		return fmt.Errorf("tax rate must not be negative, got %v", p.TaxRate)
	}

	switch p.Shipping.Schedule {
	case ScheduleFlat:
	case ScheduleTiered:
		if len(p.Shipping.Tiers) == 0 {
			return fmt.Errorf("tiered shipping schedule requires at least one tier")
		}
		prev := 0.0
		for _, t := range p.Shipping.Tiers {
			if t.UpTo <= prev {
				return fmt.Errorf("shipping tiers must have ascending upTo thresholds")
			}
			prev = t.UpTo
		}
	default:
		return fmt.Errorf("unknown shipping schedule: %q", p.Shipping.Schedule)
	}

	for code, percent := range p.Coupons {
		if percent < 0 || percent > 100 {
			return fmt.Errorf("coupon %s has invalid percent %v", code, percent)
		}
	}

	return nil
}
