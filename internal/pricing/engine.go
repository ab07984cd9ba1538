package pricing

import (
	"errors"
	"math"

	"github.com/tatylu/storefront/internal/models"
)

var (
	ErrEmptyCart       = errors.New("cart must contain at least one item")
	ErrInvalidQuantity = errors.New("quantity must not be negative")
)

// Round2 rounds a monetary amount to 2 decimal places. All intermediate
// values are rounded at the point of computation, not only at output, so
// fractional cents never accumulate across lines.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Line is a cart line item resolved against a catalog snapshot.
type Line struct {
	Product  models.Product
	Quantity int
}

// Options carries the per-request pricing inputs. A zero TaxRate means "use
// the policy default"; set TaxRateSet to force an explicit zero rate.
type Options struct {
	CouponCode     string
	ShippingOption string
	TaxRate        float64
	TaxRateSet     bool
}

// CouponResolver resolves a coupon code to its discount percentage.
type CouponResolver interface {
	Percent(code string) (float64, bool)
}

// tableResolver resolves codes against the policy's fixed coupon table.
type tableResolver map[string]float64

func (t tableResolver) Percent(code string) (float64, bool) {
	percent, ok := t[code]
	return percent, ok
}

// Engine prices carts against an injected policy. It is stateless and safe
// for concurrent use.
type Engine struct {
	policy  Policy
	coupons CouponResolver
}

// NewEngine creates a pricing engine resolving coupons against the policy's
// own coupon table.
func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy, coupons: tableResolver(policy.Coupons)}
}

// NewEngineWithResolver creates a pricing engine with an external coupon
// resolver, e.g. one that also knows bulk campaign codes.
func NewEngineWithResolver(policy Policy, coupons CouponResolver) *Engine {
	return &Engine{policy: policy, coupons: coupons}
}

// Policy returns the engine's policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Price turns resolved cart lines into a full order summary. It has no side
// effects and performs no persistence; stock sufficiency is the caller's
// concern. Quantities only need to be non-negative here.
func (e *Engine) Price(lines []Line, opts Options) (models.OrderSummary, error) {
	if len(lines) == 0 {
		return models.OrderSummary{}, ErrEmptyCart
	}

	var (
		subtotal      float64
		discountTotal float64
		itemCount     int
	)

	items := make([]models.PricedLineItem, 0, len(lines))
	for _, line := range lines {
		if line.Quantity < 0 {
			return models.OrderSummary{}, ErrInvalidQuantity
		}

		p := line.Product
		afterDiscount := Round2(p.Price * (1 - p.DiscountPercent/100))
		lineTotal := Round2(afterDiscount * float64(line.Quantity))

		subtotal = Round2(subtotal + lineTotal)
		discountTotal = Round2(discountTotal + Round2((p.Price-afterDiscount)*float64(line.Quantity)))
		itemCount += line.Quantity

		items = append(items, models.PricedLineItem{
			ProductID:              p.ID,
			Name:                   p.Name,
			UnitPrice:              Round2(p.Price),
			LineDiscountPercent:    p.DiscountPercent,
			UnitPriceAfterDiscount: afterDiscount,
			Quantity:               line.Quantity,
			LineTotal:              lineTotal,
		})
	}

	couponDiscount := e.CouponDiscount(opts.CouponCode, subtotal)
	afterCoupon := Round2(subtotal - couponDiscount)

	taxRate := e.policy.TaxRate
	if opts.TaxRateSet {
		taxRate = opts.TaxRate
	}
	taxAmount := Round2(afterCoupon * taxRate)

	shippingCost := e.ShippingCost(subtotal, opts.ShippingOption)

	// Unclamped: a coupon larger than the subtotal yields a negative total.
	total := Round2(afterCoupon + taxAmount + shippingCost)

	return models.OrderSummary{
		Subtotal:       subtotal,
		DiscountTotal:  discountTotal,
		CouponDiscount: couponDiscount,
		TaxRate:        taxRate,
		TaxAmount:      taxAmount,
		ShippingCost:   shippingCost,
		Total:          total,
		ItemCount:      itemCount,
		Items:          items,
	}, nil
}

// CouponDiscount resolves a coupon code and returns the discount amount on
// the given subtotal. Lookup is case-sensitive and exact; unknown codes yield
// zero, not an error.
func (e *Engine) CouponDiscount(code string, subtotal float64) float64 {
	if code == "" {
		return 0
	}
	percent, ok := e.coupons.Percent(code)
	if !ok {
		return 0
	}
	return Round2(subtotal * percent / 100)
}

// CouponPercent reports the percentage for a code and whether it is known.
func (e *Engine) CouponPercent(code string) (float64, bool) {
	return e.coupons.Percent(code)
}

// ShippingCost computes the shipping fee for a subtotal under the policy's
// schedule. Any option other than "express" is treated as standard.
func (e *Engine) ShippingCost(subtotal float64, option string) float64 {
	s := e.policy.Shipping
	if option == ShippingExpress {
		return s.ExpressFee
	}

	if s.Schedule == ScheduleTiered {
		for _, tier := range s.Tiers {
			if subtotal < tier.UpTo {
				return tier.Fee
			}
		}
		return 0
	}

	if subtotal > s.FreeThreshold {
		return 0
	}
	return s.StandardFee
}
