package pricing

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPolicy(t *testing.T) {
	policy := DefaultPolicy()

	if policy.TaxRate != 0.12 {
		t.Errorf("TaxRate = %v, want 0.12", policy.TaxRate)
	}

	wantCoupons := map[string]float64{"PROMO10": 10, "PROMO20": 20, "WELCOME5": 5}
	for code, percent := range wantCoupons {
		if policy.Coupons[code] != percent {
			t.Errorf("Coupons[%s] = %v, want %v", code, policy.Coupons[code], percent)
		}
	}

	if policy.Shipping.Schedule != ScheduleFlat {
		t.Errorf("Schedule = %s, want %s", policy.Shipping.Schedule, ScheduleFlat)
	}

	if err := policy.Validate(); err != nil {
		t.Errorf("default policy failed validation: %v", err)
	}
}

func TestLoadPolicy(t *testing.T) {
	t.Run("full policy file", func(t *testing.T) {
		path := writePolicyFile(t, `
taxRate: 0.19
coupons:
  SUMMER15: 15
shipping:
  schedule: tiered
  expressFee: 7.50
  tiers:
    - upTo: 25
      fee: 3.00
    - upTo: 50
      fee: 2.00
`)

		policy, err := LoadPolicy(path)
		if err != nil {
			t.Fatalf("LoadPolicy() unexpected error = %v", err)
		}

		if policy.TaxRate != 0.19 {
			t.Errorf("TaxRate = %v, want 0.19", policy.TaxRate)
		}
		if policy.Coupons["SUMMER15"] != 15 {
			t.Errorf("Coupons[SUMMER15] = %v, want 15", policy.Coupons["SUMMER15"])
		}
		if policy.Shipping.Schedule != ScheduleTiered {
			t.Errorf("Schedule = %s, want tiered", policy.Shipping.Schedule)
		}
		if len(policy.Shipping.Tiers) != 2 {
			t.Fatalf("Tiers count = %d, want 2", len(policy.Shipping.Tiers))
		}
		if policy.Shipping.ExpressFee != 7.50 {
			t.Errorf("ExpressFee = %v, want 7.50", policy.Shipping.ExpressFee)
		}
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		path := writePolicyFile(t, "taxRate: 0.0\n")

		policy, err := LoadPolicy(path)
		if err != nil {
			t.Fatalf("LoadPolicy() unexpected error = %v", err)
		}

		if policy.TaxRate != 0 {
			t.Errorf("TaxRate = %v, want 0", policy.TaxRate)
		}
		if policy.Coupons["PROMO10"] != 10 {
			t.Errorf("Coupons[PROMO10] = %v, want default 10", policy.Coupons["PROMO10"])
		}
		if policy.Shipping.StandardFee != 2.00 {
			t.Errorf("StandardFee = %v, want default 2.00", policy.Shipping.StandardFee)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadPolicy("/non/existent/policy.yaml"); err == nil {
			t.Error("expected error for missing policy file, got nil")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writePolicyFile(t, "taxRate: [not a number\n")
		if _, err := LoadPolicy(path); err == nil {
			t.Error("expected error for invalid yaml, got nil")
		}
	})
}

func TestPolicy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Policy)
		wantErr bool
	}{
		{"valid default", func(p *Policy) {}, false},
		{"negative tax rate", func(p *Policy) { p.TaxRate = -0.1 }, true},
		{"unknown schedule", func(p *Policy) { p.Shipping.Schedule = "drone" }, true},
		{"tiered without tiers", func(p *Policy) { p.Shipping = ShippingPolicy{Schedule: ScheduleTiered} }, true},
		{"tiers out of order", func(p *Policy) {
			p.Shipping = ShippingPolicy{Schedule: ScheduleTiered, Tiers: []TierFee{{UpTo: 50, Fee: 2}, {UpTo: 25, Fee: 3}}}
		}, true},
		{"coupon over 100 percent", func(p *Policy) { p.Coupons["X"] = 150 }, true},
		{"negative coupon percent", func(p *Policy) { p.Coupons["X"] = -5 }, true},
		{"valid tiered", func(p *Policy) { p.Shipping = DefaultTieredShipping() }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := DefaultPolicy()
			tt.mutate(&policy)

			err := policy.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func writePolicyFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write policy file: %v", err)
	}
	return path
}
