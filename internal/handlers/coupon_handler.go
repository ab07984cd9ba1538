package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// couponValidator is the interface for coupon resolution
type couponValidator interface {
	Percent(code string) (float64, bool)
	Stats() map[string]interface{}
}

// CouponHandler handles HTTP requests for coupon validation
type CouponHandler struct {
	validator couponValidator
}

// NewCouponHandler creates a new CouponHandler
func NewCouponHandler(validator couponValidator) *CouponHandler {
	return &CouponHandler{
		validator: validator,
	}
}

// ValidateCoupon handles GET /api/coupon/{couponCode}
// Reports whether the code is known and what percentage it grants.
func (h *CouponHandler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	couponCode := chi.URLParam(r, "couponCode")

	percent, ok := h.validator.Percent(couponCode)
	if ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"valid":   true,
			"coupon":  couponCode,
			"percent": percent,
		})
	} else {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"valid":   false,
			"coupon":  couponCode,
			"message": "Coupon not found or invalid",
		})
	}
}

// GetStats handles GET /api/coupon/stats (for debugging/monitoring)
func (h *CouponHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := h.validator.Stats()
	writeJSON(w, http.StatusOK, stats)
}
