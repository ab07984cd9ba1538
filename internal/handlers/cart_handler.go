package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tatylu/storefront/internal/models"
	"github.com/tatylu/storefront/internal/pricing"
	"github.com/tatylu/storefront/internal/service"
)

// CartHandler handles cart pricing previews
type CartHandler struct {
	checkoutService *service.CheckoutService
	engine          *pricing.Engine
	log             *slog.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(checkoutService *service.CheckoutService, engine *pricing.Engine, log *slog.Logger) *CartHandler {
	return &CartHandler{
		checkoutService: checkoutService,
		engine:          engine,
		log:             log,
	}
}

// Totals handles POST /api/cart/totals: price a cart without persisting
// anything. An empty cart prices to zeros rather than an error so the
// storefront can render an empty basket.
func (h *CartHandler) Totals(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items          []models.LineItem `json:"items"`
		ShippingOption string            `json:"shippingOption,omitempty"`
		CouponCode     string            `json:"couponCode,omitempty"`
		TaxRate        *float64          `json:"taxRate,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error("failed to decode cart totals request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	if len(req.Items) == 0 {
		WriteJSON(w, http.StatusOK, models.OrderSummary{Items: []models.PricedLineItem{}}, h.log)
		return
	}

	opts := pricing.Options{
		CouponCode:     req.CouponCode,
		ShippingOption: req.ShippingOption,
	}
	if req.TaxRate != nil {
		opts.TaxRate = *req.TaxRate
		opts.TaxRateSet = true
	}

	summary, err := h.checkoutService.CartTotals(r.Context(), req.Items, opts)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidQuantity):
			WriteError(w, http.StatusBadRequest, "Quantity must be positive", h.log)
		case errors.Is(err, service.ErrProductNotFound):
			WriteError(w, http.StatusBadRequest, "Product not found", h.log)
		case errors.Is(err, service.ErrCollaboratorUnavailable):
			WriteError(w, http.StatusServiceUnavailable, "Service temporarily unavailable", h.log)
		default:
			h.log.Error("failed to price cart", "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		}
		return
	}

	WriteJSON(w, http.StatusOK, summary, h.log)
}

// ApplyCoupon handles POST /api/cart/coupon: preview a coupon against a
// subtotal.
func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CouponCode string  `json:"couponCode"`
		Subtotal   float64 `json:"subtotal"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error("failed to decode apply coupon request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	discount := h.engine.CouponDiscount(req.CouponCode, req.Subtotal)

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"couponCode": req.CouponCode,
		"discount":   discount,
		"valid":      discount > 0,
	}, h.log)
}
