package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tatylu/storefront/internal/repository"
	"github.com/tatylu/storefront/internal/service"
)

// CheckoutHandler handles checkout-related HTTP requests
type CheckoutHandler struct {
	checkoutService *service.CheckoutService
	log             *slog.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *service.CheckoutService, log *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		log:             log,
	}
}

// Checkout handles POST /api/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req service.CheckoutRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error("failed to decode checkout request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	result, err := h.checkoutService.Checkout(r.Context(), req)
	if err != nil {
		h.writeCheckoutError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, result, h.log)
}

// ValidateCart handles POST /api/checkout/validate. Validation failures are
// reported in the body, not the status code, so the storefront can show them
// inline.
func (h *CheckoutHandler) ValidateCart(w http.ResponseWriter, r *http.Request) {
	var body service.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.log.Error("failed to decode validate request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	if err := h.checkoutService.ValidateCart(r.Context(), body.Items); err != nil {
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"valid": false,
			"error": err.Error(),
		}, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"valid": true}, h.log)
}

func (h *CheckoutHandler) writeCheckoutError(w http.ResponseWriter, err error) {
	h.log.Error("checkout failed", "error", err)

	var stockErr *repository.InsufficientStockError
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		WriteError(w, http.StatusBadRequest, "Cart is empty", h.log)
	case errors.Is(err, service.ErrInvalidQuantity):
		WriteError(w, http.StatusBadRequest, "Quantity must be positive", h.log)
	case errors.Is(err, service.ErrProductNotFound):
		WriteError(w, http.StatusBadRequest, "Product not found", h.log)
	case errors.As(err, &stockErr):
		WriteError(w, http.StatusBadRequest, stockErr.Error(), h.log)
	case errors.Is(err, service.ErrCollaboratorUnavailable):
		WriteError(w, http.StatusServiceUnavailable, "Service temporarily unavailable", h.log)
	default:
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
	}
}
