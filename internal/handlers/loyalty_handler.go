package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tatylu/storefront/internal/repository"
	"github.com/tatylu/storefront/internal/service"
)

// LoyaltyHandler handles loyalty account HTTP requests
type LoyaltyHandler struct {
	loyaltyService *service.LoyaltyService
	log            *slog.Logger
}

// NewLoyaltyHandler creates a new loyalty handler
func NewLoyaltyHandler(loyaltyService *service.LoyaltyService, log *slog.Logger) *LoyaltyHandler {
	return &LoyaltyHandler{
		loyaltyService: loyaltyService,
		log:            log,
	}
}

// GetStatus handles GET /api/loyalty/{userId}
func (h *LoyaltyHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	status, err := h.loyaltyService.GetStatus(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			WriteError(w, http.StatusNotFound, "User not found", h.log)
			return
		}
		h.log.Error("failed to get loyalty status", "user_id", userID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, status, h.log)
}
