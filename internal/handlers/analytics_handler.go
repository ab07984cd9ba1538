package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tatylu/storefront/internal/service"
)

// AnalyticsHandler handles sales reporting HTTP requests
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	log       *slog.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analytics *service.AnalyticsService, log *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: analytics,
		log:       log,
	}
}

// SalesSummary handles GET /api/analytics/sales-summary
func (h *AnalyticsHandler) SalesSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.analytics.SalesSummary(r.Context())
	if err != nil {
		h.log.Error("failed to compute sales summary", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, summary, h.log)
}

// TopProducts handles GET /api/analytics/top-products
func (h *AnalyticsHandler) TopProducts(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	rows, err := h.analytics.TopProducts(r.Context(), limit)
	if err != nil {
		h.log.Error("failed to compute top products", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"topProducts": rows,
	}, h.log)
}
