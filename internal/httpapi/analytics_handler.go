package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/codernexus4-star/unitrade-nexus-sub000/internal/analytics"
)

type AnalyticsHandler struct {
	service *analytics.Service
	timeout time.Duration
}

func NewAnalyticsHandler(service *analytics.Service, timeout time.Duration) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		timeout: timeout,
	}
}

// GET /api/v1/sellers/{seller_id}/metrics?refresh=1
func (h *AnalyticsHandler) SellerMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	sellerID := chi.URLParam(r, "seller_id")
	if sellerID == "" {
		respondError(w, http.StatusBadRequest, "missing_seller_id", "seller_id is required", false)
		return
	}

	refresh := r.URL.Query().Get("refresh") == "1"

	metrics, err := h.service.SellerMetrics(ctx, sellerID, refresh)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, metrics)
}
