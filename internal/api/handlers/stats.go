package handlers

import (
	"log/slog"
	"net/http"

	"github.com/eshaffer321/reconcile-backend/internal/api/dto"
	"github.com/eshaffer321/reconcile-backend/internal/api/middleware"
	"github.com/eshaffer321/reconcile-backend/internal/application/service"
)

// StatsHandler handles stats-related HTTP requests.
type StatsHandler struct {
	*Base
	svc *service.ReconcileService
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(svc *service.ReconcileService, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		Base: NewBase(logger),
		svc:  svc,
	}
}

// Get handles GET /api/stats - returns dashboard totals for the owner.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context(), middleware.OwnerFromContext(r.Context()))
	if err != nil {
		h.WriteServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.StatsResponse{
		TotalTransactions: stats.TotalTransactions,
		MatchedCount:      stats.MatchedCount,
		MatchedPercentage: stats.MatchedPercentage,
		PendingCount:      stats.PendingCount,
		IgnoredCount:      stats.IgnoredCount,
		TotalAmount:       stats.TotalAmount,
	})
}
