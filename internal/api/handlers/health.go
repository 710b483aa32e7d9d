package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/eshaffer321/reconcile-backend/internal/api/dto"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	*Base
	db Pinger
}

// NewHealthHandler creates a new health handler. db may be nil.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{Base: NewBase(nil), db: db}
}

// ServeHTTP handles the health check request.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		h.WriteJSON(w, http.StatusOK, dto.NewHealthResponse("ok"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		response := dto.NewHealthResponse("degraded")
		response.Database = "unreachable"
		h.WriteJSON(w, http.StatusServiceUnavailable, response)
		return
	}

	response := dto.NewHealthResponse("ok")
	response.Database = "ok"
	h.WriteJSON(w, http.StatusOK, response)
}
