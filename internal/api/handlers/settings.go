package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/eshaffer321/reconcile-backend/internal/api/dto"
	"github.com/eshaffer321/reconcile-backend/internal/api/middleware"
	"github.com/eshaffer321/reconcile-backend/internal/application/service"
	"github.com/eshaffer321/reconcile-backend/internal/domain/matcher"
)

// SettingsHandler handles per-owner match configuration.
type SettingsHandler struct {
	*Base
	svc *service.ReconcileService
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(svc *service.ReconcileService, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{
		Base: NewBase(logger),
		svc:  svc,
	}
}

// Get handles GET /api/settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.MatchConfig(r.Context(), middleware.OwnerFromContext(r.Context()))
	if err != nil {
		h.WriteServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, toSettingsResponse(cfg))
}

// Update handles PUT /api/settings. Omitted fields keep their current value.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}

	owner := middleware.OwnerFromContext(r.Context())
	cfg, err := h.svc.MatchConfig(r.Context(), owner)
	if err != nil {
		h.WriteServiceError(w, r, err)
		return
	}

	if req.DateToleranceDays != nil {
		cfg.DateToleranceDays = *req.DateToleranceDays
	}
	if req.AutoMatchThreshold != nil {
		cfg.AutoMatchThreshold = *req.AutoMatchThreshold
	}
	if req.Strategy != nil {
		cfg.Strategy = matcher.Strategy(*req.Strategy)
	}

	if err := h.svc.UpdateMatchConfig(r.Context(), owner, cfg); err != nil {
		h.WriteServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, toSettingsResponse(cfg))
}

func toSettingsResponse(cfg matcher.Config) dto.SettingsResponse {
	return dto.SettingsResponse{
		DateToleranceDays:  cfg.DateToleranceDays,
		AutoMatchThreshold: cfg.AutoMatchThreshold,
		Strategy:           string(cfg.Strategy),
	}
}
