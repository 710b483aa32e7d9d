package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eshaffer321/reconcile-backend/internal/api/dto"
	"github.com/eshaffer321/reconcile-backend/internal/api/middleware"
	"github.com/eshaffer321/reconcile-backend/internal/application/service"
	"github.com/eshaffer321/reconcile-backend/internal/infrastructure/storage"
)

// RunsHandler handles auto-match run history requests.
type RunsHandler struct {
	*Base
	svc *service.ReconcileService
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(svc *service.ReconcileService, logger *slog.Logger) *RunsHandler {
	return &RunsHandler{
		Base: NewBase(logger),
		svc:  svc,
	}
}

// List handles GET /api/runs - returns recent auto-match runs.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := ParseIntParam(r, "limit", dto.DefaultMatchRunListParams().Limit)

	runs, err := h.svc.Runs(r.Context(), middleware.OwnerFromContext(r.Context()), limit)
	if err != nil {
		h.WriteServiceError(w, r, err)
		return
	}

	response := dto.MatchRunListResponse{
		Runs:  make([]dto.MatchRunResponse, 0, len(runs)),
		Count: len(runs),
	}

	for _, run := range runs {
		response.Runs = append(response.Runs, toMatchRunResponse(run))
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Get handles GET /api/runs/{id} - returns a single run by ID.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("run ID is required"))
		return
	}

	run, err := h.svc.Run(r.Context(), middleware.OwnerFromContext(r.Context()), id)
	if err != nil {
		h.WriteServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, toMatchRunResponse(*run))
}

// toMatchRunResponse converts a storage MatchRun to an API response.
func toMatchRunResponse(run storage.MatchRun) dto.MatchRunResponse {
	response := dto.MatchRunResponse{
		ID:            run.ID,
		Trigger:       run.Trigger,
		StartedAt:     run.StartedAt.UTC().Format(time.RFC3339),
		TotalExpenses: run.TotalExpenses,
		TotalSales:    run.TotalSales,
		MatchedCount:  run.MatchedCount,
		SkippedCount:  run.SkippedCount,
		Status:        run.Status,
		ErrorMessage:  run.ErrorMessage,
	}
	if run.CompletedAt != nil {
		response.CompletedAt = run.CompletedAt.UTC().Format(time.RFC3339)
	}
	return response
}
