package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eshaffer321/reconcile-backend/internal/api/dto"
	"github.com/eshaffer321/reconcile-backend/internal/api/middleware"
	"github.com/eshaffer321/reconcile-backend/internal/application/service"
)

// MatchesHandler handles candidate review, confirmation and auto-match.
type MatchesHandler struct {
	*Base
	svc *service.ReconcileService
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(svc *service.ReconcileService, logger *slog.Logger) *MatchesHandler {
	return &MatchesHandler{
		Base: NewBase(logger),
		svc:  svc,
	}
}

// Candidates handles GET /api/expenses/{id}/candidates.
func (h *MatchesHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	expenseID := chi.URLParam(r, "id")
	if expenseID == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("expense ID is required"))
		return
	}

	candidates, err := h.svc.Candidates(r.Context(), middleware.OwnerFromContext(r.Context()), expenseID)
	if err != nil {
		h.WriteServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.CandidateListResponse{
		ExpenseID:  expenseID,
		Candidates: toCandidateResponses(candidates),
	})
}

// Suggestions handles GET /api/suggestions.
func (h *MatchesHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.svc.Suggestions(r.Context(), middleware.OwnerFromContext(r.Context()))
	if err != nil {
		h.WriteServiceError(w, r, err)
		return
	}

	response := dto.SuggestionListResponse{
		Suggestions: make([]dto.SuggestionResponse, 0, len(suggestions)),
		Count:       len(suggestions),
	}
	for _, s := range suggestions {
		response.Suggestions = append(response.Suggestions, dto.SuggestionResponse{
			Expense:    toTransactionResponse(s.Expense),
			Candidates: toCandidateResponses(s.Candidates),
		})
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Confirm handles POST /api/matches - pairs a reviewer-chosen expense and sale.
func (h *MatchesHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req dto.ConfirmMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}
	if req.ExpenseID == "" || req.SaleID == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("expense_id and sale_id are required"))
		return
	}

	match, err := h.svc.ConfirmMatch(r.Context(), middleware.OwnerFromContext(r.Context()), req.ExpenseID, req.SaleID)
	if err != nil {
		h.WriteServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, toMatchResponse(*match))
}

// AutoMatch handles POST /api/auto-match - runs greedy selection and commits
// every pairing at or above the owner's threshold.
func (h *MatchesHandler) AutoMatch(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.RunAutoMatch(r.Context(), middleware.OwnerFromContext(r.Context()), service.TriggerManual)
	if err != nil && result == nil {
		h.WriteServiceError(w, r, err)
		return
	}

	response := dto.AutoMatchResponse{
		RunID:         result.RunID,
		MatchedCount:  result.MatchedCount,
		SkippedCount:  result.SkippedCount,
		TotalExpenses: result.TotalExpenses,
		TotalSales:    result.TotalSales,
		Matches:       make([]dto.MatchResponse, 0, len(result.Matches)),
	}
	for _, m := range result.Matches {
		response.Matches = append(response.Matches, toMatchResponse(m))
	}

	status := http.StatusOK
	if err != nil {
		// Pairings committed before the failure stand; report them with the error.
		response.Error = err.Error()
		status = http.StatusInternalServerError
		var partial *service.PartialCommitError
		if !errors.As(err, &partial) && errors.Is(err, service.ErrStoreUnavailable) {
			status = http.StatusServiceUnavailable
		}
	}

	h.WriteJSON(w, status, response)
}
