package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/eshaffer321/reconcile-backend/internal/api/dto"
	"github.com/eshaffer321/reconcile-backend/internal/api/middleware"
	"github.com/eshaffer321/reconcile-backend/internal/application/service"
	"github.com/eshaffer321/reconcile-backend/internal/domain/matcher"
	"github.com/eshaffer321/reconcile-backend/internal/domain/transaction"
	"github.com/eshaffer321/reconcile-backend/internal/infrastructure/storage"
)

// Base provides shared functionality for all handlers.
type Base struct {
	logger *slog.Logger
}

// NewBase creates a new base handler with the given logger.
func NewBase(logger *slog.Logger) *Base {
	if logger == nil {
		logger = slog.Default()
	}
	return &Base{logger: logger}
}

// WriteJSON writes a JSON response with the given status code.
func (b *Base) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes an error response with the given status code.
func (b *Base) WriteError(w http.ResponseWriter, status int, err dto.APIError) {
	b.WriteJSON(w, status, err)
}

// WriteServiceError maps a service error onto a status code and error body.
func (b *Base) WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var partial *service.PartialCommitError
	switch {
	case errors.As(err, &partial):
		b.logger.Error("match left partially committed",
			"owner_id", middleware.OwnerFromContext(r.Context()),
			"expense_id", partial.ExpenseID,
			"sale_id", partial.SaleID,
			"error", err,
		)
		b.WriteError(w, http.StatusInternalServerError, dto.PartialCommitError(err.Error()))
	case errors.Is(err, service.ErrStaleMatchTarget), errors.Is(err, service.ErrRunInProgress):
		b.WriteError(w, http.StatusConflict, dto.ConflictError(err.Error()))
	case errors.Is(err, storage.ErrNotFound):
		b.WriteError(w, http.StatusNotFound, dto.NewAPIError(dto.ErrCodeNotFound, err.Error()))
	case errors.Is(err, matcher.ErrInvalidConfiguration), errors.Is(err, matcher.ErrMalformedTransaction):
		b.WriteError(w, http.StatusBadRequest, dto.ValidationError(err.Error()))
	case errors.Is(err, service.ErrStoreUnavailable):
		b.logger.Warn("store unavailable", "path", r.URL.Path, "error", err)
		b.WriteError(w, http.StatusServiceUnavailable, dto.UnavailableError())
	default:
		b.logger.Error("request failed", "path", r.URL.Path, "error", err)
		b.WriteError(w, http.StatusInternalServerError, dto.InternalError())
	}
}

// ParseIntParam parses an integer query parameter with a default value.
func ParseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// ParseBoolParam parses a boolean query parameter with a default value.
func ParseBoolParam(r *http.Request, name string, defaultVal bool) bool {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	return val == "true" || val == "1"
}

func toTransactionResponse(t *transaction.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:           t.ID,
		Kind:         string(t.Kind),
		Date:         t.Date.String(),
		Amount:       t.Amount.StringFixed(2),
		Counterparty: t.Counterparty,
		Description:  t.Description,
		Status:       string(t.Status),
		MatchedID:    t.MatchedID,
		BatchID:      t.BatchID,
		CreatedAt:    t.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toCandidateResponses(candidates []matcher.Candidate) []dto.CandidateResponse {
	out := make([]dto.CandidateResponse, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, dto.CandidateResponse{
			Sale:      toTransactionResponse(c.Sale),
			Score:     c.Score,
			DaysApart: c.DaysApart,
		})
	}
	return out
}

func toMatchResponse(m matcher.Match) dto.MatchResponse {
	return dto.MatchResponse{
		ExpenseID:  m.ExpenseID,
		SaleID:     m.SaleID,
		Confidence: m.Confidence,
		Reasons:    m.Reasons,
	}
}
