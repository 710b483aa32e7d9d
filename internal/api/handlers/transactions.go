package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eshaffer321/reconcile-backend/internal/api/dto"
	"github.com/eshaffer321/reconcile-backend/internal/api/middleware"
	"github.com/eshaffer321/reconcile-backend/internal/application/service"
	"github.com/eshaffer321/reconcile-backend/internal/domain/transaction"
	"github.com/eshaffer321/reconcile-backend/internal/infrastructure/storage"
)

// TransactionsHandler handles expense and sale listing and ignore requests.
type TransactionsHandler struct {
	*Base
	repo storage.TransactionRepository
	svc  *service.ReconcileService
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(repo storage.TransactionRepository, svc *service.ReconcileService, logger *slog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		Base: NewBase(logger),
		repo: repo,
		svc:  svc,
	}
}

// List handles GET /api/transactions - returns filtered transactions, newest first.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	params := dto.DefaultTransactionListParams()
	params.Kind = r.URL.Query().Get("kind")
	params.Status = r.URL.Query().Get("status")
	params.Limit = ParseIntParam(r, "limit", params.Limit)
	params.Offset = ParseIntParam(r, "offset", params.Offset)

	filters := storage.TransactionFilters{
		Limit:  params.Limit,
		Offset: params.Offset,
	}
	if params.Kind != "" {
		kind, err := transaction.ParseKind(params.Kind)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
			return
		}
		filters.Kind = kind
	}
	switch transaction.Status(params.Status) {
	case "", transaction.StatusPending, transaction.StatusMatched, transaction.StatusIgnored:
		filters.Status = transaction.Status(params.Status)
	default:
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid status "+params.Status))
		return
	}
	if filters.Limit < 0 || filters.Offset < 0 {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("limit and offset must be non-negative"))
		return
	}

	owner := middleware.OwnerFromContext(r.Context())
	txns, err := h.repo.ListTransactions(r.Context(), owner, filters)
	if err != nil {
		h.logger.Warn("failed to list transactions", "owner_id", owner, "error", err)
		h.WriteError(w, http.StatusServiceUnavailable, dto.UnavailableError())
		return
	}

	response := dto.TransactionListResponse{
		Transactions: make([]dto.TransactionResponse, 0, len(txns)),
		Count:        len(txns),
		Limit:        params.Limit,
		Offset:       params.Offset,
	}
	for _, t := range txns {
		response.Transactions = append(response.Transactions, toTransactionResponse(t))
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Ignore handles POST /api/transactions/{kind}/{id}/ignore.
func (h *TransactionsHandler) Ignore(w http.ResponseWriter, r *http.Request) {
	kind, err := transaction.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("transaction ID is required"))
		return
	}

	owner := middleware.OwnerFromContext(r.Context())
	if err := h.svc.IgnoreTransaction(r.Context(), owner, kind, id); err != nil {
		h.WriteServiceError(w, r, err)
		return
	}

	t, err := h.repo.GetTransaction(r.Context(), owner, kind, id)
	if err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.WriteJSON(w, http.StatusOK, toTransactionResponse(t))
}
