package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/reconcile-backend/internal/api/middleware"
	"github.com/eshaffer321/reconcile-backend/internal/application/service"
	"github.com/eshaffer321/reconcile-backend/internal/domain/transaction"
	"github.com/eshaffer321/reconcile-backend/internal/infrastructure/storage"
)

const testOwner = "acme"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(repo storage.Repository) *service.ReconcileService {
	return service.NewReconcileService(repo, quietLogger(), service.DefaultOptions())
}

func march(d int) civil.Date {
	return civil.Date{Year: 2024, Month: time.March, Day: d}
}

func txn(id string, kind transaction.Kind, amount string, date civil.Date, description string) *transaction.Transaction {
	return &transaction.Transaction{
		ID:          id,
		OwnerID:     testOwner,
		Kind:        kind,
		Date:        date,
		Amount:      decimal.RequireFromString(amount),
		Description: description,
		Status:      transaction.StatusPending,
		CreatedAt:   time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC),
	}
}

// ownerRequest builds a request that has already passed the Owner middleware.
func ownerRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	return req.WithContext(middleware.WithOwner(req.Context(), testOwner))
}

// withParams attaches chi URL parameters given as key, value pairs.
func withParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}
