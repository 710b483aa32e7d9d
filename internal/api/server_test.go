package api_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/reconcile-backend/internal/api"
	"github.com/eshaffer321/reconcile-backend/internal/api/dto"
	"github.com/eshaffer321/reconcile-backend/internal/api/middleware"
	"github.com/eshaffer321/reconcile-backend/internal/infrastructure/storage"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) (*api.Server, *storage.MockRepository) {
	t.Helper()
	repo := storage.NewMockRepository()
	server := api.NewServer(api.DefaultConfig(), repo, nil, nil, quietLogger())
	return server, repo
}

func serve(server *api.Server, method, target, owner string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if owner != "" {
		req.Header.Set(middleware.OwnerHeader, owner)
	}
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	return rec
}

func TestServer_HealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	rec := serve(server, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.HealthResponse
	err := json.NewDecoder(rec.Body).Decode(&response)
	require.NoError(t, err)
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, "ok", response.Database)
}

func TestServer_RequiresOwner(t *testing.T) {
	server, _ := newTestServer(t)

	rec := serve(server, http.MethodGet, "/api/stats", "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var response dto.APIError
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, dto.ErrCodeMissingOwner, response.Code)
}

func TestServer_Routes(t *testing.T) {
	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/api/transactions", "", http.StatusOK},
		{http.MethodGet, "/api/batches", "", http.StatusOK},
		{http.MethodPost, "/api/batches?kind=sale", "date,amount\n2024-03-01,5\n", http.StatusCreated},
		{http.MethodGet, "/api/expenses/missing/candidates", "", http.StatusNotFound},
		{http.MethodGet, "/api/suggestions", "", http.StatusOK},
		{http.MethodPost, "/api/matches", `{"expense_id":"a","sale_id":"b"}`, http.StatusNotFound},
		{http.MethodPost, "/api/transactions/expense/missing/ignore", "", http.StatusNotFound},
		{http.MethodPost, "/api/auto-match", "", http.StatusOK},
		{http.MethodGet, "/api/settings", "", http.StatusOK},
		{http.MethodPut, "/api/settings", `{"date_tolerance_days":3}`, http.StatusOK},
		{http.MethodGet, "/api/stats", "", http.StatusOK},
		{http.MethodGet, "/api/runs", "", http.StatusOK},
		{http.MethodGet, "/api/runs/missing", "", http.StatusNotFound},
		{http.MethodGet, "/api/orders", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			server, _ := newTestServer(t)

			rec := serve(server, tt.method, tt.path, "acme", strings.NewReader(tt.body))

			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestServer_CORS(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/stats", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()

	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), middleware.OwnerHeader)
}
