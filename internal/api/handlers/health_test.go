package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eshaffer321/reconcile-backend/internal/api/dto"
	"github.com/eshaffer321/reconcile-backend/internal/api/handlers"
	"github.com/eshaffer321/reconcile-backend/internal/infrastructure/storage"
)

func TestHealthHandler_ServeHTTP(t *testing.T) {
	t.Run("returns 200 OK without a database check", func(t *testing.T) {
		handler := handlers.NewHealthHandler(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		response := decode[dto.HealthResponse](t, rec)
		assert.Equal(t, "ok", response.Status)
		assert.Empty(t, response.Database)
		assert.NotEmpty(t, response.Timestamp)
	})

	t.Run("reports a reachable database", func(t *testing.T) {
		handler := handlers.NewHealthHandler(storage.NewMockRepository())

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		response := decode[dto.HealthResponse](t, rec)
		assert.Equal(t, "ok", response.Database)
	})

	t.Run("returns 503 when the database is unreachable", func(t *testing.T) {
		repo := storage.NewMockRepository()
		repo.PingErr = errors.New("connection refused")
		handler := handlers.NewHealthHandler(repo)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		response := decode[dto.HealthResponse](t, rec)
		assert.Equal(t, "degraded", response.Status)
		assert.Equal(t, "unreachable", response.Database)
	})
}
