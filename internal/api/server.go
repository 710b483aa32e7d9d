package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eshaffer321/reconcile-backend/internal/api/handlers"
	"github.com/eshaffer321/reconcile-backend/internal/api/middleware"
	"github.com/eshaffer321/reconcile-backend/internal/application/ingest"
	"github.com/eshaffer321/reconcile-backend/internal/application/service"
	"github.com/eshaffer321/reconcile-backend/internal/infrastructure/storage"
)

// Config holds API server configuration.
type Config struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           8085,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
	}
}

// Server is the HTTP API server.
type Server struct {
	config     Config
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
	repo       storage.Repository
	svc        *service.ReconcileService
	importer   *ingest.Importer
}

// NewServer creates a new API server over repo. The reconcile service and
// importer are built on the same repository when nil.
func NewServer(cfg Config, repo storage.Repository, svc *service.ReconcileService, importer *ingest.Importer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if svc == nil {
		svc = service.NewReconcileService(repo, logger, service.DefaultOptions())
	}
	if importer == nil {
		importer = ingest.NewImporter(repo, logger)
	}

	s := &Server{
		config:   cfg,
		router:   chi.NewRouter(),
		logger:   logger,
		repo:     repo,
		svc:      svc,
		importer: importer,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = s.config.AllowedOrigins
	s.router.Use(middleware.CORS(corsConfig))

	s.router.Use(middleware.Logging(s.logger))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	var pinger handlers.Pinger
	if p, ok := s.repo.(handlers.Pinger); ok {
		pinger = p
	}
	s.router.Get("/health", handlers.NewHealthHandler(pinger).ServeHTTP)

	// Every /api route acts for the owner named in the request header
	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Owner())

		// Transactions
		transactionsHandler := handlers.NewTransactionsHandler(s.repo, s.svc, s.logger)
		r.Get("/transactions", transactionsHandler.List)
		r.Post("/transactions/{kind}/{id}/ignore", transactionsHandler.Ignore)

		// CSV uploads
		batchesHandler := handlers.NewBatchesHandler(s.repo, s.importer, s.logger)
		r.Post("/batches", batchesHandler.Upload)
		r.Get("/batches", batchesHandler.List)

		// Review and matching
		matchesHandler := handlers.NewMatchesHandler(s.svc, s.logger)
		r.Get("/expenses/{id}/candidates", matchesHandler.Candidates)
		r.Get("/suggestions", matchesHandler.Suggestions)
		r.Post("/matches", matchesHandler.Confirm)
		r.Post("/auto-match", matchesHandler.AutoMatch)

		// Settings
		settingsHandler := handlers.NewSettingsHandler(s.svc, s.logger)
		r.Get("/settings", settingsHandler.Get)
		r.Put("/settings", settingsHandler.Update)

		// Stats
		statsHandler := handlers.NewStatsHandler(s.svc, s.logger)
		r.Get("/stats", statsHandler.Get)

		// Auto-match runs (historical)
		runsHandler := handlers.NewRunsHandler(s.svc, s.logger)
		r.Get("/runs", runsHandler.List)
		r.Get("/runs/{id}", runsHandler.Get)
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}
