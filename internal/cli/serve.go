package cli

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/eshaffer321/reconcile-backend/internal/api"
	"github.com/eshaffer321/reconcile-backend/internal/application/ingest"
	"github.com/eshaffer321/reconcile-backend/internal/application/service"
	"github.com/eshaffer321/reconcile-backend/internal/infrastructure/config"
)

// RunServe runs the API server, and the auto-match scheduler when one is
// configured, until SIGINT or SIGTERM.
func RunServe(cfg *config.Config, flags *ServeFlags) error {
	logger := NewLogger(cfg, flags.CommonFlags, "api")

	store, err := OpenStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	svc := NewReconcileService(cfg, store, logger)
	importer := ingest.NewImporter(store, logger.With("system", "ingest"))

	apiCfg := api.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}
	if flags.Port != 0 {
		apiCfg.Port = flags.Port
	}
	if len(apiCfg.AllowedOrigins) == 0 {
		apiCfg.AllowedOrigins = api.DefaultConfig().AllowedOrigins
	}

	server := api.NewServer(apiCfg, store, svc, importer, logger)

	spec := cfg.Scheduler.Spec
	if flags.Schedule != "" {
		spec = flags.Schedule
	}
	var scheduler *service.Scheduler
	if cfg.Scheduler.Enabled || flags.Schedule != "" {
		scheduler, err = service.NewScheduler(svc, spec, logger.With("system", "scheduler"))
		if err != nil {
			return err
		}
		scheduler.Start()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		logger.Info("received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if scheduler != nil {
			scheduler.Stop(shutdownCtx)
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", slog.Any("error", err))
		}
	}()

	// Start server (blocks until shutdown)
	if err := server.Start(); err != nil {
		stop()
		<-done
		return err
	}

	<-done
	logger.Info("server stopped")
	return nil
}
