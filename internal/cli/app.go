package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/eshaffer321/reconcile-backend/internal/application/service"
	"github.com/eshaffer321/reconcile-backend/internal/infrastructure/config"
	"github.com/eshaffer321/reconcile-backend/internal/infrastructure/logging"
	"github.com/eshaffer321/reconcile-backend/internal/infrastructure/storage"
)

// LoadConfig reads configFile, or the first config.yaml/config.yml found in
// the working directory, falling back to environment variables. A .env file
// is loaded first when present.
func LoadConfig(configFile string) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	if configFile == "" {
		for _, candidate := range []string{"config.yaml", "config.yml"} {
			if _, err := os.Stat(candidate); err == nil {
				configFile = candidate
				break
			}
		}
	}

	var cfg *config.Config
	if configFile == "" {
		cfg = config.LoadFromEnv()
	} else {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", configFile, err)
		}
		cfg = loaded
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// NewLogger builds the logger for a subcommand
func NewLogger(cfg *config.Config, flags CommonFlags, system string) *slog.Logger {
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	return logging.NewLoggerWithSystem(loggingCfg, system)
}

// OpenStore connects to the configured database and applies migrations
func OpenStore(cfg *config.Config) (*storage.Storage, error) {
	store, err := storage.Open(cfg.Storage.Driver, cfg.Storage.ConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}
	return store, nil
}

// NewReconcileService builds the service with the configured matcher defaults
func NewReconcileService(cfg *config.Config, store storage.Repository, logger *slog.Logger) *service.ReconcileService {
	return service.NewReconcileService(store, logger, service.Options{
		Defaults: cfg.Matching.Defaults(),
		Workers:  cfg.Matching.Workers,
		Rank:     cfg.Matching.RankOptions(),
	})
}
