// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback), optionally seeded from a .env file
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	store, err := storage.Open(cfg.Storage.Driver, cfg.Storage.ConnString())
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/eshaffer321/reconcile-backend/internal/domain/matcher"
)

// Config represents the entire application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	Matching      MatchingConfig      `yaml:"matching"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	Driver       string `yaml:"driver"`        // "sqlite3" or "pgx"
	DatabasePath string `yaml:"database_path"` // used by sqlite3
	DSN          string `yaml:"dsn"`           // used by pgx
}

// ConnString returns the data source name for the configured driver
func (s StorageConfig) ConnString() string {
	if s.Driver == "pgx" {
		return s.DSN
	}
	return s.DatabasePath
}

// MatchingConfig holds matcher defaults for owners without stored settings
type MatchingConfig struct {
	DateToleranceDays  int    `yaml:"date_tolerance_days"`
	AutoMatchThreshold int    `yaml:"auto_match_threshold"`
	Strategy           string `yaml:"strategy"`
	Workers            int    `yaml:"workers"`
	CandidateFloor     int    `yaml:"candidate_floor"`
	CandidateLimit     int    `yaml:"candidate_limit"`
}

// Defaults converts the section into matcher configuration
func (m MatchingConfig) Defaults() matcher.Config {
	return matcher.Config{
		DateToleranceDays:  m.DateToleranceDays,
		AutoMatchThreshold: m.AutoMatchThreshold,
		Strategy:           matcher.Strategy(m.Strategy),
	}
}

// RankOptions converts the section into candidate ranking bounds
func (m MatchingConfig) RankOptions() matcher.RankOptions {
	return matcher.RankOptions{
		MinFloor: m.CandidateFloor,
		TopN:     m.CandidateLimit,
	}
}

// SchedulerConfig holds background auto-match settings
type SchedulerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Spec    string `yaml:"spec"` // cron expression, e.g. "@hourly"
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${DATABASE_URL})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	defaults := matcher.DefaultConfig()
	rank := matcher.DefaultRankOptions()

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("RECONCILE_HOST", "127.0.0.1"),
			Port: getEnvInt("RECONCILE_PORT", 8085),
		},
		Storage: StorageConfig{
			Driver:       getEnv("RECONCILE_DB_DRIVER", "sqlite3"),
			DatabasePath: getEnv("RECONCILE_DB_PATH", "reconcile.db"),
			DSN:          os.Getenv("DATABASE_URL"),
		},
		Matching: MatchingConfig{
			DateToleranceDays:  getEnvInt("MATCH_DATE_TOLERANCE_DAYS", defaults.DateToleranceDays),
			AutoMatchThreshold: getEnvInt("MATCH_AUTO_THRESHOLD", defaults.AutoMatchThreshold),
			Strategy:           getEnv("MATCH_STRATEGY", string(defaults.Strategy)),
			Workers:            getEnvInt("MATCH_WORKERS", 0),
			CandidateFloor:     getEnvInt("MATCH_CANDIDATE_FLOOR", rank.MinFloor),
			CandidateLimit:     getEnvInt("MATCH_CANDIDATE_LIMIT", rank.TopN),
		},
		Scheduler: SchedulerConfig{
			Enabled: getEnv("AUTO_MATCH_SCHEDULE", "") != "",
			Spec:    getEnv("AUTO_MATCH_SCHEDULE", "@hourly"),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnv_WithPath("config.yaml")
}

// LoadOrEnv_WithPath tries to load from specified path, falls back to environment variables
func LoadOrEnv_WithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// LoadDotEnv seeds the process environment from .env files. Variables that
// are already set win, and missing files are not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Validate checks the settings that would otherwise fail at startup
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "sqlite3":
		if c.Storage.DatabasePath == "" {
			return errors.New("storage.database_path is required for sqlite3")
		}
	case "pgx":
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn is required for pgx")
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}

	if err := c.Matching.Defaults().Validate(); err != nil {
		return fmt.Errorf("matching: %w", err)
	}
	return nil
}

// applyDefaults fills fields a YAML file left empty
func (c *Config) applyDefaults() {
	defaults := matcher.DefaultConfig()
	rank := matcher.DefaultRankOptions()

	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8085
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "sqlite3"
	}
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = "reconcile.db"
	}
	if c.Matching.AutoMatchThreshold == 0 {
		c.Matching.AutoMatchThreshold = defaults.AutoMatchThreshold
	}
	if c.Matching.Strategy == "" {
		c.Matching.Strategy = string(defaults.Strategy)
	}
	if c.Matching.DateToleranceDays == 0 {
		c.Matching.DateToleranceDays = defaults.DateToleranceDays
	}
	if c.Matching.CandidateFloor == 0 {
		c.Matching.CandidateFloor = rank.MinFloor
	}
	if c.Matching.CandidateLimit == 0 {
		c.Matching.CandidateLimit = rank.TopN
	}
	if c.Scheduler.Spec == "" {
		c.Scheduler.Spec = "@hourly"
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}
