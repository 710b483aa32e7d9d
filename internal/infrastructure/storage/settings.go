package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/eshaffer321/reconcile-backend/internal/domain/matcher"
)

// GetSettings returns the owner's stored configuration, or nil when the owner
// has never saved one. A zero threshold or blank strategy falls back to the
// matcher default for that field.
func (s *Storage) GetSettings(ctx context.Context, ownerID string) (*matcher.Config, error) {
	query := s.rebind(`
	SELECT date_tolerance_days, auto_match_threshold, match_strategy
	FROM settings WHERE owner_id = ?
	`)

	var (
		tolerance, threshold int
		strategy             string
	)
	err := s.db.QueryRowContext(ctx, query, ownerID).Scan(&tolerance, &threshold, &strategy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cfg := matcher.DefaultConfig()
	cfg.DateToleranceDays = tolerance
	if threshold != 0 {
		cfg.AutoMatchThreshold = threshold
	}
	if strategy != "" {
		cfg.Strategy = matcher.Strategy(strategy)
	}
	return &cfg, nil
}

// SaveSettings creates or replaces the owner's configuration
func (s *Storage) SaveSettings(ctx context.Context, ownerID string, cfg matcher.Config) error {
	query := s.rebind(`
	INSERT INTO settings (owner_id, date_tolerance_days, auto_match_threshold, match_strategy, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(owner_id) DO UPDATE SET
		date_tolerance_days = excluded.date_tolerance_days,
		auto_match_threshold = excluded.auto_match_threshold,
		match_strategy = excluded.match_strategy,
		updated_at = excluded.updated_at
	`)

	_, err := s.db.ExecContext(ctx, query,
		ownerID,
		cfg.DateToleranceDays,
		cfg.AutoMatchThreshold,
		string(cfg.Strategy),
		s.now(),
	)
	return err
}
