package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// StartMatchRun records the start of an auto-match run
func (s *Storage) StartMatchRun(ctx context.Context, ownerID, trigger string) (string, error) {
	if trigger == "" {
		trigger = "manual"
	}
	runID := uuid.NewString()

	query := s.rebind(`
	INSERT INTO match_runs (id, owner_id, triggered_by, started_at, status)
	VALUES (?, ?, ?, ?, ?)
	`)

	if _, err := s.db.ExecContext(ctx, query, runID, ownerID, trigger, s.now(), RunStatusRunning); err != nil {
		return "", fmt.Errorf("failed to start match run: %w", err)
	}
	return runID, nil
}

// CompleteMatchRun records the outcome of an auto-match run
func (s *Storage) CompleteMatchRun(ctx context.Context, runID string, result MatchRunResult) error {
	status := result.Status
	if status == "" {
		status = RunStatusCompleted
	}

	query := s.rebind(`
	UPDATE match_runs
	SET completed_at = ?, total_expenses = ?, total_sales = ?,
	    matched_count = ?, skipped_count = ?, status = ?, error_message = ?
	WHERE id = ?
	`)

	res, err := s.db.ExecContext(ctx, query,
		s.now(),
		result.TotalExpenses,
		result.TotalSales,
		result.MatchedCount,
		result.SkippedCount,
		status,
		result.ErrorMessage,
		runID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const matchRunColumns = `id, owner_id, triggered_by, started_at, completed_at,
	total_expenses, total_sales, matched_count, skipped_count, status, error_message`

// ListMatchRuns returns recent runs, newest first
func (s *Storage) ListMatchRuns(ctx context.Context, ownerID string, limit int) ([]MatchRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := s.rebind(`SELECT ` + matchRunColumns + `
	FROM match_runs
	WHERE owner_id = ?
	ORDER BY started_at DESC, id
	LIMIT ?`)

	rows, err := s.db.QueryContext(ctx, query, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []MatchRun
	for rows.Next() {
		run, err := scanMatchRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetMatchRun retrieves a run by ID
func (s *Storage) GetMatchRun(ctx context.Context, ownerID, runID string) (*MatchRun, error) {
	query := s.rebind(`SELECT ` + matchRunColumns + `
	FROM match_runs WHERE id = ? AND owner_id = ?`)

	run, err := scanMatchRun(s.db.QueryRowContext(ctx, query, runID, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return run, err
}

func scanMatchRun(row rowScanner) (*MatchRun, error) {
	run := &MatchRun{}
	var completedAt sql.NullTime

	err := row.Scan(
		&run.ID,
		&run.OwnerID,
		&run.Trigger,
		&run.StartedAt,
		&completedAt,
		&run.TotalExpenses,
		&run.TotalSales,
		&run.MatchedCount,
		&run.SkippedCount,
		&run.Status,
		&run.ErrorMessage,
	)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	return run, nil
}
