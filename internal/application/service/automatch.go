package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/eshaffer321/reconcile-backend/internal/domain/matcher"
	"github.com/eshaffer321/reconcile-backend/internal/domain/transaction"
	"github.com/eshaffer321/reconcile-backend/internal/infrastructure/storage"
)

// Run triggers
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

// AutoMatchResult summarizes one auto-match run.
type AutoMatchResult struct {
	RunID         string          `json:"run_id"`
	MatchedCount  int             `json:"matched_count"`
	SkippedCount  int             `json:"skipped_count"`
	TotalExpenses int             `json:"total_expenses"`
	TotalSales    int             `json:"total_sales"`
	Matches       []matcher.Match `json:"matches"`
}

// RunAutoMatch selects and commits every pending pairing for the owner that
// scores at or above the auto-match threshold.
//
// Pairings whose targets changed state after selection are skipped. Any other
// store failure stops the run; pairings committed before it are kept and the
// partial result is returned alongside the error.
func (s *ReconcileService) RunAutoMatch(ctx context.Context, ownerID, trigger string) (*AutoMatchResult, error) {
	if !s.tryLockOwner(ownerID) {
		return nil, fmt.Errorf("%w: %s", ErrRunInProgress, ownerID)
	}
	defer s.unlockOwner(ownerID)

	session, err := s.NewSession(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	runID, err := s.store.StartMatchRun(ctx, ownerID, trigger)
	if err != nil {
		return nil, unavailable("start match run", err)
	}

	logger := s.logger.With("owner_id", ownerID, "run_id", runID)
	logger.Info("auto-match started",
		"trigger", trigger,
		"strategy", session.Config.Strategy,
		"threshold", session.Config.AutoMatchThreshold,
	)

	result := &AutoMatchResult{RunID: runID, Matches: []matcher.Match{}}
	runErr := s.autoMatch(ctx, session, result)

	status := storage.RunStatusCompleted
	errMsg := ""
	if runErr != nil {
		status = storage.RunStatusFailed
		errMsg = runErr.Error()
		logger.Error("auto-match failed",
			"matched", result.MatchedCount,
			"skipped", result.SkippedCount,
			"error", runErr,
		)
	} else {
		logger.Info("auto-match completed",
			"expenses", result.TotalExpenses,
			"sales", result.TotalSales,
			"matched", result.MatchedCount,
			"skipped", result.SkippedCount,
		)
	}

	// Recording must outlive a cancelled request so the run is not left open
	recordCtx := context.WithoutCancel(ctx)
	if err := s.store.CompleteMatchRun(recordCtx, runID, storage.MatchRunResult{
		TotalExpenses: result.TotalExpenses,
		TotalSales:    result.TotalSales,
		MatchedCount:  result.MatchedCount,
		SkippedCount:  result.SkippedCount,
		Status:        status,
		ErrorMessage:  errMsg,
	}); err != nil {
		logger.Error("failed to record match run", "error", err)
		if runErr == nil {
			runErr = unavailable("complete match run", err)
		}
	}

	return result, runErr
}

func (s *ReconcileService) autoMatch(ctx context.Context, session *Session, result *AutoMatchResult) error {
	expenses, sales, err := s.pendingPools(ctx, session.OwnerID)
	if err != nil {
		return err
	}
	result.TotalExpenses = len(expenses)
	result.TotalSales = len(sales)

	matches, err := session.Matcher.SelectMatches(ctx, expenses, sales)
	if err != nil {
		return fmt.Errorf("select matches: %w", err)
	}

	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := s.commitPair(ctx, session.OwnerID, m.ExpenseID, m.SaleID)

		var partial *PartialCommitError
		switch {
		case err == nil:
			result.MatchedCount++
			result.Matches = append(result.Matches, m)
			s.logger.Debug("auto-matched",
				"owner_id", session.OwnerID,
				"expense_id", m.ExpenseID,
				"sale_id", m.SaleID,
				"confidence", m.Confidence,
			)
		case errors.As(err, &partial):
			s.logger.Error("partial match commit",
				"owner_id", session.OwnerID,
				"expense_id", partial.ExpenseID,
				"sale_id", partial.SaleID,
				"cause", partial.Cause,
				"revert_error", partial.RevertErr,
			)
			return err
		case errors.Is(err, storage.ErrNotPending), errors.Is(err, storage.ErrNotFound):
			// Claimed elsewhere since selection
			result.SkippedCount++
			s.logger.Debug("match target no longer available",
				"owner_id", session.OwnerID,
				"expense_id", m.ExpenseID,
				"sale_id", m.SaleID,
			)
		default:
			return unavailable("commit match", err)
		}
	}

	return nil
}

// commitPair writes both sides of a pairing. Stores that implement
// storage.MatchCommitter do it atomically; otherwise the expense is written
// first and reverted once if the sale write fails.
func (s *ReconcileService) commitPair(ctx context.Context, ownerID, expenseID, saleID string) error {
	if committer, ok := s.store.(storage.MatchCommitter); ok {
		return committer.CommitMatch(ctx, ownerID, expenseID, saleID)
	}

	if err := s.store.MarkMatched(ctx, ownerID, transaction.KindExpense, expenseID, saleID); err != nil {
		return err
	}

	saleErr := s.store.MarkMatched(ctx, ownerID, transaction.KindSale, saleID, expenseID)
	if saleErr == nil {
		return nil
	}

	if err := s.store.RevertMatched(context.WithoutCancel(ctx), ownerID, transaction.KindExpense, expenseID, saleID); err != nil {
		return &PartialCommitError{
			ExpenseID: expenseID,
			SaleID:    saleID,
			Cause:     saleErr,
			RevertErr: err,
		}
	}
	return saleErr
}
