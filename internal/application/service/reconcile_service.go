package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/eshaffer321/reconcile-backend/internal/domain/matcher"
	"github.com/eshaffer321/reconcile-backend/internal/domain/transaction"
	"github.com/eshaffer321/reconcile-backend/internal/infrastructure/storage"
)

// Options tune a ReconcileService.
type Options struct {
	// Defaults apply to owners with no stored settings.
	Defaults matcher.Config
	// Workers bounds score-matrix goroutines. Zero means GOMAXPROCS.
	Workers int
	// Rank bounds manual-review candidate lists.
	Rank matcher.RankOptions
}

// DefaultOptions returns the service defaults.
func DefaultOptions() Options {
	return Options{
		Defaults: matcher.DefaultConfig(),
		Rank:     matcher.DefaultRankOptions(),
	}
}

// ReconcileService runs matching for owners against the transaction store.
type ReconcileService struct {
	store    storage.Repository
	logger   *slog.Logger
	defaults matcher.Config
	workers  int
	rank     matcher.RankOptions

	// Owner-level locking (only one auto-match per owner at a time)
	ownerLocks map[string]*sync.Mutex
	locksMutex sync.Mutex
}

// NewReconcileService creates a new reconcile service.
func NewReconcileService(store storage.Repository, logger *slog.Logger, opts Options) *ReconcileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconcileService{
		store:      store,
		logger:     logger,
		defaults:   opts.Defaults,
		workers:    opts.Workers,
		rank:       opts.Rank,
		ownerLocks: make(map[string]*sync.Mutex),
	}
}

// MatchConfig returns the owner's configuration, falling back to the
// service defaults when none is stored.
func (s *ReconcileService) MatchConfig(ctx context.Context, ownerID string) (matcher.Config, error) {
	cfg, err := s.store.GetSettings(ctx, ownerID)
	if err != nil {
		return matcher.Config{}, unavailable("load settings", err)
	}
	if cfg == nil {
		return s.defaults, nil
	}
	return *cfg, nil
}

// UpdateMatchConfig validates and stores the owner's configuration.
func (s *ReconcileService) UpdateMatchConfig(ctx context.Context, ownerID string, cfg matcher.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := s.store.SaveSettings(ctx, ownerID, cfg); err != nil {
		return unavailable("save settings", err)
	}
	s.logger.Info("match settings updated",
		"owner_id", ownerID,
		"date_tolerance_days", cfg.DateToleranceDays,
		"auto_match_threshold", cfg.AutoMatchThreshold,
		"strategy", cfg.Strategy,
	)
	return nil
}

// Candidates ranks pending sales for one pending expense.
func (s *ReconcileService) Candidates(ctx context.Context, ownerID, expenseID string) ([]matcher.Candidate, error) {
	session, err := s.NewSession(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	expense, err := s.store.GetTransaction(ctx, ownerID, transaction.KindExpense, expenseID)
	if err != nil {
		return nil, lookupErr("load expense", err)
	}
	if !expense.IsPending() {
		return nil, fmt.Errorf("expense %s: %w", expenseID, ErrStaleMatchTarget)
	}

	sales, err := s.store.ListPending(ctx, ownerID, transaction.KindSale)
	if err != nil {
		return nil, unavailable("list pending sales", err)
	}

	return session.Matcher.RankCandidates(expense, sales, s.rank)
}

// Suggestion pairs a pending expense with its ranked candidates.
type Suggestion struct {
	Expense    *transaction.Transaction
	Candidates []matcher.Candidate
}

// Suggestions recomputes review candidates for every pending expense.
// Expenses without any candidate above the floor are omitted.
func (s *ReconcileService) Suggestions(ctx context.Context, ownerID string) ([]Suggestion, error) {
	session, err := s.NewSession(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	expenses, sales, err := s.pendingPools(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var out []Suggestion
	for _, expense := range expenses {
		candidates, err := session.Matcher.RankCandidates(expense, sales, s.rank)
		if err != nil {
			return nil, err
		}
		if len(candidates) > 0 {
			out = append(out, Suggestion{Expense: expense, Candidates: candidates})
		}
	}
	return out, nil
}

// ConfirmMatch pairs an expense with a sale chosen by a reviewer. Both
// sides are re-read immediately before the write; if either is no longer
// pending the confirmation is rejected with ErrStaleMatchTarget.
func (s *ReconcileService) ConfirmMatch(ctx context.Context, ownerID, expenseID, saleID string) (*matcher.Match, error) {
	session, err := s.NewSession(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	expense, err := s.store.GetTransaction(ctx, ownerID, transaction.KindExpense, expenseID)
	if err != nil {
		return nil, lookupErr("load expense", err)
	}
	sale, err := s.store.GetTransaction(ctx, ownerID, transaction.KindSale, saleID)
	if err != nil {
		return nil, lookupErr("load sale", err)
	}
	if !expense.IsPending() || !sale.IsPending() {
		return nil, fmt.Errorf("confirm %s<->%s: %w", expenseID, saleID, ErrStaleMatchTarget)
	}

	match, err := session.Matcher.Evaluate(expense, sale)
	if err != nil {
		return nil, err
	}

	if err := s.commitPair(ctx, ownerID, expenseID, saleID); err != nil {
		var partial *PartialCommitError
		switch {
		case errors.As(err, &partial):
			return nil, err
		case errors.Is(err, storage.ErrNotPending), errors.Is(err, storage.ErrNotFound):
			return nil, fmt.Errorf("confirm %s<->%s: %w", expenseID, saleID, ErrStaleMatchTarget)
		default:
			return nil, unavailable("commit match", err)
		}
	}

	s.logger.Info("match confirmed",
		"owner_id", ownerID,
		"expense_id", expenseID,
		"sale_id", saleID,
		"confidence", match.Confidence,
	)
	return &match, nil
}

// IgnoreTransaction marks a pending expense or sale as ignored.
func (s *ReconcileService) IgnoreTransaction(ctx context.Context, ownerID string, kind transaction.Kind, id string) error {
	err := s.store.SetIgnored(ctx, ownerID, kind, id)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotPending):
		return fmt.Errorf("ignore %s %s: %w", kind, id, ErrStaleMatchTarget)
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("ignore %s %s: %w", kind, id, err)
	default:
		return unavailable("ignore transaction", err)
	}

	s.logger.Info("transaction ignored", "owner_id", ownerID, "kind", kind, "id", id)
	return nil
}

// Stats summarizes an owner's transactions.
type Stats struct {
	TotalTransactions int    `json:"total_transactions"`
	MatchedCount      int    `json:"matched_count"`
	MatchedPercentage int    `json:"matched_percentage"`
	PendingCount      int    `json:"pending_count"`
	IgnoredCount      int    `json:"ignored_count"`
	TotalAmount       string `json:"total_amount"`
}

// Stats recomputes dashboard totals from the store.
func (s *ReconcileService) Stats(ctx context.Context, ownerID string) (*Stats, error) {
	txns, err := s.store.ListTransactions(ctx, ownerID, storage.TransactionFilters{})
	if err != nil {
		return nil, unavailable("list transactions", err)
	}
	return computeStats(txns), nil
}

// Runs returns the owner's recent auto-match runs.
func (s *ReconcileService) Runs(ctx context.Context, ownerID string, limit int) ([]storage.MatchRun, error) {
	runs, err := s.store.ListMatchRuns(ctx, ownerID, limit)
	if err != nil {
		return nil, unavailable("list match runs", err)
	}
	return runs, nil
}

// Run returns one auto-match run.
func (s *ReconcileService) Run(ctx context.Context, ownerID, runID string) (*storage.MatchRun, error) {
	run, err := s.store.GetMatchRun(ctx, ownerID, runID)
	if err != nil {
		return nil, lookupErr("load match run", err)
	}
	return run, nil
}

func (s *ReconcileService) pendingPools(ctx context.Context, ownerID string) (expenses, sales []*transaction.Transaction, err error) {
	expenses, err = s.store.ListPending(ctx, ownerID, transaction.KindExpense)
	if err != nil {
		return nil, nil, unavailable("list pending expenses", err)
	}
	sales, err = s.store.ListPending(ctx, ownerID, transaction.KindSale)
	if err != nil {
		return nil, nil, unavailable("list pending sales", err)
	}
	return expenses, sales, nil
}

// lookupErr keeps ErrNotFound visible to callers and treats everything else
// as a store failure.
func lookupErr(op string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return unavailable(op, err)
}

// tryLockOwner attempts to acquire the auto-match lock for an owner.
func (s *ReconcileService) tryLockOwner(ownerID string) bool {
	s.locksMutex.Lock()
	defer s.locksMutex.Unlock()

	if _, exists := s.ownerLocks[ownerID]; !exists {
		s.ownerLocks[ownerID] = &sync.Mutex{}
	}

	return s.ownerLocks[ownerID].TryLock()
}

// unlockOwner releases the auto-match lock for an owner.
func (s *ReconcileService) unlockOwner(ownerID string) {
	s.locksMutex.Lock()
	defer s.locksMutex.Unlock()

	if lock, exists := s.ownerLocks[ownerID]; exists {
		lock.Unlock()
	}
}
