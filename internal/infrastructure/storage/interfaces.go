package storage

import (
	"context"
	"errors"

	"github.com/eshaffer321/reconcile-backend/internal/domain/matcher"
	"github.com/eshaffer321/reconcile-backend/internal/domain/transaction"
)

var (
	// ErrNotFound is returned when a record does not exist for the owner.
	ErrNotFound = errors.New("record not found")

	// ErrNotPending is returned by conditional updates when the target row
	// is no longer pending.
	ErrNotPending = errors.New("transaction is no longer pending")
)

// Repository defines the complete storage interface.
// This interface allows swapping implementations (SQLite, PostgreSQL, etc.)
// and makes testing with mocks straightforward.
// Every method is scoped to an owner; tenants never see each other's rows.
type Repository interface {
	TransactionRepository
	BatchRepository
	SettingsRepository
	MatchRunRepository
	Close() error
}

// TransactionRepository handles expense and sale records
type TransactionRepository interface {
	// InsertTransactions stores new transactions, all of them or none
	InsertTransactions(ctx context.Context, txns []*transaction.Transaction) error

	// GetTransaction retrieves one transaction, or ErrNotFound
	GetTransaction(ctx context.Context, ownerID string, kind transaction.Kind, id string) (*transaction.Transaction, error)

	// ListTransactions returns transactions matching the filters
	ListTransactions(ctx context.Context, ownerID string, filters TransactionFilters) ([]*transaction.Transaction, error)

	// ListPending returns pending transactions of one kind in pool order
	ListPending(ctx context.Context, ownerID string, kind transaction.Kind) ([]*transaction.Transaction, error)

	// MarkMatched links one side to its counterpart if it is still pending.
	// Returns ErrNotPending when the row changed state.
	MarkMatched(ctx context.Context, ownerID string, kind transaction.Kind, id, counterpartID string) error

	// RevertMatched undoes MarkMatched for the same counterpart.
	// Used only to compensate a half-applied pairing.
	RevertMatched(ctx context.Context, ownerID string, kind transaction.Kind, id, counterpartID string) error

	// SetIgnored marks a pending transaction as ignored
	SetIgnored(ctx context.Context, ownerID string, kind transaction.Kind, id string) error

	// ListOwnersWithPending returns owners that still have pending rows
	ListOwnersWithPending(ctx context.Context) ([]string, error)
}

// MatchCommitter is implemented by stores that can apply both sides of a
// pairing in one atomic unit.
type MatchCommitter interface {
	// CommitMatch marks the expense and the sale as matched to each other,
	// or changes nothing. Returns ErrNotPending if either side changed state.
	CommitMatch(ctx context.Context, ownerID, expenseID, saleID string) error
}

// TransactionFilters defines filters for listing transactions
type TransactionFilters struct {
	Kind   transaction.Kind   // empty = both
	Status transaction.Status // empty = all
	Limit  int                // 0 = no limit
	Offset int
}

// BatchRepository handles CSV upload batches
type BatchRepository interface {
	// CreateBatch records the start of an upload
	CreateBatch(ctx context.Context, batch *transaction.Batch) error

	// CompleteBatch records the outcome of an upload
	CompleteBatch(ctx context.Context, batchID string, processedRows int, status transaction.BatchStatus, errMsg string) error

	// ListBatches returns recent batches, newest first
	ListBatches(ctx context.Context, ownerID string, limit int) ([]*transaction.Batch, error)
}

// SettingsRepository handles per-owner match configuration
type SettingsRepository interface {
	// GetSettings returns the stored configuration, or nil when unset
	GetSettings(ctx context.Context, ownerID string) (*matcher.Config, error)

	// SaveSettings creates or replaces the owner's configuration
	SaveSettings(ctx context.Context, ownerID string, cfg matcher.Config) error
}

// MatchRunRepository handles auto-match run tracking
type MatchRunRepository interface {
	// StartMatchRun records the start of an auto-match run and returns its ID
	StartMatchRun(ctx context.Context, ownerID, trigger string) (string, error)

	// CompleteMatchRun records the outcome of an auto-match run
	CompleteMatchRun(ctx context.Context, runID string, result MatchRunResult) error

	// ListMatchRuns returns recent runs, newest first
	ListMatchRuns(ctx context.Context, ownerID string, limit int) ([]MatchRun, error)

	// GetMatchRun retrieves a run by ID, or ErrNotFound
	GetMatchRun(ctx context.Context, ownerID, runID string) (*MatchRun, error)
}
