package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/reconcile-backend/internal/domain/matcher"
	"github.com/eshaffer321/reconcile-backend/internal/domain/transaction"
	"github.com/eshaffer321/reconcile-backend/internal/infrastructure/storage"
)

const owner = "owner-1"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(store storage.Repository) *ReconcileService {
	return NewReconcileService(store, quietLogger(), DefaultOptions())
}

func march(d int) civil.Date {
	return civil.Date{Year: 2024, Month: time.March, Day: d}
}

func txn(id string, kind transaction.Kind, amount string, date civil.Date, description string) *transaction.Transaction {
	return &transaction.Transaction{
		ID:          id,
		OwnerID:     owner,
		Kind:        kind,
		Date:        date,
		Amount:      decimal.RequireFromString(amount),
		Description: description,
		Status:      transaction.StatusPending,
	}
}

func fuzzy(threshold int) matcher.Config {
	return matcher.Config{DateToleranceDays: 7, AutoMatchThreshold: threshold, Strategy: matcher.StrategyFuzzy}
}

func TestReconcileService_MatchConfig_DefaultsWhenUnset(t *testing.T) {
	svc := newTestService(storage.NewMockRepository())

	cfg, err := svc.MatchConfig(context.Background(), owner)

	require.NoError(t, err)
	assert.Equal(t, matcher.DefaultConfig(), cfg)
}

func TestReconcileService_UpdateMatchConfig(t *testing.T) {
	repo := storage.NewMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	err := svc.UpdateMatchConfig(ctx, owner, matcher.Config{DateToleranceDays: 7, AutoMatchThreshold: 40, Strategy: matcher.StrategyFuzzy})
	assert.ErrorIs(t, err, matcher.ErrInvalidConfiguration)

	require.NoError(t, svc.UpdateMatchConfig(ctx, owner, fuzzy(80)))
	cfg, err := svc.MatchConfig(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, fuzzy(80), cfg)
}

func TestReconcileService_MatchConfig_StoreError(t *testing.T) {
	repo := storage.NewMockRepository()
	repo.GetSettingsErr = errors.New("connection refused")
	svc := newTestService(repo)

	_, err := svc.MatchConfig(context.Background(), owner)

	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

// Exact amount on the same date scores 90 under amount_and_date, which is
// below the default threshold of 95: offered for review, never auto-matched.
func TestRunAutoMatch_ExactAmountSameDateBelowDefaultThreshold(t *testing.T) {
	repo := storage.NewMockRepository()
	repo.AddTransaction(txn("e1", transaction.KindExpense, "100.00", march(1), ""))
	repo.AddTransaction(txn("s1", transaction.KindSale, "100.00", march(1), ""))
	svc := newTestService(repo)
	ctx := context.Background()

	result, err := svc.RunAutoMatch(ctx, owner, TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 0, result.MatchedCount)
	assert.Equal(t, 1, result.TotalExpenses)
	assert.Equal(t, 1, result.TotalSales)
	assert.Empty(t, result.Matches)

	candidates, err := svc.Candidates(ctx, owner, "e1")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "s1", candidates[0].Sale.ID)
	assert.Equal(t, 90, candidates[0].Score)
}

func TestRunAutoMatch_FuzzyIdenticalDescriptions(t *testing.T) {
	repo := storage.NewMockRepository()
	repo.AddTransaction(txn("e1", transaction.KindExpense, "100.00", march(1), "Invoice 123"))
	repo.AddTransaction(txn("s1", transaction.KindSale, "100.00", march(1), "Invoice 123"))
	svc := newTestService(repo)
	ctx := context.Background()
	require.NoError(t, svc.UpdateMatchConfig(ctx, owner, fuzzy(95)))

	result, err := svc.RunAutoMatch(ctx, owner, TriggerManual)

	require.NoError(t, err)
	require.Equal(t, 1, result.MatchedCount)
	assert.Equal(t, "e1", result.Matches[0].ExpenseID)
	assert.Equal(t, "s1", result.Matches[0].SaleID)
	assert.Equal(t, 100, result.Matches[0].Confidence)
	assert.Equal(t, []string{"Exact amount match", "Same date"}, result.Matches[0].Reasons)

	e := repo.Snapshot(transaction.KindExpense, "e1")
	s := repo.Snapshot(transaction.KindSale, "s1")
	assert.Equal(t, transaction.StatusMatched, e.Status)
	assert.Equal(t, "s1", e.MatchedID)
	assert.Equal(t, transaction.StatusMatched, s.Status)
	assert.Equal(t, "e1", s.MatchedID)

	require.NotNil(t, repo.LastRunResult)
	assert.Equal(t, storage.RunStatusCompleted, repo.LastRunResult.Status)
	assert.Equal(t, 1, repo.LastRunResult.MatchedCount)
}

func TestRunAutoMatch_TwoExpensesCompeteForOneSale(t *testing.T) {
	// Each expense scores 70 + 20 + 6 = 96 against the only sale
	repo := storage.NewMockRepository()
	repo.AddTransaction(txn("e1", transaction.KindExpense, "100.00", march(1), "abcdefwxyz"))
	repo.AddTransaction(txn("e2", transaction.KindExpense, "100.00", march(1), "abcdefwxyz"))
	repo.AddTransaction(txn("s1", transaction.KindSale, "100.00", march(1), "abcdefghij"))
	svc := newTestService(repo)
	ctx := context.Background()
	require.NoError(t, svc.UpdateMatchConfig(ctx, owner, fuzzy(95)))

	result, err := svc.RunAutoMatch(ctx, owner, TriggerManual)

	require.NoError(t, err)
	require.Equal(t, 1, result.MatchedCount)
	assert.Equal(t, 96, result.Matches[0].Confidence)

	s := repo.Snapshot(transaction.KindSale, "s1")
	assert.Equal(t, transaction.StatusMatched, s.Status)
	winner := repo.Snapshot(transaction.KindExpense, s.MatchedID)
	require.NotNil(t, winner)
	assert.Equal(t, "s1", winner.MatchedID)

	var pending int
	for _, id := range []string{"e1", "e2"} {
		if repo.Snapshot(transaction.KindExpense, id).Status == transaction.StatusPending {
			pending++
		}
	}
	assert.Equal(t, 1, pending, "exactly one expense stays pending")
}

func TestRunAutoMatch_SecondRunMatchesNothing(t *testing.T) {
	repo := storage.NewMockRepository()
	for _, id := range []string{"a", "b", "c"} {
		repo.AddTransaction(txn("e-"+id, transaction.KindExpense, "25.00", march(3), "Order "+id))
		repo.AddTransaction(txn("s-"+id, transaction.KindSale, "25.00", march(3), "Order "+id))
	}
	svc := newTestService(repo)
	ctx := context.Background()
	require.NoError(t, svc.UpdateMatchConfig(ctx, owner, fuzzy(95)))

	first, err := svc.RunAutoMatch(ctx, owner, TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 3, first.MatchedCount)

	second, err := svc.RunAutoMatch(ctx, owner, TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 0, second.MatchedCount)
	assert.Equal(t, 0, second.TotalExpenses)
	assert.Equal(t, 0, second.TotalSales)
}

func TestRunAutoMatch_MutualExclusivity(t *testing.T) {
	repo := storage.NewMockRepository()
	for _, id := range []string{"1", "2", "3", "4"} {
		repo.AddTransaction(txn("e"+id, transaction.KindExpense, "50.00", march(10), "Consulting"))
	}
	for _, id := range []string{"1", "2", "3"} {
		repo.AddTransaction(txn("s"+id, transaction.KindSale, "50.00", march(10), "Consulting"))
	}
	svc := newTestService(repo)
	ctx := context.Background()
	require.NoError(t, svc.UpdateMatchConfig(ctx, owner, fuzzy(95)))

	result, err := svc.RunAutoMatch(ctx, owner, TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 3, result.MatchedCount)

	txns, err := repo.ListTransactions(ctx, owner, storage.TransactionFilters{Status: transaction.StatusMatched})
	require.NoError(t, err)

	seen := make(map[string]string)
	for _, tx := range txns {
		prev, dup := seen[tx.MatchedID]
		assert.False(t, dup, "%s referenced by %s and %s", tx.MatchedID, prev, tx.ID)
		seen[tx.MatchedID] = tx.ID

		counterpart := repo.Snapshot(tx.Kind.Opposite(), tx.MatchedID)
		require.NotNil(t, counterpart)
		assert.Equal(t, tx.ID, counterpart.MatchedID, "links are symmetric")
	}
}

func TestRunAutoMatch_SkipsTargetClaimedAfterSelection(t *testing.T) {
	repo := storage.NewMockRepository()
	repo.AddTransaction(txn("e1", transaction.KindExpense, "10.00", march(1), "x"))
	repo.AddTransaction(txn("s1", transaction.KindSale, "10.00", march(1), "x"))
	svc := newTestService(repo)
	ctx := context.Background()
	require.NoError(t, svc.UpdateMatchConfig(ctx, owner, fuzzy(95)))

	var once sync.Once
	repo.BeforeMarkMatched = func(kind transaction.Kind, id string) {
		if kind == transaction.KindSale {
			once.Do(func() {
				require.NoError(t, repo.SetIgnored(ctx, owner, transaction.KindSale, "s1"))
			})
		}
	}

	result, err := svc.RunAutoMatch(ctx, owner, TriggerManual)

	require.NoError(t, err)
	assert.Equal(t, 0, result.MatchedCount)
	assert.Equal(t, 1, result.SkippedCount)
	assert.Equal(t, 1, repo.RevertMatchedCalls)

	e := repo.Snapshot(transaction.KindExpense, "e1")
	assert.Equal(t, transaction.StatusPending, e.Status, "expense side was compensated")
	assert.Empty(t, e.MatchedID)
}

func TestRunAutoMatch_PartialCommitReported(t *testing.T) {
	repo := storage.NewMockRepository()
	repo.AddTransaction(txn("e1", transaction.KindExpense, "10.00", march(1), "x"))
	repo.AddTransaction(txn("s1", transaction.KindSale, "10.00", march(1), "x"))
	svc := newTestService(repo)
	ctx := context.Background()
	require.NoError(t, svc.UpdateMatchConfig(ctx, owner, fuzzy(95)))

	repo.MarkMatchedErr["s1"] = errors.New("disk full")
	repo.RevertMatchedErr = errors.New("disk full")

	result, err := svc.RunAutoMatch(ctx, owner, TriggerManual)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPartialCommit)
	var partial *PartialCommitError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, "e1", partial.ExpenseID)
	assert.Equal(t, "s1", partial.SaleID)

	require.NotNil(t, result)
	assert.Equal(t, 0, result.MatchedCount)
	assert.Equal(t, storage.RunStatusFailed, repo.LastRunResult.Status)
}

func TestRunAutoMatch_SaleWriteFailureCompensated(t *testing.T) {
	repo := storage.NewMockRepository()
	repo.AddTransaction(txn("e1", transaction.KindExpense, "10.00", march(1), "x"))
	repo.AddTransaction(txn("s1", transaction.KindSale, "10.00", march(1), "x"))
	svc := newTestService(repo)
	ctx := context.Background()
	require.NoError(t, svc.UpdateMatchConfig(ctx, owner, fuzzy(95)))

	repo.MarkMatchedErr["s1"] = errors.New("connection reset")

	_, err := svc.RunAutoMatch(ctx, owner, TriggerManual)

	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrPartialCommit)
	assert.Equal(t, transaction.StatusPending, repo.Snapshot(transaction.KindExpense, "e1").Status)
}

func TestRunAutoMatch_StoreFailureKeepsEarlierCommits(t *testing.T) {
	repo := storage.NewMockRepository()
	repo.AddTransaction(txn("e1", transaction.KindExpense, "100.00", march(1), ""))
	repo.AddTransaction(txn("e2", transaction.KindExpense, "200.00", march(1), ""))
	repo.AddTransaction(txn("s1", transaction.KindSale, "100.00", march(1), ""))
	repo.AddTransaction(txn("s2", transaction.KindSale, "200.00", march(1), ""))
	svc := newTestService(repo)
	ctx := context.Background()
	require.NoError(t, svc.UpdateMatchConfig(ctx, owner, matcher.Config{
		DateToleranceDays: 7, AutoMatchThreshold: 70, Strategy: matcher.StrategyAmountOnly,
	}))

	repo.MarkMatchedErr["e2"] = errors.New("connection reset")

	result, err := svc.RunAutoMatch(ctx, owner, TriggerManual)

	assert.ErrorIs(t, err, ErrStoreUnavailable)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.MatchedCount)
	assert.Equal(t, transaction.StatusMatched, repo.Snapshot(transaction.KindExpense, "e1").Status)
	assert.Equal(t, transaction.StatusMatched, repo.Snapshot(transaction.KindSale, "s1").Status)
	assert.Equal(t, transaction.StatusPending, repo.Snapshot(transaction.KindExpense, "e2").Status)

	require.NotNil(t, repo.LastRunResult)
	assert.Equal(t, storage.RunStatusFailed, repo.LastRunResult.Status)
	assert.Equal(t, 1, repo.LastRunResult.MatchedCount)
}

func TestRunAutoMatch_ListPendingFailure(t *testing.T) {
	repo := storage.NewMockRepository()
	repo.ListPendingErr = errors.New("timeout")
	svc := newTestService(repo)

	_, err := svc.RunAutoMatch(context.Background(), owner, TriggerManual)

	assert.ErrorIs(t, err, ErrStoreUnavailable)
	require.NotNil(t, repo.LastRunResult)
	assert.Equal(t, storage.RunStatusFailed, repo.LastRunResult.Status)
}

func TestRunAutoMatch_InvalidStoredConfiguration(t *testing.T) {
	repo := storage.NewMockRepository()
	require.NoError(t, repo.SaveSettings(context.Background(), owner, matcher.Config{
		DateToleranceDays: -1, AutoMatchThreshold: 95, Strategy: matcher.StrategyAmountOnly,
	}))
	svc := newTestService(repo)

	_, err := svc.RunAutoMatch(context.Background(), owner, TriggerManual)

	assert.ErrorIs(t, err, matcher.ErrInvalidConfiguration)
	assert.Nil(t, repo.LastRunResult, "no run is recorded for a rejected configuration")
}

func TestRunAutoMatch_AlreadyRunning(t *testing.T) {
	svc := newTestService(storage.NewMockRepository())
	require.True(t, svc.tryLockOwner(owner))
	defer svc.unlockOwner(owner)

	_, err := svc.RunAutoMatch(context.Background(), owner, TriggerManual)

	assert.ErrorIs(t, err, ErrRunInProgress)
}

func TestRunAutoMatch_RecordsRun(t *testing.T) {
	repo := storage.NewMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	result, err := svc.RunAutoMatch(ctx, owner, TriggerScheduled)
	require.NoError(t, err)

	run, err := svc.Run(ctx, owner, result.RunID)
	require.NoError(t, err)
	assert.Equal(t, TriggerScheduled, run.Trigger)
	assert.Equal(t, storage.RunStatusCompleted, run.Status)

	runs, err := svc.Runs(ctx, owner, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	_, err = svc.Run(ctx, owner, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestConfirmMatch(t *testing.T) {
	repo := storage.NewMockRepository()
	repo.AddTransaction(txn("e1", transaction.KindExpense, "100.00", march(1), ""))
	repo.AddTransaction(txn("s1", transaction.KindSale, "60.00", march(20), ""))
	svc := newTestService(repo)
	ctx := context.Background()

	// Any pending pair may be confirmed, however low it scores
	match, err := svc.ConfirmMatch(ctx, owner, "e1", "s1")

	require.NoError(t, err)
	assert.Equal(t, 0, match.Confidence)
	assert.Equal(t, "s1", repo.Snapshot(transaction.KindExpense, "e1").MatchedID)
	assert.Equal(t, "e1", repo.Snapshot(transaction.KindSale, "s1").MatchedID)
}

func TestConfirmMatch_StaleTarget(t *testing.T) {
	repo := storage.NewMockRepository()
	repo.AddTransaction(txn("e1", transaction.KindExpense, "100.00", march(1), ""))
	repo.AddTransaction(txn("e2", transaction.KindExpense, "100.00", march(1), ""))
	repo.AddTransaction(txn("s1", transaction.KindSale, "100.00", march(1), ""))
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.ConfirmMatch(ctx, owner, "e1", "s1")
	require.NoError(t, err)

	_, err = svc.ConfirmMatch(ctx, owner, "e2", "s1")
	assert.ErrorIs(t, err, ErrStaleMatchTarget)
	assert.Equal(t, transaction.StatusPending, repo.Snapshot(transaction.KindExpense, "e2").Status)
}

func TestConfirmMatch_TargetChangesBeforeWrite(t *testing.T) {
	repo := storage.NewMockRepository()
	repo.AddTransaction(txn("e1", transaction.KindExpense, "100.00", march(1), ""))
	repo.AddTransaction(txn("s1", transaction.KindSale, "100.00", march(1), ""))
	svc := newTestService(repo)
	ctx := context.Background()

	var once sync.Once
	repo.BeforeMarkMatched = func(kind transaction.Kind, id string) {
		once.Do(func() {
			require.NoError(t, repo.SetIgnored(ctx, owner, transaction.KindExpense, "e1"))
		})
	}

	_, err := svc.ConfirmMatch(ctx, owner, "e1", "s1")

	assert.ErrorIs(t, err, ErrStaleMatchTarget)
	assert.Equal(t, transaction.StatusPending, repo.Snapshot(transaction.KindSale, "s1").Status)
}

func TestConfirmMatch_NotFound(t *testing.T) {
	repo := storage.NewMockRepository()
	repo.AddTransaction(txn("e1", transaction.KindExpense, "100.00", march(1), ""))
	svc := newTestService(repo)

	_, err := svc.ConfirmMatch(context.Background(), owner, "e1", "missing")

	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIgnoreTransaction(t *testing.T) {
	repo := storage.NewMockRepository()
	repo.AddTransaction(txn("s1", transaction.KindSale, "100.00", march(1), ""))
	svc := newTestService(repo)
	ctx := context.Background()

	require.NoError(t, svc.IgnoreTransaction(ctx, owner, transaction.KindSale, "s1"))
	s := repo.Snapshot(transaction.KindSale, "s1")
	assert.Equal(t, transaction.StatusIgnored, s.Status)
	assert.Empty(t, s.MatchedID)

	assert.ErrorIs(t, svc.IgnoreTransaction(ctx, owner, transaction.KindSale, "s1"), ErrStaleMatchTarget)
	assert.ErrorIs(t, svc.IgnoreTransaction(ctx, owner, transaction.KindSale, "nope"), storage.ErrNotFound)

	repo.SetIgnoredErr = errors.New("timeout")
	assert.ErrorIs(t, svc.IgnoreTransaction(ctx, owner, transaction.KindSale, "s1"), ErrStoreUnavailable)
}

func TestCandidates_NonPendingExpense(t *testing.T) {
	repo := storage.NewMockRepository()
	repo.AddTransaction(txn("e1", transaction.KindExpense, "100.00", march(1), ""))
	svc := newTestService(repo)
	ctx := context.Background()
	require.NoError(t, svc.IgnoreTransaction(ctx, owner, transaction.KindExpense, "e1"))

	_, err := svc.Candidates(ctx, owner, "e1")

	assert.ErrorIs(t, err, ErrStaleMatchTarget)
}

func TestSuggestions(t *testing.T) {
	repo := storage.NewMockRepository()
	repo.AddTransaction(txn("e1", transaction.KindExpense, "100.00", march(1), ""))
	repo.AddTransaction(txn("e2", transaction.KindExpense, "9999.00", march(1), ""))
	repo.AddTransaction(txn("s1", transaction.KindSale, "100.00", march(1), ""))
	repo.AddTransaction(txn("s2", transaction.KindSale, "104.00", march(2), ""))
	svc := newTestService(repo)

	suggestions, err := svc.Suggestions(context.Background(), owner)

	require.NoError(t, err)
	require.Len(t, suggestions, 1, "e2 has no candidate above the floor")
	assert.Equal(t, "e1", suggestions[0].Expense.ID)
	require.Len(t, suggestions[0].Candidates, 2)
	assert.Equal(t, "s1", suggestions[0].Candidates[0].Sale.ID)
	assert.Equal(t, 90, suggestions[0].Candidates[0].Score)
	assert.Equal(t, "s2", suggestions[0].Candidates[1].Sale.ID)
	assert.Equal(t, 65, suggestions[0].Candidates[1].Score)
}

func TestStats(t *testing.T) {
	repo := storage.NewMockRepository()
	repo.AddTransaction(txn("e1", transaction.KindExpense, "100.00", march(1), ""))
	repo.AddTransaction(txn("s1", transaction.KindSale, "100.00", march(1), ""))
	repo.AddTransaction(txn("e2", transaction.KindExpense, "20.50", march(1), ""))
	svc := newTestService(repo)
	ctx := context.Background()
	_, err := svc.ConfirmMatch(ctx, owner, "e1", "s1")
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, owner)

	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalTransactions)
	assert.Equal(t, 2, stats.MatchedCount)
	assert.Equal(t, 67, stats.MatchedPercentage)
	assert.Equal(t, 1, stats.PendingCount)
	assert.Equal(t, "220.50", stats.TotalAmount)
}

func TestStats_Empty(t *testing.T) {
	svc := newTestService(storage.NewMockRepository())

	stats, err := svc.Stats(context.Background(), owner)

	require.NoError(t, err)
	assert.Equal(t, 0, stats.MatchedPercentage)
	assert.Equal(t, "0.00", stats.TotalAmount)
}

// The SQL store commits both sides in one database transaction.
func TestRunAutoMatch_SQLiteStore(t *testing.T) {
	tmp, err := os.CreateTemp("", "test_*.db")
	require.NoError(t, err)
	tmp.Close()
	defer os.Remove(tmp.Name())

	store, err := storage.NewStorage(tmp.Name())
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.InsertTransactions(ctx, []*transaction.Transaction{
		txn("e1", transaction.KindExpense, "100.00", march(1), "abcdefwxyz"),
		txn("e2", transaction.KindExpense, "100.00", march(1), "abcdefwxyz"),
		txn("s1", transaction.KindSale, "100.00", march(1), "abcdefghij"),
	}))

	svc := newTestService(store)
	require.NoError(t, svc.UpdateMatchConfig(ctx, owner, fuzzy(95)))

	result, err := svc.RunAutoMatch(ctx, owner, TriggerManual)
	require.NoError(t, err)
	require.Equal(t, 1, result.MatchedCount)
	assert.Equal(t, "e1", result.Matches[0].ExpenseID)

	e1, err := store.GetTransaction(ctx, owner, transaction.KindExpense, "e1")
	require.NoError(t, err)
	s1, err := store.GetTransaction(ctx, owner, transaction.KindSale, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", e1.MatchedID)
	assert.Equal(t, "e1", s1.MatchedID)

	_, err = svc.ConfirmMatch(ctx, owner, "e2", "s1")
	assert.ErrorIs(t, err, ErrStaleMatchTarget)

	second, err := svc.RunAutoMatch(ctx, owner, TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 0, second.MatchedCount)

	runs, err := svc.Runs(ctx, owner, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}
