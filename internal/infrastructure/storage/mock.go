package storage

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/eshaffer321/reconcile-backend/internal/domain/matcher"
	"github.com/eshaffer321/reconcile-backend/internal/domain/transaction"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It deliberately does not implement MatchCommitter, so callers exercise
// their two-step commit path against it.
type MockRepository struct {
	mu sync.Mutex

	transactions map[string]*transaction.Transaction // keyed by kind/id
	order        []string                            // insertion order of keys
	batches      map[string]*transaction.Batch
	settings     map[string]matcher.Config
	runs         map[string]*MatchRun
	nextRunID    int

	// Hooks for test assertions
	MarkMatchedCalls   int
	RevertMatchedCalls int
	LastRunResult      *MatchRunResult

	// Error injection for testing error paths
	InsertErr        error
	GetErr           error
	ListPendingErr   error
	ListErr          error
	PingErr          error
	MarkMatchedErr   map[string]error // keyed by transaction ID
	RevertMatchedErr error
	SetIgnoredErr    error
	GetSettingsErr   error
	SaveSettingsErr  error
	StartMatchRunErr error

	// BeforeMarkMatched runs before each MarkMatched with the lock released,
	// letting tests change state between selection and commit.
	BeforeMarkMatched func(kind transaction.Kind, id string)
}

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		transactions:   make(map[string]*transaction.Transaction),
		batches:        make(map[string]*transaction.Batch),
		settings:       make(map[string]matcher.Config),
		runs:           make(map[string]*MatchRun),
		MarkMatchedErr: make(map[string]error),
		nextRunID:      1,
	}
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

func mockKey(kind transaction.Kind, id string) string {
	return string(kind) + "/" + id
}

// AddTransaction stores a copy of t directly, bypassing validation
func (m *MockRepository) AddTransaction(t *transaction.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(t)
}

func (m *MockRepository) put(t *transaction.Transaction) {
	copied := *t
	if copied.Status == "" {
		copied.Status = transaction.StatusPending
	}
	key := mockKey(copied.Kind, copied.ID)
	if _, exists := m.transactions[key]; !exists {
		m.order = append(m.order, key)
	}
	m.transactions[key] = &copied
}

// Snapshot returns a copy of a stored transaction, or nil
func (m *MockRepository) Snapshot(kind transaction.Kind, id string) *transaction.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[mockKey(kind, id)]
	if !ok {
		return nil
	}
	copied := *t
	return &copied
}

// Close does nothing for mock
func (m *MockRepository) Close() error {
	return nil
}

// Ping returns PingErr
func (m *MockRepository) Ping(ctx context.Context) error {
	return m.PingErr
}

// InsertTransactions stores copies of txns
func (m *MockRepository) InsertTransactions(ctx context.Context, txns []*transaction.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertErr != nil {
		return m.InsertErr
	}
	for _, t := range txns {
		if _, exists := m.transactions[mockKey(t.Kind, t.ID)]; exists {
			return fmt.Errorf("duplicate transaction %s", t.ID)
		}
	}
	for _, t := range txns {
		m.put(t)
	}
	return nil
}

// GetTransaction retrieves a copy of a stored transaction
func (m *MockRepository) GetTransaction(ctx context.Context, ownerID string, kind transaction.Kind, id string) (*transaction.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	t, ok := m.transactions[mockKey(kind, id)]
	if !ok || t.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	copied := *t
	return &copied, nil
}

// ListTransactions returns copies of matching transactions in insertion order
func (m *MockRepository) ListTransactions(ctx context.Context, ownerID string, filters TransactionFilters) ([]*transaction.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListErr != nil {
		return nil, m.ListErr
	}

	var result []*transaction.Transaction
	for _, key := range m.order {
		t := m.transactions[key]
		if t.OwnerID != ownerID {
			continue
		}
		if filters.Kind != "" && t.Kind != filters.Kind {
			continue
		}
		if filters.Status != "" && t.Status != filters.Status {
			continue
		}
		copied := *t
		result = append(result, &copied)
	}

	if filters.Offset > 0 {
		if filters.Offset >= len(result) {
			return nil, nil
		}
		result = result[filters.Offset:]
	}
	if filters.Limit > 0 && len(result) > filters.Limit {
		result = result[:filters.Limit]
	}
	return result, nil
}

// ListPending returns pending transactions of one kind in insertion order
func (m *MockRepository) ListPending(ctx context.Context, ownerID string, kind transaction.Kind) ([]*transaction.Transaction, error) {
	if m.ListPendingErr != nil {
		return nil, m.ListPendingErr
	}
	return m.ListTransactions(ctx, ownerID, TransactionFilters{Kind: kind, Status: transaction.StatusPending})
}

// MarkMatched links a pending transaction to its counterpart
func (m *MockRepository) MarkMatched(ctx context.Context, ownerID string, kind transaction.Kind, id, counterpartID string) error {
	if m.BeforeMarkMatched != nil {
		m.BeforeMarkMatched(kind, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.MarkMatchedCalls++

	if err := m.MarkMatchedErr[id]; err != nil {
		return err
	}
	t, ok := m.transactions[mockKey(kind, id)]
	if !ok || t.OwnerID != ownerID {
		return ErrNotFound
	}
	if t.Status != transaction.StatusPending {
		return ErrNotPending
	}
	t.Status = transaction.StatusMatched
	t.MatchedID = counterpartID
	return nil
}

// RevertMatched returns a matched transaction to pending
func (m *MockRepository) RevertMatched(ctx context.Context, ownerID string, kind transaction.Kind, id, counterpartID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RevertMatchedCalls++

	if m.RevertMatchedErr != nil {
		return m.RevertMatchedErr
	}
	t, ok := m.transactions[mockKey(kind, id)]
	if !ok || t.OwnerID != ownerID {
		return ErrNotFound
	}
	if t.Status != transaction.StatusMatched || t.MatchedID != counterpartID {
		return fmt.Errorf("transaction %s is not matched to %s", id, counterpartID)
	}
	t.Status = transaction.StatusPending
	t.MatchedID = ""
	return nil
}

// SetIgnored marks a pending transaction as ignored
func (m *MockRepository) SetIgnored(ctx context.Context, ownerID string, kind transaction.Kind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetIgnoredErr != nil {
		return m.SetIgnoredErr
	}
	t, ok := m.transactions[mockKey(kind, id)]
	if !ok || t.OwnerID != ownerID {
		return ErrNotFound
	}
	if t.Status != transaction.StatusPending {
		return ErrNotPending
	}
	t.Status = transaction.StatusIgnored
	return nil
}

// ListOwnersWithPending returns sorted owner IDs with pending rows
func (m *MockRepository) ListOwnersWithPending(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var owners []string
	for _, t := range m.transactions {
		if t.Status == transaction.StatusPending && !slices.Contains(owners, t.OwnerID) {
			owners = append(owners, t.OwnerID)
		}
	}
	sort.Strings(owners)
	return owners, nil
}

// CreateBatch stores a copy of the batch
func (m *MockRepository) CreateBatch(ctx context.Context, batch *transaction.Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if batch.UploadedAt.IsZero() {
		batch.UploadedAt = time.Now().UTC()
	}
	if batch.Status == "" {
		batch.Status = transaction.BatchPending
	}
	copied := *batch
	m.batches[batch.ID] = &copied
	return nil
}

// CompleteBatch records the outcome of an upload
func (m *MockRepository) CompleteBatch(ctx context.Context, batchID string, processedRows int, status transaction.BatchStatus, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[batchID]
	if !ok {
		return ErrNotFound
	}
	b.ProcessedRows = processedRows
	b.Status = status
	b.ErrorMessage = errMsg
	return nil
}

// ListBatches returns the owner's batches, newest first
func (m *MockRepository) ListBatches(ctx context.Context, ownerID string, limit int) ([]*transaction.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*transaction.Batch
	for _, b := range m.batches {
		if b.OwnerID == ownerID {
			copied := *b
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UploadedAt.After(result[j].UploadedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// GetSettings returns stored settings, or nil when unset
func (m *MockRepository) GetSettings(ctx context.Context, ownerID string) (*matcher.Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetSettingsErr != nil {
		return nil, m.GetSettingsErr
	}
	cfg, ok := m.settings[ownerID]
	if !ok {
		return nil, nil
	}
	return &cfg, nil
}

// SaveSettings stores the owner's settings
func (m *MockRepository) SaveSettings(ctx context.Context, ownerID string, cfg matcher.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveSettingsErr != nil {
		return m.SaveSettingsErr
	}
	m.settings[ownerID] = cfg
	return nil
}

// StartMatchRun records a new run
func (m *MockRepository) StartMatchRun(ctx context.Context, ownerID, trigger string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StartMatchRunErr != nil {
		return "", m.StartMatchRunErr
	}
	id := fmt.Sprintf("run-%d", m.nextRunID)
	m.nextRunID++
	m.runs[id] = &MatchRun{
		ID:        id,
		OwnerID:   ownerID,
		Trigger:   trigger,
		StartedAt: time.Now().UTC(),
		Status:    RunStatusRunning,
	}
	return id, nil
}

// CompleteMatchRun records a run's outcome
func (m *MockRepository) CompleteMatchRun(ctx context.Context, runID string, result MatchRunResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunResult = &result

	run, ok := m.runs[runID]
	if !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	run.CompletedAt = &now
	run.TotalExpenses = result.TotalExpenses
	run.TotalSales = result.TotalSales
	run.MatchedCount = result.MatchedCount
	run.SkippedCount = result.SkippedCount
	run.Status = result.Status
	if run.Status == "" {
		run.Status = RunStatusCompleted
	}
	run.ErrorMessage = result.ErrorMessage
	return nil
}

// ListMatchRuns returns the owner's runs, newest first
func (m *MockRepository) ListMatchRuns(ctx context.Context, ownerID string, limit int) ([]MatchRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []MatchRun
	for _, run := range m.runs {
		if run.OwnerID == ownerID {
			result = append(result, *run)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].StartedAt.Equal(result[j].StartedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].StartedAt.After(result[j].StartedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// GetMatchRun retrieves a run by ID
func (m *MockRepository) GetMatchRun(ctx context.Context, ownerID, runID string) (*MatchRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[runID]
	if !ok || run.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	copied := *run
	return &copied, nil
}
