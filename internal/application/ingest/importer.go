package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/eshaffer321/reconcile-backend/internal/domain/transaction"
	"github.com/eshaffer321/reconcile-backend/internal/infrastructure/storage"
)

// Store is the subset of storage.Repository an Importer writes to.
type Store interface {
	storage.BatchRepository
	InsertTransactions(ctx context.Context, txns []*transaction.Transaction) error
}

// Importer records CSV uploads as batches of pending transactions.
type Importer struct {
	store  Store
	logger *slog.Logger
	newID  func() string
}

// NewImporter creates a new importer.
func NewImporter(store Store, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		store:  store,
		logger: logger,
		newID:  uuid.NewString,
	}
}

// Import parses r and stores its rows as pending transactions of kind in a
// new batch. The batch is always recorded; when parsing or inserting fails it
// is marked failed with the error and no transactions are stored.
func (im *Importer) Import(ctx context.Context, ownerID, filename string, kind transaction.Kind, r io.Reader) (*transaction.Batch, error) {
	batch := &transaction.Batch{
		ID:       im.newID(),
		OwnerID:  ownerID,
		Filename: filename,
		Kind:     kind,
		Status:   transaction.BatchPending,
	}

	parsed, parseErr := ParseCSV(r, kind)
	if parsed != nil {
		batch.TotalRows = parsed.TotalRows
	}

	if err := im.store.CreateBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}

	logger := im.logger.With("owner_id", ownerID, "batch_id", batch.ID, "kind", kind)

	if parseErr != nil {
		return batch, im.fail(ctx, logger, batch, fmt.Errorf("failed to parse %s: %w", filename, parseErr))
	}

	txns := make([]*transaction.Transaction, 0, len(parsed.Rows))
	for _, row := range parsed.Rows {
		txns = append(txns, &transaction.Transaction{
			ID:           im.newID(),
			OwnerID:      ownerID,
			Kind:         kind,
			Date:         row.Date,
			Amount:       row.Amount,
			Counterparty: row.Counterparty,
			Description:  row.Description,
			Status:       transaction.StatusPending,
			BatchID:      batch.ID,
		})
	}

	if err := im.store.InsertTransactions(ctx, txns); err != nil {
		return batch, im.fail(ctx, logger, batch, fmt.Errorf("failed to store transactions: %w", err))
	}

	if err := im.store.CompleteBatch(ctx, batch.ID, len(txns), transaction.BatchCompleted, ""); err != nil {
		return batch, fmt.Errorf("failed to complete batch: %w", err)
	}
	batch.ProcessedRows = len(txns)
	batch.Status = transaction.BatchCompleted

	logger.Info("batch imported",
		"filename", filename,
		"total_rows", parsed.TotalRows,
		"imported", len(txns),
		"skipped", parsed.Skipped,
	)
	return batch, nil
}

func (im *Importer) fail(ctx context.Context, logger *slog.Logger, batch *transaction.Batch, cause error) error {
	batch.Status = transaction.BatchFailed
	batch.ErrorMessage = cause.Error()

	logger.Warn("batch import failed", "error", cause)

	if err := im.store.CompleteBatch(context.WithoutCancel(ctx), batch.ID, 0, transaction.BatchFailed, cause.Error()); err != nil {
		logger.Error("failed to mark batch failed", "error", err)
	}
	return cause
}
