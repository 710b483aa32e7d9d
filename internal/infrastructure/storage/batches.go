package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/eshaffer321/reconcile-backend/internal/domain/transaction"
)

// CreateBatch records the start of an upload
func (s *Storage) CreateBatch(ctx context.Context, batch *transaction.Batch) error {
	if batch.UploadedAt.IsZero() {
		batch.UploadedAt = s.now()
	}
	if batch.Status == "" {
		batch.Status = transaction.BatchPending
	}

	query := s.rebind(`
	INSERT INTO csv_batches
	(id, owner_id, filename, kind, total_rows, processed_rows, status, error_message, uploaded_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := s.db.ExecContext(ctx, query,
		batch.ID,
		batch.OwnerID,
		batch.Filename,
		string(batch.Kind),
		batch.TotalRows,
		batch.ProcessedRows,
		string(batch.Status),
		batch.ErrorMessage,
		batch.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create batch: %w", err)
	}
	return nil
}

// CompleteBatch records the outcome of an upload
func (s *Storage) CompleteBatch(ctx context.Context, batchID string, processedRows int, status transaction.BatchStatus, errMsg string) error {
	query := s.rebind(`
	UPDATE csv_batches
	SET processed_rows = ?, status = ?, error_message = ?
	WHERE id = ?
	`)

	res, err := s.db.ExecContext(ctx, query, processedRows, string(status), errMsg, batchID)
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

// ListBatches returns recent batches, newest first
func (s *Storage) ListBatches(ctx context.Context, ownerID string, limit int) ([]*transaction.Batch, error) {
	if limit <= 0 {
		limit = 50
	}

	query := s.rebind(`
	SELECT id, owner_id, filename, kind, total_rows, processed_rows, status, error_message, uploaded_at
	FROM csv_batches
	WHERE owner_id = ?
	ORDER BY uploaded_at DESC, id
	LIMIT ?
	`)

	rows, err := s.db.QueryContext(ctx, query, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var batches []*transaction.Batch
	for rows.Next() {
		b := &transaction.Batch{}
		var kind, status string
		var errMsg sql.NullString
		if err := rows.Scan(
			&b.ID,
			&b.OwnerID,
			&b.Filename,
			&kind,
			&b.TotalRows,
			&b.ProcessedRows,
			&status,
			&errMsg,
			&b.UploadedAt,
		); err != nil {
			return nil, err
		}
		b.Kind = transaction.Kind(kind)
		b.Status = transaction.BatchStatus(status)
		b.ErrorMessage = errMsg.String
		batches = append(batches, b)
	}
	return batches, rows.Err()
}
