package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/eshaffer321/reconcile-backend/internal/domain/transaction"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const transactionColumns = `id, owner_id, kind, txn_date, amount, counterparty, description,
	status, matched_id, batch_id, created_at`

// InsertTransactions stores new transactions in a single database transaction
func (s *Storage) InsertTransactions(ctx context.Context, txns []*transaction.Transaction) error {
	if len(txns) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := s.rebind(`
	INSERT INTO transactions
	(id, owner_id, kind, txn_date, amount, counterparty, description,
	 status, matched_id, batch_id, row_index, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	now := s.now()
	for i, t := range txns {
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		if t.Status == "" {
			t.Status = transaction.StatusPending
		}

		_, err := tx.ExecContext(ctx, query,
			t.ID,
			t.OwnerID,
			string(t.Kind),
			t.Date.String(),
			t.Amount.String(),
			t.Counterparty,
			t.Description,
			string(t.Status),
			nullString(t.MatchedID),
			nullString(t.BatchID),
			i,
			t.CreatedAt,
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

// GetTransaction retrieves a transaction by owner, kind and ID
func (s *Storage) GetTransaction(ctx context.Context, ownerID string, kind transaction.Kind, id string) (*transaction.Transaction, error) {
	return s.getTransaction(ctx, s.db, ownerID, kind, id)
}

func (s *Storage) getTransaction(ctx context.Context, q querier, ownerID string, kind transaction.Kind, id string) (*transaction.Transaction, error) {
	query := s.rebind(`SELECT ` + transactionColumns + `
	FROM transactions WHERE id = ? AND owner_id = ? AND kind = ?`)

	t, err := scanTransaction(q.QueryRowContext(ctx, query, id, ownerID, string(kind)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTransactions returns transactions matching the filters, newest date first
func (s *Storage) ListTransactions(ctx context.Context, ownerID string, filters TransactionFilters) ([]*transaction.Transaction, error) {
	var conditions []string
	args := []any{ownerID}

	conditions = append(conditions, "owner_id = ?")
	if filters.Kind != "" {
		conditions = append(conditions, "kind = ?")
		args = append(args, string(filters.Kind))
	}
	if filters.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filters.Status))
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` +
		strings.Join(conditions, " AND ") +
		` ORDER BY txn_date DESC, created_at DESC, row_index DESC`

	if filters.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filters.Limit, filters.Offset)
	}

	return s.queryTransactions(ctx, s.rebind(query), args...)
}

// ListPending returns pending transactions of one kind in ingestion order
func (s *Storage) ListPending(ctx context.Context, ownerID string, kind transaction.Kind) ([]*transaction.Transaction, error) {
	query := s.rebind(`SELECT ` + transactionColumns + `
	FROM transactions
	WHERE owner_id = ? AND kind = ? AND status = 'pending'
	ORDER BY created_at, row_index, id`)

	return s.queryTransactions(ctx, query, ownerID, string(kind))
}

// ListOwnersWithPending returns every owner with at least one pending row
func (s *Storage) ListOwnersWithPending(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT DISTINCT owner_id FROM transactions WHERE status = 'pending' ORDER BY owner_id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var owners []string
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, err
		}
		owners = append(owners, owner)
	}
	return owners, rows.Err()
}

// MarkMatched links a pending transaction to its counterpart
func (s *Storage) MarkMatched(ctx context.Context, ownerID string, kind transaction.Kind, id, counterpartID string) error {
	return s.markMatched(ctx, s.db, ownerID, kind, id, counterpartID)
}

func (s *Storage) markMatched(ctx context.Context, q querier, ownerID string, kind transaction.Kind, id, counterpartID string) error {
	query := s.rebind(`
	UPDATE transactions
	SET status = 'matched', matched_id = ?, updated_at = ?
	WHERE id = ? AND owner_id = ? AND kind = ? AND status = 'pending'
	`)

	res, err := q.ExecContext(ctx, query, counterpartID, s.now(), id, ownerID, string(kind))
	if err != nil {
		return err
	}
	return s.checkConditionalUpdate(ctx, q, res, ownerID, kind, id)
}

// CommitMatch applies both sides of a pairing atomically
func (s *Storage) CommitMatch(ctx context.Context, ownerID, expenseID, saleID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin match commit: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.markMatched(ctx, tx, ownerID, transaction.KindExpense, expenseID, saleID); err != nil {
		return err
	}
	if err := s.markMatched(ctx, tx, ownerID, transaction.KindSale, saleID, expenseID); err != nil {
		return err
	}

	return tx.Commit()
}

// RevertMatched returns a matched transaction to pending if it still points
// at counterpartID
func (s *Storage) RevertMatched(ctx context.Context, ownerID string, kind transaction.Kind, id, counterpartID string) error {
	query := s.rebind(`
	UPDATE transactions
	SET status = 'pending', matched_id = NULL, updated_at = ?
	WHERE id = ? AND owner_id = ? AND kind = ? AND status = 'matched' AND matched_id = ?
	`)

	res, err := s.db.ExecContext(ctx, query, s.now(), id, ownerID, string(kind), counterpartID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("transaction %s is not matched to %s", id, counterpartID)
	}
	return nil
}

// SetIgnored marks a pending transaction as ignored
func (s *Storage) SetIgnored(ctx context.Context, ownerID string, kind transaction.Kind, id string) error {
	query := s.rebind(`
	UPDATE transactions
	SET status = 'ignored', updated_at = ?
	WHERE id = ? AND owner_id = ? AND kind = ? AND status = 'pending'
	`)

	res, err := s.db.ExecContext(ctx, query, s.now(), id, ownerID, string(kind))
	if err != nil {
		return err
	}
	return s.checkConditionalUpdate(ctx, s.db, res, ownerID, kind, id)
}

// checkConditionalUpdate tells a missing row apart from a row that is no
// longer pending when an update affected nothing.
func (s *Storage) checkConditionalUpdate(ctx context.Context, q querier, res sql.Result, ownerID string, kind transaction.Kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	if _, err := s.getTransaction(ctx, q, ownerID, kind, id); err != nil {
		return err
	}
	return ErrNotPending
}

func (s *Storage) queryTransactions(ctx context.Context, query string, args ...any) ([]*transaction.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var txns []*transaction.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*transaction.Transaction, error) {
	t := &transaction.Transaction{}
	var (
		kind, status, date string
		matchedID, batchID sql.NullString
	)

	err := row.Scan(
		&t.ID,
		&t.OwnerID,
		&kind,
		&date,
		&t.Amount,
		&t.Counterparty,
		&t.Description,
		&status,
		&matchedID,
		&batchID,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Date, err = civil.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("transaction %s has unparseable date %q: %w", t.ID, date, err)
	}
	t.Kind = transaction.Kind(kind)
	t.Status = transaction.Status(status)
	t.MatchedID = matchedID.String
	t.BatchID = batchID.String

	return t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
