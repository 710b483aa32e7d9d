package service

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable wraps transient failures reading or writing the
	// transaction store. Matches committed before the failure stand.
	ErrStoreUnavailable = errors.New("transaction store unavailable")

	// ErrStaleMatchTarget is returned when a transaction offered for
	// confirmation or ignore is no longer pending.
	ErrStaleMatchTarget = errors.New("match target is no longer pending")

	// ErrPartialCommit marks a pairing where one side was written and the
	// compensating revert failed.
	ErrPartialCommit = errors.New("match partially committed")

	// ErrRunInProgress is returned when an auto-match run is already active
	// for the owner in this process.
	ErrRunInProgress = errors.New("auto-match already running for owner")
)

// PartialCommitError describes a pairing left half-applied: the expense
// points at the sale but the sale was never updated, and reverting the
// expense also failed.
type PartialCommitError struct {
	ExpenseID string
	SaleID    string
	Cause     error // why the sale side failed
	RevertErr error // why the compensating write failed
}

func (e *PartialCommitError) Error() string {
	return fmt.Sprintf("match %s<->%s partially committed: sale update failed: %v; revert failed: %v",
		e.ExpenseID, e.SaleID, e.Cause, e.RevertErr)
}

func (e *PartialCommitError) Unwrap() []error {
	return []error{ErrPartialCommit, e.Cause, e.RevertErr}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
