// Package transaction defines the expense and sale records that the
// reconciliation engine reads and updates.
//
// A transaction is created pending when its CSV batch is ingested. It then
// becomes matched (always together with its counterpart of the opposite
// kind) or ignored. Neither matched nor ignored transactions return to
// pending.
package transaction

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Kind distinguishes the two sides of a reconciliation.
type Kind string

const (
	KindExpense Kind = "expense"
	KindSale    Kind = "sale"
)

// ParseKind converts user input into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindExpense, KindSale:
		return Kind(s), nil
	case "expenses":
		return KindExpense, nil
	case "sales":
		return KindSale, nil
	}
	return "", fmt.Errorf("invalid transaction kind %q (want expense or sale)", s)
}

// Opposite returns the kind a transaction of this kind is matched against.
func (k Kind) Opposite() Kind {
	if k == KindExpense {
		return KindSale
	}
	return KindExpense
}

// Status is the reconciliation state of a transaction.
type Status string

const (
	StatusPending Status = "pending"
	StatusMatched Status = "matched"
	StatusIgnored Status = "ignored"
)

// Transaction is a single expense or sale row.
type Transaction struct {
	ID           string
	OwnerID      string
	Kind         Kind
	Date         civil.Date
	Amount       decimal.Decimal
	Counterparty string // vendor for expenses, customer for sales
	Description  string
	Status       Status
	MatchedID    string // counterpart ID, set iff Status is matched
	BatchID      string
	CreatedAt    time.Time
}

// IsPending reports whether the transaction can still be scored or matched.
func (t *Transaction) IsPending() bool {
	return t != nil && t.Status == StatusPending
}

// Validate checks the status/link invariant of a single record.
func (t *Transaction) Validate() error {
	switch t.Status {
	case StatusMatched:
		if t.MatchedID == "" {
			return fmt.Errorf("transaction %s is matched without a counterpart", t.ID)
		}
	case StatusPending, StatusIgnored:
		if t.MatchedID != "" {
			return fmt.Errorf("transaction %s is %s but references counterpart %s", t.ID, t.Status, t.MatchedID)
		}
	default:
		return fmt.Errorf("transaction %s has unknown status %q", t.ID, t.Status)
	}
	if !t.Date.IsValid() {
		return fmt.Errorf("transaction %s has invalid date %s", t.ID, t.Date)
	}
	return nil
}
