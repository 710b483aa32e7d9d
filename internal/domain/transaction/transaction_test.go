package transaction

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"expense", KindExpense, false},
		{"sale", KindSale, false},
		{"expenses", KindExpense, false},
		{"sales", KindSale, false},
		{"refund", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKind_Opposite(t *testing.T) {
	assert.Equal(t, KindSale, KindExpense.Opposite())
	assert.Equal(t, KindExpense, KindSale.Opposite())
}

func TestTransaction_Validate(t *testing.T) {
	base := func() *Transaction {
		return &Transaction{
			ID:     "tx1",
			Kind:   KindExpense,
			Date:   civil.Date{Year: 2024, Month: 3, Day: 1},
			Amount: decimal.RequireFromString("10.00"),
			Status: StatusPending,
		}
	}

	t.Run("pending without link is valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("matched requires counterpart", func(t *testing.T) {
		tx := base()
		tx.Status = StatusMatched
		assert.Error(t, tx.Validate())

		tx.MatchedID = "sale1"
		assert.NoError(t, tx.Validate())
	})

	t.Run("ignored must not reference counterpart", func(t *testing.T) {
		tx := base()
		tx.Status = StatusIgnored
		tx.MatchedID = "sale1"
		assert.Error(t, tx.Validate())
	})

	t.Run("zero date is invalid", func(t *testing.T) {
		tx := base()
		tx.Date = civil.Date{}
		assert.Error(t, tx.Validate())
	})

	t.Run("unknown status", func(t *testing.T) {
		tx := base()
		tx.Status = "archived"
		assert.Error(t, tx.Validate())
	})
}

func TestTransaction_IsPending(t *testing.T) {
	var nilTx *Transaction
	assert.False(t, nilTx.IsPending())
	assert.True(t, (&Transaction{Status: StatusPending}).IsPending())
	assert.False(t, (&Transaction{Status: StatusMatched}).IsPending())
}
