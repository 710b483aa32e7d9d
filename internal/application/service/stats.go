package service

import (
	"github.com/shopspring/decimal"

	"github.com/eshaffer321/reconcile-backend/internal/domain/transaction"
)

var hundred = decimal.NewFromInt(100)

func computeStats(txns []*transaction.Transaction) *Stats {
	stats := &Stats{}
	total := decimal.Zero

	for _, t := range txns {
		stats.TotalTransactions++
		total = total.Add(t.Amount)

		switch t.Status {
		case transaction.StatusMatched:
			stats.MatchedCount++
		case transaction.StatusPending:
			stats.PendingCount++
		case transaction.StatusIgnored:
			stats.IgnoredCount++
		}
	}

	if stats.TotalTransactions > 0 {
		pct := decimal.NewFromInt(int64(stats.MatchedCount)).
			Mul(hundred).
			Div(decimal.NewFromInt(int64(stats.TotalTransactions))).
			Round(0)
		stats.MatchedPercentage = int(pct.IntPart())
	}
	stats.TotalAmount = total.StringFixed(2)

	return stats
}
