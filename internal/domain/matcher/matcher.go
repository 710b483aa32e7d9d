// Package matcher scores and pairs pending expenses with pending sales.
//
// A pair's confidence is a 0-100 integer built from three terms:
//   - Amount (70): exact match, or within 5%, 10%, 20% of the expense amount
//   - Date (20): same day, one day apart, or within the date tolerance
//   - Description (10): normalized edit-distance similarity
//
// The strategy decides which terms are active. Scoring is pure, so the full
// expense x sale matrix can be computed concurrently.
//
// Example usage:
//
//	m := matcher.NewMatcher(matcher.DefaultConfig())
//	candidates, err := m.RankCandidates(expense, sales, matcher.DefaultRankOptions())
//	matches, err := m.SelectMatches(ctx, expenses, sales)
package matcher

import (
	"fmt"
	"math"
	"runtime"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/reconcile-backend/internal/domain/transaction"
)

// Term weights.
const (
	amountWeight      = 70
	dateWeight        = 20
	descriptionWeight = 10
	maxScore          = 100
)

// Amount tiers as fractions of the expense amount. Comparisons are strict,
// so a difference of exactly 5% lands in the 10% tier.
var (
	tier5Percent  = decimal.RequireFromString("0.05")
	tier10Percent = decimal.RequireFromString("0.10")
	tier20Percent = decimal.RequireFromString("0.20")
)

// Matcher matches expenses with sales
type Matcher struct {
	config  Config
	workers int
}

// NewMatcher creates a new matcher with the given config
func NewMatcher(config Config) *Matcher {
	return &Matcher{
		config:  config,
		workers: runtime.GOMAXPROCS(0),
	}
}

// WithWorkers bounds the goroutines used to build the score matrix.
func (m *Matcher) WithWorkers(n int) *Matcher {
	if n > 0 {
		m.workers = n
	}
	return m
}

// Config returns the configuration the matcher scores with.
func (m *Matcher) Config() Config {
	return m.config
}

// Score returns the confidence for one expense/sale pair.
func (m *Matcher) Score(expense, sale *transaction.Transaction) (int, error) {
	return Score(expense, sale, m.config)
}

// Evaluate scores one pairing and explains it, without applying the
// auto-match threshold.
func (m *Matcher) Evaluate(expense, sale *transaction.Transaction) (Match, error) {
	score, err := m.Score(expense, sale)
	if err != nil {
		return Match{}, err
	}
	return Match{
		ExpenseID:  expense.ID,
		SaleID:     sale.ID,
		Confidence: score,
		Reasons:    reasons(expense, sale, m.config),
	}, nil
}

// Score computes the 0-100 confidence that expense and sale describe the
// same event under cfg.
func Score(expense, sale *transaction.Transaction, cfg Config) (int, error) {
	if err := checkScorable(expense); err != nil {
		return 0, err
	}
	if err := checkScorable(sale); err != nil {
		return 0, err
	}

	score := amountScore(expense.Amount, sale.Amount)

	if cfg.Strategy.usesDate() {
		score += dateScore(DaysApart(expense, sale), cfg.DateToleranceDays)
	}

	if cfg.Strategy.usesDescription() {
		score += descriptionScore(expense.Description, sale.Description)
	}

	return min(max(score, 0), maxScore), nil
}

// DaysApart returns the whole number of calendar days between two
// transactions, regardless of order.
func DaysApart(a, b *transaction.Transaction) int {
	days := a.Date.DaysSince(b.Date)
	if days < 0 {
		return -days
	}
	return days
}

func checkScorable(tx *transaction.Transaction) error {
	if tx == nil {
		return fmt.Errorf("%w: nil transaction", ErrMalformedTransaction)
	}
	if !tx.Date.IsValid() {
		return fmt.Errorf("%w: transaction %s has invalid date %q", ErrMalformedTransaction, tx.ID, tx.Date.String())
	}
	return nil
}

// amountScore tiers |expense - sale| against |expense|.
func amountScore(expense, sale decimal.Decimal) int {
	diff := expense.Sub(sale).Abs()
	if diff.IsZero() {
		return amountWeight
	}

	base := expense.Abs()
	switch {
	case diff.LessThan(base.Mul(tier5Percent)):
		return 50
	case diff.LessThan(base.Mul(tier10Percent)):
		return 30
	case diff.LessThan(base.Mul(tier20Percent)):
		return 10
	default:
		return 0
	}
}

func dateScore(days, toleranceDays int) int {
	switch {
	case days == 0:
		return dateWeight
	case days <= 1:
		return 15
	case days <= toleranceDays:
		return 10
	default:
		return 0
	}
}

func descriptionScore(a, b string) int {
	return int(math.Round(Similarity(a, b) * descriptionWeight))
}

// reasons explains a pairing independently of its score.
func reasons(expense, sale *transaction.Transaction, cfg Config) []string {
	var out []string

	if expense.Amount.Equal(sale.Amount) {
		out = append(out, "Exact amount match")
	}

	if cfg.Strategy.usesDate() {
		days := DaysApart(expense, sale)
		switch {
		case days == 0:
			out = append(out, "Same date")
		case dateScore(days, cfg.DateToleranceDays) > 0:
			unit := "days"
			if days == 1 {
				unit = "day"
			}
			out = append(out, fmt.Sprintf("Within %d %s", days, unit))
		}
	}

	return out
}
