package matcher

import (
	"fmt"

	"github.com/eshaffer321/reconcile-backend/internal/domain/transaction"
)

// Strategy selects which scoring components are active.
type Strategy string

const (
	StrategyAmountOnly    Strategy = "amount_only"
	StrategyAmountAndDate Strategy = "amount_and_date"
	StrategyFuzzy         Strategy = "fuzzy_match"
)

// ParseStrategy converts a stored or user-supplied strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyAmountOnly, StrategyAmountAndDate, StrategyFuzzy:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("%w: unknown match strategy %q", ErrInvalidConfiguration, s)
}

func (s Strategy) usesDate() bool {
	return s == StrategyAmountAndDate || s == StrategyFuzzy
}

func (s Strategy) usesDescription() bool {
	return s == StrategyFuzzy
}

// Threshold bounds for Config.AutoMatchThreshold.
const (
	MinAutoMatchThreshold = 50
	MaxAutoMatchThreshold = 100
)

// Config holds matcher configuration
type Config struct {
	DateToleranceDays  int      // Default: 7
	AutoMatchThreshold int      // Default: 95, range [50,100]
	Strategy           Strategy // Default: amount_and_date
}

// DefaultConfig returns the settings used when an owner has none stored
func DefaultConfig() Config {
	return Config{
		DateToleranceDays:  7,
		AutoMatchThreshold: 95,
		Strategy:           StrategyAmountAndDate,
	}
}

// Validate rejects configurations the engine must not run with.
func (c Config) Validate() error {
	if c.DateToleranceDays < 0 {
		return fmt.Errorf("%w: date tolerance must be non-negative, got %d", ErrInvalidConfiguration, c.DateToleranceDays)
	}
	if c.AutoMatchThreshold < MinAutoMatchThreshold || c.AutoMatchThreshold > MaxAutoMatchThreshold {
		return fmt.Errorf("%w: auto-match threshold must be within [%d,%d], got %d",
			ErrInvalidConfiguration, MinAutoMatchThreshold, MaxAutoMatchThreshold, c.AutoMatchThreshold)
	}
	if _, err := ParseStrategy(string(c.Strategy)); err != nil {
		return err
	}
	return nil
}

// Candidate is a scored sale offered for manual review of one expense.
type Candidate struct {
	Sale      *transaction.Transaction
	Score     int
	DaysApart int
}

// Match is a pairing chosen by SelectMatches.
type Match struct {
	ExpenseID  string
	SaleID     string
	Confidence int
	Reasons    []string
}

// RankOptions bounds the candidate list for manual review.
type RankOptions struct {
	MinFloor int // candidates must score strictly above this
	TopN     int
}

// DefaultRankOptions returns the review-screen defaults.
func DefaultRankOptions() RankOptions {
	return RankOptions{
		MinFloor: 20,
		TopN:     3,
	}
}
