package matcher

import (
	"slices"

	"github.com/eshaffer321/reconcile-backend/internal/domain/transaction"
)

// RankCandidates scores expense against every pending sale and returns the
// best opts.TopN candidates scoring strictly above opts.MinFloor, highest
// first. Equal scores keep the order of sales.
func (m *Matcher) RankCandidates(
	expense *transaction.Transaction,
	sales []*transaction.Transaction,
	opts RankOptions,
) ([]Candidate, error) {
	candidates := make([]Candidate, 0, len(sales))

	for _, sale := range sales {
		// Only pending sales are eligible
		if !sale.IsPending() {
			continue
		}

		score, err := Score(expense, sale, m.config)
		if err != nil {
			return nil, err
		}
		if score <= opts.MinFloor {
			continue
		}

		candidates = append(candidates, Candidate{
			Sale:      sale,
			Score:     score,
			DaysApart: DaysApart(expense, sale),
		})
	}

	slices.SortStableFunc(candidates, func(a, b Candidate) int {
		return b.Score - a.Score
	})

	if opts.TopN >= 0 && len(candidates) > opts.TopN {
		candidates = candidates[:opts.TopN]
	}

	return candidates, nil
}
