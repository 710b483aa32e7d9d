package matcher

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/eshaffer321/reconcile-backend/internal/domain/transaction"
)

// scoredPair is one above-threshold cell of the score matrix.
type scoredPair struct {
	expense int
	sale    int
	score   int
}

// SelectMatches picks at most one sale per expense and at most one expense
// per sale, considering only pairs scoring at or above the auto-match
// threshold.
//
// Pairs are claimed greedily from the highest score down. Ties go to the
// earlier expense, then the earlier sale. Once a sale is claimed it leaves
// the pool, so no two expenses can be paired with the same sale in one run.
func (m *Matcher) SelectMatches(
	ctx context.Context,
	expenses []*transaction.Transaction,
	sales []*transaction.Transaction,
) ([]Match, error) {
	if err := m.config.Validate(); err != nil {
		return nil, err
	}

	pairs, err := m.scoreMatrix(ctx, expenses, sales)
	if err != nil {
		return nil, err
	}

	// Stable sort keeps row-major (expense, sale) order among equal scores
	slices.SortStableFunc(pairs, func(a, b scoredPair) int {
		return b.score - a.score
	})

	expenseTaken := make([]bool, len(expenses))
	saleTaken := make([]bool, len(sales))
	matches := make([]Match, 0, min(len(expenses), len(sales)))

	for _, p := range pairs {
		if expenseTaken[p.expense] || saleTaken[p.sale] {
			continue
		}
		expenseTaken[p.expense] = true
		saleTaken[p.sale] = true

		expense, sale := expenses[p.expense], sales[p.sale]
		matches = append(matches, Match{
			ExpenseID:  expense.ID,
			SaleID:     sale.ID,
			Confidence: p.score,
			Reasons:    reasons(expense, sale, m.config),
		})
	}

	return matches, nil
}

// scoreMatrix scores every pending expense against every pending sale.
// Rows are computed concurrently; each goroutine writes only its own row.
func (m *Matcher) scoreMatrix(
	ctx context.Context,
	expenses []*transaction.Transaction,
	sales []*transaction.Transaction,
) ([]scoredPair, error) {
	rows := make([][]scoredPair, len(expenses))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)

	for i, expense := range expenses {
		if !expense.IsPending() {
			continue
		}
		i, expense := i, expense
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var row []scoredPair
			for j, sale := range sales {
				if !sale.IsPending() {
					continue
				}
				score, err := Score(expense, sale, m.config)
				if err != nil {
					return err
				}
				if score >= m.config.AutoMatchThreshold {
					row = append(row, scoredPair{expense: i, sale: j, score: score})
				}
			}
			rows[i] = row
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var pairs []scoredPair
	for _, row := range rows {
		pairs = append(pairs, row...)
	}
	return pairs, nil
}
