package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/eshaffer321/reconcile-backend/internal/application/service"
	"github.com/eshaffer321/reconcile-backend/internal/domain/transaction"
)

// PrintHeader prints the application header
func PrintHeader(w io.Writer, command, detail string) {
	if detail == "" {
		fmt.Fprintf(w, "reconcile: %s\n", command)
		return
	}
	fmt.Fprintf(w, "reconcile: %s (%s)\n", command, detail)
}

// PrintImportSummary prints the outcome of one CSV import
func PrintImportSummary(w io.Writer, filename string, batch *transaction.Batch, err error) {
	switch {
	case err == nil:
		fmt.Fprintf(w, "  %s: imported %d of %d rows as %s (batch %s)\n",
			filename, batch.ProcessedRows, batch.TotalRows, batch.Kind, batch.ID)
	case batch != nil:
		fmt.Fprintf(w, "  %s: FAILED (batch %s): %v\n", filename, batch.ID, err)
	default:
		fmt.Fprintf(w, "  %s: FAILED: %v\n", filename, err)
	}
}

// PrintAutoMatchSummary prints the result of one owner's auto-match run
func PrintAutoMatchSummary(w io.Writer, ownerID string, result *service.AutoMatchResult, err error) {
	if result == nil {
		if errors.Is(err, service.ErrRunInProgress) {
			fmt.Fprintf(w, "%s: skipped, a run is already in progress\n", ownerID)
			return
		}
		fmt.Fprintf(w, "%s: FAILED: %v\n", ownerID, err)
		return
	}

	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintf(w, "%s: Matched=%d Skipped=%d Expenses=%d Sales=%d (run %s)\n",
		ownerID,
		result.MatchedCount,
		result.SkippedCount,
		result.TotalExpenses,
		result.TotalSales,
		result.RunID)

	for _, m := range result.Matches {
		fmt.Fprintf(w, "  %s <-> %s  %3d%%  %s\n", m.ExpenseID, m.SaleID, m.Confidence, strings.Join(m.Reasons, ", "))
	}

	if err != nil {
		fmt.Fprintf(w, "\nRun stopped early: %v\n", err)
	}
}

// PrintStats prints an owner's dashboard totals
func PrintStats(w io.Writer, ownerID string, stats *service.Stats) {
	fmt.Fprintf(w, "Owner: %s\n", ownerID)
	fmt.Fprintf(w, "Transactions=%d Matched=%d (%d%%) Pending=%d Ignored=%d Amount=%s\n",
		stats.TotalTransactions,
		stats.MatchedCount,
		stats.MatchedPercentage,
		stats.PendingCount,
		stats.IgnoredCount,
		stats.TotalAmount)
}
