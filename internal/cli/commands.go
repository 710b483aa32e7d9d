package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/eshaffer321/reconcile-backend/internal/application/ingest"
	"github.com/eshaffer321/reconcile-backend/internal/application/service"
	"github.com/eshaffer321/reconcile-backend/internal/infrastructure/config"
)

// RunImport loads each CSV file as its own batch. Every file is attempted;
// the error reports how many failed.
func RunImport(ctx context.Context, cfg *config.Config, flags *ImportFlags, out io.Writer) error {
	logger := NewLogger(cfg, flags.CommonFlags, "ingest")

	store, err := OpenStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	importer := ingest.NewImporter(store, logger)

	PrintHeader(out, "import", fmt.Sprintf("owner %s, %s", flags.Owner, flags.Kind))

	failed := 0
	for _, path := range flags.Files {
		name := filepath.Base(path)

		f, err := os.Open(path)
		if err != nil {
			PrintImportSummary(out, name, nil, err)
			failed++
			continue
		}
		batch, err := importer.Import(ctx, flags.Owner, name, flags.Kind, f)
		_ = f.Close()

		PrintImportSummary(out, name, batch, err)
		if err != nil {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to import", failed, len(flags.Files))
	}
	return nil
}

// RunAutoMatch runs auto-match once for one owner, or for every owner with
// pending transactions.
func RunAutoMatch(ctx context.Context, cfg *config.Config, flags *AutoMatchFlags, out io.Writer) error {
	logger := NewLogger(cfg, flags.CommonFlags, "automatch")

	store, err := OpenStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	svc := NewReconcileService(cfg, store, logger)

	owners := []string{flags.Owner}
	if flags.All {
		owners, err = store.ListOwnersWithPending(ctx)
		if err != nil {
			return fmt.Errorf("failed to list owners: %w", err)
		}
	}

	PrintHeader(out, "automatch", fmt.Sprintf("%d owner(s)", len(owners)))

	failed := 0
	for _, owner := range owners {
		result, err := svc.RunAutoMatch(ctx, owner, service.TriggerManual)
		PrintAutoMatchSummary(out, owner, result, err)
		if err != nil {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("auto-match failed for %d of %d owners", failed, len(owners))
	}
	return nil
}

// RunStats prints an owner's dashboard totals
func RunStats(ctx context.Context, cfg *config.Config, flags *StatsFlags, out io.Writer) error {
	logger := NewLogger(cfg, flags.CommonFlags, "stats")

	store, err := OpenStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	stats, err := NewReconcileService(cfg, store, logger).Stats(ctx, flags.Owner)
	if err != nil {
		return err
	}
	PrintStats(out, flags.Owner, stats)
	return nil
}
