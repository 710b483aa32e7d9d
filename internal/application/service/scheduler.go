package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler runs auto-match for every owner with pending work on a cron
// schedule.
type Scheduler struct {
	svc    *ReconcileService
	cron   *cron.Cron
	logger *slog.Logger
}

// NewScheduler registers the auto-match job under spec, e.g. "@hourly" or
// "*/15 * * * *". The scheduler does nothing until Start is called.
func NewScheduler(svc *ReconcileService, spec string, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Scheduler{
		svc:    svc,
		logger: logger,
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}

	if _, err := s.cron.AddFunc(spec, func() {
		s.RunOnce(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("invalid auto-match schedule %q: %w", spec, err)
	}

	return s, nil
}

// Start begins running the schedule in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("auto-match scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop halts the schedule and waits for a running pass to finish or ctx to
// expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("auto-match scheduler stop timed out")
	}
}

// RunOnce runs auto-match for each owner with pending transactions and
// returns the number of owners processed without error. One owner's failure
// does not stop the others.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	owners, err := s.svc.store.ListOwnersWithPending(ctx)
	if err != nil {
		s.logger.Error("failed to list owners for auto-match", "error", err)
		return 0
	}

	ok := 0
	for _, owner := range owners {
		if ctx.Err() != nil {
			break
		}
		_, err := s.svc.RunAutoMatch(ctx, owner, TriggerScheduled)
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrRunInProgress):
			s.logger.Info("skipping owner with active auto-match", "owner_id", owner)
		default:
			s.logger.Error("scheduled auto-match failed", "owner_id", owner, "error", err)
		}
	}
	return ok
}
