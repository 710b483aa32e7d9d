package service

import (
	"context"

	"github.com/eshaffer321/reconcile-backend/internal/domain/matcher"
)

// Session is the per-invocation state of one owner's reconciliation work.
// It is built fresh for every call and never cached between requests.
type Session struct {
	OwnerID string
	Config  matcher.Config
	Matcher *matcher.Matcher
}

// NewSession loads the owner's configuration and prepares a matcher for it.
func (s *ReconcileService) NewSession(ctx context.Context, ownerID string) (*Session, error) {
	cfg, err := s.MatchConfig(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Session{
		OwnerID: ownerID,
		Config:  cfg,
		Matcher: matcher.NewMatcher(cfg).WithWorkers(s.workers),
	}, nil
}
