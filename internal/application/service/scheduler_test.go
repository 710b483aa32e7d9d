package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/reconcile-backend/internal/domain/transaction"
	"github.com/eshaffer321/reconcile-backend/internal/infrastructure/storage"
)

func TestNewScheduler_InvalidSpec(t *testing.T) {
	_, err := NewScheduler(newTestService(storage.NewMockRepository()), "every tuesday", quietLogger())
	assert.Error(t, err)
}

func TestScheduler_RunOnce(t *testing.T) {
	repo := storage.NewMockRepository()
	for _, o := range []string{"owner-a", "owner-b"} {
		e := txn("e-"+o, transaction.KindExpense, "10.00", march(1), "same")
		e.OwnerID = o
		s := txn("s-"+o, transaction.KindSale, "10.00", march(1), "same")
		s.OwnerID = o
		repo.AddTransaction(e)
		repo.AddTransaction(s)
		require.NoError(t, repo.SaveSettings(context.Background(), o, fuzzy(95)))
	}
	svc := newTestService(repo)

	sched, err := NewScheduler(svc, "@hourly", quietLogger())
	require.NoError(t, err)

	assert.Equal(t, 2, sched.RunOnce(context.Background()))
	assert.Equal(t, transaction.StatusMatched, repo.Snapshot(transaction.KindExpense, "e-owner-a").Status)
	assert.Equal(t, transaction.StatusMatched, repo.Snapshot(transaction.KindExpense, "e-owner-b").Status)

	runs, err := svc.Runs(context.Background(), "owner-a", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, TriggerScheduled, runs[0].Trigger)
}

func TestScheduler_RunOnce_ContinuesPastFailures(t *testing.T) {
	repo := storage.NewMockRepository()
	for _, o := range []string{"owner-a", "owner-b"} {
		e := txn("e-"+o, transaction.KindExpense, "10.00", march(1), "same")
		e.OwnerID = o
		s := txn("s-"+o, transaction.KindSale, "10.00", march(1), "same")
		s.OwnerID = o
		repo.AddTransaction(e)
		repo.AddTransaction(s)
		require.NoError(t, repo.SaveSettings(context.Background(), o, fuzzy(95)))
	}
	repo.MarkMatchedErr["e-owner-a"] = errors.New("connection reset")
	svc := newTestService(repo)

	sched, err := NewScheduler(svc, "@hourly", quietLogger())
	require.NoError(t, err)

	assert.Equal(t, 1, sched.RunOnce(context.Background()))
	assert.Equal(t, transaction.StatusMatched, repo.Snapshot(transaction.KindExpense, "e-owner-b").Status)
}

func TestScheduler_StartStop(t *testing.T) {
	sched, err := NewScheduler(newTestService(storage.NewMockRepository()), "@daily", quietLogger())
	require.NoError(t, err)

	sched.Start()
	sched.Stop(context.Background())
}
