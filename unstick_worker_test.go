package jobq_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	jobq "github.com/arvindsundar/jobq"
	"github.com/arvindsundar/jobq/job"
)

func TestUnstickWorkerReclaimsStaleJobs(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	j := job.New("sleep 100", job.Medium, 3)
	require.NoError(t, s.CreateJob(ctx, j))

	stale := time.Now().Add(-time.Hour)
	claimed, err := s.ClaimNextJob(ctx, "worker-1", stale)
	require.NoError(t, err)
	require.NotNil(t, claimed)

	u := jobq.NewUnstickWorker(s, jobq.UnstickConfig{
		Interval:  10 * time.Millisecond,
		OlderThan: time.Minute,
	}, discardLogger())
	require.NoError(t, u.Start(ctx))
	defer u.Stop(time.Second)

	got := waitForState(t, s, j.Id, job.Pending, 2*time.Second)
	require.Nil(t, got.LockedBy)
}

func TestUnstickWorkerLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := jobq.NewUnstickWorker(s, jobq.UnstickConfig{Interval: time.Minute, OlderThan: time.Hour}, discardLogger())
	require.NoError(t, u.Start(ctx))
	require.ErrorIs(t, u.Start(ctx), jobq.ErrDoubleStarted)
	require.NoError(t, u.Stop(time.Second))
}
