package jobq_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	jobq "github.com/arvindsundar/jobq"
	"github.com/arvindsundar/jobq/job"
	"github.com/arvindsundar/jobq/store/sqlstore"
)

func newTestStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	s, err := sqlstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// waitForState polls until the job is in state want after at least one
// transition, so a job's untouched initial Pending snapshot never counts.
func waitForState(t *testing.T, s *sqlstore.Store, id string, want job.State, timeout time.Duration) *job.Job {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		got, err := s.GetJob(context.Background(), id)
		require.NoError(t, err)
		if got.State == want && got.UpdatedAt.After(got.CreatedAt) {
			return got
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s did not reach state %s in time", id, want)
	return nil
}

func TestWorkerCompletesSuccessfulJob(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	j := job.New("true", job.Medium, 3)
	require.NoError(t, s.CreateJob(ctx, j))

	w := jobq.NewWorker("worker-1", s, jobq.WorkerConfig{PollInterval: 10 * time.Millisecond}, discardLogger())
	require.NoError(t, w.Start(ctx))
	defer w.Stop(time.Second)

	got := waitForState(t, s, j.Id, job.Completed, 2*time.Second)
	require.Nil(t, got.LockedBy)
}

func TestWorkerSchedulesRetryOnFailure(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.SetConfig(ctx, "backoff-base", "2"))
	require.NoError(t, s.SetConfig(ctx, "backoff-initial-delay", "1"))

	j := job.New("false", job.Medium, 3)
	require.NoError(t, s.CreateJob(ctx, j))

	w := jobq.NewWorker("worker-1", s, jobq.WorkerConfig{PollInterval: 10 * time.Millisecond}, discardLogger())
	require.NoError(t, w.Start(ctx))
	defer w.Stop(time.Second)

	got := waitForState(t, s, j.Id, job.Pending, 2*time.Second)
	require.EqualValues(t, 1, got.Attempts)
	require.NotNil(t, got.NextRetryAt)
	require.Nil(t, got.LockedBy)
}

func TestWorkerSendsJobToDLQAfterMaxRetries(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	j := job.New("false", job.Medium, 1)
	require.NoError(t, s.CreateJob(ctx, j))

	w := jobq.NewWorker("worker-1", s, jobq.WorkerConfig{PollInterval: 10 * time.Millisecond}, discardLogger())
	require.NoError(t, w.Start(ctx))
	defer w.Stop(time.Second)

	got := waitForState(t, s, j.Id, job.Dead, 2*time.Second)
	require.Nil(t, got.NextRetryAt)
	require.Nil(t, got.LockedBy)
}

func TestWorkerClearsNextRetryAtWhenDeadAfterRetry(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// base 1 and initial delay 1 give a 1s retry delay, inside the 2s wait.
	require.NoError(t, s.SetConfig(ctx, "backoff-base", "1"))
	require.NoError(t, s.SetConfig(ctx, "backoff-initial-delay", "1"))

	j := job.New("false", job.Medium, 2)
	require.NoError(t, s.CreateJob(ctx, j))

	w := jobq.NewWorker("worker-1", s, jobq.WorkerConfig{PollInterval: 10 * time.Millisecond}, discardLogger())
	require.NoError(t, w.Start(ctx))
	defer w.Stop(time.Second)

	retried := waitForState(t, s, j.Id, job.Pending, 2*time.Second)
	require.EqualValues(t, 1, retried.Attempts)
	require.NotNil(t, retried.NextRetryAt)

	dead := waitForState(t, s, j.Id, job.Dead, 2*time.Second)
	require.EqualValues(t, 2, dead.Attempts)
	require.Nil(t, dead.NextRetryAt)
	require.Nil(t, dead.LockedBy)
}

func TestWorkerStopIsIdempotentlyRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	w := jobq.NewWorker("worker-1", s, jobq.WorkerConfig{}, discardLogger())
	require.NoError(t, w.Start(ctx))
	require.ErrorIs(t, w.Start(ctx), jobq.ErrDoubleStarted)
	require.NoError(t, w.Stop(time.Second))
	require.ErrorIs(t, w.Stop(time.Second), jobq.ErrDoubleStopped)
}
