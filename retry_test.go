package jobq_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arvindsundar/jobq"
)

func TestDecideAfterFailureRetry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := jobq.BackoffConfig{Base: 2, InitialDelay: 1}

	d := jobq.DecideAfterFailure(0, 3, now, cfg)

	require.Equal(t, jobq.Retry, d.Outcome)
	require.Equal(t, uint32(1), d.Attempts)
	require.Equal(t, now.Add(2*time.Second), d.NextRetryAt)
}

func TestDecideAfterFailureDeadBoundary(t *testing.T) {
	now := time.Now()
	cfg := jobq.BackoffConfig{Base: 2, InitialDelay: 1}

	// attemptsBefore=2, maxRetries=3 => a=3 >= 3 => Dead.
	d := jobq.DecideAfterFailure(2, 3, now, cfg)
	require.Equal(t, jobq.Dead, d.Outcome)
	require.Equal(t, uint32(3), d.Attempts)
}

func TestDecideAfterFailureMonotonicDelay(t *testing.T) {
	now := time.Now()
	cfg := jobq.BackoffConfig{Base: 2, InitialDelay: 1}

	first := jobq.DecideAfterFailure(0, 10, now, cfg)
	second := jobq.DecideAfterFailure(1, 10, now, cfg)

	require.True(t, second.NextRetryAt.After(first.NextRetryAt))
}

func TestDecideAfterFailureJitterStaysBounded(t *testing.T) {
	now := time.Now()
	cfg := jobq.BackoffConfig{Base: 2, InitialDelay: 1, RandomizationFactor: 0.5}

	for i := 0; i < 50; i++ {
		d := jobq.DecideAfterFailure(0, 10, now, cfg)
		delay := d.NextRetryAt.Sub(now)
		require.GreaterOrEqual(t, delay, time.Second)
		require.LessOrEqual(t, delay, 3*time.Second)
	}
}
