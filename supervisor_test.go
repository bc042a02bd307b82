package jobq_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	jobq "github.com/arvindsundar/jobq"
)

func TestNewSupervisorRejectsZeroCount(t *testing.T) {
	_, err := jobq.NewSupervisor(jobq.SupervisorConfig{Count: 0, Executable: "/bin/true"}, discardLogger())
	require.Error(t, err)
}

func TestSupervisorStartsAndStopsWorkers(t *testing.T) {
	s, err := jobq.NewSupervisor(jobq.SupervisorConfig{
		Count:      2,
		Executable: "/bin/sleep",
		Args:       []string{"30"},
	}, discardLogger())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	require.ErrorIs(t, s.Start(ctx), jobq.ErrDoubleStarted)

	require.NoError(t, s.Stop(jobq.ShutdownGrace+time.Second))
}
