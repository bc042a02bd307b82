package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func execCLI(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--store=" + dbPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestEnqueueAndListRoundTrip(t *testing.T) {
	db := filepath.Join(t.TempDir(), "queue.db")

	out, err := execCLI(t, db, "enqueue", `{"id":"t1","command":"echo hi"}`)
	require.NoError(t, err)
	require.Contains(t, out, "Job ID: t1")

	out, err = execCLI(t, db, "list")
	require.NoError(t, err)
	require.Contains(t, out, "Job ID: t1")
	require.Contains(t, out, "Total: 1 job(s)")
}

func TestEnqueueRejectsEmptyCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "queue.db")
	_, err := execCLI(t, db, "enqueue", `{"command":""}`)
	require.Error(t, err)
}

func TestEnqueueRejectsInvalidPriority(t *testing.T) {
	db := filepath.Join(t.TempDir(), "queue.db")
	_, err := execCLI(t, db, "enqueue", `{"command":"echo hi","priority":"urgent"}`)
	require.Error(t, err)
}

func TestStatusReportsCounts(t *testing.T) {
	db := filepath.Join(t.TempDir(), "queue.db")
	_, err := execCLI(t, db, "enqueue", `{"command":"echo hi"}`)
	require.NoError(t, err)

	out, err := execCLI(t, db, "status")
	require.NoError(t, err)
	require.Contains(t, out, "Pending:")
}

func TestDLQRetryRejectsNonDeadJob(t *testing.T) {
	db := filepath.Join(t.TempDir(), "queue.db")
	_, err := execCLI(t, db, "enqueue", `{"id":"t2","command":"echo hi"}`)
	require.NoError(t, err)

	_, err = execCLI(t, db, "dlq", "retry", "t2")
	require.Error(t, err)
}

func TestDLQRetryRejectsUnknownJob(t *testing.T) {
	db := filepath.Join(t.TempDir(), "queue.db")
	_, err := execCLI(t, db, "dlq", "retry", "missing")
	require.Error(t, err)
}

func TestConfigSetGetRoundTrip(t *testing.T) {
	db := filepath.Join(t.TempDir(), "queue.db")
	_, err := execCLI(t, db, "config", "set", "max-retries", "7")
	require.NoError(t, err)

	out, err := execCLI(t, db, "config", "get", "max-retries")
	require.NoError(t, err)
	require.Contains(t, out, "7")
}

func TestAdminUnstickRunsCleanly(t *testing.T) {
	db := filepath.Join(t.TempDir(), "queue.db")
	out, err := execCLI(t, db, "admin", "unstick")
	require.NoError(t, err)
	require.Contains(t, out, "Reclaimed 0 stale job(s).")
}
