package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arvindsundar/jobq/job"
	"github.com/arvindsundar/jobq/store"
)

func newDLQCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dlq",
		Short: "Manage the Dead Letter Queue",
	}
	cmd.AddCommand(newDLQListCmd(), newDLQRetryCmd())
	return cmd
}

func newDLQListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List jobs in the Dead Letter Queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDLQList(cmd)
		},
	}
}

func runDLQList(cmd *cobra.Command) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	dead, err := s.ListJobs(context.Background(), job.Dead, 0)
	if err != nil {
		return fmt.Errorf("failed to list DLQ jobs: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Dead Letter Queue (DLQ)")
	fmt.Fprintln(out, "================================================================================")
	fmt.Fprintln(out, "These jobs have failed permanently after exhausting all retries.")

	if len(dead) == 0 {
		fmt.Fprintln(out, "\nNo jobs in DLQ.")
		fmt.Fprintln(out, "\nTip: jobs are sent to the DLQ after failing max_retries times.")
		return nil
	}

	for _, j := range dead {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Job ID:", j.Id)
		fmt.Fprintln(out, "  Command:", j.Command)
		fmt.Fprintln(out, "  Priority:", j.Priority)
		fmt.Fprintf(out, "  Failed Attempts: %d/%d\n", j.Attempts, j.MaxRetries)
		fmt.Fprintln(out, "  Created:", j.CreatedAt)
		fmt.Fprintln(out, "  Last Updated:", j.UpdatedAt)
	}

	fmt.Fprintln(out, "================================================================================")
	fmt.Fprintf(out, "Total jobs in DLQ: %d\n", len(dead))
	fmt.Fprintln(out, "\nTo retry a job: jobq dlq retry <JOB_ID>")
	return nil
}

func newDLQRetryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retry <job_id>",
		Short: "Revive a job from the Dead Letter Queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDLQRetry(cmd, args[0])
		},
	}
}

func runDLQRetry(cmd *cobra.Command, id string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	j, err := s.GetJob(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("job %q not found", id)
		}
		return err
	}
	if j.State != job.Dead {
		return fmt.Errorf("job %q is not in the Dead Letter Queue (current state: %s): %w", id, j.State, store.ErrInvalidState)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Job %q:\n", id)
	fmt.Fprintln(out, "  Command:", j.Command)
	fmt.Fprintf(out, "  Previous attempts: %d/%d\n", j.Attempts, j.MaxRetries)

	if !confirm(out, bufio.NewReader(cmd.InOrStdin()), "Retry this job?") {
		fmt.Fprintln(out, "Cancelled.")
		return nil
	}

	pending := job.Pending
	zero := uint32(0)
	patch := store.ClearLock()
	patch.State = &pending
	patch.Attempts = &zero
	patch.NextRetryAt = store.NullTime{Set: true}
	if err := s.UpdateJob(ctx, id, patch); err != nil {
		return fmt.Errorf("failed to retry job: %w", err)
	}

	fmt.Fprintln(out, "Job", id, "returned to pending.")
	return nil
}
