package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arvindsundar/jobq/job"
)

func newListCmd() *cobra.Command {
	var state string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, optionally filtered by state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, state)
		},
	}
	cmd.Flags().StringVar(&state, "state", "", "filter by state: pending, processing, completed, failed, dead")
	return cmd
}

func runList(cmd *cobra.Command, stateFlag string) error {
	filter := job.Unknown
	if stateFlag != "" {
		parsed, err := job.ParseState(stateFlag)
		if err != nil {
			return fmt.Errorf("invalid state %q: must be one of pending, processing, completed, failed, dead", stateFlag)
		}
		filter = parsed
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	jobs, err := s.ListJobs(context.Background(), filter, 0)
	if err != nil {
		return fmt.Errorf("failed to list jobs: %w", err)
	}

	out := cmd.OutOrStdout()
	if stateFlag != "" {
		fmt.Fprintln(out, "Jobs with state:", stateFlag)
	} else {
		fmt.Fprintln(out, "All jobs")
	}
	fmt.Fprintln(out, "--------------------------------------------------------------------------------")

	if len(jobs) == 0 {
		fmt.Fprintln(out, "No jobs found.")
		return nil
	}

	for _, j := range jobs {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Job ID:", j.Id)
		fmt.Fprintln(out, "  Command:", j.Command)
		fmt.Fprintln(out, "  Priority:", j.Priority)
		fmt.Fprintln(out, "  State:", j.State)
		fmt.Fprintf(out, "  Attempts: %d/%d\n", j.Attempts, j.MaxRetries)
		fmt.Fprintln(out, "  Created:", j.CreatedAt)
		fmt.Fprintln(out, "  Updated:", j.UpdatedAt)
	}

	fmt.Fprintln(out, "--------------------------------------------------------------------------------")
	fmt.Fprintf(out, "Total: %d job(s)\n", len(jobs))
	return nil
}
