package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arvindsundar/jobq/job"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show a summary of all job states",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd)
		},
	}
}

func runStatus(cmd *cobra.Command) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	counts, err := s.JobCounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Job Queue Status")
	fmt.Fprintln(out, "==================================================")
	fmt.Fprintln(out, "\nJobs by State:")
	fmt.Fprintf(out, "  Pending:     %6d\n", counts[job.Pending])
	fmt.Fprintf(out, "  Processing:  %6d\n", counts[job.Processing])
	fmt.Fprintf(out, "  Completed:   %6d\n", counts[job.Completed])
	fmt.Fprintf(out, "  Failed:      %6d\n", counts[job.Failed])
	fmt.Fprintf(out, "  Dead (DLQ):  %6d\n", counts[job.Dead])
	fmt.Fprintln(out, "--------------------------------------------------")
	fmt.Fprintf(out, "  Total:       %6d\n", total)

	if total > 0 {
		fmt.Fprintln(out, "\nCompletion Rate:")
		rate := float64(counts[job.Completed]) / float64(total) * 100
		fmt.Fprintf(out, "  %.1f%% (%d/%d)\n", rate, counts[job.Completed], total)

		if counts[job.Dead] > 0 {
			failRate := float64(counts[job.Dead]) / float64(total) * 100
			fmt.Fprintln(out, "\nPermanent Failures:")
			fmt.Fprintf(out, "  %.1f%% (%d/%d)\n", failRate, counts[job.Dead], total)
		}
	}

	active := counts[job.Pending] + counts[job.Processing]
	if active > 0 {
		fmt.Fprintf(out, "\nActive/Pending Work: %d job(s)\n", active)

		priorities, err := s.PriorityCounts(ctx)
		if err != nil {
			return fmt.Errorf("failed to get priority breakdown: %w", err)
		}
		priorityTotal := 0
		for _, n := range priorities {
			priorityTotal += n
		}
		if priorityTotal > 0 {
			fmt.Fprintln(out, "\nActive Jobs by Priority:")
			fmt.Fprintf(out, "  High:        %6d\n", priorities[job.High])
			fmt.Fprintf(out, "  Medium:      %6d\n", priorities[job.Medium])
			fmt.Fprintf(out, "  Low:         %6d\n", priorities[job.Low])
		}
	}

	fmt.Fprintln(out, "==================================================")
	return nil
}
