package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	jobq "github.com/arvindsundar/jobq"
)

func newWorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Manage worker processes",
	}
	cmd.AddCommand(newWorkerStartCmd(), newWorkerStopCmd(), newWorkerRunOneCmd())
	return cmd
}

func newWorkerStartCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start one or more worker processes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkerStart(cmd, count)
		},
	}
	cmd.Flags().IntVar(&count, "count", 1, "number of workers to start")
	return cmd
}

func runWorkerStart(cmd *cobra.Command, count int) error {
	if count < 1 {
		return fmt.Errorf("count must be at least 1")
	}
	if count > jobq.MaxRecommendedWorkers {
		fmt.Fprintf(cmd.OutOrStdout(), "Warning: starting more than %d workers may cause performance issues.\n", jobq.MaxRecommendedWorkers)
		if !confirm(cmd.OutOrStdout(), bufio.NewReader(cmd.InOrStdin()), "Continue anyway?") {
			return fmt.Errorf("aborted")
		}
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("cannot locate jobq binary to spawn workers: %w", err)
	}

	sup, err := jobq.NewSupervisor(jobq.SupervisorConfig{
		Count:      count,
		Executable: exe,
		Args:       childArgs(),
	}, newLogger())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	unstick := jobq.NewUnstickWorker(s, jobq.UnstickConfig{
		Interval:  v.GetDuration("unstick-interval"),
		OlderThan: v.GetDuration("unstick-after"),
	}, newLogger())
	if err := unstick.Start(ctx); err != nil {
		return err
	}
	defer unstick.Stop(jobq.ShutdownGrace)

	fmt.Fprintf(cmd.OutOrStdout(), "Starting %d worker(s)...\n", count)
	if err := sup.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d worker(s) running. Press Ctrl+C to stop all workers.\n", count)

	<-ctx.Done()
	fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down all workers...")
	if err := sup.Stop(jobq.ShutdownGrace); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "All workers stopped.")
	return nil
}

// childArgs forwards the bootstrap flags a re-exec'd worker process
// needs to reconstruct the same store and timing configuration as the
// supervisor that spawned it.
func childArgs() []string {
	return []string{
		"--store=" + v.GetString("store"),
		"--log-level=" + v.GetString("log-level"),
		"--poll-interval=" + v.GetDuration("poll-interval").String(),
		"--command-timeout=" + v.GetDuration("command-timeout").String(),
	}
}

func newWorkerStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop running workers gracefully",
		RunE: func(cmd *cobra.Command, args []string) error {
			// The single-host foreground model has no out-of-process
			// control channel: `worker start` already stops its
			// children on its own Ctrl+C/SIGTERM.
			fmt.Fprintln(cmd.OutOrStdout(), "Send Ctrl+C (or SIGTERM) to the running 'jobq worker start' process instead.")
			return nil
		},
	}
}

func newWorkerRunOneCmd() *cobra.Command {
	var workerID string
	cmd := &cobra.Command{
		Use:    "run-one",
		Short:  "Run a single worker process (used internally by 'worker start')",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkerRunOne(cmd, workerID)
		},
	}
	cmd.Flags().StringVar(&workerID, "worker-id", "", "unique identifier for this worker process")
	_ = cmd.MarkFlagRequired("worker-id")
	return cmd
}

func runWorkerRunOne(cmd *cobra.Command, workerID string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	log := newLogger()
	w := jobq.NewWorker(workerID, s, jobq.WorkerConfig{
		PollInterval:   v.GetDuration("poll-interval"),
		CommandTimeout: v.GetDuration("command-timeout"),
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w.Run(ctx)
	return nil
}
