package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative operations",
	}
	cmd.AddCommand(newAdminUnstickCmd())
	return cmd
}

func newAdminUnstickCmd() *cobra.Command {
	var olderThan string
	cmd := &cobra.Command{
		Use:   "unstick",
		Short: "Return stale processing jobs to pending",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdminUnstick(cmd, olderThan)
		},
	}
	cmd.Flags().StringVar(&olderThan, "older-than", "5m", "reclaim jobs processing for longer than this duration")
	return cmd
}

func runAdminUnstick(cmd *cobra.Command, olderThanStr string) error {
	d, err := time.ParseDuration(olderThanStr)
	if err != nil {
		return fmt.Errorf("invalid --older-than value %q: %w", olderThanStr, err)
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := s.Unstick(context.Background(), d)
	if err != nil {
		return fmt.Errorf("unstick failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Reclaimed %d stale job(s).\n", n)
	return nil
}
