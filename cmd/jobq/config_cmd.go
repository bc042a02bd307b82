package main

import (
	"bufio"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arvindsundar/jobq/store"
)

var recognizedConfigKeys = map[string]bool{
	store.ConfigMaxRetries:          true,
	store.ConfigBackoffBase:         true,
	store.ConfigBackoffInitialDelay: true,
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Get or set queue configuration",
	}
	cmd.AddCommand(newConfigSetCmd(), newConfigGetCmd(), newConfigListCmd())
	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd, args[0], args[1])
		},
	}
}

func runConfigSet(cmd *cobra.Command, key, value string) error {
	out := cmd.OutOrStdout()
	if !recognizedConfigKeys[key] {
		fmt.Fprintf(out, "Warning: %q is not a recognized configuration key and will not affect retry behavior.\n", key)
		if !confirm(out, bufio.NewReader(cmd.InOrStdin()), "Store it anyway?") {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.SetConfig(context.Background(), key, value); err != nil {
		return fmt.Errorf("failed to set config: %w", err)
	}
	fmt.Fprintf(out, "%s = %s\n", key, value)
	return nil
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd, args[0])
		},
	}
}

func runConfigGet(cmd *cobra.Command, key string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	value, err := s.GetConfig(context.Background(), key, defaultFor(key))
	if err != nil {
		return fmt.Errorf("failed to get config: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func defaultFor(key string) string {
	switch key {
	case store.ConfigMaxRetries:
		return store.DefaultMaxRetries
	case store.ConfigBackoffBase:
		return store.DefaultBackoffBase
	case store.ConfigBackoffInitialDelay:
		return store.DefaultBackoffInitialDelay
	default:
		return ""
	}
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all stored configuration key/value pairs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(cmd)
		},
	}
}

func runConfigList(cmd *cobra.Command) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	all, err := s.ListConfig(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list config: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(all) == 0 {
		fmt.Fprintln(out, "No configuration set.")
		return nil
	}
	for key, value := range all {
		fmt.Fprintf(out, "%s = %s\n", key, value)
	}
	return nil
}
