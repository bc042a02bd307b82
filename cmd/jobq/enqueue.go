package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arvindsundar/jobq/job"
	"github.com/arvindsundar/jobq/store"
)

type enqueuePayload struct {
	Id         *string `json:"id"`
	Command    string  `json:"command"`
	Priority   *string `json:"priority"`
	MaxRetries *uint32 `json:"max_retries"`
}

const enqueueExample = `Example of valid JSON:
  {"command": "echo hello"}`

func newEnqueueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enqueue <json>",
		Short: "Add a new job to the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnqueue(cmd, args[0])
		},
	}
}

func runEnqueue(cmd *cobra.Command, raw string) error {
	var payload enqueuePayload
	dec := json.NewDecoder(strings.NewReader(raw))
	if err := dec.Decode(&payload); err != nil {
		return fmt.Errorf("invalid JSON: %w\n\n%s", err, enqueueExample)
	}

	if strings.TrimSpace(payload.Command) == "" {
		return fmt.Errorf("field 'command' is required and must be non-empty\n\n%s", enqueueExample)
	}
	if payload.Id != nil && strings.TrimSpace(*payload.Id) == "" {
		return fmt.Errorf("field 'id' cannot be empty; omit it to auto-generate one")
	}

	priority := job.Medium
	if payload.Priority != nil {
		parsed, err := job.ParsePriority(strings.ToLower(strings.TrimSpace(*payload.Priority)))
		if err != nil {
			return fmt.Errorf("invalid priority %q: must be one of high, medium, low", *payload.Priority)
		}
		priority = parsed
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	var maxRetries uint32
	if payload.MaxRetries != nil {
		maxRetries = *payload.MaxRetries
	} else {
		raw, err := s.GetConfig(ctx, store.ConfigMaxRetries, store.DefaultMaxRetries)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid %s config value %q: %w", store.ConfigMaxRetries, raw, err)
		}
		maxRetries = uint32(n)
	}

	j := job.New(payload.Command, priority, maxRetries)
	if payload.Id != nil {
		j.Id = strings.TrimSpace(*payload.Id)
	}

	if err := s.CreateJob(ctx, j); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Job successfully enqueued!")
	fmt.Fprintln(cmd.OutOrStdout(), "  Job ID:", j.Id)
	fmt.Fprintln(cmd.OutOrStdout(), "  Priority:", j.Priority)
	fmt.Fprintln(cmd.OutOrStdout(), "  State:", j.State)
	fmt.Fprintln(cmd.OutOrStdout(), "  Max Retries:", j.MaxRetries)
	return nil
}
