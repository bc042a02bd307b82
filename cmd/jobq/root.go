// Command jobq is a durable, multi-worker background job queue: enqueue
// shell-command jobs, run worker processes that claim and execute them,
// and inspect or revive jobs that land in the Dead Letter Queue.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arvindsundar/jobq/store/sqlstore"
)

var v = viper.New()

func newRootCmd() *cobra.Command {
	v = viper.New()
	cmd := &cobra.Command{
		Use:           "jobq",
		Short:         "Durable multi-worker background job queue",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("store", "queue.db", "path to the SQLite job store")
	cmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	cmd.PersistentFlags().Duration("poll-interval", time.Second, "worker poll interval when no job is eligible")
	cmd.PersistentFlags().Duration("command-timeout", 300*time.Second, "wall-clock timeout applied to each job's command")
	cmd.PersistentFlags().Duration("unstick-interval", 30*time.Second, "how often the background unstick sweep runs")
	cmd.PersistentFlags().Duration("unstick-after", 5*time.Minute, "how long a job may sit processing before the unstick sweep reclaims it")

	v.SetEnvPrefix("jobq")
	v.AutomaticEnv()
	_ = v.BindPFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newEnqueueCmd(),
		newListCmd(),
		newStatusCmd(),
		newWorkerCmd(),
		newDLQCmd(),
		newConfigCmd(),
		newAdminCmd(),
	)
	return cmd
}

func newLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString("log-level"))); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func openStore() (*sqlstore.Store, error) {
	path := v.GetString("store")
	s, err := sqlstore.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open store %q: %w", path, err)
	}
	return s, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
