package jobq

import (
	"context"
	"log/slog"
	"time"

	"github.com/arvindsundar/jobq/internal"
	"github.com/arvindsundar/jobq/store"
)

// UnstickConfig configures an UnstickWorker's sweep schedule and
// staleness threshold.
type UnstickConfig struct {
	// Interval is how often the sweep runs.
	Interval time.Duration
	// OlderThan is how long a job may remain Processing with no
	// recorded outcome before it is considered abandoned.
	OlderThan time.Duration
}

// UnstickWorker periodically reclaims jobs left Processing by a worker
// that crashed before recording an outcome, so an operator does not
// have to invoke `jobq admin unstick` manually after every crash.
//
// UnstickWorker does not participate in job execution and runs
// independently of any Worker's claim loop.
//
// Like Worker, it has a strict lifecycle: Start returns
// ErrDoubleStarted while it is already running, and Stop waits for the
// in-flight sweep to finish or the timeout to expire.
type UnstickWorker struct {
	lcBase
	store     store.Store
	task      internal.TimerTask
	log       *slog.Logger
	interval  time.Duration
	olderThan time.Duration
}

// NewUnstickWorker creates an UnstickWorker backed by s.
func NewUnstickWorker(s store.Store, cfg UnstickConfig, log *slog.Logger) *UnstickWorker {
	return &UnstickWorker{
		store:     s,
		log:       log,
		interval:  cfg.Interval,
		olderThan: cfg.OlderThan,
	}
}

func (u *UnstickWorker) sweep(ctx context.Context) {
	n, err := u.store.Unstick(ctx, u.olderThan)
	if err != nil {
		u.log.Error("unstick sweep failed", "err", err)
		return
	}
	if n > 0 {
		u.log.Info("unstick sweep reclaimed jobs", "count", n)
	}
}

// Start begins periodic sweeping in the background.
func (u *UnstickWorker) Start(ctx context.Context) error {
	if err := u.tryStart(); err != nil {
		return err
	}
	u.task.Start(ctx, u.sweep, u.interval)
	return nil
}

// Stop terminates the background sweep, waiting up to timeout.
func (u *UnstickWorker) Stop(timeout time.Duration) error {
	return u.tryStop(timeout, u.task.Stop)
}
