package jobq

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/arvindsundar/jobq/internal"
	"github.com/arvindsundar/jobq/job"
	"github.com/arvindsundar/jobq/store"
)

// CommandTimeout bounds how long a single job's command may run before
// it is killed and treated as a failed attempt.
const CommandTimeout = 300 * time.Second

// PollInterval is how long a Worker sleeps after finding no eligible
// job before it checks the store again.
const PollInterval = time.Second

// WorkerConfig configures a Worker's timing. The retry policy's
// backoff-base and backoff-initial-delay are not part of it: they are
// read from the store's config table on every failure, so that `jobq
// config set` takes effect without restarting workers.
type WorkerConfig struct {
	CommandTimeout time.Duration
	PollInterval   time.Duration
}

// Worker owns one OS process's worth of job execution. It repeatedly
// claims the next eligible job from a Store, runs its command through
// a shell with a wall-clock timeout, and records the outcome.
//
// A Worker's main loop is single-threaded and sequential: it never
// claims a second job until the first has reached a terminal or
// retry-scheduled state. Concurrency, if wanted, comes from running
// more Worker processes (see Supervisor), not from dispatching inside
// one.
//
// A Worker does not guarantee exactly-once execution. If the process
// is killed mid-command, the job is left Processing until an unstick
// sweep (UnstickWorker, or `jobq admin unstick`) reclaims it.
type Worker struct {
	lcBase
	id    string
	store store.Store
	log   *slog.Logger

	commandTimeout time.Duration
	pollInterval   time.Duration

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewWorker creates a Worker identified by id, backed by s. The worker
// is not started automatically; call Start.
func NewWorker(id string, s store.Store, cfg WorkerConfig, log *slog.Logger) *Worker {
	timeout := cfg.CommandTimeout
	if timeout <= 0 {
		timeout = CommandTimeout
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = PollInterval
	}
	return &Worker{
		id:             id,
		store:          s,
		log:            log,
		commandTimeout: timeout,
		pollInterval:   interval,
	}
}

// Start begins the worker's claim/execute/transition loop in the
// background. Start returns ErrDoubleStarted if already running.
func (w *Worker) Start(ctx context.Context) error {
	if err := w.tryStart(); err != nil {
		return err
	}
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()
	return nil
}

// Stop signals the loop to exit after its current job and waits up to
// timeout for it to do so.
func (w *Worker) Stop(timeout time.Duration) error {
	return w.tryStop(timeout, func() internal.DoneChan {
		w.cancel()
		return internal.WrapWaitGroup(&w.wg)
	})
}

// Run blocks until ctx is canceled, running the loop in the calling
// goroutine. It is the entry point used by `jobq worker run-one`,
// where the worker is the whole OS process and there is nothing else
// for that process to do.
func (w *Worker) Run(ctx context.Context) {
	w.run(ctx)
}

func (w *Worker) run(ctx context.Context) {
	w.log.Info("worker started", "worker_id", w.id)
	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker stopped", "worker_id", w.id)
			return
		default:
		}

		claimed, err := w.store.ClaimNextJob(ctx, w.id, time.Now())
		if err != nil {
			w.log.Error("claim failed", "worker_id", w.id, "err", err)
			w.sleep(ctx, w.pollInterval)
			continue
		}
		if claimed == nil {
			w.sleep(ctx, w.pollInterval)
			continue
		}

		w.log.Info("job claimed", "worker_id", w.id, "job_id", claimed.Id)
		w.process(ctx, claimed)
	}
}

func (w *Worker) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (w *Worker) process(ctx context.Context, j *job.Job) {
	// A stop request must not kill the running command or prevent its
	// outcome from being recorded; the loop exits at its next iteration.
	ctx = context.WithoutCancel(ctx)
	exitCode, err := w.execute(ctx, j)
	if err != nil {
		w.log.Error("command execution error", "worker_id", w.id, "job_id", j.Id, "err", err)
	}
	w.log.Info("command finished", "worker_id", w.id, "job_id", j.Id, "exit_code", exitCode)

	if exitCode == 0 {
		w.complete(ctx, j)
		return
	}
	w.fail(ctx, j)
}

// execute runs j.Command through a shell, bounded by w.commandTimeout.
// A timed-out command reports exit code 124, matching the shell
// convention for a killed process; any other failure to even start the
// command reports exit code 1.
func (w *Worker) execute(ctx context.Context, j *job.Job) (int, error) {
	runCtx, cancel := context.WithTimeout(ctx, w.commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "sh", "-c", j.Command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if stdout.Len() > 0 {
		w.log.Debug("command stdout", "job_id", j.Id, "output", stdout.String())
	}
	if stderr.Len() > 0 {
		w.log.Debug("command stderr", "job_id", j.Id, "output", stderr.String())
	}

	if err == nil {
		return 0, nil
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return 124, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 1, err
}

func (w *Worker) complete(ctx context.Context, j *job.Job) {
	completed := job.Completed
	patch := store.ClearLock()
	patch.State = &completed
	if err := w.store.UpdateJob(ctx, j.Id, patch); err != nil {
		w.log.Error("cannot mark job completed", "job_id", j.Id, "err", err)
	}
}

func (w *Worker) fail(ctx context.Context, j *job.Job) {
	cfg := w.loadBackoffConfig(ctx)
	decision := DecideAfterFailure(j.Attempts, j.MaxRetries, time.Now(), cfg)

	patch := store.ClearLock()
	patch.Attempts = &decision.Attempts

	switch decision.Outcome {
	case Retry:
		pending := job.Pending
		patch.State = &pending
		patch.NextRetryAt = store.NullTime{Set: true, Value: &decision.NextRetryAt}
		w.log.Info("job scheduled for retry", "job_id", j.Id, "attempt", decision.Attempts, "next_retry_at", decision.NextRetryAt)
	case Dead:
		dead := job.Dead
		patch.State = &dead
		patch.NextRetryAt = store.NullTime{Set: true}
		w.log.Warn("job moved to dead letter queue", "job_id", j.Id, "attempts", decision.Attempts)
	}

	if err := w.store.UpdateJob(ctx, j.Id, patch); err != nil {
		w.log.Error("cannot record job failure", "job_id", j.Id, "err", err)
	}
}

func (w *Worker) loadBackoffConfig(ctx context.Context) BackoffConfig {
	base := w.configInt(ctx, store.ConfigBackoffBase, store.DefaultBackoffBase, 2)
	initial := w.configInt(ctx, store.ConfigBackoffInitialDelay, store.DefaultBackoffInitialDelay, 1)
	return BackoffConfig{Base: base, InitialDelay: initial}
}

func (w *Worker) configInt(ctx context.Context, key, def string, fallback int) int {
	raw, err := w.store.GetConfig(ctx, key, def)
	if err != nil {
		w.log.Error("cannot read config", "key", key, "err", err)
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		w.log.Error("invalid config value", "key", key, "value", raw, "err", err)
		return fallback
	}
	return n
}
