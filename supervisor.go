package jobq

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"go.uber.org/multierr"

	"github.com/arvindsundar/jobq/internal"
)

// MaxRecommendedWorkers is the worker count above which callers should
// confirm with the operator before proceeding; Supervisor itself does
// not prompt, since that is a CLI concern.
const MaxRecommendedWorkers = 10

// ShutdownGrace is how long Supervisor waits for a child worker
// process to exit after SIGTERM before force-killing it.
const ShutdownGrace = 5 * time.Second

// SupervisorConfig configures the worker processes a Supervisor spawns.
type SupervisorConfig struct {
	// Count is the number of worker processes to spawn. Must be >= 1.
	Count int
	// Executable is the path to the jobq binary to re-exec for each
	// worker (the CLI passes the result of os.Executable).
	Executable string
	// Args are additional arguments appended after the fixed
	// "worker run-one --worker-id=<id>" arguments, typically carrying
	// --store and other flags the child process needs to reconstruct
	// its configuration.
	Args []string
}

// Supervisor spawns a fixed number of worker child processes, one OS
// process per worker, forwards shutdown signals to them, and reaps
// them within a grace period. Each child is the same compiled binary
// re-executed as `jobq worker run-one`.
type Supervisor struct {
	lcBase
	cfg SupervisorConfig
	log *slog.Logger

	wg     sync.WaitGroup
	cmds   []*exec.Cmd
	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewSupervisor creates a Supervisor. cfg.Count must be >= 1.
func NewSupervisor(cfg SupervisorConfig, log *slog.Logger) (*Supervisor, error) {
	if cfg.Count < 1 {
		return nil, fmt.Errorf("jobq: worker count must be at least 1, got %d", cfg.Count)
	}
	return &Supervisor{cfg: cfg, log: log}, nil
}

// Start spawns cfg.Count worker child processes. Start returns
// ErrDoubleStarted if already running.
func (s *Supervisor) Start(ctx context.Context) error {
	if err := s.tryStart(); err != nil {
		return err
	}
	ctx, s.cancel = context.WithCancel(ctx)

	for i := 1; i <= s.cfg.Count; i++ {
		id := fmt.Sprintf("worker-%d", i)
		cmd, err := s.spawn(id)
		if err != nil {
			s.log.Error("failed to start worker", "worker_id", id, "err", err)
			continue
		}
		s.mu.Lock()
		s.cmds = append(s.cmds, cmd)
		s.mu.Unlock()
		s.log.Info("worker started", "worker_id", id, "pid", cmd.Process.Pid)

		s.wg.Add(1)
		go s.wait(ctx, id, cmd)
	}
	return nil
}

func (s *Supervisor) spawn(id string) (*exec.Cmd, error) {
	args := append([]string{"worker", "run-one", "--worker-id=" + id}, s.cfg.Args...)
	cmd := exec.Command(s.cfg.Executable, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd, nil
}

func (s *Supervisor) wait(ctx context.Context, id string, cmd *exec.Cmd) {
	defer s.wg.Done()
	err := cmd.Wait()
	if err != nil && ctx.Err() == nil {
		s.log.Error("worker exited unexpectedly", "worker_id", id, "err", err)
	} else {
		s.log.Info("worker stopped", "worker_id", id)
	}
}

// Stop sends SIGTERM to every running worker process, waits up to
// ShutdownGrace for each to exit, then force-kills any stragglers.
// Errors reaping individual workers are joined with multierr rather
// than discarding all but the first.
func (s *Supervisor) Stop(timeout time.Duration) error {
	return s.tryStop(timeout, func() internal.DoneChan {
		s.cancel()
		s.terminate()
		return internal.WrapWaitGroup(&s.wg)
	})
}

func (s *Supervisor) terminate() {
	s.mu.Lock()
	cmds := append([]*exec.Cmd(nil), s.cmds...)
	s.mu.Unlock()

	var errs error
	for _, cmd := range cmds {
		if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("signal worker pid %d: %w", cmd.Process.Pid, err))
		}
	}
	if errs != nil {
		s.log.Warn("errors signaling workers", "err", errs)
	}

	done := internal.WrapWaitGroup(&s.wg)
	select {
	case <-done:
		return
	case <-time.After(ShutdownGrace):
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var killErrs error
	for _, cmd := range s.cmds {
		if cmd.ProcessState != nil {
			continue
		}
		if err := cmd.Process.Kill(); err != nil {
			killErrs = multierr.Append(killErrs, fmt.Errorf("kill worker pid %d: %w", cmd.Process.Pid, err))
		}
	}
	if killErrs != nil {
		s.log.Error("errors force-killing workers", "err", killErrs)
	}
}
