package apps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/atlanticdynamic/cartlaunch/internal/config"
	"github.com/atlanticdynamic/cartlaunch/internal/environ"
	"github.com/robbyt/go-fsm/v2"
	"github.com/robbyt/go-fsm/v2/transitions"
	"github.com/robbyt/go-supervisor/supervisor"
)

var (
	_ supervisor.Runnable = (*Process)(nil)
	_ ExitCoder           = (*Process)(nil)
)

// sigtermExitCode is what a child reports when the SIGTERM sent by Stop kills it.
const sigtermExitCode = 128 + int(syscall.SIGTERM)

// Process runs the target command as a child process and waits for it. Stop sends SIGTERM
// and escalates to SIGKILL after the stop timeout.
type Process struct {
	command     string
	args        []string
	env         map[string]string
	stopTimeout time.Duration

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger

	fsm      *fsm.Machine
	mutex    sync.Mutex
	cancel   context.CancelFunc
	exitCode atomic.Int64
}

func newProcessFromConfig(cfg *config.App, opts ...Option) (supervisor.Runnable, error) {
	s := newSettings(opts)

	command, args, err := expandCommand(cfg)
	if err != nil {
		return nil, err
	}

	p := &Process{
		command:     command,
		args:        args,
		env:         cfg.Env,
		stopTimeout: cfg.StopTimeout.AsDuration(),
		stdin:       s.stdin,
		stdout:      s.stdout,
		stderr:      s.stderr,
		logger:      slog.New(s.logHandler).WithGroup("apps.Process"),
	}
	p.exitCode.Store(-1)

	machine, err := fsm.New(
		transitions.StatusNew,
		transitions.Typical,
		fsm.WithLogHandler(p.logger.WithGroup("fsm").Handler()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create state machine: %w", err)
	}
	p.fsm = machine

	return p, nil
}

// String implements the supervisor.Runnable interface
func (p *Process) String() string {
	return "apps.Process[" + p.command + "]"
}

// GetState returns the lifecycle state of the child process.
func (p *Process) GetState() string {
	return p.fsm.GetState()
}

// IsRunning reports whether the child has been started and has not yet exited.
func (p *Process) IsRunning() bool {
	return p.fsm.GetState() == transitions.StatusRunning
}

// ExitCode returns the child's exit code, or -1 while it has not exited. A child killed by
// a signal reports 128+signal, matching shell conventions.
func (p *Process) ExitCode() int {
	return int(p.exitCode.Load())
}

// Run starts the child and blocks until it exits. A non-zero exit yields an *ExitError,
// including one that follows Stop. The only exception is a child terminated by the SIGTERM
// that Stop sent, which counts as a clean stop.
func (p *Process) Run(ctx context.Context) error {
	// a finished process may be started again
	_ = p.fsm.TransitionIfCurrentState(transitions.StatusStopped, transitions.StatusNew)
	if err := p.fsm.TransitionIfCurrentState(transitions.StatusNew, transitions.StatusBooting); err != nil {
		return fmt.Errorf("%w: state is %s", ErrAlreadyRunning, p.fsm.GetState())
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	p.mutex.Lock()
	p.cancel = cancel
	p.mutex.Unlock()

	cmd := exec.CommandContext(runCtx, p.command, p.args...)
	cmd.Env = environ.Merge(os.Environ(), p.env)
	cmd.Stdin = p.stdin
	cmd.Stdout = p.stdout
	cmd.Stderr = p.stderr
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = p.stopTimeout

	if err := cmd.Start(); err != nil {
		if runCtx.Err() != nil {
			p.logger.Debug("Application stopped before start")
			p.setState(transitions.StatusError, transitions.StatusStopped)
			return nil
		}
		p.setState(transitions.StatusError)
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s: %w", ErrCommandNotFound, p.command, err)
		}
		return fmt.Errorf("%w: %w", ErrStartFailed, err)
	}
	p.setState(transitions.StatusRunning)
	p.logger.Info("Started application", "pid", cmd.Process.Pid, "command", p.command, "args", p.args)

	waitErr := cmd.Wait()
	code := exitCodeOf(cmd.ProcessState)
	p.exitCode.Store(int64(code))
	stopped := runCtx.Err() != nil

	if p.fsm.GetState() != transitions.StatusStopping {
		p.setState(transitions.StatusStopping)
	}
	p.setState(transitions.StatusStopped)

	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
		p.logger.Info("Application exited", "exitCode", code)
		return nil
	case stopped && code == sigtermExitCode:
		p.logger.Info("Application stopped", "exitCode", code)
		return nil
	case errors.As(waitErr, &exitErr):
		p.logger.Warn("Application exited with error", "exitCode", code, "stopped", stopped)
		return &ExitError{Code: code}
	default:
		return fmt.Errorf("failed waiting for application: %w", waitErr)
	}
}

// Stop asks the child to terminate. It is safe to call before Run and more than once.
func (p *Process) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.cancel == nil {
		return
	}
	p.logger.Debug("Stopping application")
	_ = p.fsm.TransitionIfCurrentState(transitions.StatusRunning, transitions.StatusStopping)
	p.cancel()
}

// setState walks the state machine through states, logging any rejected transition.
func (p *Process) setState(states ...string) {
	for _, state := range states {
		if err := p.fsm.Transition(state); err != nil {
			p.logger.Error("Failed to transition state", "state", state, "error", err)
		}
	}
}

func exitCodeOf(state *os.ProcessState) int {
	if state == nil {
		return -1
	}
	if status, ok := state.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal())
	}
	return state.ExitCode()
}
