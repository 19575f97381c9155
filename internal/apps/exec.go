package apps

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"syscall"

	"github.com/atlanticdynamic/cartlaunch/internal/config"
	"github.com/atlanticdynamic/cartlaunch/internal/environ"
	"github.com/robbyt/go-supervisor/supervisor"
)

var _ supervisor.Runnable = (*Exec)(nil)

// ExecFunc replaces the current process image. syscall.Exec satisfies it; on success it
// never returns.
type ExecFunc func(argv0 string, argv []string, envv []string) error

func syscallExec(argv0 string, argv []string, envv []string) error {
	return syscall.Exec(argv0, argv, envv)
}

// Exec hands the process over to the target command. Nothing of the launcher survives a
// successful Run: the target inherits the pid, the configured environment, the working
// directory, and the stdio, and its exit code is the process exit code.
type Exec struct {
	command string
	args    []string
	env     map[string]string
	execFn  ExecFunc
	logger  *slog.Logger
}

func newExecFromConfig(cfg *config.App, opts ...Option) (supervisor.Runnable, error) {
	s := newSettings(opts)

	command, args, err := expandCommand(cfg)
	if err != nil {
		return nil, err
	}

	return &Exec{
		command: command,
		args:    args,
		env:     cfg.Env,
		execFn:  s.execFn,
		logger:  slog.New(s.logHandler).WithGroup("apps.Exec"),
	}, nil
}

// String implements the supervisor.Runnable interface
func (e *Exec) String() string {
	return "apps.Exec[" + e.command + "]"
}

// Run resolves the command on PATH and replaces the running process with it. It only
// returns when the handoff fails.
func (e *Exec) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := exec.LookPath(e.command)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s: %w", ErrCommandNotFound, e.command, err)
		}
		return fmt.Errorf("%w: %w", ErrStartFailed, err)
	}

	argv := append([]string{e.command}, e.args...)
	envv := environ.Merge(os.Environ(), e.env)

	e.logger.Info("Handing off to application", "path", path, "args", e.args)
	if err := e.execFn(path, argv, envv); err != nil {
		return fmt.Errorf("%w: exec %s: %w", ErrStartFailed, path, err)
	}

	// Only reachable with a replacement ExecFunc.
	return nil
}

// Stop is a no-op: once exec succeeds there is nothing left to stop.
func (e *Exec) Stop() {}
