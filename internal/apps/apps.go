// Package apps contains the application entry points the launcher hands off to. Every entry
// point is a supervisor.Runnable: the launcher starts it by calling Run directly.
package apps

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/atlanticdynamic/cartlaunch/internal/config"
	"github.com/atlanticdynamic/cartlaunch/internal/environ"
	"github.com/robbyt/go-supervisor/supervisor"
)

// ExitCoder is implemented by applications that report a process exit code.
type ExitCoder interface {
	ExitCode() int
}

// Factory builds an application from its configuration.
type Factory func(cfg *config.App, opts ...Option) (supervisor.Runnable, error)

var factories = map[config.AppType]Factory{
	config.AppTypeExec:    newExecFromConfig,
	config.AppTypeProcess: newProcessFromConfig,
	config.AppTypeEcho:    newEchoFromConfig,
}

// Types returns the registered application types in sorted order.
func Types() []config.AppType {
	types := make([]config.AppType, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// New builds the application selected by cfg.Type. Command placeholders are expanded against
// the current environment, so New must run after the environment has been configured.
func New(cfg *config.App, opts ...Option) (supervisor.Runnable, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	factory, ok := factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAppType, cfg.Type)
	}
	return factory(cfg, opts...)
}

// settings collects the Option values shared by all application types.
type settings struct {
	logHandler   slog.Handler
	stdin        io.Reader
	stdout       io.Writer
	stderr       io.Writer
	execFn       ExecFunc
	allowedHosts string
	hostsSet     bool
}

func newSettings(opts []Option) *settings {
	s := &settings{
		logHandler: slog.Default().Handler(),
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		execFn:     syscallExec,
	}
	for _, opt := range opts {
		opt(s)
	}
	if !s.hostsSet {
		s.allowedHosts, s.hostsSet = os.LookupEnv(environ.AllowedHostsKey)
	}
	return s
}

// expandCommand resolves ${VAR} placeholders in the command line.
func expandCommand(cfg *config.App) (string, []string, error) {
	command, err := environ.Expand(cfg.Command)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrExpandCommand, err)
	}
	if command == "" {
		return "", nil, ErrEmptyCommand
	}

	args, err := environ.ExpandAll(cfg.Args)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrExpandCommand, err)
	}
	return command, args, nil
}
