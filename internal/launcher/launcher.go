// Package launcher implements the bootstrap sequence: configure the process environment,
// make the launcher's directory the working directory, then hand off to the application.
// The sequence is linear and one-shot. Nothing it changes is rolled back when a later step
// fails.
package launcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/atlanticdynamic/cartlaunch/internal/apps"
	"github.com/atlanticdynamic/cartlaunch/internal/config"
	"github.com/atlanticdynamic/cartlaunch/internal/environ"
	"github.com/atlanticdynamic/cartlaunch/internal/workdir"
	"github.com/robbyt/go-supervisor/supervisor"
)

// shutdownGrace is added to the application's stop timeout to get the launcher's shutdown
// timeout.
const shutdownGrace = 5 * time.Second

// Launcher runs the bootstrap sequence for one configuration.
type Launcher struct {
	cfg        *config.Config
	logHandler slog.Handler
	executable workdir.ExecutableFunc
	appFactory apps.Factory
	appOpts    []apps.Option

	// shutdownTimeout bounds how long a stopping application may take to return.
	shutdownTimeout time.Duration

	launched atomic.Bool
	record   atomic.Pointer[Record]
	logger   *slog.Logger
}

// New creates a Launcher for cfg. The config is validated here so that a bad config fails
// before anything in the process is touched.
func New(cfg *config.Config, opts ...Option) (*Launcher, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	l := &Launcher{
		cfg:        cfg.Clone(),
		logHandler: slog.Default().Handler(),
		executable: os.Executable,
		appFactory: apps.New,

		shutdownTimeout: cfg.App.StopTimeout.AsDuration() + shutdownGrace,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = slog.New(l.logHandler).WithGroup("launcher")
	return l, nil
}

// Record returns the record of the current launch, or nil before Launch is called.
func (l *Launcher) Record() *Record {
	return l.record.Load()
}

// ResolveWorkingDirectory returns the absolute directory the application will run in: the
// configured WorkDir, resolved against the launcher's own directory when relative.
func (l *Launcher) ResolveWorkingDirectory() (string, error) {
	base, err := workdir.LauncherDir(l.executable)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrWorkDir, err)
	}

	dir, err := workdir.Resolve(base, l.cfg.WorkDir)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrWorkDir, err)
	}
	return dir, nil
}

// ConfigureEnvironment applies the dotenv file (if configured) and then the environment
// defaults, STARLETTE_ALLOWED_HOSTS among them. Every value is set only if absent. A relative
// dotenv path is resolved against dir. It returns the keys that were set.
func (l *Launcher) ConfigureEnvironment(dir string) ([]string, error) {
	var applied []string

	if l.cfg.Env.File != "" {
		path := l.cfg.Env.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		keys, err := environ.LoadDotEnv(path)
		applied = append(applied, keys...)
		if err != nil {
			return applied, fmt.Errorf("%w: %w", ErrConfigureEnv, err)
		}
		l.logger.Debug("Loaded dotenv file", "path", path, "applied", keys)
	}

	keys, err := environ.ApplyDefaults(l.cfg.EnvDefaults())
	applied = append(applied, keys...)
	if err != nil {
		return applied, fmt.Errorf("%w: %w", ErrConfigureEnv, err)
	}

	l.logger.Debug("Environment configured",
		"applied", applied,
		environ.AllowedHostsKey, os.Getenv(environ.AllowedHostsKey))
	return applied, nil
}

// EstablishWorkingDirectory makes dir the process working directory. The previous directory
// is not restored.
func (l *Launcher) EstablishWorkingDirectory(dir string) error {
	previous, err := workdir.Enter(dir)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWorkDir, err)
	}
	l.logger.Debug("Working directory established", "dir", dir, "previous", previous)
	return nil
}

// LaunchApplication builds the configured application and runs it until it returns. The
// application must be built here, after the environment is configured, because its command
// line may reference environment variables.
func (l *Launcher) LaunchApplication(ctx context.Context) error {
	app, err := l.appFactory(&l.cfg.App, l.appOptions()...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLaunch, err)
	}
	if r := l.Record(); r != nil {
		r.setApp(app.String())
	}

	if err := l.run(ctx, app); err != nil {
		return fmt.Errorf("%w: %w", ErrLaunch, err)
	}
	return nil
}

// Launch runs the whole sequence once: resolve the working directory, configure the
// environment, enter the directory, run the application. Errors from the application are
// returned wrapped with ErrLaunch; an *apps.ExitError inside carries its exit code.
func (l *Launcher) Launch(ctx context.Context) error {
	if !l.launched.CompareAndSwap(false, true) {
		return ErrAlreadyLaunched
	}

	record := newRecord(l.logHandler)
	l.record.Store(record)
	logger := record.logger.WithGroup("launcher")
	logger.Info("Launch started", "app", l.cfg.App.Type)

	dir, err := l.ResolveWorkingDirectory()
	if err != nil {
		logger.Error("Failed to resolve working directory", "error", err)
		return err
	}

	applied, err := l.ConfigureEnvironment(dir)
	record.addAppliedEnv(applied...)
	if err != nil {
		logger.Error("Failed to configure environment", "error", err)
		return err
	}
	logger.Info("Environment configured", "applied", applied)

	if err := l.EstablishWorkingDirectory(dir); err != nil {
		logger.Error("Failed to enter working directory", "dir", dir, "error", err)
		return err
	}
	record.setDir(dir)
	logger.Info("Working directory established", "dir", dir)

	if err := l.LaunchApplication(ctx); err != nil {
		logger.Error("Application failed", "app", record.App(), "error", err, "duration", record.Duration())
		return err
	}

	logger.Info("Application finished", "app", record.App(), "duration", record.Duration())
	return nil
}

func (l *Launcher) appOptions() []apps.Option {
	opts := make([]apps.Option, 0, len(l.appOpts)+1)
	opts = append(opts, apps.WithLogHandler(l.logHandler))
	return append(opts, l.appOpts...)
}

// run starts app under a supervisor, which handles SIGINT/SIGTERM by calling Stop. The
// supervisor is shut down as soon as the application returns.
func (l *Launcher) run(ctx context.Context, app supervisor.Runnable) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	h := newHandoff(app, cancel)

	super, err := supervisor.New(
		supervisor.WithContext(runCtx),
		supervisor.WithLogHandler(l.logHandler),
		supervisor.WithRunnables(h),
		supervisor.WithShutdownTimeout(l.shutdownTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create supervisor: %w", err)
	}

	l.logger.Info("Starting application", "app", app.String())
	superErr := super.Run()

	if finished, appErr := h.wait(l.shutdownTimeout); finished {
		return appErr
	}
	return superErr
}
