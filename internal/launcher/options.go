package launcher

import (
	"log/slog"
	"time"

	"github.com/atlanticdynamic/cartlaunch/internal/apps"
	"github.com/atlanticdynamic/cartlaunch/internal/workdir"
)

// Option configures a Launcher.
type Option func(*Launcher)

// WithLogHandler sets the log handler used by the launcher, the supervisor, and the
// application.
func WithLogHandler(handler slog.Handler) Option {
	return func(l *Launcher) {
		if handler != nil {
			l.logHandler = handler
		}
	}
}

// WithExecutable replaces os.Executable when locating the launcher's own directory.
func WithExecutable(exe workdir.ExecutableFunc) Option {
	return func(l *Launcher) {
		if exe != nil {
			l.executable = exe
		}
	}
}

// WithAppFactory replaces apps.New.
func WithAppFactory(factory apps.Factory) Option {
	return func(l *Launcher) {
		if factory != nil {
			l.appFactory = factory
		}
	}
}

// WithAppOptions adds options passed to the application factory.
func WithAppOptions(opts ...apps.Option) Option {
	return func(l *Launcher) {
		l.appOpts = append(l.appOpts, opts...)
	}
}

// WithShutdownTimeout sets how long the application may take to return once a shutdown has
// started. The default is the app's stop timeout plus a few seconds.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(l *Launcher) {
		if timeout > 0 {
			l.shutdownTimeout = timeout
		}
	}
}
