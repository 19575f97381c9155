package apps

import (
	"io"
	"log/slog"
)

// Option configures an application built by New.
type Option func(*settings)

// WithLogHandler sets the log handler used by the application.
func WithLogHandler(handler slog.Handler) Option {
	return func(s *settings) {
		if handler != nil {
			s.logHandler = handler
		}
	}
}

// WithStdio replaces the standard streams handed to a child process.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(s *settings) {
		s.stdin = stdin
		s.stdout = stdout
		s.stderr = stderr
	}
}

// WithExecFunc replaces the syscall used by the exec application.
func WithExecFunc(fn ExecFunc) Option {
	return func(s *settings) {
		if fn != nil {
			s.execFn = fn
		}
	}
}

// WithAllowedHosts sets the host allow-list for HTTP applications. When unset, the current
// value of STARLETTE_ALLOWED_HOSTS is used, and an exported empty value counts as set.
func WithAllowedHosts(allowedHosts string) Option {
	return func(s *settings) {
		s.allowedHosts = allowedHosts
		s.hostsSet = true
	}
}
