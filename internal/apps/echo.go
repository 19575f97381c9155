package apps

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/atlanticdynamic/cartlaunch/internal/config"
	"github.com/atlanticdynamic/cartlaunch/internal/hostguard"
	"github.com/robbyt/go-supervisor/runnables/httpserver"
	"github.com/robbyt/go-supervisor/supervisor"
)

var _ supervisor.Runnable = (*Echo)(nil)

const echoDrainTimeout = 5 * time.Second

// Echo is an in-process HTTP entry point that answers every request with a fixed body. The
// host guard sits in front of it, so it behaves the way the downstream server would under
// the configured STARLETTE_ALLOWED_HOSTS value. It is used to smoke-test a deployment.
type Echo struct {
	listen   string
	response string
	guard    *hostguard.Guard
	runner   *httpserver.Runner
	logger   *slog.Logger
}

func newEchoFromConfig(cfg *config.App, opts ...Option) (supervisor.Runnable, error) {
	s := newSettings(opts)

	// only an absent list falls back to the default; an empty one is rejected by hostguard
	allowed := s.allowedHosts
	if !s.hostsSet {
		allowed = config.Default().AllowedHosts
	}

	guard, err := hostguard.New(allowed, hostguard.WithLogHandler(s.logHandler))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStartFailed, err)
	}

	return NewEcho(cfg.Listen, cfg.Response, guard, s.logHandler)
}

// NewEcho creates an Echo listening on listen behind guard.
func NewEcho(listen, response string, guard *hostguard.Guard, handler slog.Handler) (*Echo, error) {
	if handler == nil {
		handler = slog.Default().Handler()
	}

	e := &Echo{
		listen:   listen,
		response: response,
		guard:    guard,
		logger:   slog.New(handler).WithGroup("apps.Echo"),
	}

	route, err := httpserver.NewRouteFromHandlerFunc(
		"echo",
		"/",
		e.ServeHTTP,
		accessLog(e.logger.WithGroup("http")),
		guard.Middleware(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create echo route: %w", err)
	}
	routes := []httpserver.Route{*route}

	configCallback := func() (*httpserver.Config, error) {
		cfg, err := httpserver.NewConfig(e.listen, routes, httpserver.WithDrainTimeout(echoDrainTimeout))
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP server config: %w", err)
		}
		return cfg, nil
	}

	runner, err := httpserver.NewRunner(httpserver.WithConfigCallback(configCallback))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP server runner: %w", err)
	}
	e.runner = runner

	return e, nil
}

// String implements the supervisor.Runnable interface
func (e *Echo) String() string {
	return "apps.Echo[" + e.listen + "]"
}

// Run serves HTTP until ctx is canceled or Stop is called.
func (e *Echo) Run(ctx context.Context) error {
	e.logger.Info("Starting echo server", "address", e.listen, "allowAllHosts", e.guard.AllowsAll())
	return e.runner.Run(ctx)
}

// Stop shuts the HTTP server down.
func (e *Echo) Stop() {
	e.logger.Info("Stopping echo server", "address", e.listen)
	e.runner.Stop()
}

// ServeHTTP writes the configured response.
func (e *Echo) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte(e.response)); err != nil {
		e.logger.Error("Failed to write response", "error", err)
	}
}
