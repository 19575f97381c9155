// Package hostguard provides Host header validation middleware.
//
// The allow-list uses the same value format as STARLETTE_ALLOWED_HOSTS: a comma-separated
// list of host names where "*" allows every host and a "*.example.com" entry allows any
// subdomain of example.com (but not example.com itself). Ports are ignored and matching is
// case-insensitive. Requests for a host outside the list are answered with
// 421 Misdirected Request and never reach the wrapped handler.
package hostguard

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/robbyt/go-supervisor/runnables/httpserver"
)

var (
	ErrEmptyAllowList = errors.New("allowed hosts list is empty")
	ErrInvalidPattern = errors.New("invalid allowed host pattern")
)

// Guard holds a parsed allow-list.
type Guard struct {
	allowAll bool
	exact    map[string]struct{}
	suffixes []string
	logger   *slog.Logger
}

// Option configures a Guard.
type Option func(*Guard)

// WithLogHandler sets the handler used to log rejected requests.
func WithLogHandler(handler slog.Handler) Option {
	return func(g *Guard) {
		g.logger = slog.New(handler).WithGroup("hostguard")
	}
}

// New parses allowedHosts and returns a Guard.
func New(allowedHosts string, opts ...Option) (*Guard, error) {
	g := &Guard{
		exact:  make(map[string]struct{}),
		logger: slog.Default().WithGroup("hostguard"),
	}
	for _, opt := range opts {
		opt(g)
	}

	count := 0
	for _, raw := range strings.Split(allowedHosts, ",") {
		entry := strings.ToLower(strings.TrimSpace(raw))
		if entry == "" {
			continue
		}
		count++

		switch {
		case entry == "*":
			g.allowAll = true
		case strings.HasPrefix(entry, "*."):
			suffix := entry[1:]
			if strings.Contains(suffix[1:], "*") || len(suffix) < 2 {
				return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, raw)
			}
			g.suffixes = append(g.suffixes, suffix)
		case strings.Contains(entry, "*"):
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, raw)
		default:
			g.exact[entry] = struct{}{}
		}
	}

	if count == 0 {
		return nil, ErrEmptyAllowList
	}
	return g, nil
}

// AllowsAll reports whether the list contains the "*" wildcard.
func (g *Guard) AllowsAll() bool {
	return g.allowAll
}

// Allowed reports whether the Host header value hostport passes the allow-list.
func (g *Guard) Allowed(hostport string) bool {
	if g.allowAll {
		return true
	}

	host := strings.ToLower(stripPort(hostport))
	if host == "" {
		return false
	}

	if _, ok := g.exact[host]; ok {
		return true
	}
	for _, suffix := range g.suffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}

// Middleware returns the go-supervisor middleware function. A rejected request aborts the
// chain, so the remaining handlers never run.
func (g *Guard) Middleware() httpserver.HandlerFunc {
	return func(rp *httpserver.RequestProcessor) {
		r := rp.Request()
		if g.Allowed(r.Host) {
			rp.Next()
			return
		}

		g.logger.Warn("Rejected request for disallowed host", "host", r.Host, "path", r.URL.Path)
		http.Error(rp.Writer(), "Invalid host header", http.StatusMisdirectedRequest)
		rp.Abort()
	}
}

// stripPort removes an optional port, handling bracketed IPv6 literals.
func stripPort(hostport string) string {
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		return host
	}
	return strings.TrimSuffix(strings.TrimPrefix(hostport, "["), "]")
}
