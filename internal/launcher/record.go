package launcher

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/robbyt/go-loglater"
)

// Record tracks a single launch: what was applied to the process before the handoff, and the
// log history of every step so it can be replayed after the fact.
type Record struct {
	ID        uuid.UUID
	CreatedAt time.Time

	logger       *slog.Logger
	logCollector *loglater.LogCollector

	mutex      sync.Mutex
	dir        string
	appliedEnv []string
	app        string
}

func newRecord(handler slog.Handler) *Record {
	id := uuid.Must(uuid.NewV6())

	logCollector := loglater.NewLogCollector(handler)
	logger := slog.New(logCollector).With("launchID", id)

	r := &Record{
		ID:           id,
		CreatedAt:    time.Now(),
		logger:       logger,
		logCollector: logCollector,
	}
	r.logger.Debug("Launch record created")
	return r
}

func (r *Record) setDir(dir string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.dir = dir
}

func (r *Record) addAppliedEnv(keys ...string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.appliedEnv = append(r.appliedEnv, keys...)
}

func (r *Record) setApp(name string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.app = name
}

// Dir returns the working directory the launch entered, or "" if it never got that far.
func (r *Record) Dir() string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.dir
}

// AppliedEnv returns the environment keys this launch set. Keys the caller had already set
// are not included.
func (r *Record) AppliedEnv() []string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return slices.Clone(r.appliedEnv)
}

// App returns the name of the application that was started.
func (r *Record) App() string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.app
}

// Duration returns the time since the launch began.
func (r *Record) Duration() time.Duration {
	return time.Since(r.CreatedAt)
}

// PlaybackLogs replays the launch log history to handler.
func (r *Record) PlaybackLogs(handler slog.Handler) error {
	return r.logCollector.PlayLogs(handler)
}
