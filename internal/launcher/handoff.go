package launcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robbyt/go-supervisor/supervisor"
)

var _ supervisor.Runnable = (*handoff)(nil)

// handoff wraps the application for the supervisor. It keeps the application's own error
// and stops the supervisor when the application returns, so a finished app ends the launch.
type handoff struct {
	app    supervisor.Runnable
	cancel context.CancelFunc

	mutex   sync.Mutex
	err     error
	started chan struct{}
	done    chan struct{}
	once    sync.Once
}

func newHandoff(app supervisor.Runnable, cancel context.CancelFunc) *handoff {
	return &handoff{
		app:     app,
		cancel:  cancel,
		started: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (h *handoff) String() string {
	return h.app.String()
}

func (h *handoff) Run(ctx context.Context) error {
	h.once.Do(func() { close(h.started) })

	err := h.app.Run(ctx)

	h.mutex.Lock()
	h.err = err
	h.mutex.Unlock()
	close(h.done)

	h.cancel()
	return err
}

func (h *handoff) Stop() {
	h.app.Stop()
}

// wait blocks until the application returns, provided it was ever started, for at most
// timeout. finished is false when the supervisor never ran it.
func (h *handoff) wait(timeout time.Duration) (bool, error) {
	select {
	case <-h.started:
	default:
		return false, nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-h.done:
	case <-timer.C:
		return true, fmt.Errorf("%w: %s still running after %s", ErrShutdownTimeout, h.app, timeout)
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	return true, h.err
}
