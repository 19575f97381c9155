package testutil

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
)

// MockApp is a supervisor.Runnable that records what the process looked like when Run was
// called: the working directory and selected environment variables.
type MockApp struct {
	Name string

	// EnvKeys are captured into SeenEnv when Run starts.
	EnvKeys []string
	// RunError is returned from Run.
	RunError error
	// Block makes Run wait for ctx cancellation or Stop before returning.
	Block bool
	// IgnoreStop makes Run wait for Release, regardless of ctx and Stop.
	IgnoreStop bool

	RunCalls  atomic.Int32
	StopCalls atomic.Int32

	mutex   sync.Mutex
	seenDir string
	seenEnv map[string]string
	started chan struct{}
	stopped chan struct{}
	release chan struct{}
	once    sync.Once
	relOnce sync.Once
}

// NewMockApp returns a MockApp that captures the given environment keys.
func NewMockApp(name string, envKeys ...string) *MockApp {
	return &MockApp{
		Name:    name,
		EnvKeys: envKeys,
		started: make(chan struct{}),
		stopped: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (m *MockApp) String() string {
	return m.Name
}

func (m *MockApp) Run(ctx context.Context) error {
	m.RunCalls.Add(1)

	dir, _ := os.Getwd()
	env := make(map[string]string, len(m.EnvKeys))
	for _, key := range m.EnvKeys {
		if value, ok := os.LookupEnv(key); ok {
			env[key] = value
		}
	}

	m.mutex.Lock()
	m.seenDir = dir
	m.seenEnv = env
	m.mutex.Unlock()
	close(m.started)

	switch {
	case m.IgnoreStop:
		<-m.release
	case m.Block:
		select {
		case <-ctx.Done():
		case <-m.stopped:
		}
	}
	return m.RunError
}

func (m *MockApp) Stop() {
	m.StopCalls.Add(1)
	m.once.Do(func() { close(m.stopped) })
}

// Release lets a Run blocked by IgnoreStop return.
func (m *MockApp) Release() {
	m.relOnce.Do(func() { close(m.release) })
}

// Started is closed once Run has captured its observations.
func (m *MockApp) Started() <-chan struct{} {
	return m.started
}

// SeenDir returns the working directory observed by Run.
func (m *MockApp) SeenDir() string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.seenDir
}

// SeenEnv returns the environment observed by Run.
func (m *MockApp) SeenEnv() map[string]string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.seenEnv
}
