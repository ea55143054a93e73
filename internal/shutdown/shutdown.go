package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/iwatkot/maps4fs-launcher/internal/logging"
)

// Manager handles graceful teardown of the launcher: the admin server and
// the managed service processes, in reverse registration order.
type Manager struct {
	shutdownFuncs []func(context.Context) error
	mu            sync.Mutex
	timeout       time.Duration
	doneChan      chan struct{}
	once          sync.Once
	log           *logging.Logger
}

// New creates a new shutdown manager
func New(timeout time.Duration, log *logging.Logger) *Manager {
	return &Manager{
		shutdownFuncs: make([]func(context.Context) error, 0),
		timeout:       timeout,
		doneChan:      make(chan struct{}),
		log:           log,
	}
}

// Register adds a shutdown function
// Functions are called in reverse order (LIFO)
func (m *Manager) Register(fn func(context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdownFuncs = append(m.shutdownFuncs, fn)
}

// Notify returns a channel that receives SIGTERM/SIGINT. The container
// runtime delivers SIGTERM on `docker stop`.
func Notify() <-chan os.Signal {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	return sigChan
}

// Done returns a channel that is closed when shutdown has been initiated
func (m *Manager) Done() <-chan struct{} {
	return m.doneChan
}

// Shutdown executes all registered shutdown functions in LIFO order,
// bounded by the manager's timeout. Safe to call more than once; only the
// first call runs the functions.
func (m *Manager) Shutdown() {
	m.once.Do(func() {
		close(m.doneChan)

		m.mu.Lock()
		defer m.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()

		for i := len(m.shutdownFuncs) - 1; i >= 0; i-- {
			if err := m.shutdownFuncs[i](ctx); err != nil {
				m.log.Error("Shutdown step failed", map[string]interface{}{
					"step":  i,
					"error": err.Error(),
				})
			}
		}
	})
}
