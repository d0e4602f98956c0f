// Package shutdown turns termination signals into context cancellation.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"micro-otsu/internal/logger"
)

type Manager struct {
	logger logger.Logger
	mu     sync.Mutex
	done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	sigs   chan os.Signal

	stopOnce sync.Once
	stopped  chan struct{}
}

func NewManager(log logger.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		logger:  log,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Listen cancels the manager's context on the first SIGINT or SIGTERM.
func (m *Manager) Listen() {
	m.mu.Lock()
	m.sigs = make(chan os.Signal, 1)
	signal.Notify(m.sigs, os.Interrupt, syscall.SIGTERM)
	sigs := m.sigs
	m.mu.Unlock()

	m.ListenTo(sigs)
}

// ListenTo shuts down when sigs delivers a signal. The returned channel is
// closed once the listening goroutine has exited.
func (m *Manager) ListenTo(sigs <-chan os.Signal) <-chan struct{} {
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case sig := <-sigs:
			m.logger.Info("ShutdownManager", "shutdown signal received", map[string]interface{}{
				"signal": sig.String(),
			})
			m.Shutdown()
		case <-m.done:
		case <-m.stopped:
		}
	}()
	return exited
}

// Shutdown cancels the context. Later calls are no-ops.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.done:
		return
	default:
		close(m.done)
	}

	m.cancel()
	if m.sigs != nil {
		signal.Stop(m.sigs)
	}

	m.logger.Debug("ShutdownManager", "context cancelled", nil)
}

// Stop releases signal handling and ends any listener without cancelling
// in-flight work.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopped) })

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sigs != nil {
		signal.Stop(m.sigs)
		m.sigs = nil
	}
}

func (m *Manager) Context() context.Context {
	return m.ctx
}

func (m *Manager) Done() <-chan struct{} {
	return m.done
}
