package ai

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

type namedController struct {
	name       string
	controller Controller
}

// TickManager ticks registered controllers at a fixed rate.
// Controllers are ticked sequentially in registration order.
type TickManager struct {
	interval time.Duration

	mu          sync.RWMutex
	controllers []namedController

	stopCh   chan struct{}
	stopOnce sync.Once

	ticks   atomic.Uint64
	overrun atomic.Uint64 // ticks that took longer than interval
}

// NewTickManager creates a tick manager running every interval.
func NewTickManager(interval time.Duration) *TickManager {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &TickManager{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Register adds controller under name, replacing any controller with that name.
func (m *TickManager) Register(name string, controller Controller) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.indexLocked(name); i >= 0 {
		m.controllers[i].controller = controller
	} else {
		m.controllers = append(m.controllers, namedController{name: name, controller: controller})
	}

	slog.Debug("tick controller registered", "name", name)
}

func (m *TickManager) indexLocked(name string) int {
	return slices.IndexFunc(m.controllers, func(c namedController) bool { return c.name == name })
}

// Start runs the tick loop (blocks until context is canceled or Stop is called).
// Stop requests are observed between ticks; a tick in progress always completes.
func (m *TickManager) Start(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	slog.Info("tick manager started", "interval", m.interval, "controllers", m.Count())

	for {
		select {
		case <-ctx.Done():
			slog.Info("tick manager stopping", "ticks", m.ticks.Load(), "overrun", m.overrun.Load())
			return ctx.Err()

		case <-m.stopCh:
			slog.Info("tick manager stopped", "ticks", m.ticks.Load(), "overrun", m.overrun.Load())
			return nil

		case <-ticker.C:
			m.tickAll()
		}
	}
}

// Stop stops the tick loop. Safe to call more than once.
func (m *TickManager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// tickAll ticks all registered controllers
func (m *TickManager) tickAll() {
	m.mu.RLock()
	controllers := slices.Clone(m.controllers)
	m.mu.RUnlock()

	start := time.Now()
	for _, c := range controllers {
		c.controller.Tick()
	}
	elapsed := time.Since(start)

	n := m.ticks.Add(1)
	if elapsed > m.interval {
		m.overrun.Add(1)
		if IsDebugEnabled() {
			slog.Debug("tick overran interval",
				"tick", n,
				"elapsed", elapsed,
				"interval", m.interval)
		}
	}
}

// Count returns number of registered controllers.
func (m *TickManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.controllers)
}

// Ticks returns how many ticks have completed.
func (m *TickManager) Ticks() uint64 {
	return m.ticks.Load()
}
