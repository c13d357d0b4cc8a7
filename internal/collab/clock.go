package collab

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TickListener receives a tick from a Ticker. Mirrors the driver/listener
// split the kernel uses elsewhere: subsystems that need periodic
// maintenance (decay sweeps, schedule gating) register rather than poll.
type TickListener interface {
	OnTick(now time.Time)
}

// RealClock implements Clock against the process's wall clock.
type RealClock struct {
	start time.Time
}

// NewRealClock creates a Clock anchored at construction time.
func NewRealClock() *RealClock {
	return &RealClock{start: time.Now()}
}

// Now returns elapsed seconds since the clock was constructed.
func (c *RealClock) Now() float64 {
	return time.Since(c.start).Seconds()
}

// Ticker drives TickListeners on a fixed interval in a background
// goroutine, started and stopped explicitly by its owner (cmd/kerneld).
type Ticker struct {
	interval  time.Duration
	listeners []TickListener
	mu        sync.RWMutex
	cancel    context.CancelFunc
	logger    *zap.Logger
}

// NewTicker creates a ticker with the given interval.
func NewTicker(interval time.Duration, logger *zap.Logger) *Ticker {
	return &Ticker{interval: interval, logger: logger}
}

// AddListener registers a tick listener.
func (t *Ticker) AddListener(l TickListener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, l)
}

// Start begins the tick loop in a background goroutine.
func (t *Ticker) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	go t.loop(ctx)
	t.logger.Info("ticker started", zap.Duration("interval", t.interval))
}

// Stop halts the tick loop.
func (t *Ticker) Stop() {
	if t.cancel != nil {
		t.cancel()
		t.logger.Info("ticker stopped")
	}
}

func (t *Ticker) loop(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			t.fire(now)
		}
	}
}

func (t *Ticker) fire(now time.Time) {
	t.mu.RLock()
	listeners := make([]TickListener, len(t.listeners))
	copy(listeners, t.listeners)
	t.mu.RUnlock()

	for _, l := range listeners {
		l.OnTick(now)
	}
}
