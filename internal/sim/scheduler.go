package sim

import (
	"context"
	"sync"
	"time"
)

// ManualScheduler runs frames only when told to. It drives a controller
// synchronously in tests and headless runs.
type ManualScheduler struct {
	pending []func()
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (m *ManualScheduler) RequestFrame(fn func()) {
	m.pending = append(m.pending, fn)
}

// Advance runs up to n frames and returns how many ran. A frame runs every
// callback requested before it began; callbacks requested during a frame
// wait for the next one.
func (m *ManualScheduler) Advance(n int) int {
	ran := 0
	for ; ran < n && len(m.pending) > 0; ran++ {
		batch := m.pending
		m.pending = nil
		for _, fn := range batch {
			fn()
		}
	}
	return ran
}

func (m *ManualScheduler) Pending() int { return len(m.pending) }

// TickerScheduler paces frames with a time.Ticker. Frames and posted
// commands all run on the goroutine that calls Run.
type TickerScheduler struct {
	interval time.Duration

	mu      sync.Mutex
	pending []func()
	posts   chan func()
}

// NewTickerScheduler returns a scheduler firing fps frames per second.
// Non-positive fps means 60.
func NewTickerScheduler(fps int) *TickerScheduler {
	if fps <= 0 {
		fps = 60
	}
	return &TickerScheduler{
		interval: time.Second / time.Duration(fps),
		posts:    make(chan func(), 64),
	}
}

func (t *TickerScheduler) RequestFrame(fn func()) {
	t.mu.Lock()
	t.pending = append(t.pending, fn)
	t.mu.Unlock()
}

// Post queues fn to run on the frame goroutine between frames. Use it to
// issue controller commands from other goroutines.
func (t *TickerScheduler) Post(fn func()) {
	t.posts <- fn
}

// Run fires frames until ctx is done.
func (t *TickerScheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-t.posts:
			fn()
		case <-ticker.C:
			t.frame()
		}
	}
}

func (t *TickerScheduler) frame() {
	t.mu.Lock()
	batch := t.pending
	t.pending = nil
	t.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
}
