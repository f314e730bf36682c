package delivery

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Timer drives Session.Tick from its own goroutine.
type Timer struct {
	session  *Session
	interval time.Duration

	stop      chan struct{}
	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
	running   atomic.Bool
}

func NewTimer(session *Session, interval time.Duration) *Timer {
	if interval <= 0 {
		interval = time.Second
	}
	return &Timer{
		session:  session,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the ticking goroutine. It exits when ctx is cancelled or
// Stop is called.
func (t *Timer) Start(ctx context.Context) {
	t.startOnce.Do(func() {
		t.running.Store(true)
		go t.run(ctx)
	})
}

func (t *Timer) run(ctx context.Context) {
	defer close(t.done)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.stop:
			return
		case <-ticker.C:
			t.session.Tick()
		}
	}
}

// Stop halts the timer and waits for the goroutine to exit. Safe to call more
// than once and before Start.
func (t *Timer) Stop() {
	t.stopOnce.Do(func() {
		close(t.stop)
	})
	if t.running.Load() {
		<-t.done
	}
}
