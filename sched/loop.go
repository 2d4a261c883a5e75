package sched

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrLoopClosed  = errors.New("sched: loop closed")
	ErrLoopRunning = errors.New("sched: loop already running")
)

// Loop is a single-goroutine event loop. Timer callbacks and closures posted by
// other goroutines (frontends, HTTP handlers) run one at a time, to completion.
type Loop struct {
	inbox chan func()

	stop     chan struct{}
	stopOnce sync.Once
	running  atomic.Bool
}

// NewLoop creates a loop whose inbox holds up to buffer pending closures.
func NewLoop(buffer int) *Loop {
	if buffer < 1 {
		buffer = 1
	}
	return &Loop{
		inbox: make(chan func(), buffer),
		stop:  make(chan struct{}),
	}
}

// Now returns the current time with monotonic clock reading
func (l *Loop) Now() time.Time {
	return time.Now()
}

// AfterFunc arms a runtime timer whose expiry is delivered through the inbox.
// A timer that fires after Stop lost the race is dropped by Slot's generation check.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Handle {
	return time.AfterFunc(d, func() {
		l.Post(fn)
	})
}

// Post queues fn for the loop goroutine. It must not be called from inside the
// loop while the inbox may be full. Returns false once the loop is closed.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.stop:
		return false
	default:
	}
	select {
	case l.inbox <- fn:
		return true
	case <-l.stop:
		return false
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !l.Post(func() {
		fn()
		close(done)
	}) {
		return ErrLoopClosed
	}
	select {
	case <-done:
		return nil
	case <-l.stop:
		return ErrLoopClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run dispatches posted closures until ctx is cancelled or Close is called.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer l.running.Store(false)

	for {
		select {
		case <-ctx.Done():
			l.Close()
			return ctx.Err()
		case <-l.stop:
			return nil
		case fn := <-l.inbox:
			fn()
		}
	}
}

// Close stops the loop. Pending closures are discarded.
func (l *Loop) Close() {
	l.stopOnce.Do(func() {
		close(l.stop)
	})
}
