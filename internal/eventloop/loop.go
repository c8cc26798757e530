// Package eventloop runs callbacks one at a time on a single goroutine, the way
// a page dispatches DOM events, timers and network completions.
package eventloop

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrStopped is returned by Do once the loop has exited.
var ErrStopped = errors.New("event loop stopped")

// Scheduler is the part of the loop that components depend on.
type Scheduler interface {
	Post(fn func()) bool
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Loop is a single-threaded dispatcher. Callbacks never overlap.
type Loop struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once
}

// New creates a loop whose queue holds up to buffer pending callbacks.
func New(buffer int) *Loop {
	return &Loop{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Run dispatches callbacks until the context is cancelled.
func (l *Loop) Run(ctx context.Context) {
	defer l.once.Do(func() { close(l.done) })

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Post queues fn. It returns false if the loop has already stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}

	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do queues fn and waits until it has run.
func (l *Loop) Do(fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrStopped
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// AfterFunc runs fn on the loop once d has elapsed. Stopping the timer before it
// fires, or before the queued callback runs, cancels it.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &timer{}
	t.inner = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.claim() {
				fn()
			}
		})
	})

	return t
}

type timer struct {
	inner *time.Timer
	mu    sync.Mutex
	state int // 0 pending, 1 fired, 2 stopped
}

func (t *timer) claim() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != 0 {
		return false
	}
	t.state = 1

	return true
}

func (t *timer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inner.Stop()
	if t.state != 0 {
		return false
	}
	t.state = 2

	return true
}
