package loop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

const queueSize = 256

// ErrClosed is returned when work is submitted after the loop stopped.
var ErrClosed = errors.New("loop: closed")

// Loop runs every submitted function on a single goroutine, in submission
// order. It plays the role of a UI event loop for state that must never be
// touched concurrently.
type Loop struct {
	queue chan func()

	mu      sync.RWMutex
	closed  bool
	done    chan struct{}
	started bool
}

func New() *Loop {
	return &Loop{
		queue: make(chan func(), queueSize),
		done:  make(chan struct{}),
	}
}

// Run processes work until ctx is cancelled. It must be called exactly once.
func (l *Loop) Run(ctx context.Context) {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		slog.Warn("loop: Run called twice")
		return
	}
	l.started = true
	l.mu.Unlock()

	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			l.mu.Lock()
			l.closed = true
			l.mu.Unlock()
			return
		case fn := <-l.queue:
			l.run(fn)
		}
	}
}

// Done is closed after Run returns.
func (l *Loop) Done() <-chan struct{} { return l.done }

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("loop: task panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	fn()
}

// Post enqueues fn. It blocks while the queue is full, so tasks always run
// in submission order, and must not be called from inside the loop
// goroutine. It reports false if the loop is closed; work posted while the
// loop is stopping may be discarded.
func (l *Loop) Post(fn func()) bool {
	l.mu.RLock()
	closed := l.closed
	l.mu.RUnlock()
	if closed {
		return false
	}
	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do runs fn on the loop and waits for it to return. It must not be called
// from inside the loop goroutine.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	ok := l.Post(func() {
		var err error
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("loop: task panicked: %v", r)
			}
			result <- err
		}()
		err = fn()
	})
	if !ok {
		return ErrClosed
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		select {
		case err := <-result:
			return err
		default:
			return ErrClosed
		}
	}
}

// After posts fn to the loop once d has elapsed. There is no cancellation.
func (l *Loop) After(d time.Duration, fn func()) {
	time.AfterFunc(d, func() {
		if !l.Post(fn) {
			slog.Debug("loop: deferred task dropped after close")
		}
	})
}
