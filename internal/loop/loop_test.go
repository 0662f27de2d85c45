package loop

import (
	"context"
	"errors"
	"testing"
	"time"
)

func startLoop(t *testing.T) *Loop {
	t.Helper()
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-l.Done()
	})
	return l
}

func TestDoRunsInPostOrder(t *testing.T) {
	l := startLoop(t)
	var order []int
	for i := 0; i < 10; i++ {
		i := i
		l.Post(func() { order = append(order, i) })
	}
	if err := l.Do(context.Background(), func() error { order = append(order, 10); return nil }); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	for i, got := range order {
		if got != i {
			t.Fatalf("order = %v, want ascending", order)
		}
	}
}

func TestPostKeepsOrderPastQueueSize(t *testing.T) {
	l := startLoop(t)
	gate := make(chan struct{})
	l.Post(func() { <-gate })

	n := queueSize + 50
	var order []int
	posted := make(chan struct{})
	go func() {
		defer close(posted)
		for i := 0; i < n; i++ {
			i := i
			l.Post(func() { order = append(order, i) })
		}
	}()
	time.Sleep(50 * time.Millisecond)
	close(gate)

	select {
	case <-posted:
	case <-time.After(5 * time.Second):
		t.Fatalf("Post() did not return after the queue drained")
	}
	if err := l.Do(context.Background(), func() error { return nil }); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if len(order) != n {
		t.Fatalf("ran %d tasks, want %d", len(order), n)
	}
	for i, got := range order {
		if got != i {
			t.Fatalf("order[%d] = %d, want %d", i, got, i)
		}
	}
}

func TestDoReturnsClosureError(t *testing.T) {
	l := startLoop(t)
	want := errors.New("boom")
	if err := l.Do(context.Background(), func() error { return want }); !errors.Is(err, want) {
		t.Fatalf("Do() error = %v, want %v", err, want)
	}
}

func TestDoRecoversPanic(t *testing.T) {
	l := startLoop(t)
	err := l.Do(context.Background(), func() error { panic("bad") })
	if err == nil {
		t.Fatalf("Do() error = nil, want panic error")
	}
	if err := l.Do(context.Background(), func() error { return nil }); err != nil {
		t.Fatalf("loop did not survive panic: %v", err)
	}
}

func TestAfterFiresOnLoop(t *testing.T) {
	l := startLoop(t)
	fired := make(chan struct{})
	var onLoop bool
	l.After(10*time.Millisecond, func() {
		onLoop = true
		close(fired)
	})
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatalf("After callback never fired")
	}
	// read through the loop to synchronize with the write above
	var got bool
	_ = l.Do(context.Background(), func() error { got = onLoop; return nil })
	if !got {
		t.Fatalf("callback did not run")
	}
}

func TestPostAfterCloseFails(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	cancel()
	<-l.Done()
	if l.Post(func() {}) {
		t.Fatalf("Post() after close = true, want false")
	}
	if err := l.Do(context.Background(), func() error { return nil }); !errors.Is(err, ErrClosed) {
		t.Fatalf("Do() after close error = %v, want ErrClosed", err)
	}
}
