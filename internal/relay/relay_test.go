package relay

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/deck_agent/internal/deck"
)

func TestBrokerReplaysStickyToLateSubscribers(t *testing.T) {
	b := NewBroker()
	b.PublishSticky(Event{Name: "view", Payload: `{"n":1}`})
	b.PublishSticky(Event{Name: "view", Payload: `{"n":2}`})
	b.Publish(Event{Name: "console", Payload: `{}`})

	id, ch := b.Subscribe()
	defer b.Unsubscribe(id)

	select {
	case evt := <-ch:
		if evt.Payload != `{"n":2}` {
			t.Fatalf("replayed payload = %s, want latest", evt.Payload)
		}
	default:
		t.Fatalf("no sticky replay")
	}
	select {
	case evt := <-ch:
		t.Fatalf("unexpected extra event %+v", evt)
	default:
	}
}

func TestBrokerDropsForSlowSubscribers(t *testing.T) {
	b := NewBroker()
	id, _ := b.Subscribe()
	defer b.Unsubscribe(id)
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBufSize*3; i++ {
			b.Publish(Event{Name: "x", Payload: "{}"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Publish blocked on a full subscriber")
	}
}

func TestStickyEventReachesFullSubscriber(t *testing.T) {
	b := NewBroker()
	id, ch := b.Subscribe()
	defer b.Unsubscribe(id)

	for i := 0; i < subscriberBufSize; i++ {
		b.PublishSticky(Event{Name: EventView, Payload: `{"stale":true}`})
	}
	b.Publish(Event{Name: EventConsole, Payload: `{}`})
	b.PublishSticky(Event{Name: EventView, Payload: `{"current":6}`})

	var last Event
	for n := 0; n < subscriberBufSize; n++ {
		select {
		case last = <-ch:
		default:
			t.Fatalf("channel drained after %d events, want a full buffer", n)
		}
	}
	select {
	case evt := <-ch:
		t.Fatalf("unexpected extra event %+v", evt)
	default:
	}
	if last.Payload != `{"current":6}` {
		t.Fatalf("last queued payload = %s, want the newest view", last.Payload)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker()
	id, ch := b.Subscribe()
	b.Unsubscribe(id)
	if _, ok := <-ch; ok {
		t.Fatalf("channel still open after Unsubscribe")
	}
	if b.ClientCount() != 0 {
		t.Fatalf("ClientCount() = %d, want 0", b.ClientCount())
	}
}

func TestViewSurfacePublishesEnvelope(t *testing.T) {
	b := NewBroker()
	s := NewViewSurface(b)
	v := deck.Render(deck.State{Current: 2, Total: 3}, deck.ProgressFromOne)
	if err := s.Apply(context.Background(), v); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	evt, ok := b.Latest(EventView)
	if !ok {
		t.Fatalf("no view published")
	}
	var msg ViewMessage
	if err := json.Unmarshal([]byte(evt.Payload), &msg); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if msg.Type != "view" || msg.View.Current != 2 {
		t.Fatalf("msg = %+v", msg)
	}
}

func TestSSEHandlerStreamsFilteredEvents(t *testing.T) {
	b := NewBroker()
	srv := httptest.NewServer(SSEHandler(b))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"?events=view", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	go func() {
		for b.ClientCount() == 0 {
			time.Sleep(5 * time.Millisecond)
		}
		b.Publish(Event{Name: "console", Payload: `{"skip":true}`})
		b.Publish(Event{Name: "view", Payload: `{"ok":true}`})
	}()

	sc := bufio.NewScanner(resp.Body)
	var lines []string
	for sc.Scan() {
		line := sc.Text()
		if line == "" && len(lines) > 0 {
			break
		}
		lines = append(lines, line)
	}
	got := strings.Join(lines, "\n")
	if got != "event: view\ndata: {\"ok\":true}" {
		t.Fatalf("frame = %q", got)
	}
}

type fakeSource struct {
	handlers map[string]func(string, json.RawMessage)
}

func (f *fakeSource) EnableRuntimeDomain(ctx context.Context) error { return nil }

func (f *fakeSource) RegisterCDPEventHandler(method string, fn func(string, json.RawMessage)) (func(), error) {
	f.handlers[method] = fn
	return func() { delete(f.handlers, method) }, nil
}

func TestRelayForwardsConsoleAndExceptions(t *testing.T) {
	b := NewBroker()
	id, ch := b.Subscribe()
	defer b.Unsubscribe(id)

	src := &fakeSource{handlers: map[string]func(string, json.RawMessage){}}
	r := NewRelay(b, []string{"log", "error"})
	if err := r.Start(context.Background(), src); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	src.handlers["Runtime.consoleAPICalled"]("", json.RawMessage(`{"type":"log","args":[{"type":"string","value":"Presentation loaded in"},{"type":"number","value":412}]}`))
	src.handlers["Runtime.consoleAPICalled"]("", json.RawMessage(`{"type":"debug","args":[{"type":"string","value":"noise"}]}`))
	src.handlers["Runtime.exceptionThrown"]("", json.RawMessage(`{"exceptionDetails":{"text":"Uncaught","exception":{"description":"TypeError: x"}}}`))

	var got []ConsoleLine
	for len(got) < 2 {
		select {
		case evt := <-ch:
			var line ConsoleLine
			if err := json.Unmarshal([]byte(evt.Payload), &line); err != nil {
				t.Fatalf("bad payload: %v", err)
			}
			got = append(got, line)
		case <-time.After(time.Second):
			t.Fatalf("got %d console lines, want 2", len(got))
		}
	}
	if got[0].Text != "Presentation loaded in 412" || got[0].Level != "log" {
		t.Fatalf("first line = %+v", got[0])
	}
	if got[1].Level != "error" || got[1].Text != "TypeError: x" {
		t.Fatalf("second line = %+v", got[1])
	}

	r.Stop()
	if len(src.handlers) != 0 {
		t.Fatalf("handlers left registered: %d", len(src.handlers))
	}
}
