package viewer

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/dgnsrekt/deck_agent/internal/input"
	"github.com/dgnsrekt/deck_agent/internal/loop"
	"github.com/dgnsrekt/deck_agent/internal/presenter"
	"github.com/dgnsrekt/deck_agent/internal/relay"
)

type clientConn struct {
	io.Reader
	io.Writer
}

func dial(t *testing.T, url string) (net.Conn, io.ReadWriter) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, br, _, err := ws.Dial(ctx, url)
	if err != nil {
		t.Fatalf("ws.Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	var r io.Reader = conn
	if br != nil {
		r = io.MultiReader(br, conn)
	}
	return conn, clientConn{Reader: r, Writer: conn}
}

func readView(t *testing.T, conn net.Conn, rw io.ReadWriter) relay.ViewMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	data, err := wsutil.ReadServerText(rw)
	if err != nil {
		t.Fatalf("ReadServerText() error = %v", err)
	}
	var msg relay.ViewMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("frame not JSON: %v (%s)", err, data)
	}
	return msg
}

func newServer(t *testing.T) (*presenter.Service, string) {
	t.Helper()
	l := loop.New()
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-l.Done()
	})

	broker := relay.NewBroker()
	svc, err := presenter.NewService(l, presenter.Options{Total: 5})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	if err := svc.AddSurface(context.Background(), relay.NewViewSurface(broker)); err != nil {
		t.Fatalf("AddSurface() error = %v", err)
	}
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	srv := httptest.NewServer(NewHandler(broker, svc, Options{
		SwipeDistance: input.DefaultSwipeDistance,
		SwipeDuration: input.DefaultSwipeDuration,
	}))
	t.Cleanup(srv.Close)
	return svc, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestViewerReceivesCurrentViewOnConnect(t *testing.T) {
	_, url := newServer(t)
	conn, rw := dial(t, url)
	msg := readView(t, conn, rw)
	if msg.Type != "view" || msg.View.Current != 1 || msg.View.Total != 5 {
		t.Fatalf("initial view = %+v", msg)
	}
}

func TestKeydownAdvancesSlide(t *testing.T) {
	svc, url := newServer(t)
	conn, rw := dial(t, url)
	_ = readView(t, conn, rw)

	if err := wsutil.WriteClientText(conn, []byte(`{"type":"ready"}`)); err != nil {
		t.Fatalf("write ready: %v", err)
	}
	if err := wsutil.WriteClientText(conn, []byte(`{"type":"keydown","key":"ArrowRight"}`)); err != nil {
		t.Fatalf("write keydown: %v", err)
	}
	msg := readView(t, conn, rw)
	if msg.View.Current != 2 || !msg.View.Slides[1].Active {
		t.Fatalf("view after keydown = %+v", msg.View)
	}
	if svc.View().Current != 2 {
		t.Fatalf("service current = %d, want 2", svc.View().Current)
	}
}

func TestSwipeAcrossFrames(t *testing.T) {
	_, url := newServer(t)
	conn, rw := dial(t, url)
	_ = readView(t, conn, rw)

	for _, frame := range []string{
		`{"type":"touchstart","x":300,"y":100,"t":0}`,
		`{"type":"touchend","x":200,"y":104,"t":200}`,
	} {
		if err := wsutil.WriteClientText(conn, []byte(frame)); err != nil {
			t.Fatalf("write %s: %v", frame, err)
		}
	}
	if msg := readView(t, conn, rw); msg.View.Current != 2 {
		t.Fatalf("current after swipe = %d, want 2", msg.View.Current)
	}
}

func TestMalformedFramesAreIgnored(t *testing.T) {
	_, url := newServer(t)
	conn, rw := dial(t, url)
	_ = readView(t, conn, rw)

	_ = wsutil.WriteClientText(conn, []byte(`not json`))
	_ = wsutil.WriteClientText(conn, []byte(`{"type":"click","target":"indicator","index":4}`))
	if msg := readView(t, conn, rw); msg.View.Current != 5 {
		t.Fatalf("current = %d, want 5", msg.View.Current)
	}
}
