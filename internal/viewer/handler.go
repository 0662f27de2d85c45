package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/dgnsrekt/deck_agent/internal/input"
	"github.com/dgnsrekt/deck_agent/internal/presenter"
	"github.com/dgnsrekt/deck_agent/internal/relay"
)

// Dispatcher applies intents to the presentation.
type Dispatcher interface {
	Dispatch(ctx context.Context, in input.Intent) (presenter.Result, error)
}

// Options tunes per-connection input handling.
type Options struct {
	SwipeDistance float64
	SwipeDuration time.Duration
	WriteTimeout  time.Duration
}

// Handler upgrades viewer connections to WebSocket. Each connection reports
// raw input events and receives every view update.
type Handler struct {
	broker *relay.Broker
	svc    Dispatcher
	opts   Options
}

func NewHandler(broker *relay.Broker, svc Dispatcher, opts Options) *Handler {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	return &Handler{broker: broker, svc: svc, opts: opts}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		slog.Debug("viewer upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	id, ch := h.broker.Subscribe()
	var writeMu sync.Mutex
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writeLoop(ctx, conn, &writeMu, ch)
	}()

	slog.Info("viewer connected", "remote", r.RemoteAddr, "viewers", h.broker.ClientCount())
	h.readLoop(ctx, conn, &writeMu, r.RemoteAddr)

	h.broker.Unsubscribe(id)
	cancel()
	<-done
	slog.Info("viewer disconnected", "remote", r.RemoteAddr)
}

func (h *Handler) readLoop(ctx context.Context, conn net.Conn, writeMu *sync.Mutex, remote string) {
	table := input.NewTable(h.opts.SwipeDistance, h.opts.SwipeDuration)
	control := wsutil.ControlFrameHandler(conn, ws.StateServerSide)
	// pong and close replies share the connection with writeLoop
	lockedControl := func(hdr ws.Header, r io.Reader) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return control(hdr, r)
	}
	rd := &wsutil.Reader{
		Source:         conn,
		State:          ws.StateServerSide,
		CheckUTF8:      true,
		OnIntermediate: lockedControl,
	}
	for {
		data, err := nextText(rd, lockedControl)
		if err != nil {
			var closed wsutil.ClosedError
			if !errors.As(err, &closed) && !errors.Is(err, io.EOF) {
				slog.Debug("viewer read failed", "remote", remote, "error", err)
			}
			return
		}

		var evt input.Event
		if err := json.Unmarshal(data, &evt); err != nil {
			slog.Debug("viewer sent malformed event", "remote", remote, "error", err)
			continue
		}
		if evt.Type == input.EventReady {
			slog.Debug("viewer ready", "remote", remote)
			continue
		}

		intent, ok := table.Translate(evt)
		if !ok {
			continue
		}
		if _, err := h.svc.Dispatch(ctx, intent); err != nil {
			slog.Warn("viewer intent failed", "remote", remote, "intent", intent.String(), "error", err)
		}
	}
}

// nextText returns the payload of the next text message, answering control
// frames and skipping binary messages along the way.
func nextText(rd *wsutil.Reader, control wsutil.FrameHandlerFunc) ([]byte, error) {
	for {
		hdr, err := rd.NextFrame()
		if err != nil {
			return nil, err
		}
		if hdr.OpCode.IsControl() {
			if err := control(hdr, rd); err != nil {
				return nil, err
			}
			continue
		}
		if hdr.OpCode&ws.OpText == 0 {
			if err := rd.Discard(); err != nil {
				return nil, err
			}
			continue
		}
		return io.ReadAll(rd)
	}
}

func (h *Handler) writeLoop(ctx context.Context, conn net.Conn, mu *sync.Mutex, ch <-chan relay.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			if evt.Name != relay.EventView {
				continue
			}
			mu.Lock()
			_ = conn.SetWriteDeadline(time.Now().Add(h.opts.WriteTimeout))
			err := wsutil.WriteServerText(conn, []byte(evt.Payload))
			mu.Unlock()
			if err != nil {
				slog.Debug("viewer write failed", "error", err)
				// unblock the reader
				_ = conn.Close()
				return
			}
		}
	}
}
