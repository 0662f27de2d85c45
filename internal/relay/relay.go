package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

const EventConsole = "console"

// EventSource delivers raw CDP events for the mirrored page.
type EventSource interface {
	EnableRuntimeDomain(ctx context.Context) error
	RegisterCDPEventHandler(method string, fn func(sessionID string, params json.RawMessage)) (func(), error)
}

// ConsoleLine is one console message or uncaught exception from the page.
type ConsoleLine struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// Relay forwards the mirrored page's console output to the broker so
// operators can watch client diagnostics without devtools.
type Relay struct {
	broker *Broker
	levels map[string]bool // nil means accept all

	mu            sync.Mutex
	unregisterFns []func()
}

// NewRelay creates a console relay. levels limits forwarded console levels
// (log, info, warn, error, ...); empty forwards everything.
func NewRelay(broker *Broker, levels []string) *Relay {
	r := &Relay{broker: broker}
	if len(levels) > 0 {
		r.levels = make(map[string]bool, len(levels))
		for _, l := range levels {
			r.levels[strings.ToLower(strings.TrimSpace(l))] = true
		}
	}
	return r
}

// Start enables the Runtime domain and registers CDP event handlers.
func (r *Relay) Start(ctx context.Context, src EventSource) error {
	if err := src.EnableRuntimeDomain(ctx); err != nil {
		return err
	}

	methods := []struct {
		name string
		fn   func(string, json.RawMessage)
	}{
		{"Runtime.consoleAPICalled", r.onConsoleAPICalled},
		{"Runtime.exceptionThrown", r.onExceptionThrown},
	}

	for _, m := range methods {
		unreg, err := src.RegisterCDPEventHandler(m.name, m.fn)
		if err != nil {
			r.Stop()
			return err
		}
		r.mu.Lock()
		r.unregisterFns = append(r.unregisterFns, unreg)
		r.mu.Unlock()
	}

	slog.Info("console relay started")
	return nil
}

// Stop unregisters all CDP event handlers.
func (r *Relay) Stop() {
	r.mu.Lock()
	fns := r.unregisterFns
	r.unregisterFns = nil
	r.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
	slog.Info("console relay stopped")
}

func (r *Relay) onConsoleAPICalled(_ string, params json.RawMessage) {
	var evt struct {
		Type string `json:"type"`
		Args []struct {
			Type        string          `json:"type"`
			Value       json.RawMessage `json:"value"`
			Description string          `json:"description"`
		} `json:"args"`
	}
	if err := json.Unmarshal(params, &evt); err != nil {
		return
	}
	if r.levels != nil && !r.levels[evt.Type] {
		return
	}
	parts := make([]string, 0, len(evt.Args))
	for _, a := range evt.Args {
		parts = append(parts, argText(a.Type, a.Value, a.Description))
	}
	r.publish(ConsoleLine{Level: evt.Type, Text: strings.Join(parts, " ")})
}

func (r *Relay) onExceptionThrown(_ string, params json.RawMessage) {
	var evt struct {
		ExceptionDetails struct {
			Text      string `json:"text"`
			Exception struct {
				Description string `json:"description"`
			} `json:"exception"`
		} `json:"exceptionDetails"`
	}
	if err := json.Unmarshal(params, &evt); err != nil {
		return
	}
	if r.levels != nil && !r.levels["error"] {
		return
	}
	text := evt.ExceptionDetails.Exception.Description
	if text == "" {
		text = evt.ExceptionDetails.Text
	}
	r.publish(ConsoleLine{Level: "error", Text: text})
}

func (r *Relay) publish(line ConsoleLine) {
	data, err := json.Marshal(line)
	if err != nil {
		return
	}
	slog.Debug("page console", "level", line.Level, "text", line.Text)
	r.broker.Publish(Event{Name: EventConsole, Payload: string(data)})
}

// argText renders a Runtime.RemoteObject the way devtools would print it.
func argText(typ string, value json.RawMessage, description string) string {
	if len(value) > 0 {
		if typ == "string" {
			var s string
			if err := json.Unmarshal(value, &s); err == nil {
				return s
			}
		}
		return string(value)
	}
	if description != "" {
		return description
	}
	return fmt.Sprintf("<%s>", typ)
}
