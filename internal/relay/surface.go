package relay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgnsrekt/deck_agent/internal/deck"
)

const EventView = "view"

// ViewMessage is the wire envelope for a view update, shared by SSE and
// WebSocket viewers.
type ViewMessage struct {
	Type string    `json:"type"`
	View deck.View `json:"view"`
}

// ViewSurface publishes every applied view to the broker.
type ViewSurface struct {
	broker *Broker
}

func NewViewSurface(b *Broker) *ViewSurface {
	return &ViewSurface{broker: b}
}

func (s *ViewSurface) Name() string { return "broadcast" }

func (s *ViewSurface) Apply(_ context.Context, v deck.View) error {
	data, err := json.Marshal(ViewMessage{Type: EventView, View: v})
	if err != nil {
		return fmt.Errorf("relay: encode view: %w", err)
	}
	s.broker.PublishSticky(Event{Name: EventView, Payload: string(data)})
	return nil
}
