package charts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	ErrEngineUnavailable = errors.New("charts: charting engine unavailable")
	ErrNoSurface         = errors.New("charts: chart surface not found")
)

// Handle is a constructed chart.
type Handle interface {
	Slot() SlotID
	Resize(ctx context.Context, width, height int) error
}

// Revisioned handles report a counter that advances on every redraw.
type Revisioned interface {
	Revision() int
}

// Addressable handles are served over HTTP at URL.
type Addressable interface {
	URL() string
}

// Engine draws charts onto a surface.
type Engine interface {
	Name() string
	// Probe returns ErrEngineUnavailable or ErrNoSurface (possibly wrapped)
	// when slot cannot be drawn right now.
	Probe(ctx context.Context, slot SlotID) error
	Construct(ctx context.Context, slot SlotID, cfg Config) (Handle, error)
}

// SlotStatus is a read-only view of one slot.
type SlotStatus struct {
	Slot   SlotID `json:"slot"`
	Ready  bool   `json:"ready"`
	Engine string `json:"engine"`
}

// Initializer constructs each chart slot at most once. A slot, once filled,
// is never cleared.
type Initializer struct {
	engine  Engine
	configs map[SlotID]Config

	buildMu sync.Mutex
	mu      sync.RWMutex
	slots   map[SlotID]Handle
}

func NewInitializer(engine Engine, configs map[SlotID]Config) *Initializer {
	if configs == nil {
		configs = Builtin()
	}
	return &Initializer{
		engine:  engine,
		configs: configs,
		slots:   make(map[SlotID]Handle),
	}
}

// Engine returns the engine charts are drawn with.
func (in *Initializer) Engine() Engine { return in.engine }

// Ensure returns the slot's handle, constructing it from the slot's
// configured chart on first use. Unknown slots report false.
func (in *Initializer) Ensure(ctx context.Context, slot SlotID) (Handle, bool) {
	if h, ok := in.Handle(slot); ok {
		return h, true
	}
	cfg, ok := in.configs[slot]
	if !ok {
		slog.Warn("chart slot has no config", "slot", slot)
		return nil, false
	}
	return in.EnsureConfig(ctx, slot, cfg)
}

// EnsureConfig returns the slot's handle, constructing it from cfg on first
// use. An existing handle is returned unchanged and cfg is ignored. It
// reports false when the engine is unavailable, the surface is missing or
// construction fails; each case is logged and leaves the slot empty so a
// later call may retry.
func (in *Initializer) EnsureConfig(ctx context.Context, slot SlotID, cfg Config) (Handle, bool) {
	if h, ok := in.Handle(slot); ok {
		return h, true
	}

	in.buildMu.Lock()
	defer in.buildMu.Unlock()
	if h, ok := in.Handle(slot); ok {
		return h, true
	}
	if in.engine == nil {
		slog.Warn("chart engine not configured", "slot", slot)
		return nil, false
	}

	h, err := in.construct(ctx, slot, cfg)
	if err != nil {
		slog.Warn("could not initialize chart", "slot", slot, "engine", in.engine.Name(), "error", err)
		return nil, false
	}

	in.mu.Lock()
	in.slots[slot] = h
	in.mu.Unlock()
	slog.Info("chart initialized", "slot", slot, "engine", in.engine.Name())
	return h, true
}

func (in *Initializer) construct(ctx context.Context, slot SlotID, cfg Config) (h Handle, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("charts: construct %s panicked: %v", slot, r)
		}
	}()
	if err := in.engine.Probe(ctx, slot); err != nil {
		return nil, err
	}
	h, err = in.engine.Construct(ctx, slot, cfg)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, fmt.Errorf("charts: engine %s returned no handle for %s", in.engine.Name(), slot)
	}
	return h, nil
}

// Handle returns the slot's handle if it was constructed.
func (in *Initializer) Handle(slot SlotID) (Handle, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	h, ok := in.slots[slot]
	return h, ok
}

// ResizeAll asks every constructed chart to resize. Failures are logged per
// chart and do not stop the others.
func (in *Initializer) ResizeAll(ctx context.Context, width, height int) int {
	in.mu.RLock()
	handles := make([]Handle, 0, len(in.slots))
	for _, id := range SortedSlots(in.slots) {
		handles = append(handles, in.slots[id])
	}
	in.mu.RUnlock()

	resized := 0
	for _, h := range handles {
		if err := resizeSafely(ctx, h, width, height); err != nil {
			slog.Warn("chart resize failed", "slot", h.Slot(), "error", err)
			continue
		}
		resized++
	}
	return resized
}

func resizeSafely(ctx context.Context, h Handle, width, height int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("charts: resize panicked: %v", r)
		}
	}()
	return h.Resize(ctx, width, height)
}

// Status lists every configured slot and whether it is ready.
func (in *Initializer) Status() []SlotStatus {
	in.mu.RLock()
	defer in.mu.RUnlock()
	name := ""
	if in.engine != nil {
		name = in.engine.Name()
	}
	out := make([]SlotStatus, 0, len(in.configs))
	for _, id := range SortedSlots(in.configs) {
		_, ready := in.slots[id]
		out = append(out, SlotStatus{Slot: id, Ready: ready, Engine: name})
	}
	return out
}

// Ready returns the constructed handles keyed by slot.
func (in *Initializer) Ready() map[SlotID]Handle {
	in.mu.RLock()
	defer in.mu.RUnlock()
	out := make(map[SlotID]Handle, len(in.slots))
	for k, v := range in.slots {
		out[k] = v
	}
	return out
}
