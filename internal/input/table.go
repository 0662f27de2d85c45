package input

import (
	"time"
)

// Translator converts one event into an intent. ok is false when the event
// was recognized but means nothing (an unhandled key, a short swipe).
type Translator func(Event) (Intent, bool)

// Table maps event types to translators. Each client connection gets its own
// Table because swipe tracking is stateful.
type Table struct {
	handlers map[EventType]Translator
	swipe    *SwipeTracker
}

// NewTable builds the standard event table.
func NewTable(swipeDistance float64, swipeDuration time.Duration) *Table {
	t := &Table{
		handlers: make(map[EventType]Translator),
		swipe:    NewSwipeTracker(swipeDistance, swipeDuration),
	}
	t.handlers[EventKeyDown] = func(e Event) (Intent, bool) { return KeyIntent(e.Key) }
	t.handlers[EventTouchStart] = func(e Event) (Intent, bool) {
		t.swipe.Start(e.X, e.Y, e.T)
		return Intent{Kind: KindNone}, false
	}
	t.handlers[EventTouchEnd] = func(e Event) (Intent, bool) {
		in := t.swipe.End(e.X, e.Y, e.T)
		return in, in.Kind != KindNone
	}
	t.handlers[EventClick] = func(e Event) (Intent, bool) { return ClickIntent(e.Target, e.Index) }
	t.handlers[EventPhaseLeave] = func(Event) (Intent, bool) { return Intent{Kind: KindResetPhase}, true }
	t.handlers[EventResize] = func(e Event) (Intent, bool) {
		if e.Width <= 0 || e.Height <= 0 {
			return Intent{Kind: KindNone}, false
		}
		return Intent{Kind: KindResize, Width: e.Width, Height: e.Height}, true
	}
	t.handlers[EventLoad] = func(e Event) (Intent, bool) {
		return Intent{Kind: KindLoaded, LoadMS: e.LoadMS}, true
	}
	return t
}

// Set replaces the translator for an event type.
func (t *Table) Set(typ EventType, fn Translator) {
	t.handlers[typ] = fn
}

// Translate looks up the event's translator. Unknown event types yield
// KindNone.
func (t *Table) Translate(e Event) (Intent, bool) {
	fn, ok := t.handlers[e.Type]
	if !ok {
		return Intent{Kind: KindNone}, false
	}
	return fn(e)
}

// ClickIntent maps a pointer activation. index is 0-based in DOM order.
func ClickIntent(target string, index int) (Intent, bool) {
	switch target {
	case TargetPrev:
		return Intent{Kind: KindPrevious}, true
	case TargetNext:
		return Intent{Kind: KindNext}, true
	case TargetIndicator:
		if index < 0 {
			return Intent{Kind: KindNone}, false
		}
		return Intent{Kind: KindGoTo, Target: index + 1}, true
	case TargetMarker, TargetPhase:
		if index < 0 {
			return Intent{Kind: KindNone}, false
		}
		return Intent{Kind: KindHighlightPhase, Target: index + 1}, true
	default:
		return Intent{Kind: KindNone}, false
	}
}
