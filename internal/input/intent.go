package input

import "fmt"

// Kind is the navigation action an input event translates to.
type Kind string

const (
	KindNone           Kind = "none"
	KindNext           Kind = "next"
	KindPrevious       Kind = "previous"
	KindGoTo           Kind = "goto"
	KindFirst          Kind = "first"
	KindLast           Kind = "last"
	KindHighlightPhase Kind = "highlight_phase"
	KindResetPhase     Kind = "reset_phase"
	KindResize         Kind = "resize"
	KindLoaded         Kind = "loaded"
)

// Intent is a request produced by an input adapter. Target is the slide
// ordinal for KindGoTo and the phase for KindHighlightPhase.
type Intent struct {
	Kind   Kind  `json:"kind"`
	Target int   `json:"target,omitempty"`
	Width  int   `json:"width,omitempty"`
	Height int   `json:"height,omitempty"`
	LoadMS int64 `json:"load_ms,omitempty"`
}

func (i Intent) String() string {
	switch i.Kind {
	case KindGoTo, KindHighlightPhase:
		return fmt.Sprintf("%s(%d)", i.Kind, i.Target)
	case KindResize:
		return fmt.Sprintf("%s(%dx%d)", i.Kind, i.Width, i.Height)
	default:
		return string(i.Kind)
	}
}

// IsNavigation reports whether the intent moves between slides.
func (i Intent) IsNavigation() bool {
	switch i.Kind {
	case KindNext, KindPrevious, KindGoTo, KindFirst, KindLast:
		return true
	}
	return false
}

// EventType is the kind of raw event a client reports.
type EventType string

const (
	EventReady      EventType = "ready"
	EventKeyDown    EventType = "keydown"
	EventTouchStart EventType = "touchstart"
	EventTouchEnd   EventType = "touchend"
	EventClick      EventType = "click"
	EventPhaseLeave EventType = "phaseleave"
	EventResize     EventType = "resize"
	EventLoad       EventType = "load"
)

// Click targets.
const (
	TargetPrev      = "prev"
	TargetNext      = "next"
	TargetIndicator = "indicator"
	TargetMarker    = "marker"
	TargetPhase     = "phase"
)

// Event is a raw DOM event as reported by a client. T is milliseconds on the
// client's clock; only differences between T values are meaningful.
type Event struct {
	Type   EventType `json:"type"`
	Key    string    `json:"key,omitempty"`
	X      float64   `json:"x,omitempty"`
	Y      float64   `json:"y,omitempty"`
	T      int64     `json:"t,omitempty"`
	Target string    `json:"target,omitempty"`
	Index  int       `json:"index,omitempty"`
	Width  int       `json:"width,omitempty"`
	Height int       `json:"height,omitempty"`
	LoadMS int64     `json:"load_ms,omitempty"`
}
