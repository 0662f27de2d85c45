package input

import (
	"testing"
	"time"
)

func TestKeyIntent(t *testing.T) {
	tests := []struct {
		key          string
		want         Kind
		wantConsumed bool
	}{
		{"ArrowRight", KindNext, true},
		{"ArrowDown", KindNext, true},
		{" ", KindNext, true},
		{"ArrowLeft", KindPrevious, true},
		{"ArrowUp", KindPrevious, true},
		{"Home", KindFirst, true},
		{"End", KindLast, true},
		{"a", KindNone, false},
		{"Tab", KindNone, false},
		{"", KindNone, false},
	}
	for _, tt := range tests {
		got, consumed := KeyIntent(tt.key)
		if got.Kind != tt.want || consumed != tt.wantConsumed {
			t.Fatalf("KeyIntent(%q) = %v, %v; want %v, %v", tt.key, got.Kind, consumed, tt.want, tt.wantConsumed)
		}
	}
}

func TestConsumedKeysSorted(t *testing.T) {
	keys := ConsumedKeys()
	if len(keys) != len(keyIntents) {
		t.Fatalf("ConsumedKeys() len = %d, want %d", len(keys), len(keyIntents))
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			t.Fatalf("ConsumedKeys() not sorted: %q", keys)
		}
	}
}

func TestSwipe(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 float64
		dt             int64
		want           Kind
	}{
		{"left swipe goes next", 300, 200, 240, 203, 120, KindNext},
		{"right swipe goes previous", 240, 200, 300, 198, 120, KindPrevious},
		{"vertical swipe ignored", 200, 300, 203, 240, 120, KindNone},
		{"too short", 300, 200, 260, 200, 120, KindNone},
		{"exactly threshold is not enough", 300, 200, 250, 200, 120, KindNone},
		{"too slow", 300, 200, 200, 200, 2000, KindNone},
		{"diagonal tie ignored", 300, 300, 220, 220, 120, KindNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSwipeTracker(DefaultSwipeDistance, DefaultSwipeDuration)
			s.Start(tt.x0, tt.y0, 1000)
			got := s.End(tt.x1, tt.y1, 1000+tt.dt)
			if got.Kind != tt.want {
				t.Fatalf("End() = %v, want %v", got.Kind, tt.want)
			}
			if s.Pending() {
				t.Fatalf("tracker still pending after End")
			}
		})
	}
}

func TestSwipeEndWithoutStart(t *testing.T) {
	s := NewSwipeTracker(0, 0)
	if got := s.End(0, 0, 0); got.Kind != KindNone {
		t.Fatalf("End() without Start = %v, want none", got.Kind)
	}
	s.Start(400, 100, 0)
	s.End(300, 100, 10)
	if got := s.End(100, 100, 20); got.Kind != KindNone {
		t.Fatalf("second End() = %v, want none", got.Kind)
	}
}

func TestSwipeFromOriginCoordinates(t *testing.T) {
	// A gesture starting at x=0 is still a gesture.
	s := NewSwipeTracker(DefaultSwipeDistance, 0)
	s.Start(0, 0, 0)
	if got := s.End(80, 0, 5000); got.Kind != KindPrevious {
		t.Fatalf("End() = %v, want previous", got.Kind)
	}
}

func TestTableSwipeOfSixtyUnits(t *testing.T) {
	tbl := NewTable(DefaultSwipeDistance, DefaultSwipeDuration)
	var intents []Intent
	for _, e := range []Event{
		{Type: EventTouchStart, X: 200, Y: 100, T: 0},
		{Type: EventTouchEnd, X: 140, Y: 101, T: 150},
		{Type: EventTouchStart, X: 200, Y: 100, T: 1000},
		{Type: EventTouchEnd, X: 201, Y: 40, T: 1150},
	} {
		if in, ok := tbl.Translate(e); ok {
			intents = append(intents, in)
		}
	}
	if len(intents) != 1 || intents[0].Kind != KindNext {
		t.Fatalf("intents = %v, want exactly [next]", intents)
	}
}

func TestTableClicks(t *testing.T) {
	tbl := NewTable(0, time.Second)
	tests := []struct {
		e    Event
		want Intent
		ok   bool
	}{
		{Event{Type: EventClick, Target: TargetIndicator, Index: 0}, Intent{Kind: KindGoTo, Target: 1}, true},
		{Event{Type: EventClick, Target: TargetIndicator, Index: 11}, Intent{Kind: KindGoTo, Target: 12}, true},
		{Event{Type: EventClick, Target: TargetPrev}, Intent{Kind: KindPrevious}, true},
		{Event{Type: EventClick, Target: TargetNext}, Intent{Kind: KindNext}, true},
		{Event{Type: EventClick, Target: TargetMarker, Index: 2}, Intent{Kind: KindHighlightPhase, Target: 3}, true},
		{Event{Type: EventClick, Target: "logo"}, Intent{Kind: KindNone}, false},
		{Event{Type: EventPhaseLeave}, Intent{Kind: KindResetPhase}, true},
		{Event{Type: EventResize, Width: 1280, Height: 720}, Intent{Kind: KindResize, Width: 1280, Height: 720}, true},
		{Event{Type: EventResize}, Intent{Kind: KindNone}, false},
		{Event{Type: EventLoad, LoadMS: 420}, Intent{Kind: KindLoaded, LoadMS: 420}, true},
		{Event{Type: "scroll"}, Intent{Kind: KindNone}, false},
	}
	for _, tt := range tests {
		got, ok := tbl.Translate(tt.e)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("Translate(%+v) = %+v, %v; want %+v, %v", tt.e, got, ok, tt.want, tt.ok)
		}
	}
}

func TestTableSetOverrides(t *testing.T) {
	tbl := NewTable(0, 0)
	tbl.Set(EventKeyDown, func(Event) (Intent, bool) { return Intent{Kind: KindLast}, true })
	if got, _ := tbl.Translate(Event{Type: EventKeyDown, Key: "ArrowRight"}); got.Kind != KindLast {
		t.Fatalf("override not used: %v", got.Kind)
	}
}
