package input

import (
	"math"
	"time"
)

const (
	DefaultSwipeDistance = 50
	DefaultSwipeDuration = 800 * time.Millisecond
)

// SwipeTracker turns a touchstart/touchend pair into a navigation intent.
// It holds one pending gesture; every End clears it.
type SwipeTracker struct {
	MinDistance float64
	// MaxDuration bounds start-to-end time. Zero disables the check.
	MaxDuration time.Duration

	active bool
	startX float64
	startY float64
	startT int64
}

func NewSwipeTracker(minDistance float64, maxDuration time.Duration) *SwipeTracker {
	if minDistance <= 0 {
		minDistance = DefaultSwipeDistance
	}
	return &SwipeTracker{MinDistance: minDistance, MaxDuration: maxDuration}
}

// Start records the gesture origin, replacing any unfinished gesture.
func (s *SwipeTracker) Start(x, y float64, t int64) {
	s.active = true
	s.startX, s.startY, s.startT = x, y, t
}

// End classifies the gesture. A leftward swipe (start right of end) means
// Next; a rightward swipe means Previous. Mostly vertical, short or slow
// gestures produce KindNone, as does an End without a Start.
func (s *SwipeTracker) End(x, y float64, t int64) Intent {
	if !s.active {
		return Intent{Kind: KindNone}
	}
	s.active = false

	dx := s.startX - x
	dy := s.startY - y
	if math.Abs(dx) <= math.Abs(dy) || math.Abs(dx) <= s.MinDistance {
		return Intent{Kind: KindNone}
	}
	if s.MaxDuration > 0 && t-s.startT > s.MaxDuration.Milliseconds() {
		return Intent{Kind: KindNone}
	}
	if dx > 0 {
		return Intent{Kind: KindNext}
	}
	return Intent{Kind: KindPrevious}
}

// Pending reports whether a gesture has started but not ended.
func (s *SwipeTracker) Pending() bool { return s.active }
