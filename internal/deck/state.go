package deck

import "fmt"

// ProgressMode selects the progress bar formula. A deck uses exactly one.
type ProgressMode string

const (
	// ProgressFromOne fills current/total of the bar, so slide 1 already
	// shows a partial bar and the last slide shows 100%.
	ProgressFromOne ProgressMode = "from_one"
	// ProgressFromZero fills (current-1)/(total-1), so slide 1 shows 0%.
	ProgressFromZero ProgressMode = "from_zero"
)

// ParseProgressMode validates a configured progress mode. Empty selects
// ProgressFromOne.
func ParseProgressMode(s string) (ProgressMode, error) {
	switch ProgressMode(s) {
	case "", ProgressFromOne:
		return ProgressFromOne, nil
	case ProgressFromZero:
		return ProgressFromZero, nil
	default:
		return "", fmt.Errorf("deck: unknown progress mode %q", s)
	}
}

// State is the presentation position. Current is 1-based and always within
// [1, Total] once constructed.
type State struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// NewState returns the initial state for a deck of total slides.
func NewState(total int) (State, error) {
	if total < 1 {
		return State{}, fmt.Errorf("deck: total slides must be positive, got %d", total)
	}
	return State{Current: 1, Total: total}, nil
}

// Contains reports whether n is a valid slide ordinal.
func (s State) Contains(n int) bool {
	return n >= 1 && n <= s.Total
}

func (s State) IsFirst() bool { return s.Current == 1 }

func (s State) IsLast() bool { return s.Current == s.Total }
