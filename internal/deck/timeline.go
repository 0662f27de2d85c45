package deck

import "fmt"

// Timeline tracks the highlighted phase of a roadmap slide. Exactly one
// phase (and its marker) is active; Reset returns to the first phase.
type Timeline struct {
	phases int
	active int
}

func NewTimeline(phases int) (*Timeline, error) {
	if phases < 1 {
		return nil, fmt.Errorf("deck: timeline needs at least one phase, got %d", phases)
	}
	return &Timeline{phases: phases, active: 1}, nil
}

// Highlight activates phase n. Out-of-range values are ignored.
func (t *Timeline) Highlight(n int) bool {
	if n < 1 || n > t.phases {
		return false
	}
	if t.active == n {
		return false
	}
	t.active = n
	return true
}

// Reset activates the first phase and reports whether anything changed.
func (t *Timeline) Reset() bool {
	if t.active == 1 {
		return false
	}
	t.active = 1
	return true
}

func (t *Timeline) Active() int { return t.active }

func (t *Timeline) Phases() int { return t.phases }
