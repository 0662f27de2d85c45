package deck

import (
	"strconv"
)

// SlideView is the visibility of one slide or indicator.
type SlideView struct {
	Ordinal int  `json:"ordinal"`
	Active  bool `json:"active"`
}

// ChartView describes a ready chart slot. Revision changes whenever the
// chart image is redrawn so clients can bust caches.
type ChartView struct {
	Slot     string `json:"slot"`
	URL      string `json:"url,omitempty"`
	Revision int    `json:"revision"`
}

// View is everything a display needs to reflect a State.
type View struct {
	Current       int         `json:"current"`
	Total         int         `json:"total"`
	CurrentLabel  string      `json:"current_label"`
	TotalLabel    string      `json:"total_label"`
	Progress      float64     `json:"progress"`
	ProgressWidth string      `json:"progress_width"`
	Slides        []SlideView `json:"slides"`
	Indicators    []SlideView `json:"indicators"`
	PrevDisabled  bool        `json:"prev_disabled"`
	NextDisabled  bool        `json:"next_disabled"`

	Phase  int                  `json:"phase,omitempty"`
	Charts map[string]ChartView `json:"charts,omitempty"`
}

// Render derives the View for s. It has no side effects.
func Render(s State, mode ProgressMode) View {
	p := Progress(s, mode)
	v := View{
		Current:       s.Current,
		Total:         s.Total,
		CurrentLabel:  strconv.Itoa(s.Current),
		TotalLabel:    strconv.Itoa(s.Total),
		Progress:      p,
		ProgressWidth: strconv.FormatFloat(p, 'f', -1, 64) + "%",
		Slides:        make([]SlideView, s.Total),
		Indicators:    make([]SlideView, s.Total),
		PrevDisabled:  s.IsFirst(),
		NextDisabled:  s.IsLast(),
	}
	for i := 0; i < s.Total; i++ {
		sv := SlideView{Ordinal: i + 1, Active: i+1 == s.Current}
		v.Slides[i] = sv
		v.Indicators[i] = sv
	}
	return v
}

// Progress returns the bar fill percentage in [0, 100].
func Progress(s State, mode ProgressMode) float64 {
	if s.Total < 1 {
		return 0
	}
	if mode == ProgressFromZero {
		if s.Total == 1 {
			return 100
		}
		return float64(s.Current-1) / float64(s.Total-1) * 100
	}
	return float64(s.Current) / float64(s.Total) * 100
}

// ActiveCount returns how many entries are marked active.
func ActiveCount(items []SlideView) int {
	n := 0
	for _, it := range items {
		if it.Active {
			n++
		}
	}
	return n
}
