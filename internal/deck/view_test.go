package deck

import "testing"

func TestRenderControlsDisabledAtEnds(t *testing.T) {
	const total = 12
	for k := 1; k <= total; k++ {
		v := Render(State{Current: k, Total: total}, ProgressFromOne)
		if v.PrevDisabled != (k == 1) {
			t.Fatalf("slide %d: PrevDisabled = %v", k, v.PrevDisabled)
		}
		if v.NextDisabled != (k == total) {
			t.Fatalf("slide %d: NextDisabled = %v", k, v.NextDisabled)
		}
		if ActiveCount(v.Slides) != 1 || ActiveCount(v.Indicators) != 1 {
			t.Fatalf("slide %d: want exactly one active slide and indicator", k)
		}
	}
}

func TestRenderLabels(t *testing.T) {
	v := Render(State{Current: 3, Total: 12}, ProgressFromOne)
	if v.CurrentLabel != "3" || v.TotalLabel != "12" {
		t.Fatalf("labels = %q/%q, want 3/12", v.CurrentLabel, v.TotalLabel)
	}
	if len(v.Slides) != 12 || v.Slides[2].Ordinal != 3 {
		t.Fatalf("slides not ordered by ordinal: %+v", v.Slides)
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name  string
		state State
		mode  ProgressMode
		want  float64
	}{
		{"from one first", State{Current: 1, Total: 4}, ProgressFromOne, 25},
		{"from one last", State{Current: 4, Total: 4}, ProgressFromOne, 100},
		{"from zero first", State{Current: 1, Total: 5}, ProgressFromZero, 0},
		{"from zero middle", State{Current: 3, Total: 5}, ProgressFromZero, 50},
		{"from zero last", State{Current: 5, Total: 5}, ProgressFromZero, 100},
		{"from zero single slide", State{Current: 1, Total: 1}, ProgressFromZero, 100},
		{"empty deck", State{}, ProgressFromOne, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Progress(tt.state, tt.mode); got != tt.want {
				t.Fatalf("Progress() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgressWidth(t *testing.T) {
	v := Render(State{Current: 2, Total: 4}, ProgressFromOne)
	if v.ProgressWidth != "50%" {
		t.Fatalf("ProgressWidth = %q, want 50%%", v.ProgressWidth)
	}
}

func TestParseProgressMode(t *testing.T) {
	if m, err := ParseProgressMode(""); err != nil || m != ProgressFromOne {
		t.Fatalf("ParseProgressMode(\"\") = %q, %v", m, err)
	}
	if m, err := ParseProgressMode("from_zero"); err != nil || m != ProgressFromZero {
		t.Fatalf("ParseProgressMode(from_zero) = %q, %v", m, err)
	}
	if _, err := ParseProgressMode("halfway"); err == nil {
		t.Fatalf("ParseProgressMode(halfway) error = nil, want error")
	}
}

func TestTimelineHighlightAndReset(t *testing.T) {
	tl, err := NewTimeline(4)
	if err != nil {
		t.Fatalf("NewTimeline() error = %v", err)
	}
	if tl.Active() != 1 {
		t.Fatalf("initial phase = %d, want 1", tl.Active())
	}
	if !tl.Highlight(3) || tl.Active() != 3 {
		t.Fatalf("Highlight(3) did not activate phase 3")
	}
	if tl.Highlight(3) {
		t.Fatalf("Highlight(3) twice reported a change")
	}
	if tl.Highlight(5) || tl.Highlight(0) {
		t.Fatalf("out-of-range Highlight reported a change")
	}
	if !tl.Reset() || tl.Active() != 1 {
		t.Fatalf("Reset() did not return to phase 1")
	}
	if tl.Reset() {
		t.Fatalf("Reset() on phase 1 reported a change")
	}
}
