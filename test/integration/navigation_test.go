//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestNavigationBounds(t *testing.T) {
	first := env.nav(t, "first", nil)
	requireField(t, first.View.Current, 1, "current")
	requireField(t, first.View.PrevDisabled, true, "prev_disabled")

	again := env.nav(t, "previous", nil)
	requireField(t, again.Changed, false, "changed at first slide")
	requireField(t, again.View.Current, 1, "current")

	next := env.nav(t, "next", nil)
	requireField(t, next.Changed, true, "changed")
	requireField(t, next.View.Current, 2, "current")

	last := env.nav(t, "last", nil)
	requireField(t, last.View.Current, env.Total, "current")
	requireField(t, last.View.NextDisabled, true, "next_disabled")
	requireField(t, last.View.Progress, 100.0, "progress")

	end := env.nav(t, "next", nil)
	requireField(t, end.Changed, false, "changed at last slide")
}

func TestGoToOutOfRangeKeepsSlide(t *testing.T) {
	env.nav(t, "goto", map[string]any{"slide": 2})

	for _, slide := range []int{0, -1, env.Total + 1} {
		res := env.nav(t, "goto", map[string]any{"slide": slide})
		if res.Changed {
			t.Fatalf("goto %d changed the slide", slide)
		}
		requireField(t, res.View.Current, 2, "current")
	}

	resp := env.GET(t, "/api/v1/deck/state")
	requireStatus(t, resp, http.StatusOK)
	state := decodeJSON[deckView](t, resp)
	requireField(t, state.Current, 2, "state current")
}

func TestGoToSameSlideIsNoop(t *testing.T) {
	env.nav(t, "goto", map[string]any{"slide": 1})
	res := env.nav(t, "goto", map[string]any{"slide": 1})
	requireField(t, res.Changed, false, "changed")
}

func TestPhaseHighlightAndReset(t *testing.T) {
	res := env.nav(t, "phase", map[string]any{"phase": 2})
	if res.View.Phase == 0 {
		t.Skip("deck has no timeline slide")
	}
	requireField(t, res.View.Phase, 2, "phase")

	reset := env.nav(t, "phase", map[string]any{"phase": 0})
	requireField(t, reset.View.Phase, 1, "phase after reset")
}
