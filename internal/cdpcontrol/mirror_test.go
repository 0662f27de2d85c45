package cdpcontrol

import (
	"context"
	"testing"
	"time"

	"github.com/dgnsrekt/deck_agent/internal/charts"
	"github.com/dgnsrekt/deck_agent/internal/deck"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func startMirror(t *testing.T, page *fakePage, total int) *Mirror {
	t.Helper()
	m := NewMirror(page, MirrorOptions{Total: total, Style: charts.DefaultStyle(), Timeout: time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		<-m.Done()
	})
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	return m
}

func slotReady(m *Mirror, slot charts.SlotID) bool {
	for _, s := range m.Status().Charts {
		if s.Slot == slot {
			return s.Ready
		}
	}
	return false
}

func TestMirrorAppliesViewAndDrawsCharts(t *testing.T) {
	page := newFakePage(completeBinding(3))
	m := startMirror(t, page, 3)

	if err := m.Apply(context.Background(), deck.View{Current: 2, Total: 3, CurrentLabel: "2", TotalLabel: "3"}); err != nil {
		t.Fatalf("Apply() = %v", err)
	}
	m.EnsureChart(charts.SlotMarket)

	waitFor(t, "view applied and market drawn", func() bool {
		return m.Status().Applied == 2 && slotReady(m, charts.SlotMarket)
	})
	st := m.Status()
	if !st.Bound || !st.Binding.Complete() {
		t.Fatalf("Status() = %+v; want bound and complete", st)
	}
	if slotReady(m, charts.SlotROI) {
		t.Fatal("roi drawn without being requested")
	}
	if got := page.count("new Chart("); got != 1 {
		t.Fatalf("construct scripts = %d; want 1", got)
	}
}

func TestMirrorRebindsAfterReload(t *testing.T) {
	page := newFakePage(completeBinding(3))
	m := startMirror(t, page, 3)

	m.Apply(context.Background(), deck.View{Current: 3, Total: 3})
	m.EnsureChart(charts.SlotROI)
	waitFor(t, "roi drawn", func() bool { return slotReady(m, charts.SlotROI) })

	applied := page.count(`toggleAll(".slide[data-slide]"`)
	page.fire("Page.loadEventFired")

	waitFor(t, "roi redrawn after reload", func() bool { return page.count("new Chart(") == 2 })
	waitFor(t, "view reapplied after reload", func() bool {
		return page.count(`toggleAll(".slide[data-slide]"`) > applied
	})
	if got := page.count("chart_js:"); got < 2 {
		t.Fatalf("bind scripts = %d; want at least 2", got)
	}
	if m.Status().Applied != 3 {
		t.Fatalf("Applied = %d; want 3", m.Status().Applied)
	}
}

func TestMirrorBindFailureIsReported(t *testing.T) {
	page := newFakePage(completeBinding(3))
	page.bindErr = newError(CodeCDPUnavailable, "connect to CDP failed", nil)
	m := startMirror(t, page, 3)

	waitFor(t, "bind error", func() bool { return m.Status().LastError != "" })
	if m.Status().Bound {
		t.Fatal("Bound = true after bind failure")
	}

	page.set(func(f *fakePage) { f.bindErr = nil })
	waitFor(t, "bind retry", func() bool { return m.Status().Bound })
	if m.Status().LastError != "" {
		t.Fatalf("LastError = %q after successful bind", m.Status().LastError)
	}
}

func TestMirrorResizeCharts(t *testing.T) {
	page := newFakePage(completeBinding(3))
	m := startMirror(t, page, 3)

	m.EnsureChart(charts.SlotAchievements)
	waitFor(t, "achievements drawn", func() bool { return slotReady(m, charts.SlotAchievements) })
	m.ResizeCharts(800, 600)
	waitFor(t, "resize script", func() bool { return page.count("chart.resize()") == 1 })
}
