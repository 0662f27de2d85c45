package cdpcontrol

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/dgnsrekt/deck_agent/internal/charts"
	"github.com/dgnsrekt/deck_agent/internal/deck"
)

const retryDelay = time.Second

// PageDriver is what the mirror needs from a CDP client.
type PageDriver interface {
	Evaluator
	EnablePageDomain(ctx context.Context) error
	RegisterCDPEventHandler(method string, fn func(sessionID string, params json.RawMessage)) (func(), error)
}

// MirrorStatus is a snapshot of the mirrored tab.
type MirrorStatus struct {
	Bound     bool                `json:"bound"`
	Binding   Binding             `json:"binding"`
	Charts    []charts.SlotStatus `json:"charts"`
	Applied   int                 `json:"applied_slide"`
	LastError string              `json:"last_error,omitempty"`
}

// Mirror shows views in a real browser tab and draws charts there with
// Chart.js. Calls from the presenter only record work; a single worker
// goroutine talks to the browser, always applying the newest view.
type Mirror struct {
	driver  PageDriver
	total   int
	style   charts.Defaults
	configs map[charts.SlotID]charts.Config
	timeout time.Duration

	wake chan struct{}

	mu        sync.Mutex
	view      *deck.View // not yet applied
	latest    *deck.View
	slots     map[charts.SlotID]bool // every slot ever requested
	pending   []charts.SlotID
	resize    bool
	rebind    bool
	binding   Binding
	bound     bool
	applied   int
	lastError string
	charts    *charts.Initializer

	unregister func()
	done       chan struct{}
}

// MirrorOptions configures a Mirror. Configs defaults to the built-in
// charts.
type MirrorOptions struct {
	Total   int
	Style   charts.Defaults
	Configs map[charts.SlotID]charts.Config
	// Timeout bounds each browser round trip.
	Timeout time.Duration
}

func NewMirror(driver PageDriver, opts MirrorOptions) *Mirror {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	m := &Mirror{
		driver:  driver,
		total:   opts.Total,
		style:   opts.Style,
		configs: opts.Configs,
		timeout: opts.Timeout,
		wake:    make(chan struct{}, 1),
		slots:   make(map[charts.SlotID]bool),
		rebind:  true,
		done:    make(chan struct{}),
	}
	m.charts = charts.NewInitializer(NewChartJSEngine(driver, opts.Style), opts.Configs)
	return m
}

func (m *Mirror) Name() string { return "mirror" }

// Start subscribes to page loads and runs the worker until ctx ends.
func (m *Mirror) Start(ctx context.Context) error {
	if err := m.driver.EnablePageDomain(ctx); err != nil {
		return err
	}
	unreg, err := m.driver.RegisterCDPEventHandler("Page.loadEventFired", func(string, json.RawMessage) {
		m.mu.Lock()
		m.rebind = true
		m.mu.Unlock()
		m.signal()
	})
	if err != nil {
		return err
	}
	m.unregister = unreg
	go m.run(ctx)
	m.signal()
	return nil
}

// Done is closed when the worker exits.
func (m *Mirror) Done() <-chan struct{} { return m.done }

// Apply records v as the view to show next.
func (m *Mirror) Apply(_ context.Context, v deck.View) error {
	m.mu.Lock()
	m.view = &v
	m.latest = &v
	m.mu.Unlock()
	m.signal()
	return nil
}

// EnsureChart asks for slot to be drawn in the tab.
func (m *Mirror) EnsureChart(slot charts.SlotID) {
	m.mu.Lock()
	m.slots[slot] = true
	m.pending = append(m.pending, slot)
	m.mu.Unlock()
	m.signal()
}

// ResizeCharts asks every drawn chart to fit its container again.
func (m *Mirror) ResizeCharts(width, height int) {
	m.mu.Lock()
	m.resize = true
	m.mu.Unlock()
	m.signal()
}

func (m *Mirror) Status() MirrorStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MirrorStatus{
		Bound:     m.bound,
		Binding:   m.binding,
		Charts:    m.charts.Status(),
		Applied:   m.applied,
		LastError: m.lastError,
	}
}

func (m *Mirror) signal() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *Mirror) run(ctx context.Context) {
	defer close(m.done)
	defer func() {
		if m.unregister != nil {
			m.unregister()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.wake:
			m.step(ctx)
		}
	}
}

// step does all recorded work once.
func (m *Mirror) step(ctx context.Context) {
	m.mu.Lock()
	rebind := m.rebind
	m.rebind = false
	m.mu.Unlock()

	if rebind {
		m.bind(ctx)
	}

	m.mu.Lock()
	view := m.view
	m.view = nil
	pending := m.pending
	m.pending = nil
	resize := m.resize
	m.resize = false
	in := m.charts
	m.mu.Unlock()

	if view != nil {
		m.applyView(ctx, *view)
	}
	for _, slot := range pending {
		callCtx, cancel := context.WithTimeout(ctx, m.timeout)
		in.Ensure(callCtx, slot)
		cancel()
	}
	if resize {
		callCtx, cancel := context.WithTimeout(ctx, m.timeout)
		in.ResizeAll(callCtx, 0, 0)
		cancel()
	}
}

// bind re-resolves the DOM after a page load. The reload dropped every
// chart instance and reset the page to its first slide, so a fresh
// initializer takes over, requested slots are drawn again and the latest
// view is reapplied.
func (m *Mirror) bind(ctx context.Context) {
	callCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	b, err := Bind(callCtx, m.driver, m.total)
	if err != nil {
		slog.Warn("mirror bind failed", "error", err)
		m.mu.Lock()
		m.bound = false
		m.lastError = err.Error()
		m.rebind = true
		m.mu.Unlock()
		time.AfterFunc(retryDelay, m.signal)
		return
	}
	if !b.Complete() {
		slog.Warn("mirror page is missing elements", "missing", b.Missing)
	}
	if !b.ChartJS {
		slog.Warn("mirror page has no Chart.js; charts stay empty")
	}

	m.mu.Lock()
	m.binding = b
	m.bound = true
	m.lastError = ""
	m.charts = charts.NewInitializer(NewChartJSEngine(m.driver, m.style), m.configs)
	for _, slot := range charts.SortedSlots(m.slots) {
		m.pending = append(m.pending, slot)
	}
	if m.view == nil {
		m.view = m.latest
	}
	m.mu.Unlock()
	slog.Info("mirror bound", "slides", b.Slides, "canvases", b.Canvases)
}

func (m *Mirror) applyView(ctx context.Context, v deck.View) {
	callCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	var out struct {
		Missing []string `json:"missing"`
	}
	if err := m.driver.Eval(callCtx, jsApplyView(v), &out); err != nil {
		slog.Warn("mirror apply failed", "current", v.Current, "error", err)
		m.mu.Lock()
		m.lastError = err.Error()
		// keep the newest view unless a newer one arrived meanwhile
		if m.view == nil {
			m.view = &v
		}
		m.rebind = true
		m.mu.Unlock()
		time.AfterFunc(retryDelay, m.signal)
		return
	}
	if len(out.Missing) > 0 {
		slog.Debug("mirror skipped missing elements", "missing", out.Missing)
	}
	m.mu.Lock()
	m.applied = v.Current
	m.mu.Unlock()
}
