package presenter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dgnsrekt/deck_agent/internal/charts"
	"github.com/dgnsrekt/deck_agent/internal/deck"
	"github.com/dgnsrekt/deck_agent/internal/input"
	"github.com/dgnsrekt/deck_agent/internal/loop"
	"github.com/dgnsrekt/deck_agent/internal/telemetry"
)

// Surface is anything a View can be shown on.
type Surface interface {
	Name() string
	// Apply must not block on slow clients.
	Apply(ctx context.Context, v deck.View) error
}

// ChartHost is implemented by surfaces that draw their own charts, such as
// a mirrored browser tab. Both calls must return without waiting.
type ChartHost interface {
	EnsureChart(slot charts.SlotID)
	ResizeCharts(width, height int)
}

// Options configures a Service.
type Options struct {
	Total      int
	Progress   deck.ProgressMode
	ChartDelay time.Duration
	// SlideCharts maps slide ordinals to the chart drawn on them.
	SlideCharts map[int]charts.SlotID
	// TimelineSlide is the ordinal of the phase timeline slide; 0 disables it.
	TimelineSlide  int
	TimelinePhases int
	// Charts draws charts served by this process. Optional.
	Charts *charts.Initializer
}

// Result is returned from every intent.
type Result struct {
	Changed bool      `json:"changed"`
	View    deck.View `json:"view"`
}

// Service owns the deck state and runs all of its mutations on a single
// event loop. HTTP and WebSocket handlers call into it from any goroutine.
type Service struct {
	loop        *loop.Loop
	ctrl        *deck.Controller
	mode        deck.ProgressMode
	slideCharts map[int]charts.SlotID
	timeline    *deck.Timeline
	timelineAt  int
	charts      *charts.Initializer
	tracer      trace.Tracer

	// loop-owned
	surfaces   []Surface
	baseCtx    context.Context
	loadLogged bool

	startOnce sync.Once
	startErr  error

	mu   sync.RWMutex
	view deck.View
}

func NewService(l *loop.Loop, opts Options) (*Service, error) {
	if l == nil {
		return nil, errors.New("presenter: loop is required")
	}
	mode := opts.Progress
	if mode == "" {
		mode = deck.ProgressFromOne
	}
	s := &Service{
		loop:        l,
		mode:        mode,
		slideCharts: opts.SlideCharts,
		charts:      opts.Charts,
		timelineAt:  opts.TimelineSlide,
		tracer:      telemetry.Tracer("presenter"),
		baseCtx:     context.Background(),
	}
	for slide := range opts.SlideCharts {
		if slide < 1 || slide > opts.Total {
			return nil, fmt.Errorf("presenter: chart on slide %d outside 1..%d", slide, opts.Total)
		}
	}
	if opts.TimelineSlide > 0 {
		tl, err := deck.NewTimeline(opts.TimelinePhases)
		if err != nil {
			return nil, fmt.Errorf("presenter: %w", err)
		}
		s.timeline = tl
	}
	ctrl, err := deck.NewController(deck.Options{
		Total:      opts.Total,
		ChartDelay: opts.ChartDelay,
		Scheduler:  l,
		Render:     s.render,
		OnEnter:    s.enterSlide,
	})
	if err != nil {
		return nil, fmt.Errorf("presenter: %w", err)
	}
	s.ctrl = ctrl
	s.view = deck.Render(ctrl.State(), mode)
	return s, nil
}

// Start performs the initial render. Repeated calls are no-ops.
func (s *Service) Start(ctx context.Context) error {
	s.startOnce.Do(func() {
		s.startErr = s.loop.Do(ctx, func() error {
			s.baseCtx = context.WithoutCancel(ctx)
			s.ctrl.Start()
			slog.Info("presentation started", "total", s.ctrl.State().Total, "progress_mode", s.mode)
			return nil
		})
	})
	return s.startErr
}

// AddSurface attaches a surface and immediately shows it the current view.
func (s *Service) AddSurface(ctx context.Context, surf Surface) error {
	return s.loop.Do(ctx, func() error {
		s.surfaces = append(s.surfaces, surf)
		s.applyTo(surf, s.currentView())
		slog.Info("surface attached", "surface", surf.Name())
		return nil
	})
}

// RemoveSurface detaches every surface with the given name.
func (s *Service) RemoveSurface(ctx context.Context, name string) error {
	return s.loop.Do(ctx, func() error {
		kept := s.surfaces[:0]
		for _, surf := range s.surfaces {
			if surf.Name() != name {
				kept = append(kept, surf)
			}
		}
		s.surfaces = kept
		return nil
	})
}

// Dispatch applies an intent on the loop and returns the resulting view.
func (s *Service) Dispatch(ctx context.Context, in input.Intent) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "presenter.dispatch",
		trace.WithAttributes(attribute.String("deck.intent", string(in.Kind)), attribute.Int("deck.target", in.Target)))
	defer span.End()

	var res Result
	err := s.loop.Do(ctx, func() error {
		res.Changed = s.apply(in)
		res.View = s.currentView()
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return Result{}, fmt.Errorf("presenter: dispatch %s: %w", in, err)
	}
	span.SetAttributes(attribute.Bool("deck.changed", res.Changed), attribute.Int("deck.current", res.View.Current))
	return res, nil
}

// apply runs on the loop.
func (s *Service) apply(in input.Intent) bool {
	switch in.Kind {
	case input.KindNext:
		return s.ctrl.Next()
	case input.KindPrevious:
		return s.ctrl.Previous()
	case input.KindGoTo:
		return s.ctrl.GoTo(in.Target)
	case input.KindFirst:
		return s.ctrl.First()
	case input.KindLast:
		return s.ctrl.Last()
	case input.KindHighlightPhase:
		if s.timeline == nil || !s.timeline.Highlight(in.Target) {
			return false
		}
		s.publish()
		return true
	case input.KindResetPhase:
		if s.timeline == nil || !s.timeline.Reset() {
			return false
		}
		s.publish()
		return true
	case input.KindResize:
		return s.resize(in.Width, in.Height)
	case input.KindLoaded:
		if !s.loadLogged {
			s.loadLogged = true
			slog.Info("presentation loaded", "load_ms", in.LoadMS)
		}
		return false
	default:
		return false
	}
}

func (s *Service) GoTo(ctx context.Context, slide int) (Result, error) {
	return s.Dispatch(ctx, input.Intent{Kind: input.KindGoTo, Target: slide})
}

func (s *Service) Next(ctx context.Context) (Result, error) {
	return s.Dispatch(ctx, input.Intent{Kind: input.KindNext})
}

func (s *Service) Previous(ctx context.Context) (Result, error) {
	return s.Dispatch(ctx, input.Intent{Kind: input.KindPrevious})
}

func (s *Service) First(ctx context.Context) (Result, error) {
	return s.Dispatch(ctx, input.Intent{Kind: input.KindFirst})
}

func (s *Service) Last(ctx context.Context) (Result, error) {
	return s.Dispatch(ctx, input.Intent{Kind: input.KindLast})
}

func (s *Service) HighlightPhase(ctx context.Context, phase int) (Result, error) {
	return s.Dispatch(ctx, input.Intent{Kind: input.KindHighlightPhase, Target: phase})
}

func (s *Service) ResetPhase(ctx context.Context) (Result, error) {
	return s.Dispatch(ctx, input.Intent{Kind: input.KindResetPhase})
}

func (s *Service) Resize(ctx context.Context, width, height int) (Result, error) {
	return s.Dispatch(ctx, input.Intent{Kind: input.KindResize, Width: width, Height: height})
}

// View returns the most recently rendered view without touching the loop.
func (s *Service) View() deck.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// ChartStatus lists the server-side chart slots.
func (s *Service) ChartStatus() []charts.SlotStatus {
	if s.charts == nil {
		return nil
	}
	return s.charts.Status()
}

// ChartPNG returns the rendered image for slot, if it was initialized with a
// PNG engine.
func (s *Service) ChartPNG(slot charts.SlotID) ([]byte, bool) {
	if s.charts == nil {
		return nil, false
	}
	h, ok := s.charts.Handle(slot)
	if !ok {
		return nil, false
	}
	ph, ok := h.(*charts.PNGHandle)
	if !ok {
		return nil, false
	}
	data, _ := ph.PNG()
	return data, len(data) > 0
}

// PrepareCharts initializes every placed chart at once. Print layouts show
// all slides together and cannot wait for slide entry.
func (s *Service) PrepareCharts(ctx context.Context) error {
	if s.charts == nil {
		return nil
	}
	return s.loop.Do(ctx, func() error {
		added := false
		for _, slot := range charts.SortedSlots(s.placedSlots()) {
			if _, existed := s.charts.Handle(slot); existed {
				continue
			}
			if _, ok := s.charts.Ensure(s.baseCtx, slot); ok {
				added = true
			}
		}
		if added {
			s.publish()
		}
		return nil
	})
}

func (s *Service) placedSlots() map[charts.SlotID]bool {
	out := make(map[charts.SlotID]bool, len(s.slideCharts))
	for _, slot := range s.slideCharts {
		out[slot] = true
	}
	return out
}

// render is the controller's render hook; it runs on the loop.
func (s *Service) render(st deck.State) {
	v := s.buildView(st)
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
	for _, surf := range s.surfaces {
		s.applyTo(surf, v)
	}
}

// publish re-renders the current state after a change that is not a slide
// transition (phase, chart readiness, resize).
func (s *Service) publish() {
	s.render(s.ctrl.State())
}

func (s *Service) currentView() deck.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

func (s *Service) buildView(st deck.State) deck.View {
	v := deck.Render(st, s.mode)
	if s.timeline != nil {
		v.Phase = s.timeline.Active()
	}
	if s.charts != nil {
		ready := s.charts.Ready()
		if len(ready) > 0 {
			v.Charts = make(map[string]deck.ChartView, len(ready))
			for slot, h := range ready {
				cv := deck.ChartView{Slot: string(slot)}
				if r, ok := h.(charts.Revisioned); ok {
					cv.Revision = r.Revision()
				}
				if a, ok := h.(charts.Addressable); ok {
					cv.URL = a.URL()
				}
				v.Charts[string(slot)] = cv
			}
		}
	}
	return v
}

func (s *Service) applyTo(surf Surface, v deck.View) {
	if err := surf.Apply(s.baseCtx, v); err != nil {
		slog.Warn("surface apply failed", "surface", surf.Name(), "current", v.Current, "error", err)
	}
}

// enterSlide runs on the loop ChartDelay after a slide became current. The
// slide may no longer be current; initializing its chart anyway is harmless.
func (s *Service) enterSlide(slide int) {
	slot, ok := s.slideCharts[slide]
	if !ok {
		return
	}
	for _, surf := range s.surfaces {
		if host, ok := surf.(ChartHost); ok {
			host.EnsureChart(slot)
		}
	}
	if s.charts == nil {
		return
	}
	if _, existed := s.charts.Handle(slot); existed {
		return
	}
	if _, ok := s.charts.Ensure(s.baseCtx, slot); ok {
		s.publish()
	}
}

func (s *Service) resize(width, height int) bool {
	for _, surf := range s.surfaces {
		if host, ok := surf.(ChartHost); ok {
			host.ResizeCharts(width, height)
		}
	}
	if s.charts == nil {
		return false
	}
	if s.charts.ResizeAll(s.baseCtx, width, height) == 0 {
		return false
	}
	s.publish()
	return true
}
