package deck

import (
	"log/slog"
	"time"
)

// DefaultChartDelay is how long after entering a slide its chart hook runs.
const DefaultChartDelay = 100 * time.Millisecond

// Scheduler defers a callback onto the goroutine that owns the Controller.
type Scheduler interface {
	After(d time.Duration, fn func())
}

// Options configures a Controller.
type Options struct {
	Total      int
	ChartDelay time.Duration
	Scheduler  Scheduler

	// Render is called synchronously after every successful transition.
	Render func(State)
	// OnEnter runs ChartDelay after a slide becomes current.
	OnEnter func(slide int)
}

// Controller owns the navigation state. It is not safe for concurrent use;
// all calls must come from the single event loop goroutine.
type Controller struct {
	state   State
	delay   time.Duration
	sched   Scheduler
	render  func(State)
	onEnter func(slide int)
}

// NewController validates opts and returns a Controller positioned on slide 1.
// Nothing is rendered until Start.
func NewController(opts Options) (*Controller, error) {
	st, err := NewState(opts.Total)
	if err != nil {
		return nil, err
	}
	delay := opts.ChartDelay
	if delay < 0 {
		delay = 0
	}
	return &Controller{
		state:   st,
		delay:   delay,
		sched:   opts.Scheduler,
		render:  opts.Render,
		onEnter: opts.OnEnter,
	}, nil
}

// Start performs the initial render and schedules the entry hook for slide 1.
func (c *Controller) Start() {
	c.emit()
}

// GoTo moves to target when it is within [1, Total]. Out-of-range targets
// are ignored and report false without rendering.
func (c *Controller) GoTo(target int) bool {
	if !c.state.Contains(target) {
		slog.Debug("navigation ignored", "target", target, "total", c.state.Total)
		return false
	}
	c.state.Current = target
	c.emit()
	return true
}

// Next moves forward one slide. It is a no-op on the last slide.
func (c *Controller) Next() bool { return c.GoTo(c.state.Current + 1) }

// Previous moves back one slide. It is a no-op on the first slide.
func (c *Controller) Previous() bool { return c.GoTo(c.state.Current - 1) }

func (c *Controller) First() bool { return c.GoTo(1) }

func (c *Controller) Last() bool { return c.GoTo(c.state.Total) }

// State returns a copy of the current state.
func (c *Controller) State() State { return c.state }

func (c *Controller) emit() {
	if c.render != nil {
		c.render(c.state)
	}
	if c.onEnter == nil {
		return
	}
	slide := c.state.Current
	if c.sched == nil {
		c.onEnter(slide)
		return
	}
	c.sched.After(c.delay, func() { c.onEnter(slide) })
}
