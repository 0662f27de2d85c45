package cdpcontrol

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgnsrekt/deck_agent/internal/charts"
)

// Evaluator runs envelope scripts on the deck tab. *Client implements it.
type Evaluator interface {
	Eval(ctx context.Context, js string, out any) error
}

// Bind resolves the deck's DOM contract in the mirrored tab and checks the
// page has total slides and indicators.
func Bind(ctx context.Context, ev Evaluator, total int) (Binding, error) {
	var b Binding
	if err := ev.Eval(ctx, jsBind(), &b); err != nil {
		return Binding{}, err
	}
	if b.Slides > 0 && b.Slides != total {
		b.Missing = append(b.Missing, fmt.Sprintf(".slide[data-slide] (found %d of %d)", b.Slides, total))
	}
	if b.Indicators > 0 && b.Indicators != total {
		b.Missing = append(b.Missing, fmt.Sprintf(".indicator (found %d of %d)", b.Indicators, total))
	}
	return b, nil
}

// ChartJSEngine draws charts with the page's own Chart.js.
type ChartJSEngine struct {
	ev    Evaluator
	style charts.Defaults
}

func NewChartJSEngine(ev Evaluator, style charts.Defaults) *ChartJSEngine {
	return &ChartJSEngine{ev: ev, style: style}
}

func (e *ChartJSEngine) Name() string { return "chartjs" }

func (e *ChartJSEngine) Probe(ctx context.Context, slot charts.SlotID) error {
	return chartErr(e.ev.Eval(ctx, jsProbeChart(slot), nil))
}

func (e *ChartJSEngine) Construct(ctx context.Context, slot charts.SlotID, cfg charts.Config) (charts.Handle, error) {
	var out struct {
		Created bool `json:"created"`
	}
	if err := e.ev.Eval(ctx, jsConstructChart(slot, cfg, e.style), &out); err != nil {
		return nil, chartErr(err)
	}
	return &chartJSHandle{slot: slot, ev: e.ev}, nil
}

type chartJSHandle struct {
	slot charts.SlotID
	ev   Evaluator
}

func (h *chartJSHandle) Slot() charts.SlotID { return h.slot }

// Resize lets Chart.js re-measure its container; the page's size is what
// changed, so width and height are not needed.
func (h *chartJSHandle) Resize(ctx context.Context, width, height int) error {
	return h.ev.Eval(ctx, jsResizeChart(h.slot), nil)
}

// chartErr maps script failures onto the charts sentinel errors.
func chartErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *CodedError
	if !errors.As(err, &coded) {
		return err
	}
	switch coded.Code {
	case codeEngineUnavailable:
		return fmt.Errorf("%w: %s", charts.ErrEngineUnavailable, coded.Message)
	case codeNoSurface, CodeCDPUnavailable:
		return fmt.Errorf("%w: %v", charts.ErrNoSurface, err)
	default:
		return err
	}
}
