package charts

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	minPNGWidth  = 200
	minPNGHeight = 150
)

// PNGEngine renders charts server-side with go-chart. Browsers show the
// result through an <img> pointed at the handle's URL.
type PNGEngine struct {
	Width    int
	Height   int
	Style    Defaults
	BasePath string
}

func NewPNGEngine(width, height int, style Defaults) *PNGEngine {
	return &PNGEngine{Width: width, Height: height, Style: style, BasePath: "/charts"}
}

func (e *PNGEngine) Name() string { return "png" }

// Probe always succeeds: the surface is the HTTP route, which exists for
// every configured slot.
func (e *PNGEngine) Probe(ctx context.Context, slot SlotID) error {
	return ctx.Err()
}

func (e *PNGEngine) Construct(ctx context.Context, slot SlotID, cfg Config) (Handle, error) {
	h := &PNGHandle{slot: slot, cfg: cfg, engine: e}
	if err := h.Resize(ctx, e.Width, e.Height); err != nil {
		return nil, err
	}
	return h, nil
}

// PNGHandle holds the most recent rendering of one chart.
type PNGHandle struct {
	slot   SlotID
	cfg    Config
	engine *PNGEngine

	mu       sync.RWMutex
	png      []byte
	width    int
	height   int
	revision int
}

func (h *PNGHandle) Slot() SlotID { return h.slot }

// Resize redraws the chart at the new size. Sizes below a readable minimum
// are clamped.
func (h *PNGHandle) Resize(ctx context.Context, width, height int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	width = max(width, minPNGWidth)
	height = max(height, minPNGHeight)

	h.mu.RLock()
	same := h.png != nil && h.width == width && h.height == height
	h.mu.RUnlock()
	if same {
		return nil
	}

	data, err := renderPNG(h.cfg, h.engine.Style, width, height)
	if err != nil {
		return fmt.Errorf("charts: render %s: %w", h.slot, err)
	}
	h.mu.Lock()
	h.png = data
	h.width = width
	h.height = height
	h.revision++
	h.mu.Unlock()
	return nil
}

// PNG returns the current image and its revision.
func (h *PNGHandle) PNG() ([]byte, int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.png, h.revision
}

func (h *PNGHandle) Revision() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.revision
}

func (h *PNGHandle) URL() string {
	return fmt.Sprintf("%s/%s.png?rev=%d", h.engine.BasePath, h.slot, h.Revision())
}

func renderPNG(cfg Config, style Defaults, width, height int) ([]byte, error) {
	if len(cfg.Data.Datasets) == 0 {
		return nil, fmt.Errorf("config has no datasets")
	}
	ds := cfg.Data.Datasets[0]
	if len(ds.Data) != len(cfg.Data.Labels) {
		return nil, fmt.Errorf("dataset has %d values for %d labels", len(ds.Data), len(cfg.Data.Labels))
	}

	var buf bytes.Buffer
	switch cfg.Type {
	case "doughnut", "pie":
		pc := chart.PieChart{
			Width:  width,
			Height: height,
			Values: make([]chart.Value, len(ds.Data)),
		}
		for i, v := range ds.Data {
			label := cfg.Data.Labels[i]
			if cfg.Tooltip != nil {
				label = cfg.Tooltip.Apply(label, v)
			}
			pc.Values[i] = chart.Value{
				Value: v,
				Label: label,
				Style: chart.Style{
					FillColor:   hexColor(pick(ds.BackgroundColor, i)),
					StrokeColor: hexColor(ds.BorderColor),
					StrokeWidth: float64(ds.BorderWidth),
					FontSize:    float64(style.FontSize),
					FontColor:   hexColor(style.Color),
				},
			}
		}
		if err := pc.Render(chart.PNG, &buf); err != nil {
			return nil, err
		}
	case "bar":
		bc := chart.BarChart{
			Width:        width,
			Height:       height,
			BarWidth:     max(width/(3*len(ds.Data)), 10),
			UseBaseValue: true,
			BaseValue:    0,
			XAxis:        chart.Style{FontSize: float64(style.FontSize), FontColor: hexColor(style.Color)},
			YAxis: chart.YAxis{
				Style: chart.Style{FontSize: float64(style.FontSize), FontColor: hexColor(style.Color)},
			},
			Bars: make([]chart.Value, len(ds.Data)),
		}
		if cfg.Ticks != nil {
			f := *cfg.Ticks
			bc.YAxis.ValueFormatter = func(v interface{}) string {
				if n, ok := v.(float64); ok {
					return f.Apply("", n)
				}
				return fmt.Sprint(v)
			}
		}
		for i, v := range ds.Data {
			bc.Bars[i] = chart.Value{
				Value: v,
				Label: cfg.Data.Labels[i],
				Style: chart.Style{
					FillColor:   hexColor(pick(ds.BackgroundColor, i)),
					StrokeColor: hexColor(pick(ds.BackgroundColor, i)),
				},
			}
		}
		if err := bc.Render(chart.PNG, &buf); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported chart type %q", cfg.Type)
	}
	return buf.Bytes(), nil
}

func pick(colors []string, i int) string {
	if len(colors) == 0 {
		return ""
	}
	return colors[i%len(colors)]
}

// hexColor converts "#RRGGBB" to a drawing color. Anything else (including
// rgba() strings) yields the zero color, which go-chart treats as unset.
func hexColor(s string) drawing.Color {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 && len(s) != 3 {
		return drawing.Color{}
	}
	return drawing.ColorFromHex(s)
}
