package charts

import (
	"fmt"
	"sort"
	"strconv"
)

// SlotID names a chart placeholder on the deck page. The DOM surface for a
// slot is the element with id "<slot>Chart".
type SlotID string

const (
	SlotMarket       SlotID = "market"
	SlotAchievements SlotID = "achievements"
	SlotROI          SlotID = "roi"
)

// ElementID returns the DOM id of the slot's drawing surface.
func (s SlotID) ElementID() string { return string(s) + "Chart" }

// ParseSlot validates a slot name against the known configs.
func ParseSlot(s string) (SlotID, error) {
	id := SlotID(s)
	if _, ok := Builtin()[id]; !ok {
		return "", fmt.Errorf("charts: unknown slot %q", s)
	}
	return id, nil
}

// Dataset mirrors the Chart.js dataset shape.
type Dataset struct {
	Label           string    `json:"label,omitempty"`
	Data            []float64 `json:"data"`
	BackgroundColor []string  `json:"backgroundColor"`
	BorderColor     string    `json:"borderColor,omitempty"`
	BorderWidth     int       `json:"borderWidth,omitempty"`
	BorderRadius    int       `json:"borderRadius,omitempty"`
	BorderSkipped   *bool     `json:"borderSkipped,omitempty"`
}

type Data struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Config is a declarative chart description. Type, Data and Options are
// passed to the charting engine as-is; Ticks and Tooltip describe value
// formatting that cannot be expressed as plain data.
type Config struct {
	Type    string         `json:"type"`
	Data    Data           `json:"data"`
	Options map[string]any `json:"options,omitempty"`

	Ticks   *Format `json:"-"`
	Tooltip *Format `json:"-"`
}

// Format turns a numeric value into a display string.
type Format struct {
	Prefix         string `json:"prefix,omitempty"`
	NegativePrefix string `json:"negative_prefix,omitempty"`
	Suffix         string `json:"suffix,omitempty"`
	Abs            bool   `json:"abs,omitempty"`
	WithLabel      bool   `json:"with_label,omitempty"`
}

// Apply formats v. label is used only when WithLabel is set.
func (f Format) Apply(label string, v float64) string {
	prefix := f.Prefix
	if v < 0 && f.NegativePrefix != "" {
		prefix = f.NegativePrefix
	}
	if f.Abs && v < 0 {
		v = -v
	}
	s := prefix + strconv.FormatFloat(v, 'f', -1, 64) + f.Suffix
	if f.WithLabel && label != "" {
		return label + ": " + s
	}
	return s
}

// Defaults are the global styling applied before any chart is constructed.
type Defaults struct {
	FontFamily        string `json:"font_family"`
	FontSize          int    `json:"font_size"`
	Color             string `json:"color"`
	LegendDisplay     bool   `json:"legend_display"`
	TooltipBackground string `json:"tooltip_background"`
	TooltipTitleColor string `json:"tooltip_title_color"`
	TooltipBodyColor  string `json:"tooltip_body_color"`
	TooltipRadius     int    `json:"tooltip_radius"`
}

func DefaultStyle() Defaults {
	return Defaults{
		FontFamily:        "FKGroteskNeue, Inter, sans-serif",
		FontSize:          12,
		Color:             "#626c74",
		LegendDisplay:     true,
		TooltipBackground: "rgba(233, 30, 99, 0.9)",
		TooltipTitleColor: "#ffffff",
		TooltipBodyColor:  "#ffffff",
		TooltipRadius:     8,
	}
}

const (
	colorNegative = "#B4413C"
	colorPositive = "#1FB8CD"
)

// Market is the market share doughnut.
func Market() Config {
	return Config{
		Type: "doughnut",
		Data: Data{
			Labels: []string{"YesMadam Current", "YesMadam Potential", "Urban Company", "Other Players"},
			Datasets: []Dataset{{
				Data:            []float64{200, 600, 1145, 3000},
				BackgroundColor: []string{"#E91E63", "#F8BBD9", "#AD1457", "#ECEBD5"},
				BorderWidth:     2,
				BorderColor:     "#ffffff",
			}},
		},
		Options: map[string]any{
			"responsive":          true,
			"maintainAspectRatio": false,
			"plugins": map[string]any{
				"legend": map[string]any{
					"position": "bottom",
					"labels":   map[string]any{"padding": 20, "usePointStyle": true},
				},
			},
		},
		Tooltip: &Format{Prefix: "₹", Suffix: "Cr", WithLabel: true},
	}
}

// Achievements is the pilot results bar chart.
func Achievements() Config {
	return Config{
		Type: "bar",
		Data: Data{
			Labels: []string{"ARPU Growth", "Churn Reduction", "LTV Improvement", "Engagement Boost"},
			Datasets: []Dataset{{
				Label:           "Improvement %",
				Data:            []float64{39, 35, 157, 19},
				BackgroundColor: []string{"#1FB8CD", "#FFC185", "#B4413C", "#5D878F"},
				BorderRadius:    6,
				BorderSkipped:   boolPtr(false),
			}},
		},
		Options: barOptions(nil),
		Ticks:   &Format{Suffix: "%"},
		Tooltip: &Format{Suffix: "% improvement"},
	}
}

// ROI is the investment vs. returns bar chart. Negative amounts are
// investment and get their own color.
func ROI() Config {
	values := []float64{-120, 60, 40, 100, 200}
	return Config{
		Type: "bar",
		Data: Data{
			Labels: []string{"Investment", "ARPU Growth", "Churn Reduction", "CLTV Improvement", "Total Returns"},
			Datasets: []Dataset{{
				Label:           "Amount (₹Cr)",
				Data:            values,
				BackgroundColor: signColors(values),
				BorderRadius:    6,
				BorderSkipped:   boolPtr(false),
			}},
		},
		Options: barOptions(map[string]any{"maxRotation": 45, "minRotation": 0}),
		Ticks:   &Format{Prefix: "₹", Suffix: "Cr", Abs: true},
		Tooltip: &Format{Prefix: "Returns: +₹", NegativePrefix: "Investment: -₹", Suffix: "Cr", Abs: true},
	}
}

// Builtin returns the configs for every known slot.
func Builtin() map[SlotID]Config {
	return map[SlotID]Config{
		SlotMarket:       Market(),
		SlotAchievements: Achievements(),
		SlotROI:          ROI(),
	}
}

// SortedSlots returns the keys of m in lexical order.
func SortedSlots[V any](m map[SlotID]V) []SlotID {
	out := make([]SlotID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func barOptions(xTicks map[string]any) map[string]any {
	x := map[string]any{"grid": map[string]any{"display": false}}
	if xTicks != nil {
		x["ticks"] = xTicks
	}
	return map[string]any{
		"responsive":          true,
		"maintainAspectRatio": false,
		"scales": map[string]any{
			"y": map[string]any{
				"beginAtZero": true,
				"grid":        map[string]any{"color": "rgba(0,0,0,0.1)"},
			},
			"x": x,
		},
		"plugins": map[string]any{
			"legend": map[string]any{"display": false},
		},
	}
}

func signColors(values []float64) []string {
	out := make([]string, len(values))
	for i, v := range values {
		if v < 0 {
			out[i] = colorNegative
		} else {
			out[i] = colorPositive
		}
	}
	return out
}

func boolPtr(b bool) *bool { return &b }
