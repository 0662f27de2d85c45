package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/dgnsrekt/deck_agent/internal/charts"
	"github.com/dgnsrekt/deck_agent/internal/deck"
)

// DeckConfig describes the presentation: where its slides come from and how
// navigation behaves.
type DeckConfig struct {
	Title string `koanf:"title"`
	// Source is a markdown file whose slides are separated by "---" lines.
	Source string `koanf:"source"`
	// SlidesGlob selects one markdown file per slide, ordered by path.
	SlidesGlob string `koanf:"slides_glob"`
	// TotalSlides generates placeholder slides when neither Source nor
	// SlidesGlob is set. A slide source decides the count itself.
	TotalSlides  int              `koanf:"total_slides"`
	ProgressMode string           `koanf:"progress_mode"`
	ChartDelayMS int              `koanf:"chart_delay_ms"`
	ChartWidth   int              `koanf:"chart_width"`
	ChartHeight  int              `koanf:"chart_height"`
	Swipe        SwipeConfig      `koanf:"swipe"`
	Charts       []ChartPlacement `koanf:"charts"`
	Timeline     TimelineConfig   `koanf:"timeline"`

	// BaseDir is the directory relative paths resolve against.
	BaseDir string `koanf:"-"`
}

type SwipeConfig struct {
	MinDistance   float64 `koanf:"min_distance"`
	MaxDurationMS int     `koanf:"max_duration_ms"`
}

// ChartPlacement puts a chart slot on a slide.
type ChartPlacement struct {
	Slide int    `koanf:"slide"`
	Slot  string `koanf:"slot"`
}

// TimelineConfig marks the slide carrying the phase timeline. Slide 0
// disables it.
type TimelineConfig struct {
	Slide  int      `koanf:"slide"`
	Phases []string `koanf:"phases"`
}

// DefaultDeckConfig returns the built-in twelve slide deck.
func DefaultDeckConfig() *DeckConfig {
	return &DeckConfig{
		Title:        "Presentation",
		TotalSlides:  12,
		ProgressMode: string(deck.ProgressFromOne),
		ChartDelayMS: int(deck.DefaultChartDelay / time.Millisecond),
		ChartWidth:   640,
		ChartHeight:  360,
		Swipe: SwipeConfig{
			MinDistance:   50,
			MaxDurationMS: 800,
		},
	}
}

func defaultCharts() []ChartPlacement {
	return []ChartPlacement{
		{Slide: 2, Slot: string(charts.SlotMarket)},
		{Slide: 4, Slot: string(charts.SlotAchievements)},
		{Slide: 7, Slot: string(charts.SlotROI)},
	}
}

func defaultTimeline() TimelineConfig {
	return TimelineConfig{Slide: 6, Phases: []string{"Phase 1", "Phase 2", "Phase 3", "Phase 4"}}
}

// LoadDeck reads the deck file at path, if it exists, and overlays DECK_*
// environment variables (DECK_PROGRESS_MODE, DECK_SWIPE__MIN_DISTANCE, ...).
// List settings left unset fall back to the built-in deck's values.
func LoadDeck(path string) (*DeckConfig, error) {
	k := koanf.New(".")
	cfg := DefaultDeckConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading deck %s: %w", path, err)
		}
		cfg.BaseDir = filepath.Dir(path)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing deck %s: %w", path, err)
	}

	if err := k.Load(env.Provider("DECK_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "DECK_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling deck: %w", err)
	}
	if !k.Exists("charts") {
		cfg.Charts = defaultCharts()
	}
	if !k.Exists("timeline") {
		cfg.Timeline = defaultTimeline()
	}
	if cfg.BaseDir == "" {
		cfg.BaseDir = "."
	}
	return cfg, cfg.Validate()
}

// Validate checks settings that do not depend on slide content.
func (c *DeckConfig) Validate() error {
	if c.Source != "" && c.SlidesGlob != "" {
		return fmt.Errorf("deck: source and slides_glob are mutually exclusive")
	}
	if c.Source == "" && c.SlidesGlob == "" && c.TotalSlides < 1 {
		return fmt.Errorf("deck: total_slides must be positive without a slide source")
	}
	if _, err := deck.ParseProgressMode(c.ProgressMode); err != nil {
		return err
	}
	if c.ChartDelayMS < 0 {
		return fmt.Errorf("deck: chart_delay_ms must be non-negative")
	}
	if c.Swipe.MinDistance <= 0 {
		return fmt.Errorf("deck: swipe.min_distance must be positive")
	}
	if c.Swipe.MaxDurationMS < 0 {
		return fmt.Errorf("deck: swipe.max_duration_ms must be non-negative")
	}
	seen := make(map[int]bool, len(c.Charts))
	for i, p := range c.Charts {
		if _, err := charts.ParseSlot(p.Slot); err != nil {
			return fmt.Errorf("deck: charts[%d]: %w", i, err)
		}
		if p.Slide < 1 {
			return fmt.Errorf("deck: charts[%d]: slide must be positive", i)
		}
		if seen[p.Slide] {
			return fmt.Errorf("deck: charts[%d]: slide %d already has a chart", i, p.Slide)
		}
		seen[p.Slide] = true
	}
	if c.Timeline.Slide < 0 {
		return fmt.Errorf("deck: timeline.slide must be non-negative")
	}
	if c.Timeline.Slide > 0 && len(c.Timeline.Phases) == 0 {
		return fmt.Errorf("deck: timeline needs at least one phase")
	}
	return nil
}

// CheckTotal validates slide references against the final slide count.
func (c *DeckConfig) CheckTotal(total int) error {
	if total < 1 {
		return fmt.Errorf("deck: no slides")
	}
	for _, p := range c.Charts {
		if p.Slide > total {
			return fmt.Errorf("deck: chart %s placed on slide %d of %d", p.Slot, p.Slide, total)
		}
	}
	if c.Timeline.Slide > total {
		return fmt.Errorf("deck: timeline on slide %d of %d", c.Timeline.Slide, total)
	}
	return nil
}

func (c *DeckConfig) Progress() deck.ProgressMode {
	m, err := deck.ParseProgressMode(c.ProgressMode)
	if err != nil {
		return deck.ProgressFromOne
	}
	return m
}

func (c *DeckConfig) ChartDelay() time.Duration {
	return time.Duration(c.ChartDelayMS) * time.Millisecond
}

func (c *DeckConfig) SwipeDuration() time.Duration {
	return time.Duration(c.Swipe.MaxDurationMS) * time.Millisecond
}

// SlideCharts maps slide ordinals to chart slots.
func (c *DeckConfig) SlideCharts() map[int]charts.SlotID {
	out := make(map[int]charts.SlotID, len(c.Charts))
	for _, p := range c.Charts {
		out[p.Slide] = charts.SlotID(p.Slot)
	}
	return out
}

// Resolve returns p relative to the deck file's directory.
func (c *DeckConfig) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}
