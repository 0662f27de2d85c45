package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgnsrekt/deck_agent/internal/deck"
	"github.com/dgnsrekt/deck_agent/internal/site"
)

// LoadSlides loads the deck file at path and renders its slides. Slide
// files are read relative to the deck file.
func LoadSlides(path string) (*DeckConfig, []deck.Slide, error) {
	cfg, err := LoadDeck(path)
	if err != nil {
		return nil, nil, err
	}
	src := site.Source{
		FS:            os.DirFS(cfg.BaseDir),
		File:          cfg.Source,
		Glob:          cfg.SlidesGlob,
		Total:         cfg.TotalSlides,
		Charts:        cfg.SlideCharts(),
		TimelineSlide: cfg.Timeline.Slide,
	}
	if filepath.IsAbs(cfg.Source) {
		src.FS = os.DirFS(filepath.Dir(cfg.Source))
		src.File = filepath.Base(cfg.Source)
	}
	slides, err := site.LoadSlides(src)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.CheckTotal(len(slides)); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, slides, nil
}
