package site

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dgnsrekt/deck_agent/internal/charts"
	"github.com/dgnsrekt/deck_agent/internal/deck"
	"github.com/dgnsrekt/deck_agent/internal/input"
)

//go:embed assets
var assets embed.FS

// Page modes.
const (
	ModeLive   = "live"
	ModeMirror = "mirror"
	ModePrint  = "print"
)

const DefaultChartJSURL = "https://cdn.jsdelivr.net/npm/chart.js@4.4.1/dist/chart.umd.min.js"

// ChartSource supplies server-rendered chart images.
type ChartSource interface {
	ChartPNG(slot charts.SlotID) ([]byte, bool)
	PrepareCharts(ctx context.Context) error
}

type Options struct {
	Title    string
	Slides   []deck.Slide
	Phases   []string
	Progress deck.ProgressMode
	// WSPath is where live pages open their viewer socket.
	WSPath     string
	ChartJSURL string
	Charts     ChartSource
}

// Site serves the deck page, its static assets and chart images.
type Site struct {
	opts   Options
	tmpl   *template.Template
	static http.Handler
}

func New(opts Options) (*Site, error) {
	if len(opts.Slides) == 0 {
		return nil, fmt.Errorf("site: no slides")
	}
	if opts.WSPath == "" {
		opts.WSPath = "/ws"
	}
	if opts.ChartJSURL == "" {
		opts.ChartJSURL = DefaultChartJSURL
	}
	if opts.Title == "" {
		opts.Title = "Presentation"
	}
	tmpl, err := template.New("deck.html").Funcs(template.FuncMap{
		"chartID": func(slot string) string { return charts.SlotID(slot).ElementID() },
	}).ParseFS(assets, "assets/deck.html")
	if err != nil {
		return nil, fmt.Errorf("site: parse page: %w", err)
	}
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		return nil, fmt.Errorf("site: assets: %w", err)
	}
	return &Site{opts: opts, tmpl: tmpl, static: http.FileServer(http.FS(sub))}, nil
}

// Mount registers the site's routes.
func (s *Site) Mount(r chi.Router) {
	r.Get("/", s.servePage)
	r.Handle("/static/*", http.StripPrefix("/static/", s.static))
	r.Get("/charts/{slot}.png", s.serveChart)
}

type clientConfig struct {
	Mode         string   `json:"mode"`
	WS           string   `json:"ws"`
	Total        int      `json:"total"`
	ConsumedKeys []string `json:"consumed_keys"`
	PrintURL     string   `json:"print_url"`
}

type pageData struct {
	Title      string
	Mode       string
	Slides     []deck.Slide
	Phases     []string
	StaticPath string
	ChartPath  string
	ChartJSURL string
	Client     clientConfig

	Total         int
	CurrentLabel  string
	ProgressWidth string
	PrevDisabled  bool
	NextDisabled  bool

	current   int
	allActive bool
}

func (p pageData) IsActive(n int) bool {
	return p.allActive || n == p.current
}

// PageRequest selects what a page render shows. Slide limits a print page
// to one slide; 0 prints them all.
type PageRequest struct {
	Mode  string
	Slide int
}

// ParsePageRequest reads ?mode= and ?slide=.
func ParsePageRequest(r *http.Request) (PageRequest, error) {
	q := r.URL.Query()
	req := PageRequest{Mode: q.Get("mode")}
	switch req.Mode {
	case "":
		req.Mode = ModeLive
	case ModeLive, ModeMirror, ModePrint:
	default:
		return req, fmt.Errorf("unknown mode %q", req.Mode)
	}
	if raw := q.Get("slide"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("slide must be an integer")
		}
		req.Slide = n
	}
	return req, nil
}

// Render writes the page for req.
func (s *Site) Render(ctx context.Context, req PageRequest) ([]byte, error) {
	total := len(s.opts.Slides)
	data := pageData{
		Title:      s.opts.Title,
		Mode:       req.Mode,
		Slides:     s.opts.Slides,
		Phases:     s.opts.Phases,
		StaticPath: "/static",
		ChartPath:  "/charts",
		ChartJSURL: s.opts.ChartJSURL,
		Client: clientConfig{
			Mode:         req.Mode,
			WS:           s.opts.WSPath,
			Total:        total,
			ConsumedKeys: input.ConsumedKeys(),
			PrintURL:     "/?mode=print",
		},
		current: 1,
	}

	if req.Mode == ModePrint {
		if req.Slide != 0 {
			if req.Slide < 1 || req.Slide > total {
				return nil, fmt.Errorf("slide %d outside 1..%d", req.Slide, total)
			}
			data.Slides = s.opts.Slides[req.Slide-1 : req.Slide]
			data.current = req.Slide
		} else {
			data.allActive = true
		}
		if s.opts.Charts != nil {
			if err := s.opts.Charts.PrepareCharts(ctx); err != nil {
				slog.Warn("preparing charts for print failed", "error", err)
			}
		}
	}

	st := deck.State{Current: data.current, Total: total}
	v := deck.Render(st, s.opts.Progress)
	data.Total = v.Total
	data.CurrentLabel = v.CurrentLabel
	data.ProgressWidth = v.ProgressWidth
	data.PrevDisabled = v.PrevDisabled
	data.NextDisabled = v.NextDisabled

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("site: render page: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Site) servePage(w http.ResponseWriter, r *http.Request) {
	req, err := ParsePageRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	page, err := s.Render(r.Context(), req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(page); err != nil {
		slog.Debug("page response write failed", "error", err)
	}
}

func (s *Site) serveChart(w http.ResponseWriter, r *http.Request) {
	slot, err := charts.ParseSlot(chi.URLParam(r, "slot"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if s.opts.Charts == nil {
		http.NotFound(w, r)
		return
	}
	data, ok := s.opts.Charts.ChartPNG(slot)
	if !ok {
		http.Error(w, "chart not initialized", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(data); err != nil {
		slog.Debug("chart response write failed", "slot", slot, "error", err)
	}
}
