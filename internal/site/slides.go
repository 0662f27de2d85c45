package site

import (
	"bufio"
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/dgnsrekt/deck_agent/internal/charts"
	"github.com/dgnsrekt/deck_agent/internal/deck"
)

// Source says where slide content comes from. At most one of File and Glob
// is set; with neither, Total placeholder slides are generated.
type Source struct {
	// FS is the directory File and Glob are resolved in.
	FS    fs.FS
	File  string
	Glob  string
	Total int

	Charts        map[int]charts.SlotID
	TimelineSlide int
}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
}

// LoadSlides reads and renders every slide, numbering them from 1.
func LoadSlides(src Source) ([]deck.Slide, error) {
	var bodies []string
	switch {
	case src.File != "":
		data, err := fs.ReadFile(src.FS, src.File)
		if err != nil {
			return nil, fmt.Errorf("site: reading slides: %w", err)
		}
		bodies = SplitSlides(data)
	case src.Glob != "":
		paths, err := doublestar.Glob(src.FS, src.Glob, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("site: bad slides_glob %q: %w", src.Glob, err)
		}
		sort.Strings(paths)
		for _, p := range paths {
			data, err := fs.ReadFile(src.FS, p)
			if err != nil {
				return nil, fmt.Errorf("site: reading %s: %w", p, err)
			}
			bodies = append(bodies, string(data))
		}
	default:
		for i := 1; i <= src.Total; i++ {
			bodies = append(bodies, fmt.Sprintf("# Slide %d\n", i))
		}
	}
	if len(bodies) == 0 {
		return nil, fmt.Errorf("site: no slides found")
	}

	md := newMarkdown()
	slides := make([]deck.Slide, 0, len(bodies))
	for i, body := range bodies {
		var buf bytes.Buffer
		if err := md.Convert([]byte(body), &buf); err != nil {
			return nil, fmt.Errorf("site: rendering slide %d: %w", i+1, err)
		}
		n := i + 1
		s := deck.Slide{
			Ordinal:  n,
			Title:    extractTitle(body, n),
			HTML:     template.HTML(buf.String()),
			Timeline: n == src.TimelineSlide,
		}
		if slot, ok := src.Charts[n]; ok {
			s.Chart = string(slot)
		}
		slides = append(slides, s)
	}
	return slides, nil
}

// SplitSlides cuts a markdown document on lines consisting of "---". Rules
// inside fenced code blocks do not split. Blank slides are dropped.
func SplitSlides(data []byte) []string {
	var (
		out   []string
		cur   strings.Builder
		fence string
	)
	flush := func() {
		if strings.TrimSpace(cur.String()) != "" {
			out = append(out, cur.String())
		}
		cur.Reset()
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		switch {
		case fence != "":
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
			}
		case strings.HasPrefix(trimmed, "```"):
			fence = "```"
		case strings.HasPrefix(trimmed, "~~~"):
			fence = "~~~"
		case trimmed == "---":
			flush()
			continue
		}
		cur.WriteString(line)
		cur.WriteByte('\n')
	}
	flush()
	return out
}

// extractTitle pulls the first # heading, or falls back to the ordinal.
func extractTitle(content string, n int) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimPrefix(line, "# ")
		}
	}
	return fmt.Sprintf("Slide %d", n)
}
