package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/dgnsrekt/deck_agent/internal/cdpcontrol"
	"github.com/dgnsrekt/deck_agent/internal/telemetry"
)

var (
	ErrNotFound  = errors.New("export not found")
	ErrInvalidID = errors.New("invalid export id")
)

// Renderer produces export bytes. *Chrome implements it.
type Renderer interface {
	PDF(ctx context.Context) ([]byte, error)
	SlidePNGs(ctx context.Context, slides []int, each func(slide int, png []byte) error) error
}

// Request asks for one export. Slide selects the slide of a png export;
// zero captures every slide.
type Request struct {
	Kind  string `json:"kind"`
	Slide int    `json:"slide,omitempty"`
}

// Service renders exports and keeps them in a Store. Renders run one at a
// time.
type Service struct {
	store    *Store
	renderer Renderer
	total    int
	title    string

	renderMu sync.Mutex
	now      func() time.Time
}

func NewService(store *Store, renderer Renderer, total int, title string) *Service {
	return &Service{store: store, renderer: renderer, total: total, title: title, now: time.Now}
}

func (s *Service) validate(req Request) error {
	switch req.Kind {
	case KindPDF:
		if req.Slide != 0 {
			return cdpcontrol.NewError(cdpcontrol.CodeValidation, "slide is only valid for png exports", nil)
		}
	case KindPNG:
		if req.Slide < 0 || req.Slide > s.total {
			return cdpcontrol.NewError(cdpcontrol.CodeValidation, fmt.Sprintf("slide must be between 1 and %d", s.total), nil)
		}
	default:
		return cdpcontrol.NewError(cdpcontrol.CodeValidation, fmt.Sprintf("kind must be %q or %q", KindPDF, KindPNG), nil)
	}
	return nil
}

// Create renders req and stores the result. A png request without a slide
// yields one artifact per slide.
func (s *Service) Create(ctx context.Context, req Request, rep Reporter) ([]Artifact, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	if rep == nil {
		rep = nopReporter{}
	}

	ctx, span := telemetry.Tracer("export").Start(ctx, "export.create")
	defer span.End()
	span.SetAttributes(attribute.String("export.kind", req.Kind), attribute.Int("export.slide", req.Slide))

	s.renderMu.Lock()
	defer s.renderMu.Unlock()

	start := s.now()
	var out []Artifact
	var err error
	if req.Kind == KindPDF {
		out, err = s.createPDF(ctx, rep)
	} else {
		out, err = s.createPNGs(ctx, req.Slide, rep)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Error("export failed", "kind", req.Kind, "slide", req.Slide, "error", err)
		var coded *cdpcontrol.CodedError
		if errors.As(err, &coded) {
			return out, err
		}
		return out, cdpcontrol.NewError(cdpcontrol.CodeExportFailed, "export failed", err)
	}
	slog.Info("export done", "kind", req.Kind, "artifacts", len(out), "duration_ms", s.now().Sub(start).Milliseconds())
	return out, nil
}

func (s *Service) createPDF(ctx context.Context, rep Reporter) ([]Artifact, error) {
	rep.Start(1)
	defer rep.Finish()
	data, err := s.renderer.PDF(ctx)
	if err != nil {
		return nil, err
	}
	a, err := s.save(KindPDF, 0, data)
	if err != nil {
		return nil, err
	}
	rep.Update(1, a.FileName())
	return []Artifact{a}, nil
}

func (s *Service) createPNGs(ctx context.Context, slide int, rep Reporter) ([]Artifact, error) {
	slides := []int{slide}
	if slide == 0 {
		slides = make([]int, s.total)
		for i := range slides {
			slides[i] = i + 1
		}
	}

	rep.Start(len(slides))
	defer rep.Finish()
	out := make([]Artifact, 0, len(slides))
	err := s.renderer.SlidePNGs(ctx, slides, func(n int, png []byte) error {
		a, err := s.save(KindPNG, n, png)
		if err != nil {
			return err
		}
		out = append(out, a)
		rep.Update(len(out), a.FileName())
		return nil
	})
	return out, err
}

func (s *Service) save(kind string, slide int, data []byte) (Artifact, error) {
	if len(data) == 0 {
		return Artifact{}, fmt.Errorf("export: renderer returned an empty %s", kind)
	}
	a := Artifact{
		ID:        uuid.NewString(),
		Kind:      kind,
		Slide:     slide,
		Title:     s.title,
		SizeBytes: len(data),
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Save(a, data); err != nil {
		return Artifact{}, err
	}
	return a, nil
}

func (s *Service) List() ([]Artifact, error) {
	return s.store.List()
}

func (s *Service) Get(id string) (Artifact, error) {
	a, err := s.store.Get(id)
	return a, lookupErr(err)
}

func (s *Service) ReadFile(id string) (Artifact, []byte, error) {
	a, data, err := s.store.ReadFile(id)
	return a, data, lookupErr(err)
}

func (s *Service) Delete(id string) error {
	return lookupErr(s.store.Delete(id))
}

// lookupErr maps store errors onto API codes.
func lookupErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return cdpcontrol.NewError(cdpcontrol.CodeNotFound, err.Error(), nil)
	case errors.Is(err, ErrInvalidID):
		return cdpcontrol.NewError(cdpcontrol.CodeValidation, err.Error(), nil)
	default:
		return err
	}
}
