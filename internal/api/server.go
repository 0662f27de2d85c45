package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dgnsrekt/deck_agent/internal/cdpcontrol"
	"github.com/dgnsrekt/deck_agent/internal/charts"
	"github.com/dgnsrekt/deck_agent/internal/deck"
	"github.com/dgnsrekt/deck_agent/internal/export"
	"github.com/dgnsrekt/deck_agent/internal/presenter"
)

// Service is the navigation surface of the deck. *presenter.Service
// implements it.
type Service interface {
	GoTo(ctx context.Context, slide int) (presenter.Result, error)
	Next(ctx context.Context) (presenter.Result, error)
	Previous(ctx context.Context) (presenter.Result, error)
	First(ctx context.Context) (presenter.Result, error)
	Last(ctx context.Context) (presenter.Result, error)
	HighlightPhase(ctx context.Context, phase int) (presenter.Result, error)
	ResetPhase(ctx context.Context) (presenter.Result, error)
	Resize(ctx context.Context, width, height int) (presenter.Result, error)
	View() deck.View
	ChartStatus() []charts.SlotStatus
}

// ExportService renders and keeps deck exports. *export.Service implements
// it.
type ExportService interface {
	Create(ctx context.Context, req export.Request, rep export.Reporter) ([]export.Artifact, error)
	List() ([]export.Artifact, error)
	Get(id string) (export.Artifact, error)
	ReadFile(id string) (export.Artifact, []byte, error)
	Delete(id string) error
}

// MirrorStatusSource reports on the mirrored browser tab.
type MirrorStatusSource interface {
	Status() cdpcontrol.MirrorStatus
}

// Config wires the server. Exports and Mirror are optional; their routes
// are only registered when set.
type Config struct {
	Deck        Service
	Exports     ExportService
	Mirror      MirrorStatusSource
	CORSOrigins []string
	// Routes registers the non-API handlers (deck page, viewer socket,
	// event stream) on the same router.
	Routes func(r chi.Router)
}

func NewServer(cfg Config) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	humaCfg := huma.DefaultConfig("Deck Agent Controller API", "1.0.0")
	humaCfg.DocsPath = ""
	api := humachi.New(router, humaCfg)

	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(docsHTML)); err != nil {
			slog.Debug("docs response write failed", "error", err)
		}
	})
	router.Get("/docs/wire", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(wireDocsHTML)); err != nil {
			slog.Debug("wire docs response write failed", "error", err)
		}
	})

	registerMiscHandlers(api, cfg.Deck, cfg.Mirror)
	registerDeckHandlers(api, cfg.Deck)
	if cfg.Exports != nil {
		registerExportHandlers(api, cfg.Exports)
	}
	if cfg.Routes != nil {
		cfg.Routes(router)
	}

	return router
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *cdpcontrol.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case cdpcontrol.CodeValidation:
			return huma.Error400BadRequest(coded.Message)
		case cdpcontrol.CodeNotFound:
			return huma.Error404NotFound(coded.Message)
		case cdpcontrol.CodeEvalTimeout:
			return huma.Error504GatewayTimeout(coded.Message)
		case cdpcontrol.CodeCDPUnavailable:
			return huma.Error502BadGateway(coded.Message)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return huma.Error504GatewayTimeout(err.Error())
	}
	return huma.Error500InternalServerError(err.Error())
}
