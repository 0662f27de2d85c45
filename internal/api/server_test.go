package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dgnsrekt/deck_agent/internal/cdpcontrol"
	"github.com/dgnsrekt/deck_agent/internal/deck"
	"github.com/dgnsrekt/deck_agent/internal/export"
	"github.com/dgnsrekt/deck_agent/internal/loop"
	"github.com/dgnsrekt/deck_agent/internal/presenter"
)

func newTestDeck(t *testing.T) *presenter.Service {
	t.Helper()
	l := loop.New()
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-l.Done()
	})
	svc, err := presenter.NewService(l, presenter.Options{
		Total:          5,
		Progress:       deck.ProgressFromOne,
		ChartDelay:     time.Millisecond,
		TimelineSlide:  3,
		TimelinePhases: 4,
	})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return svc
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) presenter.Result {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var res presenter.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	return res
}

func TestGotoOutOfRangeIsUnchanged(t *testing.T) {
	h := NewServer(Config{Deck: newTestDeck(t)})

	res := decodeResult(t, do(t, h, http.MethodPost, "/api/v1/deck/goto", `{"slide":9}`))
	if res.Changed {
		t.Fatal("goto 9 of 5 changed the deck")
	}
	if res.View.Current != 1 {
		t.Fatalf("current = %d, want 1", res.View.Current)
	}

	res = decodeResult(t, do(t, h, http.MethodPost, "/api/v1/deck/goto", `{"slide":4}`))
	if !res.Changed || res.View.Current != 4 || res.View.CurrentLabel != "4" {
		t.Fatalf("goto 4 = %+v", res)
	}
}

func TestNavigationRoutes(t *testing.T) {
	h := NewServer(Config{Deck: newTestDeck(t)})

	tests := []struct {
		path    string
		changed bool
		current int
	}{
		{"/api/v1/deck/previous", false, 1},
		{"/api/v1/deck/next", true, 2},
		{"/api/v1/deck/last", true, 5},
		{"/api/v1/deck/next", false, 5},
		{"/api/v1/deck/first", true, 1},
	}
	for _, tt := range tests {
		res := decodeResult(t, do(t, h, http.MethodPost, tt.path, ""))
		if res.Changed != tt.changed || res.View.Current != tt.current {
			t.Fatalf("POST %s = changed %v current %d; want %v %d", tt.path, res.Changed, res.View.Current, tt.changed, tt.current)
		}
	}

	w := do(t, h, http.MethodGet, "/api/v1/deck/state", "")
	var v deck.View
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if v.Current != 1 || v.Total != 5 || !v.PrevDisabled {
		t.Fatalf("state = %+v", v)
	}
}

func TestPhaseRoute(t *testing.T) {
	h := NewServer(Config{Deck: newTestDeck(t)})

	res := decodeResult(t, do(t, h, http.MethodPost, "/api/v1/deck/phase", `{"phase":2}`))
	if !res.Changed || res.View.Phase != 2 {
		t.Fatalf("phase 2 = %+v", res)
	}
	res = decodeResult(t, do(t, h, http.MethodPost, "/api/v1/deck/phase", `{"phase":0}`))
	if !res.Changed || res.View.Phase != 1 {
		t.Fatalf("phase reset = %+v", res)
	}
	if w := do(t, h, http.MethodPost, "/api/v1/deck/phase", `{"phase":-1}`); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("phase -1 status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
}

func TestHealthAndExtraRoutes(t *testing.T) {
	h := NewServer(Config{
		Deck: newTestDeck(t),
		Routes: func(r chi.Router) {
			r.Get("/ws", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
		},
	})
	w := do(t, h, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"total":5`) {
		t.Fatalf("health = %d %s", w.Code, w.Body.String())
	}
	if w := do(t, h, http.MethodGet, "/ws", ""); w.Code != http.StatusTeapot {
		t.Fatalf("extra route status = %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/api/v1/mirror", ""); w.Code != http.StatusNotFound {
		t.Fatalf("mirror route without mirror = %d, want 404", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/api/v1/exports", ""); w.Code != http.StatusNotFound {
		t.Fatalf("exports route without exports = %d, want 404", w.Code)
	}
}

func TestCORSHeaders(t *testing.T) {
	h := NewServer(Config{Deck: newTestDeck(t), CORSOrigins: []string{"*"}})
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/deck/state", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

type stubExports struct {
	artifacts map[string]export.Artifact
	files     map[string][]byte
}

func (s *stubExports) Create(ctx context.Context, req export.Request, rep export.Reporter) ([]export.Artifact, error) {
	if req.Kind == "png" && req.Slide > 5 {
		return nil, cdpcontrol.NewError(cdpcontrol.CodeValidation, "slide must be between 1 and 5", nil)
	}
	a := export.Artifact{ID: "123e4567-e89b-12d3-a456-426614174000", Kind: req.Kind, Slide: req.Slide, SizeBytes: 4}
	s.artifacts[a.ID] = a
	s.files[a.ID] = []byte("%PDF")
	return []export.Artifact{a}, nil
}

func (s *stubExports) List() ([]export.Artifact, error) {
	out := []export.Artifact{}
	for _, a := range s.artifacts {
		out = append(out, a)
	}
	return out, nil
}

func (s *stubExports) Get(id string) (export.Artifact, error) {
	a, ok := s.artifacts[id]
	if !ok {
		return export.Artifact{}, cdpcontrol.NewError(cdpcontrol.CodeNotFound, "export not found", nil)
	}
	return a, nil
}

func (s *stubExports) ReadFile(id string) (export.Artifact, []byte, error) {
	a, err := s.Get(id)
	if err != nil {
		return export.Artifact{}, nil, err
	}
	return a, s.files[id], nil
}

func (s *stubExports) Delete(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	delete(s.artifacts, id)
	return nil
}

func TestExportRoutes(t *testing.T) {
	exports := &stubExports{artifacts: map[string]export.Artifact{}, files: map[string][]byte{}}
	h := NewServer(Config{Deck: newTestDeck(t), Exports: exports})

	w := do(t, h, http.MethodPost, "/api/v1/exports", `{"kind":"pdf"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var created struct {
		Exports []struct {
			ID  string `json:"id"`
			URL string `json:"url"`
		} `json:"exports"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create: %v", err)
	}
	if len(created.Exports) != 1 || created.Exports[0].URL != "/api/v1/exports/"+created.Exports[0].ID+"/file" {
		t.Fatalf("created = %+v", created)
	}

	w = do(t, h, http.MethodGet, created.Exports[0].URL, "")
	if w.Code != http.StatusOK || w.Body.String() != "%PDF" {
		t.Fatalf("file = %d %q", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "deck.pdf") {
		t.Fatalf("Content-Disposition = %q", cd)
	}

	if w := do(t, h, http.MethodPost, "/api/v1/exports", `{"kind":"gif"}`); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("kind gif status = %d, want 422", w.Code)
	}
	if w := do(t, h, http.MethodPost, "/api/v1/exports", `{"kind":"png","slide":9}`); w.Code != http.StatusBadRequest {
		t.Fatalf("slide 9 status = %d, want 400", w.Code)
	}
	if w := do(t, h, http.MethodDelete, "/api/v1/exports/"+created.Exports[0].ID, ""); w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/api/v1/exports/"+created.Exports[0].ID, ""); w.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", w.Code)
	}
}

type stubMirror struct{}

func (stubMirror) Status() cdpcontrol.MirrorStatus {
	return cdpcontrol.MirrorStatus{Bound: true, Applied: 2}
}

func TestMirrorStatusRoute(t *testing.T) {
	h := NewServer(Config{Deck: newTestDeck(t), Mirror: stubMirror{}})
	w := do(t, h, http.MethodGet, "/api/v1/mirror", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"bound":true`) {
		t.Fatalf("mirror = %d %s", w.Code, w.Body.String())
	}
}
