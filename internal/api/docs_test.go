package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDocsDarkMode(t *testing.T) {
	h := NewServer(Config{Deck: newTestDeck(t)})
	req := httptest.NewRequest(http.MethodGet, "/docs", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := w.Body.String()
	if !strings.Contains(body, `data-theme="dark"`) {
		t.Fatalf("docs missing dark theme marker")
	}
	if !strings.Contains(body, `href="/docs/wire"`) {
		t.Fatalf("docs missing wire format link")
	}
}

func TestWireDocs(t *testing.T) {
	h := NewServer(Config{Deck: newTestDeck(t)})
	req := httptest.NewRequest(http.MethodGet, "/docs/wire", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	for _, want := range []string{`<span class="path">/ws</span>`, `<span class="path">/events</span>`, "consumed_keys"} {
		if !strings.Contains(w.Body.String(), want) {
			t.Fatalf("wire docs missing %q", want)
		}
	}
}
