//go:build integration

package integration

import (
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestHealth(t *testing.T) {
	resp := env.GET(t, "/health")
	requireStatus(t, resp, http.StatusOK)
	health := decodeJSON[struct {
		Status string `json:"status"`
		Total  int    `json:"total"`
	}](t, resp)
	requireField(t, health.Status, "ok", "status")
	requireField(t, health.Total, env.Total, "total")
}

func TestDeckPage(t *testing.T) {
	resp := env.GET(t, "/")
	requireStatus(t, resp, http.StatusOK)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	for _, want := range []string{`id="currentSlide"`, `id="progressBar"`, `class="indicator`} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("deck page missing %s", want)
		}
	}
}

func TestDocsAndOpenAPI(t *testing.T) {
	for _, path := range []string{"/docs", "/docs/wire", "/openapi.json"} {
		resp := env.GET(t, path)
		requireStatus(t, resp, http.StatusOK)
		resp.Body.Close()
	}
}

func TestChartsListing(t *testing.T) {
	resp := env.GET(t, "/api/v1/deck/charts")
	requireStatus(t, resp, http.StatusOK)
	listing := decodeJSON[struct {
		Charts []struct {
			Slot  string `json:"slot"`
			Ready bool   `json:"ready"`
		} `json:"charts"`
	}](t, resp)
	if listing.Charts == nil {
		t.Fatalf("charts listing is null")
	}
}
