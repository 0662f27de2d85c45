package cdpcontrol

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/dgnsrekt/deck_agent/internal/charts"
	"github.com/dgnsrekt/deck_agent/internal/deck"
)

func TestJSJSONHelper(t *testing.T) {
	got := jsJSON(map[string]any{"a": 1, "b": true})
	var m map[string]any
	if err := json.Unmarshal([]byte(got), &m); err != nil {
		t.Fatalf("jsJSON returned invalid JSON: %v", err)
	}
	if len(m) != 2 {
		t.Fatalf("jsJSON decoded map has %d fields, want 2", len(m))
	}
	if m["b"] != true {
		t.Fatalf("jsJSON decoded map = %v, want b=true", m["b"])
	}
}

func TestJSEvalWrapper(t *testing.T) {
	expr := wrapJSEval("return 1;")
	if !strings.HasPrefix(expr, "(function(){\ntry {") {
		t.Fatalf("unexpected wrapper: %s", expr)
	}
	if !strings.Contains(expr, `error_code:"`+CodeEvalFailure+`"`) {
		t.Fatalf("wrapper does not report %s on throw: %s", CodeEvalFailure, expr)
	}
	if !strings.Contains(buildIIFE(true, "await x;"), "(async function(){") {
		t.Fatal("buildIIFE(true) is not async")
	}
}

func TestDecodeEnvelope(t *testing.T) {
	var out struct {
		Created bool `json:"created"`
	}
	if err := decodeEnvelope(`{"ok":true,"data":{"created":true}}`, &out); err != nil {
		t.Fatalf("decodeEnvelope(ok) = %v", err)
	}
	if !out.Created {
		t.Fatal("decodeEnvelope did not fill out")
	}
	if err := decodeEnvelope(`{"ok":true}`, nil); err != nil {
		t.Fatalf("decodeEnvelope(no data) = %v", err)
	}

	err := decodeEnvelope(`{"ok":false,"error_code":"NO_SURFACE","error_message":"no element #roiChart"}`, nil)
	var coded *CodedError
	if !errors.As(err, &coded) || coded.Code != codeNoSurface {
		t.Fatalf("decodeEnvelope(error) = %v; want %s", err, codeNoSurface)
	}
	if coded.Message != "no element #roiChart" {
		t.Fatalf("message = %q", coded.Message)
	}

	err = decodeEnvelope(`{"ok":false}`, nil)
	if !errors.As(err, &coded) || coded.Code != CodeEvalFailure {
		t.Fatalf("decodeEnvelope(no code) = %v; want %s", err, CodeEvalFailure)
	}

	err = decodeEnvelope(`undefined`, nil)
	if !errors.As(err, &coded) || coded.Message != "invalid evaluation envelope" {
		t.Fatalf("decodeEnvelope(garbage) = %v; want invalid envelope", err)
	}
}

func TestMatchesDeck(t *testing.T) {
	const deckURL = "http://127.0.0.1:8080/?mode=mirror"
	tests := []struct {
		tab  string
		want bool
	}{
		{"http://127.0.0.1:8080/?mode=mirror", true},
		{"http://127.0.0.1:8080?mode=mirror", true},
		{"http://127.0.0.1:8080/?mode=mirror#slide-3", true},
		{"http://127.0.0.1:8080/", false},
		{"http://127.0.0.1:8080/?mode=print", false},
		{"http://127.0.0.1:9090/?mode=mirror", false},
		{"http://127.0.0.1:8080/docs?mode=mirror", false},
		{"about:blank", false},
	}
	for _, tt := range tests {
		if got := matchesDeck(tt.tab, deckURL); got != tt.want {
			t.Errorf("matchesDeck(%q) = %v; want %v", tt.tab, got, tt.want)
		}
	}
	if matchesDeck("http://127.0.0.1:8080/", "") {
		t.Error("matchesDeck with empty deck URL = true; want false")
	}
}

func TestApplyViewScriptCarriesView(t *testing.T) {
	v := deck.View{Current: 2, Total: 5, CurrentLabel: "2", TotalLabel: "5", ProgressWidth: "40%", Phase: 3}
	js := jsApplyView(v)
	for _, want := range []string{`"current":2`, `"progress_width":"40%"`, `"phase":3`, `byId("currentSlide")`, `byId("progressBar")`} {
		if !strings.Contains(js, want) {
			t.Fatalf("apply script missing %q", want)
		}
	}
}

func TestConstructScriptTargetsSlot(t *testing.T) {
	js := jsConstructChart(charts.SlotROI, charts.ROI(), charts.DefaultStyle())
	if !strings.Contains(js, `document.getElementById("roiChart")`) {
		t.Fatal("construct script does not look up #roiChart")
	}
	if !strings.Contains(js, "new Chart(el, cfg)") {
		t.Fatal("construct script does not build the chart")
	}
	if !strings.Contains(js, "if (M.charts[slot])") {
		t.Fatal("construct script does not guard against a second instance")
	}
}
