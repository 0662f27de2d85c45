package export

import "testing"

func TestPrintURL(t *testing.T) {
	tests := []struct {
		deck  string
		slide int
		want  string
	}{
		{"http://127.0.0.1:8080/", 0, "http://127.0.0.1:8080/?mode=print"},
		{"http://127.0.0.1:8080", 3, "http://127.0.0.1:8080/?mode=print&slide=3"},
		{"http://deck.local/talk/?mode=live&slide=9", 0, "http://deck.local/talk/?mode=print"},
		{"http://deck.local/?mode=mirror", 12, "http://deck.local/?mode=print&slide=12"},
	}
	for _, tt := range tests {
		got, err := PrintURL(tt.deck, tt.slide)
		if err != nil {
			t.Fatalf("PrintURL(%q, %d) = %v", tt.deck, tt.slide, err)
		}
		if got != tt.want {
			t.Fatalf("PrintURL(%q, %d) = %q; want %q", tt.deck, tt.slide, got, tt.want)
		}
	}
}

func TestPrintURLRejectsRelative(t *testing.T) {
	if _, err := PrintURL("/deck", 0); err == nil {
		t.Fatal("PrintURL(relative) = nil; want error")
	}
}

func TestNewChromeDefaults(t *testing.T) {
	c := NewChrome(ChromeOptions{DeckURL: "http://127.0.0.1:8080/"})
	if c.opts.Width != 1280 || c.opts.Height != 720 {
		t.Fatalf("size = %dx%d; want 1280x720", c.opts.Width, c.opts.Height)
	}
	if c.opts.Timeout <= 0 {
		t.Fatal("timeout not defaulted")
	}
}
