package deck

import "html/template"

// Slide is one ordinal unit of content. The controller only uses Ordinal.
type Slide struct {
	Ordinal int           `json:"ordinal"`
	Title   string        `json:"title,omitempty"`
	HTML    template.HTML `json:"-"`
	// Chart names the chart slot rendered on this slide, if any.
	Chart string `json:"chart,omitempty"`
	// Timeline marks the slide that carries the phase timeline.
	Timeline bool `json:"timeline,omitempty"`
}
