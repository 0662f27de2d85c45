package cdpcontrol

import "fmt"

const (
	CodeValidation     = "VALIDATION"
	CodeNotFound       = "NOT_FOUND"
	CodeEvalFailure    = "EVAL_FAILURE"
	CodeEvalTimeout    = "EVAL_TIMEOUT"
	CodeCDPUnavailable = "CDP_UNAVAILABLE"
	CodeExportFailed   = "EXPORT_FAILED"
)

// CodedError is a typed error used for stable API mapping.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *CodedError) Unwrap() error { return e.Cause }

func newError(code, msg string, cause error) error {
	return &CodedError{Code: code, Message: msg, Cause: cause}
}

// NewError builds a CodedError for packages that share the API error codes.
func NewError(code, msg string, cause error) error {
	return newError(code, msg, cause)
}

// TabInfo describes the browser tab showing the deck.
type TabInfo struct {
	TargetID string `json:"target_id"`
	URL      string `json:"url"`
	Title    string `json:"title,omitempty"`
}

// Binding reports which parts of the deck's DOM contract were found in the
// mirrored page.
type Binding struct {
	Slides     int      `json:"slides"`
	Indicators int      `json:"indicators"`
	Phases     int      `json:"phases"`
	Markers    int      `json:"markers"`
	Canvases   []string `json:"canvases"`
	Missing    []string `json:"missing"`
	ChartJS    bool     `json:"chart_js"`
}

// Complete reports whether every required element was found.
func (b Binding) Complete() bool { return len(b.Missing) == 0 }
