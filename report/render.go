package report

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/jonwraymond/hostdiag/health"
)

// Renderer writes a RunReport in one format.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: failures are returned as *RenderError; the report is never modified.
type Renderer interface {
	// Format returns the format name.
	Format() string

	// Render writes r to w.
	Render(w io.Writer, r *RunReport) error
}

// Formats lists the supported render formats.
var Formats = []string{"json", "csv", "html", "text"}

// NewRenderer returns the renderer for format. An unknown format is a
// configuration error.
func NewRenderer(format string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return jsonRenderer{}, nil
	case "csv":
		return csvRenderer{}, nil
	case "html":
		return htmlRenderer{}, nil
	case "text", "":
		return textRenderer{}, nil
	default:
		return nil, &health.ConfigError{Field: "format", Value: format, Err: ErrUnknownFormat}
	}
}

// Render writes r to w in format.
func Render(w io.Writer, format string, r *RunReport) error {
	renderer, err := NewRenderer(format)
	if err != nil {
		return err
	}
	return renderer.Render(w, r)
}

func renderErr(format string, err error) error {
	if err == nil {
		return nil
	}
	return &RenderError{Format: format, Err: err}
}

type jsonRenderer struct{}

func (jsonRenderer) Format() string { return "json" }

func (jsonRenderer) Render(w io.Writer, r *RunReport) error {
	if r == nil {
		return renderErr("json", errNilReport)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return renderErr("json", enc.Encode(r))
}
