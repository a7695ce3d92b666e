package report

import (
	"errors"
	"fmt"

	"github.com/jonwraymond/hostdiag/health"
)

var (
	// ErrUnknownFormat indicates a render format outside the supported set.
	ErrUnknownFormat = errors.New("report: unknown format")

	errNilReport = errors.New("nil report")
)

// RenderError describes a renderer failure. It matches health.ErrRender.
type RenderError struct {
	Format string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("report: render %s: %v", e.Format, e.Err)
}

// Unwrap returns the underlying cause.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// Is makes every RenderError match health.ErrRender.
func (e *RenderError) Is(target error) bool {
	return target == health.ErrRender
}
