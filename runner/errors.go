package runner

import "errors"

var (
	// ErrNegative indicates a count, duration or rate below zero.
	ErrNegative = errors.New("runner: value must not be negative")

	// ErrNilDependency indicates New was called without a prober or registry.
	ErrNilDependency = errors.New("runner: nil dependency")
)
