package checks

import "errors"

var (
	// ErrCheckerNotFound is returned when no checker is registered for a kind.
	ErrCheckerNotFound = errors.New("checks: checker not found")

	// ErrNoData is returned when a query succeeds but reports nothing to classify.
	ErrNoData = errors.New("checks: no data returned")
)
