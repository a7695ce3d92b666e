package probe

import "errors"

var (
	// ErrNoPorts indicates the prober has no port to dial.
	ErrNoPorts = errors.New("probe: no ports configured")

	// ErrInvalidPort indicates a port outside 1-65535.
	ErrInvalidPort = errors.New("probe: invalid port")
)
