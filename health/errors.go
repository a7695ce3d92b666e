package health

import (
	"errors"
	"fmt"
)

// Configuration errors. These abort a run before any host is probed.
var (
	// ErrConfiguration is matched by every configuration error.
	ErrConfiguration = errors.New("health: invalid configuration")

	// ErrInvalidProfile indicates an unknown depth profile.
	ErrInvalidProfile = errors.New("health: invalid profile")

	// ErrUnknownCheckKind indicates a check kind outside the closed set.
	ErrUnknownCheckKind = errors.New("health: unknown check kind")

	// ErrInvalidThreshold indicates a malformed threshold override.
	ErrInvalidThreshold = errors.New("health: invalid threshold")

	// ErrInvalidHost indicates an empty or malformed host entry.
	ErrInvalidHost = errors.New("health: invalid host")
)

// Runtime errors. These are recovered into the report as data.
var (
	// ErrUnreachable indicates a host failed its connectivity probe.
	ErrUnreachable = errors.New("health: host unreachable")

	// ErrCheckFailed indicates a check could not produce a measurement.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout indicates a check exceeded its time bound.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckCancelled indicates a check was not run because the run was cancelled.
	ErrCheckCancelled = errors.New("health: check cancelled")

	// ErrPermissionDenied indicates the remote host refused the query.
	ErrPermissionDenied = errors.New("health: permission denied")

	// ErrRender indicates a report renderer failed.
	ErrRender = errors.New("health: report render failed")
)

// ConfigError describes a configuration value rejected before a run starts.
type ConfigError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("config %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config %s=%q: %v", e.Field, e.Value, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is makes every ConfigError match ErrConfiguration.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

// IsConfigError reports whether err is, or wraps, a configuration error.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
