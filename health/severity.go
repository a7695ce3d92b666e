package health

import (
	"fmt"
	"strings"
)

// Severity is the ordered health classification of a check, a host or a run.
//
// The numeric order is the rollup order: Unknown < Healthy < Warning <
// Critical < Unreachable. Unreachable is a host-level sentinel and is never
// carried by a CheckResult.
type Severity int

const (
	// SeverityUnknown means no usable measurement exists.
	SeverityUnknown Severity = iota
	// SeverityHealthy means the measurement is within thresholds.
	SeverityHealthy
	// SeverityWarning means the measurement crossed the warning threshold.
	SeverityWarning
	// SeverityCritical means the measurement crossed the critical threshold.
	SeverityCritical
	// SeverityUnreachable marks a host that failed its connectivity probe.
	SeverityUnreachable
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityHealthy:
		return "healthy"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	case SeverityUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// ParseSeverity parses the string form produced by String.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unknown":
		return SeverityUnknown, nil
	case "healthy":
		return SeverityHealthy, nil
	case "warning":
		return SeverityWarning, nil
	case "critical":
		return SeverityCritical, nil
	case "unreachable":
		return SeverityUnreachable, nil
	default:
		return SeverityUnknown, fmt.Errorf("health: unknown severity %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	v, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Worst returns the more severe of a and b.
//
// Worst is associative and commutative with SeverityUnknown as identity, so
// partial rollups can be merged in any order.
func Worst(a, b Severity) Severity {
	if b > a {
		return b
	}
	return a
}
