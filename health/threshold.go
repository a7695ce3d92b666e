package health

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Polarity states which direction of a measurement is worse.
type Polarity int

const (
	// HigherIsWorse classifies values above the thresholds as unhealthy.
	HigherIsWorse Polarity = iota
	// LowerIsWorse classifies values below the thresholds as unhealthy.
	LowerIsWorse
)

// Threshold is a warning/critical pair for one measurement.
//
// Comparisons are strict: a value equal to a threshold falls into the lower
// severity bucket. A threshold built with WarningOnly never yields Critical.
type Threshold struct {
	Warning  float64
	Critical float64
	Polarity Polarity
}

// NewThreshold creates a two-level threshold.
func NewThreshold(warning, critical float64, polarity Polarity) Threshold {
	return Threshold{Warning: warning, Critical: critical, Polarity: polarity}
}

// WarningOnly creates a threshold whose critical level can never be reached.
func WarningOnly(warning float64, polarity Polarity) Threshold {
	critical := math.Inf(1)
	if polarity == LowerIsWorse {
		critical = math.Inf(-1)
	}
	return Threshold{Warning: warning, Critical: critical, Polarity: polarity}
}

// HasCritical reports whether the critical level is reachable.
func (t Threshold) HasCritical() bool {
	return !math.IsInf(t.Critical, 0)
}

// Classify maps a measurement to a severity. NaN classifies as Unknown.
func (t Threshold) Classify(v float64) Severity {
	if math.IsNaN(v) {
		return SeverityUnknown
	}
	if t.Polarity == LowerIsWorse {
		switch {
		case v < t.Critical:
			return SeverityCritical
		case v < t.Warning:
			return SeverityWarning
		default:
			return SeverityHealthy
		}
	}
	switch {
	case v > t.Critical:
		return SeverityCritical
	case v > t.Warning:
		return SeverityWarning
	default:
		return SeverityHealthy
	}
}

func (t Threshold) validate(field string, lo, hi float64) error {
	values := []float64{t.Warning}
	if t.HasCritical() {
		values = append(values, t.Critical)
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < lo || v > hi {
			return &ConfigError{Field: field, Value: fmt.Sprint(v), Err: ErrInvalidThreshold}
		}
	}
	if !t.HasCritical() {
		return nil
	}
	inverted := t.Critical < t.Warning
	if t.Polarity == LowerIsWorse {
		inverted = t.Critical > t.Warning
	}
	if inverted {
		return &ConfigError{
			Field: field,
			Value: fmt.Sprintf("warning=%v critical=%v", t.Warning, t.Critical),
			Err:   fmt.Errorf("%w: critical level is less severe than warning", ErrInvalidThreshold),
		}
	}
	return nil
}

// Thresholds is the immutable threshold table handed to checkers at
// construction time.
type Thresholds struct {
	// DiskFreePercent applies to the free-space percentage of each volume.
	// Default: warning < 20, critical < 10
	DiskFreePercent Threshold

	// CPUPercent applies to processor utilization.
	// Default: warning > 80, critical > 90
	CPUPercent Threshold

	// MemoryPercent applies to physical memory utilization.
	// Default: warning > 80, critical > 90
	MemoryPercent Threshold

	// PageFilePercent applies to page file utilization.
	// Default: warning > 80, critical > 90
	PageFilePercent Threshold

	// UptimeDays applies to days since last boot. Informational only.
	// Default: warning > 30, never critical
	UptimeDays Threshold

	// EventLogErrors applies to system+application error events in the window.
	// Default: warning > 100, never critical
	EventLogErrors Threshold
}

// DefaultThresholds returns the default threshold table.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DiskFreePercent: NewThreshold(20, 10, LowerIsWorse),
		CPUPercent:      NewThreshold(80, 90, HigherIsWorse),
		MemoryPercent:   NewThreshold(80, 90, HigherIsWorse),
		PageFilePercent: NewThreshold(80, 90, HigherIsWorse),
		UptimeDays:      WarningOnly(30, HigherIsWorse),
		EventLogErrors:  WarningOnly(100, HigherIsWorse),
	}
}

// Validate rejects non-finite values, out-of-range percentages, negative
// counts and inverted warning/critical pairs.
func (t Thresholds) Validate() error {
	checks := []struct {
		field  string
		th     Threshold
		lo, hi float64
	}{
		{"thresholds.disk_free_percent", t.DiskFreePercent, 0, 100},
		{"thresholds.cpu_percent", t.CPUPercent, 0, 100},
		{"thresholds.memory_percent", t.MemoryPercent, 0, 100},
		{"thresholds.page_file_percent", t.PageFilePercent, 0, 100},
		{"thresholds.uptime_days", t.UptimeDays, 0, math.MaxFloat64},
		{"thresholds.event_log_errors", t.EventLogErrors, 0, math.MaxFloat64},
	}
	for _, c := range checks {
		if err := c.th.validate(c.field, c.lo, c.hi); err != nil {
			return err
		}
	}
	return nil
}

// ThresholdOverride replaces individual levels of a threshold. Nil fields keep
// the current value.
type ThresholdOverride struct {
	Warning  *float64 `yaml:"warning" json:"warning,omitempty"`
	Critical *float64 `yaml:"critical" json:"critical,omitempty"`
}

func (o *ThresholdOverride) apply(t Threshold) Threshold {
	if o == nil {
		return t
	}
	if o.Warning != nil {
		t.Warning = *o.Warning
	}
	if o.Critical != nil {
		t.Critical = *o.Critical
	}
	return t
}

// ThresholdOverrides is the optional override set supplied by configuration.
type ThresholdOverrides struct {
	DiskFreePercent *ThresholdOverride `yaml:"disk_free_percent" json:"disk_free_percent,omitempty"`
	CPUPercent      *ThresholdOverride `yaml:"cpu_percent" json:"cpu_percent,omitempty"`
	MemoryPercent   *ThresholdOverride `yaml:"memory_percent" json:"memory_percent,omitempty"`
	PageFilePercent *ThresholdOverride `yaml:"page_file_percent" json:"page_file_percent,omitempty"`
	UptimeDays      *ThresholdOverride `yaml:"uptime_days" json:"uptime_days,omitempty"`
	EventLogErrors  *ThresholdOverride `yaml:"event_log_errors" json:"event_log_errors,omitempty"`
}

// Apply returns a copy of t with the overrides merged in and validated.
// Uptime and event log thresholds are warning-only; a critical override for
// either is rejected.
func (t Thresholds) Apply(o ThresholdOverrides) (Thresholds, error) {
	for _, w := range []struct {
		field string
		o     *ThresholdOverride
	}{
		{"thresholds.uptime_days.critical", o.UptimeDays},
		{"thresholds.event_log_errors.critical", o.EventLogErrors},
	} {
		if w.o != nil && w.o.Critical != nil {
			return Thresholds{}, &ConfigError{
				Field: w.field,
				Value: strconv.FormatFloat(*w.o.Critical, 'g', -1, 64),
				Err:   fmt.Errorf("%w: warning-only threshold", ErrInvalidThreshold),
			}
		}
	}
	out := Thresholds{
		DiskFreePercent: o.DiskFreePercent.apply(t.DiskFreePercent),
		CPUPercent:      o.CPUPercent.apply(t.CPUPercent),
		MemoryPercent:   o.MemoryPercent.apply(t.MemoryPercent),
		PageFilePercent: o.PageFilePercent.apply(t.PageFilePercent),
		UptimeDays:      o.UptimeDays.apply(t.UptimeDays),
		EventLogErrors:  o.EventLogErrors.apply(t.EventLogErrors),
	}
	if err := out.Validate(); err != nil {
		return Thresholds{}, err
	}
	return out, nil
}

// Service states as reported by the remote host.
const (
	ServiceRunning = "running"
	ServiceStopped = "stopped"
)

// ClassifyServiceState maps an observed service state to a severity:
// running is Healthy, stopped is Critical, anything else is Warning.
func ClassifyServiceState(state string) Severity {
	switch strings.ToLower(strings.TrimSpace(state)) {
	case ServiceRunning:
		return SeverityHealthy
	case ServiceStopped:
		return SeverityCritical
	default:
		return SeverityWarning
	}
}

// ClassifyUpdates maps pending update counts to a severity.
func ClassifyUpdates(critical, important int) Severity {
	switch {
	case critical > 0:
		return SeverityCritical
	case important > 0:
		return SeverityWarning
	default:
		return SeverityHealthy
	}
}
