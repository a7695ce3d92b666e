package health

import (
	"context"
	"errors"
	"math"
	"time"
)

// Measurement is the raw, kind-specific data behind a CheckResult.
//
// The set of implementations is closed: one concrete type per CheckKind.
type Measurement interface {
	// Kind returns the check kind this measurement belongs to.
	Kind() CheckKind

	measurement()
}

// VolumeUsage is the capacity of one fixed volume.
type VolumeUsage struct {
	Name       string `json:"name" yaml:"name"`
	Label      string `json:"label,omitempty" yaml:"label"`
	TotalBytes uint64 `json:"total_bytes" yaml:"total_bytes"`
	FreeBytes  uint64 `json:"free_bytes" yaml:"free_bytes"`
}

// FreePercent returns free space as a percentage of total, or NaN when the
// volume reports no capacity.
func (v VolumeUsage) FreePercent() float64 {
	if v.TotalBytes == 0 {
		return math.NaN()
	}
	return float64(v.FreeBytes) / float64(v.TotalBytes) * 100
}

// DiskMeasurement lists fixed volumes and their capacity.
type DiskMeasurement struct {
	Volumes []VolumeUsage `json:"volumes"`
}

// ServiceStatus is the observed state of one service.
type ServiceStatus struct {
	Name        string `json:"name" yaml:"name"`
	DisplayName string `json:"display_name,omitempty" yaml:"display_name"`
	State       string `json:"state" yaml:"state"`
	StartMode   string `json:"start_mode,omitempty" yaml:"start_mode"`
}

// ServiceMeasurement lists the monitored services.
type ServiceMeasurement struct {
	Services []ServiceStatus `json:"services"`
}

// EventLogCounts is the number of error-level events per log.
type EventLogCounts struct {
	System      int `json:"system" yaml:"system"`
	Application int `json:"application" yaml:"application"`
}

// EventLogMeasurement counts error events over a trailing window.
type EventLogMeasurement struct {
	EventLogCounts
	Window time.Duration `json:"window"`
}

// Total returns system plus application errors.
func (m EventLogMeasurement) Total() int {
	return m.System + m.Application
}

// UptimeMeasurement records the last boot time.
type UptimeMeasurement struct {
	LastBoot time.Time     `json:"last_boot"`
	Uptime   time.Duration `json:"uptime"`
}

// Days returns the uptime in fractional days.
func (m UptimeMeasurement) Days() float64 {
	return m.Uptime.Hours() / 24
}

// UpdateSummary counts pending updates by severity.
type UpdateSummary struct {
	Critical  int      `json:"critical" yaml:"critical"`
	Important int      `json:"important" yaml:"important"`
	Other     int      `json:"other" yaml:"other"`
	Titles    []string `json:"titles,omitempty" yaml:"titles"`
}

// Total returns the number of pending updates.
func (u UpdateSummary) Total() int {
	return u.Critical + u.Important + u.Other
}

// UpdatesMeasurement lists pending updates.
type UpdatesMeasurement struct {
	UpdateSummary
}

// UtilizationSample is one reading of resource utilization percentages.
type UtilizationSample struct {
	CPUPercent      float64 `json:"cpu_percent" yaml:"cpu_percent"`
	MemoryPercent   float64 `json:"memory_percent" yaml:"memory_percent"`
	PageFilePercent float64 `json:"page_file_percent" yaml:"page_file_percent"`
}

// UtilizationMeasurement records CPU, memory and page file utilization.
type UtilizationMeasurement struct {
	UtilizationSample
}

// NetworkAdapter is the configuration of one network interface.
type NetworkAdapter struct {
	Name       string   `json:"name" yaml:"name"`
	Enabled    bool     `json:"enabled" yaml:"enabled"`
	DHCP       bool     `json:"dhcp" yaml:"dhcp"`
	Addresses  []string `json:"addresses,omitempty" yaml:"addresses"`
	Gateways   []string `json:"gateways,omitempty" yaml:"gateways"`
	DNSServers []string `json:"dns_servers,omitempty" yaml:"dns_servers"`
}

// NetworkMeasurement lists network adapters.
type NetworkMeasurement struct {
	Adapters []NetworkAdapter `json:"adapters"`
}

func (DiskMeasurement) Kind() CheckKind        { return KindDiskCapacity }
func (ServiceMeasurement) Kind() CheckKind     { return KindServiceState }
func (EventLogMeasurement) Kind() CheckKind    { return KindEventLogVolume }
func (UptimeMeasurement) Kind() CheckKind      { return KindUptime }
func (UpdatesMeasurement) Kind() CheckKind     { return KindPendingUpdates }
func (UtilizationMeasurement) Kind() CheckKind { return KindUtilization }
func (NetworkMeasurement) Kind() CheckKind     { return KindNetworkConfig }

func (DiskMeasurement) measurement()        {}
func (ServiceMeasurement) measurement()     {}
func (EventLogMeasurement) measurement()    {}
func (UptimeMeasurement) measurement()      {}
func (UpdatesMeasurement) measurement()     {}
func (UtilizationMeasurement) measurement() {}
func (NetworkMeasurement) measurement()     {}

// CheckResult is the outcome of running one check kind against one host.
type CheckResult struct {
	// Host is the target the check ran against.
	Host string `json:"host"`

	// Kind identifies the check.
	Kind CheckKind `json:"kind"`

	// Severity is the classified outcome. Never SeverityUnreachable.
	Severity Severity `json:"severity"`

	// Measurement holds the raw data. Nil when the check failed.
	Measurement Measurement `json:"measurement,omitempty"`

	// Note is a short human-readable explanation of the severity.
	Note string `json:"note,omitempty"`

	// Error is set when the check failed and the severity is Unknown.
	Error string `json:"error,omitempty"`

	// Duration is how long the check took.
	Duration time.Duration `json:"duration"`

	// CheckedAt is when the check completed.
	CheckedAt time.Time `json:"checked_at"`
}

// NewResult creates a result for a successful measurement.
func NewResult(host string, m Measurement, severity Severity, note string) CheckResult {
	return CheckResult{
		Host:        host,
		Kind:        m.Kind(),
		Severity:    severity,
		Measurement: m,
		Note:        note,
		CheckedAt:   time.Now(),
	}
}

// Failed creates an Unknown result for a check that could not complete.
func Failed(host string, kind CheckKind, err error) CheckResult {
	if err == nil {
		err = ErrCheckFailed
	}
	return CheckResult{
		Host:      host,
		Kind:      kind,
		Severity:  SeverityUnknown,
		Note:      FailureNote(err),
		Error:     err.Error(),
		CheckedAt: time.Now(),
	}
}

// WithDuration sets the duration on a result.
func (r CheckResult) WithDuration(d time.Duration) CheckResult {
	r.Duration = d
	return r
}

// Failed reports whether the check failed to produce a measurement.
func (r CheckResult) Failed() bool {
	return r.Error != ""
}

// Failure notes. They keep failure causes apart without adding severities.
const (
	NoteTimeout          = "timeout"
	NoteCancelled        = "cancelled"
	NotePermissionDenied = "permission denied"
	NoteCheckFailed      = "check failed"
)

// FailureNote classifies err into one of the failure notes.
func FailureNote(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCheckTimeout), errors.Is(err, context.DeadlineExceeded):
		return NoteTimeout
	case errors.Is(err, ErrCheckCancelled), errors.Is(err, context.Canceled):
		return NoteCancelled
	case errors.Is(err, ErrPermissionDenied):
		return NotePermissionDenied
	default:
		return NoteCheckFailed
	}
}

// FailureCategory returns the failure note of r, or "" when r succeeded.
func (r CheckResult) FailureCategory() string {
	if !r.Failed() {
		return ""
	}
	return r.Note
}
