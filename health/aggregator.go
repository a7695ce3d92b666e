package health

import "time"

// Completion tells whether a host finished all of its resolved checks.
type Completion string

const (
	// CompletionCompleted means every dispatched check reached a result.
	CompletionCompleted Completion = "completed"
	// CompletionCancelled means the run was cancelled before the host finished.
	CompletionCancelled Completion = "cancelled"
)

// HostReport is the aggregated outcome for one host across its resolved checks.
type HostReport struct {
	// Host is the target as given in the input list.
	Host string `json:"host"`

	// Index is the position of the host in the input list.
	Index int `json:"index"`

	// Reachable is the connectivity probe outcome.
	Reachable bool `json:"reachable"`

	// ProbeLatency is how long the successful probe took.
	ProbeLatency time.Duration `json:"probe_latency,omitempty"`

	// ProbeNote explains a failed probe.
	ProbeNote string `json:"probe_note,omitempty"`

	// Checks holds at most one result per kind, in resolved profile order.
	Checks []CheckResult `json:"checks"`

	// Overall is the rolled-up severity of the host.
	Overall Severity `json:"overall"`

	// Completion distinguishes finished hosts from cancelled ones.
	Completion Completion `json:"completion"`

	StartedAt  time.Time `json:"started_at,omitzero"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
}

// NewHostReport builds a report for a reachable host and rolls up its status.
func NewHostReport(host string, index int, results []CheckResult, completion Completion) HostReport {
	return HostReport{
		Host:       host,
		Index:      index,
		Reachable:  true,
		Checks:     results,
		Overall:    RollupHost(true, results),
		Completion: completion,
	}
}

// NewUnreachableReport builds the report for a host that failed its probe.
// It carries no check results.
func NewUnreachableReport(host string, index int, note string) HostReport {
	return HostReport{
		Host:       host,
		Index:      index,
		Reachable:  false,
		ProbeNote:  note,
		Checks:     []CheckResult{},
		Overall:    SeverityUnreachable,
		Completion: CompletionCompleted,
	}
}

// NewCancelledReport builds the report for a host that never started.
func NewCancelledReport(host string, index int) HostReport {
	return HostReport{
		Host:       host,
		Index:      index,
		Checks:     []CheckResult{},
		Overall:    SeverityUnknown,
		Completion: CompletionCancelled,
	}
}

// Result returns the check result of the given kind.
func (h HostReport) Result(kind CheckKind) (CheckResult, bool) {
	for _, r := range h.Checks {
		if r.Kind == kind {
			return r, true
		}
	}
	return CheckResult{}, false
}

// FailedChecks returns how many checks ended Unknown because they failed.
func (h HostReport) FailedChecks() int {
	n := 0
	for _, r := range h.Checks {
		if r.Failed() {
			n++
		}
	}
	return n
}

// RollupHost computes a host's overall severity.
//
// An unreachable host is SeverityUnreachable regardless of results. Otherwise
// the overall severity is the worst non-Unknown result; Unknown results never
// raise or lower it. When every result is Unknown (or there are none), the
// host is Unknown.
func RollupHost(reachable bool, results []CheckResult) Severity {
	if !reachable {
		return SeverityUnreachable
	}
	overall := SeverityUnknown
	for _, r := range results {
		if r.Severity == SeverityUnknown || r.Severity == SeverityUnreachable {
			continue
		}
		overall = Worst(overall, r.Severity)
	}
	return overall
}

// RollupRun computes the worst severity across hosts, under the order
// Unreachable > Critical > Warning > Healthy > Unknown.
func RollupRun(hosts []HostReport) Severity {
	worst := SeverityUnknown
	for _, h := range hosts {
		worst = Worst(worst, h.Overall)
	}
	return worst
}

// Summary counts hosts by overall severity.
type Summary struct {
	Hosts        int `json:"hosts"`
	Healthy      int `json:"healthy"`
	Warning      int `json:"warning"`
	Critical     int `json:"critical"`
	Unreachable  int `json:"unreachable"`
	Unknown      int `json:"unknown"`
	Cancelled    int `json:"cancelled"`
	Checks       int `json:"checks"`
	FailedChecks int `json:"failed_checks"`
}

// Tally summarizes hosts.
func Tally(hosts []HostReport) Summary {
	s := Summary{Hosts: len(hosts)}
	for _, h := range hosts {
		switch h.Overall {
		case SeverityHealthy:
			s.Healthy++
		case SeverityWarning:
			s.Warning++
		case SeverityCritical:
			s.Critical++
		case SeverityUnreachable:
			s.Unreachable++
		default:
			s.Unknown++
		}
		if h.Completion == CompletionCancelled {
			s.Cancelled++
		}
		s.Checks += len(h.Checks)
		s.FailedChecks += h.FailedChecks()
	}
	return s
}
