package report

import (
	"slices"
	"time"

	"github.com/jonwraymond/hostdiag/health"
)

// RunReport is the outcome of one diagnostic run.
type RunReport struct {
	// ID uniquely identifies the run.
	ID string `json:"id"`

	// Profile is the depth profile every host was checked at.
	Profile health.Profile `json:"profile"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`

	// Hosts holds one report per input host, in input order.
	Hosts []health.HostReport `json:"hosts"`

	// Worst is the worst overall severity across hosts.
	Worst health.Severity `json:"worst"`

	// Cancelled is true when at least one host did not finish.
	Cancelled bool `json:"cancelled"`

	Summary health.Summary `json:"summary"`
}

// Assemble builds a RunReport. The hosts slice is copied; an empty or nil
// slice yields an empty host list with Worst = SeverityUnknown.
func Assemble(id string, profile health.Profile, started, completed time.Time, hosts []health.HostReport) *RunReport {
	copied := slices.Clone(hosts)
	if copied == nil {
		copied = []health.HostReport{}
	}

	cancelled := false
	for _, h := range copied {
		if h.Completion == health.CompletionCancelled {
			cancelled = true
			break
		}
	}

	return &RunReport{
		ID:          id,
		Profile:     profile,
		StartedAt:   started,
		CompletedAt: completed,
		Hosts:       copied,
		Worst:       health.RollupRun(copied),
		Cancelled:   cancelled,
		Summary:     health.Tally(copied),
	}
}

// Duration returns the wall time of the run.
func (r *RunReport) Duration() time.Duration {
	if r.CompletedAt.Before(r.StartedAt) {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// Host returns the report at input position index.
func (r *RunReport) Host(index int) (health.HostReport, bool) {
	if index < 0 || index >= len(r.Hosts) {
		return health.HostReport{}, false
	}
	return r.Hosts[index], true
}
