package report

import "github.com/jonwraymond/hostdiag/health"

// Process exit codes.
const (
	ExitHealthy     = 0
	ExitWarning     = 1
	ExitCritical    = 2
	ExitConfigError = 3
)

// ExitCode maps a report to a process exit status.
//
// An Unknown worst severity exits 0 only when the run produced no check
// results at all; Unknown results from checks that ran exit 1.
func ExitCode(r *RunReport) int {
	if r == nil {
		return ExitConfigError
	}
	switch r.Worst {
	case health.SeverityCritical, health.SeverityUnreachable:
		return ExitCritical
	case health.SeverityWarning:
		return ExitWarning
	case health.SeverityHealthy:
		return ExitHealthy
	default:
		if r.Summary.Checks > 0 {
			return ExitWarning
		}
		return ExitHealthy
	}
}
