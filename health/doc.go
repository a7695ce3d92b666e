// Package health defines the data model of a host diagnostic run.
//
// It holds the pieces that need no I/O: severities and their ordering, the
// closed set of check kinds, depth profiles, the threshold classifier, check
// results with their kind-specific measurements, and the rollups that turn
// check results into host and run status.
//
// # Severity
//
// Severities are totally ordered:
//
//	Unknown < Healthy < Warning < Critical < Unreachable
//
// Unreachable only ever appears on a host. Unknown is produced by checks that
// failed and is ignored by host rollup unless nothing else is known.
//
// # Profiles
//
// A Profile resolves to an ordered list of check kinds:
//
//	health.ProfileQuick.Checks()         // disk_capacity, service_state
//	health.ProfileStandard.Checks()      // + event_log_volume, uptime, utilization
//	health.ProfileComprehensive.Checks() // + pending_updates, network_config
//
// # Thresholds
//
// Thresholds are immutable values passed to checkers at construction:
//
//	th, err := health.DefaultThresholds().Apply(overrides)
//	sev := th.DiskFreePercent.Classify(15) // SeverityWarning
//
// # Rollup
//
//	overall := health.RollupHost(reachable, results)
//	worst := health.RollupRun(hosts)
package health
