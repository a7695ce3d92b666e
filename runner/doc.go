// Package runner orchestrates a diagnostic run across many hosts.
//
// A Runner probes each host, fans out the checks of the configured depth
// profile to reachable hosts, and assembles a report.RunReport in input
// order. Hosts run on a bounded worker pool; the checks of one host run
// concurrently up to CheckConcurrency. Every probe and check is individually
// time-bounded.
//
// # Failure isolation
//
// Only configuration errors abort a run, and they are reported before any
// host is probed. An unreachable host, a failing check, a timed-out check
// and a panicking check all become data in the report.
//
// # Cancellation
//
// When the run context is cancelled no further host or check starts. Checks
// already in flight finish under their own timeout. Hosts that did not
// finish are tagged health.CompletionCancelled; checks that never started
// on such a host are recorded as Unknown with the note "cancelled".
package runner
