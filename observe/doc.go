// Package observe provides logging, metrics and tracing for diagnostic runs.
//
// An Observer bundles a JSON structured Logger, an OpenTelemetry meter and
// tracer. The run orchestrator opens one span per host and one child span
// per check, records a counter and duration histogram per check, host and
// probe, and logs host and check outcomes with the host attached.
//
// Disabled subsystems fall back to no-op implementations, so callers never
// need nil checks.
package observe
