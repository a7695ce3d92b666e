// Package report assembles per-host results into an immutable RunReport and
// renders it for people and machines.
//
// Assembly and rendering are separate stages. Assemble is pure and never
// fails; a Renderer consumes a finished RunReport and a rendering failure
// leaves the report untouched.
//
// # Formats
//
//   - json: the full report, indented
//   - csv: one row per check, plus one row per host without checks
//   - html: a standalone document
//   - text: an aligned table for terminals
//
// # Exit codes
//
// ExitCode maps a report to a process exit status: 0 healthy, 1 warning,
// 2 critical or unreachable. ExitConfigError is reserved for runs that never
// started.
package report
