// Package remote provides the transports that answer checks.Querier for a
// host.
//
// # HTTP agent
//
// HTTPAgent queries a lightweight agent running on each host over HTTPS.
// Every request carries a short-lived HS256 JWT bearer token whose audience
// is the target host. The agent side of the protocol is AgentHandler, which
// serves any Querier (typically Fixtures in tests and demos) behind the same
// token verification.
//
//	GET /v1/volumes
//	GET /v1/services?name=W32Time&name=WinRM
//	GET /v1/eventlog?since=2026-03-01T08:00:00Z
//	GET /v1/boot
//	GET /v1/updates
//	GET /v1/utilization
//	GET /v1/network
//
// A 401 or 403 response becomes health.ErrPermissionDenied and is never
// retried.
//
// # Fixtures
//
// Fixtures answers from a YAML document keyed by host, with per-check
// failure injection (permission_denied, timeout, panic, or any error text).
// It backs dry runs and the agent command of the CLI.
package remote
