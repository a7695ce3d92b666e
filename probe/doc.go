// Package probe decides whether a host is reachable before any check runs
// against it.
//
// A Prober returns an Outcome rather than an error: an unreachable host is
// data for the report, not a failure of the run. The TCP prober dials a fixed
// list of management ports with a fixed number of attempts, each bounded by
// a fixed timeout, and the first successful dial wins.
//
// # Ports
//
// A host given as host:port is probed on exactly that port. Otherwise every
// port in Config.Ports is tried in order.
package probe
