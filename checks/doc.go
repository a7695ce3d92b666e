// Package checks provides the check executors: one Checker per health
// CheckKind.
//
// Each checker gathers a measurement through a Querier, the remote-query
// capability supplied by a transport, and classifies it against the
// immutable thresholds it was constructed with. Checkers do not recover
// their own failures; the caller converts a returned error into an Unknown
// result so sibling checks keep running.
//
// # Usage
//
//	reg := checks.NewRegistry(querier, health.DefaultThresholds(), checks.Config{})
//	resolved, err := reg.Resolve(health.ProfileStandard)
//	if err != nil {
//	    return err
//	}
//	for _, c := range resolved {
//	    result, err := c.Check(ctx, "web01")
//	    ...
//	}
//
// Multi-item measurements are classified worst-wins: the disk check reports
// its worst volume, the service check its worst service, and the utilization
// check the worst of CPU, memory and page file.
package checks
