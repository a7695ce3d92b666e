package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonwraymond/hostdiag/health"
)

// ServiceChecker inspects the state of a fixed list of services.
// Running is Healthy, stopped is Critical, anything else is Warning.
// A monitored service the host does not report counts as Warning.
type ServiceChecker struct {
	q     Querier
	names []string
}

// NewServiceChecker creates a service state checker for names.
func NewServiceChecker(q Querier, names []string) *ServiceChecker {
	return &ServiceChecker{q: q, names: append([]string(nil), names...)}
}

// Kind returns health.KindServiceState.
func (c *ServiceChecker) Kind() health.CheckKind {
	return health.KindServiceState
}

// Check performs the service state check.
func (c *ServiceChecker) Check(ctx context.Context, host string) (health.CheckResult, error) {
	services, err := c.q.Services(ctx, host, c.names)
	if err != nil {
		return health.CheckResult{}, fmt.Errorf("query services: %w", err)
	}

	reported := make(map[string]bool, len(services))
	worst := health.SeverityHealthy
	var bad []string
	for _, s := range services {
		reported[strings.ToLower(s.Name)] = true
		sev := health.ClassifyServiceState(s.State)
		if sev != health.SeverityHealthy {
			bad = append(bad, fmt.Sprintf("%s %s", s.Name, strings.ToLower(s.State)))
		}
		worst = health.Worst(worst, sev)
	}
	for _, name := range c.names {
		if !reported[strings.ToLower(name)] {
			bad = append(bad, name+" missing")
			worst = health.Worst(worst, health.SeverityWarning)
		}
	}

	note := fmt.Sprintf("%d services running", len(services))
	if len(bad) > 0 {
		note = strings.Join(bad, ", ")
	}

	m := health.ServiceMeasurement{Services: services}
	return health.NewResult(host, m, worst, note), nil
}
