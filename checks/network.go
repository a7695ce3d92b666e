package checks

import (
	"context"
	"fmt"

	"github.com/jonwraymond/hostdiag/health"
)

// NetworkChecker inspects adapter configuration.
//
// No enabled adapter with an address is Critical. Enabled, addressed
// adapters without any default gateway or without any DNS server are Warning.
type NetworkChecker struct {
	q Querier
}

// NewNetworkChecker creates a network configuration checker.
func NewNetworkChecker(q Querier) *NetworkChecker {
	return &NetworkChecker{q: q}
}

// Kind returns health.KindNetworkConfig.
func (c *NetworkChecker) Kind() health.CheckKind {
	return health.KindNetworkConfig
}

// Check performs the network configuration check.
func (c *NetworkChecker) Check(ctx context.Context, host string) (health.CheckResult, error) {
	adapters, err := c.q.NetworkAdapters(ctx, host)
	if err != nil {
		return health.CheckResult{}, fmt.Errorf("query adapters: %w", err)
	}

	sev, note := classifyAdapters(adapters)
	return health.NewResult(host, health.NetworkMeasurement{Adapters: adapters}, sev, note), nil
}

func classifyAdapters(adapters []health.NetworkAdapter) (health.Severity, string) {
	var active int
	var gateway, dns bool
	for _, a := range adapters {
		if !a.Enabled || len(a.Addresses) == 0 {
			continue
		}
		active++
		gateway = gateway || len(a.Gateways) > 0
		dns = dns || len(a.DNSServers) > 0
	}

	switch {
	case active == 0:
		return health.SeverityCritical, "no enabled adapter has an address"
	case !gateway:
		return health.SeverityWarning, "no default gateway configured"
	case !dns:
		return health.SeverityWarning, "no DNS server configured"
	default:
		return health.SeverityHealthy, fmt.Sprintf("%d active adapters", active)
	}
}
