package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/hostdiag/health"
)

// UptimeChecker reports days since last boot.
type UptimeChecker struct {
	q   Querier
	th  health.Threshold
	now func() time.Time
}

// NewUptimeChecker creates an uptime checker.
func NewUptimeChecker(q Querier, th health.Thresholds, now func() time.Time) *UptimeChecker {
	if now == nil {
		now = time.Now
	}
	return &UptimeChecker{q: q, th: th.UptimeDays, now: now}
}

// Kind returns health.KindUptime.
func (c *UptimeChecker) Kind() health.CheckKind {
	return health.KindUptime
}

// Check performs the uptime check.
func (c *UptimeChecker) Check(ctx context.Context, host string) (health.CheckResult, error) {
	boot, err := c.q.LastBoot(ctx, host)
	if err != nil {
		return health.CheckResult{}, fmt.Errorf("query last boot: %w", err)
	}
	if boot.IsZero() {
		return health.CheckResult{}, fmt.Errorf("query last boot: %w", ErrNoData)
	}

	uptime := c.now().Sub(boot)
	if uptime < 0 {
		uptime = 0
	}
	m := health.UptimeMeasurement{LastBoot: boot, Uptime: uptime}
	note := fmt.Sprintf("up %.1f days", m.Days())
	return health.NewResult(host, m, c.th.Classify(m.Days()), note), nil
}
