package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/hostdiag/health"
)

// EventLogChecker counts system and application error events over a
// trailing window.
type EventLogChecker struct {
	q      Querier
	th     health.Threshold
	window time.Duration
	now    func() time.Time
}

// NewEventLogChecker creates an event log volume checker.
func NewEventLogChecker(q Querier, th health.Thresholds, window time.Duration, now func() time.Time) *EventLogChecker {
	if window <= 0 {
		window = 24 * time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &EventLogChecker{q: q, th: th.EventLogErrors, window: window, now: now}
}

// Kind returns health.KindEventLogVolume.
func (c *EventLogChecker) Kind() health.CheckKind {
	return health.KindEventLogVolume
}

// Check performs the event log volume check.
func (c *EventLogChecker) Check(ctx context.Context, host string) (health.CheckResult, error) {
	counts, err := c.q.EventLogErrors(ctx, host, c.now().Add(-c.window))
	if err != nil {
		return health.CheckResult{}, fmt.Errorf("query event log: %w", err)
	}

	m := health.EventLogMeasurement{EventLogCounts: counts, Window: c.window}
	note := fmt.Sprintf("%d errors in %s (system %d, application %d)", m.Total(), c.window, counts.System, counts.Application)
	return health.NewResult(host, m, c.th.Classify(float64(m.Total())), note), nil
}
