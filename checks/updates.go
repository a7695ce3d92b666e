package checks

import (
	"context"
	"fmt"

	"github.com/jonwraymond/hostdiag/health"
)

// UpdatesChecker classifies pending updates: any critical update is
// Critical, otherwise any important update is Warning.
type UpdatesChecker struct {
	q Querier
}

// NewUpdatesChecker creates a pending updates checker.
func NewUpdatesChecker(q Querier) *UpdatesChecker {
	return &UpdatesChecker{q: q}
}

// Kind returns health.KindPendingUpdates.
func (c *UpdatesChecker) Kind() health.CheckKind {
	return health.KindPendingUpdates
}

// Check performs the pending updates check.
func (c *UpdatesChecker) Check(ctx context.Context, host string) (health.CheckResult, error) {
	summary, err := c.q.PendingUpdates(ctx, host)
	if err != nil {
		return health.CheckResult{}, fmt.Errorf("query updates: %w", err)
	}

	note := fmt.Sprintf("%d pending (%d critical, %d important)", summary.Total(), summary.Critical, summary.Important)
	m := health.UpdatesMeasurement{UpdateSummary: summary}
	return health.NewResult(host, m, health.ClassifyUpdates(summary.Critical, summary.Important), note), nil
}
