package checks

import (
	"context"
	"fmt"

	"github.com/jonwraymond/hostdiag/health"
)

// UtilizationChecker classifies CPU, memory and page file utilization.
// The result is the worst of the three.
type UtilizationChecker struct {
	q                  Querier
	cpu, mem, pageFile health.Threshold
}

// NewUtilizationChecker creates a utilization checker.
func NewUtilizationChecker(q Querier, th health.Thresholds) *UtilizationChecker {
	return &UtilizationChecker{
		q:        q,
		cpu:      th.CPUPercent,
		mem:      th.MemoryPercent,
		pageFile: th.PageFilePercent,
	}
}

// Kind returns health.KindUtilization.
func (c *UtilizationChecker) Kind() health.CheckKind {
	return health.KindUtilization
}

// Check performs the utilization check.
func (c *UtilizationChecker) Check(ctx context.Context, host string) (health.CheckResult, error) {
	s, err := c.q.Utilization(ctx, host)
	if err != nil {
		return health.CheckResult{}, fmt.Errorf("query utilization: %w", err)
	}

	sev := health.Worst(
		c.cpu.Classify(s.CPUPercent),
		health.Worst(c.mem.Classify(s.MemoryPercent), c.pageFile.Classify(s.PageFilePercent)),
	)
	note := fmt.Sprintf("cpu %.1f%%, memory %.1f%%, page file %.1f%%", s.CPUPercent, s.MemoryPercent, s.PageFilePercent)
	return health.NewResult(host, health.UtilizationMeasurement{UtilizationSample: s}, sev, note), nil
}
