package checks

import (
	"context"
	"fmt"
	"slices"

	"github.com/jonwraymond/hostdiag/health"
)

// DiskChecker classifies the free-space percentage of every fixed volume.
// The host result is its worst volume. Volumes reporting no capacity are
// ignored.
type DiskChecker struct {
	q  Querier
	th health.Threshold
}

// NewDiskChecker creates a disk capacity checker.
func NewDiskChecker(q Querier, th health.Thresholds) *DiskChecker {
	return &DiskChecker{q: q, th: th.DiskFreePercent}
}

// Kind returns health.KindDiskCapacity.
func (c *DiskChecker) Kind() health.CheckKind {
	return health.KindDiskCapacity
}

// Check performs the disk capacity check.
func (c *DiskChecker) Check(ctx context.Context, host string) (health.CheckResult, error) {
	volumes, err := c.q.Volumes(ctx, host)
	if err != nil {
		return health.CheckResult{}, fmt.Errorf("query volumes: %w", err)
	}
	volumes = slices.DeleteFunc(slices.Clone(volumes), func(v health.VolumeUsage) bool {
		return v.TotalBytes == 0
	})
	if len(volumes) == 0 {
		return health.CheckResult{}, fmt.Errorf("query volumes: %w", ErrNoData)
	}

	worst := health.SeverityUnknown
	var note string
	for _, v := range volumes {
		sev := c.th.Classify(v.FreePercent())
		if sev > worst || note == "" {
			note = fmt.Sprintf("%s %.1f%% free", v.Name, v.FreePercent())
		}
		worst = health.Worst(worst, sev)
	}

	m := health.DiskMeasurement{Volumes: volumes}
	return health.NewResult(host, m, worst, note), nil
}
