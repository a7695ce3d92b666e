package checks

import (
	"context"
	"time"

	"github.com/jonwraymond/hostdiag/health"
)

// Querier is the remote-query capability the checkers consume.
//
// Implementations must be safe for concurrent use: checks against the same
// and different hosts run in parallel. A refused query should wrap
// health.ErrPermissionDenied so the failure note can say so.
type Querier interface {
	// Volumes lists the fixed volumes of host.
	Volumes(ctx context.Context, host string) ([]health.VolumeUsage, error)

	// Services returns the state of the named services on host.
	Services(ctx context.Context, host string, names []string) ([]health.ServiceStatus, error)

	// EventLogErrors counts error-level events logged since the given time.
	EventLogErrors(ctx context.Context, host string, since time.Time) (health.EventLogCounts, error)

	// LastBoot returns the last boot time of host.
	LastBoot(ctx context.Context, host string) (time.Time, error)

	// PendingUpdates summarizes updates waiting to be installed.
	PendingUpdates(ctx context.Context, host string) (health.UpdateSummary, error)

	// Utilization samples CPU, memory and page file utilization.
	Utilization(ctx context.Context, host string) (health.UtilizationSample, error)

	// NetworkAdapters lists the network interfaces of host.
	NetworkAdapters(ctx context.Context, host string) ([]health.NetworkAdapter, error)
}
