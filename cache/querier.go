package cache

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/hostdiag/checks"
	"github.com/jonwraymond/hostdiag/health"
)

// Querier wraps a checks.Querier with caching. Concurrent misses for the
// same key share one underlying query. Failed queries are not cached.
type Querier struct {
	next   checks.Querier
	cache  Cache
	keyer  Keyer
	policy Policy
	group  singleflight.Group
}

var _ checks.Querier = (*Querier)(nil)

// NewQuerier wraps next. A nil cache gets a fresh MemoryCache and a nil
// keyer gets DefaultKeyer.
func NewQuerier(next checks.Querier, c Cache, keyer Keyer, policy Policy) *Querier {
	if c == nil {
		c = NewMemoryCache()
	}
	if keyer == nil {
		keyer = DefaultKeyer{}
	}
	return &Querier{next: next, cache: c, keyer: keyer, policy: policy}
}

func cached[T any](ctx context.Context, q *Querier, host string, kind health.CheckKind, params []string, fetch func() (T, error)) (T, error) {
	ttl := q.policy.TTL(kind)
	if ttl <= 0 {
		return fetch()
	}

	key := q.keyer.Key(host, kind, params...)
	if data, ok := q.cache.Get(ctx, key); ok {
		var out T
		if json.Unmarshal(data, &out) == nil {
			return out, nil
		}
		_ = q.cache.Delete(ctx, key)
	}

	v, err, _ := q.group.Do(key, func() (any, error) {
		out, err := fetch()
		if err != nil {
			return out, err
		}
		if data, err := json.Marshal(out); err == nil {
			_ = q.cache.Set(ctx, key, data, ttl)
		}
		return out, nil
	})
	out, _ := v.(T)
	return out, err
}

// Volumes returns cached volume capacity.
func (q *Querier) Volumes(ctx context.Context, host string) ([]health.VolumeUsage, error) {
	return cached(ctx, q, host, health.KindDiskCapacity, nil, func() ([]health.VolumeUsage, error) {
		return q.next.Volumes(ctx, host)
	})
}

// Services returns cached service states keyed by the requested names.
func (q *Querier) Services(ctx context.Context, host string, names []string) ([]health.ServiceStatus, error) {
	return cached(ctx, q, host, health.KindServiceState, names, func() ([]health.ServiceStatus, error) {
		return q.next.Services(ctx, host, names)
	})
}

// EventLogErrors returns cached counts keyed by the window start truncated
// to the minute.
func (q *Querier) EventLogErrors(ctx context.Context, host string, since time.Time) (health.EventLogCounts, error) {
	params := []string{since.UTC().Truncate(time.Minute).Format(time.RFC3339)}
	return cached(ctx, q, host, health.KindEventLogVolume, params, func() (health.EventLogCounts, error) {
		return q.next.EventLogErrors(ctx, host, since)
	})
}

// LastBoot returns the cached boot time.
func (q *Querier) LastBoot(ctx context.Context, host string) (time.Time, error) {
	return cached(ctx, q, host, health.KindUptime, nil, func() (time.Time, error) {
		return q.next.LastBoot(ctx, host)
	})
}

// PendingUpdates returns the cached update summary.
func (q *Querier) PendingUpdates(ctx context.Context, host string) (health.UpdateSummary, error) {
	return cached(ctx, q, host, health.KindPendingUpdates, nil, func() (health.UpdateSummary, error) {
		return q.next.PendingUpdates(ctx, host)
	})
}

// Utilization returns the cached utilization sample.
func (q *Querier) Utilization(ctx context.Context, host string) (health.UtilizationSample, error) {
	return cached(ctx, q, host, health.KindUtilization, nil, func() (health.UtilizationSample, error) {
		return q.next.Utilization(ctx, host)
	})
}

// NetworkAdapters returns cached adapter configuration.
func (q *Querier) NetworkAdapters(ctx context.Context, host string) ([]health.NetworkAdapter, error) {
	return cached(ctx, q, host, health.KindNetworkConfig, nil, func() ([]health.NetworkAdapter, error) {
		return q.next.NetworkAdapters(ctx, host)
	})
}
