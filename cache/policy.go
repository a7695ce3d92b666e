package cache

import (
	"fmt"
	"time"

	"github.com/jonwraymond/hostdiag/health"
)

// Policy decides how long answers are kept.
type Policy struct {
	// DefaultTTL applies to kinds without an entry in PerKind. Zero
	// disables caching for them.
	DefaultTTL time.Duration

	// MaxTTL clamps every TTL. Zero means no maximum.
	MaxTTL time.Duration

	// PerKind overrides DefaultTTL. A zero entry disables caching for that
	// kind.
	PerKind map[health.CheckKind]time.Duration
}

// DefaultPolicy keeps answers for 30 seconds, pending updates for 5 minutes,
// and never caches utilization samples.
func DefaultPolicy() Policy {
	return Policy{
		DefaultTTL: 30 * time.Second,
		MaxTTL:     time.Hour,
		PerKind: map[health.CheckKind]time.Duration{
			health.KindPendingUpdates: 5 * time.Minute,
			health.KindUtilization:    0,
		},
	}
}

// NoCachePolicy disables caching.
func NoCachePolicy() Policy {
	return Policy{}
}

// Validate rejects negative durations and unknown kinds.
func (p Policy) Validate() error {
	if p.DefaultTTL < 0 || p.MaxTTL < 0 {
		return ErrNegativeTTL
	}
	for kind, ttl := range p.PerKind {
		if !kind.Valid() {
			return fmt.Errorf("%w: %q", health.ErrUnknownCheckKind, kind)
		}
		if ttl < 0 {
			return fmt.Errorf("%w: %s", ErrNegativeTTL, kind)
		}
	}
	return nil
}

// TTL returns the effective TTL for kind.
func (p Policy) TTL(kind health.CheckKind) time.Duration {
	ttl, ok := p.PerKind[kind]
	if !ok {
		ttl = p.DefaultTTL
	}
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}
	return ttl
}
