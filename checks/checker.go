package checks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonwraymond/hostdiag/health"
)

// Checker runs one kind of check against a host.
type Checker interface {
	// Kind returns the check kind this checker produces.
	Kind() health.CheckKind

	// Check measures host and classifies the measurement. A non-nil error
	// means no measurement was obtained.
	Check(ctx context.Context, host string) (health.CheckResult, error)
}

// CheckerFunc is a function adapter for Checker.
type CheckerFunc struct {
	kind health.CheckKind
	fn   func(ctx context.Context, host string) (health.CheckResult, error)
}

// NewCheckerFunc creates a Checker from a function.
func NewCheckerFunc(kind health.CheckKind, fn func(ctx context.Context, host string) (health.CheckResult, error)) *CheckerFunc {
	return &CheckerFunc{kind: kind, fn: fn}
}

// Kind returns the check kind.
func (c *CheckerFunc) Kind() health.CheckKind {
	return c.kind
}

// Check calls the wrapped function.
func (c *CheckerFunc) Check(ctx context.Context, host string) (health.CheckResult, error) {
	return c.fn(ctx, host)
}

// Config configures the built-in checkers.
type Config struct {
	// Services lists the services the service-state check inspects.
	// Default: DefaultServices
	Services []string

	// EventLogWindow is the trailing window the event-log check counts over.
	// Default: 24h
	EventLogWindow time.Duration

	// Now returns the current time. Used by the uptime and event-log checks.
	// Default: time.Now
	Now func() time.Time
}

// DefaultServices are the services inspected when none are configured.
var DefaultServices = []string{
	"EventLog",
	"Dnscache",
	"LanmanServer",
	"LanmanWorkstation",
	"W32Time",
	"WinRM",
}

func (c Config) withDefaults() Config {
	if len(c.Services) == 0 {
		c.Services = append([]string(nil), DefaultServices...)
	}
	if c.EventLogWindow <= 0 {
		c.EventLogWindow = 24 * time.Hour
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Registry maps check kinds to checkers.
type Registry struct {
	mu       sync.RWMutex
	checkers map[health.CheckKind]Checker
}

// NewRegistry creates a registry holding the built-in checker for every
// check kind.
func NewRegistry(q Querier, th health.Thresholds, cfg Config) *Registry {
	cfg = cfg.withDefaults()
	r := &Registry{checkers: make(map[health.CheckKind]Checker)}
	r.Register(NewDiskChecker(q, th))
	r.Register(NewServiceChecker(q, cfg.Services))
	r.Register(NewEventLogChecker(q, th, cfg.EventLogWindow, cfg.Now))
	r.Register(NewUptimeChecker(q, th, cfg.Now))
	r.Register(NewUpdatesChecker(q))
	r.Register(NewUtilizationChecker(q, th))
	r.Register(NewNetworkChecker(q))
	return r
}

// NewEmptyRegistry creates a registry with no checkers.
func NewEmptyRegistry() *Registry {
	return &Registry{checkers: make(map[health.CheckKind]Checker)}
}

// Register adds c, replacing any checker of the same kind.
func (r *Registry) Register(c Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[c.Kind()] = c
}

// Get returns the checker for kind.
func (r *Registry) Get(kind health.CheckKind) (Checker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.checkers[kind]
	return c, ok
}

// Kinds returns the registered kinds in canonical order.
func (r *Registry) Kinds() []health.CheckKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []health.CheckKind
	for _, k := range health.AllCheckKinds() {
		if _, ok := r.checkers[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// Resolve returns the checkers for p's check kinds, in profile order.
func (r *Registry) Resolve(p health.Profile) ([]Checker, error) {
	if !p.Valid() {
		return nil, &health.ConfigError{Field: "profile", Value: string(p), Err: health.ErrInvalidProfile}
	}
	kinds := p.Checks()
	out := make([]Checker, 0, len(kinds))
	for _, k := range kinds {
		c, ok := r.Get(k)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrCheckerNotFound, k)
		}
		out = append(out, c)
	}
	return out, nil
}
