package runner

import (
	"strconv"
	"time"

	"github.com/jonwraymond/hostdiag/health"
)

// Config configures a Runner.
type Config struct {
	// Profile selects the checks run against every reachable host.
	// Default: health.ProfileStandard
	Profile health.Profile

	// Concurrency is the number of hosts diagnosed at once. 1 is serial.
	// Default: 4
	Concurrency int

	// CheckConcurrency is the number of checks run at once per host.
	// Default: 0 (all resolved checks)
	CheckConcurrency int

	// ProbeTimeout bounds the whole connectivity probe of one host.
	// Default: 10 seconds
	ProbeTimeout time.Duration

	// CheckTimeout bounds each check attempt.
	// Default: 30 seconds
	CheckTimeout time.Duration

	// CheckAttempts is the number of attempts per check, including the
	// first. Permission errors are never retried.
	// Default: 1
	CheckAttempts int

	// RetryDelay is the delay before the first retry.
	// Default: 250ms
	RetryDelay time.Duration

	// MaxInFlightQueries caps concurrent checks across all hosts.
	// Default: 0 (unbounded)
	MaxInFlightQueries int

	// QueryRate caps check starts per second across all hosts.
	// Default: 0 (unlimited)
	QueryRate float64
}

// Validate rejects negative values and an unknown profile.
func (c Config) Validate() error {
	if c.Profile != "" && !c.Profile.Valid() {
		return &health.ConfigError{Field: "profile", Value: string(c.Profile), Err: health.ErrInvalidProfile}
	}
	ints := []struct {
		field string
		v     int
	}{
		{"concurrency", c.Concurrency},
		{"check_concurrency", c.CheckConcurrency},
		{"checks.attempts", c.CheckAttempts},
		{"checks.max_in_flight", c.MaxInFlightQueries},
	}
	for _, f := range ints {
		if f.v < 0 {
			return &health.ConfigError{Field: f.field, Value: strconv.Itoa(f.v), Err: ErrNegative}
		}
	}
	durations := []struct {
		field string
		v     time.Duration
	}{
		{"probe.timeout", c.ProbeTimeout},
		{"checks.timeout", c.CheckTimeout},
		{"checks.retry_delay", c.RetryDelay},
	}
	for _, f := range durations {
		if f.v < 0 {
			return &health.ConfigError{Field: f.field, Value: f.v.String(), Err: ErrNegative}
		}
	}
	if c.QueryRate < 0 {
		return &health.ConfigError{Field: "checks.rate", Value: strconv.FormatFloat(c.QueryRate, 'f', -1, 64), Err: ErrNegative}
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Profile == "" {
		c.Profile = health.ProfileStandard
	}
	if c.Concurrency == 0 {
		c.Concurrency = 4
	}
	if c.ProbeTimeout == 0 {
		c.ProbeTimeout = 10 * time.Second
	}
	if c.CheckTimeout == 0 {
		c.CheckTimeout = 30 * time.Second
	}
	if c.CheckAttempts == 0 {
		c.CheckAttempts = 1
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = 250 * time.Millisecond
	}
	return c
}
