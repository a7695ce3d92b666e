package config

import (
	"strconv"

	"github.com/jonwraymond/hostdiag/health"
	"github.com/jonwraymond/hostdiag/inventory"
	"github.com/jonwraymond/hostdiag/remote"
	"github.com/jonwraymond/hostdiag/report"
)

// Validate checks every section. The first failure is returned as a
// *health.ConfigError.
func (c Config) Validate() error {
	if _, err := health.ParseProfile(c.Profile); err != nil {
		return err
	}
	if err := c.RunnerConfig().Validate(); err != nil {
		return err
	}
	if c.Probe.Attempts < 0 {
		return &health.ConfigError{Field: "probe.attempts", Value: strconv.Itoa(c.Probe.Attempts), Err: ErrNegative}
	}
	if c.Probe.DialTimeout < 0 {
		return &health.ConfigError{Field: "probe.dial_timeout", Value: c.Probe.DialTimeout.String(), Err: ErrNegative}
	}
	if c.Checks.EventLogWindow < 0 {
		return &health.ConfigError{Field: "checks.event_log_window", Value: c.Checks.EventLogWindow.String(), Err: ErrNegative}
	}
	if err := c.ProbeConfig().Validate(); err != nil {
		return err
	}
	if _, err := c.ThresholdTable(); err != nil {
		return err
	}
	if err := c.validateRemote(); err != nil {
		return err
	}
	if c.Inventory.Kubernetes.Enabled {
		if _, err := inventory.NewKube(nil, c.KubeConfig()); err != nil {
			return err
		}
	}
	if _, err := report.NewRenderer(c.Output.Format); err != nil {
		return err
	}
	if err := c.CachePolicy().Validate(); err != nil {
		return &health.ConfigError{Field: "agent.cache", Err: err}
	}
	oc := c.ObserveConfig("")
	if err := oc.Validate(); err != nil {
		return &health.ConfigError{Field: "observe", Err: err}
	}
	return nil
}

func (c Config) validateRemote() error {
	r := c.Remote
	switch r.Transport {
	case "", remote.TransportHTTP:
	case remote.TransportFixtures:
		if r.Fixtures == "" {
			return &health.ConfigError{Field: "remote.fixtures", Err: remote.ErrInvalidFixture}
		}
	default:
		return &health.ConfigError{Field: "remote.transport", Value: r.Transport, Err: remote.ErrUnknownTransport}
	}
	if r.Port < 0 || r.Port > 65535 {
		return &health.ConfigError{Field: "remote.port", Value: strconv.Itoa(r.Port), Err: remote.ErrInvalidPort}
	}
	if r.Scheme != "" && r.Scheme != "http" && r.Scheme != "https" {
		return &health.ConfigError{Field: "remote.scheme", Value: r.Scheme, Err: remote.ErrUnknownScheme}
	}
	if r.TokenTTL < 0 {
		return &health.ConfigError{Field: "remote.token_ttl", Value: r.TokenTTL.String(), Err: ErrNegative}
	}
	return nil
}
