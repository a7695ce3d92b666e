package config

import (
	"io"
	"os"
	"strings"

	"github.com/jonwraymond/hostdiag/cache"
	"github.com/jonwraymond/hostdiag/checks"
	"github.com/jonwraymond/hostdiag/health"
	"github.com/jonwraymond/hostdiag/inventory"
	"github.com/jonwraymond/hostdiag/observe"
	"github.com/jonwraymond/hostdiag/probe"
	"github.com/jonwraymond/hostdiag/remote"
	"github.com/jonwraymond/hostdiag/runner"
)

// RunnerConfig returns the runner section.
func (c Config) RunnerConfig() runner.Config {
	return runner.Config{
		Profile:            health.Profile(strings.ToLower(strings.TrimSpace(c.Profile))),
		Concurrency:        c.Concurrency,
		CheckConcurrency:   c.CheckConcurrency,
		ProbeTimeout:       c.Probe.Timeout,
		CheckTimeout:       c.Checks.Timeout,
		CheckAttempts:      c.Checks.Attempts,
		RetryDelay:         c.Checks.RetryDelay,
		MaxInFlightQueries: c.Checks.MaxInFlight,
		QueryRate:          c.Checks.Rate,
	}
}

// ProbeConfig returns the probe section.
func (c Config) ProbeConfig() probe.Config {
	return probe.Config{
		Ports:    c.Probe.Ports,
		Timeout:  c.Probe.DialTimeout,
		Attempts: c.Probe.Attempts,
	}
}

// ChecksConfig returns the checker settings.
func (c Config) ChecksConfig() checks.Config {
	return checks.Config{
		Services:       c.Checks.Services,
		EventLogWindow: c.Checks.EventLogWindow,
	}
}

// ThresholdTable merges the configured overrides into the defaults.
func (c Config) ThresholdTable() (health.Thresholds, error) {
	return health.DefaultThresholds().Apply(c.Thresholds)
}

// RemoteConfig returns the transport configuration. The signing key file,
// when set, wins over signing_key.
func (c Config) RemoteConfig() (remote.Config, error) {
	key := c.Remote.SigningKey
	if c.Remote.SigningKeyFile != "" {
		data, err := os.ReadFile(c.Remote.SigningKeyFile)
		if err != nil {
			return remote.Config{}, &health.ConfigError{Field: "remote.signing_key_file", Value: c.Remote.SigningKeyFile, Err: err}
		}
		key = strings.TrimSpace(string(data))
	}
	return remote.Config{
		Transport: c.Remote.Transport,
		HTTP: remote.HTTPConfig{
			Port:               c.Remote.Port,
			Scheme:             c.Remote.Scheme,
			Timeout:            c.Remote.RequestTimeout,
			InsecureSkipVerify: c.Remote.InsecureSkipVerify,
			Token: remote.TokenConfig{
				SigningKey: []byte(key),
				Issuer:     c.Remote.Issuer,
				TTL:        c.Remote.TokenTTL,
			},
		},
		FixturesPath: c.Remote.Fixtures,
	}, nil
}

// KubeConfig returns the node discovery settings.
func (c Config) KubeConfig() inventory.KubeConfig {
	k := c.Inventory.Kubernetes
	return inventory.KubeConfig{
		Kubeconfig:      k.Kubeconfig,
		Context:         k.Context,
		LabelSelector:   k.LabelSelector,
		IncludeNotReady: k.IncludeNotReady,
	}
}

// CachePolicy returns the agent answer cache policy.
func (c Config) CachePolicy() cache.Policy {
	p := cache.DefaultPolicy()
	p.DefaultTTL = c.Agent.Cache.DefaultTTL
	p.MaxTTL = c.Agent.Cache.MaxTTL
	for kind, ttl := range c.Agent.Cache.PerKind {
		p.PerKind[kind] = ttl
	}
	return p
}

// ObserveConfig returns the telemetry configuration. Log lines go to
// standard error.
func (c Config) ObserveConfig(version string) observe.Config {
	return c.ObserveConfigTo(version, os.Stderr)
}

// ObserveConfigTo is ObserveConfig with log lines written to out.
func (c Config) ObserveConfigTo(version string, out io.Writer) observe.Config {
	o := c.Observe
	return observe.Config{
		ServiceName: o.ServiceName,
		Version:     version,
		Output:      out,
		Tracing: observe.TracingConfig{
			Enabled:   o.Tracing.Enabled,
			Exporter:  o.Tracing.Exporter,
			SamplePct: o.Tracing.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  o.Metrics.Enabled,
			Exporter: o.Metrics.Exporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: o.Logging.Enabled,
			Level:   o.Logging.Level,
		},
	}
}
