package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/hostdiag/health"
)

// Config is the configuration document.
type Config struct {
	Profile          string `yaml:"profile"`
	Concurrency      int    `yaml:"concurrency"`
	CheckConcurrency int    `yaml:"check_concurrency"`

	Probe      Probe                     `yaml:"probe"`
	Checks     Checks                    `yaml:"checks"`
	Thresholds health.ThresholdOverrides `yaml:"thresholds"`
	Remote     Remote                    `yaml:"remote"`
	Inventory  Inventory                 `yaml:"inventory"`
	Output     Output                    `yaml:"output"`
	Agent      Agent                     `yaml:"agent"`
	Observe    Observe                   `yaml:"observe"`
}

// Probe configures the connectivity probe.
type Probe struct {
	// Timeout bounds the whole probe of one host.
	Timeout time.Duration `yaml:"timeout"`
	// DialTimeout bounds each connection attempt.
	DialTimeout time.Duration `yaml:"dial_timeout"`
	Attempts    int           `yaml:"attempts"`
	Ports       []int         `yaml:"ports"`
}

// Checks configures check execution.
type Checks struct {
	Timeout        time.Duration `yaml:"timeout"`
	Attempts       int           `yaml:"attempts"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
	MaxInFlight    int           `yaml:"max_in_flight"`
	Rate           float64       `yaml:"rate"`
	Services       []string      `yaml:"services"`
	EventLogWindow time.Duration `yaml:"event_log_window"`
}

// Remote configures the query transport.
type Remote struct {
	Transport          string        `yaml:"transport"`
	Port               int           `yaml:"port"`
	Scheme             string        `yaml:"scheme"`
	SigningKey         string        `yaml:"signing_key"`
	SigningKeyFile     string        `yaml:"signing_key_file"`
	Issuer             string        `yaml:"issuer"`
	TokenTTL           time.Duration `yaml:"token_ttl"`
	RequestTimeout     time.Duration `yaml:"request_timeout"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
	Fixtures           string        `yaml:"fixtures"`
}

// Inventory configures where hosts come from besides the command line.
type Inventory struct {
	HostsFile  string     `yaml:"hosts_file"`
	Kubernetes Kubernetes `yaml:"kubernetes"`
}

// Kubernetes configures node discovery. Discovery is off unless Enabled.
type Kubernetes struct {
	Enabled         bool   `yaml:"enabled"`
	Kubeconfig      string `yaml:"kubeconfig"`
	Context         string `yaml:"context"`
	LabelSelector   string `yaml:"label_selector"`
	IncludeNotReady bool   `yaml:"include_not_ready"`
}

// Output configures report rendering.
type Output struct {
	Format string `yaml:"format"`
	// Path receives the report. Empty means standard output.
	Path string `yaml:"path"`
}

// Agent configures the agent command.
type Agent struct {
	Listen   string `yaml:"listen"`
	TLSCert  string `yaml:"tls_cert"`
	TLSKey   string `yaml:"tls_key"`
	Fixtures string `yaml:"fixtures"`
	Cache    Cache  `yaml:"cache"`
}

// Cache configures the agent answer cache.
type Cache struct {
	DefaultTTL time.Duration                      `yaml:"default_ttl"`
	MaxTTL     time.Duration                      `yaml:"max_ttl"`
	PerKind    map[health.CheckKind]time.Duration `yaml:"per_kind"`
}

// Observe configures telemetry.
type Observe struct {
	ServiceName string  `yaml:"service_name"`
	Tracing     Tracing `yaml:"tracing"`
	Metrics     Metrics `yaml:"metrics"`
	Logging     Logging `yaml:"logging"`
}

// Tracing configures span export.
type Tracing struct {
	Enabled   bool    `yaml:"enabled"`
	Exporter  string  `yaml:"exporter"`
	SamplePct float64 `yaml:"sample_pct"`
}

// Metrics configures metric export.
type Metrics struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
}

// Logging configures the structured logger.
type Logging struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Profile:     string(health.ProfileStandard),
		Concurrency: 4,
		Probe: Probe{
			Timeout:     10 * time.Second,
			DialTimeout: 2 * time.Second,
			Attempts:    1,
		},
		Checks: Checks{
			Timeout:        30 * time.Second,
			Attempts:       1,
			RetryDelay:     250 * time.Millisecond,
			EventLogWindow: 24 * time.Hour,
		},
		Remote: Remote{
			Transport: "http",
			Scheme:    "https",
			Issuer:    "hostdiag",
			TokenTTL:  5 * time.Minute,
		},
		Output: Output{Format: "text"},
		Agent: Agent{
			Listen: ":7911",
			Cache: Cache{
				DefaultTTL: 30 * time.Second,
				MaxTTL:     time.Hour,
			},
		},
		Observe: Observe{
			ServiceName: "hostdiag",
			Tracing:     Tracing{Exporter: "none", SamplePct: 1},
			Metrics:     Metrics{Exporter: "none"},
			Logging:     Logging{Enabled: true, Level: "info"},
		},
	}
}

// Load reads, expands and validates the file at path over Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &health.ConfigError{Field: "config", Value: path, Err: err}
	}
	cfg, err := Parse(data)
	if err != nil {
		var ce *health.ConfigError
		if errors.As(err, &ce) && ce.Value == "" {
			ce.Value = path
		}
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes a configuration document over Default and validates it.
// Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Config{}, &health.ConfigError{Field: "config", Err: fmt.Errorf("%w: %w", ErrInvalidDocument, err)}
	}
	if root.Kind == 0 || (root.Kind == yaml.DocumentNode && len(root.Content) == 0) {
		return cfg, cfg.Validate()
	}
	if err := expandNode(&root); err != nil {
		return Config{}, &health.ConfigError{Field: "config", Err: err}
	}

	expanded, err := yaml.Marshal(&root)
	if err != nil {
		return Config{}, &health.ConfigError{Field: "config", Err: fmt.Errorf("%w: %w", ErrInvalidDocument, err)}
	}
	dec := yaml.NewDecoder(bytes.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, &health.ConfigError{Field: "config", Err: fmt.Errorf("%w: %w", ErrInvalidDocument, err)}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// expandNode expands environment references in every scalar value. Keys
// are left alone.
func expandNode(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		v, err := ExpandEnvStrict(n.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		if v != n.Value && n.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle|yaml.LiteralStyle|yaml.FoldedStyle) == 0 {
			// plain scalars resolve their type from the expanded value
			n.Tag = ""
		}
		n.Value = v
	case yaml.MappingNode:
		for i := 1; i < len(n.Content); i += 2 {
			if err := expandNode(n.Content[i]); err != nil {
				return err
			}
		}
	default:
		for _, c := range n.Content {
			if err := expandNode(c); err != nil {
				return err
			}
		}
	}
	return nil
}
