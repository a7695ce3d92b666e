package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/hostdiag/checks"
	"github.com/jonwraymond/hostdiag/health"
	"github.com/jonwraymond/hostdiag/probe"
)

// Injected failure modes for HostFixture.Fail.
const (
	FailPermissionDenied = "permission_denied"
	FailTimeout          = "timeout"
	FailPanic            = "panic"
)

// HostFixture is the canned state of one host.
type HostFixture struct {
	Volumes     []health.VolumeUsage     `yaml:"volumes"`
	Services    []health.ServiceStatus   `yaml:"services"`
	EventLog    health.EventLogCounts    `yaml:"event_log"`
	LastBoot    time.Time                `yaml:"last_boot"`
	Uptime      time.Duration            `yaml:"uptime"`
	Updates     health.UpdateSummary     `yaml:"updates"`
	Utilization health.UtilizationSample `yaml:"utilization"`
	Adapters    []health.NetworkAdapter  `yaml:"adapters"`

	// Latency delays every answer and is reported as the probe latency.
	Latency time.Duration `yaml:"latency"`

	// Unreachable makes Probe report the host as down.
	Unreachable bool `yaml:"unreachable"`

	// Fail maps a check kind to an injected failure: permission_denied,
	// timeout (blocks until the query context ends), panic, or any other
	// text returned as a plain error.
	Fail map[health.CheckKind]string `yaml:"fail"`
}

// Fixtures answers queries from canned host state.
type Fixtures struct {
	// Default answers for hosts without an entry. Optional.
	Default *HostFixture `yaml:"default"`

	// Hosts maps a host name to its state.
	Hosts map[string]HostFixture `yaml:"hosts"`

	now func() time.Time
}

var (
	_ checks.Querier = (*Fixtures)(nil)
	_ probe.Prober   = (*Fixtures)(nil)
)

// ParseFixtures decodes a fixture document. Unknown fields and unknown
// check kinds in fail maps are rejected.
func ParseFixtures(data []byte) (*Fixtures, error) {
	var f Fixtures
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFixture, err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	f.now = time.Now
	return &f, nil
}

// LoadFixtures reads and parses a fixture file. Every error is a
// configuration error.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &health.ConfigError{Field: "remote.fixtures", Value: path, Err: err}
	}
	f, err := ParseFixtures(data)
	if err != nil {
		return nil, &health.ConfigError{Field: "remote.fixtures", Value: path, Err: err}
	}
	return f, nil
}

func (f *Fixtures) validate() error {
	check := func(name string, h HostFixture) error {
		for kind := range h.Fail {
			if !kind.Valid() {
				return fmt.Errorf("%w: host %s: fail: %w: %q", ErrInvalidFixture, name, health.ErrUnknownCheckKind, kind)
			}
		}
		return nil
	}
	if f.Default != nil {
		if err := check("default", *f.Default); err != nil {
			return err
		}
	}
	for name, h := range f.Hosts {
		if err := check(name, h); err != nil {
			return err
		}
	}
	return nil
}

// HostNames returns the named hosts in sorted order.
func (f *Fixtures) HostNames() []string {
	names := make([]string, 0, len(f.Hosts))
	for name := range f.Hosts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (f *Fixtures) host(host string) (HostFixture, bool) {
	h, ok := f.Hosts[host]
	if !ok {
		if name, _, err := net.SplitHostPort(host); err == nil {
			h, ok = f.Hosts[name]
		}
	}
	if !ok && f.Default != nil {
		return *f.Default, true
	}
	return h, ok
}

// Probe reports a host reachable unless it is unknown or marked
// unreachable. The fixture latency is reported without waiting.
func (f *Fixtures) Probe(ctx context.Context, host string) probe.Outcome {
	out := probe.Outcome{Host: host}
	if err := ctx.Err(); err != nil {
		out.Err = fmt.Errorf("%w: %w", health.ErrUnreachable, err)
		return out
	}
	h, ok := f.host(host)
	switch {
	case !ok:
		out.Err = fmt.Errorf("%w: %w: %s", health.ErrUnreachable, ErrUnknownHost, host)
	case h.Unreachable:
		out.Err = fmt.Errorf("%w: no route to host", health.ErrUnreachable)
	default:
		out.Reachable = true
		out.Latency = h.Latency
	}
	return out
}

func (f *Fixtures) lookup(ctx context.Context, host string, kind health.CheckKind) (HostFixture, error) {
	h, ok := f.host(host)
	if !ok {
		return HostFixture{}, fmt.Errorf("%w: %s", ErrUnknownHost, host)
	}

	if h.Latency > 0 {
		timer := time.NewTimer(h.Latency)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return HostFixture{}, ctx.Err()
		}
	}

	switch mode := h.Fail[kind]; mode {
	case "":
		return h, nil
	case FailPermissionDenied:
		return HostFixture{}, fmt.Errorf("%w: access is denied", health.ErrPermissionDenied)
	case FailTimeout:
		<-ctx.Done()
		return HostFixture{}, ctx.Err()
	case FailPanic:
		panic(fmt.Sprintf("injected panic in %s", kind))
	default:
		return HostFixture{}, errors.New(mode)
	}
}

// Volumes returns the fixture volumes.
func (f *Fixtures) Volumes(ctx context.Context, host string) ([]health.VolumeUsage, error) {
	h, err := f.lookup(ctx, host, health.KindDiskCapacity)
	return h.Volumes, err
}

// Services returns the fixture services whose names match, ignoring case.
func (f *Fixtures) Services(ctx context.Context, host string, names []string) ([]health.ServiceStatus, error) {
	h, err := f.lookup(ctx, host, health.KindServiceState)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return h.Services, nil
	}
	var out []health.ServiceStatus
	for _, s := range h.Services {
		if slices.ContainsFunc(names, func(n string) bool { return strings.EqualFold(n, s.Name) }) {
			out = append(out, s)
		}
	}
	return out, nil
}

// EventLogErrors returns the fixture event counts. The window is ignored.
func (f *Fixtures) EventLogErrors(ctx context.Context, host string, _ time.Time) (health.EventLogCounts, error) {
	h, err := f.lookup(ctx, host, health.KindEventLogVolume)
	return h.EventLog, err
}

// LastBoot returns the fixture boot time. A fixture uptime is measured back
// from now and takes precedence over last_boot.
func (f *Fixtures) LastBoot(ctx context.Context, host string) (time.Time, error) {
	h, err := f.lookup(ctx, host, health.KindUptime)
	if err != nil {
		return time.Time{}, err
	}
	if h.Uptime > 0 {
		return f.clock()().Add(-h.Uptime), nil
	}
	return h.LastBoot, nil
}

// PendingUpdates returns the fixture update summary.
func (f *Fixtures) PendingUpdates(ctx context.Context, host string) (health.UpdateSummary, error) {
	h, err := f.lookup(ctx, host, health.KindPendingUpdates)
	return h.Updates, err
}

// Utilization returns the fixture utilization sample.
func (f *Fixtures) Utilization(ctx context.Context, host string) (health.UtilizationSample, error) {
	h, err := f.lookup(ctx, host, health.KindUtilization)
	return h.Utilization, err
}

// NetworkAdapters returns the fixture adapters.
func (f *Fixtures) NetworkAdapters(ctx context.Context, host string) ([]health.NetworkAdapter, error) {
	h, err := f.lookup(ctx, host, health.KindNetworkConfig)
	return h.Adapters, err
}

func (f *Fixtures) clock() func() time.Time {
	if f.now == nil {
		return time.Now
	}
	return f.now
}
