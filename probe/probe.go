package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/jonwraymond/hostdiag/health"
)

// Outcome is the result of probing one host.
type Outcome struct {
	// Host is the probed target.
	Host string

	// Reachable is true when a dial succeeded.
	Reachable bool

	// Latency is the duration of the successful dial.
	Latency time.Duration

	// Port is the port that answered, or 0 when unreachable.
	Port int

	// Err explains an unreachable outcome. It matches health.ErrUnreachable.
	Err error
}

// Note returns a short explanation for the report, empty when reachable.
func (o Outcome) Note() string {
	if o.Reachable {
		return ""
	}
	if o.Err == nil {
		return "unreachable"
	}
	switch {
	case errors.Is(o.Err, context.Canceled):
		return "probe cancelled"
	case errors.Is(o.Err, context.DeadlineExceeded):
		return "probe timeout"
	}
	var opErr *net.OpError
	if errors.As(o.Err, &opErr) && opErr.Err != nil {
		return opErr.Err.Error()
	}
	return o.Err.Error()
}

// Prober tests host connectivity.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: implementations must stop dialing once ctx is done.
// - Errors: failures are reported in Outcome.Err, never panicked.
type Prober interface {
	Probe(ctx context.Context, host string) Outcome
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, host string) Outcome

// Probe calls f(ctx, host).
func (f ProberFunc) Probe(ctx context.Context, host string) Outcome {
	return f(ctx, host)
}

// Dialer opens network connections. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// DefaultPorts are the management ports tried when a host names none:
// WinRM over HTTP and HTTPS, then SMB.
var DefaultPorts = []int{5985, 5986, 445}

// Config configures the TCP prober.
type Config struct {
	// Ports are dialed in order until one answers.
	// Default: DefaultPorts
	Ports []int

	// Timeout bounds each dial.
	// Default: 2s
	Timeout time.Duration

	// Attempts is the fixed number of passes over Ports. There is no backoff
	// between passes.
	// Default: 1
	Attempts int

	// Dialer opens connections.
	// Default: &net.Dialer{}
	Dialer Dialer
}

// Validate checks the configured ports.
func (c Config) Validate() error {
	for _, p := range c.Ports {
		if p < 1 || p > 65535 {
			return &health.ConfigError{Field: "probe.ports", Value: strconv.Itoa(p), Err: ErrInvalidPort}
		}
	}
	return nil
}

// TCPProber probes hosts by opening a TCP connection.
type TCPProber struct {
	config Config
}

// NewTCPProber creates a TCP prober with defaults applied.
func NewTCPProber(config Config) *TCPProber {
	if len(config.Ports) == 0 {
		config.Ports = DefaultPorts
	}
	if config.Timeout <= 0 {
		config.Timeout = 2 * time.Second
	}
	if config.Attempts <= 0 {
		config.Attempts = 1
	}
	if config.Dialer == nil {
		config.Dialer = &net.Dialer{}
	}
	return &TCPProber{config: config}
}

// Config returns the effective configuration.
func (p *TCPProber) Config() Config {
	return p.config
}

// Probe dials host and reports the first port that accepts a connection.
func (p *TCPProber) Probe(ctx context.Context, host string) Outcome {
	addrs, err := p.addresses(host)
	if err != nil {
		return Outcome{Host: host, Err: fmt.Errorf("%w: %w", health.ErrUnreachable, err)}
	}

	var lastErr error
	for attempt := 0; attempt < p.config.Attempts; attempt++ {
		for _, a := range addrs {
			if err := ctx.Err(); err != nil {
				return Outcome{Host: host, Err: fmt.Errorf("%w: %w", health.ErrUnreachable, err)}
			}

			latency, err := p.dial(ctx, a.addr)
			if err == nil {
				return Outcome{Host: host, Reachable: true, Latency: latency, Port: a.port}
			}
			lastErr = err
		}
	}

	return Outcome{Host: host, Err: fmt.Errorf("%w: %w", health.ErrUnreachable, lastErr)}
}

func (p *TCPProber) dial(ctx context.Context, addr string) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	start := time.Now()
	conn, err := p.config.Dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return 0, err
	}
	latency := time.Since(start)
	_ = conn.Close()
	return latency, nil
}

type address struct {
	addr string
	port int
}

func (p *TCPProber) addresses(host string) ([]address, error) {
	if h, port, err := net.SplitHostPort(host); err == nil {
		n, err := strconv.Atoi(port)
		if err != nil || n < 1 || n > 65535 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPort, port)
		}
		return []address{{addr: net.JoinHostPort(h, port), port: n}}, nil
	}

	if len(p.config.Ports) == 0 {
		return nil, ErrNoPorts
	}
	out := make([]address, 0, len(p.config.Ports))
	for _, n := range p.config.Ports {
		out = append(out, address{addr: net.JoinHostPort(host, strconv.Itoa(n)), port: n})
	}
	return out, nil
}
