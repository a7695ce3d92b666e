package remote

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jonwraymond/hostdiag/checks"
	"github.com/jonwraymond/hostdiag/health"
	"github.com/jonwraymond/hostdiag/resilience"
)

// TargetHeader carries the host name the request is about, so an agent
// serving several fixture hosts can tell them apart.
const TargetHeader = "X-Hostdiag-Target"

// DefaultAgentPort is the port the agent listens on.
const DefaultAgentPort = 7911

const maxBodyBytes = 4 << 20

// HTTPConfig configures the HTTP agent transport.
type HTTPConfig struct {
	// Port is the agent port on every host.
	// Default: DefaultAgentPort
	Port int

	// Scheme is http or https.
	// Default: "https"
	Scheme string

	// BasePath prefixes every endpoint.
	// Default: "/v1"
	BasePath string

	// Timeout bounds each HTTP request.
	// Default: 30 seconds
	Timeout time.Duration

	// InsecureSkipVerify disables TLS certificate verification.
	// Default: false
	InsecureSkipVerify bool

	// Token configures the bearer token minted per request.
	Token TokenConfig

	// Client overrides the HTTP client. Timeout and InsecureSkipVerify are
	// ignored when set.
	Client *http.Client
}

// HTTPAgent implements checks.Querier against the per-host agent.
type HTTPAgent struct {
	config HTTPConfig
	client *http.Client
	signer *Signer
}

var _ checks.Querier = (*HTTPAgent)(nil)

// NewHTTPAgent creates the transport. A missing signing key or an
// unsupported scheme is a configuration error.
func NewHTTPAgent(config HTTPConfig) (*HTTPAgent, error) {
	if config.Port == 0 {
		config.Port = DefaultAgentPort
	}
	if config.Port < 0 || config.Port > 65535 {
		return nil, &health.ConfigError{Field: "remote.port", Value: strconv.Itoa(config.Port), Err: ErrInvalidPort}
	}
	if config.Scheme == "" {
		config.Scheme = "https"
	}
	if config.Scheme != "http" && config.Scheme != "https" {
		return nil, &health.ConfigError{Field: "remote.scheme", Value: config.Scheme, Err: ErrUnknownScheme}
	}
	if config.BasePath == "" {
		config.BasePath = "/v1"
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	signer, err := NewSigner(config.Token)
	if err != nil {
		return nil, err
	}

	client := config.Client
	if client == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if config.InsecureSkipVerify {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		}
		client = &http.Client{Timeout: config.Timeout, Transport: transport}
	}

	return &HTTPAgent{config: config, client: client, signer: signer}, nil
}

// Volumes returns fixed volume capacity.
func (a *HTTPAgent) Volumes(ctx context.Context, host string) ([]health.VolumeUsage, error) {
	var out []health.VolumeUsage
	err := a.get(ctx, host, "/volumes", nil, &out)
	return out, err
}

// Services returns the state of the named services.
func (a *HTTPAgent) Services(ctx context.Context, host string, names []string) ([]health.ServiceStatus, error) {
	var out []health.ServiceStatus
	err := a.get(ctx, host, "/services", url.Values{"name": names}, &out)
	return out, err
}

// EventLogErrors counts error events since the given time.
func (a *HTTPAgent) EventLogErrors(ctx context.Context, host string, since time.Time) (health.EventLogCounts, error) {
	var out health.EventLogCounts
	q := url.Values{"since": {since.UTC().Format(time.RFC3339)}}
	err := a.get(ctx, host, "/eventlog", q, &out)
	return out, err
}

type bootResponse struct {
	LastBoot time.Time `json:"last_boot"`
}

// LastBoot returns the last boot time.
func (a *HTTPAgent) LastBoot(ctx context.Context, host string) (time.Time, error) {
	var out bootResponse
	err := a.get(ctx, host, "/boot", nil, &out)
	return out.LastBoot, err
}

// PendingUpdates returns pending update counts.
func (a *HTTPAgent) PendingUpdates(ctx context.Context, host string) (health.UpdateSummary, error) {
	var out health.UpdateSummary
	err := a.get(ctx, host, "/updates", nil, &out)
	return out, err
}

// Utilization returns one utilization sample.
func (a *HTTPAgent) Utilization(ctx context.Context, host string) (health.UtilizationSample, error) {
	var out health.UtilizationSample
	err := a.get(ctx, host, "/utilization", nil, &out)
	return out, err
}

// NetworkAdapters returns network adapter configuration.
func (a *HTTPAgent) NetworkAdapters(ctx context.Context, host string) ([]health.NetworkAdapter, error) {
	var out []health.NetworkAdapter
	err := a.get(ctx, host, "/network", nil, &out)
	return out, err
}

// endpoint builds the agent URL for host, replacing any port in host with
// the agent port.
func (a *HTTPAgent) endpoint(host, path string, query url.Values) string {
	name := host
	if h, _, err := net.SplitHostPort(host); err == nil {
		name = h
	}
	u := url.URL{
		Scheme:   a.config.Scheme,
		Host:     net.JoinHostPort(name, strconv.Itoa(a.config.Port)),
		Path:     strings.TrimRight(a.config.BasePath, "/") + path,
		RawQuery: query.Encode(),
	}
	return u.String()
}

func (a *HTTPAgent) get(ctx context.Context, host, path string, query url.Values, out any) error {
	token, err := a.signer.Sign(host)
	if err != nil {
		return resilience.Permanent(fmt.Errorf("sign token: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.endpoint(host, path, query), nil)
	if err != nil {
		return resilience.Permanent(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(TargetHeader, host)

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body := io.LimitReader(resp.Body, maxBodyBytes)

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return resilience.Permanent(fmt.Errorf("%w: agent returned %d: %s", health.ErrPermissionDenied, resp.StatusCode, errorMessage(body)))
	case resp.StatusCode == http.StatusNotFound:
		return resilience.Permanent(fmt.Errorf("%w: %s: %s", ErrNotFound, path, errorMessage(body)))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode, errorMessage(body))
	}

	if err := json.NewDecoder(body).Decode(out); err != nil {
		return resilience.Permanent(fmt.Errorf("decode %s: %w", path, err))
	}
	return nil
}

type errorBody struct {
	Error string `json:"error"`
}

func errorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return "no body"
	}
	var eb errorBody
	if json.Unmarshal(data, &eb) == nil && eb.Error != "" {
		return eb.Error
	}
	return strings.TrimSpace(string(data))
}
