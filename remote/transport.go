package remote

import (
	"github.com/jonwraymond/hostdiag/checks"
	"github.com/jonwraymond/hostdiag/health"
)

// Transport names.
const (
	TransportHTTP     = "http"
	TransportFixtures = "fixtures"
)

// Config selects and configures the query transport.
type Config struct {
	// Transport is http or fixtures.
	// Default: "http"
	Transport string

	// HTTP configures the http transport.
	HTTP HTTPConfig

	// FixturesPath is the fixture document read by the fixtures transport.
	FixturesPath string
}

// NewQuerier builds the Querier named by config.Transport.
func NewQuerier(config Config) (checks.Querier, error) {
	switch config.Transport {
	case "", TransportHTTP:
		return NewHTTPAgent(config.HTTP)
	case TransportFixtures:
		if config.FixturesPath == "" {
			return nil, &health.ConfigError{Field: "remote.fixtures", Err: ErrInvalidFixture}
		}
		return LoadFixtures(config.FixturesPath)
	default:
		return nil, &health.ConfigError{Field: "remote.transport", Value: config.Transport, Err: ErrUnknownTransport}
	}
}
