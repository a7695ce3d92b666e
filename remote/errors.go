package remote

import "errors"

var (
	// ErrMissingSigningKey indicates the token signing key is empty.
	ErrMissingSigningKey = errors.New("remote: signing key is required")

	// ErrInvalidToken indicates a bearer token failed verification.
	ErrInvalidToken = errors.New("remote: invalid token")

	// ErrTokenExpired indicates a bearer token is past its expiry.
	ErrTokenExpired = errors.New("remote: token expired")

	// ErrMissingToken indicates a request carried no bearer token.
	ErrMissingToken = errors.New("remote: missing bearer token")

	// ErrUnexpectedStatus indicates the agent answered with a non-success status.
	ErrUnexpectedStatus = errors.New("remote: unexpected status")

	// ErrNotFound indicates the agent does not know the host or the endpoint.
	ErrNotFound = errors.New("remote: not found")

	// ErrUnknownHost indicates a fixture document has no entry for the host.
	ErrUnknownHost = errors.New("remote: unknown host")

	// ErrInvalidFixture indicates a malformed fixture document.
	ErrInvalidFixture = errors.New("remote: invalid fixture")

	// ErrInvalidPort indicates an agent port outside 1-65535.
	ErrInvalidPort = errors.New("remote: invalid port")

	// ErrUnknownScheme indicates a scheme other than http or https.
	ErrUnknownScheme = errors.New("remote: unknown scheme")

	// ErrUnknownTransport indicates a transport name outside the supported set.
	ErrUnknownTransport = errors.New("remote: unknown transport")
)
