package remote

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jonwraymond/hostdiag/health"
)

// TokenConfig configures bearer token signing.
type TokenConfig struct {
	// SigningKey is the shared HS256 secret. Required.
	SigningKey []byte

	// Issuer is the iss claim.
	// Default: "hostdiag"
	Issuer string

	// Subject is the sub claim.
	// Default: "hostdiag"
	Subject string

	// TTL is how long a token stays valid.
	// Default: 5 minutes
	TTL time.Duration
}

// Signer mints one bearer token per request.
type Signer struct {
	config TokenConfig
	now    func() time.Time
}

// NewSigner creates a signer. An empty key is a configuration error.
func NewSigner(config TokenConfig) (*Signer, error) {
	if len(config.SigningKey) == 0 {
		return nil, &health.ConfigError{Field: "remote.signing_key", Err: ErrMissingSigningKey}
	}
	if config.Issuer == "" {
		config.Issuer = "hostdiag"
	}
	if config.Subject == "" {
		config.Subject = "hostdiag"
	}
	if config.TTL <= 0 {
		config.TTL = 5 * time.Minute
	}
	return &Signer{config: config, now: time.Now}, nil
}

// Sign returns a token whose audience is host.
func (s *Signer) Sign(host string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    s.config.Issuer,
		Subject:   s.config.Subject,
		Audience:  jwt.ClaimStrings{host},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now.Add(-30 * time.Second)),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TTL)),
		ID:        uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.config.SigningKey)
}

// Verifier validates tokens minted by a Signer with the same key.
type Verifier struct {
	key    []byte
	issuer string
}

// NewVerifier creates a verifier. An empty issuer accepts any issuer.
func NewVerifier(key []byte, issuer string) *Verifier {
	return &Verifier{key: key, issuer: issuer}
}

// Verify checks the signature, expiry, issuer and, when audience is not
// empty, the audience of token.
func (v *Verifier) Verify(token, audience string) error {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}

	_, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return v.key, nil
	}, opts...)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
}
