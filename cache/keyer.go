package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"

	"github.com/jonwraymond/hostdiag/health"
)

// Keyer derives cache keys for a query.
//
// Contract:
// - Determinism: the same host, kind and parameter set yield the same key,
// regardless of parameter order or case.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	Key(host string, kind health.CheckKind, params ...string) string
}

// DefaultKeyer builds keys of the form hostdiag:<kind>:<host>:<hash>, where
// hash is the first 16 hex characters of SHA-256 over the sorted, lower-cased
// parameters.
type DefaultKeyer struct{}

var _ Keyer = DefaultKeyer{}

// Key returns the key for one query.
func (DefaultKeyer) Key(host string, kind health.CheckKind, params ...string) string {
	norm := make([]string, len(params))
	for i, p := range params {
		norm[i] = strings.ToLower(strings.TrimSpace(p))
	}
	slices.Sort(norm)

	sum := sha256.Sum256([]byte(strings.Join(norm, "\x00")))
	return "hostdiag:" + string(kind) + ":" + strings.ToLower(host) + ":" + hex.EncodeToString(sum[:8])
}
