// Package cache memoizes checks.Querier answers.
//
// It provides a Cache interface with a memory implementation, SHA-256 key
// derivation over host, check kind and query parameters, and a TTL policy
// that can differ per check kind. Errors are never cached.
package cache
