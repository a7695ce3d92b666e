package inventory

import (
	"context"
	"fmt"
	"strings"
)

// Source yields host names.
//
// Contract:
// - Context: implementations that perform I/O must honor cancellation.
// - Order: the returned order is the order hosts appear in the report.
type Source interface {
	Hosts(ctx context.Context) ([]string, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]string, error)

// Hosts calls f.
func (f SourceFunc) Hosts(ctx context.Context) ([]string, error) { return f(ctx) }

// Static is a fixed host list.
type Static []string

// Hosts returns a copy of s.
func (s Static) Hosts(context.Context) ([]string, error) {
	return append([]string(nil), s...), nil
}

// Collect concatenates the hosts of every source, keeping the first
// occurrence of names that repeat ignoring case. A source error stops the
// collection. No hosts at all is ErrEmptyInventory.
func Collect(ctx context.Context, sources ...Source) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for i, src := range sources {
		hosts, err := src.Hosts(ctx)
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
		for _, h := range hosts {
			key := strings.ToLower(h)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, h)
		}
	}
	if len(out) == 0 {
		return nil, ErrEmptyInventory
	}
	return out, nil
}
