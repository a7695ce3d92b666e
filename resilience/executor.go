package resilience

import (
	"context"
	"time"
)

// Op is one bounded call, such as a single remote query.
type Op func(context.Context) error

// Executor composes the resilience patterns around one call.
//
// Layers run from outermost to innermost: rate limiter, bulkhead, retry,
// timeout. Each retry attempt gets a fresh timeout. Waiting for a token or
// a slot observes ctx cancellation; a detached timeout shields only the
// call itself.
type Executor struct {
	rateLimiter *RateLimiter
	bulkhead    *Bulkhead
	retry       *Retry
	timeout     *Timeout
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates an executor. With no options it calls op directly.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithRetry retries failed attempts.
func WithRetry(r *Retry) ExecutorOption {
	return func(e *Executor) { e.retry = r }
}

// WithRateLimiter paces calls.
func WithRateLimiter(rl *RateLimiter) ExecutorOption {
	return func(e *Executor) { e.rateLimiter = rl }
}

// WithBulkhead caps concurrent calls.
func WithBulkhead(b *Bulkhead) ExecutorOption {
	return func(e *Executor) { e.bulkhead = b }
}

// WithTimeout bounds each attempt by d.
func WithTimeout(d time.Duration) ExecutorOption {
	return WithTimeoutConfig(NewTimeout(TimeoutConfig{Timeout: d}))
}

// WithTimeoutConfig bounds each attempt with t.
func WithTimeoutConfig(t *Timeout) ExecutorOption {
	return func(e *Executor) { e.timeout = t }
}

// layer wraps an Op in one pattern. A nil pattern leaves it unchanged.
type layer func(Op) Op

// Execute runs op through all configured patterns.
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	// innermost first
	layers := []layer{
		func(next Op) Op {
			if e.timeout == nil {
				return next
			}
			return func(ctx context.Context) error { return e.timeout.Execute(ctx, next) }
		},
		func(next Op) Op {
			if e.retry == nil {
				return next
			}
			return func(ctx context.Context) error { return e.retry.Execute(ctx, next) }
		},
		func(next Op) Op {
			if e.bulkhead == nil {
				return next
			}
			return func(ctx context.Context) error { return e.bulkhead.Execute(ctx, next) }
		},
		func(next Op) Op {
			if e.rateLimiter == nil {
				return next
			}
			return func(ctx context.Context) error { return e.rateLimiter.Execute(ctx, next) }
		},
	}

	call := Op(op)
	for _, wrap := range layers {
		call = wrap(call)
	}
	return call(ctx)
}
