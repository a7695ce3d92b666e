package resilience

import (
	"context"
	"fmt"
	"time"
)

// TimeoutConfig configures the timeout wrapper.
type TimeoutConfig struct {
	// Timeout bounds one call.
	// Default: 30 seconds
	Timeout time.Duration

	// Detach runs the call on a context that ignores parent cancellation,
	// so a check already in flight is allowed to finish when the run is
	// cancelled. The timeout still applies.
	// Default: false
	Detach bool
}

// Timeout bounds calls by a fixed duration.
type Timeout struct {
	config TimeoutConfig
}

// NewTimeout creates a new timeout wrapper.
func NewTimeout(config TimeoutConfig) *Timeout {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &Timeout{config: config}
}

// Execute runs op under the timeout. See Call.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	if t.config.Detach {
		ctx = context.WithoutCancel(ctx)
	}
	_, err := Call(ctx, t.config.Timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// Config returns the timeout configuration.
func (t *Timeout) Config() TimeoutConfig {
	return t.config
}

// Call runs fn on its own goroutine and returns when fn does or when d
// elapses, whichever comes first.
//
// A timed-out call returns an error matching both ErrTimeout and
// context.DeadlineExceeded; a cancelled parent returns ctx.Err(). A panic
// in fn is returned as a *PanicError. If fn ignores its context, its
// goroutine keeps running after Call returns and its result is dropped.
func Call[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type outcome struct {
		v   T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: &PanicError{Value: r}}
			}
		}()
		v, err := fn(ctx)
		done <- outcome{v: v, err: err}
	}()

	var zero T
	select {
	case o := <-done:
		return o.v, o.err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return zero, fmt.Errorf("%w after %s: %w", ErrTimeout, d, context.DeadlineExceeded)
		}
		return zero, ctx.Err()
	}
}
