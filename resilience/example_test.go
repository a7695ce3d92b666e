package resilience_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/hostdiag/resilience"
)

func ExampleNewTimeout() {
	timeout := resilience.NewTimeout(resilience.TimeoutConfig{Timeout: 10 * time.Millisecond})

	err := timeout.Execute(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	fmt.Println(errors.Is(err, resilience.ErrTimeout))
	fmt.Println(errors.Is(err, context.DeadlineExceeded))
	// Output:
	// true
	// true
}

func ExamplePermanent() {
	r := resilience.NewRetry(resilience.RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond})

	attempts := 0
	_ = r.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		return resilience.Permanent(errors.New("access denied"))
	})

	fmt.Println("attempts:", attempts)
	// Output:
	// attempts: 1
}

func ExampleNewExecutor() {
	executor := resilience.NewExecutor(
		resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 4, MaxWait: -1})),
		resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond})),
		resilience.WithTimeout(time.Second),
	)

	attempts := 0
	err := executor.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts == 1 {
			return errors.New("RPC server unavailable")
		}
		return nil
	})

	fmt.Println("error:", err)
	fmt.Println("attempts:", attempts)
	// Output:
	// error: <nil>
	// attempts: 2
}
