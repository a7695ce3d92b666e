// Package resilience bounds the suspension points of a diagnostic run.
//
// Every connectivity probe and every remote query is a place where a run can
// stall on a slow or dead host. The patterns here put a ceiling on each of
// them so one bad host cannot hold up the rest of the run.
//
// # Patterns
//
//   - Timeout: bounds one call. Optionally detaches the call from parent
//     cancellation so an in-flight query can finish under its own bound
//     after the run is cancelled. Panics inside the call become errors.
//
//   - Retry: re-attempts a failed query with backoff. Errors marked with
//     Permanent, and cancellation, are never retried.
//
//   - Rate Limiter: paces queries across the run.
//
//   - Bulkhead: caps queries in flight across all hosts.
//
// # Usage
//
//	executor := resilience.NewExecutor(
//	    resilience.WithRateLimiter(resilience.NewRateLimiter(resilience.RateLimiterConfig{
//	        Rate:        20,
//	        WaitOnLimit: true,
//	    })),
//	    resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{
//	        MaxConcurrent: 16,
//	        MaxWait:       -1,
//	    })),
//	    resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{MaxAttempts: 2})),
//	    resilience.WithTimeoutConfig(resilience.NewTimeout(resilience.TimeoutConfig{
//	        Timeout: 30 * time.Second,
//	        Detach:  true,
//	    })),
//	)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    result, err = checker.Check(ctx, host)
//	    return err
//	})
package resilience
