package observe

import (
	"context"
	"time"

	"github.com/jonwraymond/hostdiag/health"
)

// CheckFunc is the signature of a check execution.
type CheckFunc func(ctx context.Context, host string) (health.CheckResult, error)

// Middleware wraps check execution with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: Wrap returns a CheckFunc safe for concurrent use.
//   - Context: the check runs inside its span's context.
//   - Errors: errors and results from the wrapped function pass through unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// NopMiddleware returns a Middleware that records nothing.
func NopMiddleware() *Middleware {
	return NewMiddleware(NopTracer(), NopMetrics(), NopLogger())
}

// Tracer returns the middleware tracer.
func (m *Middleware) Tracer() Tracer { return m.tracer }

// Metrics returns the middleware metrics.
func (m *Middleware) Metrics() Metrics { return m.metrics }

// Logger returns the middleware logger.
func (m *Middleware) Logger() Logger { return m.logger }

// Wrap wraps the check fn of kind, run against meta.Host.
func (m *Middleware) Wrap(meta CheckMeta, fn CheckFunc) CheckFunc {
	return func(ctx context.Context, host string) (health.CheckResult, error) {
		ctx, span := m.tracer.StartCheckSpan(ctx, meta)

		start := time.Now()
		result, err := fn(ctx, host)
		duration := time.Since(start)

		severity := health.SeverityUnknown.String()
		if err == nil {
			severity = result.Severity.String()
		}

		m.tracer.EndSpan(span, severity, err)
		m.metrics.RecordCheck(ctx, meta, severity, duration, err)

		logger := m.logger.WithHost(meta.Host)
		fields := []Field{
			F("check", meta.Kind),
			F("duration_ms", float64(duration.Milliseconds())),
		}
		if err != nil {
			fields = append(fields, F("error", err), F("note", health.FailureNote(err)))
			logger.Warn(ctx, "check failed", fields...)
		} else {
			fields = append(fields, F("severity", severity))
			logger.Debug(ctx, "check completed", fields...)
		}

		return result, err
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
