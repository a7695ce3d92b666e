package observe

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonwraymond/hostdiag/health"
)

type middlewareFixture struct {
	mw     *Middleware
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
	logs   *bytes.Buffer
}

func newMiddlewareFixture(t *testing.T) middlewareFixture {
	t.Helper()
	tracer, sr := newTestTracer()
	metrics, reader := newTestMetrics(t)
	var buf bytes.Buffer
	return middlewareFixture{
		mw:     NewMiddleware(tracer, metrics, NewLoggerWithWriter("debug", &buf)),
		spans:  sr,
		reader: reader,
		logs:   &buf,
	}
}

func TestMiddleware_SuccessPath(t *testing.T) {
	f := newMiddlewareFixture(t)

	want := health.CheckResult{Host: "web01", Kind: health.KindUptime, Severity: health.SeverityWarning}
	wrapped := f.mw.Wrap(CheckMeta{Host: HostMeta{Host: "web01"}, Kind: "uptime"},
		func(ctx context.Context, host string) (health.CheckResult, error) {
			return want, nil
		})

	got, err := wrapped(context.Background(), "web01")
	if err != nil {
		t.Fatalf("wrapped() error = %v", err)
	}
	if got.Severity != want.Severity || got.Kind != want.Kind {
		t.Errorf("wrapped() = %+v, want %+v", got, want)
	}

	spans := f.spans.Ended()
	if len(spans) != 1 || spans[0].Name() != "check.uptime" {
		t.Fatalf("spans = %v", spans)
	}
	if got := sumOf(t, collect(t, f.reader), "diag.check.total"); got != 1 {
		t.Errorf("diag.check.total = %d, want 1", got)
	}
	entries := decodeLines(t, f.logs)
	if len(entries) != 1 || entries[0]["msg"] != "check completed" || entries[0]["severity"] != "warning" {
		t.Errorf("log entries = %v", entries)
	}
}

func TestMiddleware_ErrorPath(t *testing.T) {
	f := newMiddlewareFixture(t)

	wrapped := f.mw.Wrap(testCheck, func(ctx context.Context, host string) (health.CheckResult, error) {
		return health.CheckResult{}, health.ErrPermissionDenied
	})

	_, err := wrapped(context.Background(), "web01")
	if !errors.Is(err, health.ErrPermissionDenied) {
		t.Fatalf("wrapped() error = %v, want ErrPermissionDenied", err)
	}

	if f.spans.Ended()[0].Status().Code != codes.Error {
		t.Error("span status should be Error")
	}
	if got := sumOf(t, collect(t, f.reader), "diag.check.failures"); got != 1 {
		t.Errorf("diag.check.failures = %d, want 1", got)
	}
	e := decodeLines(t, f.logs)[0]
	if e["level"] != "warn" || e["note"] != health.NotePermissionDenied || e["host"] != "web01" {
		t.Errorf("log entry = %v", e)
	}
}

func TestMiddleware_PropagatesSpanContext(t *testing.T) {
	f := newMiddlewareFixture(t)

	var inner trace.SpanContext
	wrapped := f.mw.Wrap(testCheck, func(ctx context.Context, host string) (health.CheckResult, error) {
		inner = trace.SpanContextFromContext(ctx)
		return health.CheckResult{}, nil
	})
	_, _ = wrapped(context.Background(), "web01")

	if !inner.IsValid() || inner.SpanID() != f.spans.Ended()[0].SpanContext().SpanID() {
		t.Error("check did not run inside its span")
	}
}

func TestMiddleware_MeasuresDuration(t *testing.T) {
	f := newMiddlewareFixture(t)

	wrapped := f.mw.Wrap(testCheck, func(ctx context.Context, host string) (health.CheckResult, error) {
		time.Sleep(20 * time.Millisecond)
		return health.CheckResult{}, nil
	})
	_, _ = wrapped(context.Background(), "web01")

	e := decodeLines(t, f.logs)[0]
	if d, _ := e["duration_ms"].(float64); d < 20 {
		t.Errorf("duration_ms = %v, want >= 20", e["duration_ms"])
	}
}

func TestNopMiddleware(t *testing.T) {
	mw := NopMiddleware()
	wrapped := mw.Wrap(testCheck, func(ctx context.Context, host string) (health.CheckResult, error) {
		return health.CheckResult{Severity: health.SeverityHealthy}, nil
	})

	got, err := wrapped(context.Background(), "h")
	if err != nil || got.Severity != health.SeverityHealthy {
		t.Errorf("wrapped() = %+v, %v", got, err)
	}
}

