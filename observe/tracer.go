package observe

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// HostMeta identifies a host within a run for telemetry purposes.
type HostMeta struct {
	Host    string // Target as given in the input list (required)
	Index   int    // Position in the input list
	Profile string // Depth profile of the run (optional)
}

// SpanName returns the span name for the host.
func (m HostMeta) SpanName() string {
	return "host.diagnose"
}

// ID returns a stable identifier for the host within the run. Duplicate
// targets differ by index.
func (m HostMeta) ID() string {
	return m.Host + "#" + strconv.Itoa(m.Index)
}

func (m HostMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("host.name", m.Host),
		attribute.Int("host.index", m.Index),
	}
	if m.Profile != "" {
		attrs = append(attrs, attribute.String("diag.profile", m.Profile))
	}
	return attrs
}

// CheckMeta identifies one check against one host.
type CheckMeta struct {
	Host HostMeta
	Kind string
}

// SpanName returns the span name for the check: check.<kind>.
func (m CheckMeta) SpanName() string {
	return "check." + m.Kind
}

func (m CheckMeta) attributes() []attribute.KeyValue {
	return append(m.Host.attributes(), attribute.String("check.kind", m.Kind))
}

// Tracer wraps OpenTelemetry tracing with host and check span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartHostSpan starts the span covering one host's probe and checks.
	StartHostSpan(ctx context.Context, meta HostMeta) (context.Context, trace.Span)

	// StartCheckSpan starts a child span for one check.
	StartCheckSpan(ctx context.Context, meta CheckMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording the outcome severity and any error.
	EndSpan(span trace.Span, severity string, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartHostSpan(ctx context.Context, meta HostMeta) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(meta.attributes()...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (t *tracerImpl) StartCheckSpan(ctx context.Context, meta CheckMeta) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(meta.attributes()...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, severity string, err error) {
	if severity != "" {
		span.SetAttributes(attribute.String("diag.severity", severity))
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// NopTracer returns a Tracer that records nothing.
func NopTracer() Tracer {
	return &tracerImpl{tracer: tracenoop.NewTracerProvider().Tracer("noop")}
}
