package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records diagnostic run metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCheck records one check with its severity and duration. A
	// non-nil err counts as a failed check.
	RecordCheck(ctx context.Context, meta CheckMeta, severity string, duration time.Duration, err error)

	// RecordProbe records one connectivity probe.
	RecordProbe(ctx context.Context, meta HostMeta, reachable bool, latency time.Duration)

	// RecordHost records the overall outcome of one host.
	RecordHost(ctx context.Context, meta HostMeta, overall string, duration time.Duration)
}

type metricsImpl struct {
	checkCount    metric.Int64Counter
	checkFailures metric.Int64Counter
	checkDuration metric.Float64Histogram
	probeCount    metric.Int64Counter
	probeLatency  metric.Float64Histogram
	hostCount     metric.Int64Counter
	hostDuration  metric.Float64Histogram
}

// NewMetrics creates the run instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	var m metricsImpl
	var err error

	if m.checkCount, err = meter.Int64Counter("diag.check.total",
		metric.WithDescription("Checks executed, by kind and severity"),
		metric.WithUnit("{check}")); err != nil {
		return nil, err
	}
	if m.checkFailures, err = meter.Int64Counter("diag.check.failures",
		metric.WithDescription("Checks that produced no measurement"),
		metric.WithUnit("{check}")); err != nil {
		return nil, err
	}
	if m.checkDuration, err = meter.Float64Histogram("diag.check.duration_ms",
		metric.WithDescription("Check duration in milliseconds"),
		metric.WithUnit("ms")); err != nil {
		return nil, err
	}
	if m.probeCount, err = meter.Int64Counter("diag.probe.total",
		metric.WithDescription("Connectivity probes, by reachability"),
		metric.WithUnit("{probe}")); err != nil {
		return nil, err
	}
	if m.probeLatency, err = meter.Float64Histogram("diag.probe.latency_ms",
		metric.WithDescription("Successful probe latency in milliseconds"),
		metric.WithUnit("ms")); err != nil {
		return nil, err
	}
	if m.hostCount, err = meter.Int64Counter("diag.host.total",
		metric.WithDescription("Hosts diagnosed, by overall severity"),
		metric.WithUnit("{host}")); err != nil {
		return nil, err
	}
	if m.hostDuration, err = meter.Float64Histogram("diag.host.duration_ms",
		metric.WithDescription("Host diagnosis duration in milliseconds"),
		metric.WithUnit("ms")); err != nil {
		return nil, err
	}

	return &m, nil
}

func (m *metricsImpl) RecordCheck(ctx context.Context, meta CheckMeta, severity string, duration time.Duration, err error) {
	kind := metric.WithAttributes(attribute.String("check.kind", meta.Kind))

	m.checkCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check.kind", meta.Kind),
		attribute.String("diag.severity", severity),
	))
	if err != nil {
		m.checkFailures.Add(ctx, 1, kind)
	}
	m.checkDuration.Record(ctx, float64(duration)/float64(time.Millisecond), kind)
}

func (m *metricsImpl) RecordProbe(ctx context.Context, meta HostMeta, reachable bool, latency time.Duration) {
	m.probeCount.Add(ctx, 1, metric.WithAttributes(attribute.Bool("host.reachable", reachable)))
	if reachable {
		m.probeLatency.Record(ctx, float64(latency)/float64(time.Millisecond))
	}
}

func (m *metricsImpl) RecordHost(ctx context.Context, meta HostMeta, overall string, duration time.Duration) {
	opt := metric.WithAttributes(attribute.String("diag.severity", overall))
	m.hostCount.Add(ctx, 1, opt)
	m.hostDuration.Record(ctx, float64(duration)/float64(time.Millisecond), opt)
}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics {
	return nopMetrics{}
}

type nopMetrics struct{}

func (nopMetrics) RecordCheck(context.Context, CheckMeta, string, time.Duration, error) {}
func (nopMetrics) RecordProbe(context.Context, HostMeta, bool, time.Duration)          {}
func (nopMetrics) RecordHost(context.Context, HostMeta, string, time.Duration)         {}
