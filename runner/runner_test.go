package runner

import (
	"bytes"
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/jonwraymond/hostdiag/checks"
	"github.com/jonwraymond/hostdiag/health"
	"github.com/jonwraymond/hostdiag/observe"
	"github.com/jonwraymond/hostdiag/probe"
)

func reachable() probe.Prober {
	return probe.ProberFunc(func(ctx context.Context, host string) probe.Outcome {
		return probe.Outcome{Host: host, Reachable: true, Latency: time.Millisecond}
	})
}

func unreachableFor(down ...string) probe.Prober {
	return probe.ProberFunc(func(ctx context.Context, host string) probe.Outcome {
		for _, d := range down {
			if host == d {
				return probe.Outcome{Host: host, Err: health.ErrUnreachable}
			}
		}
		return probe.Outcome{Host: host, Reachable: true}
	})
}

func fixed(kind health.CheckKind, s health.Severity) checks.Checker {
	return checks.NewCheckerFunc(kind, func(ctx context.Context, host string) (health.CheckResult, error) {
		return health.CheckResult{Host: host, Kind: kind, Severity: s, Note: s.String()}, nil
	})
}

// registryOf registers a healthy checker for every kind, then the overrides.
func registryOf(overrides ...checks.Checker) *checks.Registry {
	reg := checks.NewEmptyRegistry()
	for _, k := range health.AllCheckKinds() {
		reg.Register(fixed(k, health.SeverityHealthy))
	}
	for _, c := range overrides {
		reg.Register(c)
	}
	return reg
}

func newRunner(t *testing.T, cfg Config, p probe.Prober, reg *checks.Registry, opts ...Option) *Runner {
	t.Helper()
	r, err := New(cfg, p, reg, opts...)
	require.NoError(t, err)
	return r
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown profile", Config{Profile: "deep"}},
		{"negative concurrency", Config{Concurrency: -1}},
		{"negative check timeout", Config{CheckTimeout: -time.Second}},
		{"negative rate", Config{QueryRate: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, reachable(), registryOf())
			assert.ErrorIs(t, err, health.ErrConfiguration)
		})
	}
}

func TestNew_MissingCheckerIsConfigError(t *testing.T) {
	reg := checks.NewEmptyRegistry()
	reg.Register(fixed(health.KindDiskCapacity, health.SeverityHealthy))

	_, err := New(Config{Profile: health.ProfileQuick}, reachable(), reg)
	assert.ErrorIs(t, err, health.ErrConfiguration)
	assert.ErrorIs(t, err, checks.ErrCheckerNotFound)
}

func TestNew_NilDependencies(t *testing.T) {
	_, err := New(Config{}, nil, registryOf())
	assert.ErrorIs(t, err, health.ErrConfiguration)

	_, err = New(Config{}, reachable(), nil)
	assert.ErrorIs(t, err, ErrNilDependency)
}

func TestNew_Defaults(t *testing.T) {
	r := newRunner(t, Config{}, reachable(), registryOf())

	cfg := r.Config()
	assert.Equal(t, health.ProfileStandard, cfg.Profile)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.CheckTimeout)
	assert.Equal(t, health.ProfileStandard.Checks(), r.Checks())
}

func TestRun_InvalidHostBeforeAnyProbe(t *testing.T) {
	var probes atomic.Int32
	p := probe.ProberFunc(func(ctx context.Context, host string) probe.Outcome {
		probes.Add(1)
		return probe.Outcome{Reachable: true}
	})
	r := newRunner(t, Config{}, p, registryOf())

	for _, hosts := range [][]string{{"web01", ""}, {"web 01"}, {"web01", "\tweb02"}} {
		rr, err := r.Run(context.Background(), hosts)
		assert.Nil(t, rr)
		assert.ErrorIs(t, err, health.ErrConfiguration)
		assert.ErrorIs(t, err, health.ErrInvalidHost)
	}
	assert.Zero(t, probes.Load())
}

func TestRun_EmptyHostList(t *testing.T) {
	r := newRunner(t, Config{}, reachable(), registryOf())

	rr, err := r.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, rr.Hosts)
	assert.NotNil(t, rr.Hosts)
	assert.Equal(t, health.SeverityUnknown, rr.Worst)
	assert.False(t, rr.Cancelled)
}

func TestRun_ResultsFollowProfileOrder(t *testing.T) {
	r := newRunner(t, Config{Profile: health.ProfileComprehensive}, reachable(), registryOf(
		fixed(health.KindUptime, health.SeverityWarning),
	))

	rr, err := r.Run(context.Background(), []string{"web01"})
	require.NoError(t, err)

	h := rr.Hosts[0]
	require.Len(t, h.Checks, len(health.ProfileComprehensive.Checks()))
	for i, k := range health.ProfileComprehensive.Checks() {
		assert.Equal(t, k, h.Checks[i].Kind)
		assert.Equal(t, "web01", h.Checks[i].Host)
	}
	assert.Equal(t, health.SeverityWarning, h.Overall)
	assert.Equal(t, health.CompletionCompleted, h.Completion)
	assert.Equal(t, time.Millisecond, h.ProbeLatency)
}

func TestRun_PreservesInputOrder(t *testing.T) {
	jitter := checks.NewCheckerFunc(health.KindDiskCapacity, func(ctx context.Context, host string) (health.CheckResult, error) {
		time.Sleep(time.Duration(rand.IntN(5)) * time.Millisecond)
		return health.CheckResult{Severity: health.SeverityHealthy}, nil
	})
	r := newRunner(t, Config{Profile: health.ProfileQuick, Concurrency: 8}, reachable(), registryOf(jitter))

	hosts := make([]string, 40)
	for i := range hosts {
		hosts[i] = "host-" + string(rune('a'+i%26)) + string(rune('0'+i/26))
	}

	rr, err := r.Run(context.Background(), hosts)
	require.NoError(t, err)
	require.Len(t, rr.Hosts, len(hosts))
	for i, h := range rr.Hosts {
		assert.Equal(t, hosts[i], h.Host)
		assert.Equal(t, i, h.Index)
	}
}

func TestRun_DuplicateHostsAreIndependent(t *testing.T) {
	var calls atomic.Int32
	counting := checks.NewCheckerFunc(health.KindDiskCapacity, func(ctx context.Context, host string) (health.CheckResult, error) {
		calls.Add(1)
		return health.CheckResult{Severity: health.SeverityHealthy}, nil
	})
	r := newRunner(t, Config{Profile: health.ProfileQuick}, reachable(), registryOf(counting))

	rr, err := r.Run(context.Background(), []string{"web01", "web01"})
	require.NoError(t, err)
	require.Len(t, rr.Hosts, 2)
	assert.Equal(t, 0, rr.Hosts[0].Index)
	assert.Equal(t, 1, rr.Hosts[1].Index)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRun_UnreachableHostSkipsChecks(t *testing.T) {
	var checked sync.Map
	spy := checks.NewCheckerFunc(health.KindDiskCapacity, func(ctx context.Context, host string) (health.CheckResult, error) {
		checked.Store(host, true)
		return health.CheckResult{Severity: health.SeverityCritical}, nil
	})
	r := newRunner(t, Config{Profile: health.ProfileQuick}, unreachableFor("down"), registryOf(spy))

	rr, err := r.Run(context.Background(), []string{"up", "down"})
	require.NoError(t, err)

	down := rr.Hosts[1]
	assert.False(t, down.Reachable)
	assert.Empty(t, down.Checks)
	assert.Equal(t, health.SeverityUnreachable, down.Overall)
	assert.Equal(t, health.CompletionCompleted, down.Completion)
	_, ok := checked.Load("down")
	assert.False(t, ok, "checks ran against an unreachable host")

	up := rr.Hosts[0]
	assert.True(t, up.Reachable)
	assert.Equal(t, health.SeverityCritical, up.Overall)
	assert.Equal(t, health.SeverityUnreachable, rr.Worst)
}

func TestRun_CheckFailuresAreIsolated(t *testing.T) {
	denied := checks.NewCheckerFunc(health.KindDiskCapacity, func(ctx context.Context, host string) (health.CheckResult, error) {
		return health.CheckResult{}, health.ErrPermissionDenied
	})
	panicking := checks.NewCheckerFunc(health.KindServiceState, func(ctx context.Context, host string) (health.CheckResult, error) {
		panic("nil map")
	})
	r := newRunner(t, Config{Profile: health.ProfileStandard}, reachable(), registryOf(
		denied,
		panicking,
		fixed(health.KindUptime, health.SeverityWarning),
	))

	rr, err := r.Run(context.Background(), []string{"web01", "web02"})
	require.NoError(t, err)

	for _, h := range rr.Hosts {
		require.Len(t, h.Checks, 5)

		disk, _ := h.Result(health.KindDiskCapacity)
		assert.Equal(t, health.SeverityUnknown, disk.Severity)
		assert.Equal(t, health.NotePermissionDenied, disk.Note)

		svc, _ := h.Result(health.KindServiceState)
		assert.Equal(t, health.SeverityUnknown, svc.Severity)
		assert.Equal(t, health.NoteCheckFailed, svc.Note)
		assert.Contains(t, svc.Error, "nil map")

		assert.Equal(t, health.SeverityWarning, h.Overall)
		assert.Equal(t, 2, h.FailedChecks())
	}
}

func TestRun_CheckTimeout(t *testing.T) {
	hung := checks.NewCheckerFunc(health.KindServiceState, func(ctx context.Context, host string) (health.CheckResult, error) {
		<-ctx.Done()
		return health.CheckResult{}, ctx.Err()
	})
	r := newRunner(t, Config{Profile: health.ProfileQuick, CheckTimeout: 30 * time.Millisecond}, reachable(), registryOf(hung))

	start := time.Now()
	rr, err := r.Run(context.Background(), []string{"web01"})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)

	svc, ok := rr.Hosts[0].Result(health.KindServiceState)
	require.True(t, ok)
	assert.Equal(t, health.SeverityUnknown, svc.Severity)
	assert.Equal(t, health.NoteTimeout, svc.Note)
	assert.Equal(t, health.SeverityHealthy, rr.Hosts[0].Overall)
}

func TestRun_ProbeTimeout(t *testing.T) {
	p := probe.ProberFunc(func(ctx context.Context, host string) probe.Outcome {
		<-ctx.Done()
		return probe.Outcome{Host: host, Err: ctx.Err()}
	})
	r := newRunner(t, Config{ProbeTimeout: 20 * time.Millisecond}, p, registryOf())

	rr, err := r.Run(context.Background(), []string{"web01"})
	require.NoError(t, err)
	assert.Equal(t, health.SeverityUnreachable, rr.Hosts[0].Overall)
	assert.Equal(t, health.CompletionCompleted, rr.Hosts[0].Completion)
}

func TestRun_ProbeIgnoringContextIsBounded(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	p := probe.ProberFunc(func(ctx context.Context, host string) probe.Outcome {
		<-release
		return probe.Outcome{Host: host, Reachable: true}
	})
	r := newRunner(t, Config{ProbeTimeout: 20 * time.Millisecond}, p, registryOf())

	rr, err := r.Run(context.Background(), []string{"web01"})
	require.NoError(t, err)
	hr := rr.Hosts[0]
	assert.Equal(t, health.SeverityUnreachable, hr.Overall)
	assert.Empty(t, hr.Checks)
	assert.Equal(t, "probe timeout", hr.ProbeNote)
}

func TestRun_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	flaky := checks.NewCheckerFunc(health.KindDiskCapacity, func(ctx context.Context, host string) (health.CheckResult, error) {
		if calls.Add(1) < 3 {
			return health.CheckResult{}, errors.New("rpc server unavailable")
		}
		return health.CheckResult{Severity: health.SeverityHealthy}, nil
	})
	r := newRunner(t, Config{
		Profile:       health.ProfileQuick,
		CheckAttempts: 3,
		RetryDelay:    time.Millisecond,
	}, reachable(), registryOf(flaky))

	rr, err := r.Run(context.Background(), []string{"web01"})
	require.NoError(t, err)

	disk, _ := rr.Hosts[0].Result(health.KindDiskCapacity)
	assert.Equal(t, health.SeverityHealthy, disk.Severity)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRun_PermissionDeniedNotRetried(t *testing.T) {
	var calls atomic.Int32
	denied := checks.NewCheckerFunc(health.KindDiskCapacity, func(ctx context.Context, host string) (health.CheckResult, error) {
		calls.Add(1)
		return health.CheckResult{}, health.ErrPermissionDenied
	})
	r := newRunner(t, Config{Profile: health.ProfileQuick, CheckAttempts: 5, RetryDelay: time.Millisecond}, reachable(), registryOf(denied))

	_, err := r.Run(context.Background(), []string{"web01"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

type gauge struct {
	cur, peak atomic.Int32
}

func (g *gauge) enter() {
	n := g.cur.Add(1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			return
		}
	}
}

func (g *gauge) exit() { g.cur.Add(-1) }

func TestRun_HostConcurrencyBound(t *testing.T) {
	for _, limit := range []int{1, 3} {
		var g gauge
		p := probe.ProberFunc(func(ctx context.Context, host string) probe.Outcome {
			g.enter()
			defer g.exit()
			time.Sleep(5 * time.Millisecond)
			return probe.Outcome{Reachable: true}
		})
		r := newRunner(t, Config{Profile: health.ProfileQuick, Concurrency: limit}, p, registryOf())

		rr, err := r.Run(context.Background(), []string{"a", "b", "c", "d", "e", "f", "g"})
		require.NoError(t, err)
		assert.Len(t, rr.Hosts, 7)
		assert.LessOrEqual(t, int(g.peak.Load()), limit)
	}
}

func TestRun_MaxInFlightQueries(t *testing.T) {
	var g gauge
	slow := func(kind health.CheckKind) checks.Checker {
		return checks.NewCheckerFunc(kind, func(ctx context.Context, host string) (health.CheckResult, error) {
			g.enter()
			defer g.exit()
			time.Sleep(5 * time.Millisecond)
			return health.CheckResult{Severity: health.SeverityHealthy}, nil
		})
	}
	r := newRunner(t, Config{
		Profile:            health.ProfileQuick,
		Concurrency:        4,
		MaxInFlightQueries: 2,
	}, reachable(), registryOf(slow(health.KindDiskCapacity), slow(health.KindServiceState)))

	rr, err := r.Run(context.Background(), []string{"a", "b", "c", "d"})
	require.NoError(t, err)
	assert.Equal(t, 0, rr.Summary.FailedChecks)
	assert.LessOrEqual(t, int(g.peak.Load()), 2)
}

func TestRun_Cancellation(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	blocking := checks.NewCheckerFunc(health.KindDiskCapacity, func(ctx context.Context, host string) (health.CheckResult, error) {
		if host == "web01" {
			close(started)
			<-release
		}
		return health.CheckResult{Severity: health.SeverityWarning}, nil
	})
	r := newRunner(t, Config{
		Profile:          health.ProfileQuick,
		Concurrency:      1,
		CheckConcurrency: 1,
	}, reachable(), registryOf(blocking))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	var hosts []health.HostReport
	var cancelled bool
	go func() {
		defer close(done)
		rr, err := r.Run(ctx, []string{"web01", "web02", "web03"})
		if assert.NoError(t, err) {
			hosts = rr.Hosts
			cancelled = rr.Cancelled
		}
	}()

	<-started
	cancel()
	close(release)
	<-done

	require.Len(t, hosts, 3)
	assert.True(t, cancelled)

	first := hosts[0]
	assert.Equal(t, health.CompletionCancelled, first.Completion)
	disk, _ := first.Result(health.KindDiskCapacity)
	assert.Equal(t, health.SeverityWarning, disk.Severity, "in-flight check should finish")
	svc, _ := first.Result(health.KindServiceState)
	assert.Equal(t, health.NoteCancelled, svc.Note)
	assert.Equal(t, health.SeverityWarning, first.Overall)

	for _, h := range hosts[1:] {
		assert.Equal(t, health.CompletionCancelled, h.Completion)
		assert.Empty(t, h.Checks)
	}
}

func TestRun_CancelledDuringRetryWait(t *testing.T) {
	serviceDone := make(chan struct{})
	failed := make(chan struct{})
	var attempts atomic.Int32
	flaky := checks.NewCheckerFunc(health.KindDiskCapacity, func(ctx context.Context, host string) (health.CheckResult, error) {
		if attempts.Add(1) == 1 {
			<-serviceDone
			defer close(failed)
		}
		return health.CheckResult{}, errors.New("rpc server unavailable")
	})
	service := checks.NewCheckerFunc(health.KindServiceState, func(ctx context.Context, host string) (health.CheckResult, error) {
		defer close(serviceDone)
		return health.CheckResult{Severity: health.SeverityHealthy}, nil
	})
	r := newRunner(t, Config{
		Profile:       health.ProfileQuick,
		CheckAttempts: 3,
		RetryDelay:    time.Hour,
	}, reachable(), registryOf(flaky, service))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-failed
		cancel()
	}()

	rr, err := r.Run(ctx, []string{"web01"})
	require.NoError(t, err)

	hr := rr.Hosts[0]
	assert.Equal(t, health.CompletionCancelled, hr.Completion)
	disk, _ := hr.Result(health.KindDiskCapacity)
	assert.Equal(t, health.SeverityUnknown, disk.Severity)
	assert.Equal(t, health.NoteCancelled, disk.Note)
	assert.Equal(t, int32(1), attempts.Load())
	svc, _ := hr.Result(health.KindServiceState)
	assert.Equal(t, health.SeverityHealthy, svc.Severity)
}

func TestRun_AlreadyCancelled(t *testing.T) {
	var probes atomic.Int32
	p := probe.ProberFunc(func(ctx context.Context, host string) probe.Outcome {
		probes.Add(1)
		return probe.Outcome{Reachable: true}
	})
	r := newRunner(t, Config{}, p, registryOf())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rr, err := r.Run(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.True(t, rr.Cancelled)
	assert.Equal(t, 2, rr.Summary.Cancelled)
	assert.Zero(t, probes.Load())
}

func TestRun_ReportMetadata(t *testing.T) {
	clock := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	r := newRunner(t, Config{Profile: health.ProfileQuick}, reachable(), registryOf(),
		WithIDGenerator(func() string { return "run-42" }),
		WithClock(func() time.Time { return clock }),
	)

	rr, err := r.Run(context.Background(), []string{"web01"})
	require.NoError(t, err)
	assert.Equal(t, "run-42", rr.ID)
	assert.Equal(t, health.ProfileQuick, rr.Profile)
	assert.Equal(t, clock, rr.StartedAt)
	assert.Equal(t, clock, rr.CompletedAt)
}

func TestRun_DefaultIDIsUUID(t *testing.T) {
	r := newRunner(t, Config{Profile: health.ProfileQuick}, reachable(), registryOf())

	a, err := r.Run(context.Background(), nil)
	require.NoError(t, err)
	b, err := r.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Len(t, a.ID, 36)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestRun_Telemetry(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	metrics, err := observe.NewMetrics(mp.Meter("test"))
	require.NoError(t, err)
	var logs bytes.Buffer

	mw := observe.NewMiddleware(observe.NewTracer(tp.Tracer("test")), metrics, observe.NewLoggerWithWriter("info", &logs))
	r := newRunner(t, Config{Profile: health.ProfileQuick}, unreachableFor("down"), registryOf(), WithMiddleware(mw))

	_, err = r.Run(context.Background(), []string{"up", "down"})
	require.NoError(t, err)

	names := map[string]int{}
	for _, s := range sr.Ended() {
		names[s.Name()]++
	}
	assert.Equal(t, 2, names["host.diagnose"])
	assert.Equal(t, 1, names["check.disk_capacity"])
	assert.Equal(t, 1, names["check.service_state"])

	out := logs.String()
	assert.Contains(t, out, `"msg":"run started"`)
	assert.Contains(t, out, `"msg":"host unreachable"`)
	assert.Contains(t, out, `"msg":"run finished"`)
}
