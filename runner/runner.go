package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/hostdiag/checks"
	"github.com/jonwraymond/hostdiag/health"
	"github.com/jonwraymond/hostdiag/observe"
	"github.com/jonwraymond/hostdiag/probe"
	"github.com/jonwraymond/hostdiag/report"
	"github.com/jonwraymond/hostdiag/resilience"
)

// Runner diagnoses hosts with a fixed profile, prober and checker set.
//
// A Runner is safe for concurrent use; concurrent runs share the
// MaxInFlightQueries and QueryRate budgets.
type Runner struct {
	config   Config
	prober   probe.Prober
	checkers []checks.Checker
	exec     *resilience.Executor
	mw       *observe.Middleware
	now      func() time.Time
	newID    func() string
}

// Option configures a Runner.
type Option func(*Runner)

// WithMiddleware sets the tracing, metrics and logging middleware.
// Default: observe.NopMiddleware()
func WithMiddleware(mw *observe.Middleware) Option {
	return func(r *Runner) {
		if mw != nil {
			r.mw = mw
		}
	}
}

// WithClock sets the clock used for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator sets the run ID generator.
// Default: uuid.NewString
func WithIDGenerator(fn func() string) Option {
	return func(r *Runner) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// New validates cfg, resolves its profile against registry and returns a
// Runner. Every returned error is a configuration error.
func New(cfg Config, prober probe.Prober, registry *checks.Registry, opts ...Option) (*Runner, error) {
	if prober == nil || registry == nil {
		return nil, &health.ConfigError{Field: "runner", Err: ErrNilDependency}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	resolved, err := registry.Resolve(cfg.Profile)
	if err != nil {
		if health.IsConfigError(err) {
			return nil, err
		}
		return nil, &health.ConfigError{Field: "profile", Value: string(cfg.Profile), Err: err}
	}

	r := &Runner{
		config:   cfg,
		prober:   prober,
		checkers: resolved,
		exec:     newExecutor(cfg),
		mw:       observe.NopMiddleware(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func newExecutor(cfg Config) *resilience.Executor {
	opts := []resilience.ExecutorOption{
		resilience.WithTimeoutConfig(resilience.NewTimeout(resilience.TimeoutConfig{
			Timeout: cfg.CheckTimeout,
			Detach:  true,
		})),
	}
	if cfg.CheckAttempts > 1 {
		opts = append(opts, resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{
			MaxAttempts:  cfg.CheckAttempts,
			InitialDelay: cfg.RetryDelay,
			Jitter:       true,
			RetryIf: func(err error) bool {
				return !errors.Is(err, health.ErrPermissionDenied)
			},
		})))
	}
	if cfg.MaxInFlightQueries > 0 {
		opts = append(opts, resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{
			MaxConcurrent: cfg.MaxInFlightQueries,
			MaxWait:       -1,
		})))
	}
	if cfg.QueryRate > 0 {
		opts = append(opts, resilience.WithRateLimiter(resilience.NewRateLimiter(resilience.RateLimiterConfig{
			Rate:        cfg.QueryRate,
			WaitOnLimit: true,
			MaxWait:     -1,
		})))
	}
	return resilience.NewExecutor(opts...)
}

// Config returns the effective configuration.
func (r *Runner) Config() Config {
	return r.config
}

// Checks returns the resolved check kinds in run order.
func (r *Runner) Checks() []health.CheckKind {
	out := make([]health.CheckKind, len(r.checkers))
	for i, c := range r.checkers {
		out[i] = c.Kind()
	}
	return out
}

// ValidateHosts rejects empty entries and entries containing whitespace.
func ValidateHosts(hosts []string) error {
	for i, h := range hosts {
		if h == "" || strings.ContainsFunc(h, unicode.IsSpace) {
			return &health.ConfigError{Field: fmt.Sprintf("hosts[%d]", i), Value: h, Err: health.ErrInvalidHost}
		}
	}
	return nil
}

// Run diagnoses hosts and returns the assembled report.
//
// The only error Run returns is a configuration error for an invalid host
// entry, before any host is probed. Cancelling ctx stops dispatch and Run
// still returns a report.
func (r *Runner) Run(ctx context.Context, hosts []string) (*report.RunReport, error) {
	if err := ValidateHosts(hosts); err != nil {
		return nil, err
	}

	id := r.newID()
	logger := r.mw.Logger().With(observe.F("run_id", id))
	started := r.now()
	logger.Info(ctx, "run started",
		observe.F("hosts", len(hosts)),
		observe.F("profile", string(r.config.Profile)),
		observe.F("concurrency", r.config.Concurrency),
	)

	reports := make([]health.HostReport, len(hosts))

	var g errgroup.Group
	g.SetLimit(r.config.Concurrency)
	for i, host := range hosts {
		if ctx.Err() != nil {
			reports[i] = health.NewCancelledReport(host, i)
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				reports[i] = health.NewCancelledReport(host, i)
				return nil
			}
			reports[i] = r.diagnose(ctx, logger, i, host)
			return nil
		})
	}
	_ = g.Wait()

	rr := report.Assemble(id, r.config.Profile, started, r.now(), reports)

	logger.Info(ctx, "run finished",
		observe.F("worst", rr.Worst.String()),
		observe.F("cancelled", rr.Cancelled),
		observe.F("unreachable", rr.Summary.Unreachable),
		observe.F("failed_checks", rr.Summary.FailedChecks),
		observe.F("duration_ms", float64(rr.Duration().Milliseconds())),
	)
	return rr, nil
}

func (r *Runner) diagnose(ctx context.Context, logger observe.Logger, index int, host string) health.HostReport {
	meta := observe.HostMeta{Host: host, Index: index, Profile: string(r.config.Profile)}
	logger = logger.WithHost(meta)
	tracer := r.mw.Tracer()
	metrics := r.mw.Metrics()

	ctx, span := tracer.StartHostSpan(ctx, meta)
	start := time.Now()

	hr := r.probeAndCheck(ctx, logger, meta)
	hr.StartedAt = start
	hr.FinishedAt = time.Now()

	duration := hr.FinishedAt.Sub(start)
	tracer.EndSpan(span, hr.Overall.String(), nil)
	metrics.RecordHost(ctx, meta, hr.Overall.String(), duration)
	logger.Info(ctx, "host diagnosed",
		observe.F("overall", hr.Overall.String()),
		observe.F("completion", string(hr.Completion)),
		observe.F("checks", len(hr.Checks)),
		observe.F("duration_ms", float64(duration.Milliseconds())),
	)
	return hr
}

func (r *Runner) probeAndCheck(ctx context.Context, logger observe.Logger, meta observe.HostMeta) health.HostReport {
	outcome, err := resilience.Call(ctx, r.config.ProbeTimeout, func(ctx context.Context) (probe.Outcome, error) {
		return r.prober.Probe(ctx, meta.Host), nil
	})
	if err != nil {
		outcome = probe.Outcome{Host: meta.Host, Err: fmt.Errorf("%w: %w", health.ErrUnreachable, err)}
	}

	r.mw.Metrics().RecordProbe(ctx, meta, outcome.Reachable, outcome.Latency)

	if !outcome.Reachable {
		if ctx.Err() != nil {
			return health.NewCancelledReport(meta.Host, meta.Index)
		}
		logger.Warn(ctx, "host unreachable", observe.F("note", outcome.Note()), observe.F("error", outcome.Err))
		return health.NewUnreachableReport(meta.Host, meta.Index, outcome.Note())
	}

	results := make([]health.CheckResult, len(r.checkers))
	var skipped atomic.Bool

	limit := r.config.CheckConcurrency
	if limit <= 0 {
		limit = len(r.checkers)
	}

	var g errgroup.Group
	g.SetLimit(max(limit, 1))
	for j, c := range r.checkers {
		if ctx.Err() != nil {
			results[j] = health.Failed(meta.Host, c.Kind(), health.ErrCheckCancelled)
			skipped.Store(true)
			continue
		}
		g.Go(func() error {
			res, ran := r.runCheck(ctx, meta, c)
			if !ran {
				skipped.Store(true)
			}
			results[j] = res
			return nil
		})
	}
	_ = g.Wait()

	completion := health.CompletionCompleted
	if skipped.Load() {
		completion = health.CompletionCancelled
	}

	hr := health.NewHostReport(meta.Host, meta.Index, results, completion)
	hr.ProbeLatency = outcome.Latency
	return hr
}

// runCheck runs one check through the executor. ran is false when the check
// never started because the run was cancelled.
func (r *Runner) runCheck(ctx context.Context, host observe.HostMeta, c checks.Checker) (health.CheckResult, bool) {
	kind := c.Kind()
	if ctx.Err() != nil {
		return health.Failed(host.Host, kind, health.ErrCheckCancelled), false
	}

	var (
		mu      sync.Mutex
		result  health.CheckResult
		started atomic.Bool
	)
	call := r.mw.Wrap(observe.CheckMeta{Host: host, Kind: string(kind)},
		func(ctx context.Context, target string) (health.CheckResult, error) {
			err := r.exec.Execute(ctx, func(ctx context.Context) error {
				started.Store(true)
				res, err := c.Check(ctx, target)
				if err != nil {
					return err
				}
				if res.Severity == health.SeverityUnreachable {
					return fmt.Errorf("%w: check reported unreachable", health.ErrCheckFailed)
				}
				mu.Lock()
				result = res
				mu.Unlock()
				return nil
			})
			mu.Lock()
			defer mu.Unlock()
			return result, err
		})

	begin := time.Now()
	res, err := call(ctx, host.Host)
	elapsed := time.Since(begin)

	if err != nil {
		switch {
		case ctx.Err() == nil:
		case !started.Load():
			return health.Failed(host.Host, kind, health.ErrCheckCancelled).WithDuration(elapsed), false
		case errors.Is(err, context.Canceled):
			// cut short while waiting to retry
			err = fmt.Errorf("%w: %v", health.ErrCheckCancelled, err)
			return health.Failed(host.Host, kind, err).WithDuration(elapsed), false
		}
		return health.Failed(host.Host, kind, err).WithDuration(elapsed), true
	}

	res.Host = host.Host
	res.Kind = kind
	if res.CheckedAt.IsZero() {
		res.CheckedAt = time.Now()
	}
	return res.WithDuration(elapsed), true
}
