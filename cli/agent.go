package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/hostdiag/cache"
	"github.com/jonwraymond/hostdiag/checks"
	"github.com/jonwraymond/hostdiag/config"
	"github.com/jonwraymond/hostdiag/health"
	"github.com/jonwraymond/hostdiag/observe"
	"github.com/jonwraymond/hostdiag/remote"
)

type agentFlags struct {
	listen   string
	fixtures string
	tlsCert  string
	tlsKey   string
	noCache  bool
}

func newAgentCommand(opts Options, load func() (config.Config, error)) *cobra.Command {
	var f agentFlags

	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Serve fixture hosts over the agent protocol",
		Long: "Serve the hosts of a fixture file behind the same bearer-token protocol the run command speaks.\n" +
			"Useful for demos and for exercising the HTTP transport end to end.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			set := cmd.Flags().Changed
			if set("listen") {
				cfg.Agent.Listen = f.listen
			}
			if set("fixtures") {
				cfg.Agent.Fixtures = f.fixtures
			}
			if set("tls-cert") {
				cfg.Agent.TLSCert = f.tlsCert
			}
			if set("tls-key") {
				cfg.Agent.TLSKey = f.tlsKey
			}
			if f.noCache {
				cfg.Agent.Cache = config.Cache{}
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serveAgent(cmd.Context(), opts, cfg)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.listen, "listen", "", "Listen address (default :7911)")
	fl.StringVar(&f.fixtures, "fixtures", "", "Fixture file describing the served hosts")
	fl.StringVar(&f.tlsCert, "tls-cert", "", "TLS certificate file")
	fl.StringVar(&f.tlsKey, "tls-key", "", "TLS key file")
	fl.BoolVar(&f.noCache, "no-cache", false, "Answer every query from the fixtures")
	return cmd
}

// newAgentHandler builds the agent routes: the query protocol under /v1/ and,
// with the prometheus exporter, /metrics.
func newAgentHandler(cfg config.Config, logger observe.Logger) (http.Handler, error) {
	if cfg.Agent.Fixtures == "" {
		return nil, &health.ConfigError{Field: "agent.fixtures", Err: remote.ErrInvalidFixture}
	}
	fixtures, err := remote.LoadFixtures(cfg.Agent.Fixtures)
	if err != nil {
		return nil, err
	}

	rc, err := cfg.RemoteConfig()
	if err != nil {
		return nil, err
	}
	key := rc.HTTP.Token.SigningKey
	if len(key) == 0 {
		return nil, &health.ConfigError{Field: "remote.signing_key", Err: remote.ErrMissingSigningKey}
	}

	var source checks.Querier = fixtures
	if policy := cfg.CachePolicy(); policy.DefaultTTL > 0 || len(cfg.Agent.Cache.PerKind) > 0 {
		source = cache.NewQuerier(fixtures, cache.NewMemoryCache(), cache.DefaultKeyer{}, policy)
	}

	mux := http.NewServeMux()
	mux.Handle("/v1/", remote.NewAgentHandler(source, remote.NewVerifier(key, cfg.Remote.Issuer), logger))
	if cfg.Observe.Metrics.Enabled && cfg.Observe.Metrics.Exporter == "prometheus" {
		mux.Handle("GET /metrics", promhttp.Handler())
	}
	return mux, nil
}

func serveAgent(ctx context.Context, opts Options, cfg config.Config) (err error) {
	oc := cfg.ObserveConfigTo(Version, opts.Stderr)
	oc.Role = observe.RoleAgent
	obs, err := observe.NewObserver(ctx, oc)
	if err != nil {
		return err
	}
	logger := obs.Logger()

	handler, err := newAgentHandler(cfg, logger)
	if err != nil {
		return errors.Join(err, obs.Shutdown(context.WithoutCancel(ctx)))
	}

	ln, err := net.Listen("tcp", cfg.Agent.Listen)
	if err != nil {
		return errors.Join(fmt.Errorf("listen: %w", err), obs.Shutdown(context.WithoutCancel(ctx)))
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info(gctx, "agent listening",
			observe.F("addr", ln.Addr().String()),
			observe.F("tls", cfg.Agent.TLSCert != ""),
		)
		var serr error
		if cfg.Agent.TLSCert != "" {
			serr = srv.ServeTLS(ln, cfg.Agent.TLSCert, cfg.Agent.TLSKey)
		} else {
			serr = srv.Serve(ln)
		}
		if errors.Is(serr, http.ErrServerClosed) {
			return nil
		}
		return serr
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		logger.Info(sctx, "agent stopping")
		return errors.Join(srv.Shutdown(sctx), obs.Shutdown(sctx))
	})
	return g.Wait()
}
