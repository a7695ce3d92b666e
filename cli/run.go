package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/hostdiag/checks"
	"github.com/jonwraymond/hostdiag/config"
	"github.com/jonwraymond/hostdiag/inventory"
	"github.com/jonwraymond/hostdiag/observe"
	"github.com/jonwraymond/hostdiag/probe"
	"github.com/jonwraymond/hostdiag/remote"
	"github.com/jonwraymond/hostdiag/report"
	"github.com/jonwraymond/hostdiag/runner"
)

const shutdownTimeout = 5 * time.Second

type runFlags struct {
	profile       string
	format        string
	output        string
	hostsFile     string
	fixtures      string
	logLevel      string
	kubeconfig    string
	labelSelector string
	concurrency   int
	attempts      int
	checkTimeout  time.Duration
	probeTimeout  time.Duration
	kube          bool
	quiet         bool
}

func newRunCommand(opts Options, load func() (config.Config, error)) *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run [host...]",
		Short: "Diagnose hosts and render a report",
		Long: "Probe every host, run the profile's checks against the reachable ones and render the report.\n" +
			"Hosts come from arguments, --hosts-file and Kubernetes node discovery, in that order.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			applyRunFlags(cmd, &cfg, f)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runDiagnostics(cmd.Context(), opts, cfg, args)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.profile, "profile", "p", "", "Check profile: quick, standard or comprehensive")
	fl.StringVarP(&f.format, "format", "f", "", "Report format: text, json, csv or html")
	fl.StringVarP(&f.output, "output", "o", "", "Write the report to a file instead of standard output")
	fl.StringVar(&f.hostsFile, "hosts-file", "", "File listing hosts, one or more per line")
	fl.StringVar(&f.fixtures, "fixtures", "", "Answer from a fixture file instead of querying hosts")
	fl.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "Disable logging")
	fl.IntVar(&f.concurrency, "concurrency", 0, "Hosts diagnosed at once")
	fl.IntVar(&f.attempts, "attempts", 0, "Attempts per check")
	fl.DurationVar(&f.checkTimeout, "check-timeout", 0, "Timeout per check attempt")
	fl.DurationVar(&f.probeTimeout, "probe-timeout", 0, "Timeout for the connectivity probe")
	fl.BoolVar(&f.kube, "kube", false, "Add Kubernetes nodes to the host list")
	fl.StringVar(&f.kubeconfig, "kubeconfig", "", "Kubeconfig used for node discovery")
	fl.StringVar(&f.labelSelector, "label-selector", "", "Node label selector for discovery")
	return cmd
}

// applyRunFlags overlays the flags the user set on cfg.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config, f runFlags) {
	set := cmd.Flags().Changed
	if set("profile") {
		cfg.Profile = f.profile
	}
	if set("format") {
		cfg.Output.Format = f.format
	}
	if set("output") {
		cfg.Output.Path = f.output
	}
	if set("hosts-file") {
		cfg.Inventory.HostsFile = f.hostsFile
	}
	if set("fixtures") {
		cfg.Remote.Transport = remote.TransportFixtures
		cfg.Remote.Fixtures = f.fixtures
	}
	if set("log-level") {
		cfg.Observe.Logging.Enabled = true
		cfg.Observe.Logging.Level = f.logLevel
	}
	if f.quiet {
		cfg.Observe.Logging.Enabled = false
	}
	if set("concurrency") {
		cfg.Concurrency = f.concurrency
	}
	if set("attempts") {
		cfg.Checks.Attempts = f.attempts
	}
	if set("check-timeout") {
		cfg.Checks.Timeout = f.checkTimeout
	}
	if set("probe-timeout") {
		cfg.Probe.Timeout = f.probeTimeout
	}
	if set("kube") {
		cfg.Inventory.Kubernetes.Enabled = f.kube
	}
	if set("kubeconfig") {
		cfg.Inventory.Kubernetes.Kubeconfig = f.kubeconfig
	}
	if set("label-selector") {
		cfg.Inventory.Kubernetes.LabelSelector = f.labelSelector
	}
}

func runDiagnostics(ctx context.Context, opts Options, cfg config.Config, args []string) (err error) {
	oc := cfg.ObserveConfigTo(Version, opts.Stderr)
	oc.Role = observe.RoleRun
	obs, err := observe.NewObserver(ctx, oc)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if serr := obs.Shutdown(sctx); serr != nil {
			err = errors.Join(err, fmt.Errorf("telemetry shutdown: %w", serr))
		}
	}()
	logger := obs.Logger()

	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}

	rc, err := cfg.RemoteConfig()
	if err != nil {
		return err
	}
	querier, err := remote.NewQuerier(rc)
	if err != nil {
		return err
	}
	var prober probe.Prober = probe.NewTCPProber(cfg.ProbeConfig())
	if fx, ok := querier.(*remote.Fixtures); ok {
		prober = fx
	}

	thresholds, err := cfg.ThresholdTable()
	if err != nil {
		return err
	}
	registry := checks.NewRegistry(querier, thresholds, cfg.ChecksConfig())
	r, err := runner.New(cfg.RunnerConfig(), prober, registry, runner.WithMiddleware(mw))
	if err != nil {
		return err
	}

	hosts, err := collectHosts(ctx, cfg, args)
	if err != nil {
		return err
	}
	logger.Info(ctx, "inventory resolved",
		observe.F("hosts", len(hosts)),
		observe.F("profile", string(r.Config().Profile)),
		observe.F("transport", rc.Transport),
	)

	rep, err := r.Run(ctx, hosts)
	if err != nil {
		return err
	}

	// hosts were diagnosed, so a failed write keeps the severity status
	if werr := writeReport(opts.Stdout, cfg.Output, rep); werr != nil {
		logger.Error(ctx, "report not written", observe.F("error", werr), observe.F("path", cfg.Output.Path))
		fmt.Fprintln(opts.Stderr, "error: write report:", werr)
	}
	if code := report.ExitCode(rep); code != report.ExitHealthy {
		return &exitError{code: code}
	}
	return nil
}

func collectHosts(ctx context.Context, cfg config.Config, args []string) ([]string, error) {
	sources := []inventory.Source{inventory.Static(args)}
	if cfg.Inventory.HostsFile != "" {
		sources = append(sources, inventory.File(cfg.Inventory.HostsFile))
	}
	if cfg.Inventory.Kubernetes.Enabled {
		kc := cfg.KubeConfig()
		client, err := inventory.NewKubeClient(kc)
		if err != nil {
			return nil, err
		}
		k, err := inventory.NewKube(client, kc)
		if err != nil {
			return nil, err
		}
		sources = append(sources, k)
	}
	return inventory.Collect(ctx, sources...)
}

func writeReport(stdout io.Writer, out config.Output, rep *report.RunReport) (err error) {
	w := stdout
	if out.Path != "" {
		f, err := os.Create(out.Path)
		if err != nil {
			return fmt.Errorf("create report file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = f
	}
	return report.Render(w, out.Format, rep)
}
