package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/hostdiag/config"
	"github.com/jonwraymond/hostdiag/report"
)

// Options holds process-level wiring.
type Options struct {
	// Stdout receives reports and command output. Default: os.Stdout
	Stdout io.Writer
	// Stderr receives log lines and errors. Default: os.Stderr
	Stderr io.Writer
}

func (o Options) withDefaults() Options {
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	return o
}

// exitError carries a non-zero exit status that is not a failure, such as a
// run that found warnings.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// NewRootCmd builds the command tree.
func NewRootCmd(opts Options) *cobra.Command {
	opts = opts.withDefaults()
	var configPath string

	root := &cobra.Command{
		Use:           "hostdiag",
		Short:         "Multi-host system health diagnostics",
		Long:          "hostdiag probes a fleet of hosts, runs health checks against each one and renders a consolidated report.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)
	root.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("HOSTDIAG_CONFIG"), "Configuration file (env HOSTDIAG_CONFIG)")

	load := func() (config.Config, error) {
		if configPath == "" {
			return config.Default(), nil
		}
		return config.Load(configPath)
	}

	root.AddCommand(
		newRunCommand(opts, load),
		newAgentCommand(opts, load),
		newProfilesCommand(),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command line and returns the process exit status.
func Execute(ctx context.Context, args []string, opts Options) int {
	opts = opts.withDefaults()
	root := NewRootCmd(opts)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	var ee *exitError
	switch {
	case err == nil:
		return report.ExitHealthy
	case errors.As(err, &ee):
		return ee.code
	default:
		// configuration and startup failures share one status
		fmt.Fprintln(opts.Stderr, "error:", err)
		return report.ExitConfigError
	}
}
