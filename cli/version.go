package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

// Build metadata, set with -ldflags "-X".
var (
	Version   = "dev"
	Commit    = ""
	BuildDate = ""
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			writeVersion(cmd.OutOrStdout())
			return nil
		},
	}
}

func writeVersion(out io.Writer) {
	fmt.Fprintf(out, "hostdiag %s\n", Version)
	if Commit != "" {
		fmt.Fprintf(out, "Commit: %s\n", Commit)
	}
	if BuildDate != "" {
		fmt.Fprintf(out, "Built: %s\n", BuildDate)
	}
	fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
}
