package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/hostdiag/health"
)

func newProfilesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List diagnostic profiles and their checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PROFILE\tCHECKS")
			for _, p := range health.Profiles() {
				kinds := p.Checks()
				names := make([]string, len(kinds))
				for i, k := range kinds {
					names[i] = k.String()
				}
				fmt.Fprintf(tw, "%s\t%s\n", p, strings.Join(names, ", "))
			}
			return tw.Flush()
		},
	}
}
