package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jonwraymond/hostdiag/health"
)

type textRenderer struct{}

func (textRenderer) Format() string { return "text" }

func (textRenderer) Render(w io.Writer, r *RunReport) error {
	if r == nil {
		return renderErr("text", errNilReport)
	}

	bw := bufio.NewWriter(w)
	elapsed := strings.TrimSpace(humanize.RelTime(r.StartedAt, r.CompletedAt, "", ""))
	fmt.Fprintf(bw, "Run %s  profile=%s  hosts=%d  elapsed=%s\n", r.ID, r.Profile, len(r.Hosts), elapsed)
	if r.Cancelled {
		fmt.Fprintln(bw, "Run was cancelled before every host finished.")
	}
	fmt.Fprintln(bw)

	tw := tabwriter.NewWriter(bw, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "HOST\tCHECK\tSEVERITY\tDETAIL")
	for _, h := range r.Hosts {
		fmt.Fprintf(tw, "%s\t-\t%s\t%s\n", h.Host, strings.ToUpper(h.Overall.String()), hostDetail(h))
		for _, c := range h.Checks {
			fmt.Fprintf(tw, "\t%s\t%s\t%s\n", c.Kind, c.Severity, checkDetail(c))
		}
	}
	if err := tw.Flush(); err != nil {
		return renderErr("text", err)
	}

	s := r.Summary
	fmt.Fprintf(bw, "\n%s hosts: %d healthy, %d warning, %d critical, %d unreachable, %d unknown",
		humanize.Comma(int64(s.Hosts)), s.Healthy, s.Warning, s.Critical, s.Unreachable, s.Unknown)
	if s.FailedChecks > 0 {
		fmt.Fprintf(bw, " (%d of %d checks failed)", s.FailedChecks, s.Checks)
	}
	fmt.Fprintf(bw, "\nworst: %s\n", r.Worst)

	return renderErr("text", bw.Flush())
}

func hostDetail(h health.HostReport) string {
	switch {
	case h.Completion == health.CompletionCancelled && len(h.Checks) == 0:
		return "cancelled"
	case !h.Reachable:
		if h.ProbeNote != "" {
			return "unreachable: " + h.ProbeNote
		}
		return "unreachable"
	case h.ProbeLatency > 0:
		return fmt.Sprintf("probe %s", h.ProbeLatency.Round(100*time.Microsecond))
	default:
		return ""
	}
}

func checkDetail(c health.CheckResult) string {
	if c.Failed() {
		return fmt.Sprintf("%s: %s", c.Note, c.Error)
	}

	switch m := c.Measurement.(type) {
	case health.DiskMeasurement:
		parts := make([]string, 0, len(m.Volumes))
		for _, v := range m.Volumes {
			parts = append(parts, fmt.Sprintf("%s %s free of %s",
				v.Name, humanize.IBytes(v.FreeBytes), humanize.IBytes(v.TotalBytes)))
		}
		return strings.Join(parts, "; ")
	case health.EventLogMeasurement:
		return fmt.Sprintf("%s errors in %s", humanize.Comma(int64(m.Total())), m.Window)
	case health.UptimeMeasurement:
		return fmt.Sprintf("booted %s", humanize.RelTime(m.LastBoot, m.LastBoot.Add(m.Uptime), "ago", "from now"))
	}
	return c.Note
}
