package report

import (
	"encoding/csv"
	"io"
	"strconv"
)

var csvHeader = []string{
	"host", "index", "reachable", "overall", "completion",
	"check", "severity", "note", "error", "duration_ms",
}

type csvRenderer struct{}

func (csvRenderer) Format() string { return "csv" }

func (csvRenderer) Render(w io.Writer, r *RunReport) error {
	if r == nil {
		return renderErr("csv", errNilReport)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return renderErr("csv", err)
	}

	for _, h := range r.Hosts {
		prefix := []string{
			h.Host,
			strconv.Itoa(h.Index),
			strconv.FormatBool(h.Reachable),
			h.Overall.String(),
			string(h.Completion),
		}
		if len(h.Checks) == 0 {
			row := append(prefix, "", "", h.ProbeNote, "", "")
			if err := cw.Write(row); err != nil {
				return renderErr("csv", err)
			}
			continue
		}
		for _, c := range h.Checks {
			row := append(append([]string{}, prefix...),
				string(c.Kind),
				c.Severity.String(),
				c.Note,
				c.Error,
				strconv.FormatInt(c.Duration.Milliseconds(), 10),
			)
			if err := cw.Write(row); err != nil {
				return renderErr("csv", err)
			}
		}
	}

	cw.Flush()
	return renderErr("csv", cw.Error())
}

