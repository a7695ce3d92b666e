package report

import (
	"html/template"
	"io"
	"time"
)

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"ms": func(d time.Duration) int64 { return d.Milliseconds() },
	"ts": func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Host Health Report {{.ID}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 32px; color: #222; }
table { border-collapse: collapse; width: 100%; margin-bottom: 24px; }
th, td { border: 1px solid #ddd; padding: 6px 8px; text-align: left; }
th { background-color: #f2f2f2; }
.healthy { color: #1a7f37; }
.warning { color: #9a6700; }
.critical { color: #cf222e; font-weight: bold; }
.unreachable { color: #8250df; font-weight: bold; }
.unknown { color: #6e7781; }
</style>
</head>
<body>

<h1>Host Health Report</h1>
<p>Run {{.ID}} &middot; profile {{.Profile}} &middot; {{ts .StartedAt}} to {{ts .CompletedAt}}{{if .Cancelled}} &middot; <strong>cancelled</strong>{{end}}</p>
<p>Worst: <span class="{{.Worst}}">{{.Worst}}</span></p>

<table>
<tr><th>Hosts</th><th>Healthy</th><th>Warning</th><th>Critical</th><th>Unreachable</th><th>Unknown</th><th>Failed checks</th></tr>
<tr><td>{{.Summary.Hosts}}</td><td>{{.Summary.Healthy}}</td><td>{{.Summary.Warning}}</td><td>{{.Summary.Critical}}</td><td>{{.Summary.Unreachable}}</td><td>{{.Summary.Unknown}}</td><td>{{.Summary.FailedChecks}}</td></tr>
</table>

{{range .Hosts}}
<h2>{{.Host}} <span class="{{.Overall}}">{{.Overall}}</span></h2>
{{if not .Reachable}}
<p>{{if .ProbeNote}}{{.ProbeNote}}{{else}}{{.Completion}}{{end}}</p>
{{else}}
<table>
<tr><th>Check</th><th>Severity</th><th>Note</th><th>Duration (ms)</th></tr>
{{range .Checks}}
<tr>
<td>{{.Kind}}</td>
<td class="{{.Severity}}">{{.Severity}}</td>
<td>{{.Note}}{{if .Error}} ({{.Error}}){{end}}</td>
<td>{{ms .Duration}}</td>
</tr>
{{end}}
</table>
{{end}}
{{else}}
<p>No hosts.</p>
{{end}}

</body>
</html>
`))

type htmlRenderer struct{}

func (htmlRenderer) Format() string { return "html" }

func (htmlRenderer) Render(w io.Writer, r *RunReport) error {
	if r == nil {
		return renderErr("html", errNilReport)
	}
	return renderErr("html", htmlTemplate.Execute(w, r))
}

