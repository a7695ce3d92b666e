// Package cli implements the hostdiag command line.
//
//	hostdiag run web01 web02 --profile comprehensive --format html -o report.html
//	hostdiag run --hosts-file fleet.txt --fixtures demo.yaml
//	hostdiag agent --fixtures demo.yaml --listen :7911
//	hostdiag profiles
//	hostdiag version
//
// Execute maps the outcome to the process exit status: the report's exit
// code after a run, report.ExitConfigError when the run could not start.
package cli
