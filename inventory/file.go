package inventory

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jonwraymond/hostdiag/health"
)

// ParseHosts reads host names from r. Entries are separated by whitespace or
// commas; everything after # on a line is a comment.
func ParseHosts(r io.Reader) ([]string, error) {
	var hosts []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		hosts = append(hosts, fields...)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return hosts, nil
}

// File reads hosts from a file on every call.
type File string

// Hosts parses the file. A missing or unreadable file is a configuration
// error.
func (f File) Hosts(context.Context) ([]string, error) {
	fh, err := os.Open(string(f))
	if err != nil {
		return nil, &health.ConfigError{Field: "inventory.hosts_file", Value: string(f), Err: err}
	}
	defer fh.Close()

	hosts, err := ParseHosts(fh)
	if err != nil {
		return nil, &health.ConfigError{Field: "inventory.hosts_file", Value: string(f), Err: fmt.Errorf("read: %w", err)}
	}
	return hosts, nil
}
