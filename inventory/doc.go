// Package inventory resolves the list of hosts to diagnose.
//
// Hosts come from command-line arguments, a hosts file (one or more hosts
// per line, # comments), or Kubernetes node discovery through client-go.
// Collect merges several sources in order and drops repeated entries.
package inventory
