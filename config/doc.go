// Package config loads the hostdiag configuration file.
//
// The file is YAML. Every scalar value goes through strict environment
// expansion before decoding: ${VAR} must be set, and $$ produces a literal
// dollar sign. Comments are never expanded.
//
//	profile: comprehensive
//	concurrency: 8
//	checks:
//	  timeout: 20s
//	  attempts: 2
//	remote:
//	  signing_key: ${HOSTDIAG_SIGNING_KEY}
//	inventory:
//	  hosts_file: /etc/hostdiag/hosts
//
// Load starts from Default, overlays the file and validates the result.
// Every failure is a *health.ConfigError.
package config
