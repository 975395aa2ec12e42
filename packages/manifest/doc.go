// Package manifest loads suite manifests and turns them into runnable
// registries.
//
// A manifest is a YAML file (conventionally *.suite.yaml) declaring the
// suite name, suite flags, shared variables, and scenarios with their
// groups, prerequisites, skip or incomplete markers, and step sequences.
// Step arguments and expectation values support ${VAR} interpolation from
// the manifest's variables first, then the process environment.
//
// Validate checks a manifest against the embedded JSON schema before the
// YAML is trusted; Build produces a registry bound to a module map.
package manifest
