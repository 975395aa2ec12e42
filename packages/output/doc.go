// Package output provides formatters for displaying run results.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: Machine-readable JSON output
//   - JUnit: JUnit XML format for CI integration
//   - TAP: Test Anything Protocol format
//
// Formatters receive one Format call per finished suite. The console
// formatter prints as it goes and can additionally attach to the event
// channel to stream result lines while the suite runs; the machine-readable
// formatters buffer what they receive and write a single document when
// Flush is called after the last suite.
package output
