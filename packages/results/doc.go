// Package results aggregates per-test outcomes for one suite run.
//
// The Aggregator implements the result protocol the execution loop and the
// tests report into. It assigns each run a unique ID, tallies outcomes,
// keeps an ordered record per outcome, and owns the stop policy (stop on
// failure, stop on error, max failures, external Stop). A Summary snapshot
// feeds reporters, exporters, and the history store.
package results
