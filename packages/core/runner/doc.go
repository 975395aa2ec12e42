// Package runner executes an ordered test collection and manages the run
// protocol.
//
// It provides functionality for:
//   - Sequential execution of a resolved test order
//   - Lifecycle event publishing (suite start, test start/end, skip, incomplete)
//   - Blocked-test reporting without invoking the test body
//   - Configuration propagation into each runnable test
//   - Early termination via the aggregator's stop predicate
//   - Optional pacing between test bodies
//
// The loop is strictly sequential; stop conditions are honored at test
// boundaries only, never mid-test.
package runner
