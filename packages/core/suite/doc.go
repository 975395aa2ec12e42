// Package suite defines the contracts shared by the stagehand execution
// engine: the Test protocol, per-test metadata, the result aggregator
// protocol, capability modules, and the Registry that owns a suite's ordered
// test collection and configuration for the duration of one run.
//
// The package deliberately contains no execution logic. Ordering lives in
// packages/core/order, the run loop in packages/core/runner, and concrete
// test implementations in packages/scenario.
package suite
