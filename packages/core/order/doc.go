// Package order rewrites a test collection into dependency-satisfying
// execution order.
//
// Each test is expanded into its prerequisite chain followed by itself,
// the chains are concatenated in collection order, and duplicates are
// removed keeping the first occurrence. Prerequisite signatures resolve
// against the original collection; signatures no test provides are
// ignored. Cyclic dependency chains are rejected with a CycleError
// before any test runs.
package order
