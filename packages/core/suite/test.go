package suite

import (
	"time"

	"github.com/abdul-hamid-achik/stagehand/packages/core/event"
)

// Test is the unit of work the execution loop drives. A Test is created by a
// loading collaborator (packages/manifest), added to a Registry, consumed
// once by the loop, and discarded. Name and Groups satisfy event.TestInfo so
// a Test can ride inside events unchanged.
type Test interface {
	Name() string
	Groups() []string
	Metadata() *Metadata

	// Configuration propagated by the loop before the body runs.
	SetEventSink(event.Sink)
	SetReportUselessTests(bool)
	SetCollectCoverage(bool)

	// Run executes the test body and reports the outcome into the
	// aggregator. Blocked tests never reach Run.
	Run(ResultAggregator)
}

// Signer is implemented by tests whose dependency-matching signature differs
// from their display name.
type Signer interface {
	Signature() string
}

// Dependent is implemented by tests that declare prerequisite signatures.
type Dependent interface {
	DependencySignatures() []string
}

// GlobalStateAware is implemented by tests that can back up and verify
// process-global state (environment variables) around their body.
type GlobalStateAware interface {
	SetBackupGlobals(bool)
	SetStrictGlobalState(bool)
}

// OutputPolicyAware is implemented by tests that can flag unexpected output
// produced while running.
type OutputPolicyAware interface {
	SetDisallowOutput(bool)
}

// SignatureOf maps a Test to the string identity used for dependency
// matching and duplicate detection.
func SignatureOf(t Test) string {
	if s, ok := t.(Signer); ok {
		return s.Signature()
	}
	return t.Name()
}

// ResultAggregator tallies outcomes and owns the stop predicate the loop
// polls at each test boundary. The loop records blocked tests directly; a
// runnable test's own Run reports through the same interface.
type ResultAggregator interface {
	ShouldStop() bool
	AddTest(Test)
	AddSkipped(Test, *SkippedError)
	AddIncomplete(Test, *IncompleteError)
	AddSuccess(Test, time.Duration)
	AddFailure(Test, error, time.Duration)
	AddError(Test, error, time.Duration)
	AddRisky(Test, string)
}

// SkippedError marks a test that was intentionally not executed.
type SkippedError struct {
	Reason string
}

func (e *SkippedError) Error() string {
	if e.Reason == "" {
		return "test skipped"
	}
	return e.Reason
}

// IncompleteError marks a test deliberately left unfinished.
type IncompleteError struct {
	Reason string
}

func (e *IncompleteError) Error() string {
	if e.Reason == "" {
		return "test incomplete"
	}
	return e.Reason
}
