package event

import "time"

// Event types published by the execution loop and by running tests.
const (
	SuiteStart     = "suite.start"
	SuiteEnd       = "suite.end"
	TestStart      = "test.start"
	TestEnd        = "test.end"
	TestSkipped    = "test.skipped"
	TestIncomplete = "test.incomplete"
	TestStep       = "test.step"
)

// Outcome events published by the result aggregator as outcomes are
// reported. The loop announces start, end, skip and incomplete itself; only
// the aggregator can classify the rest.
const (
	TestSuccess = "test.success"
	TestFail    = "test.fail"
	TestError   = "test.error"
	TestRisky   = "test.risky"
)

// TestInfo identifies the test an event refers to. The suite package's Test
// interface satisfies it; observers should not need anything richer.
type TestInfo interface {
	Name() string
	Groups() []string
}

// Event carries the payload delivered to listeners. Test is nil for
// suite-level events. Elapsed is only meaningful on test.end events,
// Reason on test.skipped and test.incomplete, Module/Action on test.step.
type Event struct {
	Test    TestInfo
	Suite   string
	Elapsed time.Duration
	Reason  string
	Module  string
	Action  string
}

// Sink accepts published events. The Dispatcher is the standard
// implementation; tests receive a Sink so they can publish step-level events
// without knowing who is listening.
type Sink interface {
	Publish(eventType string, ev Event)
}

// Discard is a Sink that drops every event.
var Discard Sink = discardSink{}

type discardSink struct{}

func (discardSink) Publish(string, Event) {}
