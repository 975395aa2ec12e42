package results

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abdul-hamid-achik/stagehand/packages/core/event"
	"github.com/abdul-hamid-achik/stagehand/packages/core/suite"
)

// Aggregator is the default suite.ResultAggregator. All methods are safe for
// concurrent use; Stop in particular is meant to be called from a signal
// handler while the loop is running.
type Aggregator struct {
	mu sync.Mutex

	runID   string
	suite   string
	started time.Time

	total      int
	passed     int
	failed     int
	errors     int
	skipped    int
	incomplete int
	risky      int

	records []Record
	sink    event.Sink

	stopOnFailure bool
	stopOnError   bool
	maxFailures   int
	stopped       bool
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithStopOnFailure stops the run at the first failed or errored test.
func WithStopOnFailure() Option {
	return func(a *Aggregator) { a.stopOnFailure = true }
}

// WithStopOnError stops the run at the first errored test.
func WithStopOnError() Option {
	return func(a *Aggregator) { a.stopOnError = true }
}

// WithMaxFailures stops the run once failed plus errored reaches n. Zero
// means unlimited.
func WithMaxFailures(n int) Option {
	return func(a *Aggregator) { a.maxFailures = n }
}

// WithSink publishes test.success, test.fail, test.error and test.risky
// through sink as outcomes are recorded, so listeners can show live results.
func WithSink(sink event.Sink) Option {
	return func(a *Aggregator) { a.sink = sink }
}

// New returns an aggregator for one run of the named suite.
func New(suiteName string, opts ...Option) *Aggregator {
	a := &Aggregator{
		runID:   uuid.New().String(),
		suite:   suiteName,
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RunID returns the unique identifier assigned to this run.
func (a *Aggregator) RunID() string { return a.runID }

// ShouldStop reports whether the loop must stop at the next test boundary.
func (a *Aggregator) ShouldStop() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return true
	}
	hardFailures := a.failed + a.errors
	switch {
	case a.stopOnFailure && hardFailures > 0:
		a.stopped = true
	case a.stopOnError && a.errors > 0:
		a.stopped = true
	case a.maxFailures > 0 && hardFailures >= a.maxFailures:
		a.stopped = true
	}
	return a.stopped
}

// Stop requests termination at the next test boundary regardless of policy.
func (a *Aggregator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
}

// AddTest counts a test as reached. The loop calls this for blocked tests;
// an executed test's run protocol calls it on entry.
func (a *Aggregator) AddTest(suite.Test) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.total++
}

// AddSkipped records an intentionally unexecuted test.
func (a *Aggregator) AddSkipped(t suite.Test, e *suite.SkippedError) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.skipped++
	a.records = append(a.records, Record{
		Test:   t.Name(),
		Groups: t.Groups(),
		Status: StatusSkip,
		Reason: e.Reason,
	})
}

// AddIncomplete records a test deliberately left unfinished.
func (a *Aggregator) AddIncomplete(t suite.Test, e *suite.IncompleteError) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.incomplete++
	a.records = append(a.records, Record{
		Test:   t.Name(),
		Groups: t.Groups(),
		Status: StatusIncomplete,
		Reason: e.Reason,
	})
}

// AddSuccess records a passing test.
func (a *Aggregator) AddSuccess(t suite.Test, elapsed time.Duration) {
	a.mu.Lock()
	a.passed++
	a.records = append(a.records, Record{
		Test:    t.Name(),
		Groups:  t.Groups(),
		Status:  StatusPass,
		Elapsed: elapsed,
	})
	a.mu.Unlock()

	a.announce(event.TestSuccess, t, "", elapsed)
}

// AddFailure records an expectation that did not hold.
func (a *Aggregator) AddFailure(t suite.Test, err error, elapsed time.Duration) {
	a.mu.Lock()
	a.failed++
	a.records = append(a.records, Record{
		Test:    t.Name(),
		Groups:  t.Groups(),
		Status:  StatusFail,
		Err:     err,
		Elapsed: elapsed,
	})
	a.mu.Unlock()

	a.announce(event.TestFail, t, errReason(err), elapsed)
}

// AddError records a test that could not run to completion.
func (a *Aggregator) AddError(t suite.Test, err error, elapsed time.Duration) {
	a.mu.Lock()
	a.errors++
	a.records = append(a.records, Record{
		Test:    t.Name(),
		Groups:  t.Groups(),
		Status:  StatusError,
		Err:     err,
		Elapsed: elapsed,
	})
	a.mu.Unlock()

	a.announce(event.TestError, t, errReason(err), elapsed)
}

// AddRisky records a test that passed its expectations but violated a suite
// policy.
func (a *Aggregator) AddRisky(t suite.Test, reason string) {
	a.mu.Lock()
	a.risky++
	a.records = append(a.records, Record{
		Test:   t.Name(),
		Groups: t.Groups(),
		Status: StatusRisky,
		Reason: reason,
	})
	a.mu.Unlock()

	a.announce(event.TestRisky, t, reason, 0)
}

// announce runs outside the mutex so listeners may call Summary.
func (a *Aggregator) announce(eventType string, t suite.Test, reason string, elapsed time.Duration) {
	if a.sink == nil {
		return
	}
	a.sink.Publish(eventType, event.Event{
		Test:    t,
		Suite:   a.suite,
		Reason:  reason,
		Elapsed: elapsed,
	})
}

func errReason(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Summary snapshots the current tallies. Records are copied; the snapshot
// does not change as the run continues.
func (a *Aggregator) Summary() Summary {
	a.mu.Lock()
	defer a.mu.Unlock()

	records := make([]Record, len(a.records))
	copy(records, a.records)

	return Summary{
		RunID:      a.runID,
		Suite:      a.suite,
		Started:    a.started,
		Duration:   time.Since(a.started),
		Total:      a.total,
		Passed:     a.passed,
		Failed:     a.failed,
		Errors:     a.errors,
		Skipped:    a.skipped,
		Incomplete: a.incomplete,
		Risky:      a.risky,
		Records:    records,
		Stopped:    a.stopped,
	}
}
