package runner

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/abdul-hamid-achik/stagehand/packages/core/event"
	"github.com/abdul-hamid-achik/stagehand/packages/core/suite"
)

// Config controls one suite run. The boolean flags are propagated into each
// runnable test before its body executes.
type Config struct {
	// Suite is stamped on every published event.
	Suite string

	ReportUselessTests bool
	BackupGlobals      bool
	StrictGlobalState  bool
	DisallowOutput     bool
	CollectCoverage    bool

	// Pace throttles test bodies to at most this many starts per second.
	// Zero means unthrottled. Blocked tests are never paced.
	Pace float64
}

// ConfigFromRegistry copies a registry's suite flags into a loop
// configuration.
func ConfigFromRegistry(suiteName string, r *suite.Registry) *Config {
	return &Config{
		Suite:              suiteName,
		ReportUselessTests: r.ReportUselessTests(),
		BackupGlobals:      r.BackupGlobals(),
		StrictGlobalState:  r.StrictGlobalState(),
		DisallowOutput:     r.DisallowOutput(),
		CollectCoverage:    r.CollectCoverage(),
	}
}

// Loop runs tests one at a time in the order given to Run.
type Loop struct {
	config  *Config
	limiter *rate.Limiter
}

// New returns a loop for the given configuration. A nil config runs with
// defaults.
func New(cfg *Config) *Loop {
	if cfg == nil {
		cfg = &Config{}
	}

	l := &Loop{config: cfg}
	if cfg.Pace > 0 {
		l.limiter = rate.NewLimiter(rate.Limit(cfg.Pace), 1)
	}
	return l
}

// Run executes the collection in order, publishing lifecycle events to sink
// and recording outcomes into agg. An empty collection publishes nothing.
// The loop stops cleanly when agg.ShouldStop() reports true at a test
// boundary; tests past that point get no events. Context cancellation is
// checked at the same boundary and returns the context's error.
//
// Run publishes no suite end event. The caller owns the end-of-suite signal
// once Run returns.
func (l *Loop) Run(ctx context.Context, tests []suite.Test, agg suite.ResultAggregator, sink event.Sink) error {
	if len(tests) == 0 {
		return nil
	}
	if sink == nil {
		sink = event.Discard
	}

	sink.Publish(event.SuiteStart, event.Event{Suite: l.config.Suite})

	for _, t := range tests {
		if agg.ShouldStop() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if l.limiter != nil && !t.Metadata().Blocked() {
			if err := l.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		sink.Publish(event.TestStart, event.Event{Test: t, Suite: l.config.Suite})

		if t.Metadata().Blocked() {
			l.reportBlocked(t, agg, sink)
			continue
		}

		l.configure(t, sink)

		started := time.Now()
		t.Run(agg)

		sink.Publish(event.TestEnd, event.Event{
			Test:    t,
			Suite:   l.config.Suite,
			Elapsed: time.Since(started),
		})
	}
	return nil
}

// reportBlocked records a blocked test without invoking its body. Skip and
// incomplete markers may both be set; both are recorded and both events
// fire. The end event carries zero elapsed time.
func (l *Loop) reportBlocked(t suite.Test, agg suite.ResultAggregator, sink event.Sink) {
	meta := t.Metadata()

	agg.AddTest(t)
	if meta.Skipped() {
		agg.AddSkipped(t, &suite.SkippedError{Reason: meta.SkipReason()})
		sink.Publish(event.TestSkipped, event.Event{
			Test:   t,
			Suite:  l.config.Suite,
			Reason: meta.SkipReason(),
		})
	}
	if meta.Incomplete() {
		agg.AddIncomplete(t, &suite.IncompleteError{Reason: meta.IncompleteReason()})
		sink.Publish(event.TestIncomplete, event.Event{
			Test:   t,
			Suite:  l.config.Suite,
			Reason: meta.IncompleteReason(),
		})
	}
	sink.Publish(event.TestEnd, event.Event{Test: t, Suite: l.config.Suite})
}

// configure hands a runnable test its suite configuration. The optional
// capability interfaces only receive flags when the test implements them.
func (l *Loop) configure(t suite.Test, sink event.Sink) {
	t.SetEventSink(sink)
	t.SetReportUselessTests(l.config.ReportUselessTests)
	t.SetCollectCoverage(l.config.CollectCoverage)

	if g, ok := t.(suite.GlobalStateAware); ok {
		g.SetBackupGlobals(l.config.BackupGlobals)
		g.SetStrictGlobalState(l.config.StrictGlobalState)
	}
	if o, ok := t.(suite.OutputPolicyAware); ok {
		o.SetDisallowOutput(l.config.DisallowOutput)
	}
}
