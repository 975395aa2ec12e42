// Package timing aggregates test durations into an HDR histogram for the
// --timing report.
package timing

import (
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/abdul-hamid-achik/stagehand/packages/core/event"
)

// TestTiming is one observed test duration.
type TestTiming struct {
	Test    string
	Elapsed time.Duration
}

// Summary holds the aggregated duration statistics of a run.
type Summary struct {
	Count int
	Total time.Duration

	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
	P50  time.Duration
	P95  time.Duration
	P99  time.Duration

	// Slowest lists every observed test, slowest first.
	Slowest []TestTiming
}

// Tracker collects test durations. Safe for concurrent use.
type Tracker struct {
	mu        sync.Mutex
	histogram *hdrhistogram.Histogram
	observed  []TestTiming
	total     time.Duration
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		// Histogram: 1us to 60s range, 3 significant digits
		histogram: hdrhistogram.New(1, 60_000_000, 3),
	}
}

// Attach subscribes the tracker to test.end events. Blocked tests end with
// zero elapsed and are not counted.
func (t *Tracker) Attach(d *event.Dispatcher) {
	d.Subscribe(event.TestEnd, func(ev event.Event) {
		if ev.Elapsed <= 0 {
			return
		}
		name := ""
		if ev.Test != nil {
			name = ev.Test.Name()
		}
		t.Observe(name, ev.Elapsed)
	})
}

// Observe records one test duration.
func (t *Tracker) Observe(test string, elapsed time.Duration) {
	us := elapsed.Microseconds()
	if us < 1 {
		us = 1
	}
	if us > 60_000_000 {
		us = 60_000_000
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	_ = t.histogram.RecordValue(us)
	t.observed = append(t.observed, TestTiming{Test: test, Elapsed: elapsed})
	t.total += elapsed
}

// Summary returns the statistics collected so far.
func (t *Tracker) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.observed) == 0 {
		return Summary{}
	}

	slowest := make([]TestTiming, len(t.observed))
	copy(slowest, t.observed)
	sort.SliceStable(slowest, func(i, j int) bool {
		return slowest[i].Elapsed > slowest[j].Elapsed
	})

	return Summary{
		Count:   len(t.observed),
		Total:   t.total,
		Min:     time.Duration(t.histogram.Min()) * time.Microsecond,
		Max:     time.Duration(t.histogram.Max()) * time.Microsecond,
		Mean:    time.Duration(t.histogram.Mean()) * time.Microsecond,
		P50:     time.Duration(t.histogram.ValueAtQuantile(50)) * time.Microsecond,
		P95:     time.Duration(t.histogram.ValueAtQuantile(95)) * time.Microsecond,
		P99:     time.Duration(t.histogram.ValueAtQuantile(99)) * time.Microsecond,
		Slowest: slowest,
	}
}
