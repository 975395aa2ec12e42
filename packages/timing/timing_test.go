package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/stagehand/packages/core/event"
)

type timedTest struct {
	name   string
	groups []string
}

func (t timedTest) Name() string     { return t.name }
func (t timedTest) Groups() []string { return t.groups }

func TestTrackerSummary(t *testing.T) {
	tracker := NewTracker()
	tracker.Observe("fast", 10*time.Millisecond)
	tracker.Observe("medium", 50*time.Millisecond)
	tracker.Observe("slow", 200*time.Millisecond)

	s := tracker.Summary()

	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 260*time.Millisecond, s.Total)

	// Percentiles are monotonic and bracketed by min/max.
	assert.LessOrEqual(t, s.Min, s.P50)
	assert.LessOrEqual(t, s.P50, s.P95)
	assert.LessOrEqual(t, s.P95, s.P99)
	assert.LessOrEqual(t, s.P99, s.Max)
	assert.Greater(t, s.Mean, time.Duration(0))

	require.Len(t, s.Slowest, 3)
	assert.Equal(t, "slow", s.Slowest[0].Test)
	assert.Equal(t, "medium", s.Slowest[1].Test)
	assert.Equal(t, "fast", s.Slowest[2].Test)
}

func TestTrackerEmptySummary(t *testing.T) {
	s := NewTracker().Summary()

	assert.Equal(t, 0, s.Count)
	assert.Equal(t, time.Duration(0), s.Max)
	assert.Empty(t, s.Slowest)
}

func TestTrackerClampsTinyDurations(t *testing.T) {
	tracker := NewTracker()
	tracker.Observe("instant", 0)

	s := tracker.Summary()
	assert.Equal(t, 1, s.Count)
	assert.GreaterOrEqual(t, s.Max, time.Microsecond)
}

func TestAttachObservesTestEndEvents(t *testing.T) {
	tracker := NewTracker()
	dispatcher := event.NewDispatcher()
	tracker.Attach(dispatcher)

	dispatcher.Publish(event.TestEnd, event.Event{
		Test:    timedTest{name: "checkout"},
		Elapsed: 30 * time.Millisecond,
	})
	// Blocked tests end with zero elapsed; those are not timed.
	dispatcher.Publish(event.TestEnd, event.Event{
		Test: timedTest{name: "skipped"},
	})
	dispatcher.Publish(event.TestStart, event.Event{
		Test: timedTest{name: "checkout"},
	})

	s := tracker.Summary()
	require.Equal(t, 1, s.Count)
	assert.Equal(t, "checkout", s.Slowest[0].Test)
	assert.Equal(t, 30*time.Millisecond, s.Slowest[0].Elapsed)
}
