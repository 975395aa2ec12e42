package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/stagehand/packages/core/event"
	"github.com/abdul-hamid-achik/stagehand/packages/core/suite"
)

// recordingSink captures every publish in order.
type recordingSink struct {
	types  []string
	events []event.Event
}

func (s *recordingSink) Publish(eventType string, ev event.Event) {
	s.types = append(s.types, eventType)
	s.events = append(s.events, ev)
}

// fakeAgg records outcomes and exposes a settable stop flag.
type fakeAgg struct {
	stop       bool
	counted    []string
	skipped    []string
	incomplete []string
	succeeded  []string
	failed     []string
	errored    []string
	risky      []string
}

func (a *fakeAgg) ShouldStop() bool { return a.stop }

func (a *fakeAgg) AddTest(t suite.Test) { a.counted = append(a.counted, t.Name()) }

func (a *fakeAgg) AddSkipped(t suite.Test, e *suite.SkippedError) {
	a.skipped = append(a.skipped, e.Reason)
}

func (a *fakeAgg) AddIncomplete(t suite.Test, e *suite.IncompleteError) {
	a.incomplete = append(a.incomplete, e.Reason)
}

func (a *fakeAgg) AddSuccess(t suite.Test, _ time.Duration) {
	a.succeeded = append(a.succeeded, t.Name())
}

func (a *fakeAgg) AddFailure(t suite.Test, _ error, _ time.Duration) {
	a.failed = append(a.failed, t.Name())
}

func (a *fakeAgg) AddError(t suite.Test, _ error, _ time.Duration) {
	a.errored = append(a.errored, t.Name())
}

func (a *fakeAgg) AddRisky(t suite.Test, _ string) {
	a.risky = append(a.risky, t.Name())
}

// runnableTest records the configuration the loop hands it.
type runnableTest struct {
	meta *suite.Metadata

	sink            event.Sink
	reportUseless   bool
	collectCoverage bool
	backupGlobals   bool
	strictGlobals   bool
	disallowOutput  bool

	ran   bool
	onRun func(suite.ResultAggregator)
}

func newRunnable(name string) *runnableTest {
	return &runnableTest{meta: suite.NewMetadata(name)}
}

func (r *runnableTest) Name() string              { return r.meta.Name() }
func (r *runnableTest) Groups() []string          { return r.meta.Groups() }
func (r *runnableTest) Metadata() *suite.Metadata { return r.meta }

func (r *runnableTest) SetEventSink(s event.Sink)    { r.sink = s }
func (r *runnableTest) SetReportUselessTests(v bool) { r.reportUseless = v }
func (r *runnableTest) SetCollectCoverage(v bool)    { r.collectCoverage = v }
func (r *runnableTest) SetBackupGlobals(v bool)      { r.backupGlobals = v }
func (r *runnableTest) SetStrictGlobalState(v bool)  { r.strictGlobals = v }
func (r *runnableTest) SetDisallowOutput(v bool)     { r.disallowOutput = v }

func (r *runnableTest) Run(agg suite.ResultAggregator) {
	r.ran = true
	if r.onRun != nil {
		r.onRun(agg)
		return
	}
	agg.AddSuccess(r, time.Millisecond)
}

func TestNew(t *testing.T) {
	t.Run("with nil config", func(t *testing.T) {
		l := New(nil)
		require.NotNil(t, l)
		assert.Nil(t, l.limiter)
	})

	t.Run("pace installs a limiter", func(t *testing.T) {
		l := New(&Config{Pace: 100})
		assert.NotNil(t, l.limiter)
	})
}

func TestLoop_Run_EmptySuite(t *testing.T) {
	sink := &recordingSink{}
	agg := &fakeAgg{}

	err := New(&Config{Suite: "empty"}).Run(context.Background(), nil, agg, sink)

	require.NoError(t, err)
	assert.Empty(t, sink.types)
	assert.Empty(t, agg.counted)
}

func TestLoop_Run_HappyPath(t *testing.T) {
	t1 := newRunnable("first")
	t2 := newRunnable("second")
	t3 := newRunnable("third")
	sink := &recordingSink{}
	agg := &fakeAgg{}

	err := New(&Config{Suite: "api"}).Run(
		context.Background(),
		[]suite.Test{t1, t2, t3},
		agg,
		sink,
	)

	require.NoError(t, err)
	assert.Equal(t, []string{
		event.SuiteStart,
		event.TestStart, event.TestEnd,
		event.TestStart, event.TestEnd,
		event.TestStart, event.TestEnd,
	}, sink.types)

	assert.Equal(t, "api", sink.events[0].Suite)
	assert.Equal(t, "first", sink.events[1].Test.Name())
	assert.Equal(t, "second", sink.events[3].Test.Name())
	assert.Equal(t, "third", sink.events[5].Test.Name())

	assert.True(t, t1.ran)
	assert.True(t, t2.ran)
	assert.True(t, t3.ran)
	assert.Equal(t, []string{"first", "second", "third"}, agg.succeeded)
}

func TestLoop_Run_SkippedTest(t *testing.T) {
	tc := newRunnable("flaky")
	tc.meta.MarkSkipped("backend down")
	sink := &recordingSink{}
	agg := &fakeAgg{}

	err := New(&Config{Suite: "api"}).Run(context.Background(), []suite.Test{tc}, agg, sink)

	require.NoError(t, err)
	assert.False(t, tc.ran, "blocked test body must not run")
	assert.Equal(t, []string{"flaky"}, agg.counted)
	assert.Equal(t, []string{"backend down"}, agg.skipped)
	assert.Empty(t, agg.incomplete)

	require.Equal(t, []string{
		event.SuiteStart,
		event.TestStart,
		event.TestSkipped,
		event.TestEnd,
	}, sink.types)
	assert.Equal(t, "backend down", sink.events[2].Reason)
	assert.Equal(t, time.Duration(0), sink.events[3].Elapsed)
}

func TestLoop_Run_IncompleteTest(t *testing.T) {
	tc := newRunnable("wip")
	tc.meta.MarkIncomplete("step pending")
	sink := &recordingSink{}
	agg := &fakeAgg{}

	err := New(&Config{}).Run(context.Background(), []suite.Test{tc}, agg, sink)

	require.NoError(t, err)
	assert.False(t, tc.ran)
	assert.Equal(t, []string{"step pending"}, agg.incomplete)
	assert.Equal(t, []string{
		event.SuiteStart,
		event.TestStart,
		event.TestIncomplete,
		event.TestEnd,
	}, sink.types)
}

func TestLoop_Run_SkippedAndIncomplete(t *testing.T) {
	tc := newRunnable("both")
	tc.meta.MarkSkipped("skip it")
	tc.meta.MarkIncomplete("finish it")
	sink := &recordingSink{}
	agg := &fakeAgg{}

	err := New(&Config{}).Run(context.Background(), []suite.Test{tc}, agg, sink)

	require.NoError(t, err)
	assert.Equal(t, []string{"skip it"}, agg.skipped)
	assert.Equal(t, []string{"finish it"}, agg.incomplete)
	assert.Equal(t, []string{
		event.SuiteStart,
		event.TestStart,
		event.TestSkipped,
		event.TestIncomplete,
		event.TestEnd,
	}, sink.types)
}

func TestLoop_Run_StopCondition(t *testing.T) {
	agg := &fakeAgg{}
	t1 := newRunnable("first")
	t2 := newRunnable("second")
	t2.onRun = func(suite.ResultAggregator) {
		agg.failed = append(agg.failed, "second")
		agg.stop = true
	}
	t3 := newRunnable("third")
	sink := &recordingSink{}

	err := New(&Config{}).Run(context.Background(), []suite.Test{t1, t2, t3}, agg, sink)

	require.NoError(t, err)
	assert.True(t, t2.ran)
	assert.False(t, t3.ran, "tests after the stop point must not run")
	assert.Equal(t, []string{
		event.SuiteStart,
		event.TestStart, event.TestEnd,
		event.TestStart, event.TestEnd,
	}, sink.types)
}

func TestLoop_Run_StoppedBeforeFirstTest(t *testing.T) {
	tc := newRunnable("never")
	sink := &recordingSink{}
	agg := &fakeAgg{stop: true}

	err := New(&Config{}).Run(context.Background(), []suite.Test{tc}, agg, sink)

	require.NoError(t, err)
	assert.False(t, tc.ran)
	assert.Equal(t, []string{event.SuiteStart}, sink.types)
}

func TestLoop_Run_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tc := newRunnable("never")
	sink := &recordingSink{}

	err := New(&Config{}).Run(ctx, []suite.Test{tc}, &fakeAgg{}, sink)

	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, tc.ran)
	assert.Equal(t, []string{event.SuiteStart}, sink.types)
}

func TestLoop_Run_PropagatesConfiguration(t *testing.T) {
	tc := newRunnable("configured")
	sink := &recordingSink{}

	err := New(&Config{
		ReportUselessTests: true,
		BackupGlobals:      true,
		StrictGlobalState:  true,
		DisallowOutput:     true,
		CollectCoverage:    true,
	}).Run(context.Background(), []suite.Test{tc}, &fakeAgg{}, sink)

	require.NoError(t, err)
	assert.Equal(t, sink, tc.sink)
	assert.True(t, tc.reportUseless)
	assert.True(t, tc.collectCoverage)
	assert.True(t, tc.backupGlobals)
	assert.True(t, tc.strictGlobals)
	assert.True(t, tc.disallowOutput)
}

func TestLoop_Run_NilSink(t *testing.T) {
	tc := newRunnable("quiet")
	agg := &fakeAgg{}

	err := New(&Config{}).Run(context.Background(), []suite.Test{tc}, agg, nil)

	require.NoError(t, err)
	assert.True(t, tc.ran)
	assert.Equal(t, []string{"quiet"}, agg.succeeded)
}

func TestConfigFromRegistry(t *testing.T) {
	r := suite.NewRegistry()
	r.SetReportUselessTests(true)
	r.SetStrictGlobalState(true)
	r.SetCollectCoverage(true)

	cfg := ConfigFromRegistry("checkout", r)

	assert.Equal(t, "checkout", cfg.Suite)
	assert.True(t, cfg.ReportUselessTests)
	assert.False(t, cfg.BackupGlobals)
	assert.True(t, cfg.StrictGlobalState)
	assert.False(t, cfg.DisallowOutput)
	assert.True(t, cfg.CollectCoverage)
}
