package scenario

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/stagehand/packages/core/event"
	"github.com/abdul-hamid-achik/stagehand/packages/core/suite"
)

type fakeModule struct {
	name    string
	actions map[string]suite.Action
}

func (m *fakeModule) Name() string                     { return m.name }
func (m *fakeModule) Actions() map[string]suite.Action { return m.actions }

// fakeAgg records the single outcome a scenario reports.
type fakeAgg struct {
	counted int
	status  string
	reason  string
	err     error
	elapsed time.Duration
}

func (a *fakeAgg) ShouldStop() bool { return false }

func (a *fakeAgg) AddTest(suite.Test) { a.counted++ }

func (a *fakeAgg) AddSkipped(_ suite.Test, e *suite.SkippedError) {
	a.status, a.reason = "skip", e.Reason
}

func (a *fakeAgg) AddIncomplete(_ suite.Test, e *suite.IncompleteError) {
	a.status, a.reason = "incomplete", e.Reason
}

func (a *fakeAgg) AddSuccess(_ suite.Test, elapsed time.Duration) {
	a.status, a.elapsed = "pass", elapsed
}

func (a *fakeAgg) AddFailure(_ suite.Test, err error, elapsed time.Duration) {
	a.status, a.err, a.elapsed = "fail", err, elapsed
}

func (a *fakeAgg) AddError(_ suite.Test, err error, elapsed time.Duration) {
	a.status, a.err, a.elapsed = "error", err, elapsed
}

func (a *fakeAgg) AddRisky(_ suite.Test, reason string) {
	a.status, a.reason = "risky", reason
}

type stepSink struct {
	types  []string
	events []event.Event
}

func (s *stepSink) Publish(eventType string, ev event.Event) {
	s.types = append(s.types, eventType)
	s.events = append(s.events, ev)
}

func echoModules(calls *[]string) map[string]suite.Module {
	return map[string]suite.Module{
		"echo": &fakeModule{
			name: "echo",
			actions: map[string]suite.Action{
				"say": func(args ...string) (string, error) {
					if calls != nil {
						*calls = append(*calls, "say")
					}
					if len(args) == 0 {
						return "", nil
					}
					return args[0], nil
				},
				"fail": func(...string) (string, error) {
					return "", errors.New("exploded")
				},
				"json": func(...string) (string, error) {
					return `{"user":{"id":7,"name":"ada"}}`, nil
				},
			},
		},
	}
}

func TestScenario_Run_Pass(t *testing.T) {
	var calls []string
	s := New("greets", NewSequence().
		Do("echo.say", "hello").
		Expect(OutputEquals("hello")).
		Do("echo.say", "bye").
		Expect(OutputContains("by")),
		WithModules(echoModules(&calls)),
	)
	agg := &fakeAgg{}

	s.Run(agg)

	assert.Equal(t, 1, agg.counted)
	assert.Equal(t, "pass", agg.status)
	assert.Equal(t, []string{"say", "say"}, calls)
}

func TestScenario_Run_ExpectationFailure(t *testing.T) {
	s := New("mismatch", NewSequence().
		Do("echo.say", "hello").
		Expect(OutputEquals("goodbye")),
		WithModules(echoModules(nil)),
	)
	agg := &fakeAgg{}

	s.Run(agg)

	assert.Equal(t, "fail", agg.status)
	require.Error(t, agg.err)
	assert.Contains(t, agg.err.Error(), "step 1 (echo.say)")
	assert.Contains(t, agg.err.Error(), `expected output "goodbye", got "hello"`)
}

func TestScenario_Run_ExecutionErrors(t *testing.T) {
	t.Run("action returns error", func(t *testing.T) {
		s := New("boom", NewSequence().Do("echo.fail"), WithModules(echoModules(nil)))
		agg := &fakeAgg{}

		s.Run(agg)

		assert.Equal(t, "error", agg.status)
		assert.Contains(t, agg.err.Error(), "exploded")
	})

	t.Run("unknown module", func(t *testing.T) {
		s := New("lost", NewSequence().Do("ghost.say"), WithModules(echoModules(nil)))
		agg := &fakeAgg{}

		s.Run(agg)

		assert.Equal(t, "error", agg.status)
		assert.Contains(t, agg.err.Error(), `unknown module "ghost"`)
	})

	t.Run("unknown action", func(t *testing.T) {
		s := New("lost", NewSequence().Do("echo.shout"), WithModules(echoModules(nil)))
		agg := &fakeAgg{}

		s.Run(agg)

		assert.Equal(t, "error", agg.status)
		assert.Contains(t, agg.err.Error(), `module "echo" has no action "shout"`)
	})

	t.Run("malformed reference", func(t *testing.T) {
		s := New("bad", NewSequence().Do("noaction"), WithModules(echoModules(nil)))
		agg := &fakeAgg{}

		s.Run(agg)

		assert.Equal(t, "error", agg.status)
		assert.Contains(t, agg.err.Error(), "invalid action reference")
	})

	t.Run("first failing step stops replay", func(t *testing.T) {
		var calls []string
		s := New("stops", NewSequence().
			Do("echo.fail").
			Do("echo.say", "never"),
			WithModules(echoModules(&calls)),
		)
		agg := &fakeAgg{}

		s.Run(agg)

		assert.Equal(t, "error", agg.status)
		assert.Empty(t, calls)
	})
}

func TestScenario_Run_ReportUseless(t *testing.T) {
	t.Run("no expectations is risky when enabled", func(t *testing.T) {
		s := New("lazy", NewSequence().Do("echo.say"), WithModules(echoModules(nil)))
		s.SetReportUselessTests(true)
		agg := &fakeAgg{}

		s.Run(agg)

		assert.Equal(t, "risky", agg.status)
		assert.Equal(t, "no expectations declared", agg.reason)
	})

	t.Run("passes when disabled", func(t *testing.T) {
		s := New("lazy", NewSequence().Do("echo.say"), WithModules(echoModules(nil)))
		agg := &fakeAgg{}

		s.Run(agg)

		assert.Equal(t, "pass", agg.status)
	})
}

func TestScenario_Run_DisallowOutput(t *testing.T) {
	t.Run("unexamined output is risky", func(t *testing.T) {
		s := New("noisy", NewSequence().
			Do("echo.say", "hello").
			Expect(OutputEquals("hello")).
			Do("echo.say", "stray"),
			WithModules(echoModules(nil)),
		)
		s.SetDisallowOutput(true)
		agg := &fakeAgg{}

		s.Run(agg)

		assert.Equal(t, "risky", agg.status)
		assert.Equal(t, "step output produced but never examined", agg.reason)
	})

	t.Run("examined output passes", func(t *testing.T) {
		s := New("tidy", NewSequence().
			Do("echo.say", "hello").
			Expect(OutputContains("hell")),
			WithModules(echoModules(nil)),
		)
		s.SetDisallowOutput(true)
		agg := &fakeAgg{}

		s.Run(agg)

		assert.Equal(t, "pass", agg.status)
	})

	t.Run("silent step passes", func(t *testing.T) {
		s := New("quiet", NewSequence().
			Do("echo.say", "hi").
			Expect(OutputEquals("hi")).
			Do("echo.say"),
			WithModules(echoModules(nil)),
		)
		s.SetDisallowOutput(true)
		agg := &fakeAgg{}

		s.Run(agg)

		assert.Equal(t, "pass", agg.status)
	})
}

func TestScenario_Run_GlobalState(t *testing.T) {
	const key = "STAGEHAND_TEST_LEAK"

	leakModules := map[string]suite.Module{
		"env": &fakeModule{
			name: "env",
			actions: map[string]suite.Action{
				"leak": func(...string) (string, error) {
					return "", os.Setenv(key, "1")
				},
			},
		},
	}

	t.Run("strict reports leaks", func(t *testing.T) {
		defer os.Unsetenv(key)
		s := New("leaky", NewSequence().Do("env.leak"), WithModules(leakModules))
		s.SetStrictGlobalState(true)
		agg := &fakeAgg{}

		s.Run(agg)

		assert.Equal(t, "risky", agg.status)
		assert.Contains(t, agg.reason, "environment modified")
		assert.Contains(t, agg.reason, key)
	})

	t.Run("backup restores the environment", func(t *testing.T) {
		defer os.Unsetenv(key)
		s := New("leaky", NewSequence().Do("env.leak"), WithModules(leakModules))
		s.SetBackupGlobals(true)
		agg := &fakeAgg{}

		s.Run(agg)

		assert.Equal(t, "pass", agg.status)
		_, present := os.LookupEnv(key)
		assert.False(t, present, "backup must remove variables added during the run")
	})
}

func TestScenario_Run_StepEvents(t *testing.T) {
	s := New("covered", NewSequence().
		Do("echo.say", "a").
		Do("echo.json"),
		WithModules(echoModules(nil)),
	)
	sink := &stepSink{}
	s.SetEventSink(sink)
	s.SetCollectCoverage(true)

	s.Run(&fakeAgg{})

	require.Equal(t, []string{event.TestStep, event.TestStep}, sink.types)
	assert.Equal(t, "echo", sink.events[0].Module)
	assert.Equal(t, "say", sink.events[0].Action)
	assert.Equal(t, "json", sink.events[1].Action)
	assert.Equal(t, "covered", sink.events[0].Test.Name())
}

func TestScenario_Run_NoStepEventsWithoutCoverage(t *testing.T) {
	s := New("plain", NewSequence().Do("echo.say"), WithModules(echoModules(nil)))
	sink := &stepSink{}
	s.SetEventSink(sink)

	s.Run(&fakeAgg{})

	assert.Empty(t, sink.types)
}

func TestScenario_Identity(t *testing.T) {
	t.Run("signature defaults to name", func(t *testing.T) {
		s := New("checkout", nil)
		assert.Equal(t, "checkout", s.Signature())
		assert.Equal(t, "checkout", suite.SignatureOf(s))
	})

	t.Run("explicit signature wins", func(t *testing.T) {
		s := New("checkout flow", nil, WithSignature("shop.checkout"))
		assert.Equal(t, "shop.checkout", suite.SignatureOf(s))
	})

	t.Run("groups and dependencies", func(t *testing.T) {
		s := New("checkout", nil,
			WithGroups("smoke", "shop"),
			WithDependsOn("shop.login", "shop.cart"),
		)
		assert.Equal(t, []string{"smoke", "shop"}, s.Groups())
		assert.Equal(t, []string{"shop.login", "shop.cart"}, s.DependencySignatures())
	})
}

func TestScenario_Run_EmptySequence(t *testing.T) {
	s := New("empty", nil)
	agg := &fakeAgg{}

	s.Run(agg)

	assert.Equal(t, 1, agg.counted)
	assert.Equal(t, "pass", agg.status)
}

func TestSequence_ExpectBeforeDo(t *testing.T) {
	assert.Panics(t, func() {
		NewSequence().Expect(OutputEquals("x"))
	})
}
