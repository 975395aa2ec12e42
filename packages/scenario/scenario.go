package scenario

import (
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/stagehand/packages/core/event"
	"github.com/abdul-hamid-achik/stagehand/packages/core/suite"
)

// Scenario is a suite test whose body replays a recorded step sequence
// against the suite's module map.
type Scenario struct {
	meta     *suite.Metadata
	sig      string
	deps     []string
	sequence *Sequence
	modules  map[string]suite.Module

	sink            event.Sink
	reportUseless   bool
	collectCoverage bool
	backupGlobals   bool
	strictGlobals   bool
	disallowOutput  bool
}

// Option configures a Scenario.
type Option func(*Scenario)

// WithGroups tags the scenario for group-scoped event routing.
func WithGroups(groups ...string) Option {
	return func(s *Scenario) {
		for _, g := range groups {
			s.meta.AddGroup(g)
		}
	}
}

// WithDependsOn declares prerequisite scenario signatures.
func WithDependsOn(signatures ...string) Option {
	return func(s *Scenario) {
		s.deps = append(s.deps, signatures...)
	}
}

// WithSignature overrides the signature used for dependency matching. The
// default is the scenario name.
func WithSignature(sig string) Option {
	return func(s *Scenario) { s.sig = sig }
}

// WithModules binds the capability modules steps resolve against.
func WithModules(modules map[string]suite.Module) Option {
	return func(s *Scenario) { s.modules = modules }
}

// New returns a scenario with the given recorded sequence. A nil sequence is
// treated as empty.
func New(name string, seq *Sequence, opts ...Option) *Scenario {
	s := &Scenario{
		meta:     suite.NewMetadata(name),
		sequence: seq,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scenario) Name() string              { return s.meta.Name() }
func (s *Scenario) Groups() []string          { return s.meta.Groups() }
func (s *Scenario) Metadata() *suite.Metadata { return s.meta }

// Signature returns the dependency-matching identity, the scenario name
// unless overridden.
func (s *Scenario) Signature() string {
	if s.sig != "" {
		return s.sig
	}
	return s.meta.Name()
}

// DependencySignatures returns the declared prerequisites.
func (s *Scenario) DependencySignatures() []string { return s.deps }

// Sequence returns the recorded step sequence.
func (s *Scenario) Sequence() *Sequence { return s.sequence }

func (s *Scenario) SetEventSink(sink event.Sink) { s.sink = sink }
func (s *Scenario) SetReportUselessTests(v bool) { s.reportUseless = v }
func (s *Scenario) SetCollectCoverage(v bool)    { s.collectCoverage = v }
func (s *Scenario) SetBackupGlobals(v bool)      { s.backupGlobals = v }
func (s *Scenario) SetStrictGlobalState(v bool)  { s.strictGlobals = v }
func (s *Scenario) SetDisallowOutput(v bool)     { s.disallowOutput = v }

// Run replays the sequence and reports exactly one outcome into agg. Step
// execution problems (unknown actions, action errors) report an error,
// expectation mismatches report a failure, and policy violations on an
// otherwise passing replay report risky.
func (s *Scenario) Run(agg suite.ResultAggregator) {
	agg.AddTest(s)
	started := time.Now()

	var before map[string]string
	if s.backupGlobals || s.strictGlobals {
		before = environSnapshot()
	}

	outcome := s.replay()
	elapsed := time.Since(started)

	var leaked []string
	if s.strictGlobals {
		leaked = environLeaks(before, environSnapshot())
	}
	if s.backupGlobals {
		restoreEnviron(before)
	}

	switch {
	case outcome.execErr != nil:
		agg.AddError(s, outcome.execErr, elapsed)
	case outcome.failure != nil:
		agg.AddFailure(s, outcome.failure, elapsed)
	case s.reportUseless && outcome.expectations == 0:
		agg.AddRisky(s, "no expectations declared")
	case s.disallowOutput && outcome.unexamined:
		agg.AddRisky(s, "step output produced but never examined")
	case len(leaked) > 0:
		agg.AddRisky(s, "environment modified: "+strings.Join(leaked, ", "))
	default:
		agg.AddSuccess(s, elapsed)
	}
}

type replayOutcome struct {
	failure      error
	execErr      error
	unexamined   bool
	expectations int
}

// replay walks the sequence in order and stops at the first problem.
func (s *Scenario) replay() replayOutcome {
	var out replayOutcome

	for i, step := range s.sequence.Steps() {
		moduleName, actionName, err := splitAction(step.Action)
		if err != nil {
			out.execErr = fmt.Errorf("step %d: %w", i+1, err)
			return out
		}

		action, err := s.lookup(moduleName, actionName)
		if err != nil {
			out.execErr = fmt.Errorf("step %d: %w", i+1, err)
			return out
		}

		if s.collectCoverage && s.sink != nil {
			s.sink.Publish(event.TestStep, event.Event{
				Test:   s,
				Module: moduleName,
				Action: actionName,
			})
		}

		output, err := action(step.Args...)
		if err != nil {
			out.execErr = fmt.Errorf("step %d (%s): %w", i+1, step.Action, err)
			return out
		}

		if len(step.Expect) == 0 && output != "" {
			out.unexamined = true
		}
		out.expectations += len(step.Expect)

		for _, e := range step.Expect {
			if err := e.Check(output); err != nil {
				out.failure = fmt.Errorf("step %d (%s): %w", i+1, step.Action, err)
				return out
			}
		}
	}
	return out
}

func (s *Scenario) lookup(moduleName, actionName string) (suite.Action, error) {
	m, ok := s.modules[moduleName]
	if !ok {
		return nil, fmt.Errorf("unknown module %q", moduleName)
	}
	action, ok := m.Actions()[actionName]
	if !ok {
		return nil, fmt.Errorf("module %q has no action %q", moduleName, actionName)
	}
	return action, nil
}

// splitAction splits a "module.action" reference at the first dot.
func splitAction(ref string) (module, action string, err error) {
	module, action, ok := strings.Cut(ref, ".")
	if !ok || module == "" || action == "" {
		return "", "", fmt.Errorf("invalid action reference %q, want \"module.action\"", ref)
	}
	return module, action, nil
}
