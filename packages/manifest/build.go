package manifest

import (
	"fmt"

	"github.com/abdul-hamid-achik/stagehand/packages/core/suite"
	"github.com/abdul-hamid-achik/stagehand/packages/scenario"
)

// BuildOption configures Build.
type BuildOption func(*builder)

// WithModules binds the capability modules scenarios resolve steps against.
func WithModules(mods map[string]suite.Module) BuildOption {
	return func(b *builder) { b.modules = mods }
}

// WithWarnFunc routes interpolation warnings. The default is silent.
func WithWarnFunc(fn WarnFunc) BuildOption {
	return func(b *builder) { b.warn = fn }
}

type builder struct {
	modules map[string]suite.Module
	warn    WarnFunc
}

// Build turns a parsed manifest into a registry: suite flags copied, modules
// installed, one scenario test per declared scenario with interpolated step
// arguments and expectation values.
func Build(m *Manifest, opts ...BuildOption) (*suite.Registry, error) {
	b := &builder{}
	for _, opt := range opts {
		opt(b)
	}

	interp := NewInterpolator(m.Variables)
	if b.warn != nil {
		interp.SetWarnFunc(b.warn)
	}

	registry := suite.NewRegistry()
	registry.SetModules(b.modules)
	registry.SetReportUselessTests(m.Config.ReportUselessTests)
	registry.SetBackupGlobals(m.Config.BackupGlobals)
	registry.SetStrictGlobalState(m.Config.StrictGlobalState)
	registry.SetDisallowOutput(m.Config.DisallowOutput)
	registry.SetCollectCoverage(m.Config.CollectCoverage)

	for i, sc := range m.Scenarios {
		test, err := b.buildScenario(sc, interp)
		if err != nil {
			return nil, fmt.Errorf("scenario %d (%s): %w", i+1, sc.Name, err)
		}
		registry.Add(test)
	}
	return registry, nil
}

func (b *builder) buildScenario(sc Scenario, interp *Interpolator) (*scenario.Scenario, error) {
	seq := scenario.NewSequence()
	for i, step := range sc.Steps {
		if step.Action == "" {
			return nil, fmt.Errorf("step %d has no action", i+1)
		}
		seq.Do(step.Action, interp.ResolveAll(step.Args)...)

		for _, e := range step.Expect {
			expect, err := buildExpectation(e, interp)
			if err != nil {
				return nil, fmt.Errorf("step %d: %w", i+1, err)
			}
			seq.Expect(expect)
		}
	}

	opts := []scenario.Option{
		scenario.WithGroups(sc.Groups...),
		scenario.WithDependsOn(sc.Needs...),
		scenario.WithModules(b.modules),
	}
	if sc.Signature != "" {
		opts = append(opts, scenario.WithSignature(sc.Signature))
	}

	test := scenario.New(sc.Name, seq, opts...)
	if sc.Skip != nil {
		test.Metadata().MarkSkipped(*sc.Skip)
	}
	if sc.Incomplete != nil {
		test.Metadata().MarkIncomplete(*sc.Incomplete)
	}
	return test, nil
}

func buildExpectation(e Expectation, interp *Interpolator) (scenario.Expectation, error) {
	target := e.Target
	if target == "" {
		target = "output"
	}

	op := scenario.Op(e.Op)
	switch op {
	case scenario.OpEquals, scenario.OpContains, scenario.OpMatches, scenario.OpExists:
	default:
		return scenario.Expectation{}, fmt.Errorf("unknown expectation op %q", e.Op)
	}

	return scenario.Expectation{
		Target: target,
		Op:     op,
		Value:  interp.Resolve(e.Value),
	}, nil
}
