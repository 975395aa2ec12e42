package coverage

import (
	"strings"
	"testing"

	"github.com/abdul-hamid-achik/stagehand/packages/core/event"
	"github.com/abdul-hamid-achik/stagehand/packages/core/suite"
)

type declaredModule struct {
	name    string
	actions []string
}

func (m declaredModule) Name() string { return m.name }

func (m declaredModule) Actions() map[string]suite.Action {
	actions := make(map[string]suite.Action, len(m.actions))
	for _, name := range m.actions {
		actions[name] = func(args ...string) (string, error) { return "", nil }
	}
	return actions
}

func testModules() map[string]suite.Module {
	return map[string]suite.Module{
		"shell": declaredModule{name: "shell", actions: []string{"run"}},
		"env":   declaredModule{name: "env", actions: []string{"set", "unset", "get"}},
	}
}

func TestAnalyzer_Analyze_BasicCoverage(t *testing.T) {
	analyzer := NewAnalyzer(testModules())

	calls := []Call{
		{Module: "shell", Action: "run"},
		{Module: "env", Action: "set"},
	}

	report := analyzer.Analyze(calls)

	if report.TotalActions != 4 {
		t.Errorf("expected 4 total actions, got %d", report.TotalActions)
	}

	if report.CoveredActions != 2 {
		t.Errorf("expected 2 covered actions, got %d", report.CoveredActions)
	}

	if report.CoveragePercent != 50.0 {
		t.Errorf("expected 50%% coverage, got %.1f%%", report.CoveragePercent)
	}
}

func TestAnalyzer_Analyze_ModuleCoverage(t *testing.T) {
	analyzer := NewAnalyzer(testModules())

	calls := []Call{
		{Module: "shell", Action: "run"},
		{Module: "env", Action: "set"},
		{Module: "env", Action: "get"},
	}

	report := analyzer.Analyze(calls)

	shellReport := report.ByModule["shell"]
	if shellReport == nil {
		t.Fatal("expected shell module report")
	}
	if shellReport.CoveragePercent != 100.0 {
		t.Errorf("expected 100%% shell coverage, got %.1f%%", shellReport.CoveragePercent)
	}

	envReport := report.ByModule["env"]
	if envReport == nil {
		t.Fatal("expected env module report")
	}
	if envReport.CoveredActions != 2 {
		t.Errorf("expected 2 covered env actions, got %d", envReport.CoveredActions)
	}
}

func TestAnalyzer_Analyze_CallCount(t *testing.T) {
	analyzer := NewAnalyzer(map[string]suite.Module{
		"shell": declaredModule{name: "shell", actions: []string{"run"}},
	})

	calls := []Call{
		{Module: "shell", Action: "run"},
		{Module: "shell", Action: "run"},
		{Module: "shell", Action: "run"},
	}

	report := analyzer.Analyze(calls)

	if len(report.Actions) != 1 {
		t.Fatalf("expected 1 action, got %d", len(report.Actions))
	}

	if report.Actions[0].CallCount != 3 {
		t.Errorf("expected call count 3, got %d", report.Actions[0].CallCount)
	}
}

func TestAnalyzer_Analyze_IgnoresUndeclaredCalls(t *testing.T) {
	analyzer := NewAnalyzer(map[string]suite.Module{
		"shell": declaredModule{name: "shell", actions: []string{"run"}},
	})

	calls := []Call{
		{Module: "db", Action: "query"},
		{Module: "shell", Action: "exec"},
	}

	report := analyzer.Analyze(calls)

	if report.CoveredActions != 0 {
		t.Errorf("expected 0 covered actions, got %d", report.CoveredActions)
	}
	if report.TotalActions != 1 {
		t.Errorf("expected 1 total action, got %d", report.TotalActions)
	}
}

func TestAnalyzer_Analyze_SortsActions(t *testing.T) {
	analyzer := NewAnalyzer(testModules())

	report := analyzer.Analyze(nil)

	if len(report.Actions) != 4 {
		t.Fatalf("expected 4 actions, got %d", len(report.Actions))
	}

	want := []string{"env.get", "env.set", "env.unset", "shell.run"}
	for i, action := range report.Actions {
		got := action.Module + "." + action.Action
		if got != want[i] {
			t.Errorf("action %d: got %s, expected %s", i, got, want[i])
		}
	}
}

func TestCollector_Attach(t *testing.T) {
	collector := NewCollector()
	dispatcher := event.NewDispatcher()
	collector.Attach(dispatcher)

	dispatcher.Publish(event.TestStep, event.Event{Module: "shell", Action: "run"})
	dispatcher.Publish(event.TestStep, event.Event{Module: "env", Action: "set"})
	dispatcher.Publish(event.TestStart, event.Event{})

	calls := collector.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	if calls[0].Module != "shell" || calls[0].Action != "run" {
		t.Errorf("unexpected first call: %+v", calls[0])
	}
}

func TestReport_FormatConsole(t *testing.T) {
	report := &Report{
		TotalActions:    4,
		CoveredActions:  2,
		CoveragePercent: 50.0,
		Actions: []ActionStatus{
			{Module: "env", Action: "set", Covered: true, CallCount: 2},
			{Module: "env", Action: "unset", Covered: false, CallCount: 0},
			{Module: "shell", Action: "run", Covered: true, CallCount: 1},
			{Module: "wait", Action: "sleep", Covered: false, CallCount: 0},
		},
	}

	output := report.FormatConsole()

	if !strings.Contains(output, "50.0%") {
		t.Error("expected console output to contain coverage percentage")
	}

	if !strings.Contains(output, "[x] env.set (x2)") {
		t.Error("expected console output to show covered action with call count")
	}

	if !strings.Contains(output, "[ ] wait.sleep") {
		t.Error("expected console output to show uncovered action")
	}
}

func TestReport_FormatJSON(t *testing.T) {
	report := &Report{
		TotalActions:    2,
		CoveredActions:  1,
		CoveragePercent: 50.0,
		Actions: []ActionStatus{
			{Module: "shell", Action: "run", Covered: true, CallCount: 1},
		},
	}

	output, err := report.FormatJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(output, `"coveragePercent": 50`) {
		t.Error("expected JSON to contain coverage percentage")
	}

	if !strings.Contains(output, `"module": "shell"`) {
		t.Error("expected JSON to contain module")
	}
}
