// Package coverage provides capability coverage reporting for stagehand.
package coverage

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/abdul-hamid-achik/stagehand/packages/core/event"
	"github.com/abdul-hamid-achik/stagehand/packages/core/suite"
)

// Report represents a capability coverage report.
type Report struct {
	TotalActions    int                      `json:"totalActions"`
	CoveredActions  int                      `json:"coveredActions"`
	CoveragePercent float64                  `json:"coveragePercent"`
	ByModule        map[string]*ModuleReport `json:"byModule,omitempty"`
	Actions         []ActionStatus           `json:"actions"`
}

// ModuleReport represents coverage for a single module.
type ModuleReport struct {
	Module          string  `json:"module"`
	TotalActions    int     `json:"totalActions"`
	CoveredActions  int     `json:"coveredActions"`
	CoveragePercent float64 `json:"coveragePercent"`
}

// ActionStatus represents the coverage status of one declared action.
type ActionStatus struct {
	Module    string `json:"module"`
	Action    string `json:"action"`
	Covered   bool   `json:"covered"`
	CallCount int    `json:"callCount"`
}

// Capability is one declared module action.
type Capability struct {
	Module string
	Action string
}

// Call represents an action that a scenario step invoked during the run.
type Call struct {
	Module string
	Action string
}

// Collector gathers step calls from a run. Attach it to the dispatcher
// before the loop starts.
type Collector struct {
	mu    sync.Mutex
	calls []Call
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Attach subscribes the collector to test.step events.
func (c *Collector) Attach(d *event.Dispatcher) {
	d.Subscribe(event.TestStep, func(ev event.Event) {
		c.Record(ev.Module, ev.Action)
	})
}

// Record notes one executed action.
func (c *Collector) Record(module, action string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{Module: module, Action: action})
}

// Calls returns a copy of the recorded calls.
func (c *Collector) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}

// Analyzer analyzes capability coverage against the declared module surface.
type Analyzer struct {
	surface []Capability
}

// NewAnalyzer builds the declared surface from the suite's registered modules.
func NewAnalyzer(modules map[string]suite.Module) *Analyzer {
	a := &Analyzer{
		surface: make([]Capability, 0),
	}
	for name, mod := range modules {
		for action := range mod.Actions() {
			a.surface = append(a.surface, Capability{Module: name, Action: action})
		}
	}
	return a
}

// Analyze compares executed calls against the declared surface. Calls to
// undeclared actions are ignored.
func (a *Analyzer) Analyze(calls []Call) *Report {
	report := &Report{
		TotalActions: len(a.surface),
		ByModule:     make(map[string]*ModuleReport),
		Actions:      make([]ActionStatus, 0),
	}

	declared := make(map[string]bool, len(a.surface))
	for _, capability := range a.surface {
		declared[capability.Module+"."+capability.Action] = true
	}

	callCount := make(map[string]int)
	for _, call := range calls {
		key := call.Module + "." + call.Action
		if declared[key] {
			callCount[key]++
		}
	}

	for _, capability := range a.surface {
		key := capability.Module + "." + capability.Action
		count := callCount[key]
		covered := count > 0

		status := ActionStatus{
			Module:    capability.Module,
			Action:    capability.Action,
			Covered:   covered,
			CallCount: count,
		}
		report.Actions = append(report.Actions, status)

		if covered {
			report.CoveredActions++
		}

		moduleReport, exists := report.ByModule[capability.Module]
		if !exists {
			moduleReport = &ModuleReport{Module: capability.Module}
			report.ByModule[capability.Module] = moduleReport
		}
		moduleReport.TotalActions++
		if covered {
			moduleReport.CoveredActions++
		}
	}

	if report.TotalActions > 0 {
		report.CoveragePercent = float64(report.CoveredActions) / float64(report.TotalActions) * 100
	}

	for _, moduleReport := range report.ByModule {
		if moduleReport.TotalActions > 0 {
			moduleReport.CoveragePercent = float64(moduleReport.CoveredActions) / float64(moduleReport.TotalActions) * 100
		}
	}

	// Sort actions by module and action name
	sort.Slice(report.Actions, func(i, j int) bool {
		if report.Actions[i].Module != report.Actions[j].Module {
			return report.Actions[i].Module < report.Actions[j].Module
		}
		return report.Actions[i].Action < report.Actions[j].Action
	})

	return report
}

// FormatConsole formats the report for console output.
func (r *Report) FormatConsole() string {
	var sb strings.Builder

	sb.WriteString("\nCapability Coverage Report\n")
	sb.WriteString("==========================\n\n")

	sb.WriteString(fmt.Sprintf("Total Actions:   %d\n", r.TotalActions))
	sb.WriteString(fmt.Sprintf("Covered Actions: %d\n", r.CoveredActions))
	sb.WriteString(fmt.Sprintf("Coverage:        %.1f%%\n\n", r.CoveragePercent))

	// Show by module if any
	if len(r.ByModule) > 0 {
		sb.WriteString("Coverage by Module:\n")

		// Sort modules
		modules := make([]string, 0, len(r.ByModule))
		for module := range r.ByModule {
			modules = append(modules, module)
		}
		sort.Strings(modules)

		for _, module := range modules {
			moduleReport := r.ByModule[module]
			sb.WriteString(fmt.Sprintf("  %s: %d/%d (%.1f%%)\n",
				module, moduleReport.CoveredActions, moduleReport.TotalActions, moduleReport.CoveragePercent))
		}
		sb.WriteString("\n")
	}

	// Show action details
	sb.WriteString("Action Details:\n")
	for _, action := range r.Actions {
		status := "[ ]"
		if action.Covered {
			status = "[x]"
		}
		sb.WriteString(fmt.Sprintf("  %s %s.%s", status, action.Module, action.Action))
		if action.CallCount > 1 {
			sb.WriteString(fmt.Sprintf(" (x%d)", action.CallCount))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatJSON formats the report as JSON.
func (r *Report) FormatJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
