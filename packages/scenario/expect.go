package scenario

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// Op is an expectation operator.
type Op string

const (
	OpEquals   Op = "equals"
	OpContains Op = "contains"
	OpMatches  Op = "matches"
	OpExists   Op = "exists"
)

// Expectation examines a step's output. Target is either "output" (the raw
// step output) or "json:<path>" addressing into JSON output with gjson path
// syntax. Matches compiles Value as a regular expression; exists only makes
// sense for json targets.
type Expectation struct {
	Target string
	Op     Op
	Value  string
}

// OutputEquals expects the whitespace-trimmed step output to equal v.
func OutputEquals(v string) Expectation {
	return Expectation{Target: "output", Op: OpEquals, Value: v}
}

// OutputContains expects the step output to contain v.
func OutputContains(v string) Expectation {
	return Expectation{Target: "output", Op: OpContains, Value: v}
}

// OutputMatches expects the step output to match the regular expression
// pattern.
func OutputMatches(pattern string) Expectation {
	return Expectation{Target: "output", Op: OpMatches, Value: pattern}
}

// JSONEquals expects the value at path in the JSON step output to equal v.
func JSONEquals(path, v string) Expectation {
	return Expectation{Target: "json:" + path, Op: OpEquals, Value: v}
}

// JSONContains expects the value at path to contain v.
func JSONContains(path, v string) Expectation {
	return Expectation{Target: "json:" + path, Op: OpContains, Value: v}
}

// JSONExists expects path to resolve to a value in the JSON step output.
func JSONExists(path string) Expectation {
	return Expectation{Target: "json:" + path, Op: OpExists, Value: ""}
}

// Check evaluates the expectation against a step's output.
func (e Expectation) Check(output string) error {
	if path, ok := strings.CutPrefix(e.Target, "json:"); ok {
		return e.checkJSON(path, output)
	}
	if e.Target != "output" {
		return fmt.Errorf("unknown expectation target %q", e.Target)
	}
	return e.checkOutput(output)
}

func (e Expectation) checkOutput(output string) error {
	switch e.Op {
	case OpEquals:
		got := strings.TrimSpace(output)
		if got != e.Value {
			return fmt.Errorf("expected output %q, got %q", e.Value, got)
		}
	case OpContains:
		if !strings.Contains(output, e.Value) {
			return fmt.Errorf("expected output to contain %q, got %q", e.Value, output)
		}
	case OpMatches:
		re, err := regexp.Compile(e.Value)
		if err != nil {
			return fmt.Errorf("invalid pattern %q: %w", e.Value, err)
		}
		if !re.MatchString(output) {
			return fmt.Errorf("expected output to match %q, got %q", e.Value, output)
		}
	case OpExists:
		return fmt.Errorf("operator %q requires a json target", e.Op)
	default:
		return fmt.Errorf("unknown operator %q", e.Op)
	}
	return nil
}

func (e Expectation) checkJSON(path, output string) error {
	result := gjson.Get(output, path)

	switch e.Op {
	case OpExists:
		if !result.Exists() {
			return fmt.Errorf("expected %q to exist in output", path)
		}
	case OpEquals:
		if !result.Exists() {
			return fmt.Errorf("expected %q to exist in output", path)
		}
		if result.String() != e.Value {
			return fmt.Errorf("expected %q at %q, got %q", e.Value, path, result.String())
		}
	case OpContains:
		if !result.Exists() {
			return fmt.Errorf("expected %q to exist in output", path)
		}
		if !strings.Contains(result.String(), e.Value) {
			return fmt.Errorf("expected %q at %q to contain %q", result.String(), path, e.Value)
		}
	case OpMatches:
		return fmt.Errorf("operator %q is not supported for json targets", e.Op)
	default:
		return fmt.Errorf("unknown operator %q", e.Op)
	}
	return nil
}
