package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/stagehand/packages/results"
)

// JSONOutput is the document Flush writes: one entry per formatted suite
// plus the combined tally.
type JSONOutput struct {
	Summary JSONTotals  `json:"summary"`
	Suites  []JSONSuite `json:"suites"`
	Time    string      `json:"time"`
}

// JSONTotals sums the formatted suites.
type JSONTotals struct {
	Suites     int     `json:"suites"`
	Total      int     `json:"total"`
	Passed     int     `json:"passed"`
	Failed     int     `json:"failed"`
	Errors     int     `json:"errors"`
	Skipped    int     `json:"skipped"`
	Incomplete int     `json:"incomplete"`
	Risky      int     `json:"risky"`
	Duration   float64 `json:"duration"`
}

// JSONSuite represents one suite run
type JSONSuite struct {
	RunID      string     `json:"runId"`
	Suite      string     `json:"suite"`
	Total      int        `json:"total"`
	Passed     int        `json:"passed"`
	Failed     int        `json:"failed"`
	Errors     int        `json:"errors"`
	Skipped    int        `json:"skipped"`
	Incomplete int        `json:"incomplete"`
	Risky      int        `json:"risky"`
	Stopped    bool       `json:"stopped,omitempty"`
	Duration   float64    `json:"duration"`
	Tests      []JSONTest `json:"tests"`
}

// JSONTest represents a single test result
type JSONTest struct {
	Name     string   `json:"name"`
	Groups   []string `json:"groups,omitempty"`
	Status   string   `json:"status"`
	Reason   string   `json:"reason,omitempty"`
	Error    string   `json:"error,omitempty"`
	Duration float64  `json:"duration"`
}

// JSONFormatter buffers suite results and writes a single JSON document on
// Flush.
type JSONFormatter struct {
	writer io.Writer
	suites []JSONSuite
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

// Format records one suite's results for the final document.
func (f *JSONFormatter) Format(s results.Summary) error {
	tests := make([]JSONTest, 0, len(s.Records))
	for _, r := range s.Records {
		test := JSONTest{
			Name:     r.Test,
			Groups:   r.Groups,
			Status:   string(r.Status),
			Reason:   r.Reason,
			Duration: float64(r.Elapsed.Milliseconds()),
		}
		if r.Err != nil {
			test.Error = r.Err.Error()
		}
		tests = append(tests, test)
	}

	f.suites = append(f.suites, JSONSuite{
		RunID:      s.RunID,
		Suite:      s.Suite,
		Total:      s.Total,
		Passed:     s.Passed,
		Failed:     s.Failed,
		Errors:     s.Errors,
		Skipped:    s.Skipped,
		Incomplete: s.Incomplete,
		Risky:      s.Risky,
		Stopped:    s.Stopped,
		Duration:   float64(s.Duration.Milliseconds()),
		Tests:      tests,
	})
	return nil
}

// Flush writes the accumulated suites as one indented JSON document.
func (f *JSONFormatter) Flush() error {
	var totals JSONTotals
	totals.Suites = len(f.suites)
	for _, s := range f.suites {
		totals.Total += s.Total
		totals.Passed += s.Passed
		totals.Failed += s.Failed
		totals.Errors += s.Errors
		totals.Skipped += s.Skipped
		totals.Incomplete += s.Incomplete
		totals.Risky += s.Risky
		totals.Duration += s.Duration
	}

	output := JSONOutput{
		Summary: totals,
		Suites:  f.suites,
		Time:    time.Now().Format(time.RFC3339),
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// FormatError goes to stderr so the document on the writer stays
// machine-readable.
func (f *JSONFormatter) FormatError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
