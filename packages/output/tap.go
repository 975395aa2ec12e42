package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/stagehand/packages/results"
)

// TAPFormatter buffers suite results and writes a single TAP version 13
// stream on Flush. The test plan covers every suite in the run, so lines
// cannot be emitted until all suites have been formatted.
type TAPFormatter struct {
	writer io.Writer
	suites []tapSuite
}

type tapSuite struct {
	name    string
	records []results.Record
}

type TAPOption func(*TAPFormatter)

func NewTAPFormatter(opts ...TAPOption) *TAPFormatter {
	f := &TAPFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func TAPWithWriter(w io.Writer) TAPOption {
	return func(f *TAPFormatter) {
		f.writer = w
	}
}

// Format records one suite's results for the final stream.
func (f *TAPFormatter) Format(s results.Summary) error {
	records := make([]results.Record, len(s.Records))
	copy(records, s.Records)
	f.suites = append(f.suites, tapSuite{name: s.Suite, records: records})
	return nil
}

// Flush writes the accumulated results. Skipped tests use the SKIP
// directive, incomplete tests the TODO directive; risky tests pass with a
// diagnostic line.
func (f *TAPFormatter) Flush() error {
	total := 0
	for _, s := range f.suites {
		total += len(s.records)
	}

	fmt.Fprintf(f.writer, "TAP version 13\n")
	fmt.Fprintf(f.writer, "1..%d\n", total)

	number := 0
	for _, s := range f.suites {
		if len(f.suites) > 1 {
			fmt.Fprintf(f.writer, "# suite: %s\n", s.name)
		}
		for _, r := range s.records {
			number++

			switch r.Status {
			case results.StatusSkip:
				reason := r.Reason
				if reason == "" || reason == "filtered out" {
					reason = "SKIP"
				}
				fmt.Fprintf(f.writer, "ok %d - %s # SKIP %s\n", number, r.Test, reason)

			case results.StatusIncomplete:
				reason := r.Reason
				if reason == "" {
					reason = "TODO"
				}
				fmt.Fprintf(f.writer, "not ok %d - %s # TODO %s\n", number, r.Test, reason)

			case results.StatusError:
				fmt.Fprintf(f.writer, "not ok %d - %s\n", number, r.Test)
				fmt.Fprintf(f.writer, "  ---\n")
				fmt.Fprintf(f.writer, "  message: %s\n", escapeYAML(recordMessage(r)))
				fmt.Fprintf(f.writer, "  severity: error\n")
				fmt.Fprintf(f.writer, "  ...\n")

			case results.StatusFail:
				fmt.Fprintf(f.writer, "not ok %d - %s\n", number, r.Test)
				fmt.Fprintf(f.writer, "  ---\n")
				fmt.Fprintf(f.writer, "  message: %s\n", escapeYAML(recordMessage(r)))
				fmt.Fprintf(f.writer, "  severity: fail\n")
				fmt.Fprintf(f.writer, "  ...\n")

			case results.StatusRisky:
				fmt.Fprintf(f.writer, "ok %d - %s\n", number, r.Test)
				fmt.Fprintf(f.writer, "# risky: %s\n", r.Reason)

			default:
				fmt.Fprintf(f.writer, "ok %d - %s\n", number, r.Test)
			}
		}
	}

	fmt.Fprintln(f.writer)
	return nil
}

// FormatError goes to stderr so the stream on the writer stays parseable.
func (f *TAPFormatter) FormatError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

func escapeYAML(s string) string {
	// Simple YAML escaping - wrap in quotes if contains special chars
	if strings.ContainsAny(s, ":\n\"'[]{}#&*!|>%@`") {
		s = strings.ReplaceAll(s, "\"", "\\\"")
		return "\"" + s + "\""
	}
	return s
}
