package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/abdul-hamid-achik/stagehand/packages/core/event"
	"github.com/abdul-hamid-achik/stagehand/packages/results"
)

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool

	formatted []results.Summary
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

// Attach subscribes the formatter to the event channel so result lines
// appear while the suite runs.
func (f *ConsoleFormatter) Attach(d *event.Dispatcher) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	d.Subscribe(event.SuiteStart, func(ev event.Event) {
		fmt.Fprintf(f.writer, "\n%s\n\n", bold("Running: "+ev.Suite))
	})

	d.Subscribe(event.TestSuccess, func(ev event.Event) {
		fmt.Fprintf(f.writer, "  %s %s %s\n",
			green("✓"), ev.Test.Name(), cyan(fmt.Sprintf("(%dms)", ev.Elapsed.Milliseconds())))
	})

	d.Subscribe(event.TestFail, func(ev event.Event) {
		fmt.Fprintf(f.writer, "  %s %s\n", red("✗"), ev.Test.Name())
	})

	d.Subscribe(event.TestError, func(ev event.Event) {
		fmt.Fprintf(f.writer, "  %s %s %s\n",
			red("x"), ev.Test.Name(), red("("+ev.Reason+")"))
	})

	d.Subscribe(event.TestRisky, func(ev event.Event) {
		fmt.Fprintf(f.writer, "  %s %s %s\n",
			yellow("!"), ev.Test.Name(), yellow("("+ev.Reason+")"))
	})

	d.Subscribe(event.TestSkipped, func(ev event.Event) {
		fmt.Fprintf(f.writer, "  %s %s", yellow("-"), ev.Test.Name())
		if ev.Reason != "" && (f.verbose || ev.Reason != "filtered out") {
			fmt.Fprintf(f.writer, " (%s)", ev.Reason)
		}
		fmt.Fprintf(f.writer, "\n")
	})

	d.Subscribe(event.TestIncomplete, func(ev event.Event) {
		fmt.Fprintf(f.writer, "  %s %s", yellow("?"), ev.Test.Name())
		if ev.Reason != "" {
			fmt.Fprintf(f.writer, " (%s)", ev.Reason)
		}
		fmt.Fprintf(f.writer, "\n")
	})

	if f.verbose {
		// Step events flow only when the suite collects coverage.
		d.Subscribe(event.TestStep, func(ev event.Event) {
			fmt.Fprintf(f.writer, "    %s %s.%s\n", cyan("→"), ev.Module, ev.Action)
		})
	}
}

// Format writes the failure details and the final tally for one suite.
func (f *ConsoleFormatter) Format(s results.Summary) error {
	f.formatted = append(f.formatted, s)

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	var failures, errored []results.Record
	for _, r := range s.Records {
		switch r.Status {
		case results.StatusFail:
			failures = append(failures, r)
		case results.StatusError:
			errored = append(errored, r)
		}
	}

	if len(failures) > 0 {
		fmt.Fprintf(f.writer, "\n%s\n", bold("Failures:"))
		for _, r := range failures {
			fmt.Fprintf(f.writer, "  %s %s\n", red("✗"), r.Test)
			if r.Err != nil {
				fmt.Fprintf(f.writer, "    %v\n", r.Err)
			}
		}
	}

	if len(errored) > 0 {
		fmt.Fprintf(f.writer, "\n%s\n", bold("Errors:"))
		for _, r := range errored {
			fmt.Fprintf(f.writer, "  %s %s\n", red("x"), r.Test)
			if r.Err != nil {
				fmt.Fprintf(f.writer, "    %v\n", r.Err)
			}
		}
	}

	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Tests: ")
	if s.Passed > 0 {
		fmt.Fprintf(f.writer, "%s, ", green(fmt.Sprintf("%d passed", s.Passed)))
	}
	if s.Failed > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d failed", s.Failed)))
	}
	if s.Errors > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d errored", s.Errors)))
	}
	if s.Skipped > 0 {
		fmt.Fprintf(f.writer, "%s, ", yellow(fmt.Sprintf("%d skipped", s.Skipped)))
	}
	if s.Incomplete > 0 {
		fmt.Fprintf(f.writer, "%s, ", yellow(fmt.Sprintf("%d incomplete", s.Incomplete)))
	}
	if s.Risky > 0 {
		fmt.Fprintf(f.writer, "%s, ", yellow(fmt.Sprintf("%d risky", s.Risky)))
	}
	fmt.Fprintf(f.writer, "%d total\n", s.Total)
	fmt.Fprintf(f.writer, "Time:  %dms\n", s.Duration.Milliseconds())
	if s.Stopped {
		fmt.Fprintf(f.writer, "%s\n", yellow("Run stopped before reaching every test."))
	}
	fmt.Fprintf(f.writer, "\n")

	return nil
}

// Flush prints the cross-suite totals. A run with a single suite already
// printed its tally in Format, so Flush stays quiet for it.
func (f *ConsoleFormatter) Flush() error {
	if len(f.formatted) < 2 {
		return nil
	}

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	var passedSuites, failedSuites, tests, passed, failed int
	var elapsedMs int64
	for _, s := range f.formatted {
		if s.Success() {
			passedSuites++
		} else {
			failedSuites++
		}
		tests += s.Total
		passed += s.Passed
		failed += s.Failed + s.Errors
		elapsedMs += s.Duration.Milliseconds()
	}

	fmt.Fprintf(f.writer, "%s ", bold("Suites:"))
	if passedSuites > 0 {
		fmt.Fprintf(f.writer, "%s, ", green(fmt.Sprintf("%d passed", passedSuites)))
	}
	if failedSuites > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d failed", failedSuites)))
	}
	fmt.Fprintf(f.writer, "%d total\n", len(f.formatted))

	fmt.Fprintf(f.writer, "%s ", bold("Tests: "))
	if passed > 0 {
		fmt.Fprintf(f.writer, "%s, ", green(fmt.Sprintf("%d passed", passed)))
	}
	if failed > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d failed", failed)))
	}
	fmt.Fprintf(f.writer, "%d total\n", tests)
	fmt.Fprintf(f.writer, "%s %dms\n\n", bold("Time: "), elapsedMs)

	return nil
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("stagehand"), version)
}
