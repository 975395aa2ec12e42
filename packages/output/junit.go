package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/stagehand/packages/results"
)

// JUnit XML structures

// JUnitTestSuites is the root element
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr,omitempty"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Skipped    int              `xml:"skipped,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite represents one suite run
type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Skipped   int             `xml:"skipped,attr"`
	Time      float64         `xml:"time,attr"`
	Timestamp string          `xml:"timestamp,attr,omitempty"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase represents a single test case
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

// JUnitFailure represents a test failure
type JUnitFailure struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

// JUnitError represents a test error
type JUnitError struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

// JUnitSkipped represents a skipped test
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitFormatter buffers suite results and writes one JUnit XML document on
// Flush.
type JUnitFormatter struct {
	writer io.Writer
	suites []JUnitTestSuite
}

type JUnitOption func(*JUnitFormatter)

func NewJUnitFormatter(opts ...JUnitOption) *JUnitFormatter {
	f := &JUnitFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JUnitWithWriter(w io.Writer) JUnitOption {
	return func(f *JUnitFormatter) {
		f.writer = w
	}
}

// Format records one suite run as a testsuite element. JUnit has no
// incomplete state; incomplete tests are reported as skipped with an
// explanatory message.
func (f *JUnitFormatter) Format(s results.Summary) error {
	suite := JUnitTestSuite{
		Name:      s.Suite,
		Tests:     len(s.Records),
		Failures:  s.Failed,
		Errors:    s.Errors,
		Skipped:   s.Skipped + s.Incomplete,
		Time:      s.Duration.Seconds(),
		Timestamp: s.Started.Format(time.RFC3339),
		TestCases: make([]JUnitTestCase, 0, len(s.Records)),
	}

	for _, r := range s.Records {
		tc := JUnitTestCase{
			Name:      r.Test,
			ClassName: s.Suite,
			Time:      r.Elapsed.Seconds(),
		}

		switch r.Status {
		case results.StatusSkip:
			tc.Skipped = &JUnitSkipped{
				Message: r.Reason,
			}
		case results.StatusIncomplete:
			message := "incomplete"
			if r.Reason != "" {
				message = "incomplete: " + r.Reason
			}
			tc.Skipped = &JUnitSkipped{
				Message: message,
			}
		case results.StatusError:
			tc.Error = &JUnitError{
				Message: recordMessage(r),
				Type:    "Error",
			}
		case results.StatusFail:
			tc.Failure = &JUnitFailure{
				Message: recordMessage(r),
				Type:    "AssertionError",
			}
		}

		suite.TestCases = append(suite.TestCases, tc)
	}

	f.suites = append(f.suites, suite)
	return nil
}

// Flush wraps the accumulated testsuite elements in a testsuites root and
// writes the document.
func (f *JUnitFormatter) Flush() error {
	root := JUnitTestSuites{
		Name:       "stagehand",
		TestSuites: f.suites,
	}
	for _, s := range f.suites {
		root.Tests += s.Tests
		root.Failures += s.Failures
		root.Errors += s.Errors
		root.Skipped += s.Skipped
		root.Time += s.Time
	}

	fmt.Fprintf(f.writer, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	encoder := xml.NewEncoder(f.writer)
	encoder.Indent("", "  ")
	if err := encoder.Encode(root); err != nil {
		return err
	}
	fmt.Fprintln(f.writer)
	return nil
}

// FormatError goes to stderr so the document on the writer stays
// machine-readable.
func (f *JUnitFormatter) FormatError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

func recordMessage(r results.Record) string {
	if r.Err != nil {
		return r.Err.Error()
	}
	return r.Reason
}
