package results

import "time"

// Status classifies a single test outcome.
type Status string

const (
	StatusPass       Status = "pass"
	StatusFail       Status = "fail"
	StatusError      Status = "error"
	StatusSkip       Status = "skip"
	StatusIncomplete Status = "incomplete"
	StatusRisky      Status = "risky"
)

// Record is one reported outcome. A blocked test carrying both a skip and an
// incomplete marker produces two records.
type Record struct {
	Test    string
	Groups  []string
	Status  Status
	Reason  string
	Err     error
	Elapsed time.Duration
}

// Summary is a point-in-time snapshot of a run.
type Summary struct {
	RunID    string
	Suite    string
	Started  time.Time
	Duration time.Duration

	Total      int
	Passed     int
	Failed     int
	Errors     int
	Skipped    int
	Incomplete int
	Risky      int

	Records []Record

	// Stopped reports that the stop policy fired before the collection was
	// exhausted.
	Stopped bool
}

// Success reports whether the run finished without failures or errors.
func (s Summary) Success() bool {
	return s.Failed == 0 && s.Errors == 0
}
