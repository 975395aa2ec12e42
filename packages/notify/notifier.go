// Package notify provides webhook notifications for stagehand run results.
package notify

import (
	"time"

	"github.com/abdul-hamid-achik/stagehand/packages/results"
)

// NotifyOn specifies when to send notifications
type NotifyOn string

const (
	// NotifyAlways sends notifications for every run
	NotifyAlways NotifyOn = "always"
	// NotifyFailure sends notifications only when tests fail
	NotifyFailure NotifyOn = "failure"
	// NotifySuccess sends notifications only when tests pass
	NotifySuccess NotifyOn = "success"
	// NotifyRecovery sends notifications when tests recover from failure
	NotifyRecovery NotifyOn = "recovery"
)

// RunSummary represents the summary of a suite run for notifications
type RunSummary struct {
	Suite         string        `json:"suite"`
	TotalTests    int           `json:"total_tests"`
	PassedTests   int           `json:"passed_tests"`
	FailedTests   int           `json:"failed_tests"`
	ErroredTests  int           `json:"errored_tests"`
	SkippedTests  int           `json:"skipped_tests"`
	Duration      time.Duration `json:"duration"`
	Environment   string        `json:"environment,omitempty"`
	FailedResults []FailedTest  `json:"failed_results,omitempty"`
	IsRecovery    bool          `json:"is_recovery,omitempty"`
}

// FailedTest represents a failed test for notifications
type FailedTest struct {
	Name   string `json:"name"`
	Reason string `json:"reason,omitempty"`
}

// FromResults builds a notification summary from a run summary.
func FromResults(s results.Summary) *RunSummary {
	rs := &RunSummary{
		Suite:        s.Suite,
		TotalTests:   s.Total,
		PassedTests:  s.Passed,
		FailedTests:  s.Failed,
		ErroredTests: s.Errors,
		SkippedTests: s.Skipped + s.Incomplete,
		Duration:     s.Duration,
	}

	for _, rec := range s.Records {
		if rec.Status != results.StatusFail && rec.Status != results.StatusError {
			continue
		}
		ft := FailedTest{Name: rec.Test, Reason: rec.Reason}
		if ft.Reason == "" && rec.Err != nil {
			ft.Reason = rec.Err.Error()
		}
		rs.FailedResults = append(rs.FailedResults, ft)
	}

	return rs
}

// broken reports whether the run should count as failed for notification
// policies.
func (s *RunSummary) broken() bool {
	return s.FailedTests > 0 || s.ErroredTests > 0
}

// Notifier is the interface for notification services
type Notifier interface {
	// Notify sends a notification about run results
	Notify(summary *RunSummary) error

	// Name returns the name of the notifier
	Name() string
}

// Manager manages multiple notifiers
type Manager struct {
	notifiers []Notifier
	notifyOn  NotifyOn
	lastState bool // true if last run was successful
}

// NewManager creates a new notification manager
func NewManager(notifyOn NotifyOn, notifiers ...Notifier) *Manager {
	return &Manager{
		notifiers: notifiers,
		notifyOn:  notifyOn,
		lastState: true, // Assume success initially
	}
}

// AddNotifier adds a notifier to the manager
func (m *Manager) AddNotifier(n Notifier) {
	m.notifiers = append(m.notifiers, n)
}

// SetLastState seeds recovery tracking, typically from the run history, so
// one-shot runs can detect recoveries across process restarts.
func (m *Manager) SetLastState(success bool) {
	m.lastState = success
}

// Notify sends notifications based on the configured policy
func (m *Manager) Notify(summary *RunSummary) error {
	shouldNotify := false
	currentSuccess := !summary.broken()

	switch m.notifyOn {
	case NotifyAlways:
		shouldNotify = true
	case NotifyFailure:
		shouldNotify = summary.broken()
	case NotifySuccess:
		shouldNotify = currentSuccess
	case NotifyRecovery:
		// Notify if recovering from failure
		if !m.lastState && currentSuccess {
			shouldNotify = true
			summary.IsRecovery = true
		}
		// Also notify on failure
		if summary.broken() {
			shouldNotify = true
		}
	}

	m.lastState = currentSuccess

	if !shouldNotify {
		return nil
	}

	var lastErr error
	for _, n := range m.notifiers {
		if err := n.Notify(summary); err != nil {
			lastErr = err
		}
	}

	return lastErr
}
