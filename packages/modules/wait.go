package modules

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/abdul-hamid-achik/stagehand/packages/core/suite"
)

const (
	// DefaultWaitTimeout bounds for_http polling.
	DefaultWaitTimeout = 30 * time.Second
	// DefaultWaitInterval is the pause between for_http attempts.
	DefaultWaitInterval = time.Second
)

// Wait pauses a scenario or polls an HTTP endpoint until it is ready.
type Wait struct {
	client *http.Client
}

// NewWait returns the wait module.
func NewWait() *Wait {
	return &Wait{
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (m *Wait) Name() string { return "wait" }

func (m *Wait) Actions() map[string]suite.Action {
	return map[string]suite.Action{
		"sleep":    m.sleep,
		"for_http": m.forHTTP,
	}
}

func (m *Wait) sleep(args ...string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("wait.sleep wants DURATION, got %d arguments", len(args))
	}
	d, err := time.ParseDuration(args[0])
	if err != nil {
		return "", fmt.Errorf("invalid duration %q: %w", args[0], err)
	}
	time.Sleep(d)
	return "", nil
}

// forHTTP polls URL until it answers with the expected status code or the
// timeout elapses. Arguments: URL STATUS [TIMEOUT [INTERVAL]].
func (m *Wait) forHTTP(args ...string) (string, error) {
	if len(args) < 2 || len(args) > 4 {
		return "", fmt.Errorf("wait.for_http wants URL STATUS [TIMEOUT [INTERVAL]], got %d arguments", len(args))
	}

	url := args[0]
	expectedStatus, err := strconv.Atoi(args[1])
	if err != nil {
		return "", fmt.Errorf("invalid status %q: %w", args[1], err)
	}

	timeout := DefaultWaitTimeout
	if len(args) >= 3 {
		if timeout, err = time.ParseDuration(args[2]); err != nil {
			return "", fmt.Errorf("invalid timeout %q: %w", args[2], err)
		}
	}
	interval := DefaultWaitInterval
	if len(args) == 4 {
		if interval, err = time.ParseDuration(args[3]); err != nil {
			return "", fmt.Errorf("invalid interval %q: %w", args[3], err)
		}
	}

	deadline := time.Now().Add(timeout)
	var lastErr error
	var lastStatus int

	for time.Now().Before(deadline) {
		resp, err := m.client.Get(url)
		if err != nil {
			lastErr = err
			time.Sleep(interval)
			continue
		}
		lastStatus = resp.StatusCode
		resp.Body.Close()

		if resp.StatusCode == expectedStatus {
			return fmt.Sprintf("ready after %s", time.Since(deadline.Add(-timeout)).Round(time.Millisecond)), nil
		}
		time.Sleep(interval)
	}

	if lastErr != nil {
		return "", fmt.Errorf("service %s not ready after %v: %v", url, timeout, lastErr)
	}
	return "", fmt.Errorf("service %s not ready after %v: got status %d, expected %d",
		url, timeout, lastStatus, expectedStatus)
}
