package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/stagehand/packages/results"
	"github.com/abdul-hamid-achik/stagehand/packages/timing"
)

// JSONExporter writes run metrics to a JSON file or writer
type JSONExporter struct {
	writer   io.Writer
	filePath string
	pretty   bool
	timing   *timing.Summary
}

// JSONOption is a functional option for JSONExporter
type JSONOption func(*JSONExporter)

// WithJSONWriter sets the output writer for JSON metrics
func WithJSONWriter(w io.Writer) JSONOption {
	return func(j *JSONExporter) {
		j.writer = w
	}
}

// WithJSONFile sets the output file for JSON metrics
func WithJSONFile(path string) JSONOption {
	return func(j *JSONExporter) {
		j.filePath = path
	}
}

// WithJSONPretty enables pretty-printed JSON output
func WithJSONPretty(pretty bool) JSONOption {
	return func(j *JSONExporter) {
		j.pretty = pretty
	}
}

// NewJSONExporter creates a new JSON metrics exporter
func NewJSONExporter(opts ...JSONOption) *JSONExporter {
	j := &JSONExporter{
		pretty: true,
	}

	for _, opt := range opts {
		opt(j)
	}

	return j
}

// SetTiming attaches histogram percentiles collected with --timing; without
// it the durations section carries min/max/avg only.
func (j *JSONExporter) SetTiming(t timing.Summary) {
	j.timing = &t
}

// JSONMetricsOutput is the complete JSON output structure
type JSONMetricsOutput struct {
	Metadata  JSONMetadata     `json:"metadata"`
	Run       JSONRunSummary   `json:"run"`
	Durations JSONDurations    `json:"durations"`
	Tests     []JSONTestMetric `json:"tests"`
}

// JSONMetadata contains metadata about the metrics collection
type JSONMetadata struct {
	GeneratedAt string `json:"generated_at"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Duration    string `json:"duration"`
	Version     string `json:"version"`
}

// JSONRunSummary carries the run counters
type JSONRunSummary struct {
	RunID      string `json:"run_id"`
	Suite      string `json:"suite"`
	Total      int    `json:"total"`
	Passed     int    `json:"passed"`
	Failed     int    `json:"failed"`
	Errors     int    `json:"errors"`
	Skipped    int    `json:"skipped"`
	Incomplete int    `json:"incomplete"`
	Risky      int    `json:"risky"`
	Stopped    bool   `json:"stopped"`
}

// JSONDurations aggregates test durations in milliseconds
type JSONDurations struct {
	MinMs float64 `json:"min_ms"`
	MaxMs float64 `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms,omitempty"`
	P95Ms float64 `json:"p95_ms,omitempty"`
	P99Ms float64 `json:"p99_ms,omitempty"`
}

// JSONTestMetric is one per-test data point
type JSONTestMetric struct {
	Name       string  `json:"name"`
	Status     string  `json:"status"`
	Reason     string  `json:"reason,omitempty"`
	DurationMs float64 `json:"duration_ms"`
}

// Export writes the run summary as a JSON metrics document
func (j *JSONExporter) Export(s results.Summary) error {
	endTime := s.Started.Add(s.Duration)

	output := JSONMetricsOutput{
		Metadata: JSONMetadata{
			GeneratedAt: time.Now().Format(time.RFC3339),
			StartTime:   s.Started.Format(time.RFC3339),
			EndTime:     endTime.Format(time.RFC3339),
			Duration:    s.Duration.String(),
			Version:     "1.0",
		},
		Run: JSONRunSummary{
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
		},
		Durations: j.durations(s),
		Tests:     make([]JSONTestMetric, 0, len(s.Records)),
	}

	for _, rec := range s.Records {
		metric := JSONTestMetric{
			Name:       rec.Test,
			Status:     string(rec.Status),
			Reason:     rec.Reason,
			DurationMs: float64(rec.Elapsed.Milliseconds()),
		}
		if metric.Reason == "" && rec.Err != nil {
			metric.Reason = rec.Err.Error()
		}
		output.Tests = append(output.Tests, metric)
	}

	var data []byte
	var err error

	if j.pretty {
		data, err = json.MarshalIndent(output, "", "  ")
	} else {
		data, err = json.Marshal(output)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	// Write to file if path is specified
	if j.filePath != "" {
		if err := os.WriteFile(j.filePath, data, 0644); err != nil {
			return fmt.Errorf("failed to write metrics file: %w", err)
		}
	}

	// Write to writer if specified
	if j.writer != nil {
		if _, err := j.writer.Write(data); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
		if _, err := j.writer.Write([]byte("\n")); err != nil {
			return fmt.Errorf("failed to write newline: %w", err)
		}
	}

	return nil
}

func (j *JSONExporter) durations(s results.Summary) JSONDurations {
	var d JSONDurations
	var total float64
	var count int

	for _, rec := range s.Records {
		if rec.Elapsed <= 0 {
			continue
		}
		ms := float64(rec.Elapsed.Milliseconds())
		if count == 0 || ms < d.MinMs {
			d.MinMs = ms
		}
		if ms > d.MaxMs {
			d.MaxMs = ms
		}
		total += ms
		count++
	}
	if count > 0 {
		d.AvgMs = total / float64(count)
	}

	if j.timing != nil {
		d.P50Ms = float64(j.timing.P50.Milliseconds())
		d.P95Ms = float64(j.timing.P95.Milliseconds())
		d.P99Ms = float64(j.timing.P99.Milliseconds())
	}

	return d
}
