// Package metrics provides metrics export functionality for stagehand runs.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abdul-hamid-achik/stagehand/packages/results"
)

// Recorder registers and updates Prometheus metrics for suite runs. Each
// recorder owns its registry, so parallel runs and tests never collide.
type Recorder struct {
	registry *prometheus.Registry

	testsTotal   *prometheus.CounterVec
	runsTotal    *prometheus.CounterVec
	testDuration *prometheus.HistogramVec
	runDuration  *prometheus.GaugeVec
}

// NewRecorder creates a recorder with a fresh registry.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,

		testsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stagehand",
			Name:      "tests_total",
			Help:      "Tests by final result",
		}, []string{"suite", "result"}),

		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stagehand",
			Name:      "runs_total",
			Help:      "Completed suite runs by outcome",
		}, []string{"suite", "outcome"}),

		testDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stagehand",
			Name:      "test_duration_seconds",
			Help:      "Execution duration of individual tests",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}, []string{"suite"}),

		runDuration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "stagehand",
			Name:      "run_duration_seconds",
			Help:      "Wall clock duration of the most recent run",
		}, []string{"suite"}),
	}
}

// ObserveSummary records one completed run.
func (r *Recorder) ObserveSummary(s results.Summary) {
	for _, rec := range s.Records {
		r.testsTotal.WithLabelValues(s.Suite, string(rec.Status)).Inc()
		if rec.Elapsed > 0 {
			r.testDuration.WithLabelValues(s.Suite).Observe(rec.Elapsed.Seconds())
		}
	}

	outcome := "pass"
	if !s.Success() {
		outcome = "fail"
	}
	r.runsTotal.WithLabelValues(s.Suite, outcome).Inc()
	r.runDuration.WithLabelValues(s.Suite).Set(s.Duration.Seconds())
}

// Handler serves the recorder's registry in Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until the returned server is shut down.
// Used by watch mode, where the process stays alive between runs.
func (r *Recorder) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server error: %v\n", err)
		}
	}()

	return server
}
