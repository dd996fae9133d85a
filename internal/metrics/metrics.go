// Package metrics records pipeline run metrics in a private Prometheus
// registry and writes them in the node_exporter textfile format, so a
// short-lived CLI process can still be scraped.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "owldlv"

// Recorder holds the run metrics of one process.
type Recorder struct {
	reg *prometheus.Registry

	// runs counts finished runs.
	// Labels: mode, strategy, outcome (completed, failed)
	runs *prometheus.CounterVec

	// stageDuration measures pipeline stages.
	// Labels: stage (import, skolemize, relevance, filter, solve)
	stageDuration *prometheus.HistogramVec

	// factFiles counts fact files seen by the filter.
	// Labels: decision (kept, dropped)
	factFiles *prometheus.CounterVec

	// relevantPredicates is the size of the last relevant set.
	relevantPredicates prometheus.Gauge

	// solverExit is the exit status of the last solver process.
	solverExit prometheus.Gauge
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by mode, strategy and outcome",
		}, []string{"mode", "strategy", "outcome"}),
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300, 1800},
		}, []string{"stage"}),
		factFiles: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "filter",
			Name:      "fact_files_total",
			Help:      "Fact files kept or dropped by relevance filtering",
		}, []string{"decision"}),
		relevantPredicates: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "relevance",
			Name:      "predicates",
			Help:      "Number of predicates relevant to the last query",
		}),
		solverExit: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "last_exit_code",
			Help:      "Exit status of the last solver process",
		}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// RunFinished counts a finished run.
func (r *Recorder) RunFinished(mode, strategy, outcome string) {
	r.runs.WithLabelValues(mode, strategy, outcome).Inc()
}

// ObserveStage records how long a stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// StageTimer starts timing a stage; call the returned func when it ends.
func (r *Recorder) StageTimer(stage string) func() {
	start := time.Now()
	return func() { r.ObserveStage(stage, time.Since(start)) }
}

// FilteredFiles counts the filter's decisions.
func (r *Recorder) FilteredFiles(kept, dropped int) {
	r.factFiles.WithLabelValues("kept").Add(float64(kept))
	r.factFiles.WithLabelValues("dropped").Add(float64(dropped))
}

// RelevantPredicates records the relevant set size.
func (r *Recorder) RelevantPredicates(n int) {
	r.relevantPredicates.Set(float64(n))
}

// SolverExit records a solver exit status.
func (r *Recorder) SolverExit(code int) {
	r.solverExit.Set(float64(code))
}

// WriteTextfile writes the registry to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create metrics folder: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
