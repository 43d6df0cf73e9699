package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	runsTotal     *prometheus.CounterVec
	runSeconds    prometheus.Histogram
	outcomesTotal *prometheus.CounterVec
	taskSeconds   *prometheus.HistogramVec
	errorsTotal   *prometheus.CounterVec
}

// New creates a recorder registered on the default registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the collectors on reg (useful for testing).
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		runsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_analysis_runs_total",
				Help: "Completed analysis runs by consolidated signal",
			},
			[]string{"signal"},
		),
		runSeconds: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stockpulse_analysis_run_seconds",
				Help:    "Wall time of a full analysis run",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		outcomesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_analyzer_outcomes_total",
				Help: "Settled analyzer tasks by result",
			},
			[]string{"analyzer", "result"},
		),
		taskSeconds: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockpulse_analyzer_seconds",
				Help:    "Analyzer task latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"analyzer"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordTask records one settled analyzer task.
func (r *Recorder) RecordTask(analyzer string, success bool, seconds float64) {
	result := "failure"
	if success {
		result = "success"
	}
	r.outcomesTotal.WithLabelValues(analyzer, result).Inc()
	r.taskSeconds.WithLabelValues(analyzer).Observe(seconds)
}

// RecordRun records a completed run.
func (r *Recorder) RecordRun(signal string, seconds float64) {
	r.runsTotal.WithLabelValues(signal).Inc()
	r.runSeconds.Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
