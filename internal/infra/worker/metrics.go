package worker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	pkgconfig "daily-refresher/internal/pkg/config"
)

// Job run statuses.
const (
	JobStarted = "started"
	JobSuccess = "success"
	JobFailure = "failure"
	JobSkipped = "skipped"
)

// WorkerMetrics are the worker's Prometheus metrics.
//
// Embedded configuration metrics (prefix worker_config_) come from
// pkgconfig.ConfigMetrics. Job metrics:
//   - worker_refresh_job_runs_total{status}
//   - worker_refresh_job_duration_seconds
//   - worker_refresh_job_notes_summarized_total
//   - worker_refresh_job_last_success_timestamp
type WorkerMetrics struct {
	*pkgconfig.ConfigMetrics

	JobRunsTotal         *prometheus.CounterVec
	JobDurationSeconds   prometheus.Histogram
	NotesSummarizedTotal prometheus.Counter
	LastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics registers the worker metrics on reg. A nil reg uses
// prometheus.DefaultRegisterer. Call it once per registry.
func NewWorkerMetrics(reg prometheus.Registerer) *WorkerMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &WorkerMetrics{
		ConfigMetrics: pkgconfig.NewConfigMetrics(reg, "worker"),

		JobRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_refresh_job_runs_total",
			Help: "Total number of scheduled refresh runs by status (started/success/failure/skipped)",
		}, []string{"status"}),

		JobDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_refresh_job_duration_seconds",
			Help:    "Duration of scheduled refresh runs in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 300, 900, 1800},
		}),

		NotesSummarizedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "worker_refresh_job_notes_summarized_total",
			Help: "Total number of notes summarized by scheduled runs",
		}),

		LastSuccessTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "worker_refresh_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful scheduled run",
		}),
	}
}

// RecordJobRun counts a run with the given status.
func (m *WorkerMetrics) RecordJobRun(status string) {
	m.JobRunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration observes the duration of a run.
func (m *WorkerMetrics) RecordJobDuration(d time.Duration) {
	m.JobDurationSeconds.Observe(d.Seconds())
}

// RecordNotesSummarized adds n successfully summarized notes.
func (m *WorkerMetrics) RecordNotesSummarized(n int) {
	if n > 0 {
		m.NotesSummarizedTotal.Add(float64(n))
	}
}

// RecordLastSuccess sets the last success gauge to now.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.LastSuccessTimestamp.SetToCurrentTime()
}
