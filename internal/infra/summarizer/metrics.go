package summarizer

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SummaryMetricsRecorder records summarizer request metrics. Tests inject a
// fake; production uses PrometheusSummaryMetrics.
type SummaryMetricsRecorder interface {
	// RecordRequest counts a finished request by outcome ("success", an HTTP
	// status code, "timeout", "circuit_open", ...).
	RecordRequest(provider, status string)

	// RecordDuration records the latency of a successful request, retries included.
	RecordDuration(provider string, duration time.Duration)

	// RecordLength records the length of a summary in runes.
	RecordLength(provider string, length int)

	// RecordTruncated counts summaries the provider cut at the token budget.
	RecordTruncated(provider string)
}

// PrometheusSummaryMetrics implements SummaryMetricsRecorder with Prometheus.
type PrometheusSummaryMetrics struct {
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	length    *prometheus.HistogramVec
	truncated *prometheus.CounterVec
}

var (
	prometheusMetricsInstance *PrometheusSummaryMetrics
	prometheusMetricsOnce     sync.Once
)

// getOrCreate registers c, or returns the collector already registered under the same name.
func getOrCreate[T prometheus.Collector](c T) T {
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
	}
	return c
}

// NewPrometheusSummaryMetrics returns the process-wide recorder, registering
// its collectors with the default registry on first use.
func NewPrometheusSummaryMetrics() *PrometheusSummaryMetrics {
	prometheusMetricsOnce.Do(func() {
		prometheusMetricsInstance = &PrometheusSummaryMetrics{
			requests: getOrCreate(prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "refresher_summarizer_requests_total",
				Help: "Summarizer requests by provider and outcome",
			}, []string{"provider", "status"})),
			duration: getOrCreate(prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "refresher_summarizer_duration_seconds",
				Help:    "Time taken to obtain a summary from the provider, retries included",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
			}, []string{"provider"})),
			length: getOrCreate(prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "refresher_summary_length_characters",
				Help:    "Distribution of summary lengths in characters (Unicode runes)",
				Buckets: []float64{50, 100, 200, 400, 700, 1000, 1500, 2500},
			}, []string{"provider"})),
			truncated: getOrCreate(prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "refresher_summary_truncated_total",
				Help: "Summaries the provider stopped at the max token budget",
			}, []string{"provider"})),
		}
	})
	return prometheusMetricsInstance
}

// RecordRequest implements SummaryMetricsRecorder.
func (p *PrometheusSummaryMetrics) RecordRequest(provider, status string) {
	p.requests.WithLabelValues(provider, status).Inc()
}

// RecordDuration implements SummaryMetricsRecorder.
func (p *PrometheusSummaryMetrics) RecordDuration(provider string, duration time.Duration) {
	p.duration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordLength implements SummaryMetricsRecorder.
func (p *PrometheusSummaryMetrics) RecordLength(provider string, length int) {
	p.length.WithLabelValues(provider).Observe(float64(length))
}

// RecordTruncated implements SummaryMetricsRecorder.
func (p *PrometheusSummaryMetrics) RecordTruncated(provider string) {
	p.truncated.WithLabelValues(provider).Inc()
}

var _ SummaryMetricsRecorder = (*PrometheusSummaryMetrics)(nil)
