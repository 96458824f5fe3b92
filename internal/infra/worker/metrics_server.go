package worker

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsServer exposes /metrics for Prometheus scraping.
type MetricsServer struct {
	addr     string
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// NewMetricsServer serves gatherer on addr. A nil gatherer uses
// prometheus.DefaultGatherer.
func NewMetricsServer(addr string, gatherer prometheus.Gatherer, logger *slog.Logger) *MetricsServer {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &MetricsServer{addr: addr, logger: logger, gatherer: gatherer}
}

// Handler returns the /metrics route.
func (m *MetricsServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{}))
	return mux
}

// Start serves until ctx is canceled. See HealthServer.Start.
func (m *MetricsServer) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         m.addr,
		Handler:      m.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return serve(ctx, srv, m.logger, "metrics server")
}
