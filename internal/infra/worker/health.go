package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"daily-refresher/internal/observability/tracing"
)

// HealthServer serves the worker's probes:
//   - /health: liveness, always 200
//   - /health/ready: readiness, 200 once SetReady(true) was called, 503 otherwise
//
// Example usage:
//
//	health := NewHealthServer(":9091", logger)
//	go func() { _ = health.Start(ctx) }()
//	health.SetReady(true)
type HealthServer struct {
	addr    string
	logger  *slog.Logger
	isReady atomic.Bool
}

type healthResponse struct {
	Status string `json:"status"`
}

// NewHealthServer returns a server that is not ready and not started.
func NewHealthServer(addr string, logger *slog.Logger) *HealthServer {
	return &HealthServer{addr: addr, logger: logger}
}

// Handler returns the probe routes.
func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleLiveness)
	mux.HandleFunc("/health/ready", h.handleReadiness)
	return mux
}

// Start serves until ctx is canceled, then shuts down gracefully and returns
// http.ErrServerClosed. Listen errors are returned as is.
func (h *HealthServer) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         h.addr,
		Handler:      h.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return serve(ctx, srv, h.logger, "health server")
}

// SetReady flips the readiness probe.
func (h *HealthServer) SetReady(ready bool) {
	h.isReady.Store(ready)
	h.logger.Info("health server readiness changed", slog.Bool("ready", ready))
}

// Ready reports the readiness state.
func (h *HealthServer) Ready() bool {
	return h.isReady.Load()
}

func (h *HealthServer) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	h.writeStatus(w, http.StatusOK, "ok")
}

func (h *HealthServer) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	if h.isReady.Load() {
		h.writeStatus(w, http.StatusOK, "ok")
		return
	}
	h.writeStatus(w, http.StatusServiceUnavailable, "not ready")
}

func (h *HealthServer) writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(healthResponse{Status: status}); err != nil {
		h.logger.Error("failed to encode health response", slog.Any("error", err))
	}
}

// serve runs srv until ctx ends and shuts it down with a 5s grace period.
// Every request is traced, gets an X-Request-ID and is logged at debug level.
func serve(ctx context.Context, srv *http.Server, logger *slog.Logger, name string) error {
	srv.Handler = withRequestID(withLogging(logger, tracing.Middleware(srv.Handler)))
	errChan := make(chan error, 1)
	go func() {
		logger.Info(name+" starting", slog.String("addr", srv.Addr))
		errChan <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		logger.Info(name + " shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(name+" shutdown failed", slog.Any("error", err))
			return err
		}
		logger.Info(name + " stopped")
		return http.ErrServerClosed

	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error(name+" failed", slog.Any("error", err))
		}
		return err
	}
}
