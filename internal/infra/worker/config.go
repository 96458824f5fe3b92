package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	pkgconfig "daily-refresher/internal/pkg/config"
)

// WorkerConfig holds the scheduler settings of the refresher worker.
type WorkerConfig struct {
	// CronSchedule is a five-field cron expression. Default "0 9 * * *".
	CronSchedule string

	// Timezone is the IANA zone the schedule is evaluated in. Default "UTC".
	Timezone string

	// RunTimeout bounds one scheduled refresh. Default 10m, range 1m to 2h.
	RunTimeout time.Duration

	// HealthPort serves /health and /health/ready. Default 9091.
	HealthPort int

	// MetricsPort serves /metrics. Default 9090.
	MetricsPort int
}

const (
	minRunTimeout = time.Minute
	maxRunTimeout = 2 * time.Hour
)

// DefaultConfig returns the worker defaults.
func DefaultConfig() *WorkerConfig {
	return &WorkerConfig{
		CronSchedule: "0 9 * * *",
		Timezone:     "UTC",
		RunTimeout:   10 * time.Minute,
		HealthPort:   9091,
		MetricsPort:  9090,
	}
}

// Validate reports every invalid field at once.
func (c *WorkerConfig) Validate() error {
	var errs []error
	if err := pkgconfig.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, err)
	}
	if err := pkgconfig.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, err)
	}
	if err := pkgconfig.ValidateDuration(c.RunTimeout, minRunTimeout, maxRunTimeout); err != nil {
		errs = append(errs, fmt.Errorf("run timeout: %w", err))
	}
	if err := pkgconfig.ValidateIntRange(c.HealthPort, 1, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := pkgconfig.ValidateIntRange(c.MetricsPort, 1, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}
	if c.HealthPort == c.MetricsPort {
		errs = append(errs, fmt.Errorf("health port and metrics port must differ (both %d)", c.HealthPort))
	}
	return errors.Join(errs...)
}

// Location returns the schedule's time zone, UTC when Timezone does not load.
func (c *WorkerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadConfigFromEnv loads the worker settings from the environment.
//
// Loading never fails: a rejected value is replaced by its default, logged
// as a warning and counted in metrics (when metrics is non-nil). The
// returned config always passes Validate unless both ports are set to the
// same value.
//
// Environment variables:
//
//	CRON_SCHEDULE       cron expression        (default "0 9 * * *")
//	WORKER_TIMEZONE     IANA time zone         (default "UTC")
//	RUN_TIMEOUT         duration, 1m to 2h     (default 10m)
//	WORKER_HEALTH_PORT  1 to 65535             (default 9091)
//	METRICS_PORT        1 to 65535             (default 9090)
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, []string) {
	def := DefaultConfig()
	c := &pkgconfig.Collector{}
	if metrics != nil {
		c.Metrics = metrics.ConfigMetrics
	}

	cfg := &WorkerConfig{
		CronSchedule: pkgconfig.Track(c, "cron_schedule",
			pkgconfig.LoadEnvValidated("CRON_SCHEDULE", def.CronSchedule, pkgconfig.ValidateCronSchedule)),
		Timezone: pkgconfig.Track(c, "timezone",
			pkgconfig.LoadEnvValidated("WORKER_TIMEZONE", def.Timezone, pkgconfig.ValidateTimezone)),
		RunTimeout: pkgconfig.Track(c, "run_timeout",
			pkgconfig.LoadEnvDuration("RUN_TIMEOUT", def.RunTimeout, pkgconfig.DurationRange(minRunTimeout, maxRunTimeout))),
		HealthPort: pkgconfig.Track(c, "health_port",
			pkgconfig.LoadEnvInt("WORKER_HEALTH_PORT", def.HealthPort, pkgconfig.IntRange(1, 65535))),
		MetricsPort: pkgconfig.Track(c, "metrics_port",
			pkgconfig.LoadEnvInt("METRICS_PORT", def.MetricsPort, pkgconfig.IntRange(1, 65535))),
	}
	c.Done()

	if logger != nil {
		for _, w := range c.Warnings {
			logger.Warn("worker configuration fallback", slog.String("warning", w))
		}
		logger.Info("worker configuration loaded",
			slog.String("cron_schedule", cfg.CronSchedule),
			slog.String("timezone", cfg.Timezone),
			slog.Duration("run_timeout", cfg.RunTimeout),
			slog.Int("health_port", cfg.HealthPort),
			slog.Int("metrics_port", cfg.MetricsPort),
			slog.Int("fallbacks", len(c.Warnings)))
	}
	return cfg, c.Warnings
}
