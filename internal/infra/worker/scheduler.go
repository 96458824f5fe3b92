package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"daily-refresher/internal/config"
	"daily-refresher/internal/observability/logging"
	"daily-refresher/internal/usecase/refresh"
)

// Refresher runs one refresh with a settings snapshot.
type Refresher interface {
	Refresh(ctx context.Context, settings config.Settings) (*refresh.RunReport, error)
}

// SnapshotSource hands out the settings in effect at trigger time.
type SnapshotSource interface {
	Snapshot() config.Settings
}

// Scheduler triggers a refresh on a cron schedule. A tick that fires while
// the previous run is still going is skipped.
type Scheduler struct {
	cfg       *WorkerConfig
	settings  SnapshotSource
	refresher Refresher
	metrics   *WorkerMetrics
	logger    *slog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	baseCtx context.Context

	running atomic.Bool
}

// NewScheduler wires a Scheduler. metrics may be nil.
func NewScheduler(cfg *WorkerConfig, settings SnapshotSource, refresher Refresher, metrics *WorkerMetrics, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cfg:       cfg,
		settings:  settings,
		refresher: refresher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Start registers the job and starts the cron loop. It does not block.
// ctx is the parent of every run's context.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return errors.New("scheduler already started")
	}

	cl := cronLogger{logger: s.logger}
	c := cron.New(
		cron.WithLocation(s.cfg.Location()),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	s.baseCtx = logging.WithLogger(ctx, s.logger)
	if _, err := c.AddFunc(s.cfg.CronSchedule, func() { s.RunOnce(s.baseCtx) }); err != nil {
		return fmt.Errorf("add refresh job %q: %w", s.cfg.CronSchedule, err)
	}
	c.Start()
	s.cron = c

	s.logger.Info("scheduler started",
		slog.String("schedule", s.cfg.CronSchedule),
		slog.String("timezone", s.cfg.Timezone))
	return nil
}

// Next returns the next scheduled run, zero when not started.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return time.Time{}
	}
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Stop halts the cron loop and waits for a running job or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return nil
	}

	select {
	case <-c.Stop().Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stop scheduler: %w", ctx.Err())
	}
}

// RunOnce performs a single scheduled run with the current settings
// snapshot, bounded by the configured run timeout. It reports false without
// running when another run, scheduled or manual, is still in progress.
func (s *Scheduler) RunOnce(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		s.record(func(m *WorkerMetrics) { m.RecordJobRun(JobSkipped) })
		s.logger.Warn("refresh skipped, previous run still in progress")
		return false
	}
	defer s.running.Store(false)

	start := time.Now()
	s.record(func(m *WorkerMetrics) { m.RecordJobRun(JobStarted) })
	s.logger.Info("scheduled refresh started")

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout)
	defer cancel()

	report, err := s.refresher.Refresh(ctx, s.settings.Snapshot())
	duration := time.Since(start)
	if err != nil {
		s.record(func(m *WorkerMetrics) {
			m.RecordJobRun(JobFailure)
			m.RecordJobDuration(duration)
		})
		s.logger.Error("scheduled refresh failed",
			slog.Duration("duration", duration),
			slog.Any("error", err))
		return true
	}

	s.record(func(m *WorkerMetrics) {
		m.RecordJobRun(JobSuccess)
		m.RecordJobDuration(duration)
		m.RecordNotesSummarized(report.Succeeded)
		m.RecordLastSuccess()
	})
	s.logger.Info("scheduled refresh completed",
		slog.String("run_id", report.RunID),
		slog.Int("selected", report.Selected),
		slog.Int("succeeded", report.Succeeded),
		slog.Int("failed", report.Failed),
		slog.Duration("duration", duration))
	return true
}

func (s *Scheduler) record(fn func(*WorkerMetrics)) {
	if s.metrics != nil {
		fn(s.metrics)
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
