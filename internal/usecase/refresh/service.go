package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"daily-refresher/internal/config"
	"daily-refresher/internal/domain/entity"
	"daily-refresher/internal/observability/logging"
	"daily-refresher/internal/observability/metrics"
	"daily-refresher/internal/observability/tracing"
)

// Presenter renders the state of a refresh run. For every run that gets past
// the lifecycle check the service calls exactly one of ShowResults and
// ShowError, exactly once. ShowPending, when called, comes first.
type Presenter interface {
	ShowPending(ctx context.Context) error
	ShowResults(ctx context.Context, results []entity.SummaryResult) error
	ShowError(ctx context.Context, message string) error
}

// SummarizerFactory builds a Summarizer for the given settings.
type SummarizerFactory func(config.SummarizerSettings) (Summarizer, error)

// RunReport describes one refresh run.
type RunReport struct {
	RunID      string
	Candidates int
	Selected   int
	Succeeded  int
	Failed     int
	Duration   time.Duration
	Results    []entity.SummaryResult
}

// Option configures a Service.
type Option func(*Service)

// WithRandSource sets the randomness used by the random selection policy.
func WithRandSource(src rand.Source) Option {
	return func(s *Service) { s.src = src }
}

// Service runs refreshes against a vault.
//
// The service must be started before Refresh is accepted. Stop refuses new
// runs and waits for the ones in flight. Concurrent Refresh calls are not
// serialized; callers that trigger on a timer should skip overlapping ticks.
type Service struct {
	scanner   *Scanner
	presenter Presenter
	factory   SummarizerFactory
	src       rand.Source
	samplers  map[entity.SelectionPolicy]Sampler

	lifecycle sync.Mutex
	running   bool
	inflight  sync.WaitGroup

	cacheMu   sync.Mutex
	cached    Summarizer
	cachedFor config.SummarizerSettings
}

// NewService wires a Service.
func NewService(vault Resolver, presenter Presenter, factory SummarizerFactory, opts ...Option) (*Service, error) {
	s := &Service{
		scanner:   NewScanner(vault),
		presenter: presenter,
		factory:   factory,
		src:       rand.NewSource(time.Now().UnixNano()),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.samplers = make(map[entity.SelectionPolicy]Sampler, 2)
	for _, policy := range []entity.SelectionPolicy{entity.PolicyFirst, entity.PolicyRandom} {
		sampler, err := NewSampler(policy, s.src)
		if err != nil {
			return nil, err
		}
		s.samplers[policy] = sampler
	}
	return s, nil
}

// Start marks the service as running.
func (s *Service) Start(ctx context.Context) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	s.running = true
	logging.FromContext(ctx).Info("refresh service started")
	return nil
}

// Stop refuses new runs and waits for in-flight runs to finish or for ctx to end.
func (s *Service) Stop(ctx context.Context) error {
	s.lifecycle.Lock()
	s.running = false
	s.lifecycle.Unlock()

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.FromContext(ctx).Info("refresh service stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stop refresh service: %w", ctx.Err())
	}
}

// Running reports whether the service accepts runs.
func (s *Service) Running() bool {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	return s.running
}

// Refresh performs one run with the given settings snapshot:
// credential check, pending state, scan, sample, summarize, present.
//
// A run where some notes fail still shows results; failed notes carry
// their error. When every selected note fails the first failure is shown
// and the error wraps ErrNoSummaries. A missing API key is reported before
// anything else happens and wraps ErrAPIKeyMissing.
func (s *Service) Refresh(ctx context.Context, settings config.Settings) (*RunReport, error) {
	if err := s.enter(); err != nil {
		return nil, err
	}
	defer s.inflight.Done()

	start := time.Now()
	report := &RunReport{RunID: uuid.NewString()}
	logger := logging.WithRunID(logging.FromContext(ctx), report.RunID)
	ctx = logging.WithLogger(ctx, logger)

	ctx, span := tracing.StartSpan(ctx, "refresh.run", attribute.String("refresh.run_id", report.RunID))
	defer span.End()

	finish := func(outcome string, err error) (*RunReport, error) {
		report.Duration = time.Since(start)
		metrics.RecordRefreshRun(outcome, report.Duration)
		tracing.RecordError(span, err)
		span.SetAttributes(attribute.String("refresh.outcome", outcome))
		logger.Info("refresh finished",
			slog.String("outcome", outcome),
			slog.Int("candidates", report.Candidates),
			slog.Int("selected", report.Selected),
			slog.Int("succeeded", report.Succeeded),
			slog.Int("failed", report.Failed),
			slog.Duration("duration", report.Duration))
		return report, err
	}

	sum := settings.Summarizer
	if sum.NeedsAPIKey() && strings.TrimSpace(sum.APIKey) == "" {
		s.showError(ctx, fmt.Sprintf("%s API key is not configured. Set %s or summarizer.api_key.",
			sum.ProviderLabel(), sum.APIKeyEnv()))
		return finish(metrics.OutcomeConfigError, fmt.Errorf("%w for provider %s", ErrAPIKeyMissing, sum.Provider))
	}

	criteria, err := settings.Criteria()
	if err != nil {
		s.showError(ctx, "Invalid selection settings: "+err.Error())
		return finish(metrics.OutcomeConfigError, err)
	}
	sampler, ok := s.samplers[criteria.Policy]
	if !ok {
		err := fmt.Errorf("%w: %q", ErrUnknownPolicy, criteria.Policy)
		s.showError(ctx, "Invalid selection settings: "+err.Error())
		return finish(metrics.OutcomeConfigError, err)
	}

	summarizer, err := s.summarizerFor(sum)
	if err != nil {
		s.showError(ctx, "Cannot create summarizer: "+err.Error())
		return finish(metrics.OutcomeConfigError, fmt.Errorf("create summarizer: %w", err))
	}

	s.present(ctx, "pending", func(ctx context.Context) error { return s.presenter.ShowPending(ctx) })

	candidates, err := s.scanner.Scan(ctx, criteria)
	if err != nil {
		s.showError(ctx, "Failed to scan notes: "+err.Error())
		return finish(metrics.OutcomeScanError, err)
	}
	report.Candidates = len(candidates)
	metrics.RecordScan(len(candidates))

	selected := sampler.Sample(candidates, criteria.MaxCount)
	report.Selected = len(selected)
	metrics.RecordSelection(string(criteria.Policy), len(selected))

	if len(selected) == 0 {
		s.showResults(ctx, []entity.SummaryResult{})
		return finish(metrics.OutcomeNoNotes, nil)
	}

	pipeline := NewPipeline(summarizer, PipelineConfig{
		ChunkSize:         settings.Pipeline.ChunkSize,
		ChunkOverlap:      settings.Pipeline.ChunkOverlap,
		MaxTokens:         sum.MaxTokens,
		Concurrency:       settings.Pipeline.Concurrency,
		RequestsPerSecond: settings.Pipeline.RequestsPerSecond,
		AbortOnFailure:    settings.Pipeline.OnFailure == config.OnFailureAbort,
	})
	results, runErr := pipeline.Run(ctx, selected)
	report.Results = results
	for _, r := range results {
		if r.OK() {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}

	if runErr != nil {
		s.showError(ctx, "Refresh aborted: "+runErr.Error())
		return finish(metrics.OutcomeAborted, runErr)
	}

	if report.Succeeded == 0 {
		first := firstFailure(results)
		s.showError(ctx, "No note could be summarized: "+first.Error())
		return finish(metrics.OutcomeNoSummaries, fmt.Errorf("%w: %w", ErrNoSummaries, first))
	}

	s.showResults(ctx, results)
	if report.Failed > 0 {
		return finish(metrics.OutcomePartial, nil)
	}
	return finish(metrics.OutcomeSuccess, nil)
}

func (s *Service) enter() error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	if !s.running {
		return ErrNotRunning
	}
	s.inflight.Add(1)
	return nil
}

// summarizerFor returns the cached summarizer while the settings it was
// built from are unchanged.
func (s *Service) summarizerFor(settings config.SummarizerSettings) (Summarizer, error) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if s.cached != nil && s.cachedFor == settings {
		return s.cached, nil
	}
	summarizer, err := s.factory(settings)
	if err != nil {
		return nil, err
	}
	s.cached, s.cachedFor = summarizer, settings
	return summarizer, nil
}

func (s *Service) showError(ctx context.Context, message string) {
	s.present(ctx, "error", func(ctx context.Context) error { return s.presenter.ShowError(ctx, message) })
}

func (s *Service) showResults(ctx context.Context, results []entity.SummaryResult) {
	s.present(ctx, "results", func(ctx context.Context) error { return s.presenter.ShowResults(ctx, results) })
}

// present calls the presenter. Presenter failures are logged and do not
// change the outcome of the run.
func (s *Service) present(ctx context.Context, state string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		logging.FromContext(ctx).Warn("presenter failed",
			slog.String("state", state),
			slog.Any("error", err))
	}
}

func firstFailure(results []entity.SummaryResult) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return errors.New("no results")
}
