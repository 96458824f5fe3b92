package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"daily-refresher/internal/domain/entity"
	"daily-refresher/internal/observability/logging"
	"daily-refresher/internal/observability/metrics"
	"daily-refresher/internal/observability/tracing"
	"daily-refresher/internal/resilience/ratelimit"
	"daily-refresher/internal/utils/text"
)

// Summarizer turns the chunks of one note into a single summary.
// All chunks of a note are sent in one request (stuff strategy) with
// temperature 0 and at most maxTokens of output.
type Summarizer interface {
	Summarize(ctx context.Context, chunks []string, maxTokens int) (string, error)
}

// PipelineConfig tunes a Pipeline.
type PipelineConfig struct {
	ChunkSize         int
	ChunkOverlap      int
	MaxTokens         int
	Concurrency       int
	RequestsPerSecond float64
	// AbortOnFailure cancels the remaining notes on the first failure and
	// makes Run return that failure. By default failures stay per note.
	AbortOnFailure bool
}

// Pipeline summarizes selected notes.
type Pipeline struct {
	summarizer Summarizer
	cfg        PipelineConfig
	limiter    *ratelimit.Limiter
}

// NewPipeline returns a Pipeline. Concurrency below 1 means 1. A positive
// RequestsPerSecond throttles summarizer calls with a token bucket.
func NewPipeline(s Summarizer, cfg PipelineConfig) *Pipeline {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Pipeline{
		summarizer: s,
		cfg:        cfg,
		limiter:    ratelimit.Optional(cfg.RequestsPerSecond),
	}
}

// Run summarizes docs concurrently. results[i] always belongs to docs[i],
// whatever order the calls complete in.
//
// In the default mode the returned error is non-nil only when ctx ends
// before all notes are done. With AbortOnFailure it is the first failure.
func (p *Pipeline) Run(ctx context.Context, docs []entity.Document) ([]entity.SummaryResult, error) {
	results := make([]entity.SummaryResult, len(docs))

	g, gctx := &errgroup.Group{}, ctx
	if p.cfg.AbortOnFailure {
		g, gctx = errgroup.WithContext(ctx)
	}
	g.SetLimit(p.cfg.Concurrency)

	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			results[i] = p.summarizeOne(gctx, doc)
			if p.cfg.AbortOnFailure {
				return results[i].Err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func (p *Pipeline) summarizeOne(ctx context.Context, doc entity.Document) entity.SummaryResult {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "refresh.summarize_document", attribute.String("note.path", doc.Path))
	defer span.End()
	logger := logging.FromContext(ctx).With(slog.String("note", doc.Path))

	result := entity.SummaryResult{Document: doc}
	fail := func(outcome string, err error) entity.SummaryResult {
		result.Err = err
		result.Duration = time.Since(start)
		tracing.RecordError(span, err)
		metrics.RecordNoteOutcome(outcome, result.Duration)
		logger.Warn("note not summarized",
			slog.String("outcome", outcome),
			slog.Duration("duration", result.Duration),
			slog.Any("error", err))
		return result
	}

	if err := ctx.Err(); err != nil {
		return fail(metrics.NoteCanceled, err)
	}

	content, err := doc.File.Read(ctx)
	if err != nil {
		return fail(metrics.NoteReadError, fmt.Errorf("%w %s: %w", ErrDocumentRead, doc.Path, err))
	}
	if strings.TrimSpace(content) == "" {
		return fail(metrics.NoteEmpty, fmt.Errorf("%w: %s", ErrEmptyDocument, doc.Path))
	}

	chunks, err := text.Split(content, p.cfg.ChunkSize, p.cfg.ChunkOverlap)
	if err != nil {
		return fail(metrics.NoteSummarizeError, fmt.Errorf("%w %s: %w", ErrSummarizationFailed, doc.Path, err))
	}
	span.SetAttributes(attribute.Int("note.chunks", len(chunks)))
	metrics.RecordChunks(len(chunks))

	if err := p.limiter.Allow(ctx); err != nil {
		return fail(metrics.NoteCanceled, err)
	}

	summary, err := p.summarizer.Summarize(ctx, chunks, p.cfg.MaxTokens)
	if err != nil {
		outcome := metrics.NoteSummarizeError
		if errors.Is(err, context.Canceled) {
			outcome = metrics.NoteCanceled
		}
		return fail(outcome, fmt.Errorf("%w %s: %w", ErrSummarizationFailed, doc.Path, err))
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return fail(metrics.NoteSummarizeError, fmt.Errorf("%w %s: empty response", ErrSummarizationFailed, doc.Path))
	}

	result.Summary = summary
	result.Duration = time.Since(start)
	metrics.RecordNoteOutcome(metrics.NoteSuccess, result.Duration)
	logger.Info("note summarized",
		slog.Int("chunks", len(chunks)),
		slog.Int("summary_length", text.CountRunes(summary)),
		slog.Duration("duration", result.Duration))
	return result
}
