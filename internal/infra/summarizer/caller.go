package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"daily-refresher/internal/observability/logging"
	"daily-refresher/internal/resilience/circuitbreaker"
	"daily-refresher/internal/resilience/retry"
	"daily-refresher/internal/utils/text"
)

// completion is one answer from a provider.
type completion struct {
	Text      string
	Truncated bool // the provider stopped at the token limit
}

// caller runs provider requests with timeout, retry and circuit breaking.
type caller struct {
	provider string
	model    string
	timeout  time.Duration
	retry    retry.Config
	breaker  *circuitbreaker.CircuitBreaker
	metrics  SummaryMetricsRecorder
}

func newCaller(provider string, cfg Config) *caller {
	return &caller{
		provider: provider,
		model:    cfg.Model,
		timeout:  cfg.Timeout,
		retry:    cfg.Retry,
		breaker:  circuitbreaker.New(circuitbreaker.SummarizerAPIConfig(provider + "-api")),
		metrics:  cfg.Metrics,
	}
}

func (c *caller) call(ctx context.Context, chunks []string, fn func(ctx context.Context) (completion, error)) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	requestID := uuid.NewString()
	logger := logging.FromContext(ctx).With(
		slog.String("provider", c.provider),
		slog.String("request_id", requestID))

	inputLength := 0
	for _, chunk := range chunks {
		inputLength += text.CountRunes(chunk)
	}
	logger.DebugContext(ctx, "starting summarization",
		slog.String("model", c.model),
		slog.Int("chunks", len(chunks)),
		slog.Int("input_length", inputLength))

	start := time.Now()
	var result completion
	err := retry.WithBackoff(ctx, c.retry, func() error {
		out, err := c.breaker.Execute(func() (interface{}, error) {
			return fn(ctx)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				logger.WarnContext(ctx, "summarizer circuit breaker open, request rejected",
					slog.String("state", c.breaker.State().String()))
				return fmt.Errorf("%s api unavailable: %w", c.provider, err)
			}
			return err
		}
		result = out.(completion)
		return nil
	})
	duration := time.Since(start)

	if err != nil {
		c.metrics.RecordRequest(c.provider, statusLabel(err))
		logger.ErrorContext(ctx, "summarization failed",
			slog.Duration("duration", duration),
			slog.Any("error", err))
		return "", fmt.Errorf("%s summarize: %w", c.provider, err)
	}

	summary := strings.TrimSpace(result.Text)
	if summary == "" {
		c.metrics.RecordRequest(c.provider, "empty")
		return "", fmt.Errorf("%s summarize: %w", c.provider, ErrEmptyResponse)
	}

	length := text.CountRunes(summary)
	c.metrics.RecordRequest(c.provider, "success")
	c.metrics.RecordDuration(c.provider, duration)
	c.metrics.RecordLength(c.provider, length)
	if result.Truncated {
		c.metrics.RecordTruncated(c.provider)
		logger.WarnContext(ctx, "summary cut at token limit",
			slog.Int("summary_length", length))
	}

	logger.InfoContext(ctx, "summarization completed",
		slog.Int("summary_length", length),
		slog.Bool("truncated", result.Truncated),
		slog.Duration("duration", duration))
	return summary, nil
}

func statusLabel(err error) string {
	var httpErr *retry.HTTPError
	switch {
	case errors.As(err, &httpErr):
		return strconv.Itoa(httpErr.StatusCode)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "circuit_open"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}

// parseRetryAfter reads a Retry-After header given in seconds.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

var statusPattern = regexp.MustCompile(`status code: (\d{3})`)

// statusFromMessage extracts an HTTP status from clients that only report
// it in the error text.
func statusFromMessage(err error) (int, bool) {
	m := statusPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return 0, false
	}
	code, _ := strconv.Atoi(m[1])
	return code, true
}
