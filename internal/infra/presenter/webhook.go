package presenter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"daily-refresher/internal/observability/logging"
	"daily-refresher/internal/resilience/circuitbreaker"
	"daily-refresher/internal/resilience/ratelimit"
	"daily-refresher/internal/resilience/retry"
)

// webhook delivers JSON payloads to a chat webhook with rate limiting,
// retry and circuit breaking. 429 honors the server's retry hint; 5xx and
// network errors are retried; other 4xx are final.
type webhook struct {
	name       string
	url        string
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	breaker    *circuitbreaker.CircuitBreaker
	retry      retry.Config

	// retryAfter reads the backoff of a 429. Nil uses the Retry-After header.
	retryAfter func(header http.Header, body []byte) time.Duration
}

func (w *webhook) post(ctx context.Context, payload any, attrs ...any) error {
	requestID := uuid.New().String()
	logger := logging.FromContext(ctx).With(slog.String("request_id", requestID))

	if err := w.limiter.Allow(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	attempt := 0
	err = retry.WithBackoff(ctx, w.retry, func() error {
		attempt++
		_, err := w.breaker.Execute(func() (interface{}, error) {
			return nil, w.send(ctx, body)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%s webhook unavailable: %w", w.name, err)
		}
		return err
	})
	if err != nil {
		logger.ErrorContext(ctx, w.name+" notification failed",
			slog.Int("attempts", attempt),
			slog.Any("error", err))
		return fmt.Errorf("%s notification failed: %w", w.name, err)
	}

	logger.InfoContext(ctx, w.name+" notification successful",
		append([]any{slog.Int("attempts", attempt)}, attrs...)...)
	return nil
}

func (w *webhook) send(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	httpErr := &retry.HTTPError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("%s webhook error: %s", w.name, string(respBody)),
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		if w.retryAfter != nil {
			httpErr.RetryAfter = w.retryAfter(resp.Header, respBody)
		} else {
			httpErr.RetryAfter = retryAfter(resp.Header.Get("Retry-After"))
		}
	}
	return httpErr
}

// retryAfter parses a Retry-After header in seconds, defaulting to 5s.
func retryAfter(v string) time.Duration {
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return 5 * time.Second
}
