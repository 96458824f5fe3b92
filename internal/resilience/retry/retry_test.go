package retry

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:    attempts,
		InitialDelay:   5 * time.Millisecond,
		MaxDelay:       20 * time.Millisecond,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

func TestWithBackoff_Success(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithBackoff_SuccessAfterRetry(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		if attempts < 3 {
			return &HTTPError{StatusCode: 503, Message: "unavailable"}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithBackoff_ExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		return &HTTPError{StatusCode: 500, Message: "server error"}
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Contains(t, err.Error(), "max retry attempts (3) exceeded")

	var httpErr *HTTPError
	assert.ErrorAs(t, err, &httpErr)
}

func TestWithBackoff_NonRetryableStopsImmediately(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(5), func() error {
		attempts++
		return &HTTPError{StatusCode: 401, Message: "unauthorized"}
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithBackoff_ZeroAttemptsRunsOnce(t *testing.T) {
	attempts := 0
	_ = WithBackoff(context.Background(), fastConfig(0), func() error {
		attempts++
		return errors.New("boom")
	})

	assert.Equal(t, 1, attempts)
}

func TestWithBackoff_ContextCancelledDuringWait(t *testing.T) {
	cfg := fastConfig(3)
	cfg.InitialDelay = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := WithBackoff(ctx, cfg, func() error {
		return &HTTPError{StatusCode: 502, Message: "bad gateway"}
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestWithBackoff_HonorsRetryAfter(t *testing.T) {
	cfg := fastConfig(2)
	cfg.InitialDelay = time.Second

	attempts := 0
	start := time.Now()
	err := WithBackoff(context.Background(), cfg, func() error {
		attempts++
		if attempts == 1 {
			return &HTTPError{StatusCode: 429, Message: "slow down", RetryAfter: 10 * time.Millisecond}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Less(t, time.Since(start), 500*time.Millisecond, "RetryAfter should replace the initial delay")
}

/* ───────── classification ───────── */

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), false},
		{"connection refused", syscall.ECONNREFUSED, true},
		{"connection reset", fmt.Errorf("read: %w", syscall.ECONNRESET), true},
		{"500", &HTTPError{StatusCode: 500}, true},
		{"429", &HTTPError{StatusCode: 429}, true},
		{"408", &HTTPError{StatusCode: 408}, true},
		{"400", &HTTPError{StatusCode: 400}, false},
		{"404", &HTTPError{StatusCode: 404}, false},
		{"wrapped 503", fmt.Errorf("summarize: %w", &HTTPError{StatusCode: 503}), true},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestIsRetryableStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504, 599} {
		assert.True(t, IsRetryableStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 301, 400, 401, 403, 404, 422, 600} {
		assert.False(t, IsRetryableStatus(code), "status %d", code)
	}
}

func TestHTTPError(t *testing.T) {
	inner := errors.New("sdk failure")
	err := &HTTPError{StatusCode: 503, Message: "overloaded", Err: inner}

	assert.Equal(t, "HTTP 503: overloaded", err.Error())
	assert.ErrorIs(t, err, inner)
}

/* ───────── presets ───────── */

func TestPresets(t *testing.T) {
	assert.Equal(t, 3, DefaultConfig().MaxAttempts)
	assert.Equal(t, 3, AIAPIConfig().MaxAttempts)
	assert.Equal(t, 2*time.Second, AIAPIConfig().InitialDelay)
	assert.Equal(t, 2, WebhookConfig().MaxAttempts)
	assert.Equal(t, 5*time.Second, WebhookConfig().InitialDelay)
}

func TestAddJitter(t *testing.T) {
	base := 100 * time.Millisecond

	assert.Equal(t, base, addJitter(base, 0))
	for i := 0; i < 50; i++ {
		got := addJitter(base, 0.5)
		assert.GreaterOrEqual(t, got, base)
		assert.LessOrEqual(t, got, 150*time.Millisecond)
	}
}
