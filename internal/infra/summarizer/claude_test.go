package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily-refresher/internal/resilience/retry"
)

type messagesRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	System      []struct {
		Text string `json:"text"`
	} `json:"system"`
	Messages []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"messages"`
}

func messagesResponse(text, stopReason string) string {
	body, _ := json.Marshal(map[string]any{
		"id":            "msg_01",
		"type":          "message",
		"role":          "assistant",
		"model":         DefaultClaudeModel,
		"content":       []map[string]string{{"type": "text", "text": text}},
		"stop_reason":   stopReason,
		"stop_sequence": nil,
		"usage":         map[string]int{"input_tokens": 12, "output_tokens": 6},
	})
	return string(body)
}

func claudeServer(t *testing.T, calls *atomic.Int32, got *messagesRequest, failures ...int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1))
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		if got != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}

		w.Header().Set("Content-Type", "application/json")
		if n <= len(failures) {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(failures[n-1])
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"overloaded"}}`))
			return
		}
		_, _ = w.Write([]byte(messagesResponse("Notes on thermodynamics.", "end_turn")))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClaude_Summarize(t *testing.T) {
	var calls atomic.Int32
	var req messagesRequest
	srv := claudeServer(t, &calls, &req)
	m := newFakeMetrics()

	s := NewClaude(testConfig(ProviderClaude, srv.URL, m))
	summary, err := s.Summarize(context.Background(), []string{"entropy", "enthalpy"}, 200)

	require.NoError(t, err)
	assert.Equal(t, "Notes on thermodynamics.", summary)
	assert.Equal(t, DefaultClaudeModel, req.Model)
	assert.Equal(t, 200, req.MaxTokens)
	assert.Zero(t, req.Temperature)
	require.Len(t, req.System, 1)
	assert.Contains(t, req.System[0].Text, "Reply with the summary only")
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
	require.Len(t, req.Messages[0].Content, 1)
	assert.Contains(t, req.Messages[0].Content[0].Text, "entropy\n\nenthalpy")
	assert.Equal(t, 1, m.count("claude/success"))
}

func TestClaude_RetriesOverloaded(t *testing.T) {
	var calls atomic.Int32
	srv := claudeServer(t, &calls, nil, 529)

	s := NewClaude(testConfig(ProviderClaude, srv.URL, newFakeMetrics()))
	summary, err := s.Summarize(context.Background(), []string{"note"}, 64)

	require.NoError(t, err)
	assert.Equal(t, "Notes on thermodynamics.", summary)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClaude_ClientErrorIsFinal(t *testing.T) {
	var calls atomic.Int32
	srv := claudeServer(t, &calls, nil, http.StatusBadRequest)

	s := NewClaude(testConfig(ProviderClaude, srv.URL, newFakeMetrics()))
	_, err := s.Summarize(context.Background(), []string{"note"}, 64)

	var httpErr *retry.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClaude_MaxTokensStop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(messagesResponse("Partial", "max_tokens")))
	}))
	defer srv.Close()
	m := newFakeMetrics()

	summary, err := NewClaude(testConfig(ProviderClaude, srv.URL, m)).
		Summarize(context.Background(), []string{"note"}, 2)

	require.NoError(t, err)
	assert.Equal(t, "Partial", summary)
	assert.Equal(t, 1, m.truncated)
}

func TestMapClaudeError_PassesThroughOtherErrors(t *testing.T) {
	boom := errors.New("dial tcp: connection refused")
	assert.Same(t, boom, mapClaudeError(boom))
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 3*time.Second, parseRetryAfter("3"))
	assert.Zero(t, parseRetryAfter(""))
	assert.Zero(t, parseRetryAfter("Wed, 21 Oct 2015 07:28:00 GMT"))
	assert.Zero(t, parseRetryAfter("-1"))
}
