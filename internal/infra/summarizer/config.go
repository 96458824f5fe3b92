// Package summarizer provides the LLM backends that condense a note into a
// short summary. Every network backend shares the same call path: a per-call
// timeout, retry with exponential backoff and a circuit breaker, with
// structured logging and Prometheus metrics around each request.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	openai "github.com/sashabaranov/go-openai"

	"daily-refresher/internal/resilience/retry"
)

// Provider names accepted by New.
const (
	ProviderOpenAI    = "openai"
	ProviderClaude    = "claude"
	ProviderLangChain = "langchain"
	ProviderNoop      = "noop"
)

// Default models per provider.
const (
	DefaultOpenAIModel = openai.GPT4oMini
	DefaultClaudeModel = string(anthropic.Model("claude-sonnet-4-5-20250929")) // value of anthropic.ModelClaudeSonnet4_5_20250929 (added after SDK v1.9.0)
)

const defaultTimeout = 60 * time.Second

var (
	// ErrUnknownProvider is returned by New for an unsupported provider name.
	ErrUnknownProvider = errors.New("unknown summarizer provider")
	// ErrAPIKeyRequired is returned by New when a network backend has no key.
	ErrAPIKeyRequired = errors.New("summarizer API key is required")
	// ErrEmptyResponse is returned when the API answered without any text.
	ErrEmptyResponse = errors.New("summarizer returned empty response")
)

// Summarizer turns the chunks of one note into a single summary.
type Summarizer interface {
	Summarize(ctx context.Context, chunks []string, maxTokens int) (string, error)
}

// Config selects and configures a backend.
type Config struct {
	Provider string
	APIKey   string
	// Model defaults per provider when empty.
	Model string
	// BaseURL points OpenAI-compatible and Anthropic clients at another endpoint.
	BaseURL string
	// Timeout bounds a single summarization including retries. Zero means 60s.
	Timeout time.Duration
	// Retry overrides retry.AIAPIConfig when MaxAttempts is set.
	Retry retry.Config
	// Metrics defaults to the Prometheus recorder.
	Metrics SummaryMetricsRecorder
}

func (c Config) withDefaults(model string) Config {
	if c.Model == "" {
		c.Model = model
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry = retry.AIAPIConfig()
	}
	if c.Metrics == nil {
		c.Metrics = NewPrometheusSummaryMetrics()
	}
	return c
}

// New returns the backend named by cfg.Provider.
func New(cfg Config) (Summarizer, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider != ProviderNoop && strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w for provider %q", ErrAPIKeyRequired, provider)
	}

	switch provider {
	case ProviderOpenAI, "":
		return NewOpenAI(cfg), nil
	case ProviderClaude:
		return NewClaude(cfg), nil
	case ProviderLangChain:
		return NewLangChain(cfg)
	case ProviderNoop:
		return NewNoOp(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
