package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"daily-refresher/internal/resilience/retry"
)

// Claude summarizes with Anthropic's Messages API.
type Claude struct {
	client anthropic.Client
	model  string
	caller *caller
}

// NewClaude returns a Claude summarizer. SDK level retries are disabled;
// retries go through the shared retry policy instead.
func NewClaude(cfg Config) *Claude {
	cfg = cfg.withDefaults(DefaultClaudeModel)

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	slog.Info("initialized claude summarizer",
		slog.String("model", cfg.Model),
		slog.Duration("timeout", cfg.Timeout))

	return &Claude{
		client: anthropic.NewClient(opts...),
		model:  cfg.Model,
		caller: newCaller(ProviderClaude, cfg),
	}
}

// Summarize implements Summarizer.
func (c *Claude) Summarize(ctx context.Context, chunks []string, maxTokens int) (string, error) {
	prompt := buildPrompt(chunks)
	return c.caller.call(ctx, chunks, func(ctx context.Context) (completion, error) {
		message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:       anthropic.Model(c.model),
			MaxTokens:   int64(maxTokens),
			Temperature: anthropic.Float(0),
			System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if err != nil {
			return completion{}, mapClaudeError(err)
		}
		if len(message.Content) == 0 {
			return completion{}, ErrEmptyResponse
		}

		textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
		if !ok {
			return completion{}, fmt.Errorf("claude api returned unexpected content type %q", message.Content[0].Type)
		}
		return completion{
			Text:      textBlock.Text,
			Truncated: message.StopReason == anthropic.StopReasonMaxTokens,
		}, nil
	})
}

func mapClaudeError(err error) error {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	httpErr := &retry.HTTPError{
		StatusCode: apiErr.StatusCode,
		Message:    "claude api error",
		Err:        err,
	}
	if apiErr.Response != nil {
		httpErr.RetryAfter = parseRetryAfter(apiErr.Response.Header.Get("Retry-After"))
	}
	return httpErr
}

var _ Summarizer = (*Claude)(nil)
