package summarizer

import (
	"context"
	"errors"
	"log/slog"
	"math"

	openai "github.com/sashabaranov/go-openai"

	"daily-refresher/internal/resilience/retry"
)

// OpenAI summarizes with the chat completions API of OpenAI or any
// compatible endpoint (BaseURL).
type OpenAI struct {
	client *openai.Client
	model  string
	caller *caller
}

// NewOpenAI returns an OpenAI summarizer.
func NewOpenAI(cfg Config) *OpenAI {
	cfg = cfg.withDefaults(DefaultOpenAIModel)

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	slog.Info("initialized openai summarizer",
		slog.String("model", cfg.Model),
		slog.Bool("custom_base_url", cfg.BaseURL != ""),
		slog.Duration("timeout", cfg.Timeout))

	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		caller: newCaller(ProviderOpenAI, cfg),
	}
}

// Summarize implements Summarizer.
func (o *OpenAI) Summarize(ctx context.Context, chunks []string, maxTokens int) (string, error) {
	prompt := buildPrompt(chunks)
	return o.caller.call(ctx, chunks, func(ctx context.Context) (completion, error) {
		resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: o.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			MaxTokens: maxTokens,
			// A zero temperature is dropped by omitempty.
			Temperature: math.SmallestNonzeroFloat32,
		})
		if err != nil {
			return completion{}, mapOpenAIError(err)
		}
		if len(resp.Choices) == 0 {
			return completion{}, ErrEmptyResponse
		}

		choice := resp.Choices[0]
		return completion{
			Text:      choice.Message.Content,
			Truncated: choice.FinishReason == openai.FinishReasonLength,
		}, nil
	})
}

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &retry.HTTPError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &retry.HTTPError{StatusCode: reqErr.HTTPStatusCode, Message: "openai request failed", Err: err}
	}
	return err
}

var _ Summarizer = (*OpenAI)(nil)
