package summarizer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"daily-refresher/internal/resilience/retry"
)

// LangChain summarizes with langchaingo's stuff summarization chain over an
// OpenAI-compatible model. Each chunk becomes one document of the chain.
type LangChain struct {
	chain  chains.Chain
	caller *caller
}

// NewLangChain returns a LangChain summarizer.
func NewLangChain(cfg Config) (*LangChain, error) {
	cfg = cfg.withDefaults(DefaultOpenAIModel)

	opts := []lcopenai.Option{
		lcopenai.WithToken(cfg.APIKey),
		lcopenai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, lcopenai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := lcopenai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create langchain model: %w", err)
	}

	slog.Info("initialized langchain summarizer",
		slog.String("model", cfg.Model),
		slog.String("chain", "stuff"))

	return newLangChainWithModel(llm, cfg), nil
}

func newLangChainWithModel(llm llms.Model, cfg Config) *LangChain {
	return &LangChain{
		chain:  chains.LoadStuffSummarization(llm),
		caller: newCaller(ProviderLangChain, cfg),
	}
}

// Summarize implements Summarizer.
func (l *LangChain) Summarize(ctx context.Context, chunks []string, maxTokens int) (string, error) {
	docs := make([]schema.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = schema.Document{PageContent: chunk}
	}

	return l.caller.call(ctx, chunks, func(ctx context.Context) (completion, error) {
		out, err := chains.Call(ctx, l.chain,
			map[string]any{"input_documents": docs},
			chains.WithMaxTokens(maxTokens),
			chains.WithTemperature(0),
		)
		if err != nil {
			return completion{}, mapLangChainError(err)
		}
		text, ok := out["text"].(string)
		if !ok {
			return completion{}, fmt.Errorf("langchain chain returned no text output")
		}
		return completion{Text: text}, nil
	})
}

// The OpenAI client of langchaingo reports HTTP failures only in the error text.
func mapLangChainError(err error) error {
	if code, ok := statusFromMessage(err); ok {
		return &retry.HTTPError{StatusCode: code, Message: "langchain model error", Err: err}
	}
	return err
}

var _ Summarizer = (*LangChain)(nil)
