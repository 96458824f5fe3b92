package presenter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"daily-refresher/internal/domain/entity"
	"daily-refresher/internal/resilience/circuitbreaker"
	"daily-refresher/internal/resilience/ratelimit"
	"daily-refresher/internal/resilience/retry"
)

// SlackConfig contains configuration for Slack webhook delivery.
type SlackConfig struct {
	// WebhookURL is the Slack Incoming Webhook URL (includes authentication token)
	WebhookURL string

	// Vault names the vault in note links.
	Vault string

	// Timeout is the HTTP request timeout for one webhook call. Zero means 10s.
	Timeout time.Duration

	// Retry overrides retry.WebhookConfig when MaxAttempts is set.
	Retry retry.Config
}

// Slack posts run results to a Slack channel through an Incoming Webhook.
// The pending state is not posted.
type Slack struct {
	config SlackConfig
	hook   *webhook
}

// NewSlack returns a Slack presenter. Messages are limited to one per
// second, the Slack webhook limit.
func NewSlack(config SlackConfig) *Slack {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.Retry.MaxAttempts == 0 {
		config.Retry = retry.WebhookConfig()
	}
	return &Slack{
		config: config,
		hook: &webhook{
			name:       "slack",
			url:        config.WebhookURL,
			httpClient: &http.Client{Timeout: config.Timeout},
			limiter:    ratelimit.New(1.0, 1),
			breaker:    circuitbreaker.New(circuitbreaker.WebhookConfig("slack-webhook")),
			retry:      config.Retry,
		},
	}
}

// SlackWebhookPayload represents the JSON payload sent to Slack webhook using Block Kit.
type SlackWebhookPayload struct {
	Text   string       `json:"text"`   // Fallback text (required)
	Blocks []SlackBlock `json:"blocks"` // Rich formatting blocks
}

// SlackBlock represents a Slack Block Kit block.
type SlackBlock struct {
	Type     string            `json:"type"`               // "header", "section", "context", "divider"
	Text     *SlackTextObject  `json:"text,omitempty"`     // Text content (for header and section)
	Elements []SlackTextObject `json:"elements,omitempty"` // Elements (for context)
}

// SlackTextObject represents a text object in Slack Block Kit.
type SlackTextObject struct {
	Type string `json:"type"` // "mrkdwn" or "plain_text"
	Text string `json:"text"` // Actual text content
}

const (
	// Slack Block Kit limits
	maxSectionTextLength = 3000
	maxContextTextLength = 2000
	maxBlocks            = 50

	slackTruncationSuffix = "..."
)

// ShowPending implements Presenter.
func (s *Slack) ShowPending(context.Context) error { return nil }

// ShowResults implements Presenter.
func (s *Slack) ShowResults(ctx context.Context, results []entity.SummaryResult) error {
	return s.post(ctx, s.buildResultsPayload(results))
}

// ShowError implements Presenter.
func (s *Slack) ShowError(ctx context.Context, message string) error {
	return s.post(ctx, SlackWebhookPayload{
		Text: "Refresher failed: " + truncate(message, 150, slackTruncationSuffix),
		Blocks: []SlackBlock{{
			Type: "section",
			Text: &SlackTextObject{
				Type: "mrkdwn",
				Text: truncate(":warning: *Refresher failed*\n"+message, maxSectionTextLength, slackTruncationSuffix),
			},
		}},
	})
}

// buildResultsPayload renders one section per note, its title linked to
// the note, followed by a context block with the note path.
func (s *Slack) buildResultsPayload(results []entity.SummaryResult) SlackWebhookPayload {
	if len(results) == 0 {
		return SlackWebhookPayload{
			Text: "No notes to refresh today.",
			Blocks: []SlackBlock{{
				Type: "section",
				Text: &SlackTextObject{Type: "mrkdwn", Text: "No notes to refresh today."},
			}},
		}
	}

	payload := SlackWebhookPayload{
		Text: fmt.Sprintf("Today's refresher: %d notes", len(results)),
		Blocks: []SlackBlock{{
			Type: "header",
			Text: &SlackTextObject{Type: "plain_text", Text: "Today's refresher"},
		}},
	}

	for _, r := range results {
		// Each note takes three blocks.
		if len(payload.Blocks)+3 > maxBlocks {
			break
		}

		summary := r.Summary
		if !r.OK() {
			summary = "_summary unavailable_"
		}
		titleLink := fmt.Sprintf("*<%s|%s>*", NoteURI(s.config.Vault, r.Document.Path), r.Document.Name)
		sectionText := truncate(titleLink+"\n"+summary, maxSectionTextLength, slackTruncationSuffix)

		payload.Blocks = append(payload.Blocks,
			SlackBlock{Type: "section", Text: &SlackTextObject{Type: "mrkdwn", Text: sectionText}},
			SlackBlock{Type: "context", Elements: []SlackTextObject{{
				Type: "mrkdwn",
				Text: truncate(r.Document.Path, maxContextTextLength, slackTruncationSuffix),
			}}},
			SlackBlock{Type: "divider"},
		)
	}
	return payload
}

func (s *Slack) post(ctx context.Context, payload SlackWebhookPayload) error {
	return s.hook.post(ctx, payload, slog.Int("blocks", len(payload.Blocks)))
}

var _ Presenter = (*Slack)(nil)
