package presenter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"daily-refresher/internal/domain/entity"
	"daily-refresher/internal/resilience/circuitbreaker"
	"daily-refresher/internal/resilience/ratelimit"
	"daily-refresher/internal/resilience/retry"
)

// DiscordConfig contains configuration for Discord webhook delivery.
type DiscordConfig struct {
	WebhookURL string
	Vault      string
	// Timeout bounds one webhook call. Zero means 10s.
	Timeout time.Duration
	// Retry overrides retry.WebhookConfig when MaxAttempts is set.
	Retry retry.Config
}

// Discord posts run results as embeds, one per note. The pending state is
// not posted.
type Discord struct {
	config DiscordConfig
	hook   *webhook
	now    func() time.Time
}

// NewDiscord returns a Discord presenter limited to 0.5 messages per
// second with a burst of 3.
func NewDiscord(config DiscordConfig) *Discord {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.Retry.MaxAttempts == 0 {
		config.Retry = retry.WebhookConfig()
	}
	return &Discord{
		config: config,
		hook: &webhook{
			name:       "discord",
			url:        config.WebhookURL,
			httpClient: &http.Client{Timeout: config.Timeout},
			limiter:    ratelimit.New(0.5, 3),
			breaker:    circuitbreaker.New(circuitbreaker.WebhookConfig("discord-webhook")),
			retry:      config.Retry,
			retryAfter: discordRetryAfter,
		},
		now: time.Now,
	}
}

// DiscordWebhookPayload is the body of a Discord webhook call.
type DiscordWebhookPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []DiscordEmbed `json:"embeds,omitempty"`
}

// DiscordEmbed is one rich embed.
type DiscordEmbed struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	URL         string              `json:"url,omitempty"`
	Color       int                 `json:"color"`
	Footer      *DiscordEmbedFooter `json:"footer,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
}

// DiscordEmbedFooter is an embed's footer line.
type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

// discordErrorResponse is the body of a Discord 429.
type discordErrorResponse struct {
	Message    string  `json:"message"`
	RetryAfter float64 `json:"retry_after"` // seconds
}

const (
	maxEmbedTitleLength       = 256
	maxEmbedDescriptionLength = 4096
	maxContentLength          = 2000
	maxEmbeds                 = 10

	discordBlueColor = 5793266
	discordRedColor  = 15548997
)

// ShowPending implements Presenter.
func (d *Discord) ShowPending(context.Context) error { return nil }

// ShowResults implements Presenter.
func (d *Discord) ShowResults(ctx context.Context, results []entity.SummaryResult) error {
	return d.post(ctx, d.buildResultsPayload(results))
}

// ShowError implements Presenter.
func (d *Discord) ShowError(ctx context.Context, message string) error {
	return d.post(ctx, DiscordWebhookPayload{Embeds: []DiscordEmbed{{
		Title:       "Refresher failed",
		Description: truncate(message, maxEmbedDescriptionLength, "..."),
		Color:       discordRedColor,
		Timestamp:   d.now().UTC().Format(time.RFC3339),
	}}})
}

// buildResultsPayload renders at most ten embeds; a run with more notes
// mentions the rest in the message content.
func (d *Discord) buildResultsPayload(results []entity.SummaryResult) DiscordWebhookPayload {
	if len(results) == 0 {
		return DiscordWebhookPayload{Content: "No notes to refresh today."}
	}

	payload := DiscordWebhookPayload{Content: fmt.Sprintf("**Today's refresher**: %d notes", len(results))}
	if len(results) > maxEmbeds {
		payload.Content += fmt.Sprintf(" (showing %d)", maxEmbeds)
	}
	timestamp := d.now().UTC().Format(time.RFC3339)

	for _, r := range results {
		if len(payload.Embeds) == maxEmbeds {
			break
		}
		embed := DiscordEmbed{
			Title:     truncate(r.Document.Name, maxEmbedTitleLength, "..."),
			URL:       NoteURI(d.config.Vault, r.Document.Path),
			Color:     discordBlueColor,
			Footer:    &DiscordEmbedFooter{Text: r.Document.Path},
			Timestamp: timestamp,
		}
		if r.OK() {
			embed.Description = truncate(r.Summary, maxEmbedDescriptionLength, "...")
		} else {
			embed.Description = "*summary unavailable*"
			embed.Color = discordRedColor
		}
		payload.Embeds = append(payload.Embeds, embed)
	}
	payload.Content = truncate(payload.Content, maxContentLength, "...")
	return payload
}

func (d *Discord) post(ctx context.Context, payload DiscordWebhookPayload) error {
	return d.hook.post(ctx, payload, slog.Int("embeds", len(payload.Embeds)))
}

// discordRetryAfter prefers the JSON retry_after, then the Retry-After
// header, then 5s.
func discordRetryAfter(header http.Header, body []byte) time.Duration {
	var resp discordErrorResponse
	if err := json.Unmarshal(body, &resp); err == nil && resp.RetryAfter > 0 {
		return time.Duration(resp.RetryAfter * float64(time.Second))
	}
	if v := header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 5 * time.Second
}

var _ Presenter = (*Discord)(nil)
