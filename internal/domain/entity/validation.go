package entity

import (
	"fmt"
	"net/url"
)

// maxURLLength defines the maximum allowed length for URLs.
const maxURLLength = 2048

// ValidateWebhookURL validates the format of an outgoing webhook URL.
// It checks that the URL is well-formed, uses the HTTPS scheme, and has a host.
// When allowedHost is non-empty the URL host must equal it.
// Returns a ValidationError if the URL is invalid or empty.
func ValidateWebhookURL(rawURL, allowedHost string) error {
	if rawURL == "" {
		return &ValidationError{Field: "webhook_url", Message: "URL is required"}
	}

	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   "webhook_url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}

	if parsedURL.Scheme != "https" {
		return &ValidationError{Field: "webhook_url", Message: "URL must use https scheme"}
	}

	if parsedURL.Host == "" {
		return &ValidationError{Field: "webhook_url", Message: "URL must have a valid host"}
	}

	if allowedHost != "" && parsedURL.Host != allowedHost {
		return &ValidationError{
			Field:   "webhook_url",
			Message: fmt.Sprintf("URL host must be %s", allowedHost),
		}
	}

	return nil
}
