// Package refresh implements the note refresh use case: scan a vault folder
// for candidate notes, sample a bounded subset, summarize each selected note
// and hand the ordered results to a presenter.
package refresh

import "errors"

// Sentinel errors for refresh operations.
var (
	// ErrAPIKeyMissing indicates that the configured provider needs an API key and none is set.
	// Reported before any scanning happens.
	ErrAPIKeyMissing = errors.New("API key is not configured")

	// ErrDocumentRead indicates that a selected note could not be read from the vault.
	ErrDocumentRead = errors.New("failed to read note")

	// ErrEmptyDocument indicates that a selected note has no text to summarize.
	ErrEmptyDocument = errors.New("note is empty")

	// ErrSummarizationFailed indicates that the summarization service failed for a note,
	// or returned an empty summary.
	ErrSummarizationFailed = errors.New("failed to summarize note")

	// ErrNoSummaries indicates that every selected note failed.
	ErrNoSummaries = errors.New("no note could be summarized")

	// ErrUnknownPolicy indicates an unsupported selection policy.
	ErrUnknownPolicy = errors.New("unknown selection policy")

	// ErrNotRunning indicates a trigger on a service that has not been started or was stopped.
	ErrNotRunning = errors.New("refresh service is not running")
)
