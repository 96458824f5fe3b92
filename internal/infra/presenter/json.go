package presenter

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"daily-refresher/internal/domain/entity"
)

// Status values of a JSON report.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Report is the document written by the JSON presenter.
type Report struct {
	Status      string       `json:"status"`
	GeneratedAt time.Time    `json:"generated_at"`
	Notes       []NoteReport `json:"notes,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// NoteReport is one note of a Report.
type NoteReport struct {
	Path       string `json:"path"`
	Name       string `json:"name"`
	Link       string `json:"link"`
	Summary    string `json:"summary,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// JSON writes one Report per run. The pending state produces no output.
type JSON struct {
	out   io.Writer
	vault string
	now   func() time.Time
}

// NewJSON returns a JSON presenter writing to out. vault names the vault in links.
func NewJSON(out io.Writer, vault string) *JSON {
	return &JSON{out: out, vault: vault, now: time.Now}
}

// ShowPending implements Presenter.
func (j *JSON) ShowPending(context.Context) error { return nil }

// ShowResults implements Presenter.
func (j *JSON) ShowResults(_ context.Context, results []entity.SummaryResult) error {
	notes := make([]NoteReport, len(results))
	for i, r := range results {
		notes[i] = NoteReport{
			Path:       r.Document.Path,
			Name:       r.Document.Name,
			Link:       NoteURI(j.vault, r.Document.Path),
			Summary:    r.Summary,
			DurationMS: r.Duration.Milliseconds(),
		}
		if r.Err != nil {
			notes[i].Error = r.Err.Error()
		}
	}
	return j.write(Report{Status: StatusOK, Notes: notes})
}

// ShowError implements Presenter.
func (j *JSON) ShowError(_ context.Context, message string) error {
	return j.write(Report{Status: StatusError, Error: message})
}

func (j *JSON) write(r Report) error {
	r.GeneratedAt = j.now().UTC()
	enc := json.NewEncoder(j.out)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

var _ Presenter = (*JSON)(nil)
