package presenter

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"daily-refresher/internal/domain/entity"
)

// TerminalOptions configures a Terminal presenter.
type TerminalOptions struct {
	// Vault names the vault in note links.
	Vault string
	// Hyperlinks turns note titles into OSC 8 links to the note.
	Hyperlinks bool
	// Width wraps summaries; zero disables wrapping.
	Width int
}

// Terminal writes styled, human readable output.
type Terminal struct {
	out  io.Writer
	opts TerminalOptions

	title   lipgloss.Style
	heading lipgloss.Style
	path    lipgloss.Style
	body    lipgloss.Style
	failed  lipgloss.Style
	errorS  lipgloss.Style
	pending lipgloss.Style
}

// NewTerminal returns a Terminal writing to out. Colors follow the
// capabilities of out; plain writers get plain text.
func NewTerminal(out io.Writer, opts TerminalOptions) *Terminal {
	r := lipgloss.NewRenderer(out)
	body := r.NewStyle().PaddingLeft(2)
	if opts.Width > 0 {
		body = body.Width(opts.Width)
	}
	return &Terminal{
		out:     out,
		opts:    opts,
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		heading: r.NewStyle().Bold(true).Underline(true),
		path:    r.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true),
		body:    body,
		failed:  r.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("#FF6B6B")).Italic(true),
		errorS:  r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		pending: r.NewStyle().Foreground(lipgloss.Color("#888888")),
	}
}

// ShowPending implements Presenter.
func (t *Terminal) ShowPending(context.Context) error {
	_, err := fmt.Fprintln(t.out, t.pending.Render("⏳ Summarizing your notes…"))
	return err
}

// ShowResults implements Presenter.
func (t *Terminal) ShowResults(_ context.Context, results []entity.SummaryResult) error {
	var b strings.Builder
	if len(results) == 0 {
		b.WriteString(t.pending.Render("No notes to refresh today."))
		b.WriteString("\n")
		_, err := io.WriteString(t.out, b.String())
		return err
	}

	b.WriteString(t.heading.Render("Today's refresher"))
	b.WriteString("\n\n")
	for _, r := range results {
		name := t.title.Render(r.Document.Name)
		if t.opts.Hyperlinks {
			name = hyperlink(NoteURI(t.opts.Vault, r.Document.Path), name)
		}
		b.WriteString(name)
		b.WriteString(" ")
		b.WriteString(t.path.Render(r.Document.Path))
		b.WriteString("\n")

		if r.OK() {
			b.WriteString(t.body.Render(r.Summary))
		} else {
			b.WriteString(t.failed.Render("summary unavailable: " + r.Err.Error()))
		}
		b.WriteString("\n\n")
	}

	_, err := io.WriteString(t.out, b.String())
	return err
}

// ShowError implements Presenter.
func (t *Terminal) ShowError(_ context.Context, message string) error {
	_, err := fmt.Fprintln(t.out, t.errorS.Render("✗ "+message))
	return err
}

var _ Presenter = (*Terminal)(nil)
