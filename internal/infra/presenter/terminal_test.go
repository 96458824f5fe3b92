package presenter

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily-refresher/internal/domain/entity"
)

func TestTerminal_ShowResults(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, TerminalOptions{Vault: "Brain"})

	require.NoError(t, term.ShowResults(context.Background(), sampleResults()))

	out := buf.String()
	assert.Contains(t, out, "Today's refresher")
	assert.Contains(t, out, "Cells")
	assert.Contains(t, out, "School/Biology/Cells.md")
	assert.Contains(t, out, "Cells are the unit of life.")
	assert.Contains(t, out, "summary unavailable: summarization failed")
	assert.Less(t, strings.Index(out, "Cells"), strings.Index(out, "Limits"), "results keep their order")
	assert.NotContains(t, out, "\x1b]8;;", "no hyperlinks unless enabled")
}

func TestTerminal_Hyperlinks(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, TerminalOptions{Vault: "Brain", Hyperlinks: true})

	require.NoError(t, term.ShowResults(context.Background(), sampleResults()[:1]))

	want := "\x1b]8;;obsidian://open?vault=Brain&file=School%2FBiology%2FCells.md\x1b\\"
	assert.Contains(t, buf.String(), want)
}

func TestTerminal_EmptyPendingAndError(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, TerminalOptions{})
	ctx := context.Background()

	require.NoError(t, term.ShowPending(ctx))
	require.NoError(t, term.ShowResults(ctx, []entity.SummaryResult{}))
	require.NoError(t, term.ShowError(ctx, "OpenAI API key is not configured."))

	out := buf.String()
	assert.Contains(t, out, "Summarizing your notes")
	assert.Contains(t, out, "No notes to refresh today.")
	assert.Contains(t, out, "✗ OpenAI API key is not configured.")
}

func TestTerminal_Wraps(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, TerminalOptions{Width: 20})
	long := strings.Repeat("word ", 20)

	require.NoError(t, term.ShowResults(context.Background(),
		[]entity.SummaryResult{result("School/a.md", strings.TrimSpace(long), nil)}))

	for _, line := range strings.Split(buf.String(), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 40)
	}
}
