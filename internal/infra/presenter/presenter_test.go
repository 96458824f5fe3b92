package presenter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily-refresher/internal/domain/entity"
)

type stubFile struct{ path string }

func (f stubFile) Path() string      { return f.path }
func (f stubFile) Name() string      { return f.path[lastSlash(f.path)+1:] }
func (f stubFile) Extension() string { return "md" }
func (f stubFile) Read(context.Context) (string, error) {
	return "", nil
}

func lastSlash(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			return i
		}
	}
	return -1
}

func result(path, summary string, err error) entity.SummaryResult {
	return entity.SummaryResult{
		Document: entity.NewDocument(stubFile{path: path}),
		Summary:  summary,
		Err:      err,
		Duration: 1500 * time.Millisecond,
	}
}

func sampleResults() []entity.SummaryResult {
	return []entity.SummaryResult{
		result("School/Biology/Cells.md", "Cells are the unit of life.", nil),
		result("School/Math/Limits.md", "", errors.New("summarization failed")),
	}
}

type failingPresenter struct{ err error }

func (f failingPresenter) ShowPending(context.Context) error { return f.err }
func (f failingPresenter) ShowResults(context.Context, []entity.SummaryResult) error {
	return f.err
}
func (f failingPresenter) ShowError(context.Context, string) error { return f.err }

func TestMulti_FansOutInOrder(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	m := Multi{a, b}
	ctx := context.Background()

	require.NoError(t, m.ShowPending(ctx))
	require.NoError(t, m.ShowResults(ctx, sampleResults()))
	require.NoError(t, m.ShowError(ctx, "boom"))

	for _, r := range []*Recorder{a, b} {
		assert.Equal(t, []string{CallPending, CallResults, CallError}, r.Kinds())
	}
}

func TestMulti_CallsAllAndJoinsErrors(t *testing.T) {
	errA, errB := errors.New("a failed"), errors.New("b failed")
	rec := &Recorder{}
	m := Multi{failingPresenter{errA}, rec, failingPresenter{errB}}

	err := m.ShowError(context.Background(), "boom")

	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Equal(t, []string{CallError}, rec.Kinds())
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	ctx := context.Background()
	_, ok := r.Last()
	assert.False(t, ok)

	results := sampleResults()
	require.NoError(t, r.ShowPending(ctx))
	require.NoError(t, r.ShowResults(ctx, results))

	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, CallResults, last.Kind)
	if diff := cmp.Diff(results, last.Results, cmpopts.EquateErrors(), cmp.AllowUnexported(stubFile{})); diff != "" {
		t.Errorf("recorded results mismatch (-want +got):\n%s", diff)
	}

	// The recorder keeps its own copy.
	results[0].Summary = "changed"
	last, _ = r.Last()
	assert.Equal(t, "Cells are the unit of life.", last.Results[0].Summary)

	r.Reset()
	assert.Empty(t, r.Calls())
}

func TestNoteURI(t *testing.T) {
	tests := []struct {
		vault, path, want string
	}{
		{"Brain", "School/Cells.md", "obsidian://open?vault=Brain&file=School%2FCells.md"},
		{"My Vault", "School/Week 1.md", "obsidian://open?vault=My%20Vault&file=School%2FWeek%201.md"},
		{"v", "a&b=c.md", "obsidian://open?vault=v&file=a%26b%3Dc.md"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NoteURI(tt.vault, tt.path))
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10, "..."))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10, "..."))
	assert.Equal(t, "日本...", truncate("日本語のテキスト", 5, "..."))
	assert.Equal(t, "..", truncate("abcdef", 2, ".."))
}
