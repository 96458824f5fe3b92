package refresh

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"daily-refresher/internal/config"
	"daily-refresher/internal/domain/entity"
	"daily-refresher/internal/infra/vault"
)

/* ───────── vault fixtures ───────── */

func memVault(t *testing.T, files map[string]string) *vault.Vault {
	t.Helper()
	fs := afero.NewMemMapFs()
	for p, content := range files {
		require.NoError(t, afero.WriteFile(fs, "/"+p, []byte(content), 0o644))
	}
	return vault.New(fs)
}

// stubFile is an entity.File with canned content or a read error.
type stubFile struct {
	path    string
	content string
	err     error
}

func (f stubFile) Path() string      { return f.path }
func (f stubFile) Name() string      { return f.path[strings.LastIndex(f.path, "/")+1:] }
func (f stubFile) Extension() string { return "md" }
func (f stubFile) Read(context.Context) (string, error) {
	return f.content, f.err
}

func stubDoc(path, content string) entity.Document {
	return entity.NewDocument(stubFile{path: path, content: content})
}

/* ───────── summarizer fakes ───────── */

type summarizeFunc func(ctx context.Context, chunks []string, maxTokens int) (string, error)

// fakeSummarizer records calls and delegates to fn; nil fn echoes the first chunk.
type fakeSummarizer struct {
	mu    sync.Mutex
	calls [][]string
	fn    summarizeFunc
}

func (f *fakeSummarizer) Summarize(ctx context.Context, chunks []string, maxTokens int) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, chunks)
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(ctx, chunks, maxTokens)
	}
	return fmt.Sprintf("  summary of %s  ", strings.TrimSpace(chunks[0])), nil
}

func (f *fakeSummarizer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

/* ───────── presenter fake ───────── */

type presenterCall struct {
	kind    string
	message string
	results []entity.SummaryResult
}

type recordingPresenter struct {
	mu    sync.Mutex
	calls []presenterCall
}

func (p *recordingPresenter) ShowPending(context.Context) error {
	p.record(presenterCall{kind: "pending"})
	return nil
}

func (p *recordingPresenter) ShowResults(_ context.Context, results []entity.SummaryResult) error {
	p.record(presenterCall{kind: "results", results: results})
	return nil
}

func (p *recordingPresenter) ShowError(_ context.Context, message string) error {
	p.record(presenterCall{kind: "error", message: message})
	return nil
}

func (p *recordingPresenter) record(c presenterCall) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, c)
}

func (p *recordingPresenter) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.calls))
	for i, c := range p.calls {
		out[i] = c.kind
	}
	return out
}

func (p *recordingPresenter) last() presenterCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[len(p.calls)-1]
}

/* ───────── settings ───────── */

func testSettings() config.Settings {
	s := config.Defaults()
	s.Selection.Folder = "School"
	s.Selection.Policy = string(entity.PolicyFirst)
	s.Summarizer.APIKey = "test-key"
	return s
}

func docPaths(docs []entity.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Path
	}
	return out
}

func resultPaths(results []entity.SummaryResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Document.Path
	}
	return out
}
