package refresh

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily-refresher/internal/domain/entity"
)

func criteria(t *testing.T, root, pattern string, exclude ...string) entity.SelectionCriteria {
	t.Helper()
	c, err := entity.NewSelectionCriteria(root, pattern, []string{"md"}, exclude, 3, entity.PolicyFirst)
	require.NoError(t, err)
	return c
}

func TestScanner_CollectsMatchingNotesInLexicalOrder(t *testing.T) {
	v := memVault(t, map[string]string{
		"School/b.md":               "b",
		"School/a.md":               "a",
		"School/sub/c.md":           "c",
		"School/x.txt":              "not a note",
		"School/UPPER.MD":           "upper",
		"School/.obsidian/conf.md":  "hidden folder",
		"School/.draft.md":          "hidden file",
		"Other/outside.md":          "outside root",
	})

	docs, err := NewScanner(v).Scan(context.Background(), criteria(t, "School", ""))
	require.NoError(t, err)

	assert.Equal(t, []string{"School/UPPER.MD", "School/a.md", "School/b.md", "School/sub/c.md"}, docPaths(docs))
	assert.Equal(t, "a", docs[1].Name)
}

func TestScanner_MissingRootIsEmpty(t *testing.T) {
	v := memVault(t, map[string]string{"Other/a.md": "a"})

	docs, err := NewScanner(v).Scan(context.Background(), criteria(t, "School", ""))

	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestScanner_NoMatchesIsEmpty(t *testing.T) {
	v := memVault(t, map[string]string{"School/a.txt": "a"})

	docs, err := NewScanner(v).Scan(context.Background(), criteria(t, "School", ""))

	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestScanner_RootIsFile(t *testing.T) {
	v := memVault(t, map[string]string{"School/a.md": "a", "School/b.md": "b"})

	docs, err := NewScanner(v).Scan(context.Background(), criteria(t, "School/a.md", ""))

	require.NoError(t, err)
	assert.Equal(t, []string{"School/a.md"}, docPaths(docs))
}

func TestScanner_VaultRoot(t *testing.T) {
	v := memVault(t, map[string]string{"a.md": "a", "School/b.md": "b"})

	docs, err := NewScanner(v).Scan(context.Background(), criteria(t, "", ""))

	require.NoError(t, err)
	assert.Equal(t, []string{"School/b.md", "a.md"}, docPaths(docs))
}

func TestScanner_PatternAndExclude(t *testing.T) {
	v := memVault(t, map[string]string{
		"School/week1.md":           "1",
		"School/week2.md":           "2",
		"School/summary.md":         "s",
		"School/templates/week0.md": "t",
	})

	docs, err := NewScanner(v).Scan(context.Background(), criteria(t, "School", `week\d`, "School/templates/**"))

	require.NoError(t, err)
	assert.Equal(t, []string{"School/week1.md", "School/week2.md"}, docPaths(docs))
}

func TestScanner_CanceledContext(t *testing.T) {
	v := memVault(t, map[string]string{"School/a.md": "a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewScanner(v).Scan(ctx, criteria(t, "School", ""))

	assert.ErrorIs(t, err, context.Canceled)
}

/* ───────── listing failures ───────── */

type stubFolder struct {
	path     string
	children []entity.Entry
	err      error
}

func (f stubFolder) Path() string { return f.path }
func (f stubFolder) Name() string { return f.path }
func (f stubFolder) Children(context.Context) ([]entity.Entry, error) {
	return f.children, f.err
}

type stubResolver struct {
	root entity.Entry
	err  error
}

func (r stubResolver) Resolve(context.Context, string) (entity.Entry, error) {
	return r.root, r.err
}

func TestScanner_SkipsUnreadableFolders(t *testing.T) {
	root := stubFolder{path: "School", children: []entity.Entry{
		stubFolder{path: "broken", err: errors.New("permission denied")},
		stubFile{path: "School/ok.md", content: "ok"},
	}}

	docs, err := NewScanner(stubResolver{root: root}).Scan(context.Background(), criteria(t, "School", ""))

	require.NoError(t, err)
	assert.Equal(t, []string{"School/ok.md"}, docPaths(docs))
}

func TestScanner_ResolveFailure(t *testing.T) {
	boom := errors.New("disk on fire")

	_, err := NewScanner(stubResolver{err: boom}).Scan(context.Background(), criteria(t, "School", ""))

	assert.ErrorIs(t, err, boom)
}
