package entity

import (
	"context"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFile struct {
	path string
}

func (f fakeFile) Path() string { return f.path }
func (f fakeFile) Name() string { return path.Base(f.path) }
func (f fakeFile) Extension() string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(f.path), "."))
}
func (f fakeFile) Read(context.Context) (string, error) { return "", nil }

func TestNewDocument(t *testing.T) {
	tests := []struct {
		path     string
		wantName string
		wantExt  string
	}{
		{path: "School/Math/Limits.md", wantName: "Limits", wantExt: "md"},
		{path: "School/README.MD", wantName: "README", wantExt: "md"},
		{path: "School/notes", wantName: "notes", wantExt: ""},
		{path: "School/.md", wantName: ".md", wantExt: "md"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			doc := NewDocument(fakeFile{path: tt.path})
			assert.Equal(t, tt.path, doc.Path)
			assert.Equal(t, tt.wantName, doc.Name)
			assert.Equal(t, tt.wantExt, doc.Extension)
		})
	}
}

func TestNewSelectionCriteria(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		c, err := NewSelectionCriteria("School", "lecture", []string{".MD", " txt "}, []string{"**/drafts/**"}, 3, PolicyFirst)
		require.NoError(t, err)
		assert.Equal(t, []string{"md", "txt"}, c.Extensions)
		assert.NotNil(t, c.Pattern)
	})

	t.Run("empty pattern matches everything", func(t *testing.T) {
		c, err := NewSelectionCriteria("School", "", []string{"md"}, nil, 3, PolicyFirst)
		require.NoError(t, err)
		assert.Nil(t, c.Pattern)
	})

	t.Run("invalid regex", func(t *testing.T) {
		_, err := NewSelectionCriteria("School", "([", nil, nil, 3, PolicyFirst)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("invalid glob", func(t *testing.T) {
		_, err := NewSelectionCriteria("School", "", nil, []string{"[abc"}, 3, PolicyFirst)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("non-positive max", func(t *testing.T) {
		_, err := NewSelectionCriteria("School", "", nil, nil, 0, PolicyFirst)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})
}

func TestSelectionCriteria_Matches(t *testing.T) {
	c, err := NewSelectionCriteria("School", `Math|Physics`, []string{"md"}, []string{"School/**/drafts/**"}, 3, PolicyRandom)
	require.NoError(t, err)

	tests := []struct {
		path string
		want bool
	}{
		{path: "School/Math/Limits.md", want: true},
		{path: "School/Physics/Waves.MD", want: true},
		{path: "School/History/Rome.md", want: false},
		{path: "School/Math/Limits.pdf", want: false},
		{path: "School/Math/drafts/Series.md", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Matches(fakeFile{path: tt.path}))
		})
	}
}

func TestSummaryResult_OK(t *testing.T) {
	assert.True(t, SummaryResult{Summary: "x"}.OK())
	assert.False(t, SummaryResult{Err: ErrNotFound}.OK())
}
