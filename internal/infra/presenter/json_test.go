package presenter

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedJSON(buf *bytes.Buffer) *JSON {
	j := NewJSON(buf, "Brain")
	j.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	return j
}

func TestJSON_ShowResults(t *testing.T) {
	var buf bytes.Buffer
	j := fixedJSON(&buf)

	require.NoError(t, j.ShowPending(context.Background()))
	assert.Zero(t, buf.Len(), "pending writes nothing")

	require.NoError(t, j.ShowResults(context.Background(), sampleResults()))

	var got Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	want := Report{
		Status:      StatusOK,
		GeneratedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Notes: []NoteReport{
			{
				Path:       "School/Biology/Cells.md",
				Name:       "Cells",
				Link:       "obsidian://open?vault=Brain&file=School%2FBiology%2FCells.md",
				Summary:    "Cells are the unit of life.",
				DurationMS: 1500,
			},
			{
				Path:       "School/Math/Limits.md",
				Name:       "Limits",
				Link:       "obsidian://open?vault=Brain&file=School%2FMath%2FLimits.md",
				Error:      "summarization failed",
				DurationMS: 1500,
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestJSON_ShowError(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, fixedJSON(&buf).ShowError(context.Background(), "No note could be summarized"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "error", got["status"])
	assert.Equal(t, "No note could be summarized", got["error"])
	assert.NotContains(t, got, "notes")
}
