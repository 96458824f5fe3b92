package summarizer

import (
	"context"
	"strings"
	"unicode/utf8"
)

const noopMaxRunes = 280

// NoOp builds a summary locally from the first sentence of the note. It
// needs no credentials and is used for dry runs.
type NoOp struct{}

// NewNoOp creates a new NoOp summarizer.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Summarize returns the first sentence of the first chunk, whitespace
// collapsed and cut to 280 runes. It fails only when ctx is done.
func (n *NoOp) Summarize(ctx context.Context, chunks []string, _ int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(chunks) == 0 {
		return "", ErrEmptyResponse
	}

	s := strings.Join(strings.Fields(chunks[0]), " ")
	if i := sentenceEnd(s); i > 0 {
		s = s[:i]
	}
	if utf8.RuneCountInString(s) > noopMaxRunes {
		s = string([]rune(s)[:noopMaxRunes]) + "…"
	}
	if s == "" {
		return "", ErrEmptyResponse
	}
	return s, nil
}

// sentenceEnd returns the byte offset just past the first sentence terminator, or -1.
func sentenceEnd(s string) int {
	for i, r := range s {
		switch r {
		case '。', '！', '？':
			return i + utf8.RuneLen(r)
		case '.', '!', '?':
			next := i + 1
			if next == len(s) || s[next] == ' ' {
				return next
			}
		}
	}
	return -1
}

var _ Summarizer = (*NoOp)(nil)
