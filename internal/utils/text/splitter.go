package text

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Split cuts content into chunks of at most size runes where each chunk
// shares exactly overlap runes with the one before it.
//
// Content of at most size runes yields a single chunk (the empty string
// yields one empty chunk). Longer content yields ceil((L-overlap)/(size-overlap))
// chunks. Dropping the first overlap runes of every chunk but the first and
// concatenating reconstructs the content.
//
// Invalid UTF-8 byte runs are replaced with U+FFFD first, so the
// reconstruction equals strings.ToValidUTF8(content, "\uFFFD").
//
// Splitting is length based; it does not look at words or paragraphs, so the
// same content always produces the same chunks.
func Split(content string, size, overlap int) ([]string, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap %d must be in [0, %d)", overlap, size)
	}

	content = strings.ToValidUTF8(content, string(utf8.RuneError))
	runes := []rune(content)
	if len(runes) <= size {
		return []string{content}, nil
	}

	step := size - overlap
	chunks := make([]string, 0, (len(runes)-overlap+step-1)/step)
	for start := 0; ; start += step {
		end := start + size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks, nil
}

// Join reverses Split: it concatenates chunks, dropping the overlap prefix of every chunk after the first.
func Join(chunks []string, overlap int) string {
	if len(chunks) == 0 {
		return ""
	}
	out := []rune(chunks[0])
	for _, c := range chunks[1:] {
		r := []rune(c)
		if len(r) > overlap {
			out = append(out, r[overlap:]...)
		}
	}
	return string(out)
}
