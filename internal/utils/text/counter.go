// Package text provides utilities for text processing and analysis.
// It includes rune-aware counting, truncation and the fixed-window splitter
// used to cut notes into overlapping chunks before summarization.
package text

import "unicode/utf8"

// CountRunes counts the number of Unicode characters (runes) in the given text.
// Multi-byte characters such as accented letters, CJK and emoji count as one.
//
// Examples:
//
//	CountRunes("hello")     // returns 5
//	CountRunes("héllo")     // returns 5
//	CountRunes("")          // returns 0
func CountRunes(text string) int {
	return utf8.RuneCountInString(text)
}

// Truncate shortens text to at most maxRunes runes, appending suffix when it cuts.
// The suffix counts towards maxRunes. Truncation never splits a rune.
func Truncate(text string, maxRunes int, suffix string) string {
	if maxRunes <= 0 {
		return ""
	}
	if CountRunes(text) <= maxRunes {
		return text
	}

	keep := maxRunes - CountRunes(suffix)
	if keep <= 0 {
		return string([]rune(suffix)[:maxRunes])
	}
	return string([]rune(text)[:keep]) + suffix
}
