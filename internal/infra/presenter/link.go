package presenter

import (
	"net/url"
	"strings"
)

// NoteURI returns the obsidian:// URI that opens path in vault.
func NoteURI(vault, path string) string {
	return "obsidian://open?vault=" + escape(vault) + "&file=" + escape(path)
}

// escape percent-encodes a query value, spaces included, the way the
// obsidian:// handler expects.
func escape(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}

// hyperlink wraps text in an OSC 8 terminal hyperlink to uri.
func hyperlink(uri, text string) string {
	return "\x1b]8;;" + uri + "\x1b\\" + text + "\x1b]8;;\x1b\\"
}

// truncate cuts s to at most limit runes, ending with suffix when cut.
func truncate(s string, limit int, suffix string) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	keep := limit - len([]rune(suffix))
	if keep < 0 {
		keep = 0
	}
	return string(r[:keep]) + suffix
}
