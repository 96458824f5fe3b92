package entity

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// SelectionPolicy controls how documents are picked from the scanned candidates.
type SelectionPolicy string

const (
	// PolicyFirst picks the first N candidates in scan order.
	PolicyFirst SelectionPolicy = "first"
	// PolicyRandom picks N distinct candidates uniformly at random.
	PolicyRandom SelectionPolicy = "random"
)

// SelectionCriteria is the rule set that decides which notes are eligible and how many are chosen.
type SelectionCriteria struct {
	Root       string
	Extensions []string
	Pattern    *regexp.Regexp
	Exclude    []string
	MaxCount   int
	Policy     SelectionPolicy
}

// NewSelectionCriteria compiles pattern and validates the exclude globs.
// An empty pattern matches every path.
func NewSelectionCriteria(root, pattern string, extensions, exclude []string, maxCount int, policy SelectionPolicy) (SelectionCriteria, error) {
	c := SelectionCriteria{
		Root:       root,
		Extensions: normalizeExtensions(extensions),
		Exclude:    exclude,
		MaxCount:   maxCount,
		Policy:     policy,
	}

	if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return SelectionCriteria{}, &ValidationError{
				Field:   "pattern",
				Message: fmt.Sprintf("invalid regular expression %q: %v", pattern, err),
			}
		}
		c.Pattern = re
	}

	for _, glob := range exclude {
		if !doublestar.ValidatePattern(glob) {
			return SelectionCriteria{}, &ValidationError{
				Field:   "exclude",
				Message: fmt.Sprintf("invalid glob %q", glob),
			}
		}
	}

	if maxCount <= 0 {
		return SelectionCriteria{}, &ValidationError{Field: "max_notes", Message: "must be positive"}
	}

	return c, nil
}

// Matches reports whether a vault file is a selection candidate.
func (c SelectionCriteria) Matches(f File) bool {
	if len(c.Extensions) > 0 && !containsFold(c.Extensions, f.Extension()) {
		return false
	}
	if c.Pattern != nil && !c.Pattern.MatchString(f.Path()) {
		return false
	}
	for _, glob := range c.Exclude {
		// Patterns were validated in NewSelectionCriteria, so Match cannot fail here.
		if ok, _ := doublestar.Match(glob, f.Path()); ok {
			return false
		}
	}
	return true
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
