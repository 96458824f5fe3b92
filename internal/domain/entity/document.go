// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental objects of a refresh run such as Document, SelectionCriteria
// and SummaryResult, along with the vault entry variants and domain-specific errors.
package entity

import (
	"strings"
	"time"
)

// Document is a note selected from the vault.
// Its content is not held in memory; it is read through File when the
// summarization pipeline needs it.
type Document struct {
	Path      string
	Name      string
	Extension string
	File      File
}

// NewDocument builds a Document from a vault file.
// Name is the file's basename with its extension removed.
func NewDocument(f File) Document {
	name := f.Name()
	if ext := "." + f.Extension(); len(ext) > 1 && len(name) > len(ext) &&
		strings.EqualFold(name[len(name)-len(ext):], ext) {
		name = name[:len(name)-len(ext)]
	}
	return Document{
		Path:      f.Path(),
		Name:      name,
		Extension: f.Extension(),
		File:      f,
	}
}

// SummaryResult pairs a selected document with the outcome of summarizing it.
// Exactly one of Summary and Err is meaningful: Err is nil on success.
type SummaryResult struct {
	Document Document
	Summary  string
	Err      error
	Duration time.Duration
}

// OK reports whether the document was summarized successfully.
func (r SummaryResult) OK() bool {
	return r.Err == nil
}
