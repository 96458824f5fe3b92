package entity

import "context"

// Entry is a node of the vault tree. The set of variants is closed:
// every Entry is either a File or a Folder, and traversal code switches
// on exactly those two.
type Entry interface {
	// Path is the vault-relative, slash separated path of the entry.
	Path() string
	// Name is the last path element, including any extension.
	Name() string
}

// File is a leaf entry whose text can be read.
type File interface {
	Entry
	// Extension is the lower-cased extension without the leading dot.
	Extension() string
	// Read returns the full text content of the file.
	Read(ctx context.Context) (string, error)
}

// Folder is an entry that contains other entries.
type Folder interface {
	Entry
	// Children lists the direct children in lexical order.
	Children(ctx context.Context) ([]Entry, error)
}
