// Package vault exposes a directory tree of notes as entity.Entry values.
// It is backed by an afero.Fs so the same code serves the OS file system
// in production and an in-memory file system in tests.
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"daily-refresher/internal/domain/entity"
)

// maxNoteSize bounds how much of a single note is read into memory.
const maxNoteSize = 4 * 1024 * 1024

// ErrNoteTooLarge is returned by File.Read for notes above maxNoteSize.
var ErrNoteTooLarge = errors.New("note exceeds maximum size")

// Vault resolves vault-relative paths to entries.
type Vault struct {
	fs afero.Fs
}

// New returns a Vault over fs. Paths given to the vault are relative to the root of fs.
func New(fs afero.Fs) *Vault {
	return &Vault{fs: fs}
}

// NewOS returns a Vault rooted at dir on the OS file system.
func NewOS(dir string) *Vault {
	return New(afero.NewBasePathFs(afero.NewOsFs(), dir))
}

// Resolve returns the entry at p. It returns an error wrapping entity.ErrNotFound
// when nothing exists at p.
func (v *Vault) Resolve(ctx context.Context, p string) (entity.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clean := cleanPath(p)
	info, err := v.fs.Stat(fsPath(clean))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("resolve %q: %w", clean, entity.ErrNotFound)
		}
		return nil, fmt.Errorf("resolve %q: %w", clean, err)
	}

	return v.entry(clean, info), nil
}

func (v *Vault) entry(p string, info os.FileInfo) entity.Entry {
	if info.IsDir() {
		return &Folder{vault: v, path: p}
	}
	return &File{vault: v, path: p, size: info.Size()}
}

// cleanPath normalizes p to a slash separated path without leading slash.
// The vault root is "".
func cleanPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean("/" + p)
	return strings.TrimPrefix(p, "/")
}

func fsPath(p string) string {
	if p == "" {
		return "/"
	}
	return "/" + p
}

// File is a note or any other non-directory entry.
type File struct {
	vault *Vault
	path  string
	size  int64
}

// Path implements entity.Entry.
func (f *File) Path() string { return f.path }

// Name implements entity.Entry.
func (f *File) Name() string { return path.Base(f.path) }

// Extension implements entity.File.
func (f *File) Extension() string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(f.path), "."))
}

// Read implements entity.File.
func (f *File) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.size > maxNoteSize {
		return "", fmt.Errorf("read %q (%d bytes): %w", f.path, f.size, ErrNoteTooLarge)
	}

	data, err := afero.ReadFile(f.vault.fs, fsPath(f.path))
	if err != nil {
		return "", fmt.Errorf("read %q: %w", f.path, err)
	}
	return string(data), nil
}

// Folder is a directory entry.
type Folder struct {
	vault *Vault
	path  string
}

// Path implements entity.Entry.
func (d *Folder) Path() string { return d.path }

// Name implements entity.Entry.
func (d *Folder) Name() string {
	if d.path == "" {
		return ""
	}
	return path.Base(d.path)
}

// Children implements entity.Folder.
func (d *Folder) Children(ctx context.Context) ([]entity.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	infos, err := afero.ReadDir(d.vault.fs, fsPath(d.path))
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", d.path, err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	children := make([]entity.Entry, 0, len(infos))
	for _, info := range infos {
		children = append(children, d.vault.entry(path.Join(d.path, info.Name()), info))
	}
	return children, nil
}

var (
	_ entity.File   = (*File)(nil)
	_ entity.Folder = (*Folder)(nil)
)
