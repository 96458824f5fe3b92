package config

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"

	pkgconfig "daily-refresher/internal/pkg/config"
)

// Store holds the current settings snapshot.
//
// Readers call Snapshot and get a value that never changes underneath them.
// Writers call Update, which builds a new snapshot, validates it, persists
// the file layer and only then publishes it. Env overrides are re-applied
// on every update and are never written to the file.
type Store struct {
	fs      afero.Fs
	path    string
	metrics *pkgconfig.ConfigMetrics

	mu        sync.Mutex // serializes Update
	fileLayer Settings
	current   atomic.Pointer[Settings]
}

// Open loads path (defaults when it does not exist), overlays the
// environment and validates the result. The returned warnings list env
// values that were rejected. metrics may be nil.
func Open(fs afero.Fs, path string, metrics *pkgconfig.ConfigMetrics) (*Store, []string, error) {
	fileLayer, err := LoadFile(fs, path)
	if err != nil {
		return nil, nil, err
	}

	s := &Store{fs: fs, path: path, metrics: metrics, fileLayer: fileLayer}
	effective, warnings := s.effective(fileLayer)
	if err := effective.Validate(); err != nil {
		return nil, warnings, fmt.Errorf("invalid settings: %w", err)
	}
	s.current.Store(&effective)
	return s, warnings, nil
}

// NewStore wraps an already built snapshot. Updates are kept in memory
// only when path is empty.
func NewStore(fs afero.Fs, path string, initial Settings) *Store {
	s := &Store{fs: fs, path: path, fileLayer: initial.Clone()}
	snap := initial.Clone()
	s.current.Store(&snap)
	return s
}

// Path returns the settings file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Snapshot returns the current settings.
func (s *Store) Snapshot() Settings {
	return s.current.Load().Clone()
}

// Update applies fn to a copy of the file layer. The new snapshot replaces
// the current one only if it validates and, when the store has a path, is
// written successfully. Snapshots taken before Update are unaffected.
func (s *Store) Update(fn func(*Settings) error) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.fileLayer.Clone()
	if err := fn(&next); err != nil {
		return Settings{}, err
	}

	effective, warnings := s.effective(next)
	for _, w := range warnings {
		slog.Warn("configuration fallback", slog.String("warning", w))
	}
	if err := effective.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid settings: %w", err)
	}

	if s.path != "" {
		if err := SaveFile(s.fs, s.path, next); err != nil {
			return Settings{}, err
		}
	}

	s.fileLayer = next
	s.current.Store(&effective)

	slog.Info("settings updated", slog.String("path", s.path))
	return effective.Clone(), nil
}

// Set updates a single field addressed by its YAML key, e.g. "selection.max_notes".
func (s *Store) Set(key, value string) (Settings, error) {
	setter, ok := setters[key]
	if !ok {
		return Settings{}, fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(Keys(), ", "))
	}
	return s.Update(func(next *Settings) error {
		if err := setter(next, value); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
		return nil
	})
}

func (s *Store) effective(fileLayer Settings) (Settings, []string) {
	eff := fileLayer.Clone()
	c := &pkgconfig.Collector{Metrics: s.metrics}
	ApplyEnv(&eff, c)
	c.Done()
	return eff, c.Warnings
}

// Keys lists the settings accepted by Store.Set, sorted.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var setters = map[string]func(*Settings, string) error{
	"vault.path":          func(s *Settings, v string) error { s.Vault.Path = v; return nil },
	"vault.name":          func(s *Settings, v string) error { s.Vault.Name = v; return nil },
	"selection.folder":    func(s *Settings, v string) error { s.Selection.Folder = v; return nil },
	"selection.pattern":   func(s *Settings, v string) error { s.Selection.Pattern = v; return nil },
	"selection.policy":    func(s *Settings, v string) error { s.Selection.Policy = v; return nil },
	"selection.max_notes": intSetter(func(s *Settings) *int { return &s.Selection.MaxNotes }),
	"selection.extensions": func(s *Settings, v string) error {
		s.Selection.Extensions = splitList(v)
		return nil
	},
	"selection.exclude": func(s *Settings, v string) error {
		s.Selection.Exclude = splitList(v)
		return nil
	},
	"summarizer.provider":         func(s *Settings, v string) error { s.Summarizer.Provider = v; return nil },
	"summarizer.api_key":          func(s *Settings, v string) error { s.Summarizer.APIKey = v; return nil },
	"summarizer.model":            func(s *Settings, v string) error { s.Summarizer.Model = v; return nil },
	"summarizer.base_url":         func(s *Settings, v string) error { s.Summarizer.BaseURL = v; return nil },
	"summarizer.max_tokens":       intSetter(func(s *Settings) *int { return &s.Summarizer.MaxTokens }),
	"summarizer.timeout":          durationSetter(func(s *Settings) *time.Duration { return &s.Summarizer.Timeout }),
	"pipeline.chunk_size":         intSetter(func(s *Settings) *int { return &s.Pipeline.ChunkSize }),
	"pipeline.chunk_overlap":      intSetter(func(s *Settings) *int { return &s.Pipeline.ChunkOverlap }),
	"pipeline.concurrency":        intSetter(func(s *Settings) *int { return &s.Pipeline.Concurrency }),
	"pipeline.on_failure":         func(s *Settings, v string) error { s.Pipeline.OnFailure = v; return nil },
	"presenter.slack_webhook_url": func(s *Settings, v string) error { s.Presenter.SlackWebhookURL = v; return nil },
	"presenter.discord_webhook_url": func(s *Settings, v string) error {
		s.Presenter.DiscordWebhookURL = v
		return nil
	},
	"pipeline.requests_per_second": func(s *Settings, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", v)
		}
		s.Pipeline.RequestsPerSecond = f
		return nil
	},
}

func intSetter(field func(*Settings) *int) func(*Settings, string) error {
	return func(s *Settings, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid integer %q", v)
		}
		*field(s) = n
		return nil
	}
}

func durationSetter(field func(*Settings) *time.Duration) func(*Settings, string) error {
	return func(s *Settings, v string) error {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid duration %q", v)
		}
		*field(s) = d
		return nil
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
