// Package config holds the refresher settings snapshot and the store that
// produces new snapshots when settings change.
//
// Settings are layered: built-in defaults, then the YAML file, then
// environment variables. Env values are loaded fail-open, so an invalid
// value is reported as a warning and the lower layer is kept.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"daily-refresher/internal/domain/entity"
	pkgconfig "daily-refresher/internal/pkg/config"
)

// Summarizer providers.
const (
	ProviderOpenAI    = "openai"
	ProviderClaude    = "claude"
	ProviderLangChain = "langchain"
	ProviderNoop      = "noop"
)

// Failure policies for the summarization pipeline.
const (
	OnFailureContinue = "continue"
	OnFailureAbort    = "abort"
)

// DefaultFile is the settings file used when --config is not given.
const DefaultFile = "refresher.yaml"

const (
	slackWebhookHost   = "hooks.slack.com"
	discordWebhookHost = "discord.com"
)

// Settings is one immutable snapshot of the refresher configuration.
// Snapshots are passed by value; use Clone before mutating slices.
type Settings struct {
	Vault      VaultSettings      `yaml:"vault"`
	Selection  SelectionSettings  `yaml:"selection"`
	Summarizer SummarizerSettings `yaml:"summarizer"`
	Pipeline   PipelineSettings   `yaml:"pipeline"`
	Presenter  PresenterSettings  `yaml:"presenter"`
}

// VaultSettings locates the notes.
type VaultSettings struct {
	// Path is the vault root on the OS file system.
	Path string `yaml:"path"`
	// Name is used to build obsidian:// links. Defaults to the basename of Path.
	Name string `yaml:"name,omitempty"`
}

// SelectionSettings decide which notes are eligible and how many are picked.
type SelectionSettings struct {
	Folder     string   `yaml:"folder"`
	Pattern    string   `yaml:"pattern,omitempty"`
	Extensions []string `yaml:"extensions"`
	Exclude    []string `yaml:"exclude,omitempty"`
	MaxNotes   int      `yaml:"max_notes"`
	Policy     string   `yaml:"policy"`
}

// SummarizerSettings select and tune the summarization backend.
type SummarizerSettings struct {
	Provider  string        `yaml:"provider"`
	APIKey    string        `yaml:"api_key,omitempty"`
	Model     string        `yaml:"model,omitempty"`
	BaseURL   string        `yaml:"base_url,omitempty"`
	MaxTokens int           `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"`
}

// PipelineSettings control chunking and per-run parallelism.
type PipelineSettings struct {
	ChunkSize         int     `yaml:"chunk_size"`
	ChunkOverlap      int     `yaml:"chunk_overlap"`
	Concurrency       int     `yaml:"concurrency"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	OnFailure         string  `yaml:"on_failure"`
}

// PresenterSettings configure optional outputs beyond the terminal.
type PresenterSettings struct {
	SlackWebhookURL   string `yaml:"slack_webhook_url,omitempty"`
	DiscordWebhookURL string `yaml:"discord_webhook_url,omitempty"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Vault: VaultSettings{Path: "."},
		Selection: SelectionSettings{
			Folder:     "School",
			Extensions: []string{"md"},
			MaxNotes:   3,
			Policy:     string(entity.PolicyRandom),
		},
		Summarizer: SummarizerSettings{
			Provider:  ProviderOpenAI,
			MaxTokens: 256,
			Timeout:   60 * time.Second,
		},
		Pipeline: PipelineSettings{
			ChunkSize:    1000,
			ChunkOverlap: 200,
			Concurrency:  3,
			OnFailure:    OnFailureContinue,
		},
	}
}

// Clone returns a deep copy of s.
func (s Settings) Clone() Settings {
	out := s
	out.Selection.Extensions = slices.Clone(s.Selection.Extensions)
	out.Selection.Exclude = slices.Clone(s.Selection.Exclude)
	return out
}

// Validate checks every field and returns all problems joined together.
// Each problem is an *entity.ValidationError. A missing API key is not a
// validation error; the refresh service reports it when a run starts.
func (s Settings) Validate() error {
	var errs []error
	add := func(field, msg string) {
		errs = append(errs, &entity.ValidationError{Field: field, Message: msg})
	}
	check := func(field string, err error) {
		if err != nil {
			add(field, err.Error())
		}
	}

	if strings.TrimSpace(s.Vault.Path) == "" {
		add("vault.path", "cannot be empty")
	}

	check("selection.max_notes", pkgconfig.ValidateIntRange(s.Selection.MaxNotes, 1, 50))
	check("selection.policy", pkgconfig.OneOf(string(entity.PolicyFirst), string(entity.PolicyRandom))(s.Selection.Policy))
	if len(s.Selection.Extensions) == 0 {
		add("selection.extensions", "at least one extension is required")
	}
	if _, err := s.Criteria(); err != nil {
		var ve *entity.ValidationError
		if errors.As(err, &ve) && ve.Field != "max_notes" {
			add("selection."+ve.Field, ve.Message)
		}
	}

	check("summarizer.provider", pkgconfig.OneOf(ProviderOpenAI, ProviderClaude, ProviderLangChain, ProviderNoop)(s.Summarizer.Provider))
	check("summarizer.max_tokens", pkgconfig.ValidateIntRange(s.Summarizer.MaxTokens, 16, 4096))
	check("summarizer.timeout", pkgconfig.ValidatePositiveDuration(s.Summarizer.Timeout))

	if s.Pipeline.ChunkSize <= 0 {
		add("pipeline.chunk_size", "must be positive")
	}
	if s.Pipeline.ChunkOverlap < 0 || s.Pipeline.ChunkOverlap >= s.Pipeline.ChunkSize {
		add("pipeline.chunk_overlap", fmt.Sprintf("must be in [0, %d)", s.Pipeline.ChunkSize))
	}
	check("pipeline.concurrency", pkgconfig.ValidateIntRange(s.Pipeline.Concurrency, 1, 16))
	if s.Pipeline.RequestsPerSecond < 0 {
		add("pipeline.requests_per_second", "cannot be negative")
	}
	check("pipeline.on_failure", pkgconfig.OneOf(OnFailureContinue, OnFailureAbort)(s.Pipeline.OnFailure))

	if s.Presenter.SlackWebhookURL != "" {
		check("presenter.slack_webhook_url", entity.ValidateWebhookURL(s.Presenter.SlackWebhookURL, slackWebhookHost))
	}
	if s.Presenter.DiscordWebhookURL != "" {
		check("presenter.discord_webhook_url", entity.ValidateWebhookURL(s.Presenter.DiscordWebhookURL, discordWebhookHost))
	}

	return errors.Join(errs...)
}

// Criteria builds the selection criteria for this snapshot.
func (s Settings) Criteria() (entity.SelectionCriteria, error) {
	return entity.NewSelectionCriteria(
		s.Selection.Folder,
		s.Selection.Pattern,
		s.Selection.Extensions,
		s.Selection.Exclude,
		s.Selection.MaxNotes,
		entity.SelectionPolicy(s.Selection.Policy),
	)
}

// VaultName returns the configured vault name or the basename of the vault path.
func (s Settings) VaultName() string {
	if s.Vault.Name != "" {
		return s.Vault.Name
	}
	abs, err := filepath.Abs(s.Vault.Path)
	if err != nil {
		return filepath.Base(s.Vault.Path)
	}
	return filepath.Base(abs)
}

// Redacted returns a copy safe to print: the API key keeps only its last
// four characters and webhook tokens are masked.
func (s Settings) Redacted() Settings {
	out := s.Clone()
	out.Summarizer.APIKey = maskSecret(s.Summarizer.APIKey)
	if out.Presenter.SlackWebhookURL != "" {
		out.Presenter.SlackWebhookURL = "https://" + slackWebhookHost + "/services/****"
	}
	if out.Presenter.DiscordWebhookURL != "" {
		out.Presenter.DiscordWebhookURL = "https://" + discordWebhookHost + "/api/webhooks/****"
	}
	return out
}

// NeedsAPIKey reports whether the provider calls a hosted API.
func (s SummarizerSettings) NeedsAPIKey() bool {
	return s.Provider != ProviderNoop
}

// APIKeyEnv returns the environment variable holding the provider's credential.
func (s SummarizerSettings) APIKeyEnv() string {
	if s.Provider == ProviderClaude {
		return "ANTHROPIC_API_KEY"
	}
	return "OPENAI_API_KEY"
}

// ProviderLabel is the human-readable provider name used in messages.
func (s SummarizerSettings) ProviderLabel() string {
	switch s.Provider {
	case ProviderClaude:
		return "Anthropic"
	case ProviderLangChain:
		return "LangChain (OpenAI-compatible)"
	case ProviderNoop:
		return "No-op"
	default:
		return "OpenAI"
	}
}

func maskSecret(v string) string {
	if v == "" {
		return ""
	}
	if len(v) <= 4 {
		return "****"
	}
	return "****" + v[len(v)-4:]
}

// LoadFile reads a YAML settings file on top of Defaults. A missing file is
// not an error and yields the defaults.
func LoadFile(fs afero.Fs, path string) (Settings, error) {
	s := Defaults()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return Settings{}, fmt.Errorf("read settings file: %w", err)
	}

	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings file %s: %w", path, err)
	}
	return s, nil
}

// SaveFile writes s as YAML to path.
func SaveFile(fs afero.Fs, path string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings directory: %w", err)
		}
	}
	if err := afero.WriteFile(fs, path, data, 0o600); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}

// ApplyEnv overlays environment variables onto s. Rejected values are
// recorded on c and leave the existing value in place.
func ApplyEnv(s *Settings, c *pkgconfig.Collector) {
	s.Vault.Path = pkgconfig.LoadEnvString("REFRESHER_VAULT_PATH", s.Vault.Path)
	s.Vault.Name = pkgconfig.LoadEnvString("REFRESHER_VAULT_NAME", s.Vault.Name)
	s.Selection.Folder = pkgconfig.LoadEnvString("REFRESHER_FOLDER", s.Selection.Folder)
	s.Selection.Pattern = pkgconfig.LoadEnvString("REFRESHER_PATTERN", s.Selection.Pattern)
	s.Selection.MaxNotes = pkgconfig.Track(c, "max_notes",
		pkgconfig.LoadEnvInt("REFRESHER_MAX_NOTES", s.Selection.MaxNotes, pkgconfig.IntRange(1, 50)))
	s.Selection.Policy = pkgconfig.Track(c, "policy",
		pkgconfig.LoadEnvValidated("REFRESHER_POLICY", s.Selection.Policy,
			pkgconfig.OneOf(string(entity.PolicyFirst), string(entity.PolicyRandom))))

	s.Summarizer.Provider = pkgconfig.Track(c, "summarizer_type",
		pkgconfig.LoadEnvValidated("SUMMARIZER_TYPE", s.Summarizer.Provider,
			pkgconfig.OneOf(ProviderOpenAI, ProviderClaude, ProviderLangChain, ProviderNoop)))
	s.Summarizer.APIKey = pkgconfig.LoadEnvString(s.Summarizer.APIKeyEnv(), s.Summarizer.APIKey)
	s.Summarizer.Model = pkgconfig.LoadEnvString("SUMMARIZER_MODEL", s.Summarizer.Model)
	s.Summarizer.BaseURL = pkgconfig.LoadEnvString("SUMMARIZER_BASE_URL", s.Summarizer.BaseURL)
	s.Summarizer.MaxTokens = pkgconfig.Track(c, "max_tokens",
		pkgconfig.LoadEnvInt("SUMMARIZER_MAX_TOKENS", s.Summarizer.MaxTokens, pkgconfig.IntRange(16, 4096)))
	s.Summarizer.Timeout = pkgconfig.Track(c, "summarizer_timeout",
		pkgconfig.LoadEnvDuration("SUMMARIZER_TIMEOUT", s.Summarizer.Timeout, pkgconfig.ValidatePositiveDuration))

	s.Pipeline.Concurrency = pkgconfig.Track(c, "concurrency",
		pkgconfig.LoadEnvInt("REFRESHER_CONCURRENCY", s.Pipeline.Concurrency, pkgconfig.IntRange(1, 16)))

	s.Presenter.SlackWebhookURL = pkgconfig.Track(c, "slack_webhook_url",
		pkgconfig.LoadEnvValidated("SLACK_WEBHOOK_URL", s.Presenter.SlackWebhookURL, func(v string) error {
			return entity.ValidateWebhookURL(v, slackWebhookHost)
		}))
	s.Presenter.DiscordWebhookURL = pkgconfig.Track(c, "discord_webhook_url",
		pkgconfig.LoadEnvValidated("DISCORD_WEBHOOK_URL", s.Presenter.DiscordWebhookURL, func(v string) error {
			return entity.ValidateWebhookURL(v, discordWebhookHost)
		}))
}
