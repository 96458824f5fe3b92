package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/afero"

	"daily-refresher/internal/config"
	"daily-refresher/internal/infra/presenter"
	"daily-refresher/internal/infra/summarizer"
	"daily-refresher/internal/infra/vault"
	pkgconfig "daily-refresher/internal/pkg/config"
	"daily-refresher/internal/usecase/refresh"
)

const (
	outputText = "text"
	outputJSON = "json"
)

func (a *App) openStore(logger *slog.Logger, metrics *pkgconfig.ConfigMetrics) (*config.Store, error) {
	store, warnings, err := config.Open(a.FS, a.configPath, metrics)
	for _, w := range warnings {
		logger.Warn("configuration fallback", slog.String("warning", w))
	}
	if err != nil {
		return nil, fmt.Errorf("load settings %s: %w", a.configPath, err)
	}
	return store, nil
}

// newVault roots a vault at the settings' vault path on the app file system.
func (a *App) newVault(s config.Settings) *vault.Vault {
	return vault.New(afero.NewBasePathFs(a.FS, s.Vault.Path))
}

// newPresenter renders to out in the given format and, when a webhook is
// configured, to Slack and Discord as well.
func newPresenter(out io.Writer, output string, s config.Settings) (refresh.Presenter, error) {
	var primary refresh.Presenter
	switch output {
	case outputText, "":
		primary = presenter.NewTerminal(out, presenter.TerminalOptions{
			Vault:      s.VaultName(),
			Hyperlinks: isTerminal(out),
			Width:      100,
		})
	case outputJSON:
		primary = presenter.NewJSON(out, s.VaultName())
	default:
		return nil, fmt.Errorf("unknown output %q (want %s or %s)", output, outputText, outputJSON)
	}

	multi := presenter.Multi{primary}
	if url := s.Presenter.SlackWebhookURL; url != "" {
		multi = append(multi, presenter.NewSlack(presenter.SlackConfig{WebhookURL: url, Vault: s.VaultName()}))
	}
	if url := s.Presenter.DiscordWebhookURL; url != "" {
		multi = append(multi, presenter.NewDiscord(presenter.DiscordConfig{WebhookURL: url, Vault: s.VaultName()}))
	}
	if len(multi) == 1 {
		return primary, nil
	}
	return multi, nil
}

// summarizerFactory maps settings onto a summarizer backend.
func summarizerFactory(s config.SummarizerSettings) (refresh.Summarizer, error) {
	return summarizer.New(summarizer.Config{
		Provider: s.Provider,
		APIKey:   s.APIKey,
		Model:    s.Model,
		BaseURL:  s.BaseURL,
		Timeout:  s.Timeout,
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
