package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"daily-refresher/internal/config"
	"daily-refresher/internal/observability/logging"
	"daily-refresher/internal/usecase/refresh"
)

type runOptions struct {
	folder  string
	pattern string
	max     int
	policy  string
	output  string
	dryRun  bool
}

func newRunCommand(app *App) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Summarize today's notes once",
		Long: `Select notes from the configured folder, summarize them and print the result.

Flags override the settings file for this run only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRefresh(cmd, app, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.folder, "folder", "", "vault folder to pick notes from")
	f.StringVar(&opts.pattern, "pattern", "", "regular expression the note paths must match, e.g. \"^School/.*\\.md$\"")
	f.IntVar(&opts.max, "max", 0, "number of notes to summarize")
	f.StringVar(&opts.policy, "policy", "", "selection policy: first or random")
	f.StringVarP(&opts.output, "output", "o", outputText, "output format: text or json")
	f.BoolVar(&opts.dryRun, "dry-run", false, "use the offline summarizer, no API calls")
	return cmd
}

func runRefresh(cmd *cobra.Command, app *App, opts *runOptions) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	store, err := app.openStore(logger, nil)
	if err != nil {
		return err
	}
	settings := opts.apply(cmd, store.Snapshot())
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	pres, err := newPresenter(cmd.OutOrStdout(), opts.output, settings)
	if err != nil {
		return err
	}
	svc, err := refresh.NewService(app.newVault(settings), pres, summarizerFactory)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = svc.Stop(ctx) }()

	if _, err := svc.Refresh(ctx, settings); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	return nil
}

// apply overlays the flags that were set on s.
func (o *runOptions) apply(cmd *cobra.Command, s config.Settings) config.Settings {
	flags := cmd.Flags()
	if flags.Changed("folder") {
		s.Selection.Folder = o.folder
	}
	if flags.Changed("pattern") {
		s.Selection.Pattern = o.pattern
	}
	if flags.Changed("max") {
		s.Selection.MaxNotes = o.max
	}
	if flags.Changed("policy") {
		s.Selection.Policy = o.policy
	}
	if o.dryRun {
		s.Summarizer.Provider = config.ProviderNoop
	}
	return s
}
