package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"daily-refresher/internal/config"
	"daily-refresher/internal/observability/logging"
)

var secretKeys = map[string]bool{
	"summarizer.api_key":           true,
	"presenter.slack_webhook_url":   true,
	"presenter.discord_webhook_url": true,
}

func newConfigCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the settings",
	}
	cmd.AddCommand(newConfigShowCommand(app), newConfigSetCommand(app))
	return cmd
}

func newConfigShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings as YAML, secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := app.openStore(logging.FromContext(cmd.Context()), nil)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(store.Snapshot().Redacted()); err != nil {
				return fmt.Errorf("encode settings: %w", err)
			}
			return enc.Close()
		},
	}
}

func newConfigSetCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting and save it",
		Long: "Change one setting and save it to the settings file.\n\nKeys:\n  " +
			strings.Join(config.Keys(), "\n  ") +
			"\n\nList values are comma separated.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.openStore(logging.FromContext(cmd.Context()), nil)
			if err != nil {
				return err
			}
			if _, err := store.Set(args[0], args[1]); err != nil {
				return err
			}
			value := args[1]
			if secretKeys[args[0]] {
				value = "(hidden)"
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s = %s saved to %s\n", args[0], value, store.Path())
			return err
		},
	}
}
