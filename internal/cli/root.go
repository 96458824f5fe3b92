// Package cli implements the refresher command line.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"daily-refresher/internal/config"
	"daily-refresher/internal/observability/logging"
)

// App carries the process dependencies shared by all commands.
type App struct {
	// FS holds both the settings file and the vault.
	FS  afero.Fs
	Out io.Writer
	Err io.Writer

	// Registerer and Gatherer back the worker's metrics.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	configPath string
	logLevel   string
	logFormat  string
}

// NewApp returns an App bound to the host file system and standard streams.
func NewApp() *App {
	return &App{
		FS:         afero.NewOsFs(),
		Out:        os.Stdout,
		Err:        os.Stderr,
		Registerer: prometheus.DefaultRegisterer,
		Gatherer:   prometheus.DefaultGatherer,
	}
}

// NewRootCommand builds the command tree.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "refresher",
		Short: "Daily refresher - summaries of a few notes from your vault",
		Long: `refresher picks a handful of notes from a folder of your Markdown vault,
summarizes each one with a language model and shows the summaries.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger := logging.Setup(logging.Options{
				Level:  app.logLevel,
				Format: app.logFormat,
				Output: app.Err,
			})
			cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
		},
	}
	root.SetOut(app.Out)
	root.SetErr(app.Err)

	defaultPath := os.Getenv("REFRESHER_CONFIG")
	if defaultPath == "" {
		defaultPath = config.DefaultFile
	}
	root.PersistentFlags().StringVar(&app.configPath, "config", defaultPath, "settings file (env REFRESHER_CONFIG)")
	root.PersistentFlags().StringVar(&app.logLevel, "log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
	root.PersistentFlags().StringVar(&app.logFormat, "log-format", "", "json or text (env LOG_FORMAT)")

	root.AddCommand(
		newRunCommand(app),
		newWorkerCommand(app),
		newConfigCommand(app),
	)
	return root
}

// Execute runs the command line with os.Args.
func Execute(ctx context.Context) error {
	return NewRootCommand(NewApp()).ExecuteContext(ctx)
}
