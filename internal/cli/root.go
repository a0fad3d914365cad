// Package cli implements the battlelog command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/j-veylop/tower-battlelog/internal/config"
	"github.com/j-veylop/tower-battlelog/internal/logger"
	"github.com/j-veylop/tower-battlelog/internal/services"
	"github.com/j-veylop/tower-battlelog/internal/version"
)

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree. Without a subcommand it starts the TUI.
func NewRootCmd() *cobra.Command {
	var showVersion bool

	root := &cobra.Command{
		Use:   "battlelog",
		Short: "Battle report log for The Tower",
		Long: `battlelog stores battle reports from The Tower, shows per-report summaries
and keeps daily coin, cell and reroll totals with charts.

Run without arguments to open the dashboard. Reports can be pasted in the Add
tab, dropped as .txt files into the inbox directory or imported with
"battlelog import".

Environment:
  DATABASE_PATH          SQLite database path
  INBOX_PATH             Directory watched for .txt reports
  LOG_PATH               Log file
  LOG_LEVEL              debug, info, warn or error
  PAGE_SIZE              Reports per page (default 10)
  DEFAULT_REPORT_TYPE    Type for inbox imports (default unclassified)
  INBOX_DEBOUNCE         Wait before importing a new file (default 250ms)
  DESKTOP_NOTIFICATIONS  Show desktop notices for inbox imports (default true)`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				fmt.Fprintln(cmd.OutOrStdout(), version.Info())
				return nil
			}
			return runTUI()
		},
	}

	root.Flags().BoolVarP(&showVersion, "version", "v", false, "Show version information")

	root.AddCommand(
		newImportCmd(),
		newSummaryCmd(),
		newDailyCmd(),
		newRebuildCmd(),
		newVersionCmd(),
	)
	return root
}

// openManager loads the configuration and opens the services for a one-shot
// command. The inbox watcher and desktop notices stay off.
func openManager() (*services.Manager, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logFile, err := logger.Init(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	oneShot := *cfg
	oneShot.InboxPath = ""
	oneShot.DesktopNotifications = false

	mgr, err := services.NewManager(&oneShot)
	if err != nil {
		_ = logFile.Close()
		return nil, nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	cleanup := func() {
		if err := mgr.Close(); err != nil {
			logger.Warn("error closing services", "error", err)
		}
		_ = logFile.Close()
	}
	return mgr, cleanup, nil
}
