package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/j-veylop/tower-battlelog/internal/config"
	"github.com/j-veylop/tower-battlelog/internal/report"
	"github.com/j-veylop/tower-battlelog/internal/ui/components"
)

const summaryWidth = 60

func newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary FILE",
		Short: "Print the parsed summary of a report without saving it",
		Long: `Parse a battle report and print its summary. Nothing is stored.
Use "-" to read stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			if strings.TrimSpace(raw) == "" {
				return fmt.Errorf("%s: report is empty", args[0])
			}

			tables := report.DefaultTables().WithOverrides(cfg.ExtraUnits, cfg.ShortNames)
			p := report.NewParser(tables, nil).Parse(raw)

			rows := components.RenderSummaryRows(p, tables, summaryWidth)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(rows, "\n"))
			return err
		},
	}
}
