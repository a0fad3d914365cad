package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/j-veylop/tower-battlelog/internal/models"
)

func newDailyCmd() *cobra.Command {
	var rangeName string

	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Show daily totals",
		Long: `Show coins, cells, reroll shards and play time per day, newest first.

Examples:
  battlelog daily             # Last 30 days
  battlelog daily -r 7        # Last week
  battlelog daily -r all      # Every stored day`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, ok := models.ParseDayRange(rangeName)
			if !ok {
				return fmt.Errorf("invalid range %q: use 7, 30 or all", rangeName)
			}

			mgr, cleanup, err := openManager()
			if err != nil {
				return err
			}
			defer cleanup()

			days, err := mgr.Daily(cmd.Context(), r)
			if err != nil {
				return fmt.Errorf("failed to load daily stats: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(days) == 0 {
				_, err := fmt.Fprintln(out, "No daily stats yet.")
				return err
			}

			units := mgr.Tables().Units
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(w, "DATE\tCOINS\tCELLS\tREROLL\tTIME\tFILL\tIDLE\t")
			for _, d := range days {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.1f%%\t%.1f%%\t\n",
					d.Date,
					units.Encode(d.TotalCoins),
					units.Encode(d.TotalCells),
					units.Encode(d.TotalReroll),
					models.FormatSeconds(d.TotalSeconds),
					d.DayFillPercent(),
					d.IdlePercent(),
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&rangeName, "range", "r", "30", "Days to show: 7, 30 or all")
	return cmd
}
