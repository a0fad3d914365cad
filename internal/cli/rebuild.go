package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRebuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Recompute daily totals from all stored reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, cleanup, err := openManager()
			if err != nil {
				return err
			}
			defer cleanup()

			days, err := mgr.RebuildDaily(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to rebuild daily stats: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Rebuilt %d days\n", len(days))
			return err
		},
	}
}
