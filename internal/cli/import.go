package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/j-veylop/tower-battlelog/internal/models"
)

func newImportCmd() *cobra.Command {
	var typeName string

	cmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Save battle reports from files",
		Long: `Save one or more battle reports from text files. Use "-" to read stdin.

Examples:
  battlelog import run.txt                 # Save with the default type
  battlelog import -t farming a.txt b.txt  # Save both as farming runs
  pbpaste | battlelog import -             # Save the clipboard`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, cleanup, err := openManager()
			if err != nil {
				return err
			}
			defer cleanup()

			t := mgr.Config().DefaultReportType
			if typeName != "" {
				if t, err = models.ParseReportType(typeName); err != nil {
					return err
				}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			failed := 0
			for _, path := range args {
				raw, err := readInput(cmd, path)
				if err != nil {
					failed++
					fmt.Fprintf(w, "failed\t%s\t%v\n", path, err)
					continue
				}
				r, metrics, err := mgr.SaveReport(cmd.Context(), raw, t)
				if err != nil {
					failed++
					fmt.Fprintf(w, "failed\t%s\t%v\n", path, err)
					continue
				}
				fmt.Fprintf(w, "saved\t%s\t%s\t%s\t%s\n", path, metrics.BattleDateText(), r.Type, r.ID)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d reports failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeName, "type", "t", "", "Report type: unclassified, farming, tournament, climb, reroll")
	return cmd
}

// readInput reads a report file, or stdin for "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read report: %w", err)
	}
	return string(data), nil
}
