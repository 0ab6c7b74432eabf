package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openbooks-dev/openbooks/internal/importer"
)

func newImportCommand() *cobra.Command {
	var format string
	var draftOnly bool

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Bulk-import journal entries from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(configFlag)
			if err != nil {
				return err
			}
			defer a.Close()

			parser := importer.DefaultRegistry().Get(format)
			if parser == nil {
				return fmt.Errorf("unknown import format %q", format)
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening import file: %w", err)
			}
			defer f.Close()

			result, err := a.importer.Import(cmd.Context(), a.tenant(), f, parser, !draftOnly)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries (%d posted)\n", len(result.Entries), result.Posted)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "journal", "import file format")
	cmd.Flags().BoolVar(&draftOnly, "draft-only", false, "create drafts without posting")

	return cmd
}
