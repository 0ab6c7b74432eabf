package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openbooks-dev/openbooks/internal/buildinfo"
)

// configFlag is the shared --config flag value.
var configFlag string

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "openbooks",
		Short:   "Double-entry accounting ledger core",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "openbooks.yaml", "path to config file")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newAccountCommand())
	rootCmd.AddCommand(newJournalCommand())
	rootCmd.AddCommand(newPeriodCommand())
	rootCmd.AddCommand(newReportCommand())
	rootCmd.AddCommand(newImportCommand())

	return rootCmd
}
