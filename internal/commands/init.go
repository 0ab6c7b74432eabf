package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/openbooks-dev/openbooks/internal/accounts"
	"github.com/openbooks-dev/openbooks/internal/config"
	"github.com/openbooks-dev/openbooks/internal/events"
	"github.com/openbooks-dev/openbooks/internal/logging"
	"github.com/openbooks-dev/openbooks/internal/store"
)

func newInitCommand() *cobra.Command {
	var tenant string
	var withChart bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new openbooks project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runInit(cmd, absDir, tenant, withChart)
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant identifier (required)")
	_ = cmd.MarkFlagRequired("tenant")
	cmd.Flags().BoolVar(&withChart, "with-chart", true, "seed the default chart of accounts")

	return cmd
}

func runInit(cmd *cobra.Command, dir, tenant string, withChart bool) error {
	if err := os.MkdirAll(filepath.Join(dir, "import", "processed"), 0o755); err != nil {
		return fmt.Errorf("creating import dir: %w", err)
	}

	cfg := config.Default(tenant)
	cfg.Database.Path = filepath.Join(dir, "openbooks.db")
	if err := config.Save(filepath.Join(dir, "openbooks.yaml"), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	if withChart {
		log := logging.New(cfg.LogLevel)
		defer log.Sync()
		svc := accounts.NewService(st, events.Nop{}, log, cfg.Accounts.Inference)
		if err := svc.SeedDefaultChart(cmd.Context(), tenant); err != nil {
			return fmt.Errorf("seeding chart of accounts: %w", err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized openbooks project at %s (tenant %s)\n", dir, tenant)
	return nil
}
