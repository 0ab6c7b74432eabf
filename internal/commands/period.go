package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newPeriodCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "period",
		Short: "Manage fiscal years and periods",
	}
	cmd.AddCommand(newPeriodCreateYearCommand())
	cmd.AddCommand(newPeriodListCommand())
	cmd.AddCommand(newPeriodCloseCommand())
	cmd.AddCommand(newPeriodReopenCommand())
	cmd.AddCommand(newPeriodCloseYearCommand())
	return cmd
}

func newPeriodCreateYearCommand() *cobra.Command {
	var name, startStr, endStr string

	cmd := &cobra.Command{
		Use:   "create-year",
		Short: "Create a fiscal year with auto-generated monthly periods",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(configFlag)
			if err != nil {
				return err
			}
			defer a.Close()

			start, err := time.Parse("2006-01-02", startStr)
			if err != nil {
				return fmt.Errorf("parsing --start: %w", err)
			}
			end, err := time.Parse("2006-01-02", endStr)
			if err != nil {
				return fmt.Errorf("parsing --end: %w", err)
			}

			year, periods, err := a.periods.CreateFiscalYear(cmd.Context(), a.tenant(), name, start, end)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s to %s) with %d periods\n",
				year.Name, year.StartDate.Format("2006-01-02"), year.EndDate.Format("2006-01-02"), len(periods))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "fiscal year name (default FY<end year>)")
	cmd.Flags().StringVar(&startStr, "start", "", "start date (YYYY-MM-DD, required)")
	_ = cmd.MarkFlagRequired("start")
	cmd.Flags().StringVar(&endStr, "end", "", "end date (YYYY-MM-DD, required)")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func newPeriodListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <fiscal-year-id>",
		Short: "List a fiscal year's periods",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(configFlag)
			if err != nil {
				return err
			}
			defer a.Close()

			periods, err := a.periods.ListPeriods(cmd.Context(), a.tenant(), args[0])
			if err != nil {
				return err
			}
			for _, p := range periods {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d  %s  %s  %s  %s\n",
					p.PeriodNumber, p.StartDate.Format("2006-01-02"), p.EndDate.Format("2006-01-02"), p.Status, p.ID)
			}
			return nil
		},
	}
}

func newPeriodCloseCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "close <period-id>",
		Short: "Close a fiscal period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(configFlag)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.periods.ClosePeriod(cmd.Context(), a.tenant(), args[0], force); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Closed period", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "close even with draft entries inside the period")
	return cmd
}

func newPeriodReopenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reopen <period-id>",
		Short: "Reopen a closed fiscal period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(configFlag)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.periods.ReopenPeriod(cmd.Context(), a.tenant(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Reopened period", args[0])
			return nil
		},
	}
}

func newPeriodCloseYearCommand() *cobra.Command {
	var retainedCode string

	cmd := &cobra.Command{
		Use:   "close-year <fiscal-year-id>",
		Short: "Close a fiscal year, moving net income to retained earnings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(configFlag)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			if retainedCode == "" {
				retainedCode = a.cfg.Accounts.RetainedEarnings
			}
			retained, err := a.accounts.GetByCode(ctx, a.tenant(), retainedCode)
			if err != nil {
				return err
			}

			result, err := a.periods.CloseFiscalYear(ctx, a.tenant(), args[0], retained.ID)
			if err != nil {
				return err
			}
			if result.EntryCreated {
				fmt.Fprintf(cmd.OutOrStdout(), "Closed year: net income %s, closing entry %s\n",
					result.NetIncome.StringFixed(2), result.Entry.EntryNumber)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Closed year: no income-statement activity")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&retainedCode, "retained-earnings", "", "retained earnings account code (default from config)")
	return cmd
}
