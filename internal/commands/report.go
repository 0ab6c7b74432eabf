package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Balance and statement reports",
	}
	cmd.AddCommand(newTrialBalanceCommand())
	cmd.AddCommand(newStatementCommand())
	return cmd
}

func newTrialBalanceCommand() *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "trial-balance",
		Short: "Trial balance across all active accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(configFlag)
			if err != nil {
				return err
			}
			defer a.Close()

			date := time.Now().UTC()
			if asOf != "" {
				date, err = time.Parse("2006-01-02", asOf)
				if err != nil {
					return fmt.Errorf("parsing --as-of: %w", err)
				}
			}

			tb, err := a.reports.TrialBalance(cmd.Context(), a.tenant(), date)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Trial balance as of %s\n\n", date.Format("2006-01-02"))
			for _, row := range tb.Rows {
				fmt.Fprintf(out, "%-6s %-32s %12s %12s\n",
					row.Code, row.Name, row.Debit.StringFixed(2), row.Credit.StringFixed(2))
			}
			fmt.Fprintf(out, "%-39s %12s %12s\n", "TOTAL", tb.TotalDebit.StringFixed(2), tb.TotalCredit.StringFixed(2))
			if !tb.IsBalanced {
				return fmt.Errorf("trial balance is out of balance by %s",
					tb.TotalDebit.Sub(tb.TotalCredit).Abs().StringFixed(2))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "report date (YYYY-MM-DD, default today)")
	return cmd
}

func newStatementCommand() *cobra.Command {
	var startStr, endStr string

	cmd := &cobra.Command{
		Use:   "statement <account-code>",
		Short: "Account statement with running balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(configFlag)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			start, err := time.Parse("2006-01-02", startStr)
			if err != nil {
				return fmt.Errorf("parsing --start: %w", err)
			}
			end, err := time.Parse("2006-01-02", endStr)
			if err != nil {
				return fmt.Errorf("parsing --end: %w", err)
			}

			account, err := a.accounts.GetByCode(ctx, a.tenant(), args[0])
			if err != nil {
				return err
			}
			stmt, err := a.ledger.Statement(ctx, a.tenant(), account.ID, start, end)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Statement %s %s (%s to %s)\n", account.Code, account.Name, startStr, endStr)
			fmt.Fprintf(out, "Opening balance: %s\n", stmt.OpeningBalance.StringFixed(2))
			for _, line := range stmt.Lines {
				fmt.Fprintf(out, "%s  %-14s %12s %12s %14s\n",
					line.Entry.EntryDate.Format("2006-01-02"), line.Entry.EntryNumber,
					line.Entry.Debit.StringFixed(2), line.Entry.Credit.StringFixed(2),
					line.Balance.StringFixed(2))
			}
			fmt.Fprintf(out, "Closing balance: %s\n", stmt.ClosingBalance.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&startStr, "start", "", "range start (YYYY-MM-DD, required)")
	_ = cmd.MarkFlagRequired("start")
	cmd.Flags().StringVar(&endStr, "end", "", "range end (YYYY-MM-DD, required)")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}
