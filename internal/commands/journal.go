package commands

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/openbooks-dev/openbooks/internal/journal"
)

func newJournalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Create and post journal entries",
	}
	cmd.AddCommand(newJournalAddCommand())
	cmd.AddCommand(newJournalPostCommand())
	cmd.AddCommand(newJournalReverseCommand())
	cmd.AddCommand(newJournalVoidCommand())
	cmd.AddCommand(newJournalShowCommand())
	return cmd
}

func newJournalAddCommand() *cobra.Command {
	var dateStr, description, debitCode, creditCode, amountStr string
	var post bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a balanced two-line draft entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(configFlag)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			date, err := time.Parse("2006-01-02", dateStr)
			if err != nil {
				return fmt.Errorf("parsing --date: %w", err)
			}
			amount, err := decimal.NewFromString(amountStr)
			if err != nil {
				return fmt.Errorf("parsing --amount: %w", err)
			}
			debitAccount, err := a.accounts.GetByCode(ctx, a.tenant(), debitCode)
			if err != nil {
				return err
			}
			creditAccount, err := a.accounts.GetByCode(ctx, a.tenant(), creditCode)
			if err != nil {
				return err
			}

			entry, err := a.journal.CreateDraft(ctx, a.tenant(), journal.DraftParams{
				EntryDate:   date,
				Description: description,
				SourceType:  "manual",
				Lines: []journal.LineParams{
					{AccountID: debitAccount.ID, Debit: amount, Description: description},
					{AccountID: creditAccount.ID, Credit: amount, Description: description},
				},
			})
			if err != nil {
				return err
			}
			if post {
				entry, err = a.journal.Post(ctx, a.tenant(), entry.ID)
				if err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", entry.EntryNumber, entry.Description, entry.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&dateStr, "date", "", "entry date (YYYY-MM-DD, required)")
	_ = cmd.MarkFlagRequired("date")
	cmd.Flags().StringVar(&description, "description", "", "entry description")
	cmd.Flags().StringVar(&debitCode, "debit", "", "debit account code (required)")
	_ = cmd.MarkFlagRequired("debit")
	cmd.Flags().StringVar(&creditCode, "credit", "", "credit account code (required)")
	_ = cmd.MarkFlagRequired("credit")
	cmd.Flags().StringVar(&amountStr, "amount", "", "amount (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().BoolVar(&post, "post", false, "post immediately after creating")

	return cmd
}

func newJournalPostCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "post <entry-id>",
		Short: "Post a draft entry to the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(configFlag)
			if err != nil {
				return err
			}
			defer a.Close()

			entry, err := a.journal.Post(cmd.Context(), a.tenant(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Posted %s (%s / %s)\n",
				entry.EntryNumber, entry.TotalDebit.StringFixed(2), entry.TotalCredit.StringFixed(2))
			return nil
		},
	}
}

func newJournalReverseCommand() *cobra.Command {
	var post bool

	cmd := &cobra.Command{
		Use:   "reverse <entry-id>",
		Short: "Create a reversal draft for a posted entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(configFlag)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			reversal, err := a.journal.Reverse(ctx, a.tenant(), args[0])
			if err != nil {
				return err
			}
			if post {
				reversal, err = a.journal.Post(ctx, a.tenant(), reversal.ID)
				if err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", reversal.EntryNumber, reversal.Description, reversal.Status)
			return nil
		},
	}

	cmd.Flags().BoolVar(&post, "post", false, "post the reversal immediately")
	return cmd
}

func newJournalVoidCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "void <entry-id>",
		Short: "Void a draft entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(configFlag)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.journal.Void(cmd.Context(), a.tenant(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Voided", args[0])
			return nil
		},
	}
}

func newJournalShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <entry-id>",
		Short: "Show an entry and its lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(configFlag)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			entry, err := a.journal.Get(ctx, a.tenant(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s  %s\n",
				entry.EntryNumber, entry.EntryDate.Format("2006-01-02"), entry.Status, entry.Description)
			for _, line := range entry.Lines {
				account, err := a.accounts.Get(ctx, a.tenant(), line.AccountID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %-6s %-32s %12s %12s\n",
					account.Code, account.Name, line.Debit.StringFixed(2), line.Credit.StringFixed(2))
			}
			return nil
		},
	}
}
