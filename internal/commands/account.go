package commands

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/openbooks-dev/openbooks/internal/accounts"
	"github.com/openbooks-dev/openbooks/internal/model"
)

func newAccountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage the chart of accounts",
	}
	cmd.AddCommand(newAccountAddCommand())
	cmd.AddCommand(newAccountListCommand())
	cmd.AddCommand(newAccountDeactivateCommand())
	cmd.AddCommand(newAccountBalanceCommand())
	return cmd
}

func newAccountAddCommand() *cobra.Command {
	var code, name, accountType, parentCode, description, opening string
	var header bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(configFlag)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			params := accounts.CreateParams{
				Code:        code,
				Name:        name,
				Type:        model.AccountType(accountType),
				IsHeader:    header,
				Description: description,
			}
			if opening != "" {
				amount, err := decimal.NewFromString(opening)
				if err != nil {
					return fmt.Errorf("parsing opening balance: %w", err)
				}
				params.OpeningBalance = amount
			}
			if parentCode != "" {
				parent, err := a.accounts.GetByCode(ctx, a.tenant(), parentCode)
				if err != nil {
					return err
				}
				params.ParentID = parent.ID
			}

			account, err := a.accounts.Create(ctx, a.tenant(), params)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created account %s %s (%s)\n", account.Code, account.Name, account.Type)
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "account code (required)")
	_ = cmd.MarkFlagRequired("code")
	cmd.Flags().StringVar(&name, "name", "", "account name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&accountType, "type", "", "account type (inferred from code when omitted)")
	cmd.Flags().StringVar(&parentCode, "parent", "", "parent account code")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&opening, "opening", "", "opening balance")
	cmd.Flags().BoolVar(&header, "header", false, "create as a non-postable header account")

	return cmd
}

func newAccountListCommand() *cobra.Command {
	var includeInactive bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(configFlag)
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.accounts.List(cmd.Context(), a.tenant(), includeInactive)
			if err != nil {
				return err
			}
			for _, account := range list {
				marker := " "
				if account.IsHeader {
					marker = "H"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-6s %-32s %-10s %12s\n",
					marker, account.Code, account.Name, account.Type, account.CurrentBalance.StringFixed(2))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&includeInactive, "all", false, "include inactive accounts")
	return cmd
}

func newAccountDeactivateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <code>",
		Short: "Deactivate an account (soft delete)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(configFlag)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			account, err := a.accounts.GetByCode(ctx, a.tenant(), args[0])
			if err != nil {
				return err
			}
			if err := a.accounts.Deactivate(ctx, a.tenant(), account.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deactivated account %s\n", account.Code)
			return nil
		},
	}
}

func newAccountBalanceCommand() *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "balance <code>",
		Short: "Show an account's balance as of a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(configFlag)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			date := time.Now().UTC()
			if asOf != "" {
				date, err = time.Parse("2006-01-02", asOf)
				if err != nil {
					return fmt.Errorf("parsing --as-of: %w", err)
				}
			}

			account, err := a.accounts.GetByCode(ctx, a.tenant(), args[0])
			if err != nil {
				return err
			}
			balance, err := a.accounts.Balance(ctx, a.tenant(), account.ID, date)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s as of %s\n",
				account.Code, account.Name, balance.StringFixed(2), date.Format("2006-01-02"))
			return nil
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "balance date (YYYY-MM-DD, default today)")
	return cmd
}
