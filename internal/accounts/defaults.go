package accounts

import (
	"context"

	"github.com/openbooks-dev/openbooks/internal/model"
)

type seedAccount struct {
	Code        string
	Name        string
	Type        model.AccountType
	Parent      string // parent account code, resolved during seeding
	IsHeader    bool
	Description string
}

// DefaultChart is the starter chart of accounts seeded by `openbooks init`.
// Codes follow the standard inference table: 1-2 assets, 3-4 liabilities,
// 5 equity, 6-7 revenue, 8-9 expenses.
func DefaultChart() []seedAccount {
	return []seedAccount{
		{Code: "1000", Name: "Assets", Type: model.AccountTypeAsset, IsHeader: true},
		{Code: "1010", Name: "Business Checking", Type: model.AccountTypeAsset, Parent: "1000", Description: "Primary checking account"},
		{Code: "1020", Name: "Business Savings", Type: model.AccountTypeAsset, Parent: "1000", Description: "Savings account"},
		{Code: "1200", Name: "Accounts Receivable", Type: model.AccountTypeAsset, Parent: "1000"},
		{Code: "3000", Name: "Liabilities", Type: model.AccountTypeLiability, IsHeader: true},
		{Code: "3010", Name: "Credit Card", Type: model.AccountTypeLiability, Parent: "3000", Description: "Business credit card"},
		{Code: "3200", Name: "Accounts Payable", Type: model.AccountTypeLiability, Parent: "3000"},
		{Code: "5000", Name: "Equity", Type: model.AccountTypeEquity, IsHeader: true},
		{Code: "5010", Name: "Owner's Equity", Type: model.AccountTypeEquity, Parent: "5000"},
		{Code: "5900", Name: "Retained Earnings", Type: model.AccountTypeEquity, Parent: "5000", Description: "Year-end closing target"},
		{Code: "6000", Name: "Revenue", Type: model.AccountTypeRevenue, IsHeader: true},
		{Code: "6010", Name: "Service Revenue", Type: model.AccountTypeRevenue, Parent: "6000"},
		{Code: "6020", Name: "Product Revenue", Type: model.AccountTypeRevenue, Parent: "6000"},
		{Code: "8000", Name: "Expenses", Type: model.AccountTypeExpense, IsHeader: true},
		{Code: "8010", Name: "Advertising & Marketing", Type: model.AccountTypeExpense, Parent: "8000", Description: "Advertising costs"},
		{Code: "8020", Name: "Software & SaaS", Type: model.AccountTypeExpense, Parent: "8000", Description: "Software subscriptions"},
		{Code: "8030", Name: "Office Supplies", Type: model.AccountTypeExpense, Parent: "8000", Description: "Office supplies and expenses"},
		{Code: "8040", Name: "Professional Services", Type: model.AccountTypeExpense, Parent: "8000", Description: "Legal, accounting, consulting"},
	}
}

// SeedDefaultChart creates the default chart for a tenant, resolving parent
// codes to ids as it goes. Headers appear before their children in
// DefaultChart, so a single pass suffices.
func (s *Service) SeedDefaultChart(ctx context.Context, tenantID string) error {
	idByCode := make(map[string]string)
	for _, sa := range DefaultChart() {
		created, err := s.Create(ctx, tenantID, CreateParams{
			Code:        sa.Code,
			Name:        sa.Name,
			Type:        sa.Type,
			ParentID:    idByCode[sa.Parent],
			IsHeader:    sa.IsHeader,
			Description: sa.Description,
		})
		if err != nil {
			return err
		}
		idByCode[sa.Code] = created.ID
	}
	return nil
}
