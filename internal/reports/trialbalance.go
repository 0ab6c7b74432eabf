// Package reports aggregates ledger state into balanced reports.
package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openbooks-dev/openbooks/internal/model"
	"github.com/openbooks-dev/openbooks/internal/store"
)

// Service builds reports from the ledger.
type Service struct {
	store *store.Store
}

// NewService creates a reports Service.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// TrialBalanceRow is one account's column placement in the trial balance.
type TrialBalanceRow struct {
	AccountID string
	Code      string
	Name      string
	Type      model.AccountType
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// TrialBalance is the full report at a point in time. IsBalanced holding for
// any as-of date is the strongest end-to-end check of the whole core.
type TrialBalance struct {
	AsOf        time.Time
	Rows        []TrialBalanceRow
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	IsBalanced  bool
}

// TrialBalance computes every active, non-header account's balance as of the
// given date and places it in the debit or credit column by the account's
// normal balance side. A negative balance lands on the opposite column.
func (s *Service) TrialBalance(ctx context.Context, tenantID string, asOf time.Time) (TrialBalance, error) {
	q := s.store.Q()
	accounts, err := q.ListAccounts(ctx, tenantID, false)
	if err != nil {
		return TrialBalance{}, err
	}
	activity, err := q.ActivityTotals(ctx, tenantID, asOf)
	if err != nil {
		return TrialBalance{}, err
	}

	tb := TrialBalance{AsOf: asOf, TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for _, account := range accounts {
		if account.IsHeader {
			continue
		}
		sums := activity[account.ID]
		balance := account.OpeningBalance.Add(account.SignedDelta(sums.Debit, sums.Credit))

		row := TrialBalanceRow{
			AccountID: account.ID,
			Code:      account.Code,
			Name:      account.Name,
			Type:      account.Type,
			Debit:     decimal.Zero,
			Credit:    decimal.Zero,
		}
		side := account.NormalBalance
		if balance.IsNegative() {
			balance = balance.Neg()
			if side == model.SideDebit {
				side = model.SideCredit
			} else {
				side = model.SideDebit
			}
		}
		if side == model.SideDebit {
			row.Debit = balance
		} else {
			row.Credit = balance
		}

		tb.Rows = append(tb.Rows, row)
		tb.TotalDebit = tb.TotalDebit.Add(row.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(row.Credit)
	}
	tb.IsBalanced = tb.TotalDebit.Sub(tb.TotalCredit).Abs().LessThan(model.BalanceEpsilon)
	return tb, nil
}
