// Package closing implements the year-end procedure: compute net income,
// zero every revenue and expense account, and post the offset to retained
// earnings. The closing entry goes through the normal journal engine path,
// so it must balance like any other entry; only the period-open gate is
// bypassed, since by closing time every period of the year is closed.
package closing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/openbooks-dev/openbooks/internal/journal"
	"github.com/openbooks-dev/openbooks/internal/model"
	"github.com/openbooks-dev/openbooks/internal/store"
)

// Service computes and posts year-end closings.
type Service struct {
	store   *store.Store
	journal *journal.Service
}

// NewService creates a closing Service.
func NewService(st *store.Store, journalSvc *journal.Service) *Service {
	return &Service{store: st, journal: journalSvc}
}

// Result describes a completed year-end closing.
type Result struct {
	NetIncome    decimal.Decimal
	Entry        model.JournalEntry
	EntryCreated bool // false when the year had no income-statement activity
}

// NetIncome computes a fiscal year's net income without posting anything:
// Σ(revenue credit−debit) − Σ(expense debit−credit) over the year's range.
func (s *Service) NetIncome(ctx context.Context, tenantID, fiscalYearID string) (decimal.Decimal, error) {
	var net decimal.Decimal
	q := s.store.Q()
	year, err := q.GetFiscalYear(ctx, tenantID, fiscalYearID)
	if err != nil {
		return decimal.Zero, err
	}
	revenue, expense, err := s.activity(ctx, q, tenantID, year)
	if err != nil {
		return decimal.Zero, err
	}
	net = netIncome(revenue, expense)
	return net, nil
}

// CloseYearTx runs the closing inside the caller's transaction (the period
// manager wraps it together with the year state flip). One line per revenue
// account debits its net balance away, one line per expense account credits
// it away, and the balancing line moves net income (credit) or net loss
// (debit) into the retained earnings account.
func (s *Service) CloseYearTx(ctx context.Context, q *store.Queries, tenantID string, year model.FiscalYear, retainedAccountID string) (Result, error) {
	revenue, expense, err := s.activity(ctx, q, tenantID, year)
	if err != nil {
		return Result{}, err
	}

	net := netIncome(revenue, expense)
	if len(revenue) == 0 && len(expense) == 0 {
		// Nothing to zero out; the year closes without a closing entry.
		return Result{NetIncome: net}, nil
	}

	params := journal.DraftParams{
		EntryDate:   year.EndDate,
		Description: "Year-end closing " + year.Name,
		SourceType:  "closing",
		SourceID:    year.ID,
	}
	for _, ta := range revenue {
		accountNet := ta.Credit.Sub(ta.Debit)
		line := journal.LineParams{AccountID: ta.AccountID, Description: "Close " + ta.Name}
		if accountNet.IsPositive() {
			line.Debit = accountNet
		} else {
			line.Credit = accountNet.Neg()
		}
		params.Lines = append(params.Lines, line)
	}
	for _, ta := range expense {
		accountNet := ta.Debit.Sub(ta.Credit)
		line := journal.LineParams{AccountID: ta.AccountID, Description: "Close " + ta.Name}
		if accountNet.IsPositive() {
			line.Credit = accountNet
		} else {
			line.Debit = accountNet.Neg()
		}
		params.Lines = append(params.Lines, line)
	}
	switch {
	case net.IsPositive():
		params.Lines = append(params.Lines, journal.LineParams{
			AccountID:   retainedAccountID,
			Credit:      net,
			Description: "Net income",
		})
	case net.IsNegative():
		params.Lines = append(params.Lines, journal.LineParams{
			AccountID:   retainedAccountID,
			Debit:       net.Neg(),
			Description: "Net loss",
		})
	}

	draft, err := s.journal.CreateDraftTx(ctx, q, tenantID, params, journal.PrefixEntry, "", false)
	if err != nil {
		return Result{}, err
	}
	posted, err := s.journal.PostTx(ctx, q, tenantID, draft.ID, journal.PostOptions{AllowClosedPeriod: true})
	if err != nil {
		return Result{}, err
	}
	return Result{NetIncome: net, Entry: posted, EntryCreated: true}, nil
}

func (s *Service) activity(ctx context.Context, q *store.Queries, tenantID string, year model.FiscalYear) (revenue, expense []store.TypeActivity, err error) {
	revenue, err = q.ActivityByType(ctx, tenantID, model.AccountTypeRevenue, year.StartDate, year.EndDate)
	if err != nil {
		return nil, nil, err
	}
	expense, err = q.ActivityByType(ctx, tenantID, model.AccountTypeExpense, year.StartDate, year.EndDate)
	if err != nil {
		return nil, nil, err
	}
	return revenue, expense, nil
}

func netIncome(revenue, expense []store.TypeActivity) decimal.Decimal {
	net := decimal.Zero
	for _, ta := range revenue {
		net = net.Add(ta.Credit.Sub(ta.Debit))
	}
	for _, ta := range expense {
		net = net.Sub(ta.Debit.Sub(ta.Credit))
	}
	return net
}
