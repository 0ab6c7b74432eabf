// Package ledger reads the append-only general ledger: per-account entry
// listings and statements with running balances.
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openbooks-dev/openbooks/internal/model"
	"github.com/openbooks-dev/openbooks/internal/store"
)

// Service provides ledger queries. Writing to the ledger happens only inside
// the journal engine's posting transaction.
type Service struct {
	store *store.Store
}

// NewService creates a ledger Service.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// Entries returns an account's ledger rows within [start, end] with paging.
func (s *Service) Entries(ctx context.Context, tenantID, accountID string, start, end time.Time, limit, offset int) ([]model.LedgerEntry, error) {
	if _, err := s.store.Q().GetAccount(ctx, tenantID, accountID); err != nil {
		return nil, err
	}
	return s.store.Q().LedgerEntries(ctx, tenantID, accountID, start, end, limit, offset)
}

// Statement is an account's activity over a date range with a running
// balance per line.
type Statement struct {
	Account        model.Account
	Start          time.Time
	End            time.Time
	OpeningBalance decimal.Decimal
	ClosingBalance decimal.Decimal
	Lines          []model.StatementLine
}

// Statement builds an account statement. The opening balance folds the
// account's opening balance together with all activity strictly before the
// range; each line then applies its signed delta in chronological order. The
// closing balance reconciles exactly with the registry's as-of computation
// for the range end.
func (s *Service) Statement(ctx context.Context, tenantID, accountID string, start, end time.Time) (Statement, error) {
	q := s.store.Q()
	account, err := q.GetAccount(ctx, tenantID, accountID)
	if err != nil {
		return Statement{}, err
	}

	preDebit, preCredit, err := q.AccountActivityBefore(ctx, tenantID, accountID, start)
	if err != nil {
		return Statement{}, err
	}
	opening := account.OpeningBalance.Add(account.SignedDelta(preDebit, preCredit))

	// LIMIT -1 is SQLite for "no limit"; statements are not paged.
	entries, err := q.LedgerEntries(ctx, tenantID, accountID, start, end, -1, 0)
	if err != nil {
		return Statement{}, err
	}

	stmt := Statement{
		Account:        account,
		Start:          start,
		End:            end,
		OpeningBalance: opening,
		Lines:          make([]model.StatementLine, 0, len(entries)),
	}
	running := opening
	for _, entry := range entries {
		running = running.Add(account.SignedDelta(entry.Debit, entry.Credit))
		stmt.Lines = append(stmt.Lines, model.StatementLine{Entry: entry, Balance: running})
	}
	stmt.ClosingBalance = running
	return stmt, nil
}
