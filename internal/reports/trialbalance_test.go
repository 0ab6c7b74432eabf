package reports

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openbooks-dev/openbooks/internal/accounts"
	"github.com/openbooks-dev/openbooks/internal/config"
	"github.com/openbooks-dev/openbooks/internal/events"
	"github.com/openbooks-dev/openbooks/internal/journal"
	"github.com/openbooks-dev/openbooks/internal/model"
	"github.com/openbooks-dev/openbooks/internal/store"
)

const tenant = "acme"

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	reports  *Service
	journal  *journal.Service
	accounts *accounts.Service
	cash     model.Account
	revenue  model.Account
	expense  model.Account
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	log := zap.NewNop()
	f := &fixture{
		reports:  NewService(st),
		journal:  journal.NewService(st, events.Nop{}, log),
		accounts: accounts.NewService(st, events.Nop{}, log, config.DefaultInference()),
	}
	ctx := context.Background()
	f.cash, err = f.accounts.Create(ctx, tenant, accounts.CreateParams{Code: "1010", Name: "Cash"})
	require.NoError(t, err)
	f.revenue, err = f.accounts.Create(ctx, tenant, accounts.CreateParams{Code: "6010", Name: "Sales"})
	require.NoError(t, err)
	f.expense, err = f.accounts.Create(ctx, tenant, accounts.CreateParams{Code: "8010", Name: "Ads"})
	require.NoError(t, err)
	return f
}

func (f *fixture) post(t *testing.T, debitID, creditID string, day int, amount string) {
	t.Helper()
	ctx := context.Background()
	entry, err := f.journal.CreateDraft(ctx, tenant, journal.DraftParams{
		EntryDate: date(2025, 1, day),
		Lines: []journal.LineParams{
			{AccountID: debitID, Debit: dec(amount)},
			{AccountID: creditID, Credit: dec(amount)},
		},
	})
	require.NoError(t, err)
	_, err = f.journal.Post(ctx, tenant, entry.ID)
	require.NoError(t, err)
}

func (f *fixture) row(tb TrialBalance, code string) (TrialBalanceRow, bool) {
	for _, r := range tb.Rows {
		if r.Code == code {
			return r, true
		}
	}
	return TrialBalanceRow{}, false
}

func TestTrialBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.post(t, f.cash.ID, f.revenue.ID, 5, "1000.00")
	f.post(t, f.expense.ID, f.cash.ID, 10, "300.00")

	tb, err := f.reports.TrialBalance(ctx, tenant, date(2025, 1, 31))
	require.NoError(t, err)
	assert.True(t, tb.IsBalanced)
	assert.True(t, tb.TotalDebit.Equal(dec("1000.00")), "got %s", tb.TotalDebit)
	assert.True(t, tb.TotalCredit.Equal(dec("1000.00")))

	cash, ok := f.row(tb, "1010")
	require.True(t, ok)
	assert.True(t, cash.Debit.Equal(dec("700.00")))
	assert.True(t, cash.Credit.IsZero())

	revenue, ok := f.row(tb, "6010")
	require.True(t, ok)
	assert.True(t, revenue.Credit.Equal(dec("1000.00")))

	expense, ok := f.row(tb, "8010")
	require.True(t, ok)
	assert.True(t, expense.Debit.Equal(dec("300.00")))
}

func TestTrialBalance_AsOfCutoff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.post(t, f.cash.ID, f.revenue.ID, 5, "1000.00")
	f.post(t, f.expense.ID, f.cash.ID, 20, "300.00")

	tb, err := f.reports.TrialBalance(ctx, tenant, date(2025, 1, 10))
	require.NoError(t, err)
	assert.True(t, tb.IsBalanced, "balanced at any as-of date")

	cash, ok := f.row(tb, "1010")
	require.True(t, ok)
	assert.True(t, cash.Debit.Equal(dec("1000.00")), "day-20 expense not yet visible")
	expense, ok := f.row(tb, "8010")
	require.True(t, ok)
	assert.True(t, expense.Debit.IsZero())
}

func TestTrialBalance_NegativeBalanceFlipsColumn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	// Overdraw cash: a debit-normal account driven negative shows as credit.
	f.post(t, f.expense.ID, f.cash.ID, 5, "400.00")

	tb, err := f.reports.TrialBalance(ctx, tenant, date(2025, 1, 31))
	require.NoError(t, err)
	assert.True(t, tb.IsBalanced)

	cash, ok := f.row(tb, "1010")
	require.True(t, ok)
	assert.True(t, cash.Debit.IsZero())
	assert.True(t, cash.Credit.Equal(dec("400.00")))
}

func TestTrialBalance_SkipsHeaders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.accounts.Create(ctx, tenant, accounts.CreateParams{Code: "1000", Name: "Assets", IsHeader: true})
	require.NoError(t, err)

	tb, err := f.reports.TrialBalance(ctx, tenant, date(2025, 1, 31))
	require.NoError(t, err)
	_, ok := f.row(tb, "1000")
	assert.False(t, ok)
}

func TestTrialBalance_OpeningBalances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.accounts.Create(ctx, tenant, accounts.CreateParams{
		Code: "1020", Name: "Savings", OpeningBalance: dec("2500.00"),
	})
	require.NoError(t, err)

	tb, err := f.reports.TrialBalance(ctx, tenant, date(2025, 1, 31))
	require.NoError(t, err)
	savings, ok := f.row(tb, "1020")
	require.True(t, ok)
	assert.True(t, savings.Debit.Equal(dec("2500.00")), "opening balance counts with no postings")
}
