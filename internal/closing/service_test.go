package closing

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
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
	store    *store.Store
	closing  *Service
	journal  *journal.Service
	accounts *accounts.Service
	year     model.FiscalYear

	cash     model.Account
	revenue  model.Account
	expense  model.Account
	retained model.Account
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	log := zap.NewNop()
	journalSvc := journal.NewService(st, events.Nop{}, log)
	f := &fixture{
		store:    st,
		closing:  NewService(st, journalSvc),
		journal:  journalSvc,
		accounts: accounts.NewService(st, events.Nop{}, log, config.DefaultInference()),
	}

	ctx := context.Background()
	f.year = model.FiscalYear{
		ID: uuid.NewString(), TenantID: tenant, Name: "FY2025",
		StartDate: date(2025, 1, 1), EndDate: date(2025, 12, 31),
		IsActive: true, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, st.Q().InsertFiscalYear(ctx, f.year))

	f.cash, err = f.accounts.Create(ctx, tenant, accounts.CreateParams{Code: "1010", Name: "Cash"})
	require.NoError(t, err)
	f.revenue, err = f.accounts.Create(ctx, tenant, accounts.CreateParams{Code: "6010", Name: "Sales"})
	require.NoError(t, err)
	f.expense, err = f.accounts.Create(ctx, tenant, accounts.CreateParams{Code: "8010", Name: "Ads"})
	require.NoError(t, err)
	f.retained, err = f.accounts.Create(ctx, tenant, accounts.CreateParams{Code: "5900", Name: "Retained Earnings"})
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

func (f *fixture) balance(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	b, err := f.accounts.Balance(context.Background(), tenant, id, date(2025, 12, 31))
	require.NoError(t, err)
	return b
}

func (f *fixture) closeYear(t *testing.T) Result {
	t.Helper()
	var result Result
	require.NoError(t, f.store.WithTx(context.Background(), func(q *store.Queries) error {
		var err error
		result, err = f.closing.CloseYearTx(context.Background(), q, tenant, f.year, f.retained.ID)
		return err
	}))
	return result
}

func TestNetIncome(t *testing.T) {
	f := newFixture(t)
	f.post(t, f.cash.ID, f.revenue.ID, 5, "1000.00")
	f.post(t, f.expense.ID, f.cash.ID, 10, "300.00")

	net, err := f.closing.NetIncome(context.Background(), tenant, f.year.ID)
	require.NoError(t, err)
	assert.True(t, net.Equal(dec("700.00")), "got %s", net)
}

func TestCloseYear_NetIncome(t *testing.T) {
	f := newFixture(t)
	f.post(t, f.cash.ID, f.revenue.ID, 5, "1000.00")
	f.post(t, f.expense.ID, f.cash.ID, 10, "300.00")

	result := f.closeYear(t)
	require.True(t, result.EntryCreated)
	assert.True(t, result.NetIncome.Equal(dec("700.00")))
	assert.Equal(t, model.StatusPosted, result.Entry.Status)
	assert.Equal(t, "closing", result.Entry.SourceType)
	assert.Equal(t, date(2025, 12, 31), result.Entry.EntryDate)

	// Income-statement accounts zeroed, net income moved to retained earnings.
	assert.True(t, f.balance(t, f.revenue.ID).IsZero())
	assert.True(t, f.balance(t, f.expense.ID).IsZero())
	assert.True(t, f.balance(t, f.retained.ID).Equal(dec("700.00")))
	assert.True(t, f.balance(t, f.cash.ID).Equal(dec("700.00")), "cash untouched by the close")
}

func TestCloseYear_NetLoss(t *testing.T) {
	f := newFixture(t)
	f.post(t, f.cash.ID, f.revenue.ID, 5, "200.00")
	f.post(t, f.expense.ID, f.cash.ID, 10, "500.00")

	result := f.closeYear(t)
	require.True(t, result.EntryCreated)
	assert.True(t, result.NetIncome.Equal(dec("-300.00")))

	assert.True(t, f.balance(t, f.revenue.ID).IsZero())
	assert.True(t, f.balance(t, f.expense.ID).IsZero())
	assert.True(t, f.balance(t, f.retained.ID).Equal(dec("-300.00")), "loss debits retained earnings")
}

func TestCloseYear_NoActivity(t *testing.T) {
	f := newFixture(t)
	result := f.closeYear(t)
	assert.False(t, result.EntryCreated)
	assert.True(t, result.NetIncome.IsZero())
}

func TestCloseYear_EntryBalances(t *testing.T) {
	f := newFixture(t)
	f.post(t, f.cash.ID, f.revenue.ID, 5, "123.45")
	f.post(t, f.expense.ID, f.cash.ID, 10, "67.89")

	result := f.closeYear(t)
	require.True(t, result.EntryCreated)
	assert.True(t, result.Entry.IsBalanced())
	require.Len(t, result.Entry.Lines, 3, "one per revenue, one per expense, one for retained earnings")
}

func TestCloseYear_RevenueWithDebits(t *testing.T) {
	f := newFixture(t)
	// A refund debits revenue; the close must net it, not double-count it.
	f.post(t, f.cash.ID, f.revenue.ID, 5, "1000.00")
	f.post(t, f.revenue.ID, f.cash.ID, 10, "100.00")

	result := f.closeYear(t)
	require.True(t, result.EntryCreated)
	assert.True(t, result.NetIncome.Equal(dec("900.00")))
	assert.True(t, f.balance(t, f.revenue.ID).IsZero())
	assert.True(t, f.balance(t, f.retained.ID).Equal(dec("900.00")))
}
