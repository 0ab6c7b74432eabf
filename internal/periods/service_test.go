package periods

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
	"github.com/openbooks-dev/openbooks/internal/closing"
	"github.com/openbooks-dev/openbooks/internal/config"
	"github.com/openbooks-dev/openbooks/internal/errs"
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
	periods  *Service
	journal  *journal.Service
	accounts *accounts.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	log := zap.NewNop()
	journalSvc := journal.NewService(st, events.Nop{}, log)
	return &fixture{
		periods:  NewService(st, closing.NewService(st, journalSvc), journalSvc, events.Nop{}, log),
		journal:  journalSvc,
		accounts: accounts.NewService(st, events.Nop{}, log, config.DefaultInference()),
	}
}

func TestMonthlyPeriods_CalendarYear(t *testing.T) {
	ranges := monthlyPeriods(date(2025, 1, 1), date(2025, 12, 31))
	require.Len(t, ranges, 12)
	assert.Equal(t, date(2025, 1, 1), ranges[0].start)
	assert.Equal(t, date(2025, 1, 31), ranges[0].end)
	assert.Equal(t, date(2025, 2, 28), ranges[1].end)
	assert.Equal(t, date(2025, 12, 31), ranges[11].end)

	// Contiguous: each period starts the day after the previous one ends.
	for i := 1; i < len(ranges); i++ {
		assert.Equal(t, ranges[i-1].end.AddDate(0, 0, 1), ranges[i].start)
	}
}

func TestMonthlyPeriods_MidMonthStart(t *testing.T) {
	ranges := monthlyPeriods(date(2025, 7, 15), date(2026, 7, 14))
	assert.Equal(t, date(2025, 7, 15), ranges[0].start)
	assert.Equal(t, date(2025, 7, 31), ranges[0].end, "first period runs to month end")
	last := ranges[len(ranges)-1]
	assert.Equal(t, date(2026, 7, 14), last.end, "last period clamped to the year end")
	for i := 1; i < len(ranges); i++ {
		assert.Equal(t, ranges[i-1].end.AddDate(0, 0, 1), ranges[i].start)
	}
}

func TestCreateFiscalYear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	year, periods, err := f.periods.CreateFiscalYear(ctx, tenant, "", date(2025, 1, 1), date(2025, 12, 31))
	require.NoError(t, err)
	assert.Equal(t, "FY2025", year.Name, "name defaults to the end year")
	assert.True(t, year.IsActive)
	require.Len(t, periods, 12)
	assert.Equal(t, 1, periods[0].PeriodNumber)
	assert.Equal(t, model.PeriodOpen, periods[0].Status)

	// Stored, not just returned.
	listed, err := f.periods.ListPeriods(ctx, tenant, year.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 12)
}

func TestCreateFiscalYear_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.periods.CreateFiscalYear(ctx, tenant, "", date(2025, 12, 31), date(2025, 1, 1))
	assert.True(t, errs.IsKind(err, errs.KindValidation), "start after end")

	_, _, err = f.periods.CreateFiscalYear(ctx, tenant, "", date(2025, 1, 1), date(2025, 12, 31))
	require.NoError(t, err)

	_, _, err = f.periods.CreateFiscalYear(ctx, tenant, "", date(2025, 6, 1), date(2026, 5, 31))
	assert.True(t, errs.IsKind(err, errs.KindConflict), "overlapping year")

	// Adjacent year is fine.
	_, _, err = f.periods.CreateFiscalYear(ctx, tenant, "", date(2026, 1, 1), date(2026, 12, 31))
	assert.NoError(t, err)
}

func TestClosePeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, periods, err := f.periods.CreateFiscalYear(ctx, tenant, "", date(2025, 1, 1), date(2025, 12, 31))
	require.NoError(t, err)
	january := periods[0]

	require.NoError(t, f.periods.ClosePeriod(ctx, tenant, january.ID, false))

	err = f.periods.ClosePeriod(ctx, tenant, january.ID, false)
	assert.True(t, errs.IsKind(err, errs.KindInvalidState), "already closed")

	require.NoError(t, f.periods.ReopenPeriod(ctx, tenant, january.ID))
	err = f.periods.ReopenPeriod(ctx, tenant, january.ID)
	assert.True(t, errs.IsKind(err, errs.KindInvalidState), "not closed")
}

func TestClosePeriod_DraftsBlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, periods, err := f.periods.CreateFiscalYear(ctx, tenant, "", date(2025, 1, 1), date(2025, 12, 31))
	require.NoError(t, err)
	january := periods[0]

	cash, err := f.accounts.Create(ctx, tenant, accounts.CreateParams{Code: "1010", Name: "Cash"})
	require.NoError(t, err)
	revenue, err := f.accounts.Create(ctx, tenant, accounts.CreateParams{Code: "6010", Name: "Sales"})
	require.NoError(t, err)
	_, err = f.journal.CreateDraft(ctx, tenant, journal.DraftParams{
		EntryDate: date(2025, 1, 15),
		Lines: []journal.LineParams{
			{AccountID: cash.ID, Debit: dec("100.00")},
			{AccountID: revenue.ID, Credit: dec("100.00")},
		},
	})
	require.NoError(t, err)

	err = f.periods.ClosePeriod(ctx, tenant, january.ID, false)
	assert.True(t, errs.IsKind(err, errs.KindOpenEntries))

	// Force-close succeeds with the draft still in place.
	require.NoError(t, f.periods.ClosePeriod(ctx, tenant, january.ID, true))
}

func TestCloseFiscalYear_RequiresAllPeriodsClosed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	year, periods, err := f.periods.CreateFiscalYear(ctx, tenant, "", date(2025, 1, 1), date(2025, 12, 31))
	require.NoError(t, err)

	re, err := f.accounts.Create(ctx, tenant, accounts.CreateParams{Code: "5900", Name: "Retained Earnings"})
	require.NoError(t, err)

	_, err = f.periods.CloseFiscalYear(ctx, tenant, year.ID, re.ID)
	assert.True(t, errs.IsKind(err, errs.KindInvalidState), "open periods block the close")

	for _, p := range periods {
		require.NoError(t, f.periods.ClosePeriod(ctx, tenant, p.ID, false))
	}

	result, err := f.periods.CloseFiscalYear(ctx, tenant, year.ID, re.ID)
	require.NoError(t, err)
	assert.False(t, result.EntryCreated, "no activity, no closing entry")
	assert.True(t, result.NetIncome.IsZero())

	got, err := f.periods.GetFiscalYear(ctx, tenant, year.ID)
	require.NoError(t, err)
	assert.True(t, got.IsClosed)
	assert.False(t, got.IsActive)

	_, err = f.periods.CloseFiscalYear(ctx, tenant, year.ID, re.ID)
	assert.True(t, errs.IsKind(err, errs.KindInvalidState), "year close is terminal")

	err = f.periods.ReopenPeriod(ctx, tenant, periods[0].ID)
	assert.True(t, errs.IsKind(err, errs.KindInvalidState), "closed year pins its periods")
}

func TestCloseFiscalYear_ClosingEntryLandsInClosedPeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	year, periods, err := f.periods.CreateFiscalYear(ctx, tenant, "", date(2025, 1, 1), date(2025, 12, 31))
	require.NoError(t, err)

	cash, err := f.accounts.Create(ctx, tenant, accounts.CreateParams{Code: "1010", Name: "Cash"})
	require.NoError(t, err)
	revenue, err := f.accounts.Create(ctx, tenant, accounts.CreateParams{Code: "6010", Name: "Sales"})
	require.NoError(t, err)
	re, err := f.accounts.Create(ctx, tenant, accounts.CreateParams{Code: "5900", Name: "Retained Earnings"})
	require.NoError(t, err)

	entry, err := f.journal.CreateDraft(ctx, tenant, journal.DraftParams{
		EntryDate: date(2025, 3, 15),
		Lines: []journal.LineParams{
			{AccountID: cash.ID, Debit: dec("1000.00")},
			{AccountID: revenue.ID, Credit: dec("1000.00")},
		},
	})
	require.NoError(t, err)
	_, err = f.journal.Post(ctx, tenant, entry.ID)
	require.NoError(t, err)

	for _, p := range periods {
		require.NoError(t, f.periods.ClosePeriod(ctx, tenant, p.ID, false))
	}

	// Every period is closed, so the year-end entry (dated Dec 31) can only
	// post through the closing engine's override.
	result, err := f.periods.CloseFiscalYear(ctx, tenant, year.ID, re.ID)
	require.NoError(t, err)
	require.True(t, result.EntryCreated)
	assert.True(t, result.NetIncome.Equal(dec("1000.00")))
	assert.Equal(t, model.StatusPosted, result.Entry.Status)
	assert.Equal(t, periods[11].ID, result.Entry.FiscalPeriodID, "attributed to the closed December period")

	got, err := f.periods.GetFiscalYear(ctx, tenant, year.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Entry.ID, got.ClosingEntryID)

	revenueBalance, err := f.accounts.Balance(ctx, tenant, revenue.ID, date(2025, 12, 31))
	require.NoError(t, err)
	assert.True(t, revenueBalance.IsZero(), "revenue zeroed by the close")
	reBalance, err := f.accounts.Balance(ctx, tenant, re.ID, date(2025, 12, 31))
	require.NoError(t, err)
	assert.True(t, reBalance.Equal(dec("1000.00")), "net income moved to retained earnings")
}
