package importer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
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

type fixture struct {
	importer *Service
	journal  *journal.Service
	accounts *accounts.Service
	store    *store.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	log := zap.NewNop()
	journalSvc := journal.NewService(st, events.Nop{}, log)
	f := &fixture{
		importer: NewService(st, journalSvc, log),
		journal:  journalSvc,
		accounts: accounts.NewService(st, events.Nop{}, log, config.DefaultInference()),
		store:    st,
	}
	ctx := context.Background()
	for _, a := range []struct{ code, name string }{
		{"1010", "Cash"}, {"6010", "Sales"}, {"8020", "Software"},
	} {
		_, err := f.accounts.Create(ctx, tenant, accounts.CreateParams{Code: a.code, Name: a.name})
		require.NoError(t, err)
	}
	return f
}

const sampleCSV = `date,description,debit_account,credit_account,amount,reference
2025-01-15,GitHub subscription,8020,1010,4.00,INV-1001
2025-01-20,Client payment,1010,6010,1500.00,INV-1002
`

func TestImport_Posted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.importer.Import(ctx, tenant, strings.NewReader(sampleCSV), &JournalCSVParser{}, true)
	require.NoError(t, err)
	require.Len(t, result.Entries, 2)
	assert.Equal(t, 2, result.Posted)
	for _, e := range result.Entries {
		assert.Equal(t, model.StatusPosted, e.Status)
		assert.Equal(t, "import", e.SourceType)
	}
	assert.Equal(t, result.Entries[0].SourceID, result.Entries[1].SourceID, "one batch id per file")

	cash, err := f.accounts.Balance(ctx, tenant, mustID(t, f, "1010"), time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, cash.Equal(dec("1496.00")), "got %s", cash)
}

func TestImport_DraftOnly(t *testing.T) {
	f := newFixture(t)
	result, err := f.importer.Import(context.Background(), tenant, strings.NewReader(sampleCSV), &JournalCSVParser{}, false)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Posted)
	for _, e := range result.Entries {
		assert.Equal(t, model.StatusDraft, e.Status)
	}
}

func TestImport_BadRowRollsBackFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	badCSV := `date,description,debit_account,credit_account,amount,reference
2025-01-15,GitHub subscription,8020,1010,4.00,INV-1001
2025-01-20,Mystery,9999,1010,10.00,
`
	_, err := f.importer.Import(ctx, tenant, strings.NewReader(badCSV), &JournalCSVParser{}, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")

	// The good first row must not survive.
	drafts, err := f.journal.ListByStatus(ctx, tenant, model.StatusDraft, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, drafts)
	posted, err := f.journal.ListByStatus(ctx, tenant, model.StatusPosted, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, posted)

	cash, err := f.accounts.Balance(ctx, tenant, mustID(t, f, "1010"), time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, cash.IsZero())
}

func TestImport_ParseErrorImportsNothing(t *testing.T) {
	f := newFixture(t)
	_, err := f.importer.Import(context.Background(), tenant, strings.NewReader("not,a,header\n"), &JournalCSVParser{}, true)
	require.Error(t, err)
}

func mustID(t *testing.T, f *fixture, code string) string {
	t.Helper()
	a, err := f.accounts.GetByCode(context.Background(), tenant, code)
	require.NoError(t, err)
	return a.ID
}

func TestScanAndMarkProcessed(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "import"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "import", "jan.csv"), []byte(sampleCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "import", "notes.txt"), []byte("skip me"), 0o644))

	files, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "jan.csv", files[0].Name)

	require.NoError(t, MarkProcessed(root, "jan.csv"))
	files, err = Scan(root)
	require.NoError(t, err)
	assert.Empty(t, files)
	_, err = os.Stat(filepath.Join(root, "import", "processed", "jan.csv"))
	assert.NoError(t, err)
}

func TestScan_MissingDir(t *testing.T) {
	files, err := Scan(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, files)
}
