// Package store is the SQLite persistence layer. Every statement is a fixed
// parameterized query scoped by tenant_id. Multi-step mutations run through
// WithTx so either every write commits or none does.
//
// The ledger_entries table is append-only: no UPDATE or DELETE statement for
// it exists anywhere in this package. Corrections are new, opposite rows
// written by reversal postings.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// dateLayout is how entry and period dates are stored. Plain ISO dates sort
// lexicographically, so BETWEEN on TEXT columns behaves correctly.
const dateLayout = "2006-01-02"

// Store wraps the SQLite handle.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and migrates the
// schema. WAL mode keeps readers unblocked by the single writer;
// busy_timeout makes contended writers queue instead of failing.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection sidesteps SQLITE_BUSY between pooled writers; the
	// database serializes writes anyway.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries exposes the data-access methods, bound either to the database
// (plain reads) or to a transaction (inside WithTx).
type Queries struct {
	db querier
}

// Q returns Queries bound to the database, for read paths that do not need a
// transaction.
func (s *Store) Q() *Queries {
	return &Queries{db: s.db}
}

// WithTx runs fn inside a single transaction. Any error (or panic) rolls the
// whole unit of work back; there is no partially-applied state visible to
// other readers.
func (s *Store) WithTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Queries{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func migrate(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id             TEXT PRIMARY KEY,
	tenant_id      TEXT NOT NULL,
	code           TEXT NOT NULL,
	name           TEXT NOT NULL,
	type           TEXT NOT NULL,
	normal_balance TEXT NOT NULL,
	parent_id      TEXT NOT NULL DEFAULT '',
	is_header      INTEGER NOT NULL DEFAULT 0,
	is_active      INTEGER NOT NULL DEFAULT 1,
	description    TEXT NOT NULL DEFAULT '',
	opening_cents  INTEGER NOT NULL DEFAULT 0,
	balance_cents  INTEGER NOT NULL DEFAULT 0,
	created_at     TIMESTAMP NOT NULL,
	updated_at     TIMESTAMP NOT NULL,
	UNIQUE (tenant_id, code)
);

CREATE TABLE IF NOT EXISTS journal_entries (
	id                TEXT PRIMARY KEY,
	tenant_id         TEXT NOT NULL,
	entry_number      TEXT NOT NULL,
	entry_date        TEXT NOT NULL,
	description       TEXT NOT NULL DEFAULT '',
	status            TEXT NOT NULL,
	total_debit_cents  INTEGER NOT NULL DEFAULT 0,
	total_credit_cents INTEGER NOT NULL DEFAULT 0,
	fiscal_period_id  TEXT NOT NULL DEFAULT '',
	source_type       TEXT NOT NULL DEFAULT '',
	source_id         TEXT NOT NULL DEFAULT '',
	reversed_entry_id TEXT NOT NULL DEFAULT '',
	is_reversing      INTEGER NOT NULL DEFAULT 0,
	posted_at         TIMESTAMP,
	created_at        TIMESTAMP NOT NULL,
	UNIQUE (tenant_id, entry_number)
);

CREATE TABLE IF NOT EXISTS journal_lines (
	id          TEXT PRIMARY KEY,
	entry_id    TEXT NOT NULL REFERENCES journal_entries(id),
	account_id  TEXT NOT NULL REFERENCES accounts(id),
	line_no     INTEGER NOT NULL,
	debit_cents  INTEGER NOT NULL DEFAULT 0,
	credit_cents INTEGER NOT NULL DEFAULT 0,
	description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS ledger_entries (
	id               TEXT PRIMARY KEY,
	tenant_id        TEXT NOT NULL,
	account_id       TEXT NOT NULL REFERENCES accounts(id),
	fiscal_period_id TEXT NOT NULL DEFAULT '',
	entry_date       TEXT NOT NULL,
	debit_cents      INTEGER NOT NULL DEFAULT 0,
	credit_cents     INTEGER NOT NULL DEFAULT 0,
	entry_number     TEXT NOT NULL,
	source_type      TEXT NOT NULL DEFAULT '',
	source_id        TEXT NOT NULL DEFAULT '',
	description      TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ledger_account_date
	ON ledger_entries (tenant_id, account_id, entry_date);

CREATE TABLE IF NOT EXISTS fiscal_years (
	id               TEXT PRIMARY KEY,
	tenant_id        TEXT NOT NULL,
	name             TEXT NOT NULL,
	start_date       TEXT NOT NULL,
	end_date         TEXT NOT NULL,
	is_active        INTEGER NOT NULL DEFAULT 1,
	is_closed        INTEGER NOT NULL DEFAULT 0,
	closing_entry_id TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS fiscal_periods (
	id             TEXT PRIMARY KEY,
	tenant_id      TEXT NOT NULL,
	fiscal_year_id TEXT NOT NULL REFERENCES fiscal_years(id),
	period_number  INTEGER NOT NULL,
	start_date     TEXT NOT NULL,
	end_date       TEXT NOT NULL,
	status         TEXT NOT NULL DEFAULT 'open'
);
CREATE INDEX IF NOT EXISTS idx_periods_tenant_dates
	ON fiscal_periods (tenant_id, start_date, end_date);

CREATE TABLE IF NOT EXISTS sequences (
	tenant_id TEXT NOT NULL,
	name      TEXT NOT NULL,
	value     INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (tenant_id, name)
);
`
	_, err := db.Exec(schema)
	return err
}

// Amounts are validated to at most two decimal places before reaching the
// store, so integer cents round-trip exactly and SUM() works in SQL.

func toCents(d decimal.Decimal) int64 {
	return d.Shift(2).IntPart()
}

func fromCents(n int64) decimal.Decimal {
	return decimal.New(n, -2)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func dateStr(t time.Time) string {
	return t.Format(dateLayout)
}

func parseDate(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}
