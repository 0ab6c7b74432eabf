package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openbooks-dev/openbooks/internal/model"
)

// InsertLedgerEntry appends one immutable posted line. This is the only
// statement that touches ledger_entries outside of SELECTs.
func (q *Queries) InsertLedgerEntry(ctx context.Context, le model.LedgerEntry) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO ledger_entries (id, tenant_id, account_id, fiscal_period_id, entry_date,
			debit_cents, credit_cents, entry_number, source_type, source_id, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		le.ID, le.TenantID, le.AccountID, le.FiscalPeriodID, dateStr(le.EntryDate),
		toCents(le.Debit), toCents(le.Credit), le.EntryNumber, le.SourceType, le.SourceID,
		le.Description, le.CreatedAt)
	if err != nil {
		return fmt.Errorf("appending ledger entry for %s: %w", le.AccountID, err)
	}
	return nil
}

// LedgerEntries returns an account's ledger rows within [start, end] in
// chronological order (entry date, then insertion order as tie-break).
func (q *Queries) LedgerEntries(ctx context.Context, tenantID, accountID string, start, end time.Time, limit, offset int) ([]model.LedgerEntry, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, tenant_id, account_id, fiscal_period_id, entry_date,
			debit_cents, credit_cents, entry_number, source_type, source_id, description, created_at
		FROM ledger_entries
		WHERE tenant_id = ? AND account_id = ? AND entry_date BETWEEN ? AND ?
		ORDER BY entry_date, rowid
		LIMIT ? OFFSET ?`,
		tenantID, accountID, dateStr(start), dateStr(end), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing ledger entries for %s: %w", accountID, err)
	}
	defer rows.Close()

	var entries []model.LedgerEntry
	for rows.Next() {
		var le model.LedgerEntry
		var entryDate string
		var debit, credit int64
		if err := rows.Scan(&le.ID, &le.TenantID, &le.AccountID, &le.FiscalPeriodID, &entryDate,
			&debit, &credit, &le.EntryNumber, &le.SourceType, &le.SourceID, &le.Description, &le.CreatedAt); err != nil {
			return nil, err
		}
		le.EntryDate = parseDate(entryDate)
		le.Debit = fromCents(debit)
		le.Credit = fromCents(credit)
		entries = append(entries, le)
	}
	return entries, rows.Err()
}

// AccountActivity sums an account's posted debits and credits up to and
// including asOf.
func (q *Queries) AccountActivity(ctx context.Context, tenantID, accountID string, asOf time.Time) (debit, credit decimal.Decimal, err error) {
	var d, c int64
	err = q.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(debit_cents), 0), COALESCE(SUM(credit_cents), 0)
		FROM ledger_entries
		WHERE tenant_id = ? AND account_id = ? AND entry_date <= ?`,
		tenantID, accountID, dateStr(asOf)).Scan(&d, &c)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("summing activity of %s: %w", accountID, err)
	}
	return fromCents(d), fromCents(c), nil
}

// AccountActivityBefore sums an account's posted debits and credits strictly
// before start. Used for a statement's opening balance.
func (q *Queries) AccountActivityBefore(ctx context.Context, tenantID, accountID string, start time.Time) (debit, credit decimal.Decimal, err error) {
	var d, c int64
	err = q.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(debit_cents), 0), COALESCE(SUM(credit_cents), 0)
		FROM ledger_entries
		WHERE tenant_id = ? AND account_id = ? AND entry_date < ?`,
		tenantID, accountID, dateStr(start)).Scan(&d, &c)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("summing pre-range activity of %s: %w", accountID, err)
	}
	return fromCents(d), fromCents(c), nil
}

// Activity is a summed debit/credit pair.
type Activity struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// ActivityTotals sums posted debits and credits per account up to and
// including asOf, for the whole tenant in one pass. Accounts with no
// postings are absent from the map.
func (q *Queries) ActivityTotals(ctx context.Context, tenantID string, asOf time.Time) (map[string]Activity, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT account_id, COALESCE(SUM(debit_cents), 0), COALESCE(SUM(credit_cents), 0)
		FROM ledger_entries
		WHERE tenant_id = ? AND entry_date <= ?
		GROUP BY account_id`,
		tenantID, dateStr(asOf))
	if err != nil {
		return nil, fmt.Errorf("summing tenant activity: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]Activity)
	for rows.Next() {
		var accountID string
		var d, c int64
		if err := rows.Scan(&accountID, &d, &c); err != nil {
			return nil, err
		}
		totals[accountID] = Activity{Debit: fromCents(d), Credit: fromCents(c)}
	}
	return totals, rows.Err()
}

// TypeActivity is the net posted movement of one account of a given type
// over a date range.
type TypeActivity struct {
	AccountID string
	Code      string
	Name      string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// ActivityByType returns, for every account of the given type with nonzero
// activity in [start, end], its summed debits and credits. Drives year-end
// closing.
func (q *Queries) ActivityByType(ctx context.Context, tenantID string, accountType model.AccountType, start, end time.Time) ([]TypeActivity, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT a.id, a.code, a.name,
			COALESCE(SUM(l.debit_cents), 0), COALESCE(SUM(l.credit_cents), 0)
		FROM accounts a
		JOIN ledger_entries l ON l.tenant_id = a.tenant_id AND l.account_id = a.id
		WHERE a.tenant_id = ? AND a.type = ? AND l.entry_date BETWEEN ? AND ?
		GROUP BY a.id, a.code, a.name
		HAVING SUM(l.debit_cents) <> SUM(l.credit_cents)
		ORDER BY a.code`,
		tenantID, string(accountType), dateStr(start), dateStr(end))
	if err != nil {
		return nil, fmt.Errorf("summing %s activity: %w", accountType, err)
	}
	defer rows.Close()

	var result []TypeActivity
	for rows.Next() {
		var ta TypeActivity
		var d, c int64
		if err := rows.Scan(&ta.AccountID, &ta.Code, &ta.Name, &d, &c); err != nil {
			return nil, err
		}
		ta.Debit = fromCents(d)
		ta.Credit = fromCents(c)
		result = append(result, ta)
	}
	return result, rows.Err()
}
