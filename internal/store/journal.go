package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/openbooks-dev/openbooks/internal/errs"
	"github.com/openbooks-dev/openbooks/internal/model"
)

const entryColumns = `id, tenant_id, entry_number, entry_date, description, status,
	total_debit_cents, total_credit_cents, fiscal_period_id, source_type, source_id,
	reversed_entry_id, is_reversing, posted_at, created_at`

// InsertJournalEntry writes a new entry header. Lines are inserted
// separately via InsertJournalLine.
func (q *Queries) InsertJournalEntry(ctx context.Context, e model.JournalEntry) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO journal_entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.TenantID, e.EntryNumber, dateStr(e.EntryDate), e.Description, string(e.Status),
		toCents(e.TotalDebit), toCents(e.TotalCredit), e.FiscalPeriodID, e.SourceType, e.SourceID,
		e.ReversedEntryID, boolInt(e.IsReversing), e.PostedAt, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting journal entry %s: %w", e.EntryNumber, err)
	}
	return nil
}

// InsertJournalLine writes one line of an entry.
func (q *Queries) InsertJournalLine(ctx context.Context, l model.JournalLine) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO journal_lines (id, entry_id, account_id, line_no, debit_cents, credit_cents, description)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.EntryID, l.AccountID, l.LineNo, toCents(l.Debit), toCents(l.Credit), l.Description)
	if err != nil {
		return fmt.Errorf("inserting journal line %d: %w", l.LineNo, err)
	}
	return nil
}

// GetJournalEntry fetches an entry header and its lines.
func (q *Queries) GetJournalEntry(ctx context.Context, tenantID, id string) (model.JournalEntry, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE tenant_id = ? AND id = ?`, tenantID, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.JournalEntry{}, errs.NotFound("journal entry %s", id)
	}
	if err != nil {
		return model.JournalEntry{}, err
	}

	lines, err := q.listLines(ctx, id)
	if err != nil {
		return model.JournalEntry{}, err
	}
	e.Lines = lines
	return e, nil
}

// ListEntriesByStatus returns the tenant's entries in one status, newest
// first.
func (q *Queries) ListEntriesByStatus(ctx context.Context, tenantID string, status model.EntryStatus, limit, offset int) ([]model.JournalEntry, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+entryColumns+` FROM journal_entries
		WHERE tenant_id = ? AND status = ?
		ORDER BY entry_date DESC, created_at DESC
		LIMIT ? OFFSET ?`, tenantID, string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing %s entries: %w", status, err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// CountDraftsInRange counts draft entries dated within [start, end]. Used by
// the period-close gate.
func (q *Queries) CountDraftsInRange(ctx context.Context, tenantID string, start, end time.Time) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM journal_entries
		WHERE tenant_id = ? AND status = ? AND entry_date BETWEEN ? AND ?`,
		tenantID, string(model.StatusDraft), dateStr(start), dateStr(end)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting drafts in range: %w", err)
	}
	return n, nil
}

// MarkEntryPosted flips an entry to posted, recording its period attribution
// and posting time. Runs inside the posting transaction.
func (q *Queries) MarkEntryPosted(ctx context.Context, tenantID, id, fiscalPeriodID string, postedAt time.Time) error {
	return q.setEntryStatus(ctx, tenantID, id, `
		UPDATE journal_entries SET status = ?, fiscal_period_id = ?, posted_at = ?
		WHERE tenant_id = ? AND id = ?`,
		string(model.StatusPosted), fiscalPeriodID, postedAt, tenantID, id)
}

// MarkEntryReversed flips a posted entry to reversed, linking the reversal.
func (q *Queries) MarkEntryReversed(ctx context.Context, tenantID, id, reversalID string) error {
	return q.setEntryStatus(ctx, tenantID, id, `
		UPDATE journal_entries SET status = ?, reversed_entry_id = ?
		WHERE tenant_id = ? AND id = ?`,
		string(model.StatusReversed), reversalID, tenantID, id)
}

// MarkEntryVoided flips a draft entry to voided.
func (q *Queries) MarkEntryVoided(ctx context.Context, tenantID, id string) error {
	return q.setEntryStatus(ctx, tenantID, id, `
		UPDATE journal_entries SET status = ? WHERE tenant_id = ? AND id = ?`,
		string(model.StatusVoided), tenantID, id)
}

func (q *Queries) setEntryStatus(ctx context.Context, tenantID, id, query string, args ...any) error {
	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating journal entry %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return errs.NotFound("journal entry %s", id)
	}
	return nil
}

func (q *Queries) listLines(ctx context.Context, entryID string) ([]model.JournalLine, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, entry_id, account_id, line_no, debit_cents, credit_cents, description
		FROM journal_lines WHERE entry_id = ? ORDER BY line_no`, entryID)
	if err != nil {
		return nil, fmt.Errorf("listing lines of %s: %w", entryID, err)
	}
	defer rows.Close()

	var lines []model.JournalLine
	for rows.Next() {
		var l model.JournalLine
		var debit, credit int64
		if err := rows.Scan(&l.ID, &l.EntryID, &l.AccountID, &l.LineNo, &debit, &credit, &l.Description); err != nil {
			return nil, err
		}
		l.Debit = fromCents(debit)
		l.Credit = fromCents(credit)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func scanEntry(r rowScanner) (model.JournalEntry, error) {
	var e model.JournalEntry
	var status, entryDate string
	var totalDebit, totalCredit int64
	var isReversing int
	var postedAt sql.NullTime
	err := r.Scan(&e.ID, &e.TenantID, &e.EntryNumber, &entryDate, &e.Description, &status,
		&totalDebit, &totalCredit, &e.FiscalPeriodID, &e.SourceType, &e.SourceID,
		&e.ReversedEntryID, &isReversing, &postedAt, &e.CreatedAt)
	if err != nil {
		return model.JournalEntry{}, err
	}
	e.Status = model.EntryStatus(status)
	e.EntryDate = parseDate(entryDate)
	e.TotalDebit = fromCents(totalDebit)
	e.TotalCredit = fromCents(totalCredit)
	e.IsReversing = isReversing != 0
	if postedAt.Valid {
		t := postedAt.Time
		e.PostedAt = &t
	}
	return e, nil
}

func collectEntries(rows *sql.Rows) ([]model.JournalEntry, error) {
	var entries []model.JournalEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
