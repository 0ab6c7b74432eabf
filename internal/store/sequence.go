package store

import (
	"context"
	"fmt"
)

// Sequence names used by the journal engine.
const (
	SeqJournalEntry = "journal_entry"
)

// NextSequence increments and returns the named per-tenant counter. The
// upsert runs inside the caller's transaction, so concurrent posters can
// never observe the same value and a rolled-back mutation releases its
// number with the rest of the unit of work.
func (q *Queries) NextSequence(ctx context.Context, tenantID, name string) (int64, error) {
	var value int64
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO sequences (tenant_id, name, value) VALUES (?, ?, 1)
		ON CONFLICT (tenant_id, name) DO UPDATE SET value = value + 1
		RETURNING value`, tenantID, name).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("advancing sequence %s: %w", name, err)
	}
	return value, nil
}

// FormatEntryNumber renders an entry number like "JE-2025-000042". Reversals
// use the "RV" prefix so they are distinguishable at a glance.
func FormatEntryNumber(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%04d-%06d", prefix, year, seq)
}
