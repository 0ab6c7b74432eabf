package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus represents the lifecycle state of a journal entry.
type EntryStatus string

const (
	StatusDraft    EntryStatus = "draft"
	StatusPosted   EntryStatus = "posted"
	StatusReversed EntryStatus = "reversed"
	StatusVoided   EntryStatus = "voided"
)

// BalanceEpsilon is the tolerance applied when comparing debit and credit
// totals. Amounts are validated to two decimal places, so anything beyond a
// cent of drift is a real imbalance.
var BalanceEpsilon = decimal.New(1, -2) // 0.01

// JournalEntry is the header of a double-entry transaction.
type JournalEntry struct {
	ID              string
	TenantID        string
	EntryNumber     string // assigned at draft creation from the tenant sequence
	EntryDate       time.Time
	Description     string
	Status          EntryStatus
	TotalDebit      decimal.Decimal
	TotalCredit     decimal.Decimal
	FiscalPeriodID  string // empty when no period covered the entry date at posting
	SourceType      string // originating module, e.g. "manual", "import", "closing"
	SourceID        string
	ReversedEntryID string // on a reversal: the original; on a reversed original: the reversal
	IsReversing     bool
	PostedAt        *time.Time
	CreatedAt       time.Time
	Lines           []JournalLine
}

// IsBalanced reports whether total debits equal total credits within
// BalanceEpsilon.
func (e JournalEntry) IsBalanced() bool {
	return e.TotalDebit.Sub(e.TotalCredit).Abs().LessThanOrEqual(BalanceEpsilon)
}

// JournalLine is a single debit or credit row belonging to one entry.
// Exactly one of Debit/Credit is non-zero.
type JournalLine struct {
	ID          string
	EntryID     string
	AccountID   string
	LineNo      int
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}
