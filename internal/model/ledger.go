package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is one immutable posted line in the general ledger. Rows are
// created only by the posting transition and never updated or deleted;
// corrections happen through reversal entries.
type LedgerEntry struct {
	ID             string
	TenantID       string
	AccountID      string
	FiscalPeriodID string // empty when the posting date fell outside every period
	EntryDate      time.Time
	Debit          decimal.Decimal
	Credit         decimal.Decimal
	EntryNumber    string
	SourceType     string
	SourceID       string
	Description    string
	CreatedAt      time.Time
}

// StatementLine is a ledger entry paired with the running balance after it
// has been applied.
type StatementLine struct {
	Entry   LedgerEntry
	Balance decimal.Decimal
}
