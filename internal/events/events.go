// Package events announces committed ledger activity to other modules over a
// message bus. Publishing is fire-and-forget: the underlying transaction has
// already committed, so a publish failure is logged and ignored, never
// propagated to the caller.
package events

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Subjects other modules subscribe to.
const (
	SubjectAccountCreated   = "account.created"
	SubjectLedgerPosted     = "ledger.posted"
	SubjectPeriodClosed     = "period.closed"
	SubjectFiscalYearClosed = "fiscal_year.closed"
)

// AccountCreated is the payload for account.created.
type AccountCreated struct {
	TenantID  string    `json:"tenant_id"`
	AccountID string    `json:"account_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	At        time.Time `json:"at"`
}

// LedgerPosted is the payload for ledger.posted.
type LedgerPosted struct {
	TenantID    string    `json:"tenant_id"`
	EntryID     string    `json:"entry_id"`
	EntryNumber string    `json:"entry_number"`
	EntryDate   time.Time `json:"entry_date"`
	TotalDebit  string    `json:"total_debit"`
	TotalCredit string    `json:"total_credit"`
	Lines       int       `json:"lines"`
	At          time.Time `json:"at"`
}

// PeriodClosed is the payload for period.closed.
type PeriodClosed struct {
	TenantID     string    `json:"tenant_id"`
	PeriodID     string    `json:"period_id"`
	FiscalYearID string    `json:"fiscal_year_id"`
	PeriodNumber int       `json:"period_number"`
	Forced       bool      `json:"forced"`
	At           time.Time `json:"at"`
}

// FiscalYearClosed is the payload for fiscal_year.closed.
type FiscalYearClosed struct {
	TenantID       string    `json:"tenant_id"`
	FiscalYearID   string    `json:"fiscal_year_id"`
	ClosingEntryID string    `json:"closing_entry_id"`
	NetIncome      string    `json:"net_income"`
	At             time.Time `json:"at"`
}

// Publisher sends one event to the bus.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
	Close()
}

// Emit publishes and logs (rather than returns) any failure. Services call
// this after their transaction has committed.
func Emit(ctx context.Context, pub Publisher, log *zap.Logger, subject string, payload any) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, subject, payload); err != nil {
		log.Warn("event publish failed",
			zap.String("subject", subject),
			zap.Error(err))
	}
}

// Nop is a Publisher that discards everything. Used when no bus is
// configured and in tests.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
func (Nop) Close()                                     {}
