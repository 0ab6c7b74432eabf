// Package journal is the journal engine: it validates draft entries and owns
// the posting state machine (draft → posted → reversed, draft → voided).
// Posting is the only code path that writes ledger rows or account balance
// deltas, and it does both inside one transaction.
package journal

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/openbooks-dev/openbooks/internal/errs"
	"github.com/openbooks-dev/openbooks/internal/events"
	"github.com/openbooks-dev/openbooks/internal/model"
	"github.com/openbooks-dev/openbooks/internal/store"
)

// Entry number prefixes. Reversals get their own prefix so they are
// distinguishable from ordinary entries at a glance.
const (
	PrefixEntry    = "JE"
	PrefixReversal = "RV"
)

// Service provides business logic for journal entries.
type Service struct {
	store *store.Store
	pub   events.Publisher
	log   *zap.Logger
}

// NewService creates a journal Service.
func NewService(st *store.Store, pub events.Publisher, log *zap.Logger) *Service {
	return &Service{store: st, pub: pub, log: log}
}

// LineParams is one line of a draft entry.
type LineParams struct {
	AccountID   string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// DraftParams holds parameters for creating a draft journal entry.
type DraftParams struct {
	EntryDate   time.Time
	Description string
	SourceType  string
	SourceID    string
	Lines       []LineParams
}

// PostOptions tunes the posting transition. AllowClosedPeriod is set only by
// the year-end closing engine, whose entry necessarily targets a date inside
// the final, already-closed period.
type PostOptions struct {
	AllowClosedPeriod bool
}

// CreateDraft validates and stores a draft entry. Totals are computed from
// the lines; the draft may be unbalanced until it is posted.
func (s *Service) CreateDraft(ctx context.Context, tenantID string, params DraftParams) (model.JournalEntry, error) {
	var entry model.JournalEntry
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		var err error
		entry, err = s.CreateDraftTx(ctx, q, tenantID, params, PrefixEntry, "", false)
		return err
	})
	if err != nil {
		return model.JournalEntry{}, err
	}
	return entry, nil
}

// CreateDraftTx is CreateDraft running inside an existing transaction.
// Exposed for callers (closing engine, bulk import) that compose the draft
// with further writes in one unit of work.
func (s *Service) CreateDraftTx(ctx context.Context, q *store.Queries, tenantID string, params DraftParams, prefix, reversedEntryID string, isReversing bool) (model.JournalEntry, error) {
	if params.EntryDate.IsZero() {
		return model.JournalEntry{}, errs.Validation("entry date is required")
	}

	entryID := uuid.NewString()
	lines := make([]model.JournalLine, len(params.Lines))
	totalDebit, totalCredit := decimal.Zero, decimal.Zero
	for i, lp := range params.Lines {
		lines[i] = model.JournalLine{
			ID:          uuid.NewString(),
			EntryID:     entryID,
			AccountID:   lp.AccountID,
			LineNo:      i + 1,
			Debit:       lp.Debit,
			Credit:      lp.Credit,
			Description: lp.Description,
		}
		totalDebit = totalDebit.Add(lp.Debit)
		totalCredit = totalCredit.Add(lp.Credit)
	}

	accountsByID, err := s.loadLineAccounts(ctx, q, tenantID, lines)
	if err != nil {
		return model.JournalEntry{}, err
	}
	if verrs := ValidateLines(lines, accountsByID); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, ve := range verrs {
			msgs[i] = ve.Error()
		}
		return model.JournalEntry{}, errs.Validation("validation failed: %s", strings.Join(msgs, "; "))
	}

	seq, err := q.NextSequence(ctx, tenantID, store.SeqJournalEntry)
	if err != nil {
		return model.JournalEntry{}, err
	}

	entry := model.JournalEntry{
		ID:              entryID,
		TenantID:        tenantID,
		EntryNumber:     store.FormatEntryNumber(prefix, params.EntryDate.Year(), seq),
		EntryDate:       params.EntryDate,
		Description:     params.Description,
		Status:          model.StatusDraft,
		TotalDebit:      totalDebit,
		TotalCredit:     totalCredit,
		SourceType:      params.SourceType,
		SourceID:        params.SourceID,
		ReversedEntryID: reversedEntryID,
		IsReversing:     isReversing,
		CreatedAt:       time.Now().UTC(),
		Lines:           lines,
	}

	if err := q.InsertJournalEntry(ctx, entry); err != nil {
		return model.JournalEntry{}, err
	}
	for _, line := range lines {
		if err := q.InsertJournalLine(ctx, line); err != nil {
			return model.JournalEntry{}, err
		}
	}
	return entry, nil
}

// Post transitions a draft to posted: one ledger row per line, the signed
// balance delta applied to each account, status flipped — all or nothing.
func (s *Service) Post(ctx context.Context, tenantID, entryID string) (model.JournalEntry, error) {
	var entry model.JournalEntry
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		var err error
		entry, err = s.PostTx(ctx, q, tenantID, entryID, PostOptions{})
		return err
	})
	if err != nil {
		return model.JournalEntry{}, err
	}
	s.emitPosted(ctx, entry)
	return entry, nil
}

// PostTx is the posting transition inside an existing transaction. The
// closing engine calls it with AllowClosedPeriod.
func (s *Service) PostTx(ctx context.Context, q *store.Queries, tenantID, entryID string, opts PostOptions) (model.JournalEntry, error) {
	entry, err := q.GetJournalEntry(ctx, tenantID, entryID)
	if err != nil {
		return model.JournalEntry{}, err
	}
	if entry.Status != model.StatusDraft {
		return model.JournalEntry{}, errs.InvalidState("entry %s is %s, only drafts can be posted", entry.EntryNumber, entry.Status)
	}
	if !entry.IsBalanced() {
		return model.JournalEntry{}, errs.Unbalanced("entry %s: debits %s != credits %s",
			entry.EntryNumber, entry.TotalDebit.StringFixed(2), entry.TotalCredit.StringFixed(2))
	}

	// Resolve the fiscal period. No matching period leaves the posting
	// unattributed (empty period id) rather than rejecting it; a matching
	// closed period rejects unless the closing engine overrides.
	periodID := ""
	period, found, err := q.PeriodForDate(ctx, tenantID, entry.EntryDate)
	if err != nil {
		return model.JournalEntry{}, err
	}
	if found {
		if period.Status == model.PeriodClosed && !opts.AllowClosedPeriod {
			return model.JournalEntry{}, errs.PeriodClosed("period %d is closed for date %s",
				period.PeriodNumber, entry.EntryDate.Format("2006-01-02"))
		}
		periodID = period.ID
	}

	now := time.Now().UTC()
	for _, line := range entry.Lines {
		account, err := q.GetAccount(ctx, tenantID, line.AccountID)
		if err != nil {
			return model.JournalEntry{}, err
		}
		if account.IsHeader {
			return model.JournalEntry{}, errs.Validation("account %s is a header and cannot receive postings", account.Code)
		}
		if !account.IsActive {
			return model.JournalEntry{}, errs.Validation("account %s is inactive", account.Code)
		}

		if err := q.InsertLedgerEntry(ctx, model.LedgerEntry{
			ID:             uuid.NewString(),
			TenantID:       tenantID,
			AccountID:      line.AccountID,
			FiscalPeriodID: periodID,
			EntryDate:      entry.EntryDate,
			Debit:          line.Debit,
			Credit:         line.Credit,
			EntryNumber:    entry.EntryNumber,
			SourceType:     entry.SourceType,
			SourceID:       entry.SourceID,
			Description:    line.Description,
			CreatedAt:      now,
		}); err != nil {
			return model.JournalEntry{}, err
		}
		if err := q.AddToBalance(ctx, tenantID, line.AccountID, account.SignedDelta(line.Debit, line.Credit), now); err != nil {
			return model.JournalEntry{}, err
		}
	}

	if err := q.MarkEntryPosted(ctx, tenantID, entry.ID, periodID, now); err != nil {
		return model.JournalEntry{}, err
	}

	entry.Status = model.StatusPosted
	entry.FiscalPeriodID = periodID
	entry.PostedAt = &now
	return entry, nil
}

// Reverse creates a compensating draft for a posted entry: every line's
// debit and credit swapped, entry number prefixed "RV". The original flips
// to reversed; the reversal stays a draft and must be explicitly posted, so
// it passes through the same balance and period gates as any other entry.
func (s *Service) Reverse(ctx context.Context, tenantID, entryID string) (model.JournalEntry, error) {
	var reversal model.JournalEntry
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		original, err := q.GetJournalEntry(ctx, tenantID, entryID)
		if err != nil {
			return err
		}
		if original.Status != model.StatusPosted {
			return errs.InvalidState("entry %s is %s, only posted entries can be reversed", original.EntryNumber, original.Status)
		}

		params := DraftParams{
			EntryDate:   original.EntryDate,
			Description: "Reversal of " + original.EntryNumber,
			SourceType:  original.SourceType,
			SourceID:    original.SourceID,
			Lines:       make([]LineParams, len(original.Lines)),
		}
		for i, line := range original.Lines {
			params.Lines[i] = LineParams{
				AccountID:   line.AccountID,
				Debit:       line.Credit,
				Credit:      line.Debit,
				Description: line.Description,
			}
		}

		reversal, err = s.CreateDraftTx(ctx, q, tenantID, params, PrefixReversal, original.ID, true)
		if err != nil {
			return err
		}
		return q.MarkEntryReversed(ctx, tenantID, original.ID, reversal.ID)
	})
	if err != nil {
		return model.JournalEntry{}, err
	}
	return reversal, nil
}

// Void terminates a draft that will never be posted.
func (s *Service) Void(ctx context.Context, tenantID, entryID string) error {
	return s.store.WithTx(ctx, func(q *store.Queries) error {
		entry, err := q.GetJournalEntry(ctx, tenantID, entryID)
		if err != nil {
			return err
		}
		if entry.Status != model.StatusDraft {
			return errs.InvalidState("entry %s is %s, only drafts can be voided", entry.EntryNumber, entry.Status)
		}
		return q.MarkEntryVoided(ctx, tenantID, entry.ID)
	})
}

// Get returns an entry with its lines.
func (s *Service) Get(ctx context.Context, tenantID, entryID string) (model.JournalEntry, error) {
	return s.store.Q().GetJournalEntry(ctx, tenantID, entryID)
}

// ListByStatus returns entries in one status, newest first.
func (s *Service) ListByStatus(ctx context.Context, tenantID string, status model.EntryStatus, limit, offset int) ([]model.JournalEntry, error) {
	return s.store.Q().ListEntriesByStatus(ctx, tenantID, status, limit, offset)
}

// EmitPosted announces a committed posting. Exposed so callers composing
// PostTx into larger transactions can publish after their commit.
func (s *Service) EmitPosted(ctx context.Context, entry model.JournalEntry) {
	s.emitPosted(ctx, entry)
}

func (s *Service) emitPosted(ctx context.Context, entry model.JournalEntry) {
	events.Emit(ctx, s.pub, s.log, events.SubjectLedgerPosted, events.LedgerPosted{
		TenantID:    entry.TenantID,
		EntryID:     entry.ID,
		EntryNumber: entry.EntryNumber,
		EntryDate:   entry.EntryDate,
		TotalDebit:  entry.TotalDebit.StringFixed(2),
		TotalCredit: entry.TotalCredit.StringFixed(2),
		Lines:       len(entry.Lines),
		At:          time.Now().UTC(),
	})
}

func (s *Service) loadLineAccounts(ctx context.Context, q *store.Queries, tenantID string, lines []model.JournalLine) (map[string]model.Account, error) {
	accounts := make(map[string]model.Account)
	for _, line := range lines {
		if _, ok := accounts[line.AccountID]; ok {
			continue
		}
		account, err := q.GetAccount(ctx, tenantID, line.AccountID)
		if err != nil {
			if errs.IsKind(err, errs.KindNotFound) {
				continue // ValidateLines reports the unknown account
			}
			return nil, err
		}
		accounts[line.AccountID] = account
	}
	return accounts, nil
}
