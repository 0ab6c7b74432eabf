package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openbooks-dev/openbooks/internal/journal"
	"github.com/openbooks-dev/openbooks/internal/model"
	"github.com/openbooks-dev/openbooks/internal/store"
)

// Service turns parsed import rows into posted journal entries.
type Service struct {
	store   *store.Store
	journal *journal.Service
	log     *zap.Logger
}

// NewService creates an importer Service.
func NewService(st *store.Store, journalSvc *journal.Service, log *zap.Logger) *Service {
	return &Service{store: st, journal: journalSvc, log: log}
}

// Result summarizes one imported file.
type Result struct {
	Entries []model.JournalEntry
	Posted  int
}

// Import parses r and creates one balanced entry per row, posting each
// through the journal engine. The whole file runs in one transaction: a
// failing row (unknown account, closed period, bad amount) rolls back every
// entry from the file.
func (s *Service) Import(ctx context.Context, tenantID string, r io.Reader, p Parser, post bool) (Result, error) {
	rows, err := p.Parse(r)
	if err != nil {
		return Result{}, fmt.Errorf("parsing %s import: %w", p.Format(), err)
	}

	batchID := uuid.NewString()
	var result Result
	err = s.store.WithTx(ctx, func(q *store.Queries) error {
		for i, row := range rows {
			debitAccount, err := q.GetAccountByCode(ctx, tenantID, row.DebitAccount)
			if err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
			creditAccount, err := q.GetAccountByCode(ctx, tenantID, row.CreditAccount)
			if err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}

			entry, err := s.journal.CreateDraftTx(ctx, q, tenantID, journal.DraftParams{
				EntryDate:   row.Date,
				Description: row.Description,
				SourceType:  "import",
				SourceID:    batchID,
				Lines: []journal.LineParams{
					{AccountID: debitAccount.ID, Debit: row.Amount, Description: row.Reference},
					{AccountID: creditAccount.ID, Credit: row.Amount, Description: row.Reference},
				},
			}, journal.PrefixEntry, "", false)
			if err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}

			if post {
				entry, err = s.journal.PostTx(ctx, q, tenantID, entry.ID, journal.PostOptions{})
				if err != nil {
					return fmt.Errorf("row %d: %w", i+1, err)
				}
				result.Posted++
			}
			result.Entries = append(result.Entries, entry)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	for _, entry := range result.Entries {
		if entry.Status == model.StatusPosted {
			s.journal.EmitPosted(ctx, entry)
		}
	}
	s.log.Info("import complete",
		zap.String("tenant", tenantID),
		zap.String("batch", batchID),
		zap.Int("entries", len(result.Entries)),
		zap.Int("posted", result.Posted))
	return result, nil
}
