// Package periods is the fiscal year/period state machine. It gatekeeps
// which dates accept postings and drives the one-way year-end close.
package periods

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openbooks-dev/openbooks/internal/closing"
	"github.com/openbooks-dev/openbooks/internal/errs"
	"github.com/openbooks-dev/openbooks/internal/events"
	"github.com/openbooks-dev/openbooks/internal/journal"
	"github.com/openbooks-dev/openbooks/internal/model"
	"github.com/openbooks-dev/openbooks/internal/store"
)

// Service provides business logic for fiscal years and periods.
type Service struct {
	store   *store.Store
	closing *closing.Service
	journal *journal.Service
	pub     events.Publisher
	log     *zap.Logger
}

// NewService creates a periods Service.
func NewService(st *store.Store, closingSvc *closing.Service, journalSvc *journal.Service, pub events.Publisher, log *zap.Logger) *Service {
	return &Service{store: st, closing: closingSvc, journal: journalSvc, pub: pub, log: log}
}

// dateRange is one generated period's bounds.
type dateRange struct {
	start time.Time
	end   time.Time
}

// monthlyPeriods slices [start, end] into calendar-month ranges. The first
// range starts at start even mid-month, and the last is clamped to end, so
// non-calendar fiscal years tile without gaps or overlaps.
func monthlyPeriods(start, end time.Time) []dateRange {
	var ranges []dateRange
	periodStart := start
	for !periodStart.After(end) {
		nextMonth := time.Date(periodStart.Year(), periodStart.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
		periodEnd := nextMonth.AddDate(0, 0, -1)
		if periodEnd.After(end) {
			periodEnd = end
		}
		ranges = append(ranges, dateRange{start: periodStart, end: periodEnd})
		periodStart = periodEnd.AddDate(0, 0, 1)
	}
	return ranges
}

// CreateFiscalYear creates a year and auto-generates its monthly periods.
func (s *Service) CreateFiscalYear(ctx context.Context, tenantID, name string, start, end time.Time) (model.FiscalYear, []model.FiscalPeriod, error) {
	start = truncateDay(start)
	end = truncateDay(end)
	if !start.Before(end) {
		return model.FiscalYear{}, nil, errs.Validation("fiscal year start %s must be before end %s",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	if name == "" {
		name = fmt.Sprintf("FY%d", end.Year())
	}

	year := model.FiscalYear{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Name:      name,
		StartDate: start,
		EndDate:   end,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	var periods []model.FiscalPeriod
	for i, r := range monthlyPeriods(start, end) {
		periods = append(periods, model.FiscalPeriod{
			ID:           uuid.NewString(),
			TenantID:     tenantID,
			FiscalYearID: year.ID,
			PeriodNumber: i + 1,
			StartDate:    r.start,
			EndDate:      r.end,
			Status:       model.PeriodOpen,
		})
	}

	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		overlaps, err := q.YearOverlaps(ctx, tenantID, start, end)
		if err != nil {
			return err
		}
		if overlaps {
			return errs.Conflict("fiscal year %s overlaps an existing year", name)
		}
		if err := q.InsertFiscalYear(ctx, year); err != nil {
			return err
		}
		for _, p := range periods {
			if err := q.InsertFiscalPeriod(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return model.FiscalYear{}, nil, err
	}
	return year, periods, nil
}

// ClosePeriod closes a period. Draft entries dated inside it block the close
// unless force is set; force-closed drafts stay unpostable until the period
// reopens.
func (s *Service) ClosePeriod(ctx context.Context, tenantID, periodID string, force bool) error {
	var closed model.FiscalPeriod
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		period, err := q.GetPeriod(ctx, tenantID, periodID)
		if err != nil {
			return err
		}
		if period.Status == model.PeriodClosed {
			return errs.InvalidState("period %d is already closed", period.PeriodNumber)
		}
		if !force {
			drafts, err := q.CountDraftsInRange(ctx, tenantID, period.StartDate, period.EndDate)
			if err != nil {
				return err
			}
			if drafts > 0 {
				return errs.OpenEntries("period %d has %d draft entries; post, void, or force-close", period.PeriodNumber, drafts)
			}
		}
		closed = period
		return q.SetPeriodStatus(ctx, tenantID, periodID, model.PeriodClosed)
	})
	if err != nil {
		return err
	}

	events.Emit(ctx, s.pub, s.log, events.SubjectPeriodClosed, events.PeriodClosed{
		TenantID:     tenantID,
		PeriodID:     closed.ID,
		FiscalYearID: closed.FiscalYearID,
		PeriodNumber: closed.PeriodNumber,
		Forced:       force,
		At:           time.Now().UTC(),
	})
	return nil
}

// ReopenPeriod reopens a closed period, unless its year has been closed —
// year closing is terminal.
func (s *Service) ReopenPeriod(ctx context.Context, tenantID, periodID string) error {
	return s.store.WithTx(ctx, func(q *store.Queries) error {
		period, err := q.GetPeriod(ctx, tenantID, periodID)
		if err != nil {
			return err
		}
		if period.Status != model.PeriodClosed {
			return errs.InvalidState("period %d is not closed", period.PeriodNumber)
		}
		year, err := q.GetFiscalYear(ctx, tenantID, period.FiscalYearID)
		if err != nil {
			return err
		}
		if year.IsClosed {
			return errs.InvalidState("fiscal year %s is closed; its periods cannot reopen", year.Name)
		}
		return q.SetPeriodStatus(ctx, tenantID, periodID, model.PeriodOpen)
	})
}

// CloseFiscalYear closes a year: every period must already be closed, net
// income is moved to retained earnings via the closing engine, and the year
// flips to closed/inactive. The whole procedure is one transaction, so a
// failed close can simply be re-invoked.
func (s *Service) CloseFiscalYear(ctx context.Context, tenantID, fiscalYearID, retainedAccountID string) (closing.Result, error) {
	var result closing.Result
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		year, err := q.GetFiscalYear(ctx, tenantID, fiscalYearID)
		if err != nil {
			return err
		}
		if year.IsClosed {
			return errs.InvalidState("fiscal year %s is already closed", year.Name)
		}
		periods, err := q.ListPeriods(ctx, tenantID, fiscalYearID)
		if err != nil {
			return err
		}
		for _, p := range periods {
			if p.Status != model.PeriodClosed {
				return errs.InvalidState("period %d is still open; close all periods before closing the year", p.PeriodNumber)
			}
		}

		result, err = s.closing.CloseYearTx(ctx, q, tenantID, year, retainedAccountID)
		if err != nil {
			return err
		}

		closingEntryID := ""
		if result.EntryCreated {
			closingEntryID = result.Entry.ID
		}
		return q.MarkYearClosed(ctx, tenantID, fiscalYearID, closingEntryID)
	})
	if err != nil {
		return closing.Result{}, err
	}

	if result.EntryCreated {
		s.journal.EmitPosted(ctx, result.Entry)
	}
	events.Emit(ctx, s.pub, s.log, events.SubjectFiscalYearClosed, events.FiscalYearClosed{
		TenantID:       tenantID,
		FiscalYearID:   fiscalYearID,
		ClosingEntryID: result.Entry.ID,
		NetIncome:      result.NetIncome.StringFixed(2),
		At:             time.Now().UTC(),
	})
	return result, nil
}

// GetFiscalYear returns one fiscal year.
func (s *Service) GetFiscalYear(ctx context.Context, tenantID, id string) (model.FiscalYear, error) {
	return s.store.Q().GetFiscalYear(ctx, tenantID, id)
}

// ListFiscalYears returns the tenant's fiscal years.
func (s *Service) ListFiscalYears(ctx context.Context, tenantID string) ([]model.FiscalYear, error) {
	return s.store.Q().ListFiscalYears(ctx, tenantID)
}

// ListPeriods returns a year's periods in order.
func (s *Service) ListPeriods(ctx context.Context, tenantID, fiscalYearID string) ([]model.FiscalPeriod, error) {
	return s.store.Q().ListPeriods(ctx, tenantID, fiscalYearID)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
