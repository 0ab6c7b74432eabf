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

const yearColumns = `id, tenant_id, name, start_date, end_date, is_active, is_closed, closing_entry_id, created_at`
const periodColumns = `id, tenant_id, fiscal_year_id, period_number, start_date, end_date, status`

// InsertFiscalYear writes a new fiscal year.
func (q *Queries) InsertFiscalYear(ctx context.Context, y model.FiscalYear) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO fiscal_years (`+yearColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		y.ID, y.TenantID, y.Name, dateStr(y.StartDate), dateStr(y.EndDate),
		boolInt(y.IsActive), boolInt(y.IsClosed), y.ClosingEntryID, y.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting fiscal year %s: %w", y.Name, err)
	}
	return nil
}

// InsertFiscalPeriod writes one period of a year.
func (q *Queries) InsertFiscalPeriod(ctx context.Context, p model.FiscalPeriod) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO fiscal_periods (`+periodColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.TenantID, p.FiscalYearID, p.PeriodNumber, dateStr(p.StartDate), dateStr(p.EndDate), string(p.Status))
	if err != nil {
		return fmt.Errorf("inserting fiscal period %d: %w", p.PeriodNumber, err)
	}
	return nil
}

// GetFiscalYear fetches one fiscal year by id.
func (q *Queries) GetFiscalYear(ctx context.Context, tenantID, id string) (model.FiscalYear, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+yearColumns+` FROM fiscal_years WHERE tenant_id = ? AND id = ?`, tenantID, id)
	y, err := scanYear(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.FiscalYear{}, errs.NotFound("fiscal year %s", id)
	}
	return y, err
}

// ListFiscalYears returns the tenant's fiscal years ordered by start date.
func (q *Queries) ListFiscalYears(ctx context.Context, tenantID string) ([]model.FiscalYear, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+yearColumns+` FROM fiscal_years WHERE tenant_id = ? ORDER BY start_date`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing fiscal years: %w", err)
	}
	defer rows.Close()

	var years []model.FiscalYear
	for rows.Next() {
		y, err := scanYear(rows)
		if err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// YearOverlaps reports whether any existing fiscal year's range intersects
// [start, end].
func (q *Queries) YearOverlaps(ctx context.Context, tenantID string, start, end time.Time) (bool, error) {
	var n int
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM fiscal_years
		WHERE tenant_id = ? AND start_date <= ? AND end_date >= ?`,
		tenantID, dateStr(end), dateStr(start)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking fiscal year overlap: %w", err)
	}
	return n > 0, nil
}

// MarkYearClosed flips a year to closed/inactive and links its closing entry.
func (q *Queries) MarkYearClosed(ctx context.Context, tenantID, id, closingEntryID string) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE fiscal_years SET is_closed = 1, is_active = 0, closing_entry_id = ?
		WHERE tenant_id = ? AND id = ?`, closingEntryID, tenantID, id)
	if err != nil {
		return fmt.Errorf("closing fiscal year %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return errs.NotFound("fiscal year %s", id)
	}
	return nil
}

// GetPeriod fetches one fiscal period by id.
func (q *Queries) GetPeriod(ctx context.Context, tenantID, id string) (model.FiscalPeriod, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+periodColumns+` FROM fiscal_periods WHERE tenant_id = ? AND id = ?`, tenantID, id)
	p, err := scanPeriod(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.FiscalPeriod{}, errs.NotFound("fiscal period %s", id)
	}
	return p, err
}

// ListPeriods returns a year's periods in order.
func (q *Queries) ListPeriods(ctx context.Context, tenantID, fiscalYearID string) ([]model.FiscalPeriod, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+periodColumns+` FROM fiscal_periods
		WHERE tenant_id = ? AND fiscal_year_id = ? ORDER BY period_number`, tenantID, fiscalYearID)
	if err != nil {
		return nil, fmt.Errorf("listing fiscal periods: %w", err)
	}
	defer rows.Close()

	var periods []model.FiscalPeriod
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

// PeriodForDate resolves the fiscal period covering d, if any.
func (q *Queries) PeriodForDate(ctx context.Context, tenantID string, d time.Time) (model.FiscalPeriod, bool, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+periodColumns+` FROM fiscal_periods
		WHERE tenant_id = ? AND start_date <= ? AND end_date >= ?`,
		tenantID, dateStr(d), dateStr(d))
	p, err := scanPeriod(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.FiscalPeriod{}, false, nil
	}
	if err != nil {
		return model.FiscalPeriod{}, false, err
	}
	return p, true, nil
}

// SetPeriodStatus transitions a period between open and closed.
func (q *Queries) SetPeriodStatus(ctx context.Context, tenantID, id string, status model.PeriodStatus) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE fiscal_periods SET status = ? WHERE tenant_id = ? AND id = ?`,
		string(status), tenantID, id)
	if err != nil {
		return fmt.Errorf("setting period %s status: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return errs.NotFound("fiscal period %s", id)
	}
	return nil
}

func scanYear(r rowScanner) (model.FiscalYear, error) {
	var y model.FiscalYear
	var start, end string
	var active, closed int
	err := r.Scan(&y.ID, &y.TenantID, &y.Name, &start, &end, &active, &closed, &y.ClosingEntryID, &y.CreatedAt)
	if err != nil {
		return model.FiscalYear{}, err
	}
	y.StartDate = parseDate(start)
	y.EndDate = parseDate(end)
	y.IsActive = active != 0
	y.IsClosed = closed != 0
	return y, nil
}

func scanPeriod(r rowScanner) (model.FiscalPeriod, error) {
	var p model.FiscalPeriod
	var start, end, status string
	err := r.Scan(&p.ID, &p.TenantID, &p.FiscalYearID, &p.PeriodNumber, &start, &end, &status)
	if err != nil {
		return model.FiscalPeriod{}, err
	}
	p.StartDate = parseDate(start)
	p.EndDate = parseDate(end)
	p.Status = model.PeriodStatus(status)
	return p, nil
}
