package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openbooks-dev/openbooks/internal/errs"
	"github.com/openbooks-dev/openbooks/internal/model"
)

const accountColumns = `id, tenant_id, code, name, type, normal_balance, parent_id,
	is_header, is_active, description, opening_cents, balance_cents, created_at, updated_at`

// InsertAccount writes a new chart-of-accounts row.
func (q *Queries) InsertAccount(ctx context.Context, a model.Account) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.TenantID, a.Code, a.Name, string(a.Type), string(a.NormalBalance), a.ParentID,
		boolInt(a.IsHeader), boolInt(a.IsActive), a.Description,
		toCents(a.OpeningBalance), toCents(a.CurrentBalance), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting account %s: %w", a.Code, err)
	}
	return nil
}

// UpdateAccount rewrites the mutable fields of an account.
func (q *Queries) UpdateAccount(ctx context.Context, a model.Account) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE accounts
		SET name = ?, type = ?, normal_balance = ?, parent_id = ?, is_header = ?,
		    is_active = ?, description = ?, updated_at = ?
		WHERE tenant_id = ? AND id = ?`,
		a.Name, string(a.Type), string(a.NormalBalance), a.ParentID, boolInt(a.IsHeader),
		boolInt(a.IsActive), a.Description, a.UpdatedAt, a.TenantID, a.ID)
	if err != nil {
		return fmt.Errorf("updating account %s: %w", a.ID, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return errs.NotFound("account %s", a.ID)
	}
	return nil
}

// GetAccount fetches one account by id.
func (q *Queries) GetAccount(ctx context.Context, tenantID, id string) (model.Account, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE tenant_id = ? AND id = ?`, tenantID, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, errs.NotFound("account %s", id)
	}
	return a, err
}

// GetAccountByCode fetches one account by its tenant-unique code.
func (q *Queries) GetAccountByCode(ctx context.Context, tenantID, code string) (model.Account, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE tenant_id = ? AND code = ?`, tenantID, code)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, errs.NotFound("account code %s", code)
	}
	return a, err
}

// AccountCodeExists reports whether code is already taken for the tenant.
func (q *Queries) AccountCodeExists(ctx context.Context, tenantID, code string) (bool, error) {
	var n int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM accounts WHERE tenant_id = ? AND code = ?`, tenantID, code).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking account code %s: %w", code, err)
	}
	return n > 0, nil
}

// ListAccounts returns the tenant's accounts ordered by code. Inactive
// accounts are included only when requested.
func (q *Queries) ListAccounts(ctx context.Context, tenantID string, includeInactive bool) ([]model.Account, error) {
	var rows *sql.Rows
	var err error
	if includeInactive {
		rows, err = q.db.QueryContext(ctx,
			`SELECT `+accountColumns+` FROM accounts WHERE tenant_id = ? ORDER BY code`, tenantID)
	} else {
		rows, err = q.db.QueryContext(ctx,
			`SELECT `+accountColumns+` FROM accounts WHERE tenant_id = ? AND is_active = 1 ORDER BY code`, tenantID)
	}
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// HasChildren reports whether any account references id as its parent.
func (q *Queries) HasChildren(ctx context.Context, tenantID, id string) (bool, error) {
	var n int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM accounts WHERE tenant_id = ? AND parent_id = ?`, tenantID, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking children of %s: %w", id, err)
	}
	return n > 0, nil
}

// HasPostings reports whether the account has any ledger entries.
func (q *Queries) HasPostings(ctx context.Context, tenantID, id string) (bool, error) {
	var n int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM ledger_entries WHERE tenant_id = ? AND account_id = ?`, tenantID, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking postings of %s: %w", id, err)
	}
	return n > 0, nil
}

// AddToBalance applies a signed delta to the denormalized balance cache on
// the account row. Called only inside the posting transaction, alongside the
// ledger append, so the cache can never drift from the ledger.
func (q *Queries) AddToBalance(ctx context.Context, tenantID, id string, delta decimal.Decimal, now time.Time) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE accounts SET balance_cents = balance_cents + ?, updated_at = ?
		WHERE tenant_id = ? AND id = ?`,
		toCents(delta), now, tenantID, id)
	if err != nil {
		return fmt.Errorf("applying balance delta to %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return errs.NotFound("account %s", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(r rowScanner) (model.Account, error) {
	var a model.Account
	var typ, normal string
	var isHeader, isActive int
	var opening, balance int64
	err := r.Scan(&a.ID, &a.TenantID, &a.Code, &a.Name, &typ, &normal, &a.ParentID,
		&isHeader, &isActive, &a.Description, &opening, &balance, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return model.Account{}, err
	}
	a.Type = model.AccountType(typ)
	a.NormalBalance = model.BalanceSide(normal)
	a.IsHeader = isHeader != 0
	a.IsActive = isActive != 0
	a.OpeningBalance = fromCents(opening)
	a.CurrentBalance = fromCents(balance)
	return a, nil
}
