// Package accounts manages the chart of accounts: hierarchy, categories,
// normal balance sides, and point-in-time balance computation.
package accounts

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

// Service provides business logic for the account registry.
type Service struct {
	store     *store.Store
	pub       events.Publisher
	log       *zap.Logger
	inference map[string]model.AccountType
}

// NewService creates an accounts Service. inference maps the leading digit
// of an account code to a category for accounts created without an explicit
// type.
func NewService(st *store.Store, pub events.Publisher, log *zap.Logger, inference map[string]model.AccountType) *Service {
	return &Service{store: st, pub: pub, log: log, inference: inference}
}

// CreateParams holds parameters for creating an account.
type CreateParams struct {
	Code           string
	Name           string
	Type           model.AccountType // optional; inferred from Code when empty
	ParentID       string
	IsHeader       bool
	Description    string
	OpeningBalance decimal.Decimal
}

// Create adds an account to the chart. When no type is given the category is
// inferred from the code's leading digit via the configured table.
func (s *Service) Create(ctx context.Context, tenantID string, params CreateParams) (model.Account, error) {
	code := strings.TrimSpace(params.Code)
	name := strings.TrimSpace(params.Name)
	if code == "" {
		return model.Account{}, errs.Validation("account code is required")
	}
	if name == "" {
		return model.Account{}, errs.Validation("account name is required")
	}

	accountType := params.Type
	if accountType == "" {
		inferred, ok := s.inference[code[:1]]
		if !ok {
			return model.Account{}, errs.Validation("cannot infer account type from code %q", code)
		}
		accountType = inferred
	}
	if !accountType.Valid() {
		return model.Account{}, errs.Validation("invalid account type %q", accountType)
	}

	// Same exact-decimals rule as journal lines: the store keeps cents.
	cents := params.OpeningBalance.Mul(decimal.NewFromInt(100))
	if !cents.Equal(cents.Floor()) {
		return model.Account{}, errs.Validation("opening balance %s has more than 2 decimal places", params.OpeningBalance)
	}

	now := time.Now().UTC()
	account := model.Account{
		ID:             uuid.NewString(),
		TenantID:       tenantID,
		Code:           code,
		Name:           name,
		Type:           accountType,
		NormalBalance:  accountType.NormalBalance(),
		ParentID:       params.ParentID,
		IsHeader:       params.IsHeader,
		IsActive:       true,
		Description:    params.Description,
		OpeningBalance: params.OpeningBalance,
		CurrentBalance: params.OpeningBalance,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		taken, err := q.AccountCodeExists(ctx, tenantID, code)
		if err != nil {
			return err
		}
		if taken {
			return errs.Validation("account code %s already exists", code)
		}
		if params.ParentID != "" {
			parent, err := q.GetAccount(ctx, tenantID, params.ParentID)
			if err != nil {
				return err
			}
			if !parent.IsActive {
				return errs.Validation("parent account %s is inactive", parent.Code)
			}
		}
		return q.InsertAccount(ctx, account)
	})
	if err != nil {
		return model.Account{}, err
	}

	events.Emit(ctx, s.pub, s.log, events.SubjectAccountCreated, events.AccountCreated{
		TenantID:  tenantID,
		AccountID: account.ID,
		Code:      account.Code,
		Name:      account.Name,
		Type:      string(account.Type),
		At:        now,
	})
	return account, nil
}

// UpdateParams holds the optional fields of an account update. Nil pointers
// leave the field unchanged.
type UpdateParams struct {
	Name        *string
	Description *string
	ParentID    *string
	IsHeader    *bool
}

// Update modifies an account's mutable fields. Reparenting is cycle-checked:
// an account can never become its own ancestor.
func (s *Service) Update(ctx context.Context, tenantID, id string, params UpdateParams) (model.Account, error) {
	var updated model.Account
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		account, err := q.GetAccount(ctx, tenantID, id)
		if err != nil {
			return err
		}

		if params.Name != nil {
			name := strings.TrimSpace(*params.Name)
			if name == "" {
				return errs.Validation("account name is required")
			}
			account.Name = name
		}
		if params.Description != nil {
			account.Description = *params.Description
		}
		if params.IsHeader != nil {
			if *params.IsHeader && !account.IsHeader {
				hasPostings, err := q.HasPostings(ctx, tenantID, id)
				if err != nil {
					return err
				}
				if hasPostings {
					return errs.Conflict("account %s has postings and cannot become a header", account.Code)
				}
			}
			account.IsHeader = *params.IsHeader
		}
		if params.ParentID != nil && *params.ParentID != account.ParentID {
			if err := s.checkNoCycle(ctx, q, tenantID, id, *params.ParentID); err != nil {
				return err
			}
			account.ParentID = *params.ParentID
		}

		account.UpdatedAt = time.Now().UTC()
		if err := q.UpdateAccount(ctx, account); err != nil {
			return err
		}
		updated = account
		return nil
	})
	if err != nil {
		return model.Account{}, err
	}
	return updated, nil
}

// Deactivate soft-deletes an account. Accounts with postings or children are
// never hard-deleted; with either present, even deactivation is refused so
// reports stay complete.
func (s *Service) Deactivate(ctx context.Context, tenantID, id string) error {
	return s.store.WithTx(ctx, func(q *store.Queries) error {
		account, err := q.GetAccount(ctx, tenantID, id)
		if err != nil {
			return err
		}
		hasPostings, err := q.HasPostings(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if hasPostings {
			return errs.Conflict("account %s has ledger postings", account.Code)
		}
		hasChildren, err := q.HasChildren(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if hasChildren {
			return errs.Conflict("account %s has child accounts", account.Code)
		}

		account.IsActive = false
		account.UpdatedAt = time.Now().UTC()
		return q.UpdateAccount(ctx, account)
	})
}

// Get returns an account by id.
func (s *Service) Get(ctx context.Context, tenantID, id string) (model.Account, error) {
	return s.store.Q().GetAccount(ctx, tenantID, id)
}

// GetByCode returns an account by its tenant-unique code.
func (s *Service) GetByCode(ctx context.Context, tenantID, code string) (model.Account, error) {
	return s.store.Q().GetAccountByCode(ctx, tenantID, code)
}

// List returns the flat chart ordered by code.
func (s *Service) List(ctx context.Context, tenantID string, includeInactive bool) ([]model.Account, error) {
	return s.store.Q().ListAccounts(ctx, tenantID, includeInactive)
}

// Node is one account in the hierarchical chart view.
type Node struct {
	Account  model.Account
	Children []*Node
}

// Tree returns the chart as a forest of root accounts. Orphans (parent
// deactivated out of a filtered listing) surface as roots rather than
// disappearing.
func (s *Service) Tree(ctx context.Context, tenantID string, includeInactive bool) ([]*Node, error) {
	accounts, err := s.store.Q().ListAccounts(ctx, tenantID, includeInactive)
	if err != nil {
		return nil, err
	}

	nodes := make(map[string]*Node, len(accounts))
	for _, a := range accounts {
		nodes[a.ID] = &Node{Account: a}
	}

	var roots []*Node
	for _, a := range accounts {
		n := nodes[a.ID]
		if parent, ok := nodes[a.ParentID]; ok {
			parent.Children = append(parent.Children, n)
		} else {
			roots = append(roots, n)
		}
	}
	return roots, nil
}

// Balance computes an account's balance as of a date:
// opening + debits − credits for debit-normal accounts, opening + credits −
// debits otherwise. The same sign convention drives statements, the trial
// balance, and the denormalized cache.
func (s *Service) Balance(ctx context.Context, tenantID, id string, asOf time.Time) (decimal.Decimal, error) {
	q := s.store.Q()
	account, err := q.GetAccount(ctx, tenantID, id)
	if err != nil {
		return decimal.Zero, err
	}
	debit, credit, err := q.AccountActivity(ctx, tenantID, id, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	return account.OpeningBalance.Add(account.SignedDelta(debit, credit)), nil
}

// checkNoCycle walks the proposed parent chain and rejects reparenting that
// would make id its own ancestor.
func (s *Service) checkNoCycle(ctx context.Context, q *store.Queries, tenantID, id, newParentID string) error {
	current := newParentID
	for current != "" {
		if current == id {
			return errs.Validation("account cannot be its own ancestor")
		}
		parent, err := q.GetAccount(ctx, tenantID, current)
		if err != nil {
			return err
		}
		current = parent.ParentID
	}
	return nil
}
