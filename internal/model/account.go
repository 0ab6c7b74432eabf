package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// Valid reports whether t is one of the five account categories.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// BalanceSide is the side of the ledger on which an account increases.
type BalanceSide string

const (
	SideDebit  BalanceSide = "debit"
	SideCredit BalanceSide = "credit"
)

// NormalBalance returns the side that increases accounts of this type:
// asset and expense accounts grow on the debit side, the rest on credit.
func (t AccountType) NormalBalance() BalanceSide {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return SideDebit
	default:
		return SideCredit
	}
}

// Account is one row in the chart of accounts. Code is unique per tenant.
type Account struct {
	ID             string
	TenantID       string
	Code           string
	Name           string
	Type           AccountType
	NormalBalance  BalanceSide
	ParentID       string // empty = top-level
	IsHeader       bool   // header accounts aggregate children and never receive postings
	IsActive       bool
	Description    string
	OpeningBalance decimal.Decimal
	CurrentBalance decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SignedDelta converts a raw debit/credit pair into the balance movement for
// this account: debit−credit for debit-normal accounts, credit−debit
// otherwise. Every balance anywhere in the system derives from this rule.
func (a Account) SignedDelta(debit, credit decimal.Decimal) decimal.Decimal {
	if a.NormalBalance == SideDebit {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}
