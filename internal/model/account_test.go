package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestNormalBalance(t *testing.T) {
	assert.Equal(t, SideDebit, AccountTypeAsset.NormalBalance())
	assert.Equal(t, SideDebit, AccountTypeExpense.NormalBalance())
	assert.Equal(t, SideCredit, AccountTypeLiability.NormalBalance())
	assert.Equal(t, SideCredit, AccountTypeEquity.NormalBalance())
	assert.Equal(t, SideCredit, AccountTypeRevenue.NormalBalance())
}

func TestAccountTypeValid(t *testing.T) {
	assert.True(t, AccountTypeAsset.Valid())
	assert.False(t, AccountType("bitcoin").Valid())
	assert.False(t, AccountType("").Valid())
}

func TestSignedDelta(t *testing.T) {
	debitNormal := Account{NormalBalance: SideDebit}
	creditNormal := Account{NormalBalance: SideCredit}

	// A 100 debit grows a debit-normal account and shrinks a credit-normal one.
	assert.True(t, debitNormal.SignedDelta(dec("100"), decimal.Zero).Equal(dec("100")))
	assert.True(t, creditNormal.SignedDelta(dec("100"), decimal.Zero).Equal(dec("-100")))
	assert.True(t, debitNormal.SignedDelta(decimal.Zero, dec("40")).Equal(dec("-40")))
	assert.True(t, creditNormal.SignedDelta(decimal.Zero, dec("40")).Equal(dec("40")))
}
