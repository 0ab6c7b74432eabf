package journal

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/openbooks-dev/openbooks/internal/model"
)

// ValidationError describes a single invariant violation on an entry's lines.
type ValidationError struct {
	Invariant   int
	LineNo      int
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d [line %d]: %s", e.Invariant, e.LineNo, e.Description)
}

// ValidateLines enforces 4 invariants on a draft entry's lines. Balance is
// deliberately not checked here: drafts may be temporarily unbalanced while
// being edited, and the balance invariant gates the posting transition
// instead.
func ValidateLines(lines []model.JournalLine, accountsByID map[string]model.Account) []ValidationError {
	var errs []ValidationError

	// Invariant 1: An entry has at least one line.
	if len(lines) == 0 {
		errs = append(errs, ValidationError{
			Invariant:   1,
			Description: "entry has no lines",
		})
		return errs
	}

	hundred := decimal.NewFromInt(100)
	for _, line := range lines {
		// Invariant 2: Exactly one of debit/credit per line, non-negative.
		hasDebit := !line.Debit.IsZero()
		hasCredit := !line.Credit.IsZero()
		if hasDebit == hasCredit {
			errs = append(errs, ValidationError{
				Invariant:   2,
				LineNo:      line.LineNo,
				Description: "line must have exactly one of debit or credit",
			})
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			errs = append(errs, ValidationError{
				Invariant:   2,
				LineNo:      line.LineNo,
				Description: "amounts must not be negative",
			})
		}

		// Invariant 3: Exact decimals — no more than 2 decimal places.
		if !line.Debit.Mul(hundred).Equal(line.Debit.Mul(hundred).Floor()) {
			errs = append(errs, ValidationError{
				Invariant:   3,
				LineNo:      line.LineNo,
				Description: fmt.Sprintf("debit %s has more than 2 decimal places", line.Debit),
			})
		}
		if !line.Credit.Mul(hundred).Equal(line.Credit.Mul(hundred).Floor()) {
			errs = append(errs, ValidationError{
				Invariant:   3,
				LineNo:      line.LineNo,
				Description: fmt.Sprintf("credit %s has more than 2 decimal places", line.Credit),
			})
		}

		// Invariant 4: Lines target active, postable (non-header) accounts.
		account, ok := accountsByID[line.AccountID]
		switch {
		case !ok:
			errs = append(errs, ValidationError{
				Invariant:   4,
				LineNo:      line.LineNo,
				Description: fmt.Sprintf("unknown account %s", line.AccountID),
			})
		case account.IsHeader:
			errs = append(errs, ValidationError{
				Invariant:   4,
				LineNo:      line.LineNo,
				Description: fmt.Sprintf("account %s is a header and cannot receive postings", account.Code),
			})
		case !account.IsActive:
			errs = append(errs, ValidationError{
				Invariant:   4,
				LineNo:      line.LineNo,
				Description: fmt.Sprintf("account %s is inactive", account.Code),
			})
		}
	}

	return errs
}
