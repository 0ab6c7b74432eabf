// Package errs defines the structured error taxonomy shared by every ledger
// operation. Each error carries a kind and an HTTP-equivalent status so the
// (external) transport layer can map rejections without inspecting messages.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an operation failure.
type Kind string

const (
	KindValidation   Kind = "validation"    // malformed or missing input, duplicate code
	KindConflict     Kind = "conflict"      // delete blocked by postings/children
	KindUnbalanced   Kind = "unbalanced"    // debits != credits on post
	KindInvalidState Kind = "invalid_state" // transition not allowed from current status
	KindPeriodClosed Kind = "period_closed" // posting into a closed fiscal period
	KindOpenEntries  Kind = "open_entries"  // closing a period with draft entries inside
	KindNotFound     Kind = "not_found"     // unknown id or code
	KindInternal     Kind = "internal"      // storage or infrastructure failure
)

// Error is a structured rejection. All rejections leave prior state
// unchanged; the enclosing transaction is rolled back before the error
// reaches the caller.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// HTTPStatus maps the kind to its HTTP-equivalent status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindUnbalanced:
		return http.StatusBadRequest
	case KindConflict, KindInvalidState, KindPeriodClosed, KindOpenEntries:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation reports malformed or missing input.
func Validation(format string, args ...any) *Error { return newf(KindValidation, format, args...) }

// Conflict reports an operation blocked by existing state.
func Conflict(format string, args ...any) *Error { return newf(KindConflict, format, args...) }

// Unbalanced reports a debit/credit mismatch on posting.
func Unbalanced(format string, args ...any) *Error { return newf(KindUnbalanced, format, args...) }

// InvalidState reports a lifecycle transition from the wrong status.
func InvalidState(format string, args ...any) *Error { return newf(KindInvalidState, format, args...) }

// PeriodClosed reports a posting dated inside a closed fiscal period.
func PeriodClosed(format string, args ...any) *Error { return newf(KindPeriodClosed, format, args...) }

// OpenEntries reports a period close blocked by draft entries.
func OpenEntries(format string, args ...any) *Error { return newf(KindOpenEntries, format, args...) }

// NotFound reports an unknown id or code.
func NotFound(format string, args ...any) *Error { return newf(KindNotFound, format, args...) }

// KindOf unwraps err and returns its Kind, or KindInternal for errors outside
// the taxonomy. Infrastructure failures stay wrapped stdlib errors; no
// constructor mints KindInternal directly.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err (or anything it wraps) has the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
