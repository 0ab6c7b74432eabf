package model

import "time"

// FiscalYear bounds a reporting year. Closing is terminal: a closed year is
// never reactivated and its periods can no longer be reopened.
type FiscalYear struct {
	ID             string
	TenantID       string
	Name           string
	StartDate      time.Time
	EndDate        time.Time
	IsActive       bool
	IsClosed       bool
	ClosingEntryID string // journal entry produced by year-end closing
	CreatedAt      time.Time
}

// PeriodStatus is the state of a fiscal period.
type PeriodStatus string

const (
	PeriodOpen   PeriodStatus = "open"
	PeriodClosed PeriodStatus = "closed"
)

// FiscalPeriod is one slice (typically a calendar month) of a fiscal year.
// Periods tile the year's date range without gaps or overlaps. Date-range
// membership is resolved in SQL (PeriodForDate), with inclusive bounds.
type FiscalPeriod struct {
	ID           string
	TenantID     string
	FiscalYearID string
	PeriodNumber int
	StartDate    time.Time
	EndDate      time.Time
	Status       PeriodStatus
}
