// Package core provides the domain model of the tracker: calendar dates,
// money amounts, ledger entries, recurrence templates and budgets.
//
// All computation in the engine works on these value types; nothing in core
// reads the system clock or performs I/O.
package core

import (
	"fmt"
	"time"
)

// DateLayout is the ISO-8601 day format used everywhere dates become strings.
const DateLayout = "2006-01-02"

// Date is a calendar day with no time-of-day component. The engine treats all
// dates as plain local calendar days; the zero value means "not set".
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day. Out-of-range values are
// normalized the way time.Date does (NewDate(2024, 2, 31) is March 2nd), which
// AddDays relies on.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses an ISO day string (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// MustDate is ParseDate that panics on error. Intended for fixtures and tests.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// ISO formats the date as YYYY-MM-DD.
func (d Date) ISO() string { return d.Format(DateLayout) }

// Day returns the day of the month.
func (d Date) Day() int { return d.Time.Day() }

// Month returns the month as 1-12.
func (d Date) Month() int { return int(d.Time.Month()) }

// Year returns the year.
func (d Date) Year() int { return d.Time.Year() }

// AddDays returns the date n days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return NewDate(d.Year(), d.Month(), d.Time.Day()+n)
}

// StartOfMonth returns the first day of the date's month.
func (d Date) StartOfMonth() Date { return NewDate(d.Year(), d.Month(), 1) }

// EndOfMonth returns the last day of the date's month.
func (d Date) EndOfMonth() Date { return NewDate(d.Year(), d.Month()+1, 0) }

// DaysInMonth returns the number of days in the date's month.
func (d Date) DaysInMonth() int { return d.EndOfMonth().Day() }

// SameMonth reports whether both dates fall in the same calendar month.
func (d Date) SameMonth(o Date) bool {
	return d.Year() == o.Year() && d.Month() == o.Month()
}

// IsEmpty reports whether the date is unset (used for optional end dates).
func (d Date) IsEmpty() bool { return d.IsZero() }

// Validate rejects the zero value; any normalized calendar day is valid.
func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Window is a closed date range [From, To] over which expansion or
// aggregation is performed.
type Window struct {
	From, To Date
}

// MonthWindow returns the window covering the whole month of d.
func MonthWindow(d Date) Window {
	return Window{From: d.StartOfMonth(), To: d.EndOfMonth()}
}

// Contains reports whether day is inside the window, bounds included.
func (w Window) Contains(d Date) bool {
	return !d.Before(w.From.Time) && !d.After(w.To.Time)
}
