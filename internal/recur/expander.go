// Package recur expands recurrence templates into concrete calendar dates and
// filters out dates that were already materialized.
//
// Everything here is pure: no clock access, no I/O. Callers pass the window
// they care about and get back ordered candidate dates.
package recur

import (
	"bilancio/internal/core"
)

// Expand returns the ascending occurrence dates of a template inside the
// closed window [w.From, w.To], respecting the template's own bounds.
//
// An invalid template (unknown frequency, end date before start date) yields
// an empty result instead of an error: bad templates are reachable via user
// input and must not break aggregation for the rest of the collection.
func Expand(t core.Template, w core.Window) []core.Date {
	if t.StartDate.IsZero() || t.StartDate.After(w.To.Time) {
		return nil
	}
	if !t.EndDate.IsEmpty() {
		if t.EndDate.Before(t.StartDate.Time) || t.EndDate.Before(w.From.Time) {
			return nil
		}
	}

	switch t.Frequency {
	case core.Weekly:
		return expandWeekly(t, w)
	case core.Monthly:
		return expandMonthly(t, w)
	case core.Yearly:
		return expandYearly(t, w)
	default:
		return nil
	}
}

// expandWeekly steps in whole weeks from the start date. The cursor is
// advanced to the window rather than reset to it, so the weekday phase is
// always a multiple of 7 days from StartDate.
func expandWeekly(t core.Template, w core.Window) []core.Date {
	var out []core.Date
	cursor := t.StartDate
	for cursor.Before(w.From.Time) {
		cursor = cursor.AddDays(7)
	}
	for !cursor.After(w.To.Time) && withinEnd(t, cursor) {
		out = append(out, cursor)
		cursor = cursor.AddDays(7)
	}
	return out
}

// expandMonthly emits one occurrence per calendar month overlapping the
// window, on the start day clamped to the month's length (a 31st-of-month
// template lands on Feb 28/29).
func expandMonthly(t core.Template, w core.Window) []core.Date {
	var out []core.Date
	day := t.StartDate.Day()
	for month := w.From.StartOfMonth(); !month.After(w.To.Time); month = month.AddDays(month.DaysInMonth()) {
		occ := occurrenceInMonth(month, day)
		if occ.Before(t.StartDate.Time) || !w.Contains(occ) || !withinEnd(t, occ) {
			continue
		}
		out = append(out, occ)
	}
	return out
}

// expandYearly emits at most one occurrence per year, in the start date's
// month, with the same short-month clamping as monthly.
func expandYearly(t core.Template, w core.Window) []core.Date {
	var out []core.Date
	for year := w.From.Year(); year <= w.To.Year(); year++ {
		month := core.NewDate(year, t.StartDate.Month(), 1)
		occ := occurrenceInMonth(month, t.StartDate.Day())
		if occ.Before(t.StartDate.Time) || !w.Contains(occ) || !withinEnd(t, occ) {
			continue
		}
		out = append(out, occ)
	}
	return out
}

// occurrenceInMonth places day inside the month of m, clamping to the last
// day when the month is shorter.
func occurrenceInMonth(m core.Date, day int) core.Date {
	if last := m.DaysInMonth(); day > last {
		day = last
	}
	return core.NewDate(m.Year(), m.Month(), day)
}

func withinEnd(t core.Template, d core.Date) bool {
	return t.EndDate.IsEmpty() || !d.After(t.EndDate.Time)
}
