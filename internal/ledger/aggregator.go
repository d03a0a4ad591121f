// Package ledger merges one-off entries, materialized occurrences and
// (optionally) projected occurrences inside a date window and computes
// chronological running balances and period totals.
//
// Every consumer of ledger data (movement table, balance chart, exports) goes
// through BuildReport so the balance math exists exactly once.
package ledger

import (
	"sort"
	"strings"

	"bilancio/internal/core"
	"bilancio/internal/recur"
)

// ProjectedIDPrefix marks row ids of projected occurrences in reports. The
// authoritative tag is the Projected flag; the prefix only keeps projected ids
// from ever colliding with persisted ones.
const ProjectedIDPrefix = "proj-"

// Filter narrows a report to matching entries. Zero values match everything.
type Filter struct {
	Direction core.Direction // empty matches both directions
	Category  string
	Query     string // free text over description and category
}

func (f Filter) matches(c core.Concrete) bool {
	if f.Direction != "" && c.Direction != f.Direction {
		return false
	}
	if f.Category != "" && c.Category != f.Category {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(c.Description), q) &&
			!strings.Contains(strings.ToLower(c.Category), q) {
			return false
		}
	}
	return true
}

// Options controls a report build. Now is the injected clock reference; the
// aggregator never reads system time.
type Options struct {
	Window            core.Window
	IncludeProjection bool
	Filter            Filter
	Now               core.Date
}

// Row is one ledger line with its running balance at that point.
type Row struct {
	ID          string
	Date        core.Date
	Description string
	Category    string
	Direction   core.Direction
	Amount      core.Money
	Balance     int64 // signed running balance in cents
	Projected   bool
}

// Totals are the window aggregates over the (filtered) rows.
type Totals struct {
	In  core.Money
	Out core.Money
	Net int64 // signed cents, In - Out
}

// Report is the aggregation result for one window.
type Report struct {
	Rows    []Row
	Opening int64 // signed cents carried in from before the window
	Totals  Totals
	Final   int64 // terminal running balance (Opening if no rows)
}

// BuildReport aggregates the snapshot over the window.
//
// The running balance is seeded with the signed sum of every persisted entry
// strictly before the window, so a windowed view still shows the true
// cumulative balance. Projections are added only when the window reaches past
// Now, expand from max(Now, From), and never contribute to the seed.
func BuildReport(set core.EntrySet, opts Options) Report {
	base := set.Concrete()

	lines := make([]core.Concrete, 0, len(base))
	lines = append(lines, base...)
	if opts.IncludeProjection && opts.Now.Before(opts.Window.To.Time) {
		lines = append(lines, projections(set, opts)...)
	}

	var opening int64
	for _, c := range base {
		if c.Date.Before(opts.Window.From.Time) {
			opening += c.Signed()
		}
	}

	filtered := make([]core.Concrete, 0, len(lines))
	for _, c := range lines {
		if !opts.Window.Contains(c.Date) {
			continue
		}
		if !opts.Filter.matches(c) {
			continue
		}
		filtered = append(filtered, c)
	}
	// Chronological order is what makes the balance column meaningful;
	// presentation re-sorting happens on a copy via SortRows.
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Date.Before(filtered[j].Date.Time)
	})

	report := Report{Opening: opening, Final: opening}
	balance := opening
	for _, c := range filtered {
		balance += c.Signed()
		if c.Direction == core.In {
			report.Totals.In = report.Totals.In.Add(c.Amount)
		} else {
			report.Totals.Out = report.Totals.Out.Add(c.Amount)
		}
		report.Rows = append(report.Rows, Row{
			ID:          c.ID,
			Date:        c.Date,
			Description: c.Description,
			Category:    c.Category,
			Direction:   c.Direction,
			Amount:      c.Amount,
			Balance:     balance,
			Projected:   c.Projected,
		})
	}
	report.Totals.Net = report.Totals.In.Cents - report.Totals.Out.Cents
	report.Final = balance
	return report
}

func projections(set core.EntrySet, opts Options) []core.Concrete {
	from := opts.Window.From
	if from.Before(opts.Now.Time) {
		from = opts.Now
	}
	w := core.Window{From: from, To: opts.Window.To}

	guard := recur.NewGuard(set.Occurrences)
	var out []core.Concrete
	for _, t := range set.Templates {
		for _, d := range guard.Filter(t.ID, recur.Expand(t, w)) {
			out = append(out, t.Project(ProjectedIDPrefix, d))
		}
	}
	return out
}

// SortField selects a presentation ordering for SortRows.
type SortField string

const (
	SortByDate    SortField = "date"
	SortByAmount  SortField = "amount"
	SortByBalance SortField = "balance"
)

// SortRows returns a re-ordered copy of rows for presentation. Balances were
// computed chronologically by BuildReport and are carried along untouched.
func SortRows(rows []Row, field SortField, desc bool) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	less := func(i, j int) bool {
		switch field {
		case SortByAmount:
			return out[i].Amount.Cents < out[j].Amount.Cents
		case SortByBalance:
			return out[i].Balance < out[j].Balance
		default:
			return out[i].Date.Before(out[j].Date.Time)
		}
	}
	if desc {
		sort.SliceStable(out, func(i, j int) bool { return less(j, i) })
	} else {
		sort.SliceStable(out, less)
	}
	return out
}
