// Package dashboard computes the month snapshot shown on the overview page:
// budget usage and pace, top spending categories, single-transaction extremes,
// the recurring/variable mix, the month-over-month net delta with its linear
// month-end forecast, and the next upcoming movements.
package dashboard

import (
	"fmt"
	"math"
	"sort"

	"bilancio/internal/core"
)

// Pace classifies category spend against the elapsed fraction of the month.
type Pace string

const (
	PaceFast    Pace = "fast"
	PaceOnTrack Pace = "onTrack"
)

// AlertKind identifies a dashboard alert.
type AlertKind string

const (
	AlertOverBudget    AlertKind = "over_budget"
	AlertNearLimit     AlertKind = "near_limit"
	AlertFastPace      AlertKind = "fast_pace"
	AlertNoBudgets     AlertKind = "no_budgets"
	AlertUncategorized AlertKind = "uncategorized"
)

// Alert is one actionable signal, ordered by severity within its budget.
type Alert struct {
	Kind     AlertKind
	Category string // empty for the global alerts
	Message  string
}

// BudgetUsage is the month's consumption of one budget.
type BudgetUsage struct {
	Category string
	Spent    core.Money
	Limit    core.Money
	Pct      float64
	Pace     Pace
}

// CategorySpend is one slice of the month's outgoing total.
type CategorySpend struct {
	Category string
	Spent    core.Money
	Share    float64 // fraction of the month's total out spend
}

// RecurringMix splits the month's out spend between materialized occurrences
// and one-off entries.
type RecurringMix struct {
	Recurring core.Money
	Variable  core.Money
	Ratio     float64 // recurring over total, 0 when nothing was spent
}

// NetDelta compares this month's net to the previous month's.
type NetDelta struct {
	Net     int64 // signed cents
	PrevNet int64
	// MoMPct is nil when the previous month nets to zero, since there is
	// no baseline to compare against.
	MoMPct *float64
}

// Metrics is the full dashboard snapshot for the month containing now.
type Metrics struct {
	Month         core.Window
	ElapsedRatio  float64
	Budgets       []BudgetUsage // sorted by Pct descending
	TopCategories []CategorySpend
	LargestOut    *core.Concrete
	LargestIn     *core.Concrete
	Mix           RecurringMix
	Delta         NetDelta
	// ProjectedNet extrapolates the month's net to month end at the pace
	// of the elapsed days, in signed cents.
	ProjectedNet int64
	// NextOut and NextIn are the earliest persisted entries dated strictly
	// after now, nil when nothing lies ahead.
	NextOut *core.Concrete
	NextIn  *core.Concrete
	Alerts  []Alert
}

// Compute builds the snapshot from a validated entry set. Templates never
// count; only persisted one-offs and occurrences do. The clock reference is
// injected so results are reproducible.
func Compute(set core.EntrySet, budgets []core.Budget, now core.Date) Metrics {
	month := core.MonthWindow(now)
	prev := core.MonthWindow(now.StartOfMonth().AddDays(-1))

	m := Metrics{
		Month:        month,
		ElapsedRatio: elapsedRatio(now),
	}

	spend := map[string]int64{} // out cents per category, current month
	var totalOut int64
	for _, c := range set.Concrete() {
		in := month.Contains(c.Date)
		if in {
			m.Delta.Net += c.Signed()
		} else if prev.Contains(c.Date) {
			m.Delta.PrevNet += c.Signed()
		}

		if c.Date.After(now.Time) {
			if c.Direction == core.Out {
				if m.NextOut == nil || c.Date.Before(m.NextOut.Date.Time) {
					cc := c
					m.NextOut = &cc
				}
			} else if m.NextIn == nil || c.Date.Before(m.NextIn.Date.Time) {
				cc := c
				m.NextIn = &cc
			}
		}

		if !in {
			continue
		}

		if c.Direction == core.Out {
			spend[c.Category] += c.Amount.Cents
			totalOut += c.Amount.Cents
			if c.TemplateID != "" {
				m.Mix.Recurring = m.Mix.Recurring.Add(c.Amount)
			} else {
				m.Mix.Variable = m.Mix.Variable.Add(c.Amount)
			}
			if m.LargestOut == nil || c.Amount.Cents > m.LargestOut.Amount.Cents {
				cc := c
				m.LargestOut = &cc
			}
		} else if m.LargestIn == nil || c.Amount.Cents > m.LargestIn.Amount.Cents {
			cc := c
			m.LargestIn = &cc
		}
	}

	if denom := m.Mix.Recurring.Cents + m.Mix.Variable.Cents; denom > 0 {
		m.Mix.Ratio = float64(m.Mix.Recurring.Cents) / float64(denom)
	}
	if m.Delta.PrevNet != 0 {
		pct := float64(m.Delta.Net-m.Delta.PrevNet) / float64(abs(m.Delta.PrevNet))
		m.Delta.MoMPct = &pct
	}
	m.ProjectedNet = projectNet(m.Delta.Net, now)

	m.Budgets = budgetUsage(budgets, spend, m.ElapsedRatio)
	m.TopCategories = topCategories(spend, totalOut)
	m.Alerts = alerts(m.Budgets, budgets, spend)
	return m
}

// projectNet assumes the net keeps accruing at the pace of the elapsed days.
// Today counts as elapsed, so the divisor is never zero.
func projectNet(net int64, now core.Date) int64 {
	pace := float64(net) / float64(now.Day())
	return int64(math.Round(pace * float64(now.DaysInMonth())))
}

func elapsedRatio(now core.Date) float64 {
	r := float64(now.Day()) / float64(now.DaysInMonth())
	if r > 1 {
		r = 1
	}
	return r
}

// budgetUsage skips budgets whose limit is not positive; those are treated as
// "no budget", not an error.
func budgetUsage(budgets []core.Budget, spend map[string]int64, elapsed float64) []BudgetUsage {
	usage := make([]BudgetUsage, 0, len(budgets))
	for _, b := range budgets {
		if b.Limit.Cents <= 0 {
			continue
		}
		spent := spend[b.Category]
		pct := float64(spent) / float64(b.Limit.Cents)
		pace := PaceOnTrack
		if pct > elapsed+0.05 {
			pace = PaceFast
		}
		usage = append(usage, BudgetUsage{
			Category: b.Category,
			Spent:    core.Money{Cents: spent},
			Limit:    b.Limit,
			Pct:      pct,
			Pace:     pace,
		})
	}
	sort.SliceStable(usage, func(i, j int) bool {
		if usage[i].Pct != usage[j].Pct {
			return usage[i].Pct > usage[j].Pct
		}
		return usage[i].Category < usage[j].Category
	})
	return usage
}

func topCategories(spend map[string]int64, total int64) []CategorySpend {
	out := make([]CategorySpend, 0, len(spend))
	for cat, cents := range spend {
		if cents == 0 {
			continue
		}
		cs := CategorySpend{Category: cat, Spent: core.Money{Cents: cents}}
		if total > 0 {
			cs.Share = float64(cents) / float64(total)
		}
		out = append(out, cs)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Spent.Cents != out[j].Spent.Cents {
			return out[i].Spent.Cents > out[j].Spent.Cents
		}
		return out[i].Category < out[j].Category
	})
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

func alerts(usage []BudgetUsage, budgets []core.Budget, spend map[string]int64) []Alert {
	var out []Alert
	for _, u := range usage {
		switch {
		case u.Pct >= 1:
			out = append(out, Alert{
				Kind:     AlertOverBudget,
				Category: u.Category,
				Message:  fmt.Sprintf("%s is over budget (%s of %s)", u.Category, u.Spent, u.Limit),
			})
		case u.Pct >= 0.9:
			out = append(out, Alert{
				Kind:     AlertNearLimit,
				Category: u.Category,
				Message:  fmt.Sprintf("%s is close to its limit (%s of %s)", u.Category, u.Spent, u.Limit),
			})
		case u.Pace == PaceFast && u.Pct > 0.5:
			out = append(out, Alert{
				Kind:     AlertFastPace,
				Category: u.Category,
				Message:  fmt.Sprintf("%s spending is running ahead of the month", u.Category),
			})
		}
	}
	if len(budgets) == 0 {
		out = append(out, Alert{Kind: AlertNoBudgets, Message: "no budgets defined"})
	}
	if spend[""] > 0 {
		out = append(out, Alert{
			Kind:    AlertUncategorized,
			Message: fmt.Sprintf("%s spent without a category", core.Money{Cents: spend[""]}),
		})
	}
	return out
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
