// Package calendar buckets ledger activity by day for a single visible month,
// previewing not-yet-materialized template occurrences alongside persisted
// entries.
package calendar

import (
	"sort"

	"bilancio/internal/core"
	"bilancio/internal/recur"
)

// SyntheticIDPrefix marks item ids of previewed occurrences in calendar
// buckets. As in the ledger, the authoritative tag is the Projected flag.
const SyntheticIDPrefix = "synthetic-"

// Bucket is one day of the month with its items and direction sums.
type Bucket struct {
	Date  core.Date
	In    core.Money
	Out   core.Money
	Items []core.Concrete
}

// Net reports the signed day total in cents.
func (b Bucket) Net() int64 {
	return b.In.Cents - b.Out.Cents
}

// IsPadding reports whether the bucket is a grid filler outside the month.
func (b Bucket) IsPadding() bool {
	return b.Date.IsEmpty()
}

// Options controls bucket building.
type Options struct {
	// HideProjected drops synthetic occurrences from items and sums.
	HideProjected bool
}

// MonthBuckets builds one bucket per day of the month containing the given
// date. Persisted entries land in their day's bucket; every template is
// expanded over the whole month and each candidate day without a matching
// materialized occurrence receives a synthetic preview item. Items within a
// bucket are ordered by descending amount, ties keeping insertion order.
func MonthBuckets(set core.EntrySet, month core.Date, opts Options) []Bucket {
	window := core.MonthWindow(month)
	days := month.DaysInMonth()

	buckets := make([]Bucket, days)
	for i := range buckets {
		buckets[i].Date = window.From.AddDays(i)
	}
	add := func(c core.Concrete) {
		i := c.Date.Day() - 1
		buckets[i].Items = append(buckets[i].Items, c)
		if c.Direction == core.In {
			buckets[i].In = buckets[i].In.Add(c.Amount)
		} else {
			buckets[i].Out = buckets[i].Out.Add(c.Amount)
		}
	}

	for _, c := range set.Concrete() {
		if window.Contains(c.Date) {
			add(c)
		}
	}

	if !opts.HideProjected {
		guard := recur.NewGuard(set.Occurrences)
		for _, t := range set.Templates {
			for _, d := range guard.Filter(t.ID, recur.Expand(t, window)) {
				add(t.Project(SyntheticIDPrefix, d))
			}
		}
	}

	for i := range buckets {
		items := buckets[i].Items
		sort.SliceStable(items, func(a, b int) bool {
			return items[a].Amount.Cents > items[b].Amount.Cents
		})
	}
	return buckets
}
