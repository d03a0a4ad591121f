package dashboard

import (
	"fmt"
	"testing"

	"bilancio/internal/core"
)

func oneOff(id, day string, cents int64, dir core.Direction, category string) core.OneOff {
	return core.OneOff{
		EntryBase: core.EntryBase{ID: id, Description: "entry " + id, Amount: core.Money{Cents: cents}, Category: category, Direction: dir},
		Date:      core.MustDate(day),
	}
}

func occurrence(id, templateID, day string, cents int64, category string) core.Occurrence {
	return core.Occurrence{
		EntryBase:  core.EntryBase{ID: id, Description: "occ " + id, Amount: core.Money{Cents: cents}, Category: category, Direction: core.Out},
		TemplateID: templateID,
		Date:       core.MustDate(day),
	}
}

func budget(category string, limitCents int64) core.Budget {
	return core.Budget{ID: "b-" + category, Category: category, Limit: core.Money{Cents: limitCents}}
}

func TestComputePaceBoundary(t *testing.T) {
	// 2024-04-15 in a 30 day month: elapsedRatio is exactly 0.5, so the
	// fast threshold sits at 0.55.
	now := core.MustDate("2024-04-15")

	tests := []struct {
		name  string
		spent int64
		want  Pace
	}{
		{"just above threshold", 5600, PaceFast},
		{"just below threshold", 5400, PaceOnTrack},
		{"exactly at threshold", 5500, PaceOnTrack},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := core.EntrySet{OneOffs: []core.OneOff{
				oneOff("a", "2024-04-05", tt.spent, core.Out, "Food"),
			}}
			m := Compute(set, []core.Budget{budget("Food", 10000)}, now)

			if m.ElapsedRatio != 0.5 {
				t.Fatalf("ElapsedRatio = %v, want 0.5", m.ElapsedRatio)
			}
			if len(m.Budgets) != 1 {
				t.Fatalf("Budgets = %d, want 1", len(m.Budgets))
			}
			if m.Budgets[0].Pace != tt.want {
				t.Errorf("Pace = %s, want %s (pct %v)", m.Budgets[0].Pace, tt.want, m.Budgets[0].Pct)
			}
		})
	}
}

func TestComputeBudgetUsage(t *testing.T) {
	now := core.MustDate("2024-04-20")
	set := core.EntrySet{OneOffs: []core.OneOff{
		oneOff("a", "2024-04-02", 9000, core.Out, "Food"),
		oneOff("b", "2024-04-03", 1000, core.Out, "Travel"),
		oneOff("c", "2024-03-28", 5000, core.Out, "Food"), // previous month
	}}
	budgets := []core.Budget{
		budget("Travel", 10000),
		budget("Food", 10000),
		budget("Broken", 0), // limit not positive, skipped
	}

	m := Compute(set, budgets, now)
	if len(m.Budgets) != 2 {
		t.Fatalf("Budgets = %d, want 2 (zero-limit budget must be skipped)", len(m.Budgets))
	}
	// Sorted by pct descending.
	if m.Budgets[0].Category != "Food" || m.Budgets[0].Pct != 0.9 {
		t.Errorf("Budgets[0] = %s pct %v, want Food 0.9", m.Budgets[0].Category, m.Budgets[0].Pct)
	}
	if m.Budgets[1].Category != "Travel" || m.Budgets[1].Pct != 0.1 {
		t.Errorf("Budgets[1] = %s pct %v, want Travel 0.1", m.Budgets[1].Category, m.Budgets[1].Pct)
	}
}

func TestComputeTopCategories(t *testing.T) {
	now := core.MustDate("2024-04-20")
	var offs []core.OneOff
	for i, c := range []struct {
		category string
		cents    int64
	}{
		{"A", 700}, {"B", 600}, {"C", 500}, {"D", 400}, {"E", 300}, {"F", 200},
	} {
		offs = append(offs, oneOff(fmt.Sprintf("e%d", i), "2024-04-05", c.cents, core.Out, c.category))
	}
	offs = append(offs, oneOff("in", "2024-04-06", 99999, core.In, "Salary"))

	m := Compute(core.EntrySet{OneOffs: offs}, nil, now)
	if len(m.TopCategories) != 5 {
		t.Fatalf("TopCategories = %d, want 5", len(m.TopCategories))
	}
	if m.TopCategories[0].Category != "A" {
		t.Errorf("top category = %s, want A", m.TopCategories[0].Category)
	}
	for _, cs := range m.TopCategories {
		if cs.Category == "F" {
			t.Error("sixth category leaked into the top five")
		}
	}
	// 700 of 2700 total out spend.
	if got := m.TopCategories[0].Share; got < 0.259 || got > 0.26 {
		t.Errorf("Share = %v, want ~0.2593", got)
	}
}

func TestComputeExtremes(t *testing.T) {
	now := core.MustDate("2024-04-20")
	set := core.EntrySet{OneOffs: []core.OneOff{
		oneOff("out1", "2024-04-02", 5000, core.Out, "Food"),
		oneOff("out2", "2024-04-03", 5000, core.Out, "Travel"), // tie, first encountered wins
		oneOff("out3", "2024-04-04", 100, core.Out, "Food"),
		oneOff("in1", "2024-04-05", 20000, core.In, "Salary"),
	}}

	m := Compute(set, nil, now)
	if m.LargestOut == nil || m.LargestOut.ID != "out1" {
		t.Errorf("LargestOut = %+v, want out1", m.LargestOut)
	}
	if m.LargestIn == nil || m.LargestIn.ID != "in1" {
		t.Errorf("LargestIn = %+v, want in1", m.LargestIn)
	}

	empty := Compute(core.EntrySet{}, nil, now)
	if empty.LargestOut != nil || empty.LargestIn != nil {
		t.Error("extremes must be nil for an empty month")
	}
}

func TestComputeRecurringMix(t *testing.T) {
	now := core.MustDate("2024-04-20")
	set := core.EntrySet{
		OneOffs:     []core.OneOff{oneOff("a", "2024-04-02", 2500, core.Out, "Food")},
		Occurrences: []core.Occurrence{occurrence("o1", "tmpl-1", "2024-04-01", 7500, "Housing")},
	}

	m := Compute(set, nil, now)
	if m.Mix.Recurring.Cents != 7500 || m.Mix.Variable.Cents != 2500 {
		t.Errorf("Mix = %+v", m.Mix)
	}
	if m.Mix.Ratio != 0.75 {
		t.Errorf("Ratio = %v, want 0.75", m.Mix.Ratio)
	}

	if none := Compute(core.EntrySet{}, nil, now); none.Mix.Ratio != 0 {
		t.Errorf("Ratio without spend = %v, want 0", none.Mix.Ratio)
	}
}

func TestComputeNetDelta(t *testing.T) {
	now := core.MustDate("2024-04-20")

	t.Run("with baseline", func(t *testing.T) {
		set := core.EntrySet{OneOffs: []core.OneOff{
			oneOff("p1", "2024-03-10", 10000, core.In, "Salary"), // prev net +100
			oneOff("c1", "2024-04-10", 15000, core.In, "Salary"),
			oneOff("c2", "2024-04-11", 5000, core.Out, "Food"), // net +100 -> delta 0
		}}
		m := Compute(set, nil, now)
		if m.Delta.Net != 10000 || m.Delta.PrevNet != 10000 {
			t.Fatalf("Delta = %+v", m.Delta)
		}
		if m.Delta.MoMPct == nil || *m.Delta.MoMPct != 0 {
			t.Errorf("MoMPct = %v, want 0", m.Delta.MoMPct)
		}
	})

	t.Run("negative baseline", func(t *testing.T) {
		set := core.EntrySet{OneOffs: []core.OneOff{
			oneOff("p1", "2024-03-10", 10000, core.Out, "Food"), // prev net -100
			oneOff("c1", "2024-04-10", 10000, core.In, "Salary"),
		}}
		m := Compute(set, nil, now)
		if m.Delta.MoMPct == nil || *m.Delta.MoMPct != 2 {
			t.Errorf("MoMPct = %v, want 2 (delta over absolute baseline)", m.Delta.MoMPct)
		}
	})

	t.Run("no baseline", func(t *testing.T) {
		set := core.EntrySet{OneOffs: []core.OneOff{
			oneOff("c1", "2024-04-10", 10000, core.In, "Salary"),
		}}
		m := Compute(set, nil, now)
		if m.Delta.MoMPct != nil {
			t.Errorf("MoMPct = %v, want nil when the previous month nets to zero", *m.Delta.MoMPct)
		}
	})
}

func TestComputeProjectedNet(t *testing.T) {
	tests := []struct {
		name string
		now  string
		set  core.EntrySet
		want int64
	}{
		{
			// Net +30.00 after 10 of 30 days projects to +90.00.
			name: "linear pace mid month",
			now:  "2024-04-10",
			set: core.EntrySet{OneOffs: []core.OneOff{
				oneOff("a", "2024-04-05", 3000, core.In, "Salary"),
			}},
			want: 9000,
		},
		{
			name: "negative net on day one",
			now:  "2024-04-01",
			set: core.EntrySet{OneOffs: []core.OneOff{
				oneOff("a", "2024-04-01", 500, core.Out, "Food"),
			}},
			want: -15000,
		},
		{
			name: "empty month projects zero",
			now:  "2024-04-10",
			set:  core.EntrySet{},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Compute(tt.set, nil, core.MustDate(tt.now))
			if m.ProjectedNet != tt.want {
				t.Errorf("ProjectedNet = %d, want %d", m.ProjectedNet, tt.want)
			}
		})
	}
}

func TestComputeNextUpcoming(t *testing.T) {
	now := core.MustDate("2024-04-10")
	set := core.EntrySet{
		OneOffs: []core.OneOff{
			oneOff("past", "2024-04-08", 1000, core.Out, "Food"),
			oneOff("today", "2024-04-10", 1000, core.Out, "Food"), // not strictly future
			oneOff("soon", "2024-04-12", 2000, core.Out, "Food"),
			oneOff("later", "2024-04-20", 3000, core.Out, "Food"),
			oneOff("pay", "2024-05-01", 90000, core.In, "Salary"), // next month still counts
		},
		Occurrences: []core.Occurrence{
			occurrence("o1", "tmpl-1", "2024-04-15", 5000, "Housing"),
		},
	}

	m := Compute(set, nil, now)
	if m.NextOut == nil || m.NextOut.ID != "soon" {
		t.Errorf("NextOut = %+v, want soon", m.NextOut)
	}
	if m.NextIn == nil || m.NextIn.ID != "pay" {
		t.Errorf("NextIn = %+v, want pay", m.NextIn)
	}

	empty := Compute(core.EntrySet{OneOffs: []core.OneOff{
		oneOff("past", "2024-04-08", 1000, core.Out, "Food"),
	}}, nil, now)
	if empty.NextOut != nil || empty.NextIn != nil {
		t.Error("upcoming entries must be nil when nothing lies ahead")
	}
}

func TestComputeAlerts(t *testing.T) {
	now := core.MustDate("2024-04-15") // elapsedRatio 0.5

	set := core.EntrySet{OneOffs: []core.OneOff{
		oneOff("a", "2024-04-02", 12000, core.Out, "Food"),    // pct 1.2, over
		oneOff("b", "2024-04-03", 9500, core.Out, "Travel"),   // pct 0.95, near limit
		oneOff("c", "2024-04-04", 6000, core.Out, "Hobby"),    // pct 0.6, fast
		oneOff("d", "2024-04-05", 1000, core.Out, "Pets"),     // pct 0.1, quiet
		oneOff("e", "2024-04-06", 300, core.Out, ""),          // uncategorized
	}}
	budgets := []core.Budget{
		budget("Food", 10000),
		budget("Travel", 10000),
		budget("Hobby", 10000),
		budget("Pets", 10000),
	}

	m := Compute(set, budgets, now)
	want := []AlertKind{AlertOverBudget, AlertNearLimit, AlertFastPace, AlertUncategorized}
	if len(m.Alerts) != len(want) {
		t.Fatalf("Alerts = %+v, want kinds %v", m.Alerts, want)
	}
	for i, kind := range want {
		if m.Alerts[i].Kind != kind {
			t.Errorf("Alerts[%d].Kind = %s, want %s", i, m.Alerts[i].Kind, kind)
		}
	}
	if m.Alerts[0].Category != "Food" || m.Alerts[1].Category != "Travel" || m.Alerts[2].Category != "Hobby" {
		t.Errorf("alert categories = %+v", m.Alerts[:3])
	}
}

func TestComputeNoBudgetsAlert(t *testing.T) {
	m := Compute(core.EntrySet{}, nil, core.MustDate("2024-04-15"))
	if len(m.Alerts) != 1 || m.Alerts[0].Kind != AlertNoBudgets {
		t.Errorf("Alerts = %+v, want a single no-budgets alert", m.Alerts)
	}
}
