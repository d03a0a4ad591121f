package recur

import (
	"testing"
	"time"

	"bilancio/internal/core"
)

func monthlyTemplate(start string) core.Template {
	return core.Template{
		EntryBase: core.EntryBase{
			ID:          "tmpl-rent",
			Description: "Rent",
			Amount:      core.Money{Cents: 10000},
			Direction:   core.Out,
		},
		Frequency: core.Monthly,
		StartDate: core.MustDate(start),
	}
}

func window(from, to string) core.Window {
	return core.Window{From: core.MustDate(from), To: core.MustDate(to)}
}

func isoDates(ds []core.Date) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.ISO()
	}
	return out
}

func TestExpandMonthlyClampsShortMonths(t *testing.T) {
	tmpl := monthlyTemplate("2024-01-31")

	tests := []struct {
		name string
		win  core.Window
		want []string
	}{
		{"february leap year", window("2024-02-01", "2024-02-29"), []string{"2024-02-29"}},
		{"february non-leap", window("2023-02-01", "2023-02-28"), nil}, // before start date
		{"april clamps to 30", window("2024-04-01", "2024-04-30"), []string{"2024-04-30"}},
		{"several months", window("2024-01-01", "2024-03-31"), []string{"2024-01-31", "2024-02-29", "2024-03-31"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isoDates(Expand(tmpl, tt.win))
			if len(got) != len(tt.want) {
				t.Fatalf("Expand() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Expand()[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExpandMonthlyNonLeapFebruary(t *testing.T) {
	// Same day-31 template but started earlier, so February 2023 is in range.
	tmpl := monthlyTemplate("2022-01-31")
	got := isoDates(Expand(tmpl, window("2023-02-01", "2023-02-28")))
	if len(got) != 1 || got[0] != "2023-02-28" {
		t.Fatalf("Expand() = %v, want [2023-02-28]", got)
	}
}

func TestExpandWeeklyPreservesPhase(t *testing.T) {
	// 2024-01-03 is a Wednesday.
	tmpl := core.Template{
		EntryBase: core.EntryBase{ID: "tmpl-w", Description: "Gym", Amount: core.Money{Cents: 1500}, Direction: core.Out},
		Frequency: core.Weekly,
		StartDate: core.MustDate("2024-01-03"),
	}

	got := Expand(tmpl, window("2024-02-10", "2024-03-10"))
	if len(got) == 0 {
		t.Fatal("Expand() returned no occurrences")
	}
	for _, d := range got {
		if d.Weekday() != time.Wednesday {
			t.Errorf("Expand() produced %s (%s), want only Wednesdays", d.ISO(), d.Weekday())
		}
	}
	// First occurrence is the first Wednesday on or after the window start,
	// never the window start itself.
	if got[0].ISO() != "2024-02-14" {
		t.Errorf("Expand() first = %s, want 2024-02-14", got[0].ISO())
	}
}

func TestExpandYearly(t *testing.T) {
	tmpl := core.Template{
		EntryBase: core.EntryBase{ID: "tmpl-y", Description: "Insurance", Amount: core.Money{Cents: 42000}, Direction: core.Out},
		Frequency: core.Yearly,
		StartDate: core.MustDate("2020-02-29"), // leap day start
	}

	tests := []struct {
		name string
		win  core.Window
		want []string
	}{
		{"leap year keeps day 29", window("2024-01-01", "2024-12-31"), []string{"2024-02-29"}},
		{"non-leap clamps to 28", window("2023-01-01", "2023-12-31"), []string{"2023-02-28"}},
		{"window excludes month", window("2024-03-01", "2024-12-31"), nil},
		{"two years", window("2023-01-01", "2024-12-31"), []string{"2023-02-28", "2024-02-29"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isoDates(Expand(tmpl, tt.win))
			if len(got) != len(tt.want) {
				t.Fatalf("Expand() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Expand()[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExpandBounds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*core.Template)
		win    core.Window
		want   int
	}{
		{"start after window", func(tm *core.Template) { tm.StartDate = core.MustDate("2025-01-01") }, window("2024-01-01", "2024-12-31"), 0},
		{"end before window", func(tm *core.Template) { tm.EndDate = core.MustDate("2023-06-30") }, window("2024-01-01", "2024-12-31"), 0},
		{"end inside window truncates", func(tm *core.Template) { tm.EndDate = core.MustDate("2024-02-29") }, window("2024-01-01", "2024-12-31"), 2},
		{"end before start", func(tm *core.Template) { tm.EndDate = core.MustDate("2023-01-01") }, window("2024-01-01", "2024-12-31"), 0},
		{"unknown frequency", func(tm *core.Template) { tm.Frequency = "daily-ish" }, window("2024-01-01", "2024-12-31"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := monthlyTemplate("2024-01-31")
			tt.mutate(&tmpl)
			if got := Expand(tmpl, tt.win); len(got) != tt.want {
				t.Errorf("Expand() returned %d occurrences, want %d", len(got), tt.want)
			}
		})
	}
}

func TestExpandOrdering(t *testing.T) {
	tmpl := core.Template{
		EntryBase: core.EntryBase{ID: "tmpl-o", Description: "Salary", Amount: core.Money{Cents: 250000}, Direction: core.In},
		Frequency: core.Weekly,
		StartDate: core.MustDate("2024-01-01"),
	}
	got := Expand(tmpl, window("2024-01-01", "2024-03-31"))
	for i := 1; i < len(got); i++ {
		if !got[i-1].Before(got[i].Time) {
			t.Fatalf("Expand() not ascending at %d: %s then %s", i, got[i-1].ISO(), got[i].ISO())
		}
	}
}
