package recur

import (
	"testing"

	"bilancio/internal/core"
)

func occurrence(templateID, day string) core.Occurrence {
	return core.Occurrence{
		EntryBase:  core.EntryBase{ID: "occ-" + day, Description: "x", Amount: core.Money{Cents: 100}, Direction: core.Out},
		TemplateID: templateID,
		Date:       core.MustDate(day),
	}
}

func TestGuardFilter(t *testing.T) {
	g := NewGuard([]core.Occurrence{
		occurrence("tmpl-a", "2024-03-01"),
		occurrence("tmpl-a", "2024-03-15"),
		occurrence("tmpl-b", "2024-03-01"),
	})

	candidates := []core.Date{
		core.MustDate("2024-03-01"), // exists for tmpl-a
		core.MustDate("2024-03-08"),
		core.MustDate("2024-03-15"), // exists for tmpl-a
		core.MustDate("2024-03-22"),
	}

	got := g.Filter("tmpl-a", candidates)
	want := []string{"2024-03-08", "2024-03-22"}
	if len(got) != len(want) {
		t.Fatalf("Filter() = %v, want %v", got, want)
	}
	for i := range got {
		if got[i].ISO() != want[i] {
			t.Errorf("Filter()[%d] = %s, want %s", i, got[i].ISO(), want[i])
		}
	}
}

func TestGuardKeysPerTemplate(t *testing.T) {
	g := NewGuard([]core.Occurrence{occurrence("tmpl-a", "2024-03-01")})

	// Same day for a different template is new.
	got := g.Filter("tmpl-b", []core.Date{core.MustDate("2024-03-01")})
	if len(got) != 1 {
		t.Fatalf("Filter() dropped a date that only exists for another template")
	}
}

func TestGuardRejectsDuplicatesWithinBatch(t *testing.T) {
	g := NewGuard(nil)
	d := core.MustDate("2024-03-01")

	got := g.Filter("tmpl-a", []core.Date{d, d})
	if len(got) != 1 {
		t.Fatalf("Filter() = %d dates, want 1 (in-batch duplicate must be dropped)", len(got))
	}
	if again := g.Filter("tmpl-a", []core.Date{d}); len(again) != 0 {
		// Accepted dates count as existing for later calls too.
		t.Error("Filter() re-accepted a date from an earlier batch")
	}
}
