package core

import (
	"errors"
	"testing"
)

func validTemplate() Template {
	return Template{
		EntryBase: EntryBase{
			ID:          "tmpl-1",
			Description: "Rent",
			Amount:      Money{Cents: 90000},
			Category:    "Housing",
			Direction:   Out,
		},
		Frequency: Monthly,
		StartDate: NewDate(2024, 1, 31),
	}
}

func TestTemplateValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Template)
		wantErr error
	}{
		{"valid", func(*Template) {}, nil},
		{"valid with end date", func(tm *Template) { tm.EndDate = NewDate(2025, 1, 1) }, nil},
		{"end before start", func(tm *Template) { tm.EndDate = NewDate(2023, 12, 1) }, ErrEndBeforeStart},
		{"unknown frequency", func(tm *Template) { tm.Frequency = "biweekly" }, ErrInvalidFrequency},
		{"zero start date", func(tm *Template) { tm.StartDate = Date{} }, nil}, // wrapped, checked below
		{"empty description", func(tm *Template) { tm.Description = " " }, ErrEmptyDescription},
		{"zero amount", func(tm *Template) { tm.Amount = Money{} }, ErrInvalidAmount},
		{"bad direction", func(tm *Template) { tm.Direction = "sideways" }, ErrInvalidDirection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := validTemplate()
			tt.mutate(&tmpl)
			err := tmpl.Validate()
			switch {
			case tt.name == "zero start date":
				if err == nil {
					t.Fatal("Validate() expected error for zero start date")
				}
			case tt.wantErr == nil:
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
			default:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
				}
			}
		})
	}
}

func TestOneOffValidate(t *testing.T) {
	o := OneOff{
		EntryBase: EntryBase{ID: "e1", Description: "Groceries", Amount: Money{Cents: 4250}, Direction: Out},
		Date:      NewDate(2024, 3, 10),
	}
	if err := o.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	o.Date = Date{}
	if !errors.Is(o.Validate(), ErrInvalidDate) {
		t.Error("Validate() expected ErrInvalidDate for zero date")
	}
}

func TestBudgetValidate(t *testing.T) {
	b := Budget{ID: "b1", Category: "Food", Limit: Money{Cents: 30000}}
	if err := b.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	b.Limit = Money{Cents: 0}
	if err := b.Validate(); err != nil {
		t.Errorf("Validate() zero limit should be legal, got %v", err)
	}

	b.Limit = Money{Cents: -100}
	if !errors.Is(b.Validate(), ErrInvalidLimit) {
		t.Error("Validate() expected ErrInvalidLimit for negative limit")
	}
}

func TestConcreteSigned(t *testing.T) {
	in := Concrete{Direction: In, Amount: Money{Cents: 500}}
	out := Concrete{Direction: Out, Amount: Money{Cents: 200}}
	if in.Signed() != 500 {
		t.Errorf("Signed() in = %d, want 500", in.Signed())
	}
	if out.Signed() != -200 {
		t.Errorf("Signed() out = %d, want -200", out.Signed())
	}
}

func TestTemplateProject(t *testing.T) {
	tmpl := validTemplate()
	p := tmpl.Project("proj-", NewDate(2024, 2, 29))

	if !p.Projected {
		t.Error("Project() must tag the result as projected")
	}
	if p.ID != "proj-tmpl-1-2024-02-29" {
		t.Errorf("Project() id = %s", p.ID)
	}
	if p.TemplateID != tmpl.ID || p.Amount != tmpl.Amount || p.Direction != tmpl.Direction {
		t.Error("Project() must carry the template's fields")
	}
}

func TestEntrySetConcreteExcludesTemplates(t *testing.T) {
	set := EntrySet{
		OneOffs:   []OneOff{{EntryBase: EntryBase{ID: "o1"}, Date: NewDate(2024, 1, 1)}},
		Templates: []Template{validTemplate()},
		Occurrences: []Occurrence{
			{EntryBase: EntryBase{ID: "occ1"}, TemplateID: "tmpl-1", Date: NewDate(2024, 1, 31)},
		},
	}

	concrete := set.Concrete()
	if len(concrete) != 2 {
		t.Fatalf("Concrete() returned %d lines, want 2", len(concrete))
	}
	for _, c := range concrete {
		if c.Projected {
			t.Error("Concrete() must never tag persisted lines as projected")
		}
	}
}
