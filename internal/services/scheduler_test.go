package services

import (
	"context"
	"errors"
	"testing"

	"bilancio/internal/core"
	"bilancio/internal/storage/memory"
)

func addTemplate(t *testing.T, store *memory.Store, id, start string, freq core.Frequency) {
	t.Helper()
	err := store.AddTemplate(context.Background(), core.Template{
		EntryBase: core.EntryBase{ID: id, Description: "tmpl " + id, Amount: core.Money{Cents: 4500}, Category: "Housing", Direction: core.Out},
		Frequency: freq,
		StartDate: core.MustDate(start),
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestMaterializeCurrentMonth(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	addTemplate(t, store, "tmpl-m", "2024-01-10", core.Monthly)
	addTemplate(t, store, "tmpl-w", "2024-03-04", core.Weekly) // Mondays

	sched := NewScheduler(store, nil)
	now := core.MustDate("2024-03-15")

	inserted, err := sched.MaterializeCurrentMonth(ctx, now)
	if err != nil {
		t.Fatalf("MaterializeCurrentMonth() error = %v", err)
	}
	// One monthly occurrence plus four March Mondays.
	if inserted != 5 {
		t.Errorf("inserted = %d, want 5", inserted)
	}

	set, _ := store.ListEntries(ctx)
	for _, o := range set.Occurrences {
		if o.ID == "" {
			t.Error("occurrence stored without an id")
		}
		if o.TemplateID != "tmpl-m" && o.TemplateID != "tmpl-w" {
			t.Errorf("unexpected template id %s", o.TemplateID)
		}
	}
}

func TestMaterializeStampsBatchUniformly(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	addTemplate(t, store, "tmpl-m", "2024-01-10", core.Monthly)
	addTemplate(t, store, "tmpl-w", "2024-03-04", core.Weekly)

	sched := NewScheduler(store, nil)
	if _, err := sched.MaterializeCurrentMonth(ctx, core.MustDate("2024-03-15")); err != nil {
		t.Fatal(err)
	}

	set, _ := store.ListEntries(ctx)
	if len(set.Occurrences) < 2 {
		t.Fatalf("occurrences = %d, want at least 2", len(set.Occurrences))
	}
	stamp := set.Occurrences[0].CreatedAt
	for _, o := range set.Occurrences {
		if !o.CreatedAt.Equal(stamp) || !o.UpdatedAt.Equal(stamp) {
			t.Errorf("occurrence %s stamped %v/%v, want the batch stamp %v",
				o.ID, o.CreatedAt, o.UpdatedAt, stamp)
		}
	}
}

func TestMaterializeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	addTemplate(t, store, "tmpl-m", "2024-01-10", core.Monthly)

	sched := NewScheduler(store, nil)
	now := core.MustDate("2024-03-15")

	first, err := sched.MaterializeCurrentMonth(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	second, err := sched.MaterializeCurrentMonth(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if first != 1 || second != 0 {
		t.Errorf("inserted = %d then %d, want 1 then 0", first, second)
	}

	set, _ := store.ListEntries(ctx)
	if len(set.Occurrences) != 1 {
		t.Errorf("occurrences = %d, want 1 (second run must not duplicate)", len(set.Occurrences))
	}
}

func TestMaterializeHonorsToggle(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	addTemplate(t, store, "tmpl-m", "2024-01-10", core.Monthly)
	if err := store.SaveSettings(ctx, core.Settings{AutoGenerateRecurring: false}); err != nil {
		t.Fatal(err)
	}

	sched := NewScheduler(store, nil)
	inserted, err := sched.MaterializeCurrentMonth(ctx, core.MustDate("2024-03-15"))
	if err != nil {
		t.Fatalf("MaterializeCurrentMonth() error = %v", err)
	}
	if inserted != 0 {
		t.Errorf("inserted = %d, want 0 with auto-generate off", inserted)
	}
	set, _ := store.ListEntries(ctx)
	if len(set.Occurrences) != 0 {
		t.Error("occurrences written despite disabled toggle")
	}
}

type stubPublisher struct {
	materialized int
	syncs        []string
	err          error
}

func (p *stubPublisher) PublishEntrySync(_ context.Context, id, action string) error {
	p.syncs = append(p.syncs, id+":"+action)
	return p.err
}

func (p *stubPublisher) PublishMaterialized(_ context.Context, templateIDs []string, inserted int) error {
	p.materialized += inserted
	return p.err
}

func TestMaterializePublishesBatch(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	addTemplate(t, store, "tmpl-m", "2024-01-10", core.Monthly)

	pub := &stubPublisher{}
	sched := NewScheduler(store, pub)
	if _, err := sched.MaterializeCurrentMonth(ctx, core.MustDate("2024-03-15")); err != nil {
		t.Fatal(err)
	}
	if pub.materialized != 1 {
		t.Errorf("published inserted = %d, want 1", pub.materialized)
	}

	// Nothing new on replay, so no second publish.
	if _, err := sched.MaterializeCurrentMonth(ctx, core.MustDate("2024-03-15")); err != nil {
		t.Fatal(err)
	}
	if pub.materialized != 1 {
		t.Errorf("published inserted after replay = %d, want 1", pub.materialized)
	}
}

func TestMaterializePublishFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	addTemplate(t, store, "tmpl-m", "2024-01-10", core.Monthly)

	pub := &stubPublisher{err: errors.New("broker down")}
	sched := NewScheduler(store, pub)

	inserted, err := sched.MaterializeCurrentMonth(ctx, core.MustDate("2024-03-15"))
	if err != nil {
		t.Fatalf("MaterializeCurrentMonth() error = %v, publish failures must not fail the run", err)
	}
	if inserted != 1 {
		t.Errorf("inserted = %d, want 1", inserted)
	}
}
