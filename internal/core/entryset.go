package core

// Concrete is a dated ledger line ready for aggregation: a one-off entry, a
// materialized occurrence, or a projection of a template occurrence that has
// not been persisted. Projections are tagged with the Projected flag rather
// than an id convention so they can never slip into a write path by accident.
type Concrete struct {
	ID          string
	TemplateID  string // empty for one-off entries
	Date        Date
	Description string
	Category    string
	Direction   Direction
	Amount      Money
	Projected   bool
}

// Signed returns the amount in cents with the direction applied.
func (c Concrete) Signed() int64 {
	if c.Direction == In {
		return c.Amount.Cents
	}
	return -c.Amount.Cents
}

// Concrete converts a one-off entry to its aggregation form.
func (o OneOff) Concrete() Concrete {
	return Concrete{
		ID:          o.ID,
		Date:        o.Date,
		Description: o.Description,
		Category:    o.Category,
		Direction:   o.Direction,
		Amount:      o.Amount,
	}
}

// Concrete converts a materialized occurrence to its aggregation form.
func (o Occurrence) Concrete() Concrete {
	return Concrete{
		ID:          o.ID,
		TemplateID:  o.TemplateID,
		Date:        o.Date,
		Description: o.Description,
		Category:    o.Category,
		Direction:   o.Direction,
		Amount:      o.Amount,
	}
}

// Project builds an ephemeral, never-persisted preview of a template
// occurrence on the given day. The id prefix keeps projected row ids distinct
// from persisted ids ("proj-" in ledger reports, "synthetic-" in calendar
// buckets).
func (t Template) Project(idPrefix string, d Date) Concrete {
	return Concrete{
		ID:          idPrefix + t.ID + "-" + d.ISO(),
		TemplateID:  t.ID,
		Date:        d,
		Description: t.Description,
		Category:    t.Category,
		Direction:   t.Direction,
		Amount:      t.Amount,
		Projected:   true,
	}
}

// EntrySet is an immutable snapshot of the durable entry collection. The
// engine recomputes everything on demand from such snapshots; it never
// mutates one.
type EntrySet struct {
	OneOffs     []OneOff
	Templates   []Template
	Occurrences []Occurrence
}

// Concrete returns all persisted ledger lines (one-offs and occurrences,
// never templates) in input order.
func (s EntrySet) Concrete() []Concrete {
	out := make([]Concrete, 0, len(s.OneOffs)+len(s.Occurrences))
	for _, o := range s.OneOffs {
		out = append(out, o.Concrete())
	}
	for _, o := range s.Occurrences {
		out = append(out, o.Concrete())
	}
	return out
}
