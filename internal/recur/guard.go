package recur

import (
	"bilancio/internal/core"
)

// Key is the dedup key of a materialized occurrence: template id plus ISO day.
// The storage layer enforces the same key with a unique constraint so that
// concurrent materializers stay correct; the in-memory guard only protects a
// single invocation.
func Key(templateID string, d core.Date) string {
	return templateID + "|" + d.ISO()
}

// Guard filters expander output down to dates with no existing materialized
// occurrence for the same template and day.
type Guard struct {
	existing map[string]struct{}
}

// NewGuard indexes the already materialized occurrences.
func NewGuard(occurrences []core.Occurrence) *Guard {
	g := &Guard{existing: make(map[string]struct{}, len(occurrences))}
	for _, o := range occurrences {
		g.existing[Key(o.TemplateID, o.Date)] = struct{}{}
	}
	return g
}

// Has reports whether an occurrence already exists for the template on that day.
func (g *Guard) Has(templateID string, d core.Date) bool {
	_, ok := g.existing[Key(templateID, d)]
	return ok
}

// Filter returns the candidates that are genuinely new, preserving input
// order. Accepted dates are recorded so a duplicate candidate within the same
// batch is also dropped.
func (g *Guard) Filter(templateID string, candidates []core.Date) []core.Date {
	out := make([]core.Date, 0, len(candidates))
	for _, d := range candidates {
		k := Key(templateID, d)
		if _, ok := g.existing[k]; ok {
			continue
		}
		g.existing[k] = struct{}{}
		out = append(out, d)
	}
	return out
}
