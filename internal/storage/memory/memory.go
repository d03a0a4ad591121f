// Package memory is an in-memory Store used in tests and for running the
// server without a database file.
package memory

import (
	"context"
	"fmt"
	"sync"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

type Store struct {
	mu          sync.Mutex
	oneOffs     []core.OneOff
	templates   []core.Template
	occurrences []core.Occurrence
	budgets     []core.Budget
	settings    core.Settings
}

func New() *Store {
	return &Store{settings: core.Settings{AutoGenerateRecurring: true}}
}

func (s *Store) ListEntries(_ context.Context) (core.EntrySet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.EntrySet{
		OneOffs:     append([]core.OneOff(nil), s.oneOffs...),
		Templates:   append([]core.Template(nil), s.templates...),
		Occurrences: append([]core.Occurrence(nil), s.occurrences...),
	}, nil
}

func (s *Store) AddOneOff(_ context.Context, e core.OneOff) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.oneOffs = append(s.oneOffs, e)
	return nil
}

func (s *Store) UpdateOneOff(_ context.Context, e core.OneOff) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.oneOffs {
		if s.oneOffs[i].ID == e.ID {
			s.oneOffs[i] = e
			return nil
		}
	}
	return fmt.Errorf("%w: %s", storage.ErrNotFound, e.ID)
}

func (s *Store) AddTemplate(_ context.Context, t core.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates = append(s.templates, t)
	return nil
}

func (s *Store) UpdateTemplate(_ context.Context, t core.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.templates {
		if s.templates[i].ID == t.ID {
			s.templates[i] = t
			return nil
		}
	}
	return fmt.Errorf("%w: %s", storage.ErrNotFound, t.ID)
}

func (s *Store) DeleteEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.oneOffs {
		if s.oneOffs[i].ID == id {
			s.oneOffs = append(s.oneOffs[:i], s.oneOffs[i+1:]...)
			return nil
		}
	}
	for i := range s.occurrences {
		if s.occurrences[i].ID == id {
			s.occurrences = append(s.occurrences[:i], s.occurrences[i+1:]...)
			return nil
		}
	}
	for i := range s.templates {
		if s.templates[i].ID == id {
			s.templates = append(s.templates[:i], s.templates[i+1:]...)
			kept := s.occurrences[:0]
			for _, o := range s.occurrences {
				if o.TemplateID != id {
					kept = append(kept, o)
				}
			}
			s.occurrences = kept
			return nil
		}
	}
	return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
}

// AppendOccurrences skips (template, date) pairs already stored, matching the
// unique-constraint behavior of the SQLite repository.
func (s *Store) AppendOccurrences(_ context.Context, occs []core.Occurrence) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]struct{}, len(s.occurrences))
	for _, o := range s.occurrences {
		existing[o.TemplateID+"|"+o.Date.ISO()] = struct{}{}
	}

	inserted := 0
	for _, o := range occs {
		key := o.TemplateID + "|" + o.Date.ISO()
		if _, ok := existing[key]; ok {
			continue
		}
		existing[key] = struct{}{}
		s.occurrences = append(s.occurrences, o)
		inserted++
	}
	return inserted, nil
}

func (s *Store) ListBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Budget(nil), s.budgets...), nil
}

func (s *Store) AddBudget(_ context.Context, b core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets = append(s.budgets, b)
	return nil
}

func (s *Store) UpdateBudget(_ context.Context, b core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.budgets {
		if s.budgets[i].ID == b.ID {
			s.budgets[i] = b
			return nil
		}
	}
	return fmt.Errorf("%w: %s", storage.ErrNotFound, b.ID)
}

func (s *Store) DeleteBudget(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.budgets {
		if s.budgets[i].ID == id {
			s.budgets = append(s.budgets[:i], s.budgets[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
}

func (s *Store) Settings(_ context.Context) (core.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings, nil
}

func (s *Store) SaveSettings(_ context.Context, set core.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = set
	return nil
}
