// Package services holds the write boundary of the engine: validated entry
// and budget mutations, and the scheduler that materializes recurring
// templates into the durable store.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

// Publisher is the outbound event port. A nil Publisher disables publishing.
type Publisher interface {
	PublishEntrySync(ctx context.Context, id, action string) error
	PublishMaterialized(ctx context.Context, templateIDs []string, inserted int) error
}

const (
	actionCreated = "created"
	actionUpdated = "updated"
	actionDeleted = "deleted"
)

// OneOffInput is the raw material for a one-off entry. Amount arrives as
// decimal text and is parsed here; the engine downstream only ever sees
// validated records.
type OneOffInput struct {
	Description string
	Amount      string
	Category    string
	Direction   core.Direction
	Date        string
}

// TemplateInput is the raw material for a recurrence template. EndDate may be
// empty for an open-ended template.
type TemplateInput struct {
	Description string
	Amount      string
	Category    string
	Direction   core.Direction
	Frequency   core.Frequency
	StartDate   string
	EndDate     string
}

// BudgetInput is the raw material for a monthly category budget.
type BudgetInput struct {
	Category string
	Limit    string
}

// EntryService validates and persists entries and budgets, then publishes
// change events. Publishing is best effort: a failed publish never rolls back
// a successful write.
type EntryService struct {
	store     storage.Store
	publisher Publisher
}

func NewEntryService(store storage.Store, publisher Publisher) *EntryService {
	return &EntryService{store: store, publisher: publisher}
}

func (s *EntryService) CreateOneOff(ctx context.Context, in OneOffInput) (core.OneOff, error) {
	e, err := s.buildOneOff(in)
	if err != nil {
		return core.OneOff{}, err
	}
	e.ID = uuid.NewString()
	e.CreatedAt = time.Now().UTC()
	e.UpdatedAt = e.CreatedAt

	if err := s.store.AddOneOff(ctx, e); err != nil {
		return core.OneOff{}, fmt.Errorf("save one-off: %w", err)
	}
	s.publishSync(ctx, e.ID, actionCreated)
	return e, nil
}

func (s *EntryService) UpdateOneOff(ctx context.Context, id string, in OneOffInput) (core.OneOff, error) {
	e, err := s.buildOneOff(in)
	if err != nil {
		return core.OneOff{}, err
	}
	e.ID = id
	e.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateOneOff(ctx, e); err != nil {
		return core.OneOff{}, fmt.Errorf("update one-off: %w", err)
	}
	s.publishSync(ctx, id, actionUpdated)
	return e, nil
}

func (s *EntryService) CreateTemplate(ctx context.Context, in TemplateInput) (core.Template, error) {
	t, err := s.buildTemplate(in)
	if err != nil {
		return core.Template{}, err
	}
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt

	if err := s.store.AddTemplate(ctx, t); err != nil {
		return core.Template{}, fmt.Errorf("save template: %w", err)
	}
	s.publishSync(ctx, t.ID, actionCreated)
	return t, nil
}

func (s *EntryService) UpdateTemplate(ctx context.Context, id string, in TemplateInput) (core.Template, error) {
	t, err := s.buildTemplate(in)
	if err != nil {
		return core.Template{}, err
	}
	t.ID = id
	t.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateTemplate(ctx, t); err != nil {
		return core.Template{}, fmt.Errorf("update template: %w", err)
	}
	s.publishSync(ctx, id, actionUpdated)
	return t, nil
}

func (s *EntryService) DeleteEntry(ctx context.Context, id string) error {
	if err := s.store.DeleteEntry(ctx, id); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	s.publishSync(ctx, id, actionDeleted)
	return nil
}

func (s *EntryService) CreateBudget(ctx context.Context, in BudgetInput) (core.Budget, error) {
	b, err := s.buildBudget(in)
	if err != nil {
		return core.Budget{}, err
	}
	b.ID = uuid.NewString()
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt

	if err := s.store.AddBudget(ctx, b); err != nil {
		return core.Budget{}, fmt.Errorf("save budget: %w", err)
	}
	return b, nil
}

func (s *EntryService) UpdateBudget(ctx context.Context, id string, in BudgetInput) (core.Budget, error) {
	b, err := s.buildBudget(in)
	if err != nil {
		return core.Budget{}, err
	}
	b.ID = id
	b.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateBudget(ctx, b); err != nil {
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}
	return b, nil
}

func (s *EntryService) DeleteBudget(ctx context.Context, id string) error {
	if err := s.store.DeleteBudget(ctx, id); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}

// SetAutoGenerateRecurring flips the global materialization toggle.
func (s *EntryService) SetAutoGenerateRecurring(ctx context.Context, enabled bool) error {
	settings, err := s.store.Settings(ctx)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}
	settings.AutoGenerateRecurring = enabled
	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	slog.InfoContext(ctx, "Auto-generate recurring toggled", "enabled", enabled)
	return nil
}

func (s *EntryService) buildOneOff(in OneOffInput) (core.OneOff, error) {
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.OneOff{}, err
	}
	date, err := core.ParseDate(in.Date)
	if err != nil {
		return core.OneOff{}, err
	}
	e := core.OneOff{
		EntryBase: core.EntryBase{
			Description: in.Description,
			Amount:      amount,
			Category:    in.Category,
			Direction:   in.Direction,
		},
		Date: date,
	}
	if err := e.Validate(); err != nil {
		return core.OneOff{}, err
	}
	return e, nil
}

func (s *EntryService) buildTemplate(in TemplateInput) (core.Template, error) {
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Template{}, err
	}
	start, err := core.ParseDate(in.StartDate)
	if err != nil {
		return core.Template{}, err
	}
	t := core.Template{
		EntryBase: core.EntryBase{
			Description: in.Description,
			Amount:      amount,
			Category:    in.Category,
			Direction:   in.Direction,
		},
		Frequency: in.Frequency,
		StartDate: start,
	}
	if in.EndDate != "" {
		if t.EndDate, err = core.ParseDate(in.EndDate); err != nil {
			return core.Template{}, err
		}
	}
	if err := t.Validate(); err != nil {
		return core.Template{}, err
	}
	return t, nil
}

func (s *EntryService) buildBudget(in BudgetInput) (core.Budget, error) {
	limit, err := core.ParseLimit(in.Limit)
	if err != nil {
		return core.Budget{}, err
	}
	b := core.Budget{Category: in.Category, Limit: limit}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

func (s *EntryService) publishSync(ctx context.Context, id, action string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEntrySync(ctx, id, action); err != nil {
		// The local write already succeeded; the consumer catches up later.
		slog.ErrorContext(ctx, "Failed to publish entry sync message",
			"id", id,
			"action", action,
			"error", err)
	}
}
