package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/core"
	"bilancio/internal/recur"
	"bilancio/internal/storage"
)

// Scheduler materializes recurring templates into durable occurrences for the
// month containing the reference date. Running it again over the same month is
// a no-op: the guard skips everything already stored, and the store's unique
// constraint covers racing invocations.
type Scheduler struct {
	store     storage.Store
	publisher Publisher
}

func NewScheduler(store storage.Store, publisher Publisher) *Scheduler {
	return &Scheduler{store: store, publisher: publisher}
}

// MaterializeCurrentMonth expands every template over the month of now and
// persists the occurrences that do not exist yet. It returns how many were
// inserted.
func (s *Scheduler) MaterializeCurrentMonth(ctx context.Context, now core.Date) (int, error) {
	settings, err := s.store.Settings(ctx)
	if err != nil {
		return 0, fmt.Errorf("read settings: %w", err)
	}
	if !settings.AutoGenerateRecurring {
		slog.InfoContext(ctx, "Auto-generate recurring disabled, skipping materialization")
		return 0, nil
	}

	set, err := s.store.ListEntries(ctx)
	if err != nil {
		return 0, fmt.Errorf("list entries: %w", err)
	}

	window := core.MonthWindow(now)
	guard := recur.NewGuard(set.Occurrences)

	var (
		pending     []core.Occurrence
		templateIDs []string
	)
	// One stamp for the whole batch, so a run is identifiable by its
	// creation time.
	stamp := time.Now().UTC()
	for _, t := range set.Templates {
		dates := guard.Filter(t.ID, recur.Expand(t, window))
		if len(dates) == 0 {
			continue
		}
		templateIDs = append(templateIDs, t.ID)
		for _, d := range dates {
			pending = append(pending, core.Occurrence{
				EntryBase: core.EntryBase{
					ID:          uuid.NewString(),
					Description: t.Description,
					Amount:      t.Amount,
					Category:    t.Category,
					Direction:   t.Direction,
					CreatedAt:   stamp,
					UpdatedAt:   stamp,
				},
				TemplateID: t.ID,
				Date:       d,
			})
		}
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "Materialization found nothing new",
			"month", window.From.ISO(),
			"templates", len(set.Templates))
		return 0, nil
	}

	inserted, err := s.store.AppendOccurrences(ctx, pending)
	if err != nil {
		return 0, fmt.Errorf("append occurrences: %w", err)
	}

	slog.InfoContext(ctx, "Materialization complete",
		"month", window.From.ISO(),
		"templates", len(templateIDs),
		"candidates", len(pending),
		"inserted", inserted)

	if inserted > 0 && s.publisher != nil {
		if err := s.publisher.PublishMaterialized(ctx, templateIDs, inserted); err != nil {
			slog.ErrorContext(ctx, "Failed to publish materialized batch message", "error", err)
		}
	}
	return inserted, nil
}
