// Package storage defines the durable store port for the ledger engine and
// its SQLite implementation.
package storage

import (
	"context"
	"errors"

	"bilancio/internal/core"
)

// ErrNotFound is returned when an id does not resolve to a stored record.
var ErrNotFound = errors.New("storage: not found")

// Store is the persistence port. The engine reads whole snapshots and the
// only write path materialization needs is AppendOccurrences.
type Store interface {
	// ListEntries returns the full entry snapshot: one-offs, templates
	// and materialized occurrences.
	ListEntries(ctx context.Context) (core.EntrySet, error)

	AddOneOff(ctx context.Context, e core.OneOff) error
	UpdateOneOff(ctx context.Context, e core.OneOff) error
	AddTemplate(ctx context.Context, t core.Template) error
	UpdateTemplate(ctx context.Context, t core.Template) error
	// DeleteEntry removes a one-off or occurrence by id; deleting a
	// template also removes its materialized occurrences.
	DeleteEntry(ctx context.Context, id string) error

	// AppendOccurrences persists new materialized occurrences and
	// reports how many were actually inserted. A (template, date) pair
	// already on disk is skipped, not an error, so concurrent
	// materializers stay idempotent.
	AppendOccurrences(ctx context.Context, occs []core.Occurrence) (int, error)

	ListBudgets(ctx context.Context) ([]core.Budget, error)
	AddBudget(ctx context.Context, b core.Budget) error
	UpdateBudget(ctx context.Context, b core.Budget) error
	DeleteBudget(ctx context.Context, id string) error

	Settings(ctx context.Context) (core.Settings, error)
	SaveSettings(ctx context.Context, s core.Settings) error
}
