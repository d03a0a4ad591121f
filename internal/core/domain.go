package core

import (
	"errors"
	"strings"
	"time"
)

const (
	In  Direction = "in"
	Out Direction = "out"
)

const (
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

type (
	// Direction tells whether an entry adds to or subtracts from the balance.
	Direction string

	// Frequency is the cadence of a recurrence template.
	Frequency string

	// EntryBase carries the fields shared by every money entry.
	EntryBase struct {
		ID          string
		Description string
		Amount      Money
		Category    string
		Direction   Direction
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	// OneOff is a single dated entry created directly by the user.
	OneOff struct {
		EntryBase
		Date Date
	}

	// Template is a recurrence rule that generates occurrences. It is never
	// itself a ledger line. EndDate is optional; the zero value means open-ended.
	Template struct {
		EntryBase
		Frequency Frequency
		StartDate Date
		EndDate   Date
	}

	// Occurrence is a persisted ledger entry generated from a template for one
	// concrete date. Once materialized it is a detached historical fact: it can
	// be edited or deleted independently of its template.
	Occurrence struct {
		EntryBase
		TemplateID string
		Date       Date
	}

	// Budget is a monthly spending limit for one category, compared against
	// aggregated out-direction spend.
	Budget struct {
		ID        string
		Category  string
		Limit     Money
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	// Settings holds workspace-level behavior flags.
	Settings struct {
		AutoGenerateRecurring bool
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidLimit     = errors.New("invalid budget limit")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrEndBeforeStart   = errors.New("end date before start date")
)

// Validate checks a direction value.
func (d Direction) Validate() error {
	switch d {
	case In, Out:
		return nil
	default:
		return ErrInvalidDirection
	}
}

// Validate checks a frequency value.
func (f Frequency) Validate() error {
	switch f {
	case Weekly, Monthly, Yearly:
		return nil
	default:
		return ErrInvalidFrequency
	}
}

func (b EntryBase) validate() error {
	desc := strings.TrimSpace(b.Description)
	if desc == "" {
		return ErrEmptyDescription
	}
	if len(b.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	return b.Direction.Validate()
}

// Validate checks a one-off entry at the write boundary. The aggregation
// engine assumes entries it receives already passed here.
func (o OneOff) Validate() error {
	if err := o.Date.Validate(); err != nil {
		return err
	}
	return o.EntryBase.validate()
}

// Validate checks a recurrence template at the write boundary. An invalid
// template that slipped past this (e.g. from an older client) must not crash
// aggregation; the expander returns no occurrences for it instead.
func (t Template) Validate() error {
	if err := t.StartDate.Validate(); err != nil {
		return err
	}
	if !t.EndDate.IsEmpty() && t.EndDate.Before(t.StartDate.Time) {
		return ErrEndBeforeStart
	}
	if err := t.Frequency.Validate(); err != nil {
		return err
	}
	return t.EntryBase.validate()
}

// Validate checks a materialized occurrence.
func (o Occurrence) Validate() error {
	if o.TemplateID == "" {
		return errors.New("occurrence without template id")
	}
	if err := o.Date.Validate(); err != nil {
		return err
	}
	return o.EntryBase.validate()
}

// Validate checks a budget. A zero limit is legal (it only disables pace
// computation); negative limits are rejected.
func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return errors.New("empty budget category")
	}
	if b.Limit.Cents < 0 {
		return ErrInvalidLimit
	}
	return nil
}
