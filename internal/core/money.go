// Money parsing and handling. Amounts are stored as integer cents; decimal
// strings are parsed with shopspring/decimal at the write boundary so the
// engine itself never touches floating point for balances.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a non-negative amount in cents. Signs are applied by the ledger
// depending on an entry's direction, never stored here.
type Money struct {
	Cents int64
}

// ParseAmount converts a decimal string to a strictly positive Money.
// Both dot and comma decimal separators are accepted; anything beyond two
// fractional digits is rounded half away from zero.
func ParseAmount(s string) (Money, error) {
	m, err := parseCents(s)
	if err != nil {
		return Money{}, err
	}
	if m.Cents <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return m, nil
}

// ParseLimit converts a decimal string to a non-negative Money. Budgets may
// carry a zero limit (which excludes them from pace computation), so zero is
// accepted here where ParseAmount rejects it.
func ParseLimit(s string) (Money, error) {
	m, err := parseCents(s)
	if err != nil {
		return Money{}, err
	}
	if m.Cents < 0 {
		return Money{}, ErrInvalidLimit
	}
	return m, nil
}

func parseCents(s string) (Money, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: d.Shift(2).Round(0).IntPart()}, nil
}

// Units returns the amount in main currency units for display purposes only;
// calculations stay in cents.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}

// String formats the amount with two decimals (e.g. "12.34").
func (m Money) String() string {
	return decimal.New(m.Cents, -2).StringFixed(2)
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

// Validate rejects non-positive amounts.
func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
