/*
Package generic provides the domain-agnostic primitives of the earnings engine.

PURPOSE:
  This package contains the building blocks every calculation relies on but
  that know nothing about CCNL tariffs: calendar dates, clock-time arithmetic,
  holiday calendars, monetary helpers and the shared error vocabulary.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: decimal.Decimal amounts, never float64
  - Optional decimals: partial settings use *decimal.Decimal, resolved here

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point drift in pay
  2. Purity: Every function is deterministic for its inputs
  3. Degradation: Missing data resolves to zero/default, not errors

SEE ALSO:
  - clock.go: "HH:MM" parsing and minute arithmetic
  - calendar.go: Italian holiday calendar
  - errors.go: Sentinel errors
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Currency amounts in euro
// =============================================================================

// Money is a euro amount. The engine never rounds; callers format for display.
type Money = decimal.Decimal

var (
	Zero = decimal.Zero
	One  = decimal.NewFromInt(1)
	Half = decimal.NewFromFloat(0.5)
)

// D is shorthand for decimal literals in rate tables and tests.
func D(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic("invalid decimal literal: " + s)
	}
	return d
}

// Dec returns a pointer to a decimal parsed from s, for optional settings.
func Dec(s string) *decimal.Decimal {
	d := D(s)
	return &d
}

// DecimalOr dereferences p, falling back when p is nil.
func DecimalOr(p *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if p == nil {
		return fallback
	}
	return *p
}

// PositiveOr dereferences p when it is strictly positive.
func PositiveOr(p *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if p == nil || !p.IsPositive() {
		return fallback
	}
	return *p
}

// SumMoney adds amounts.
func SumMoney(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// FormatEuro renders an amount with two decimals for reports.
func FormatEuro(m decimal.Decimal) string {
	return m.StringFixed(2)
}
