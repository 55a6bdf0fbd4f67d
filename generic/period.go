package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// PERIOD - Date range used for monthly aggregation and store queries
// =============================================================================

// Period is an inclusive date range [Start, End].
//
// Examples:
//   - Payroll month March 2025: Mar 1 - Mar 31
//   - Custom export range: any two dates with End >= Start
type Period struct {
	Start TimePoint
	End   TimePoint
}

// MonthPeriod returns the calendar month containing year/month.
func MonthPeriod(year int, month time.Month) Period {
	return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}
}

// ParseMonth parses "2006-01" into the matching calendar month period.
func ParseMonth(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("%w: month %q (use YYYY-MM)", ErrInvalidPeriod, s)
	}
	return MonthPeriod(t.Year(), t.Month()), nil
}

// NewPeriod parses two dates and validates their order.
func NewPeriod(from, to string) (Period, error) {
	start, ok := ParseDate(from)
	if !ok {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidDate, from)
	}
	end, ok := ParseDate(to)
	if !ok {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidDate, to)
	}
	p := Period{Start: start, End: end}
	return p, p.Validate()
}

// Validate returns ErrInvalidPeriod when End is before Start.
func (p Period) Validate() error {
	if p.End.Before(p.Start) {
		return ErrInvalidPeriod
	}
	return nil
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Days returns all days in the period as a slice of TimePoints.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	current := p.Start
	for current.BeforeOrEqual(p.End) {
		days = append(days, current)
		current = current.AddDays(1)
	}
	return days
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// NextPeriod returns the month following a month period.
func (p Period) NextPeriod() Period {
	next := p.Start.AddMonths(1)
	return MonthPeriod(next.Year(), next.Month())
}

// PreviousPeriod returns the month before a month period.
func (p Period) PreviousPeriod() Period {
	prev := p.Start.AddMonths(-1)
	return MonthPeriod(prev.Year(), prev.Month())
}
