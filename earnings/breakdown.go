package earnings

import (
	"github.com/shopspring/decimal"

	"github.com/warp/earnings-engine/generic"
)

// Details explain a breakdown for the UI and audits. They are never used to
// re-derive amounts.
type Details struct {
	ValidDate             bool
	IsSaturday            bool
	IsSunday              bool
	IsHoliday             bool
	IsPartialDay          bool
	MissingHours          decimal.Decimal
	AppliedMultiplier     decimal.Decimal
	DayKind               DayKind
	CompletionType        CompletionType // effective completion, forced to none on special days
	TravelAllowanceActive bool
}

// DailyBreakdown is the itemized pay of one day. It is derived data: always
// recomputed from the entry and settings, never mutated after return.
type DailyBreakdown struct {
	Date       string
	Ordinary   OrdinaryBreakdown
	Standby    *StandbyBreakdown // nil when not a standby day
	Allowances Allowances
	// TotalEarnings = ordinary + travel allowance + standby total.
	// Meal reimbursement is non-taxable and never included.
	TotalEarnings decimal.Decimal
	Details       Details
}

// Clone returns a deep copy.
func (b *DailyBreakdown) Clone() *DailyBreakdown {
	if b == nil {
		return nil
	}
	c := *b
	if b.Standby != nil {
		s := *b.Standby
		c.Standby = &s
	}
	return &c
}

// =============================================================================
// BREAKDOWN AGGREGATOR
// =============================================================================

// ComputeDailyBreakdown is the engine entry point. A nil calendar uses the
// Italian national calendar. Only nil entry or settings are errors.
func ComputeDailyBreakdown(entry *WorkEntry, settings *Settings, cal generic.HolidayCalendar) (*DailyBreakdown, error) {
	if entry == nil {
		return nil, &generic.InvalidArgumentError{Argument: "entry", Reason: "must not be nil"}
	}
	if settings == nil {
		return nil, &generic.InvalidArgumentError{Argument: "settings", Reason: "must not be nil"}
	}
	return compute(entry, ResolveSettings(settings), calendarOrDefault(cal)), nil
}

// Calculator resolves settings once and computes many days with them.
// It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	settings FullSettings
	calendar generic.HolidayCalendar
}

// NewCalculator resolves settings. A nil calendar uses the Italian calendar.
func NewCalculator(settings *Settings, cal generic.HolidayCalendar) (*Calculator, error) {
	if settings == nil {
		return nil, &generic.InvalidArgumentError{Argument: "settings", Reason: "must not be nil"}
	}
	return &Calculator{settings: ResolveSettings(settings), calendar: calendarOrDefault(cal)}, nil
}

// Settings returns the resolved settings.
func (c *Calculator) Settings() FullSettings { return c.settings }

// Calendar returns the holiday calendar in use.
func (c *Calculator) Calendar() generic.HolidayCalendar { return c.calendar }

// Compute returns the breakdown of one entry.
func (c *Calculator) Compute(entry *WorkEntry) (*DailyBreakdown, error) {
	if entry == nil {
		return nil, &generic.InvalidArgumentError{Argument: "entry", Reason: "must not be nil"}
	}
	return compute(entry, c.settings, c.calendar), nil
}

func calendarOrDefault(cal generic.HolidayCalendar) generic.HolidayCalendar {
	if cal == nil {
		return generic.ItalianCalendar{}
	}
	return cal
}

// compute builds every part before assembling the result, so a breakdown is
// either complete or not returned at all.
func compute(entry *WorkEntry, fs FullSettings, cal generic.HolidayCalendar) *DailyBreakdown {
	cls := Classify(entry.Date, cal)
	ordinary := ComputeOrdinary(entry, cls, fs)
	standby := ComputeStandby(entry, cls, fs)
	allowances, travelActive := ComputeAllowances(entry, cls, fs, ordinary, standby)

	standbyTotal := decimal.Zero
	if standby != nil {
		standbyTotal = standby.TotalEarnings
	}

	details := Details{
		ValidDate:             cls.Valid,
		IsSaturday:            cls.IsSaturday,
		IsSunday:              cls.IsSunday,
		IsHoliday:             cls.IsHoliday,
		MissingHours:          decimal.Zero,
		AppliedMultiplier:     generic.One,
		DayKind:               ordinary.Result.Kind(),
		CompletionType:        effectiveCompletion(entry.DayCompletionType),
		TravelAllowanceActive: travelActive,
	}
	switch r := ordinary.Result.(type) {
	case SpecialDay:
		details.AppliedMultiplier = r.Multiplier
		details.CompletionType = CompletionNone
	case PartialDay:
		details.IsPartialDay = true
		if !r.Completed {
			details.MissingHours = generic.ToHours(r.MissingMinutes)
		}
	}

	return &DailyBreakdown{
		Date:          entry.Date,
		Ordinary:      ordinary,
		Standby:       standby,
		Allowances:    allowances,
		TotalEarnings: generic.SumMoney(ordinary.Total, allowances.Travel, standbyTotal),
		Details:       details,
	}
}

func effectiveCompletion(c CompletionType) CompletionType {
	if c == "" || !c.Valid() {
		return CompletionNone
	}
	return c
}
