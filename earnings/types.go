// Package earnings computes daily and monthly compensation for hourly workers
// under the CCNL metalworkers contract, from the raw clock times of a day.
//
// The calculation is pure: ComputeDailyBreakdown reads a WorkEntry and a
// Settings profile and returns a freshly allocated DailyBreakdown. Nothing is
// fetched, persisted or cached by the core functions.
package earnings

import (
	"github.com/shopspring/decimal"

	"github.com/warp/earnings-engine/generic"
)

// =============================================================================
// WORK ENTRY - One calendar day of recorded time (input, read-only)
// =============================================================================

// CompletionType says how a day short of 8 hours is completed.
type CompletionType string

const (
	CompletionNone     CompletionType = "none"
	CompletionVacation CompletionType = "vacation"
	CompletionLeave    CompletionType = "leave"
	CompletionSickness CompletionType = "sickness"
	CompletionRest     CompletionType = "rest"
)

// IsLeave reports completion types that replace the working day entirely.
func (c CompletionType) IsLeave() bool {
	return c == CompletionVacation || c == CompletionLeave || c == CompletionSickness
}

// IsSet reports any completion other than none.
func (c CompletionType) IsSet() bool {
	return c != "" && c != CompletionNone
}

// Valid reports whether c is a known completion type. Empty means none.
func (c CompletionType) Valid() bool {
	switch c {
	case "", CompletionNone, CompletionVacation, CompletionLeave, CompletionSickness, CompletionRest:
		return true
	}
	return false
}

// WorkEntry is the recorded activity of a single day. Time fields are "HH:MM";
// empty means absent. An end earlier than its start crosses midnight.
type WorkEntry struct {
	ID   string
	Date string // "2006-01-02"

	WorkStart1 string
	WorkEnd1   string
	WorkStart2 string
	WorkEnd2   string

	DepartureStart string // outbound travel
	DepartureEnd   string
	ReturnStart    string // return travel
	ReturnEnd      string

	Interventions []Intervention
	IsStandbyDay  bool

	// TravelAllowanceRequested is the manual override: when set the allowance
	// is paid regardless of activation policy and special-day suppression.
	TravelAllowanceRequested bool
	TravelAllowancePercent   *decimal.Decimal // 0..1, nil means 1

	MealLunchVoucherUsed  bool
	MealDinnerVoucherUsed bool
	MealLunchCashAmount   decimal.Decimal // > 0 overrides the voucher
	MealDinnerCashAmount  decimal.Decimal

	DayCompletionType CompletionType

	// NightShift marks every ordinary work minute of the day as night work.
	NightShift bool

	Notes string
}

// Intervention is one on-call callout of a standby day.
type Intervention struct {
	DepartureStart string
	DepartureEnd   string
	WorkStart1     string
	WorkEnd1       string
	WorkStart2     string
	WorkEnd2       string
	ReturnStart    string
	ReturnEnd      string
}

// SegmentKind separates worked minutes from travel minutes.
type SegmentKind string

const (
	SegmentWork   SegmentKind = "work"
	SegmentTravel SegmentKind = "travel"
)

// timedSegment is a clock segment tagged with its kind.
type timedSegment struct {
	generic.Segment
	Kind SegmentKind
}

type segmentSpec struct {
	start, end string
	kind       SegmentKind
}

// segments returns the entry's ordinary segments in chronological order:
// outbound travel, first shift, second shift, return travel.
func (e *WorkEntry) segments() []timedSegment {
	return collectSegments(
		segmentSpec{e.DepartureStart, e.DepartureEnd, SegmentTravel},
		segmentSpec{e.WorkStart1, e.WorkEnd1, SegmentWork},
		segmentSpec{e.WorkStart2, e.WorkEnd2, SegmentWork},
		segmentSpec{e.ReturnStart, e.ReturnEnd, SegmentTravel},
	)
}

func (iv *Intervention) segments() []timedSegment {
	return collectSegments(
		segmentSpec{iv.DepartureStart, iv.DepartureEnd, SegmentTravel},
		segmentSpec{iv.WorkStart1, iv.WorkEnd1, SegmentWork},
		segmentSpec{iv.WorkStart2, iv.WorkEnd2, SegmentWork},
		segmentSpec{iv.ReturnStart, iv.ReturnEnd, SegmentTravel},
	)
}

func collectSegments(specs ...segmentSpec) []timedSegment {
	var out []timedSegment
	for _, sp := range specs {
		if seg, ok := generic.NewSegment(sp.start, sp.end); ok {
			out = append(out, timedSegment{Segment: seg, Kind: sp.kind})
		}
	}
	return out
}

// WorkMinutes sums both work shifts.
func (e *WorkEntry) WorkMinutes() int {
	return generic.DurationMinutes(e.WorkStart1, e.WorkEnd1) +
		generic.DurationMinutes(e.WorkStart2, e.WorkEnd2)
}

// TravelMinutes sums outbound and return travel.
func (e *WorkEntry) TravelMinutes() int {
	return generic.DurationMinutes(e.DepartureStart, e.DepartureEnd) +
		generic.DurationMinutes(e.ReturnStart, e.ReturnEnd)
}

// =============================================================================
// SETTINGS - Contract profile (input, possibly partial)
// =============================================================================

// TravelHoursSetting selects how hours beyond 8 are paid on ordinary days.
type TravelHoursSetting string

const (
	ExcessAsTravel   TravelHoursSetting = "EXCESS_AS_TRAVEL"
	ExcessAsOvertime TravelHoursSetting = "EXCESS_AS_OVERTIME"
	ExcessUnpaid     TravelHoursSetting = "NONE"
)

// ActivationPolicy selects when the daily travel allowance is due.
type ActivationPolicy string

const (
	ActivationWithTravel           ActivationPolicy = "WITH_TRAVEL"
	ActivationAlways               ActivationPolicy = "ALWAYS"
	ActivationFullDayOnly          ActivationPolicy = "FULL_DAY_ONLY"
	ActivationAlsoOnStandby        ActivationPolicy = "ALSO_ON_STANDBY"
	ActivationFullAllowanceHalfDay ActivationPolicy = "FULL_ALLOWANCE_HALF_DAY"
	ActivationHalfAllowanceHalfDay ActivationPolicy = "HALF_ALLOWANCE_HALF_DAY"
)

// OvertimeRates are multipliers of the base hourly rate.
type OvertimeRates struct {
	Day          *decimal.Decimal
	NightUntil22 *decimal.Decimal
	NightAfter22 *decimal.Decimal
	Holiday      *decimal.Decimal
	NightHoliday *decimal.Decimal
	Saturday     *decimal.Decimal
}

type Contract struct {
	HourlyRate    *decimal.Decimal
	DailyRate     *decimal.Decimal
	MonthlySalary *decimal.Decimal
	OvertimeRates OvertimeRates
}

type TravelAllowanceSettings struct {
	Enabled            bool
	DailyAmount        *decimal.Decimal
	ActivationPolicy   ActivationPolicy
	ApplyOnSpecialDays bool
}

type StandbySettings struct {
	DailyAllowance      *decimal.Decimal
	DailyIndemnity      *decimal.Decimal // legacy name, used when DailyAllowance is absent
	SpecialDayAllowance *decimal.Decimal // Sunday/holiday indemnity, when configured
	TravelWithBonus     bool
	NightStart          string // default 22:00
	NightEnd            string // default 06:00
}

type MealSettings struct {
	VoucherAmount *decimal.Decimal
	CashAmount    *decimal.Decimal
}

type MealAllowances struct {
	Lunch  MealSettings
	Dinner MealSettings
}

// Settings is the externally owned contract profile. Any field may be absent;
// ResolveSettings applies the documented defaults.
type Settings struct {
	Contract               Contract
	TravelCompensationRate *decimal.Decimal
	TravelHoursSetting     TravelHoursSetting
	TravelAllowance        TravelAllowanceSettings
	Standby                StandbySettings
	MealAllowances         MealAllowances
}
