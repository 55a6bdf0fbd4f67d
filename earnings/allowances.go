package earnings

import (
	"github.com/shopspring/decimal"

	"github.com/warp/earnings-engine/generic"
)

// Allowances are the flat daily amounts of a day.
type Allowances struct {
	Travel     decimal.Decimal
	Standby    decimal.Decimal // reported only; counted once, inside the standby total
	Meal       decimal.Decimal // lunch + dinner, excluded from taxable totals
	MealLunch  decimal.Decimal
	MealDinner decimal.Decimal
}

func (a Allowances) Add(o Allowances) Allowances {
	return Allowances{
		Travel:     a.Travel.Add(o.Travel),
		Standby:    a.Standby.Add(o.Standby),
		Meal:       a.Meal.Add(o.Meal),
		MealLunch:  a.MealLunch.Add(o.MealLunch),
		MealDinner: a.MealDinner.Add(o.MealDinner),
	}
}

// =============================================================================
// TRAVEL ALLOWANCE
// =============================================================================

// TravelActivation is the input of the travel allowance decision.
type TravelActivation struct {
	TravelMinutes  int
	TotalMinutes   int // work + travel
	IsStandbyDay   bool
	IsLeaveDay     bool
	IsFestive      bool // Sunday or public holiday
	ManualOverride bool
}

// ResolveTravelAllowanceActivation decides whether the allowance is due and
// which fraction of the daily amount applies (1 or 0.5).
//
// Precedence: disabled or zero amount never pays; the manual override always
// pays in full; festive days and leave days are suppressed unless configured
// otherwise; then the activation policy decides.
func ResolveTravelAllowanceActivation(in TravelActivation, ta ResolvedTravelAllowance) (bool, decimal.Decimal) {
	if !ta.Enabled || !ta.DailyAmount.IsPositive() {
		return false, decimal.Zero
	}
	if in.ManualOverride {
		return true, generic.One
	}
	if in.IsFestive && !ta.ApplyOnSpecialDays {
		return false, decimal.Zero
	}
	if in.IsLeaveDay {
		return false, decimal.Zero
	}

	full := in.TotalMinutes >= StandardDayMinutes
	var active bool
	fraction := generic.One
	switch ta.ActivationPolicy {
	case ActivationAlways:
		active = true
	case ActivationFullDayOnly:
		active = full
	case ActivationAlsoOnStandby:
		active = in.TravelMinutes > 0 || (in.IsStandbyDay && in.TotalMinutes == 0)
	case ActivationFullAllowanceHalfDay:
		active = in.TotalMinutes > 0
	case ActivationHalfAllowanceHalfDay:
		active = in.TotalMinutes > 0
		if !full {
			fraction = generic.Half
		}
	default: // ActivationWithTravel
		active = in.TravelMinutes > 0
	}
	if !active {
		return false, decimal.Zero
	}
	return true, fraction
}

// TravelAllowanceAmount applies the fraction and the entry's percentage
// (nil means 100%, values are clamped to [0, 1]).
func TravelAllowanceAmount(ta ResolvedTravelAllowance, fraction decimal.Decimal, percent *decimal.Decimal) decimal.Decimal {
	p := generic.DecimalOr(percent, generic.One)
	if p.IsNegative() {
		p = decimal.Zero
	}
	if p.GreaterThan(generic.One) {
		p = generic.One
	}
	return ta.DailyAmount.Mul(fraction).Mul(p)
}

// =============================================================================
// MEAL REIMBURSEMENT
// =============================================================================

// ResolveMealAmount picks exactly one source per meal: a positive cash amount
// on the entry wins outright; otherwise a used voucher pays the configured
// voucher amount plus the configured cash amount.
func ResolveMealAmount(entryCash decimal.Decimal, voucherUsed bool, meal ResolvedMeal) decimal.Decimal {
	if entryCash.IsPositive() {
		return entryCash
	}
	if voucherUsed {
		return meal.VoucherAmount.Add(meal.CashAmount)
	}
	return decimal.Zero
}

// =============================================================================
// STANDBY INDEMNITY
// =============================================================================

// ResolveStandbyIndemnity returns the indemnity to report under allowances.
// The standby breakdown is the source of truth when present; the settings
// value is only a fallback for standby days without one.
func ResolveStandbyIndemnity(standby *StandbyBreakdown, isStandbyDay bool, fs FullSettings) decimal.Decimal {
	if standby != nil {
		return standby.DailyIndemnity
	}
	if isStandbyDay {
		return fs.Standby.DailyAllowance
	}
	return decimal.Zero
}

// ComputeAllowances resolves travel, meal and standby allowances of a day.
func ComputeAllowances(entry *WorkEntry, cls DayClass, fs FullSettings, ordinary OrdinaryBreakdown, standby *StandbyBreakdown) (Allowances, bool) {
	_, leave := ordinary.Result.(LeaveDay)
	active, fraction := ResolveTravelAllowanceActivation(TravelActivation{
		TravelMinutes:  entry.TravelMinutes(),
		TotalMinutes:   entry.WorkMinutes() + entry.TravelMinutes(),
		IsStandbyDay:   entry.IsStandbyDay,
		IsLeaveDay:     leave,
		IsFestive:      cls.IsFestive(),
		ManualOverride: entry.TravelAllowanceRequested,
	}, fs.TravelAllowance)

	var a Allowances
	if active {
		a.Travel = TravelAllowanceAmount(fs.TravelAllowance, fraction, entry.TravelAllowancePercent)
	}
	a.MealLunch = ResolveMealAmount(entry.MealLunchCashAmount, entry.MealLunchVoucherUsed, fs.Lunch)
	a.MealDinner = ResolveMealAmount(entry.MealDinnerCashAmount, entry.MealDinnerVoucherUsed, fs.Dinner)
	a.Meal = a.MealLunch.Add(a.MealDinner)
	a.Standby = ResolveStandbyIndemnity(standby, entry.IsStandbyDay, fs)
	return a, active
}
