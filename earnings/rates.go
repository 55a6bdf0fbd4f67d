package earnings

import (
	"github.com/shopspring/decimal"

	"github.com/warp/earnings-engine/generic"
)

// =============================================================================
// DEFAULTS - Applied when the settings profile is incomplete
// =============================================================================

var (
	// CCNL metalworkers, level 5 reference pay.
	DefaultHourlyRate = generic.D("16.41")
	DefaultDailyRate  = generic.D("109.19")

	// Monthly salary divisors: 173 contractual hours, 26 contractual days.
	MonthlyHoursDivisor = decimal.NewFromInt(173)
	MonthlyDaysDivisor  = decimal.NewFromInt(26)

	DefaultMultipliers = Multipliers{
		Day:          generic.D("1.20"),
		NightUntil22: generic.D("1.25"),
		NightAfter22: generic.D("1.35"),
		Holiday:      generic.D("1.30"),
		NightHoliday: generic.D("1.50"),
		Saturday:     generic.D("1.25"),
	}

	DefaultTravelCompensationRate = generic.One
)

const (
	// StandardDayMinutes is the contractual 8-hour day.
	StandardDayMinutes = 8 * generic.MinutesPerHour

	DefaultNightStart = "22:00"
	DefaultNightEnd   = "06:00"

	// Evening band for ordinary days: 20:00-22:00 is "night until 22".
	eveningStartMinute = 20 * generic.MinutesPerHour
	lateNightMinute    = 22 * generic.MinutesPerHour
	earlyMorningMinute = 6 * generic.MinutesPerHour
)

// =============================================================================
// RESOLVED SETTINGS - Every field populated
// =============================================================================

// Multipliers is the resolved multiplier table.
type Multipliers struct {
	Day          decimal.Decimal
	NightUntil22 decimal.Decimal
	NightAfter22 decimal.Decimal
	Holiday      decimal.Decimal
	NightHoliday decimal.Decimal
	Saturday     decimal.Decimal
}

type ResolvedTravelAllowance struct {
	Enabled            bool
	DailyAmount        decimal.Decimal
	ActivationPolicy   ActivationPolicy
	ApplyOnSpecialDays bool
}

type ResolvedStandby struct {
	DailyAllowance      decimal.Decimal
	SpecialDayAllowance decimal.Decimal // equals DailyAllowance when not configured
	TravelWithBonus     bool
	NightStart          int // minutes since midnight
	NightEnd            int
}

type ResolvedMeal struct {
	VoucherAmount decimal.Decimal
	CashAmount    decimal.Decimal
}

// FullSettings is Settings with every default applied.
type FullSettings struct {
	BaseRate               decimal.Decimal
	DailyRate              decimal.Decimal
	Multipliers            Multipliers
	TravelCompensationRate decimal.Decimal
	TravelHoursSetting     TravelHoursSetting
	TravelAllowance        ResolvedTravelAllowance
	Standby                ResolvedStandby
	Lunch                  ResolvedMeal
	Dinner                 ResolvedMeal
}

// ResolveSettings merges a partial profile with the documented defaults.
// It is the only place defaults are applied. Non-positive rates count as absent.
//
//	baseRate  = hourlyRate ?? monthlySalary/173 ?? DefaultHourlyRate
//	dailyRate = dailyRate  ?? monthlySalary/26  ?? DefaultDailyRate
func ResolveSettings(s *Settings) FullSettings {
	if s == nil {
		s = &Settings{}
	}
	c := s.Contract

	base := DefaultHourlyRate
	daily := DefaultDailyRate
	if salary := generic.PositiveOr(c.MonthlySalary, decimal.Zero); salary.IsPositive() {
		base = salary.Div(MonthlyHoursDivisor)
		daily = salary.Div(MonthlyDaysDivisor)
	}
	base = generic.PositiveOr(c.HourlyRate, base)
	daily = generic.PositiveOr(c.DailyRate, daily)

	r := c.OvertimeRates
	mult := Multipliers{
		Day:          generic.PositiveOr(r.Day, DefaultMultipliers.Day),
		NightUntil22: generic.PositiveOr(r.NightUntil22, DefaultMultipliers.NightUntil22),
		NightAfter22: generic.PositiveOr(r.NightAfter22, DefaultMultipliers.NightAfter22),
		Holiday:      generic.PositiveOr(r.Holiday, DefaultMultipliers.Holiday),
		NightHoliday: generic.PositiveOr(r.NightHoliday, DefaultMultipliers.NightHoliday),
		Saturday:     generic.PositiveOr(r.Saturday, DefaultMultipliers.Saturday),
	}

	travelHours := s.TravelHoursSetting
	switch travelHours {
	case ExcessAsTravel, ExcessAsOvertime, ExcessUnpaid:
	default:
		travelHours = ExcessAsTravel
	}

	policy := s.TravelAllowance.ActivationPolicy
	if policy == "" {
		policy = ActivationWithTravel
	}

	standbyAllowance := generic.DecimalOr(s.Standby.DailyAllowance,
		generic.DecimalOr(s.Standby.DailyIndemnity, decimal.Zero))

	return FullSettings{
		BaseRate:               base,
		DailyRate:              daily,
		Multipliers:            mult,
		TravelCompensationRate: generic.PositiveOr(s.TravelCompensationRate, DefaultTravelCompensationRate),
		TravelHoursSetting:     travelHours,
		TravelAllowance: ResolvedTravelAllowance{
			Enabled:            s.TravelAllowance.Enabled,
			DailyAmount:        generic.DecimalOr(s.TravelAllowance.DailyAmount, decimal.Zero),
			ActivationPolicy:   policy,
			ApplyOnSpecialDays: s.TravelAllowance.ApplyOnSpecialDays,
		},
		Standby: ResolvedStandby{
			DailyAllowance:      standbyAllowance,
			SpecialDayAllowance: generic.DecimalOr(s.Standby.SpecialDayAllowance, standbyAllowance),
			TravelWithBonus:     s.Standby.TravelWithBonus,
			NightStart:          clockOr(s.Standby.NightStart, DefaultNightStart),
			NightEnd:            clockOr(s.Standby.NightEnd, DefaultNightEnd),
		},
		Lunch:  resolveMeal(s.MealAllowances.Lunch),
		Dinner: resolveMeal(s.MealAllowances.Dinner),
	}
}

func resolveMeal(m MealSettings) ResolvedMeal {
	return ResolvedMeal{
		VoucherAmount: generic.DecimalOr(m.VoucherAmount, decimal.Zero),
		CashAmount:    generic.DecimalOr(m.CashAmount, decimal.Zero),
	}
}

func clockOr(hhmm, fallback string) int {
	if m, ok := generic.ToMinutes(hhmm); ok {
		return m
	}
	m, _ := generic.ToMinutes(fallback)
	return m
}

// SpecialDayMultiplier is the uniform multiplier of a special day:
// Sunday and holidays use the holiday rate, Saturday its own.
func (f FullSettings) SpecialDayMultiplier(cls DayClass) decimal.Decimal {
	if cls.IsSunday || cls.IsHoliday {
		return f.Multipliers.Holiday
	}
	if cls.IsSaturday {
		return f.Multipliers.Saturday
	}
	return generic.One
}

// eveningMultiplier prices a clock minute of an ordinary day: 06-20 day rate,
// 20-22 night until 22, 22-06 night after 22.
func (m Multipliers) eveningMultiplier(minute int) (decimal.Decimal, bool) {
	switch {
	case minute >= lateNightMinute || minute < earlyMorningMinute:
		return m.NightAfter22, true
	case minute >= eveningStartMinute:
		return m.NightUntil22, true
	default:
		return m.Day, false
	}
}

// isNight reports whether minute lies in the standby night window.
func (s ResolvedStandby) isNight(minute int) bool {
	if s.NightStart == s.NightEnd {
		return false
	}
	if s.NightStart > s.NightEnd {
		return minute >= s.NightStart || minute < s.NightEnd
	}
	return minute >= s.NightStart && minute < s.NightEnd
}
