package factory

import (
	"github.com/warp/earnings-engine/earnings"
)

// =============================================================================
// BREAKDOWN JSON - Output documents (never parsed back)
// =============================================================================

// BreakdownJSON is the JSON representation of a daily breakdown.
type BreakdownJSON struct {
	Date          string          `json:"date"`
	Ordinary      OrdinaryJSON    `json:"ordinary"`
	Standby       *StandbyOutJSON `json:"standby,omitempty"`
	Allowances    AllowancesJSON  `json:"allowances"`
	TotalEarnings float64         `json:"total_earnings"`
	Details       DetailsJSON     `json:"details"`
}

type OrdinaryJSON struct {
	DayKind  string             `json:"day_kind"`
	Hours    OrdinaryHoursJSON  `json:"hours"`
	Earnings OrdinaryAmountJSON `json:"earnings"`
	Total    float64            `json:"total"`
}

type OrdinaryHoursJSON struct {
	Work                 float64 `json:"work"`
	Travel               float64 `json:"travel"`
	Standard             float64 `json:"standard"`
	Excess               float64 `json:"excess"`
	TravelExcess         float64 `json:"travel_excess"`
	OvertimeDay          float64 `json:"overtime_day"`
	OvertimeNightUntil22 float64 `json:"overtime_night_until_22"`
	OvertimeNightAfter22 float64 `json:"overtime_night_after_22"`
	SpecialDay           float64 `json:"special_day"`
	NightUntil22         float64 `json:"night_until_22"`
	NightAfter22         float64 `json:"night_after_22"`
}

type OrdinaryAmountJSON struct {
	Daily                float64 `json:"daily"`
	Prorated             float64 `json:"prorated"`
	TravelExcess         float64 `json:"travel_excess"`
	OvertimeDay          float64 `json:"overtime_day"`
	OvertimeNightUntil22 float64 `json:"overtime_night_until_22"`
	OvertimeNightAfter22 float64 `json:"overtime_night_after_22"`
	SpecialDay           float64 `json:"special_day"`
	NightBonus           float64 `json:"night_bonus"`
}

// BandsJSON holds one value per standby band.
type BandsJSON struct {
	Ordinary     float64 `json:"ordinary"`
	Night        float64 `json:"night"`
	Holiday      float64 `json:"holiday"`
	NightHoliday float64 `json:"night_holiday"`
}

type StandbyOutJSON struct {
	Interventions  int       `json:"interventions"`
	WorkHours      BandsJSON `json:"work_hours"`
	TravelHours    BandsJSON `json:"travel_hours"`
	WorkEarnings   BandsJSON `json:"work_earnings"`
	TravelEarnings BandsJSON `json:"travel_earnings"`
	DailyIndemnity float64   `json:"daily_indemnity"`
	TotalEarnings  float64   `json:"total_earnings"`
}

type AllowancesJSON struct {
	Travel     float64 `json:"travel"`
	Standby    float64 `json:"standby"`
	Meal       float64 `json:"meal"`
	MealLunch  float64 `json:"meal_lunch"`
	MealDinner float64 `json:"meal_dinner"`
}

type DetailsJSON struct {
	ValidDate             bool    `json:"valid_date"`
	IsSaturday            bool    `json:"is_saturday"`
	IsSunday              bool    `json:"is_sunday"`
	IsHoliday             bool    `json:"is_holiday"`
	IsPartialDay          bool    `json:"is_partial_day"`
	MissingHours          float64 `json:"missing_hours"`
	AppliedMultiplier     float64 `json:"applied_multiplier"`
	CompletionType        string  `json:"completion_type"`
	TravelAllowanceActive bool    `json:"travel_allowance_active"`
}

// SummaryJSON is the JSON representation of a monthly summary.
type SummaryJSON struct {
	From          string             `json:"from"`
	To            string             `json:"to"`
	Counts        CountsJSON         `json:"counts"`
	Hours         OrdinaryHoursJSON  `json:"hours"`
	Earnings      OrdinaryAmountJSON `json:"earnings"`
	OrdinaryTotal float64            `json:"ordinary_total"`
	Standby       StandbyTotalsJSON  `json:"standby"`
	Allowances    AllowancesJSON     `json:"allowances"`
	TotalEarnings float64            `json:"total_earnings"`
	Days          []BreakdownJSON    `json:"days,omitempty"`
	Skipped       []SkippedJSON      `json:"skipped,omitempty"`
}

type CountsJSON struct {
	Worked  int `json:"worked"`
	Full    int `json:"full"`
	Partial int `json:"partial"`
	Special int `json:"special"`
	Leave   int `json:"leave"`
	Standby int `json:"standby"`
}

type StandbyTotalsJSON struct {
	Days           int       `json:"days"`
	Interventions  int       `json:"interventions"`
	WorkHours      BandsJSON `json:"work_hours"`
	TravelHours    BandsJSON `json:"travel_hours"`
	WorkEarnings   BandsJSON `json:"work_earnings"`
	TravelEarnings BandsJSON `json:"travel_earnings"`
	Indemnity      float64   `json:"indemnity"`
	Total          float64   `json:"total"`
}

type SkippedJSON struct {
	Date  string `json:"date"`
	Error string `json:"error"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

// BreakdownToJSON converts a DailyBreakdown for output.
func BreakdownToJSON(b *earnings.DailyBreakdown) BreakdownJSON {
	out := BreakdownJSON{
		Date: b.Date,
		Ordinary: OrdinaryJSON{
			DayKind:  string(b.Details.DayKind),
			Hours:    hoursToJSON(b.Ordinary.Hours),
			Earnings: amountsToJSON(b.Ordinary.Earnings),
			Total:    toFloat(b.Ordinary.Total),
		},
		Allowances:    allowancesToJSON(b.Allowances),
		TotalEarnings: toFloat(b.TotalEarnings),
		Details: DetailsJSON{
			ValidDate:             b.Details.ValidDate,
			IsSaturday:            b.Details.IsSaturday,
			IsSunday:              b.Details.IsSunday,
			IsHoliday:             b.Details.IsHoliday,
			IsPartialDay:          b.Details.IsPartialDay,
			MissingHours:          toFloat(b.Details.MissingHours),
			AppliedMultiplier:     toFloat(b.Details.AppliedMultiplier),
			CompletionType:        string(b.Details.CompletionType),
			TravelAllowanceActive: b.Details.TravelAllowanceActive,
		},
	}
	if sb := b.Standby; sb != nil {
		out.Standby = &StandbyOutJSON{
			Interventions:  sb.Interventions,
			WorkHours:      bandsToJSON(sb.WorkHours),
			TravelHours:    bandsToJSON(sb.TravelHours),
			WorkEarnings:   bandsToJSON(sb.WorkEarnings),
			TravelEarnings: bandsToJSON(sb.TravelEarnings),
			DailyIndemnity: toFloat(sb.DailyIndemnity),
			TotalEarnings:  toFloat(sb.TotalEarnings),
		}
	}
	return out
}

// SummaryToJSON converts a MonthlySummary for output. Daily breakdowns are
// included only when withDays is set.
func SummaryToJSON(s *earnings.MonthlySummary, withDays bool) SummaryJSON {
	out := SummaryJSON{
		From: s.Period.Start.String(),
		To:   s.Period.End.String(),
		Counts: CountsJSON{
			Worked:  s.Counts.Worked,
			Full:    s.Counts.Full,
			Partial: s.Counts.Partial,
			Special: s.Counts.Special,
			Leave:   s.Counts.Leave,
			Standby: s.Counts.Standby,
		},
		Hours:         hoursToJSON(s.Hours),
		Earnings:      amountsToJSON(s.Earnings),
		OrdinaryTotal: toFloat(s.OrdinaryTotal),
		Standby: StandbyTotalsJSON{
			Days:           s.Standby.Days,
			Interventions:  s.Standby.Interventions,
			WorkHours:      bandsToJSON(s.Standby.WorkHours),
			TravelHours:    bandsToJSON(s.Standby.TravelHours),
			WorkEarnings:   bandsToJSON(s.Standby.WorkEarnings),
			TravelEarnings: bandsToJSON(s.Standby.TravelEarnings),
			Indemnity:      toFloat(s.Standby.Indemnity),
			Total:          toFloat(s.Standby.Total),
		},
		Allowances:    allowancesToJSON(s.Allowances),
		TotalEarnings: toFloat(s.TotalEarnings),
	}
	if withDays {
		for _, d := range s.Days {
			out.Days = append(out.Days, BreakdownToJSON(d))
		}
	}
	for _, sk := range s.Skipped {
		out.Skipped = append(out.Skipped, SkippedJSON{Date: sk.Date, Error: sk.Error})
	}
	return out
}

func hoursToJSON(h earnings.OrdinaryHours) OrdinaryHoursJSON {
	return OrdinaryHoursJSON{
		Work:                 toFloat(h.Work),
		Travel:               toFloat(h.Travel),
		Standard:             toFloat(h.Standard),
		Excess:               toFloat(h.Excess),
		TravelExcess:         toFloat(h.TravelExcess),
		OvertimeDay:          toFloat(h.OvertimeDay),
		OvertimeNightUntil22: toFloat(h.OvertimeNightUntil22),
		OvertimeNightAfter22: toFloat(h.OvertimeNightAfter22),
		SpecialDay:           toFloat(h.SpecialDay),
		NightUntil22:         toFloat(h.NightUntil22),
		NightAfter22:         toFloat(h.NightAfter22),
	}
}

func amountsToJSON(e earnings.OrdinaryEarnings) OrdinaryAmountJSON {
	return OrdinaryAmountJSON{
		Daily:                toFloat(e.Daily),
		Prorated:             toFloat(e.Prorated),
		TravelExcess:         toFloat(e.TravelExcess),
		OvertimeDay:          toFloat(e.OvertimeDay),
		OvertimeNightUntil22: toFloat(e.OvertimeNightUntil22),
		OvertimeNightAfter22: toFloat(e.OvertimeNightAfter22),
		SpecialDay:           toFloat(e.SpecialDay),
		NightBonus:           toFloat(e.NightBonus),
	}
}

func bandsToJSON(b earnings.BandValues) BandsJSON {
	return BandsJSON{
		Ordinary:     toFloat(b.Ordinary),
		Night:        toFloat(b.Night),
		Holiday:      toFloat(b.Holiday),
		NightHoliday: toFloat(b.NightHoliday),
	}
}

func allowancesToJSON(a earnings.Allowances) AllowancesJSON {
	return AllowancesJSON{
		Travel:     toFloat(a.Travel),
		Standby:    toFloat(a.Standby),
		Meal:       toFloat(a.Meal),
		MealLunch:  toFloat(a.MealLunch),
		MealDinner: toFloat(a.MealDinner),
	}
}
