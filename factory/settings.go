/*
Package factory provides JSON to Go conversion for the earnings engine.

PURPOSE:
  Converts JSON settings profiles and work entries into earnings.Settings and
  earnings.WorkEntry, and breakdowns back into JSON-friendly documents. The
  API, the CLI and the SQLite store all go through this package, so there is
  exactly one wire format.

SETTINGS SCHEMA (every field optional):
  {
    "contract": {
      "hourly_rate": 16.41,
      "daily_rate": 109.19,
      "monthly_salary": 2839.0,
      "overtime_rates": {
        "day": 1.20, "night_until_22": 1.25, "night_after_22": 1.35,
        "holiday": 1.30, "night_holiday": 1.50, "saturday": 1.25
      }
    },
    "travel_compensation_rate": 1.0,
    "travel_hours_setting": "EXCESS_AS_TRAVEL",
    "travel_allowance": {
      "enabled": true, "daily_amount": 46.48,
      "activation_policy": "WITH_TRAVEL", "apply_on_special_days": false
    },
    "standby": {
      "daily_allowance": 20.0, "special_day_allowance": 30.0,
      "travel_with_bonus": false, "night_start": "22:00", "night_end": "06:00"
    },
    "meal_allowances": {
      "lunch":  {"voucher_amount": 8.0, "cash_amount": 0},
      "dinner": {"voucher_amount": 8.0}
    }
  }

KEY FEATURES:
  - Absent fields stay absent (nil), so earnings.ResolveSettings applies defaults
  - Unknown enum values are rejected at the edge instead of silently defaulted
  - Amounts travel as JSON numbers and become decimal.Decimal internally

USAGE:
  f := factory.New()
  settings, err := f.ParseSettings(data)
  breakdown, _ := earnings.ComputeDailyBreakdown(entry, settings, nil)

SEE ALSO:
  - earnings/types.go: Settings definition
  - earnings/rates.go: defaults applied to absent fields
*/
package factory

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/warp/earnings-engine/earnings"
	"github.com/warp/earnings-engine/generic"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// SettingsJSON is the JSON representation of a settings profile.
type SettingsJSON struct {
	Contract               *ContractJSON        `json:"contract,omitempty"`
	TravelCompensationRate *float64             `json:"travel_compensation_rate,omitempty"`
	TravelHoursSetting     string               `json:"travel_hours_setting,omitempty"`
	TravelAllowance        *TravelAllowanceJSON `json:"travel_allowance,omitempty"`
	Standby                *StandbyJSON         `json:"standby,omitempty"`
	MealAllowances         *MealAllowancesJSON  `json:"meal_allowances,omitempty"`
}

type ContractJSON struct {
	HourlyRate    *float64           `json:"hourly_rate,omitempty"`
	DailyRate     *float64           `json:"daily_rate,omitempty"`
	MonthlySalary *float64           `json:"monthly_salary,omitempty"`
	OvertimeRates *OvertimeRatesJSON `json:"overtime_rates,omitempty"`
}

type OvertimeRatesJSON struct {
	Day          *float64 `json:"day,omitempty"`
	NightUntil22 *float64 `json:"night_until_22,omitempty"`
	NightAfter22 *float64 `json:"night_after_22,omitempty"`
	Holiday      *float64 `json:"holiday,omitempty"`
	NightHoliday *float64 `json:"night_holiday,omitempty"`
	Saturday     *float64 `json:"saturday,omitempty"`
}

type TravelAllowanceJSON struct {
	Enabled            bool     `json:"enabled"`
	DailyAmount        *float64 `json:"daily_amount,omitempty"`
	ActivationPolicy   string   `json:"activation_policy,omitempty"`
	ApplyOnSpecialDays bool     `json:"apply_on_special_days,omitempty"`
}

type StandbyJSON struct {
	DailyAllowance      *float64 `json:"daily_allowance,omitempty"`
	DailyIndemnity      *float64 `json:"daily_indemnity,omitempty"`
	SpecialDayAllowance *float64 `json:"special_day_allowance,omitempty"`
	TravelWithBonus     bool     `json:"travel_with_bonus,omitempty"`
	NightStart          string   `json:"night_start,omitempty"`
	NightEnd            string   `json:"night_end,omitempty"`
}

type MealJSON struct {
	VoucherAmount *float64 `json:"voucher_amount,omitempty"`
	CashAmount    *float64 `json:"cash_amount,omitempty"`
}

type MealAllowancesJSON struct {
	Lunch  *MealJSON `json:"lunch,omitempty"`
	Dinner *MealJSON `json:"dinner,omitempty"`
}

// =============================================================================
// FACTORY
// =============================================================================

// Factory converts JSON documents to engine types and back.
type Factory struct{}

// New creates a new factory.
func New() *Factory {
	return &Factory{}
}

// ParseSettings parses a JSON document into Settings.
func (f *Factory) ParseSettings(data []byte) (*earnings.Settings, error) {
	var sj SettingsJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		return nil, fmt.Errorf("failed to parse settings JSON: %w", err)
	}
	return f.SettingsFromJSON(sj)
}

// SettingsFromJSON validates enums and clock values, then converts.
func (f *Factory) SettingsFromJSON(sj SettingsJSON) (*earnings.Settings, error) {
	s := &earnings.Settings{
		TravelCompensationRate: decPtr(sj.TravelCompensationRate),
	}

	if sj.TravelHoursSetting != "" {
		th, err := parseTravelHoursSetting(sj.TravelHoursSetting)
		if err != nil {
			return nil, err
		}
		s.TravelHoursSetting = th
	}

	if c := sj.Contract; c != nil {
		s.Contract = earnings.Contract{
			HourlyRate:    decPtr(c.HourlyRate),
			DailyRate:     decPtr(c.DailyRate),
			MonthlySalary: decPtr(c.MonthlySalary),
		}
		if r := c.OvertimeRates; r != nil {
			s.Contract.OvertimeRates = earnings.OvertimeRates{
				Day:          decPtr(r.Day),
				NightUntil22: decPtr(r.NightUntil22),
				NightAfter22: decPtr(r.NightAfter22),
				Holiday:      decPtr(r.Holiday),
				NightHoliday: decPtr(r.NightHoliday),
				Saturday:     decPtr(r.Saturday),
			}
		}
	}

	if ta := sj.TravelAllowance; ta != nil {
		s.TravelAllowance = earnings.TravelAllowanceSettings{
			Enabled:            ta.Enabled,
			DailyAmount:        decPtr(ta.DailyAmount),
			ApplyOnSpecialDays: ta.ApplyOnSpecialDays,
		}
		if ta.ActivationPolicy != "" {
			p, err := parseActivationPolicy(ta.ActivationPolicy)
			if err != nil {
				return nil, err
			}
			s.TravelAllowance.ActivationPolicy = p
		}
	}

	if sb := sj.Standby; sb != nil {
		if err := validateClock("standby.night_start", sb.NightStart); err != nil {
			return nil, err
		}
		if err := validateClock("standby.night_end", sb.NightEnd); err != nil {
			return nil, err
		}
		s.Standby = earnings.StandbySettings{
			DailyAllowance:      decPtr(sb.DailyAllowance),
			DailyIndemnity:      decPtr(sb.DailyIndemnity),
			SpecialDayAllowance: decPtr(sb.SpecialDayAllowance),
			TravelWithBonus:     sb.TravelWithBonus,
			NightStart:          sb.NightStart,
			NightEnd:            sb.NightEnd,
		}
	}

	if m := sj.MealAllowances; m != nil {
		s.MealAllowances = earnings.MealAllowances{
			Lunch:  mealFromJSON(m.Lunch),
			Dinner: mealFromJSON(m.Dinner),
		}
	}

	return s, nil
}

// SettingsToJSON converts Settings to SettingsJSON. Absent fields stay absent.
func (f *Factory) SettingsToJSON(s *earnings.Settings) SettingsJSON {
	if s == nil {
		return SettingsJSON{}
	}
	r := s.Contract.OvertimeRates
	return SettingsJSON{
		Contract: &ContractJSON{
			HourlyRate:    floatPtr(s.Contract.HourlyRate),
			DailyRate:     floatPtr(s.Contract.DailyRate),
			MonthlySalary: floatPtr(s.Contract.MonthlySalary),
			OvertimeRates: &OvertimeRatesJSON{
				Day:          floatPtr(r.Day),
				NightUntil22: floatPtr(r.NightUntil22),
				NightAfter22: floatPtr(r.NightAfter22),
				Holiday:      floatPtr(r.Holiday),
				NightHoliday: floatPtr(r.NightHoliday),
				Saturday:     floatPtr(r.Saturday),
			},
		},
		TravelCompensationRate: floatPtr(s.TravelCompensationRate),
		TravelHoursSetting:     string(s.TravelHoursSetting),
		TravelAllowance: &TravelAllowanceJSON{
			Enabled:            s.TravelAllowance.Enabled,
			DailyAmount:        floatPtr(s.TravelAllowance.DailyAmount),
			ActivationPolicy:   string(s.TravelAllowance.ActivationPolicy),
			ApplyOnSpecialDays: s.TravelAllowance.ApplyOnSpecialDays,
		},
		Standby: &StandbyJSON{
			DailyAllowance:      floatPtr(s.Standby.DailyAllowance),
			DailyIndemnity:      floatPtr(s.Standby.DailyIndemnity),
			SpecialDayAllowance: floatPtr(s.Standby.SpecialDayAllowance),
			TravelWithBonus:     s.Standby.TravelWithBonus,
			NightStart:          s.Standby.NightStart,
			NightEnd:            s.Standby.NightEnd,
		},
		MealAllowances: &MealAllowancesJSON{
			Lunch:  mealToJSON(s.MealAllowances.Lunch),
			Dinner: mealToJSON(s.MealAllowances.Dinner),
		},
	}
}

// MarshalSettings encodes Settings as JSON.
func (f *Factory) MarshalSettings(s *earnings.Settings) ([]byte, error) {
	return json.Marshal(f.SettingsToJSON(s))
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseTravelHoursSetting(s string) (earnings.TravelHoursSetting, error) {
	switch v := earnings.TravelHoursSetting(s); v {
	case earnings.ExcessAsTravel, earnings.ExcessAsOvertime, earnings.ExcessUnpaid:
		return v, nil
	}
	return "", &generic.InvalidArgumentError{Argument: "travel_hours_setting", Reason: fmt.Sprintf("unknown value %q", s)}
}

func parseActivationPolicy(s string) (earnings.ActivationPolicy, error) {
	switch v := earnings.ActivationPolicy(s); v {
	case earnings.ActivationWithTravel, earnings.ActivationAlways, earnings.ActivationFullDayOnly,
		earnings.ActivationAlsoOnStandby, earnings.ActivationFullAllowanceHalfDay, earnings.ActivationHalfAllowanceHalfDay:
		return v, nil
	}
	return "", &generic.InvalidArgumentError{Argument: "travel_allowance.activation_policy", Reason: fmt.Sprintf("unknown value %q", s)}
}

func mealFromJSON(m *MealJSON) earnings.MealSettings {
	if m == nil {
		return earnings.MealSettings{}
	}
	return earnings.MealSettings{
		VoucherAmount: decPtr(m.VoucherAmount),
		CashAmount:    decPtr(m.CashAmount),
	}
}

func mealToJSON(m earnings.MealSettings) *MealJSON {
	return &MealJSON{
		VoucherAmount: floatPtr(m.VoucherAmount),
		CashAmount:    floatPtr(m.CashAmount),
	}
}

// validateClock accepts an empty value (absent) or a valid "HH:MM".
func validateClock(field, v string) error {
	if v == "" {
		return nil
	}
	if _, ok := generic.ToMinutes(v); !ok {
		return &generic.FieldError{Field: field, Value: v, Err: generic.ErrInvalidTime}
	}
	return nil
}

func decPtr(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}

func floatPtr(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

func toFloat(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
