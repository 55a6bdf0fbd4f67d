package factory

import "fmt"

// =============================================================================
// PRESET PROFILES - Ready-to-use settings documents
// =============================================================================
//
// Starting points for common contract shapes. They return JSON so they go
// through the same ParseSettings path as profiles submitted by users.

// StandardProfileJSON is a plain CCNL profile: contract rates, default
// multipliers, no travel or standby allowances.
func StandardProfileJSON(hourlyRate, dailyRate float64) string {
	return fmt.Sprintf(`{
		"contract": {"hourly_rate": %g, "daily_rate": %g},
		"travel_hours_setting": "EXCESS_AS_TRAVEL",
		"meal_allowances": {"lunch": {"voucher_amount": 8}, "dinner": {"voucher_amount": 8}}
	}`, hourlyRate, dailyRate)
}

// FieldTechnicianProfileJSON adds a daily travel allowance paid on days with
// travel, with excess hours paid as overtime.
func FieldTechnicianProfileJSON(hourlyRate, dailyRate, travelAllowance float64) string {
	return fmt.Sprintf(`{
		"contract": {"hourly_rate": %g, "daily_rate": %g},
		"travel_compensation_rate": 1.0,
		"travel_hours_setting": "EXCESS_AS_OVERTIME",
		"travel_allowance": {
			"enabled": true,
			"daily_amount": %g,
			"activation_policy": "WITH_TRAVEL",
			"apply_on_special_days": false
		},
		"meal_allowances": {"lunch": {"voucher_amount": 8, "cash_amount": 12}, "dinner": {"voucher_amount": 8}}
	}`, hourlyRate, dailyRate, travelAllowance)
}

// OnCallProfileJSON adds standby indemnities for weekdays and festive days.
func OnCallProfileJSON(hourlyRate, dailyRate, standbyAllowance, festiveAllowance float64) string {
	return fmt.Sprintf(`{
		"contract": {"hourly_rate": %g, "daily_rate": %g},
		"travel_hours_setting": "EXCESS_AS_TRAVEL",
		"standby": {
			"daily_allowance": %g,
			"special_day_allowance": %g,
			"travel_with_bonus": true,
			"night_start": "22:00",
			"night_end": "06:00"
		}
	}`, hourlyRate, dailyRate, standbyAllowance, festiveAllowance)
}

// SalariedProfileJSON derives both rates from a monthly salary.
func SalariedProfileJSON(monthlySalary float64) string {
	return fmt.Sprintf(`{"contract": {"monthly_salary": %g}}`, monthlySalary)
}
