/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication that are specific to the
  HTTP surface. Entry, settings and breakdown documents are shared with the
  CLI and the store and live in the factory package.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers and factory.ValidateEntry, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/entry.go, factory/settings.go, factory/breakdown.go
*/
package api

import (
	"time"

	json "github.com/goccy/go-json"

	"github.com/warp/earnings-engine/earnings"
	"github.com/warp/earnings-engine/factory"
	"github.com/warp/earnings-engine/generic"
	"github.com/warp/earnings-engine/store/sqlite"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// SettingsDTO is the stored profile next to the values the engine uses.
type SettingsDTO struct {
	Settings factory.SettingsJSON `json:"settings"`
	Resolved ResolvedSettingsDTO  `json:"resolved"`
}

// ResolvedSettingsDTO shows the profile with every default applied.
type ResolvedSettingsDTO struct {
	BaseRate               float64            `json:"base_rate"`
	DailyRate              float64            `json:"daily_rate"`
	Multipliers            map[string]float64 `json:"multipliers"`
	TravelCompensationRate float64            `json:"travel_compensation_rate"`
	TravelHoursSetting     string             `json:"travel_hours_setting"`
	TravelAllowanceEnabled bool               `json:"travel_allowance_enabled"`
	TravelAllowanceAmount  float64            `json:"travel_allowance_amount"`
	ActivationPolicy       string             `json:"activation_policy"`
	StandbyAllowance       float64            `json:"standby_allowance"`
	StandbySpecialDay      float64            `json:"standby_special_day_allowance"`
	StandbyNightStart      string             `json:"standby_night_start"`
	StandbyNightEnd        string             `json:"standby_night_end"`
}

// EntryResponseDTO is returned after saving an entry.
type EntryResponseDTO struct {
	Entry     factory.EntryJSON     `json:"entry"`
	Breakdown factory.BreakdownJSON `json:"breakdown"`
}

// BreakdownRequest is the body of a stateless breakdown.
type BreakdownRequest struct {
	Entry             json.RawMessage `json:"entry"`
	Settings          json.RawMessage `json:"settings,omitempty"`
	UseStoredHolidays bool            `json:"use_stored_holidays,omitempty"`
}

// HolidayDTO represents a holiday.
type HolidayDTO struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Name      string `json:"name"`
	Recurring bool   `json:"recurring"`
}

// CreateHolidayRequest is the request to add a custom holiday.
type CreateHolidayRequest struct {
	Date      string `json:"date"`
	Name      string `json:"name"`
	Recurring bool   `json:"recurring"`
}

// MonthClosingDTO represents a month closing run.
type MonthClosingDTO struct {
	ID            string          `json:"id"`
	PeriodStart   string          `json:"period_start"`
	PeriodEnd     string          `json:"period_end"`
	Status        string          `json:"status"`
	TotalEarnings string          `json:"total_earnings,omitempty"`
	ReportPath    string          `json:"report_path,omitempty"`
	Error         string          `json:"error,omitempty"`
	Summary       json.RawMessage `json:"summary,omitempty"`
	StartedAt     string          `json:"started_at,omitempty"`
	CompletedAt   string          `json:"completed_at,omitempty"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toResolvedDTO(fs earnings.FullSettings) ResolvedSettingsDTO {
	m := fs.Multipliers
	return ResolvedSettingsDTO{
		BaseRate:  fs.BaseRate.InexactFloat64(),
		DailyRate: fs.DailyRate.InexactFloat64(),
		Multipliers: map[string]float64{
			"day":            m.Day.InexactFloat64(),
			"night_until_22": m.NightUntil22.InexactFloat64(),
			"night_after_22": m.NightAfter22.InexactFloat64(),
			"holiday":        m.Holiday.InexactFloat64(),
			"night_holiday":  m.NightHoliday.InexactFloat64(),
			"saturday":       m.Saturday.InexactFloat64(),
		},
		TravelCompensationRate: fs.TravelCompensationRate.InexactFloat64(),
		TravelHoursSetting:     string(fs.TravelHoursSetting),
		TravelAllowanceEnabled: fs.TravelAllowance.Enabled,
		TravelAllowanceAmount:  fs.TravelAllowance.DailyAmount.InexactFloat64(),
		ActivationPolicy:       string(fs.TravelAllowance.ActivationPolicy),
		StandbyAllowance:       fs.Standby.DailyAllowance.InexactFloat64(),
		StandbySpecialDay:      fs.Standby.SpecialDayAllowance.InexactFloat64(),
		StandbyNightStart:      generic.FormatMinutes(fs.Standby.NightStart),
		StandbyNightEnd:        generic.FormatMinutes(fs.Standby.NightEnd),
	}
}

func toHolidayDTO(h generic.Holiday) HolidayDTO {
	return HolidayDTO{
		ID:        h.ID,
		Date:      h.Date.String(),
		Name:      h.Name,
		Recurring: h.Recurring,
	}
}

func toHolidayDTOs(hs []generic.Holiday) []HolidayDTO {
	dtos := make([]HolidayDTO, 0, len(hs))
	for _, h := range hs {
		dtos = append(dtos, toHolidayDTO(h))
	}
	return dtos
}

func toMonthClosingDTO(c sqlite.MonthClosing) MonthClosingDTO {
	dto := MonthClosingDTO{
		ID:            c.ID,
		PeriodStart:   c.PeriodStart.String(),
		PeriodEnd:     c.PeriodEnd.String(),
		Status:        c.Status,
		TotalEarnings: c.TotalEarnings,
		ReportPath:    c.ReportPath,
		Error:         c.Error,
	}
	if c.SummaryJSON != "" {
		dto.Summary = json.RawMessage(c.SummaryJSON)
	}
	if c.StartedAt != nil {
		dto.StartedAt = c.StartedAt.Format(time.RFC3339)
	}
	if c.CompletedAt != nil {
		dto.CompletedAt = c.CompletedAt.Format(time.RFC3339)
	}
	return dto
}
