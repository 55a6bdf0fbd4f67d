package factory

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/warp/earnings-engine/earnings"
	"github.com/warp/earnings-engine/generic"
)

// =============================================================================
// WORK ENTRY JSON
// =============================================================================

// EntryJSON is the JSON representation of a work entry.
type EntryJSON struct {
	ID   string `json:"id,omitempty"`
	Date string `json:"date"`

	WorkStart1     string `json:"work_start_1,omitempty"`
	WorkEnd1       string `json:"work_end_1,omitempty"`
	WorkStart2     string `json:"work_start_2,omitempty"`
	WorkEnd2       string `json:"work_end_2,omitempty"`
	DepartureStart string `json:"departure_start,omitempty"`
	DepartureEnd   string `json:"departure_end,omitempty"`
	ReturnStart    string `json:"return_start,omitempty"`
	ReturnEnd      string `json:"return_end,omitempty"`

	Interventions []InterventionJSON `json:"interventions,omitempty"`
	IsStandbyDay  bool               `json:"is_standby_day,omitempty"`

	TravelAllowanceRequested bool     `json:"travel_allowance,omitempty"`
	TravelAllowancePercent   *float64 `json:"travel_allowance_percent,omitempty"`

	MealLunchVoucher     bool    `json:"meal_lunch_voucher,omitempty"`
	MealDinnerVoucher    bool    `json:"meal_dinner_voucher,omitempty"`
	MealLunchCashAmount  float64 `json:"meal_lunch_cash_amount,omitempty"`
	MealDinnerCashAmount float64 `json:"meal_dinner_cash_amount,omitempty"`
	DayCompletionType    string  `json:"day_completion_type,omitempty"`
	NightShift           bool    `json:"night_shift,omitempty"`
	Notes                string  `json:"notes,omitempty"`
}

// InterventionJSON is one standby callout.
type InterventionJSON struct {
	DepartureStart string `json:"departure_start,omitempty"`
	DepartureEnd   string `json:"departure_end,omitempty"`
	WorkStart1     string `json:"work_start_1,omitempty"`
	WorkEnd1       string `json:"work_end_1,omitempty"`
	WorkStart2     string `json:"work_start_2,omitempty"`
	WorkEnd2       string `json:"work_end_2,omitempty"`
	ReturnStart    string `json:"return_start,omitempty"`
	ReturnEnd      string `json:"return_end,omitempty"`
}

// ParseEntry parses and validates a JSON work entry.
func (f *Factory) ParseEntry(data []byte) (*earnings.WorkEntry, error) {
	var ej EntryJSON
	if err := json.Unmarshal(data, &ej); err != nil {
		return nil, fmt.Errorf("failed to parse entry JSON: %w", err)
	}
	entry := f.EntryFromJSON(ej)
	if err := ValidateEntry(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// DecodeEntry parses a stored entry without validating it. The engine
// degrades on malformed values, so stored documents are never rejected.
func (f *Factory) DecodeEntry(data []byte) (*earnings.WorkEntry, error) {
	var ej EntryJSON
	if err := json.Unmarshal(data, &ej); err != nil {
		return nil, fmt.Errorf("failed to decode entry JSON: %w", err)
	}
	return f.EntryFromJSON(ej), nil
}

// EntryFromJSON converts without validation.
func (f *Factory) EntryFromJSON(ej EntryJSON) *earnings.WorkEntry {
	e := &earnings.WorkEntry{
		ID:                       ej.ID,
		Date:                     ej.Date,
		WorkStart1:               ej.WorkStart1,
		WorkEnd1:                 ej.WorkEnd1,
		WorkStart2:               ej.WorkStart2,
		WorkEnd2:                 ej.WorkEnd2,
		DepartureStart:           ej.DepartureStart,
		DepartureEnd:             ej.DepartureEnd,
		ReturnStart:              ej.ReturnStart,
		ReturnEnd:                ej.ReturnEnd,
		IsStandbyDay:             ej.IsStandbyDay,
		TravelAllowanceRequested: ej.TravelAllowanceRequested,
		TravelAllowancePercent:   decPtr(ej.TravelAllowancePercent),
		MealLunchVoucherUsed:     ej.MealLunchVoucher,
		MealDinnerVoucherUsed:    ej.MealDinnerVoucher,
		MealLunchCashAmount:      decimal.NewFromFloat(ej.MealLunchCashAmount),
		MealDinnerCashAmount:     decimal.NewFromFloat(ej.MealDinnerCashAmount),
		DayCompletionType:        earnings.CompletionType(ej.DayCompletionType),
		NightShift:               ej.NightShift,
		Notes:                    ej.Notes,
	}
	for _, iv := range ej.Interventions {
		e.Interventions = append(e.Interventions, earnings.Intervention(iv))
	}
	return e
}

// EntryToJSON converts a WorkEntry to EntryJSON.
func (f *Factory) EntryToJSON(e *earnings.WorkEntry) EntryJSON {
	ej := EntryJSON{
		ID:                       e.ID,
		Date:                     e.Date,
		WorkStart1:               e.WorkStart1,
		WorkEnd1:                 e.WorkEnd1,
		WorkStart2:               e.WorkStart2,
		WorkEnd2:                 e.WorkEnd2,
		DepartureStart:           e.DepartureStart,
		DepartureEnd:             e.DepartureEnd,
		ReturnStart:              e.ReturnStart,
		ReturnEnd:                e.ReturnEnd,
		IsStandbyDay:             e.IsStandbyDay,
		TravelAllowanceRequested: e.TravelAllowanceRequested,
		TravelAllowancePercent:   floatPtr(e.TravelAllowancePercent),
		MealLunchVoucher:         e.MealLunchVoucherUsed,
		MealDinnerVoucher:        e.MealDinnerVoucherUsed,
		MealLunchCashAmount:      toFloat(e.MealLunchCashAmount),
		MealDinnerCashAmount:     toFloat(e.MealDinnerCashAmount),
		DayCompletionType:        string(e.DayCompletionType),
		NightShift:               e.NightShift,
		Notes:                    e.Notes,
	}
	for _, iv := range e.Interventions {
		ej.Interventions = append(ej.Interventions, InterventionJSON(iv))
	}
	return ej
}

// MarshalEntry encodes a WorkEntry as JSON.
func (f *Factory) MarshalEntry(e *earnings.WorkEntry) ([]byte, error) {
	return json.Marshal(f.EntryToJSON(e))
}

// =============================================================================
// VALIDATION - Applied where entries enter the system (API, CLI)
// =============================================================================

type clockField struct {
	field, value string
}

// ValidateEntry rejects malformed dates and clock times, unknown completion
// types and out-of-range amounts.
func ValidateEntry(e *earnings.WorkEntry) error {
	if e == nil {
		return &generic.InvalidArgumentError{Argument: "entry", Reason: "must not be nil"}
	}
	if _, ok := generic.ParseDate(e.Date); !ok {
		return &generic.FieldError{Field: "date", Value: e.Date, Err: generic.ErrInvalidDate}
	}

	clocks := []clockField{
		{"work_start_1", e.WorkStart1}, {"work_end_1", e.WorkEnd1},
		{"work_start_2", e.WorkStart2}, {"work_end_2", e.WorkEnd2},
		{"departure_start", e.DepartureStart}, {"departure_end", e.DepartureEnd},
		{"return_start", e.ReturnStart}, {"return_end", e.ReturnEnd},
	}
	for i, iv := range e.Interventions {
		p := fmt.Sprintf("interventions[%d].", i)
		clocks = append(clocks,
			clockField{p + "departure_start", iv.DepartureStart}, clockField{p + "departure_end", iv.DepartureEnd},
			clockField{p + "work_start_1", iv.WorkStart1}, clockField{p + "work_end_1", iv.WorkEnd1},
			clockField{p + "work_start_2", iv.WorkStart2}, clockField{p + "work_end_2", iv.WorkEnd2},
			clockField{p + "return_start", iv.ReturnStart}, clockField{p + "return_end", iv.ReturnEnd},
		)
	}
	for _, c := range clocks {
		if err := validateClock(c.field, c.value); err != nil {
			return err
		}
	}

	if !e.DayCompletionType.Valid() {
		return &generic.InvalidArgumentError{Argument: "day_completion_type", Reason: fmt.Sprintf("unknown value %q", e.DayCompletionType)}
	}
	if p := e.TravelAllowancePercent; p != nil && (p.IsNegative() || p.GreaterThan(generic.One)) {
		return &generic.InvalidArgumentError{Argument: "travel_allowance_percent", Reason: "must be between 0 and 1"}
	}
	if e.MealLunchCashAmount.IsNegative() || e.MealDinnerCashAmount.IsNegative() {
		return &generic.InvalidArgumentError{Argument: "meal cash amount", Reason: "must not be negative"}
	}
	return nil
}
