/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario stores a settings profile and
	a month of work entries that exercise specific parts of the engine.

AVAILABLE SCENARIOS:

	standard-month:   8-hour weekdays, default CCNL rates
	field-technician: Travel days, overtime excess, travel allowance
	on-call:          Standby days with day and night interventions
	mixed-month:      Partial days, leave completions, a worked Saturday

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Save a settings profile built from a factory preset
 3. Save the work entries of the requested month

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "on-call", "month": "2025-03"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: ResetDatabase handler
  - factory/presets.go: Settings presets
*/
package api

import (
	"context"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/warp/earnings-engine/earnings"
	"github.com/warp/earnings-engine/factory"
	"github.com/warp/earnings-engine/generic"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "standard-month",
		Name:        "Standard Month",
		Description: "8-hour weekdays at default CCNL rates",
	},
	{
		ID:          "field-technician",
		Name:        "Field Technician",
		Description: "Travel to customer sites, excess paid as overtime, daily travel allowance",
	},
	{
		ID:          "on-call",
		Name:        "On-Call Week",
		Description: "Standby days with evening and night interventions",
	},
	{
		ID:          "mixed-month",
		Name:        "Mixed Month",
		Description: "Partial days completed with leave, vacation days, a worked Saturday",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario loads a predefined scenario into the given month (default:
// current month).
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
		Month      string `json:"month"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	today := generic.Today()
	period := generic.MonthPeriod(today.Year(), today.Month())
	if req.Month != "" {
		p, err := generic.ParseMonth(req.Month)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month", err)
			return
		}
		period = p
	}

	var loader func(context.Context, generic.Period) error
	switch req.ScenarioID {
	case "standard-month":
		loader = h.loadStandardMonthScenario
	case "field-technician":
		loader = h.loadFieldTechnicianScenario
	case "on-call":
		loader = h.loadOnCallScenario
	case "mixed-month":
		loader = h.loadMixedMonthScenario
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.invalidate()
	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()

	if err := loader(ctx, period); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.mu.Lock()
	h.currentScenario = req.ScenarioID
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "loaded",
		"scenario": req.ScenarioID,
		"month":    period.Start.Time.Format("2006-01"),
	})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadStandardMonthScenario(ctx context.Context, period generic.Period) error {
	if err := h.saveProfile(ctx, factory.StandardProfileJSON(16.41, 109.19)); err != nil {
		return err
	}
	return h.saveEntries(ctx, weekdays(period), func(day generic.TimePoint) earnings.WorkEntry {
		return officeDay(day)
	})
}

func (h *Handler) loadFieldTechnicianScenario(ctx context.Context, period generic.Period) error {
	if err := h.saveProfile(ctx, factory.FieldTechnicianProfileJSON(16.41, 109.19, 46.48)); err != nil {
		return err
	}
	return h.saveEntries(ctx, weekdays(period), func(day generic.TimePoint) earnings.WorkEntry {
		if day.Weekday()%2 == 0 {
			return officeDay(day)
		}
		// Site visit: 1h each way, 8h on site.
		e := officeDay(day)
		e.DepartureStart, e.DepartureEnd = "07:00", "08:00"
		e.ReturnStart, e.ReturnEnd = "17:00", "18:00"
		e.MealLunchVoucherUsed = true
		return e
	})
}

func (h *Handler) loadOnCallScenario(ctx context.Context, period generic.Period) error {
	if err := h.saveProfile(ctx, factory.OnCallProfileJSON(16.41, 109.19, 20, 30)); err != nil {
		return err
	}
	days := period.Days()
	if len(days) > 7 {
		days = days[:7]
	}
	return h.saveEntries(ctx, days, func(day generic.TimePoint) earnings.WorkEntry {
		e := earnings.WorkEntry{Date: day.String(), IsStandbyDay: true}
		if !day.IsSaturday() && !day.IsSunday() {
			e = officeDay(day)
			e.IsStandbyDay = true
		}
		switch day.Day() % 3 {
		case 0:
			e.Interventions = []earnings.Intervention{{
				DepartureStart: "21:30", DepartureEnd: "22:00",
				WorkStart1: "22:00", WorkEnd1: "23:30",
				ReturnStart: "23:30", ReturnEnd: "00:00",
			}}
		case 1:
			e.Interventions = []earnings.Intervention{{WorkStart1: "19:00", WorkEnd1: "20:30"}}
		}
		return e
	})
}

func (h *Handler) loadMixedMonthScenario(ctx context.Context, period generic.Period) error {
	if err := h.saveProfile(ctx, factory.StandardProfileJSON(16.41, 109.19)); err != nil {
		return err
	}
	var days []generic.TimePoint
	for _, d := range period.Days() {
		if !d.IsSunday() {
			days = append(days, d)
		}
	}
	return h.saveEntries(ctx, days, func(day generic.TimePoint) earnings.WorkEntry {
		e := officeDay(day)
		switch {
		case day.IsSaturday():
			e.WorkStart2, e.WorkEnd2 = "", ""
		case day.Day()%5 == 0:
			e.WorkStart2, e.WorkEnd2 = "", ""
			e.DayCompletionType = earnings.CompletionLeave
		case day.Day()%7 == 0:
			e = earnings.WorkEntry{Date: day.String(), DayCompletionType: earnings.CompletionVacation}
		case day.Day()%11 == 0:
			e.WorkEnd2 = "16:00"
			e.DayCompletionType = earnings.CompletionRest
		}
		return e
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) saveProfile(ctx context.Context, profileJSON string) error {
	settings, err := h.Factory.ParseSettings([]byte(profileJSON))
	if err != nil {
		return err
	}
	return h.Store.SaveSettings(ctx, *settings)
}

func (h *Handler) saveEntries(ctx context.Context, days []generic.TimePoint, build func(generic.TimePoint) earnings.WorkEntry) error {
	for _, day := range days {
		if err := h.Store.SaveEntry(ctx, build(day)); err != nil {
			return err
		}
	}
	return nil
}

func officeDay(day generic.TimePoint) earnings.WorkEntry {
	return earnings.WorkEntry{
		Date:       day.String(),
		WorkStart1: "08:00",
		WorkEnd1:   "12:00",
		WorkStart2: "13:00",
		WorkEnd2:   "17:00",
	}
}

func weekdays(period generic.Period) []generic.TimePoint {
	var out []generic.TimePoint
	for _, d := range period.Days() {
		if !d.IsSaturday() && !d.IsSunday() {
			out = append(out, d)
		}
	}
	return out
}
