package factory_test

import (
	"context"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/earnings-engine/earnings"
	"github.com/warp/earnings-engine/factory"
	"github.com/warp/earnings-engine/generic"
)

const standbyEntry = `{
	"date": "2025-03-09",
	"is_standby_day": true,
	"interventions": [
		{"departure_start": "10:00", "departure_end": "10:30", "work_start_1": "10:30", "work_end_1": "11:30"}
	],
	"travel_allowance_percent": 0.5,
	"meal_lunch_voucher": true,
	"meal_dinner_cash_amount": 12.5,
	"day_completion_type": "rest",
	"notes": "callout"
}`

func TestParseEntry(t *testing.T) {
	e, err := factory.New().ParseEntry([]byte(standbyEntry))
	require.NoError(t, err)

	assert.Equal(t, "2025-03-09", e.Date)
	assert.True(t, e.IsStandbyDay)
	require.Len(t, e.Interventions, 1)
	assert.Equal(t, "10:30", e.Interventions[0].WorkStart1)
	assert.Equal(t, "10:30", e.Interventions[0].DepartureEnd)
	require.NotNil(t, e.TravelAllowancePercent)
	assert.True(t, e.TravelAllowancePercent.Equal(generic.D("0.5")))
	assert.True(t, e.MealLunchVoucherUsed)
	assert.True(t, e.MealDinnerCashAmount.Equal(generic.D("12.5")))
	assert.Equal(t, earnings.CompletionRest, e.DayCompletionType)
	assert.Equal(t, "callout", e.Notes)
}

func TestParseEntry_Validation(t *testing.T) {
	f := factory.New()

	tests := []struct {
		name     string
		data     string
		sentinel error
		field    string
	}{
		{"bad date", `{"date": "2025-02-30"}`, generic.ErrInvalidDate, "date"},
		{"missing date", `{"work_start_1": "08:00"}`, generic.ErrInvalidDate, "date"},
		{"bad clock", `{"date": "2025-03-04", "work_end_1": "12:60"}`, generic.ErrInvalidTime, "work_end_1"},
		{"signed clock", `{"date": "2025-03-04", "work_start_1": "-0:30"}`, generic.ErrInvalidTime, "work_start_1"},
		{"plus-signed clock", `{"date": "2025-03-04", "work_end_2": "+8:00"}`, generic.ErrInvalidTime, "work_end_2"},
		{"trailing clock garbage", `{"date": "2025-03-04", "departure_start": "08:00:zz"}`, generic.ErrInvalidTime, "departure_start"},
		{"empty seconds", `{"date": "2025-03-04", "return_end": "08:00:"}`, generic.ErrInvalidTime, "return_end"},
		{"bad intervention clock", `{"date": "2025-03-04", "interventions": [{}, {"return_end": "x"}]}`, generic.ErrInvalidTime, "interventions[1].return_end"},
		{"unknown completion", `{"date": "2025-03-04", "day_completion_type": "holiday_bank"}`, generic.ErrInvalidArgument, "day_completion_type"},
		{"percent above one", `{"date": "2025-03-04", "travel_allowance_percent": 1.5}`, generic.ErrInvalidArgument, "travel_allowance_percent"},
		{"negative percent", `{"date": "2025-03-04", "travel_allowance_percent": -0.1}`, generic.ErrInvalidArgument, "travel_allowance_percent"},
		{"negative meal cash", `{"date": "2025-03-04", "meal_lunch_cash_amount": -3}`, generic.ErrInvalidArgument, "meal cash amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ParseEntry([]byte(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Contains(t, err.Error(), tt.field)
		})
	}

	_, err := f.ParseEntry([]byte(`not json`))
	assert.Error(t, err)
	assert.False(t, generic.IsClientError(err))

	assert.ErrorIs(t, factory.ValidateEntry(nil), generic.ErrInvalidArgument)
}

func TestParseEntry_AcceptsMidnightAsTwentyFour(t *testing.T) {
	e, err := factory.New().ParseEntry([]byte(`{"date": "2025-03-04", "work_start_1": "16:00", "work_end_1": "24:00"}`))
	require.NoError(t, err)
	assert.Equal(t, 8*60, e.WorkMinutes())
}

func TestDecodeEntry_DoesNotValidate(t *testing.T) {
	// GIVEN: A stored document the API would reject
	data := []byte(`{"date": "2025-02-30", "work_start_1": "25:00", "day_completion_type": "holiday_bank"}`)

	// WHEN: Decoding it
	e, err := factory.New().DecodeEntry(data)

	// THEN: It is returned as-is for the engine to degrade
	require.NoError(t, err)
	assert.Equal(t, "25:00", e.WorkStart1)
	assert.Equal(t, earnings.CompletionType("holiday_bank"), e.DayCompletionType)
}

func TestMarshalEntry_RoundTrip(t *testing.T) {
	f := factory.New()
	in, err := f.ParseEntry([]byte(standbyEntry))
	require.NoError(t, err)

	data, err := f.MarshalEntry(in)
	require.NoError(t, err)
	out, err := f.ParseEntry(data)
	require.NoError(t, err)

	assert.Equal(t, in.Interventions, out.Interventions)
	assert.True(t, in.TravelAllowancePercent.Equal(*out.TravelAllowancePercent))
	assert.True(t, in.MealDinnerCashAmount.Equal(out.MealDinnerCashAmount))
	assert.Equal(t, in.DayCompletionType, out.DayCompletionType)
}

// =============================================================================
// OUTPUT DOCUMENTS
// =============================================================================

func TestBreakdownToJSON(t *testing.T) {
	f := factory.New()
	entry, err := f.ParseEntry([]byte(standbyEntry))
	require.NoError(t, err)
	settings, err := f.ParseSettings([]byte(factory.OnCallProfileJSON(16.41, 109.19, 20, 30)))
	require.NoError(t, err)

	b, err := earnings.ComputeDailyBreakdown(entry, settings, generic.ItalianCalendar{})
	require.NoError(t, err)
	out := factory.BreakdownToJSON(b)

	assert.Equal(t, "2025-03-09", out.Date)
	assert.True(t, out.Details.IsSunday)
	assert.Equal(t, "rest", out.Details.CompletionType)
	require.NotNil(t, out.Standby)
	assert.Equal(t, 1, out.Standby.Interventions)
	assert.Equal(t, 30.0, out.Standby.DailyIndemnity)
	assert.Equal(t, 1.0, out.Standby.WorkHours.Holiday)
	assert.InDelta(t, b.TotalEarnings.InexactFloat64(), out.TotalEarnings, 1e-9)

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"night_holiday"`)
	assert.Contains(t, string(data), `"travel_allowance_active"`)
}

func TestSummaryToJSON(t *testing.T) {
	period := generic.MonthPeriod(2025, 3)
	entry := &earnings.WorkEntry{Date: "2025-03-04", WorkStart1: "08:00", WorkEnd1: "12:00", WorkStart2: "13:00", WorkEnd2: "17:00"}
	summary, err := earnings.Aggregate(context.Background(), period, []*earnings.WorkEntry{entry}, &earnings.Settings{}, earnings.AggregateOptions{})
	require.NoError(t, err)

	out := factory.SummaryToJSON(summary, false)
	assert.Equal(t, "2025-03-01", out.From)
	assert.Equal(t, "2025-03-31", out.To)
	assert.Equal(t, 1, out.Counts.Worked)
	assert.Equal(t, 109.19, out.TotalEarnings)
	assert.Empty(t, out.Days)

	withDays := factory.SummaryToJSON(summary, true)
	require.Len(t, withDays.Days, 1)
	assert.Equal(t, "2025-03-04", withDays.Days[0].Date)
}
