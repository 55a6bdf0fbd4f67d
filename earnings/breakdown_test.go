package earnings_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/earnings-engine/earnings"
	"github.com/warp/earnings-engine/generic"
)

func TestComputeDailyBreakdown_NilArguments(t *testing.T) {
	_, err := earnings.ComputeDailyBreakdown(nil, &earnings.Settings{}, nil)
	assert.ErrorIs(t, err, generic.ErrInvalidArgument)

	var argErr *generic.InvalidArgumentError
	_, err = earnings.ComputeDailyBreakdown(&earnings.WorkEntry{Date: tuesday}, nil, nil)
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "settings", argErr.Argument)

	_, err = earnings.NewCalculator(nil, nil)
	assert.ErrorIs(t, err, generic.ErrInvalidArgument)
}

func TestComputeDailyBreakdown_IsIdempotentAndPure(t *testing.T) {
	// GIVEN: A complex standby travel day
	entry := travelDay(tuesday)
	entry.IsStandbyDay = true
	entry.Interventions = []earnings.Intervention{{WorkStart1: "22:30", WorkEnd1: "23:15"}}
	entry.TravelAllowancePercent = generic.Dec("0.5")
	settings := travelAllowanceSettings(earnings.ActivationAlways)
	settings.Standby.DailyAllowance = generic.Dec("20")

	before := earnings.CopyEntry(entry)

	// WHEN: Computing twice
	first := compute(t, entry, settings)
	second := compute(t, entry, settings)

	// THEN: Both results are identical
	assert.True(t, first.TotalEarnings.Equal(second.TotalEarnings))
	assert.Equal(t, first.Ordinary.Result, second.Ordinary.Result)
	assert.Equal(t, first.Standby.WorkMinutes, second.Standby.WorkMinutes)

	// AND: The entry was not modified
	assert.Equal(t, before, entry)
}

func TestComputeDailyBreakdown_InvalidDateDegrades(t *testing.T) {
	// GIVEN: An unparsable date
	entry := officeDay("2025-02-30")

	b := compute(t, entry, earnings.Settings{})

	// THEN: The day is priced as an ordinary weekday, without error
	assert.False(t, b.Details.ValidDate)
	assert.False(t, b.Details.IsSaturday || b.Details.IsSunday || b.Details.IsHoliday)
	assertAmount(t, "109.19", b.TotalEarnings)
}

func TestComputeDailyBreakdown_MalformedTimesAreNoActivity(t *testing.T) {
	entry := earnings.WorkEntry{
		Date:       tuesday,
		WorkStart1: "08:00",
		WorkEnd1:   "25:00",
		WorkStart2: "13:00",
		WorkEnd2:   "17:00",
	}

	b := compute(t, entry, earnings.Settings{})

	assertAmount(t, "4", b.Ordinary.Hours.Work)
	assertAmount(t, "65.64", b.TotalEarnings)
}

func TestComputeDailyBreakdown_UnknownCompletionIsNone(t *testing.T) {
	entry := officeDay(tuesday)
	entry.WorkEnd2 = "16:00"
	entry.DayCompletionType = "holiday_bank"

	b := compute(t, entry, earnings.Settings{})

	assert.Equal(t, earnings.CompletionNone, b.Details.CompletionType)
	assertAmount(t, "114.87", b.TotalEarnings)
}

func TestComputeDailyBreakdown_CustomCalendar(t *testing.T) {
	// GIVEN: A local patron saint day that is not a national holiday
	cal := generic.CompositeCalendar{
		generic.ItalianCalendar{},
		generic.HolidayList{{Date: generic.MustParseDate("2025-06-24"), Name: "San Giovanni", Recurring: true}},
	}
	entry := officeDay("2025-06-24")

	b, err := earnings.ComputeDailyBreakdown(&entry, &earnings.Settings{}, cal)
	require.NoError(t, err)

	// THEN: It is priced as a holiday
	assert.True(t, b.Details.IsHoliday)
	assertAmount(t, "170.664", b.TotalEarnings) // 8h x 16.41 x 1.30

	// AND: Without the custom calendar it is an ordinary Tuesday
	b, err = earnings.ComputeDailyBreakdown(&entry, &earnings.Settings{}, nil)
	require.NoError(t, err)
	assertAmount(t, "109.19", b.TotalEarnings)
}

func TestDailyBreakdown_CloneIsIndependent(t *testing.T) {
	entry := earnings.WorkEntry{Date: tuesday, IsStandbyDay: true}
	b := compute(t, entry, standbySettings())

	c := b.Clone()
	c.Standby.Interventions = 99

	assert.Equal(t, 0, b.Standby.Interventions)
	assert.Nil(t, (*earnings.DailyBreakdown)(nil).Clone())
}
