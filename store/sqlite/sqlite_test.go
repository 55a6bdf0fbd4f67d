package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/earnings-engine/earnings"
	"github.com/warp/earnings-engine/generic"
	"github.com/warp/earnings-engine/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func officeDay(date string) earnings.WorkEntry {
	return earnings.WorkEntry{
		Date:       date,
		WorkStart1: "08:00",
		WorkEnd1:   "12:00",
		WorkStart2: "13:00",
		WorkEnd2:   "17:00",
	}
}

// =============================================================================
// ENTRIES
// =============================================================================

func TestStore_EntryLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	// GIVEN: An entry with a standby callout and a travel percent
	entry := officeDay("2025-03-04")
	entry.IsStandbyDay = true
	entry.Interventions = []earnings.Intervention{{WorkStart1: "22:00", WorkEnd1: "23:30"}}
	entry.TravelAllowancePercent = generic.Dec("0.5")
	entry.Notes = "cabinet swap"

	// WHEN: Saving and reading it back
	require.NoError(t, s.SaveEntry(ctx, entry))
	got, err := s.GetEntry(ctx, "2025-03-04")
	require.NoError(t, err)

	// THEN: Every field survives and an ID was assigned
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, entry.Interventions, got.Interventions)
	assert.Equal(t, "cabinet swap", got.Notes)
	assert.True(t, got.IsStandbyDay)
	require.NotNil(t, got.TravelAllowancePercent)
	assert.True(t, got.TravelAllowancePercent.Equal(generic.D("0.5")))

	// AND: Saving the date again keeps the ID
	entry.Notes = "updated"
	require.NoError(t, s.SaveEntry(ctx, entry))
	again, err := s.GetEntry(ctx, "2025-03-04")
	require.NoError(t, err)
	assert.Equal(t, got.ID, again.ID)
	assert.Equal(t, "updated", again.Notes)

	// AND: Deleting removes it
	require.NoError(t, s.DeleteEntry(ctx, "2025-03-04"))
	_, err = s.GetEntry(ctx, "2025-03-04")
	assert.ErrorIs(t, err, generic.ErrEntryNotFound)
	assert.ErrorIs(t, s.DeleteEntry(ctx, "2025-03-04"), generic.ErrEntryNotFound)
}

func TestStore_EntryDateValidation(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	assert.ErrorIs(t, s.SaveEntry(ctx, officeDay("2025-13-01")), generic.ErrInvalidDate)
	_, err := s.GetEntry(ctx, "yesterday")
	assert.ErrorIs(t, err, generic.ErrInvalidDate)
	assert.ErrorIs(t, s.DeleteEntry(ctx, ""), generic.ErrInvalidDate)
}

func TestStore_ListEntries(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	for _, d := range []string{"2025-03-10", "2025-02-28", "2025-03-01", "2025-03-31", "2025-04-01"} {
		require.NoError(t, s.SaveEntry(ctx, officeDay(d)))
	}

	entries, err := s.ListEntries(ctx, generic.MonthPeriod(2025, time.March))
	require.NoError(t, err)

	require.Len(t, entries, 3)
	assert.Equal(t, "2025-03-01", entries[0].Date)
	assert.Equal(t, "2025-03-10", entries[1].Date)
	assert.Equal(t, "2025-03-31", entries[2].Date)

	march := generic.MonthPeriod(2025, time.March)
	_, err = s.ListEntries(ctx, generic.Period{Start: march.End, End: march.Start})
	assert.ErrorIs(t, err, generic.ErrInvalidPeriod)
}

func TestStore_StoredMalformedEntryIsDecoded(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	// GIVEN: An entry the API would reject, written directly to the store
	entry := officeDay("2025-03-04")
	entry.WorkEnd1 = "25:00"
	require.NoError(t, s.SaveEntry(ctx, entry))

	// WHEN: Aggregating from the store
	summary, err := earnings.AggregateStored(ctx, s, generic.MonthPeriod(2025, time.March), earnings.AggregateOptions{})

	// THEN: The bad segment counts as no activity
	require.NoError(t, err)
	require.Len(t, summary.Days, 1)
	assert.True(t, summary.TotalEarnings.Equal(generic.D("65.64")))
}

// =============================================================================
// SETTINGS
// =============================================================================

func TestStore_Settings(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	// GIVEN: A fresh database
	settings, err := s.GetSettings(ctx)
	require.NoError(t, err)
	version, err := s.SettingsVersion(ctx)
	require.NoError(t, err)

	// THEN: Settings are empty (all defaults) and never saved
	assert.Equal(t, &earnings.Settings{}, settings)
	assert.Equal(t, 0, version)

	// WHEN: Saving twice
	require.NoError(t, s.SaveSettings(ctx, earnings.Settings{
		Contract:           earnings.Contract{HourlyRate: generic.Dec("18")},
		TravelHoursSetting: earnings.ExcessAsOvertime,
	}))
	require.NoError(t, s.SaveSettings(ctx, earnings.Settings{
		Contract: earnings.Contract{HourlyRate: generic.Dec("19")},
		Standby:  earnings.StandbySettings{NightStart: "21:00"},
	}))

	// THEN: The last document wins and the version counts saves
	settings, err = s.GetSettings(ctx)
	require.NoError(t, err)
	require.NotNil(t, settings.Contract.HourlyRate)
	assert.True(t, settings.Contract.HourlyRate.Equal(generic.D("19")))
	assert.Nil(t, settings.Contract.DailyRate)
	assert.Equal(t, earnings.TravelHoursSetting(""), settings.TravelHoursSetting)
	assert.Equal(t, "21:00", settings.Standby.NightStart)

	version, err = s.SettingsVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, version)
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func TestStore_Holidays(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	// GIVEN: A recurring patron saint day and a one-off closure
	patron, err := s.SaveHoliday(ctx, generic.Holiday{
		Date:      generic.MustParseDate("2024-06-24"),
		Name:      "San Giovanni",
		Recurring: true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, patron.ID)

	closure, err := s.SaveHoliday(ctx, generic.Holiday{
		Date: generic.MustParseDate("2025-08-14"),
		Name: "Plant closure",
	})
	require.NoError(t, err)

	// THEN: Recurring holidays match every year, one-offs only theirs
	cal, err := s.Calendar(ctx)
	require.NoError(t, err)
	assert.True(t, cal.IsHoliday(generic.MustParseDate("2025-06-24")))
	assert.True(t, cal.IsHoliday(generic.MustParseDate("2030-06-24")))
	assert.True(t, cal.IsHoliday(generic.MustParseDate("2025-08-14")))
	assert.False(t, cal.IsHoliday(generic.MustParseDate("2026-08-14")))
	assert.False(t, cal.IsHoliday(generic.TimePoint{}))

	custom, err := s.GetAllHolidays(ctx)
	require.NoError(t, err)
	hols := custom.GetHolidays(2025)
	require.Len(t, hols, 2)
	assert.Equal(t, "2025-06-24", hols[0].Date.String())

	// AND: Saving the same date and name again keeps one row and its ID
	again, err := s.SaveHoliday(ctx, generic.Holiday{Date: generic.MustParseDate("2024-06-24"), Name: "San Giovanni", Recurring: true})
	require.NoError(t, err)
	assert.Equal(t, patron.ID, again.ID)
	all, err := s.GetAllHolidays(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// AND: The calendar snapshot also includes national holidays
	assert.True(t, cal.IsHoliday(generic.MustParseDate("2025-12-25")))

	// AND: Deleting works once
	require.NoError(t, s.DeleteHoliday(ctx, closure.ID))
	assert.ErrorIs(t, s.DeleteHoliday(ctx, closure.ID), generic.ErrHolidayNotFound)
	cal, err = s.Calendar(ctx)
	require.NoError(t, err)
	assert.False(t, cal.IsHoliday(generic.MustParseDate("2025-08-14")))
}

func TestStore_HolidayValidation(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.SaveHoliday(ctx, generic.Holiday{Name: "No date"})
	assert.ErrorIs(t, err, generic.ErrInvalidDate)

	_, err = s.SaveHoliday(ctx, generic.Holiday{Date: generic.MustParseDate("2025-06-24"), Name: "  "})
	assert.ErrorIs(t, err, generic.ErrInvalidArgument)
}

// =============================================================================
// MONTH CLOSINGS
// =============================================================================

func TestStore_MonthClosings(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	feb := generic.MonthPeriod(2025, time.February)
	mar := generic.MonthPeriod(2025, time.March)

	none, err := s.GetMonthClosing(ctx, feb)
	require.NoError(t, err)
	assert.Nil(t, none)

	// GIVEN: A running closing for February
	started := time.Date(2025, 3, 1, 0, 5, 0, 0, time.UTC)
	require.NoError(t, s.SaveMonthClosing(ctx, sqlite.MonthClosing{
		ID:          "feb",
		PeriodStart: feb.Start,
		PeriodEnd:   feb.End,
		Status:      sqlite.ClosingRunning,
		StartedAt:   &started,
	}))

	// WHEN: It completes under a new ID
	completed := started.Add(time.Minute)
	require.NoError(t, s.SaveMonthClosing(ctx, sqlite.MonthClosing{
		ID:            "ignored",
		PeriodStart:   feb.Start,
		PeriodEnd:     feb.End,
		Status:        sqlite.ClosingCompleted,
		TotalEarnings: "€ 2.183,80",
		SummaryJSON:   `{"total_earnings":2183.8}`,
		StartedAt:     &started,
		CompletedAt:   &completed,
	}))

	// THEN: The period row is updated in place
	got, err := s.GetMonthClosing(ctx, feb)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "feb", got.ID)
	assert.Equal(t, sqlite.ClosingCompleted, got.Status)
	assert.Equal(t, "€ 2.183,80", got.TotalEarnings)
	assert.Empty(t, got.Error)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, completed.Equal(*got.CompletedAt))

	// AND: Listing puts the most recent period first
	require.NoError(t, s.SaveMonthClosing(ctx, sqlite.MonthClosing{
		ID: "mar", PeriodStart: mar.Start, PeriodEnd: mar.End, Status: sqlite.ClosingFailed, Error: "boom",
	}))
	list, err := s.ListMonthClosings(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "mar", list[0].ID)
	assert.Equal(t, "boom", list[0].Error)
	assert.Nil(t, list[0].StartedAt)
}

func TestStore_Reset(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.SaveEntry(ctx, officeDay("2025-03-04")))
	require.NoError(t, s.SaveSettings(ctx, earnings.Settings{}))
	_, err := s.SaveHoliday(ctx, generic.Holiday{Date: generic.MustParseDate("2025-06-24"), Name: "San Giovanni"})
	require.NoError(t, err)

	require.NoError(t, s.Reset(ctx))

	_, err = s.GetEntry(ctx, "2025-03-04")
	assert.ErrorIs(t, err, generic.ErrEntryNotFound)
	version, err := s.SettingsVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, version)
	custom, err := s.GetAllHolidays(ctx)
	require.NoError(t, err)
	assert.Empty(t, custom)
	require.NoError(t, s.Ping(ctx))
}
