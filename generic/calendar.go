package generic

import (
	"sort"
	"time"
)

// =============================================================================
// HOLIDAY CALENDAR - Public holidays for day classification
// =============================================================================

// Holiday represents a day that is paid as a public holiday.
type Holiday struct {
	ID        string
	Date      TimePoint // The holiday date
	Name      string    // e.g., "Ferragosto", "Santo Patrono"
	Recurring bool      // true = same month/day every year
}

// HolidayCalendar provides holiday lookup functionality.
// Implementations must be pure for a given date.
type HolidayCalendar interface {
	// IsHoliday checks if a date is a public holiday.
	IsHoliday(date TimePoint) bool

	// GetHolidays returns all holidays in a given year, ordered by date.
	GetHolidays(year int) []Holiday
}

// NoHolidays is a calendar without holidays, for tests and non-Italian setups.
type NoHolidays struct{}

func (NoHolidays) IsHoliday(TimePoint) bool   { return false }
func (NoHolidays) GetHolidays(int) []Holiday { return nil }

// =============================================================================
// ITALIAN CALENDAR - National holidays including Easter-derived dates
// =============================================================================

type fixedHoliday struct {
	month time.Month
	day   int
	name  string
}

var italianFixedHolidays = []fixedHoliday{
	{time.January, 1, "Capodanno"},
	{time.January, 6, "Epifania"},
	{time.April, 25, "Festa della Liberazione"},
	{time.May, 1, "Festa del Lavoro"},
	{time.June, 2, "Festa della Repubblica"},
	{time.August, 15, "Ferragosto"},
	{time.November, 1, "Ognissanti"},
	{time.December, 8, "Immacolata Concezione"},
	{time.December, 25, "Natale"},
	{time.December, 26, "Santo Stefano"},
}

// ItalianCalendar implements HolidayCalendar for the Italian national calendar.
type ItalianCalendar struct{}

func (ItalianCalendar) IsHoliday(date TimePoint) bool {
	if date.IsZero() {
		return false
	}
	for _, h := range italianFixedHolidays {
		if date.Month() == h.month && date.Day() == h.day {
			return true
		}
	}
	easter := EasterSunday(date.Year())
	return date.Equal(easter) || date.Equal(easter.AddDays(1))
}

func (ItalianCalendar) GetHolidays(year int) []Holiday {
	holidays := make([]Holiday, 0, len(italianFixedHolidays)+2)
	for _, h := range italianFixedHolidays {
		holidays = append(holidays, Holiday{
			ID:        "it-" + NewTimePoint(year, h.month, h.day).Time.Format("01-02"),
			Date:      NewTimePoint(year, h.month, h.day),
			Name:      h.name,
			Recurring: true,
		})
	}
	easter := EasterSunday(year)
	holidays = append(holidays,
		Holiday{ID: "it-easter", Date: easter, Name: "Pasqua"},
		Holiday{ID: "it-easter-monday", Date: easter.AddDays(1), Name: "Lunedì dell'Angelo"},
	)
	sortHolidays(holidays)
	return holidays
}

// EasterSunday computes Gregorian Easter with the anonymous (Meeus/Jones/Butcher)
// algorithm.
func EasterSunday(year int) TimePoint {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1
	return NewTimePoint(year, time.Month(month), day)
}

// =============================================================================
// COMPOSITE CALENDAR - National table plus locally configured holidays
// =============================================================================

// CompositeCalendar reports a holiday when any of its calendars does.
type CompositeCalendar []HolidayCalendar

func (c CompositeCalendar) IsHoliday(date TimePoint) bool {
	for _, cal := range c {
		if cal != nil && cal.IsHoliday(date) {
			return true
		}
	}
	return false
}

func (c CompositeCalendar) GetHolidays(year int) []Holiday {
	var all []Holiday
	seen := make(map[string]bool)
	for _, cal := range c {
		if cal == nil {
			continue
		}
		for _, h := range cal.GetHolidays(year) {
			key := h.Date.String()
			if seen[key] {
				continue
			}
			seen[key] = true
			all = append(all, h)
		}
	}
	sortHolidays(all)
	return all
}

// HolidayList is an in-memory calendar of configured holidays. Recurring
// entries match the same month and day in every year.
type HolidayList []Holiday

func (l HolidayList) IsHoliday(date TimePoint) bool {
	if date.IsZero() {
		return false
	}
	for _, h := range l {
		if h.matches(date) {
			return true
		}
	}
	return false
}

func (l HolidayList) GetHolidays(year int) []Holiday {
	var out []Holiday
	for _, h := range l {
		switch {
		case h.Recurring:
			h.Date = NewTimePoint(year, h.Date.Month(), h.Date.Day())
		case h.Date.Year() != year:
			continue
		}
		out = append(out, h)
	}
	sortHolidays(out)
	return out
}

func (h Holiday) matches(date TimePoint) bool {
	if h.Recurring {
		return h.Date.Month() == date.Month() && h.Date.Day() == date.Day()
	}
	return h.Date.Equal(date)
}

func sortHolidays(hs []Holiday) {
	sort.SliceStable(hs, func(i, j int) bool { return hs[i].Date.Before(hs[j].Date) })
}

// =============================================================================
// DAY CLASSIFICATION
// =============================================================================

// IsHoliday reports whether date is a holiday in cal. A nil calendar has none.
func IsHoliday(cal HolidayCalendar, date TimePoint) bool {
	if cal == nil || date.IsZero() {
		return false
	}
	return cal.IsHoliday(date)
}

// IsSpecialDay reports Saturday, Sunday or public holiday.
func IsSpecialDay(cal HolidayCalendar, date TimePoint) bool {
	if date.IsZero() {
		return false
	}
	return date.IsSaturday() || date.IsSunday() || IsHoliday(cal, date)
}
