package earnings

import "github.com/warp/earnings-engine/generic"

// DayClass is the calendar classification of an entry's date.
type DayClass struct {
	Date       generic.TimePoint
	Valid      bool // false when the date could not be parsed
	IsSaturday bool
	IsSunday   bool
	IsHoliday  bool
}

// Classify parses date and classifies it against cal. Unparsable dates yield
// an invalid, non-special class instead of an error.
func Classify(date string, cal generic.HolidayCalendar) DayClass {
	tp, ok := generic.ParseDate(date)
	if !ok {
		return DayClass{}
	}
	return DayClass{
		Date:       tp,
		Valid:      true,
		IsSaturday: tp.IsSaturday(),
		IsSunday:   tp.IsSunday(),
		IsHoliday:  generic.IsHoliday(cal, tp),
	}
}

// IsSpecial reports Saturday, Sunday or public holiday.
func (c DayClass) IsSpecial() bool {
	return c.IsSaturday || c.IsSunday || c.IsHoliday
}

// IsFestive reports Sunday or public holiday: the days priced in the holiday
// standby bands and subject to travel allowance suppression.
func (c DayClass) IsFestive() bool {
	return c.IsSunday || c.IsHoliday
}

func (c DayClass) specialReason() string {
	switch {
	case c.IsHoliday:
		return "holiday"
	case c.IsSunday:
		return "sunday"
	case c.IsSaturday:
		return "saturday"
	}
	return ""
}
