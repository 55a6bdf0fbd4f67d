package generic

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CLOCK TIME - "HH:MM" arithmetic on minute offsets within a day
// =============================================================================

const (
	MinutesPerHour = 60
	MinutesPerDay  = 24 * MinutesPerHour
)

var minutesPerHour = decimal.NewFromInt(MinutesPerHour)

// ToMinutes converts "HH:MM" to minutes since midnight.
// Empty or malformed input reports false: a missing time is "no activity".
func ToMinutes(hhmm string) (int, bool) {
	s := strings.TrimSpace(hhmm)
	if s == "" {
		return 0, false
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	h, ok := clockField(parts[0], 1)
	if !ok || h > 24 {
		return 0, false
	}
	m, ok := clockField(parts[1], 2)
	if !ok || m > 59 {
		return 0, false
	}
	if len(parts) == 3 {
		if sec, ok := clockField(parts[2], 2); !ok || sec > 59 || (h == 24 && sec != 0) {
			return 0, false
		}
	}
	if h == 24 && m != 0 {
		return 0, false
	}
	return (h*MinutesPerHour + m) % MinutesPerDay, true
}

// clockField parses one or two ASCII digits, at least minLen of them.
func clockField(s string, minLen int) (int, bool) {
	if len(s) < minLen || len(s) > 2 {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	return n, true
}

// DurationMinutes returns end-start in minutes. An end before its start wraps
// past midnight (+24h). Either endpoint missing yields 0.
func DurationMinutes(start, end string) int {
	s, ok := ToMinutes(start)
	if !ok {
		return 0
	}
	e, ok := ToMinutes(end)
	if !ok {
		return 0
	}
	d := e - s
	if d < 0 {
		d += MinutesPerDay
	}
	return d
}

// ToHours converts minutes to fractional hours.
func ToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(minutesPerHour)
}

// PayFor prices minutes at an hourly rate. Multiplying before dividing keeps
// whole-minute amounts exact.
func PayFor(minutes int, hourlyRate decimal.Decimal) decimal.Decimal {
	if minutes == 0 {
		return decimal.Zero
	}
	return hourlyRate.Mul(decimal.NewFromInt(int64(minutes))).Div(minutesPerHour)
}

// FormatMinutes renders a minute offset as "HH:MM", wrapping at midnight.
func FormatMinutes(minutes int) string {
	m := ((minutes % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return fmt.Sprintf("%02d:%02d", m/MinutesPerHour, m%MinutesPerHour)
}

// Segment is a clock interval read from a start/end pair.
type Segment struct {
	Start    int // minutes since midnight
	Duration int // minutes, may cross midnight
}

// NewSegment builds a segment from a start/end pair; ok is false when the pair
// is incomplete or has zero length.
func NewSegment(start, end string) (Segment, bool) {
	s, ok := ToMinutes(start)
	if !ok {
		return Segment{}, false
	}
	d := DurationMinutes(start, end)
	if d == 0 {
		return Segment{}, false
	}
	return Segment{Start: s, Duration: d}, true
}

// MinuteAt returns the clock minute of the i-th minute of the segment.
func (s Segment) MinuteAt(i int) int {
	return (s.Start + i) % MinutesPerDay
}
