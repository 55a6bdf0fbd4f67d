package earnings

import (
	"github.com/shopspring/decimal"

	"github.com/warp/earnings-engine/generic"
)

// Band is the time-of-day/day-type class of a standby minute.
type Band string

const (
	BandOrdinary     Band = "ordinary"
	BandNight        Band = "night"
	BandHoliday      Band = "holiday"
	BandNightHoliday Band = "night_holiday"
)

// Bands lists every band in reporting order.
var Bands = []Band{BandOrdinary, BandNight, BandHoliday, BandNightHoliday}

// BandMinutes counts minutes per band.
type BandMinutes struct {
	Ordinary     int
	Night        int
	Holiday      int
	NightHoliday int
}

func (b *BandMinutes) inc(band Band) {
	switch band {
	case BandOrdinary:
		b.Ordinary++
	case BandNight:
		b.Night++
	case BandHoliday:
		b.Holiday++
	case BandNightHoliday:
		b.NightHoliday++
	}
}

// Get returns the count of a band.
func (b BandMinutes) Get(band Band) int {
	switch band {
	case BandNight:
		return b.Night
	case BandHoliday:
		return b.Holiday
	case BandNightHoliday:
		return b.NightHoliday
	}
	return b.Ordinary
}

func (b BandMinutes) Total() int {
	return b.Ordinary + b.Night + b.Holiday + b.NightHoliday
}

// BandValues holds a decimal per band (hours or euro).
type BandValues struct {
	Ordinary     decimal.Decimal
	Night        decimal.Decimal
	Holiday      decimal.Decimal
	NightHoliday decimal.Decimal
}

// Get returns the value of a band.
func (b BandValues) Get(band Band) decimal.Decimal {
	switch band {
	case BandNight:
		return b.Night
	case BandHoliday:
		return b.Holiday
	case BandNightHoliday:
		return b.NightHoliday
	}
	return b.Ordinary
}

func (b *BandValues) set(band Band, v decimal.Decimal) {
	switch band {
	case BandOrdinary:
		b.Ordinary = v
	case BandNight:
		b.Night = v
	case BandHoliday:
		b.Holiday = v
	case BandNightHoliday:
		b.NightHoliday = v
	}
}

func (b BandValues) Total() decimal.Decimal {
	return generic.SumMoney(b.Ordinary, b.Night, b.Holiday, b.NightHoliday)
}

func (b BandValues) Add(o BandValues) BandValues {
	return BandValues{
		Ordinary:     b.Ordinary.Add(o.Ordinary),
		Night:        b.Night.Add(o.Night),
		Holiday:      b.Holiday.Add(o.Holiday),
		NightHoliday: b.NightHoliday.Add(o.NightHoliday),
	}
}

// StandbyBreakdown is the on-call pay of a standby day.
type StandbyBreakdown struct {
	Interventions  int
	WorkMinutes    BandMinutes
	TravelMinutes  BandMinutes
	WorkHours      BandValues
	TravelHours    BandValues
	WorkEarnings   BandValues
	TravelEarnings BandValues
	DailyIndemnity decimal.Decimal
	TotalEarnings  decimal.Decimal
}

// Multiplier returns the rate multiplier of a band.
func (m Multipliers) Multiplier(band Band) decimal.Decimal {
	switch band {
	case BandNight:
		return m.NightAfter22
	case BandHoliday:
		return m.Holiday
	case BandNightHoliday:
		return m.NightHoliday
	}
	return m.Day
}

// classifyMinute puts a clock minute into exactly one band.
func classifyMinute(minute int, festive bool, sb ResolvedStandby) Band {
	night := sb.isNight(minute)
	switch {
	case night && festive:
		return BandNightHoliday
	case festive:
		return BandHoliday
	case night:
		return BandNight
	}
	return BandOrdinary
}

// ComputeStandby prices the interventions of a standby day minute by minute.
// It returns nil when the entry is not a standby day and a zero breakdown when
// the date cannot be parsed.
//
// Every segment is walked one minute at a time (modulo 1440 across midnight),
// so a callout from 21:50 to 22:10 yields 10 ordinary and 10 night minutes.
// Cost is O(total segment minutes), at most 1439 per segment.
func ComputeStandby(entry *WorkEntry, cls DayClass, fs FullSettings) *StandbyBreakdown {
	if !entry.IsStandbyDay {
		return nil
	}
	out := &StandbyBreakdown{}
	if !cls.Valid {
		return out
	}

	festive := cls.IsFestive()
	for i := range entry.Interventions {
		segs := entry.Interventions[i].segments()
		if len(segs) == 0 {
			continue
		}
		out.Interventions++
		for _, seg := range segs {
			counter := &out.WorkMinutes
			if seg.Kind == SegmentTravel {
				counter = &out.TravelMinutes
			}
			for j := 0; j < seg.Duration; j++ {
				counter.inc(classifyMinute(seg.MinuteAt(j), festive, fs.Standby))
			}
		}
	}

	workRate := fs.BaseRate
	travelRate := fs.BaseRate.Mul(fs.TravelCompensationRate)
	for _, band := range Bands {
		mult := fs.Multipliers.Multiplier(band)
		travelMult := generic.One
		if fs.Standby.TravelWithBonus {
			travelMult = mult
		}
		out.WorkHours.set(band, generic.ToHours(out.WorkMinutes.Get(band)))
		out.TravelHours.set(band, generic.ToHours(out.TravelMinutes.Get(band)))
		out.WorkEarnings.set(band, generic.PayFor(out.WorkMinutes.Get(band), workRate.Mul(mult)))
		out.TravelEarnings.set(band, generic.PayFor(out.TravelMinutes.Get(band), travelRate.Mul(travelMult)))
	}

	out.DailyIndemnity = fs.Standby.DailyAllowance
	if festive {
		out.DailyIndemnity = fs.Standby.SpecialDayAllowance
	}
	out.TotalEarnings = generic.SumMoney(out.WorkEarnings.Total(), out.TravelEarnings.Total(), out.DailyIndemnity)
	return out
}
