package earnings

import (
	"github.com/shopspring/decimal"

	"github.com/warp/earnings-engine/generic"
)

// =============================================================================
// DAY RESULT - Tagged union of the ordinary-day branches
// =============================================================================

type DayKind string

const (
	DayKindLeave   DayKind = "leave"
	DayKindSpecial DayKind = "special"
	DayKindFull    DayKind = "full"
	DayKindPartial DayKind = "partial"
)

// DayResult is one of LeaveDay, SpecialDay, FullDay or PartialDay.
// Presentation code switches on the concrete type.
type DayResult interface {
	Kind() DayKind
	isDayResult()
}

// LeaveDay: vacation, leave or sickness. Nothing is paid as ordinary work.
type LeaveDay struct {
	Type CompletionType
}

// SpecialDay: Saturday, Sunday or holiday. Every hour is paid at one multiplier.
type SpecialDay struct {
	Reason     string // saturday, sunday, holiday
	Multiplier decimal.Decimal
}

// FullDay: at least 8 hours; the daily rate plus excess per policy.
type FullDay struct {
	ExcessMinutes int
	ExcessPolicy  TravelHoursSetting
}

// PartialDay: under 8 hours; prorated, or completed to the daily rate.
type PartialDay struct {
	MissingMinutes int
	Completion     CompletionType
	Completed      bool
}

func (LeaveDay) Kind() DayKind   { return DayKindLeave }
func (SpecialDay) Kind() DayKind { return DayKindSpecial }
func (FullDay) Kind() DayKind    { return DayKindFull }
func (PartialDay) Kind() DayKind { return DayKindPartial }

func (LeaveDay) isDayResult()   {}
func (SpecialDay) isDayResult() {}
func (FullDay) isDayResult()    {}
func (PartialDay) isDayResult() {}

// =============================================================================
// ORDINARY BREAKDOWN
// =============================================================================

// OrdinaryHours are hour quantities by category.
type OrdinaryHours struct {
	Work                 decimal.Decimal
	Travel               decimal.Decimal
	Standard             decimal.Decimal // hours inside the 8-hour day
	Excess               decimal.Decimal // hours beyond 8, whatever the policy
	TravelExcess         decimal.Decimal
	OvertimeDay          decimal.Decimal
	OvertimeNightUntil22 decimal.Decimal
	OvertimeNightAfter22 decimal.Decimal
	SpecialDay           decimal.Decimal
	NightUntil22         decimal.Decimal // ordinary night work, 20-22
	NightAfter22         decimal.Decimal // ordinary night work, 22-06
}

// OrdinaryEarnings are amounts by category.
type OrdinaryEarnings struct {
	Daily                decimal.Decimal // flat daily rate
	Prorated             decimal.Decimal // partial day at the hourly rate
	TravelExcess         decimal.Decimal
	OvertimeDay          decimal.Decimal
	OvertimeNightUntil22 decimal.Decimal
	OvertimeNightAfter22 decimal.Decimal
	SpecialDay           decimal.Decimal
	NightBonus           decimal.Decimal
}

// Total sums every category.
func (e OrdinaryEarnings) Total() decimal.Decimal {
	return generic.SumMoney(e.Daily, e.Prorated, e.TravelExcess, e.OvertimeDay,
		e.OvertimeNightUntil22, e.OvertimeNightAfter22, e.SpecialDay, e.NightBonus)
}

// Overtime sums the three overtime bands.
func (e OrdinaryEarnings) Overtime() decimal.Decimal {
	return generic.SumMoney(e.OvertimeDay, e.OvertimeNightUntil22, e.OvertimeNightAfter22)
}

func (h OrdinaryHours) Add(o OrdinaryHours) OrdinaryHours {
	return OrdinaryHours{
		Work:                 h.Work.Add(o.Work),
		Travel:               h.Travel.Add(o.Travel),
		Standard:             h.Standard.Add(o.Standard),
		Excess:               h.Excess.Add(o.Excess),
		TravelExcess:         h.TravelExcess.Add(o.TravelExcess),
		OvertimeDay:          h.OvertimeDay.Add(o.OvertimeDay),
		OvertimeNightUntil22: h.OvertimeNightUntil22.Add(o.OvertimeNightUntil22),
		OvertimeNightAfter22: h.OvertimeNightAfter22.Add(o.OvertimeNightAfter22),
		SpecialDay:           h.SpecialDay.Add(o.SpecialDay),
		NightUntil22:         h.NightUntil22.Add(o.NightUntil22),
		NightAfter22:         h.NightAfter22.Add(o.NightAfter22),
	}
}

func (e OrdinaryEarnings) Add(o OrdinaryEarnings) OrdinaryEarnings {
	return OrdinaryEarnings{
		Daily:                e.Daily.Add(o.Daily),
		Prorated:             e.Prorated.Add(o.Prorated),
		TravelExcess:         e.TravelExcess.Add(o.TravelExcess),
		OvertimeDay:          e.OvertimeDay.Add(o.OvertimeDay),
		OvertimeNightUntil22: e.OvertimeNightUntil22.Add(o.OvertimeNightUntil22),
		OvertimeNightAfter22: e.OvertimeNightAfter22.Add(o.OvertimeNightAfter22),
		SpecialDay:           e.SpecialDay.Add(o.SpecialDay),
		NightBonus:           e.NightBonus.Add(o.NightBonus),
	}
}

// OrdinaryBreakdown is the ordinary (non-standby) pay of a day.
type OrdinaryBreakdown struct {
	Result   DayResult
	Hours    OrdinaryHours
	Earnings OrdinaryEarnings
	Total    decimal.Decimal
}

// =============================================================================
// ORDINARY EARNINGS CALCULATOR
// =============================================================================

// ComputeOrdinary prices the day's work and travel. Branches, first match wins:
//
//  1. leave completion (vacation/leave/sickness): nothing paid
//  2. special day: all hours at baseRate x special multiplier
//  3. >= 8h: daily rate, excess by TravelHoursSetting
//  4. < 8h: hourly proration, or daily rate when a completion is set
//
// Ordinary night minutes earn a bonus differential on branches 3 and 4 unless
// overtime was paid the same day.
func ComputeOrdinary(entry *WorkEntry, cls DayClass, fs FullSettings) OrdinaryBreakdown {
	workMin := entry.WorkMinutes()
	travelMin := entry.TravelMinutes()
	totalMin := workMin + travelMin

	out := OrdinaryBreakdown{
		Hours: OrdinaryHours{
			Work:   generic.ToHours(workMin),
			Travel: generic.ToHours(travelMin),
		},
	}

	completion := entry.DayCompletionType
	if !completion.Valid() || completion == "" {
		completion = CompletionNone
	}

	switch {
	case completion.IsLeave():
		out.Result = LeaveDay{Type: completion}
		out.Total = decimal.Zero
		return out

	case cls.IsSpecial():
		mult := fs.SpecialDayMultiplier(cls)
		out.Result = SpecialDay{Reason: cls.specialReason(), Multiplier: mult}
		out.Hours.SpecialDay = generic.ToHours(totalMin)
		out.Earnings.SpecialDay = generic.PayFor(totalMin, fs.BaseRate.Mul(mult))
		out.Total = out.Earnings.Total()
		return out

	case totalMin >= StandardDayMinutes:
		excess := totalMin - StandardDayMinutes
		out.Result = FullDay{ExcessMinutes: excess, ExcessPolicy: fs.TravelHoursSetting}
		out.Hours.Standard = generic.ToHours(StandardDayMinutes)
		out.Hours.Excess = generic.ToHours(excess)
		out.Earnings.Daily = fs.DailyRate
		overtime := priceExcess(entry, excess, fs, &out)
		if !overtime {
			applyNightBonus(entry, excess, fs, &out)
		}

	default:
		partial := PartialDay{
			MissingMinutes: StandardDayMinutes - totalMin,
			Completion:     completion,
		}
		out.Hours.Standard = generic.ToHours(totalMin)
		if completion.IsSet() {
			partial.Completed = true
			out.Earnings.Daily = fs.DailyRate
		} else {
			out.Earnings.Prorated = generic.PayFor(totalMin, fs.BaseRate)
		}
		out.Result = partial
		applyNightBonus(entry, 0, fs, &out)
	}

	out.Total = out.Earnings.Total()
	return out
}

// priceExcess pays the minutes beyond 8 hours. It reports whether overtime
// was paid, which suppresses the night-ordinary bonus.
func priceExcess(entry *WorkEntry, excess int, fs FullSettings, out *OrdinaryBreakdown) bool {
	if excess <= 0 {
		return false
	}
	switch fs.TravelHoursSetting {
	case ExcessAsTravel:
		out.Hours.TravelExcess = generic.ToHours(excess)
		out.Earnings.TravelExcess = generic.PayFor(excess, fs.BaseRate.Mul(fs.TravelCompensationRate))
		return false

	case ExcessAsOvertime:
		var day, until22, after22 int
		walkDay(entry.segments(), func(idx, minute int, _ SegmentKind) {
			if idx < StandardDayMinutes {
				return
			}
			_, night := fs.Multipliers.eveningMultiplier(minute)
			switch {
			case !night:
				day++
			case minute >= eveningStartMinute && minute < lateNightMinute:
				until22++
			default:
				after22++
			}
		})
		m := fs.Multipliers
		out.Hours.OvertimeDay = generic.ToHours(day)
		out.Hours.OvertimeNightUntil22 = generic.ToHours(until22)
		out.Hours.OvertimeNightAfter22 = generic.ToHours(after22)
		out.Earnings.OvertimeDay = generic.PayFor(day, fs.BaseRate.Mul(m.Day))
		out.Earnings.OvertimeNightUntil22 = generic.PayFor(until22, fs.BaseRate.Mul(m.NightUntil22))
		out.Earnings.OvertimeNightAfter22 = generic.PayFor(after22, fs.BaseRate.Mul(m.NightAfter22))
		return true
	}
	// ExcessUnpaid: hours are reported, nothing is paid.
	return false
}

// applyNightBonus adds (bonusRate - baseRate) for ordinary work minutes at
// night. Minutes beyond the standard day (the last `excess` minutes) are not
// ordinary and are skipped.
func applyNightBonus(entry *WorkEntry, excess int, fs FullSettings, out *OrdinaryBreakdown) {
	var until22, after22 int
	walkDay(entry.segments(), func(idx, minute int, kind SegmentKind) {
		if kind != SegmentWork || (excess > 0 && idx >= StandardDayMinutes) {
			return
		}
		if entry.NightShift {
			after22++
			return
		}
		if _, night := fs.Multipliers.eveningMultiplier(minute); !night {
			return
		}
		if minute >= eveningStartMinute && minute < lateNightMinute {
			until22++
		} else {
			after22++
		}
	})
	if until22 == 0 && after22 == 0 {
		return
	}
	m := fs.Multipliers
	out.Hours.NightUntil22 = generic.ToHours(until22)
	out.Hours.NightAfter22 = generic.ToHours(after22)
	out.Earnings.NightBonus = generic.SumMoney(
		generic.PayFor(until22, fs.BaseRate.Mul(m.NightUntil22.Sub(generic.One))),
		generic.PayFor(after22, fs.BaseRate.Mul(m.NightAfter22.Sub(generic.One))),
	)
}

// walkDay visits every minute of the segments in chronological order. idx is
// the running minute index across the whole day, minute the clock minute.
func walkDay(segs []timedSegment, fn func(idx, minute int, kind SegmentKind)) {
	idx := 0
	for _, seg := range segs {
		for i := 0; i < seg.Duration; i++ {
			fn(idx, seg.MinuteAt(i), seg.Kind)
			idx++
		}
	}
}
