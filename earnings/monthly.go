package earnings

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/warp/earnings-engine/generic"
)

// =============================================================================
// MONTHLY AGGREGATOR - Additive sum of daily breakdowns
// =============================================================================

// StandbyTotals sums standby breakdowns.
type StandbyTotals struct {
	Days           int
	Interventions  int
	WorkHours      BandValues
	TravelHours    BandValues
	WorkEarnings   BandValues
	TravelEarnings BandValues
	Indemnity      decimal.Decimal
	Total          decimal.Decimal
}

// SkippedEntry records an entry left out of the totals.
type SkippedEntry struct {
	Date  string
	Error string
}

// DayCounts counts days by ordinary result kind.
type DayCounts struct {
	Worked  int // days with any ordinary hours
	Full    int
	Partial int
	Special int
	Leave   int
	Standby int
}

// MonthlySummary is the sum of the daily breakdowns of a period.
type MonthlySummary struct {
	Period        generic.Period
	Days          []*DailyBreakdown // ordered by date
	Counts        DayCounts
	Hours         OrdinaryHours
	Earnings      OrdinaryEarnings
	OrdinaryTotal decimal.Decimal
	Standby       StandbyTotals
	Allowances    Allowances
	// TotalEarnings excludes meal reimbursement, like the daily total.
	TotalEarnings decimal.Decimal
	Skipped       []SkippedEntry
}

// AggregateOptions configure Aggregate.
type AggregateOptions struct {
	Calendar    generic.HolidayCalendar // nil: Italian calendar
	Logger      *zap.Logger             // nil: no logging
	Concurrency int                     // <= 0: 4
}

// Aggregate computes every entry inside period and sums the results. A failing
// entry is skipped and logged; it never disturbs the other days. Only a nil
// settings profile or a cancelled context fail the whole call.
func Aggregate(ctx context.Context, period generic.Period, entries []*WorkEntry, settings *Settings, opts AggregateOptions) (*MonthlySummary, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	calc, err := NewCalculator(settings, opts.Calendar)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = 4
	}

	results := make([]*DailyBreakdown, len(entries))
	failures := make([]error, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range entries {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], failures[i] = computeIsolated(calc, entries[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &MonthlySummary{Period: period}
	for i, entry := range entries {
		if failures[i] != nil {
			date := ""
			if entry != nil {
				date = entry.Date
			}
			logger.Warn("skipping work entry", zap.String("date", date), zap.Error(failures[i]))
			summary.Skipped = append(summary.Skipped, SkippedEntry{Date: date, Error: failures[i].Error()})
			continue
		}
		tp, ok := generic.ParseDate(entries[i].Date)
		if ok && !period.Contains(tp) {
			continue
		}
		summary.Days = append(summary.Days, results[i])
	}

	sort.SliceStable(summary.Days, func(a, b int) bool { return summary.Days[a].Date < summary.Days[b].Date })
	for _, day := range summary.Days {
		summary.add(day)
	}
	logger.Debug("aggregated period",
		zap.String("period", period.String()),
		zap.Int("days", len(summary.Days)),
		zap.Int("skipped", len(summary.Skipped)),
		zap.String("total", summary.TotalEarnings.StringFixed(2)),
	)
	return summary, nil
}

// computeIsolated turns a panic in one entry into an error for that entry.
func computeIsolated(calc *Calculator, entry *WorkEntry) (b *DailyBreakdown, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, err = nil, fmt.Errorf("%w: panic computing entry: %v", generic.ErrInvalidArgument, r)
		}
	}()
	return calc.Compute(entry)
}

func (s *MonthlySummary) add(day *DailyBreakdown) {
	o := day.Ordinary
	s.Hours = s.Hours.Add(o.Hours)
	s.Earnings = s.Earnings.Add(o.Earnings)
	s.OrdinaryTotal = s.OrdinaryTotal.Add(o.Total)
	s.Allowances = s.Allowances.Add(day.Allowances)
	s.TotalEarnings = s.TotalEarnings.Add(day.TotalEarnings)

	if o.Hours.Work.IsPositive() || o.Hours.Travel.IsPositive() {
		s.Counts.Worked++
	}
	switch o.Result.(type) {
	case FullDay:
		s.Counts.Full++
	case PartialDay:
		s.Counts.Partial++
	case SpecialDay:
		s.Counts.Special++
	case LeaveDay:
		s.Counts.Leave++
	}

	if sb := day.Standby; sb != nil {
		s.Counts.Standby++
		st := &s.Standby
		st.Days++
		st.Interventions += sb.Interventions
		st.WorkHours = st.WorkHours.Add(sb.WorkHours)
		st.TravelHours = st.TravelHours.Add(sb.TravelHours)
		st.WorkEarnings = st.WorkEarnings.Add(sb.WorkEarnings)
		st.TravelEarnings = st.TravelEarnings.Add(sb.TravelEarnings)
		st.Indemnity = st.Indemnity.Add(sb.DailyIndemnity)
		st.Total = st.Total.Add(sb.TotalEarnings)
	}
}
