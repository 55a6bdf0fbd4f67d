/*
scheduler.go - Automated month closing scheduler

PURPOSE:
  Periodically checks whether the previous month has been closed and, if
  not, freezes its summary: the month is aggregated, the PDF report is
  written to the report directory and the summary is stored as a month
  closing record.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Only closes months that have fully ended
  - Skips months that are already closed
  - Records every run (running, completed, failed) for audit and UI display

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewMonthClosingScheduler(handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: summarize (shared aggregation path)
  - report/monthly.go: PDF rendering
*/
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/warp/earnings-engine/factory"
	"github.com/warp/earnings-engine/generic"
	"github.com/warp/earnings-engine/report"
	"github.com/warp/earnings-engine/store/sqlite"
)

// MonthClosingScheduler closes finished months automatically.
type MonthClosingScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	// now is replaceable in tests.
	now func() time.Time

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewMonthClosingScheduler creates a new scheduler.
func NewMonthClosingScheduler(handler *Handler) *MonthClosingScheduler {
	return &MonthClosingScheduler{
		Handler:       handler,
		CheckInterval: time.Hour,
		Enabled:       true,
		now:           time.Now,
		stop:          make(chan struct{}),
	}
}

// Start begins the scheduler.
func (s *MonthClosingScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.Handler.Logger
	if !s.Enabled {
		log.Info("month closing scheduler disabled")
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.wg.Add(1)
	go s.run()

	log.Info("month closing scheduler started", zap.Duration("interval", s.CheckInterval))
}

// Stop stops the scheduler and waits for a running check to finish.
func (s *MonthClosingScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.ticker = nil
		s.Handler.Logger.Info("month closing scheduler stopped")
	}
}

func (s *MonthClosingScheduler) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.RunNow(context.Background())

	for {
		select {
		case <-s.ticker.C:
			s.RunNow(context.Background())
		case <-s.stop:
			return
		}
	}
}

// RunNow closes the previous month if it is not closed yet. It returns the
// closing record, or nil when nothing was done.
func (s *MonthClosingScheduler) RunNow(ctx context.Context) *sqlite.MonthClosing {
	now := s.now()
	current := generic.MonthPeriod(now.Year(), now.Month())
	previous := current.PreviousPeriod()
	log := s.Handler.Logger.With(zap.String("period", previous.String()))

	existing, err := s.Handler.Store.GetMonthClosing(ctx, previous)
	if err != nil {
		log.Error("failed to check month closing", zap.Error(err))
		return nil
	}
	if existing != nil && existing.Status == sqlite.ClosingCompleted {
		return nil
	}

	closing, err := s.Handler.closeMonth(ctx, previous)
	if err != nil {
		log.Error("month closing failed", zap.Error(err))
	}
	return closing
}

// closeMonth aggregates a period, writes its report and stores the closing.
// The returned record reflects the final status even when err is set.
func (h *Handler) closeMonth(ctx context.Context, period generic.Period) (*sqlite.MonthClosing, error) {
	started := time.Now().UTC()
	closing := sqlite.MonthClosing{
		ID:          uuid.NewString(),
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
		Status:      sqlite.ClosingRunning,
		StartedAt:   &started,
	}
	if err := h.Store.SaveMonthClosing(ctx, closing); err != nil {
		return nil, err
	}

	fail := func(err error) (*sqlite.MonthClosing, error) {
		closing.Status = sqlite.ClosingFailed
		closing.Error = err.Error()
		if saveErr := h.Store.SaveMonthClosing(ctx, closing); saveErr != nil {
			h.Logger.Error("failed to record month closing failure", zap.Error(saveErr))
		}
		return &closing, err
	}

	summary, err := h.summarize(ctx, period)
	if err != nil {
		return fail(err)
	}
	doc, err := json.Marshal(factory.SummaryToJSON(summary, false))
	if err != nil {
		return fail(err)
	}
	path, err := report.WriteMonthlyPDF(h.ReportDir, summary)
	if err != nil {
		return fail(err)
	}

	completed := time.Now().UTC()
	closing.Status = sqlite.ClosingCompleted
	closing.TotalEarnings = generic.FormatEuro(summary.TotalEarnings)
	closing.SummaryJSON = string(doc)
	closing.ReportPath = path
	closing.Error = ""
	closing.CompletedAt = &completed
	if err := h.Store.SaveMonthClosing(ctx, closing); err != nil {
		return &closing, err
	}

	h.Logger.Info("month closed",
		zap.String("period", period.String()),
		zap.Int("days", len(summary.Days)),
		zap.Int("skipped", len(summary.Skipped)),
		zap.String("total", closing.TotalEarnings),
		zap.String("report", path),
	)
	return &closing, nil
}

// =============================================================================
// CLOSING ENDPOINTS
// =============================================================================

// ListMonthClosings returns all closings, most recent first.
// GET /api/closings
func (h *Handler) ListMonthClosings(w http.ResponseWriter, r *http.Request) {
	closings, err := h.Store.ListMonthClosings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list month closings", err)
		return
	}
	dtos := make([]MonthClosingDTO, 0, len(closings))
	for _, c := range closings {
		dtos = append(dtos, toMonthClosingDTO(c))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CloseMonth closes (or re-closes) a month on demand.
// POST /api/closings/{year}/{month}
func (h *Handler) CloseMonth(w http.ResponseWriter, r *http.Request) {
	period, err := monthFromURL(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}
	closing, err := h.closeMonth(r.Context(), period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to close month", err)
		return
	}
	writeJSON(w, http.StatusOK, toMonthClosingDTO(*closing))
}
