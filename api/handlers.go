/*
handlers.go - HTTP API handlers for the earnings engine

PURPOSE:
  Exposes the earnings engine over stored work entries via REST API. Handles
  HTTP request/response, JSON serialization, and delegates every amount to
  the earnings package. Handlers never compute pay themselves.

ENDPOINTS:
  Settings:
    GET    /api/settings                    Current contract profile
    PUT    /api/settings                    Replace contract profile

  Entries:
    GET    /api/entries?from=&to=           List entries (default: current month)
    GET    /api/entries/{date}              Get one entry
    PUT    /api/entries/{date}              Create or replace the entry of a date
    DELETE /api/entries/{date}              Delete an entry
    GET    /api/entries/{date}/breakdown    Daily breakdown of a stored entry

  Calculation:
    POST   /api/breakdown                   Stateless breakdown (entry + settings)
    GET    /api/summary/{year}/{month}      Monthly summary (?days=true for details)
    GET    /api/reports/{year}/{month}.pdf  Monthly PDF report

  Holidays:
    GET    /api/holidays?year=              Custom holidays, or full calendar of a year
    POST   /api/holidays                    Add a custom holiday
    DELETE /api/holidays/{id}               Remove a custom holiday

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access
  - Factory: JSON to engine type conversion
  - Cached calculator for repeated breakdowns of the same entries

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/warp/earnings-engine/earnings"
	"github.com/warp/earnings-engine/factory"
	"github.com/warp/earnings-engine/generic"
	"github.com/warp/earnings-engine/report"
	"github.com/warp/earnings-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store        *sqlite.Store
	Factory      *factory.Factory
	Logger       *zap.Logger
	ReportDir    string
	Workers      int
	MaxBodyBytes int64

	mu   sync.Mutex
	calc *earnings.CachedCalculator // nil until first use or after invalidation

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Store:        store,
		Factory:      factory.New(),
		Logger:       logger,
		ReportDir:    "storage/reports",
		Workers:      4,
		MaxBodyBytes: 1 << 20,
	}
}

// calculator returns the cached calculator, building it from stored settings
// and the current holiday table when needed.
func (h *Handler) calculator(ctx context.Context) (*earnings.CachedCalculator, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.calc != nil {
		return h.calc, nil
	}

	settings, err := h.Store.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	cal, err := h.Store.Calendar(ctx)
	if err != nil {
		return nil, err
	}
	calc, err := earnings.NewCachedCalculator(settings, cal)
	if err != nil {
		return nil, err
	}
	h.calc = calc
	return calc, nil
}

// invalidate drops the cached calculator after settings or holidays change.
func (h *Handler) invalidate() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calc = nil
}

// summarize aggregates a period from the store.
func (h *Handler) summarize(ctx context.Context, period generic.Period) (*earnings.MonthlySummary, error) {
	cal, err := h.Store.Calendar(ctx)
	if err != nil {
		return nil, err
	}
	return earnings.AggregateStored(ctx, h.Store, period, earnings.AggregateOptions{
		Calendar:    cal,
		Logger:      h.Logger,
		Concurrency: h.Workers,
	})
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetSettings returns the stored contract profile plus the resolved values.
// GET /api/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Store.GetSettings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get settings", err)
		return
	}
	writeJSON(w, http.StatusOK, SettingsDTO{
		Settings: h.Factory.SettingsToJSON(settings),
		Resolved: toResolvedDTO(earnings.ResolveSettings(settings)),
	})
}

// UpdateSettings replaces the contract profile.
// PUT /api/settings
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	body, err := h.readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	settings, err := h.Factory.ParseSettings(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid settings", err)
		return
	}
	if err := h.Store.SaveSettings(r.Context(), *settings); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings", err)
		return
	}
	h.invalidate()
	h.Logger.Info("settings updated")

	writeJSON(w, http.StatusOK, SettingsDTO{
		Settings: h.Factory.SettingsToJSON(settings),
		Resolved: toResolvedDTO(earnings.ResolveSettings(settings)),
	})
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

// ListEntries returns the entries of a date range.
// GET /api/entries?from=2025-03-01&to=2025-03-31
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	var period generic.Period
	if from == "" && to == "" {
		today := generic.Today()
		period = generic.MonthPeriod(today.Year(), today.Month())
	} else {
		var err error
		if period, err = generic.NewPeriod(from, to); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date range (use from=YYYY-MM-DD&to=YYYY-MM-DD)", err)
			return
		}
	}

	entries, err := h.Store.ListEntries(r.Context(), period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list entries", err)
		return
	}

	dtos := make([]factory.EntryJSON, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, h.Factory.EntryToJSON(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEntry returns the entry of a date.
// GET /api/entries/{date}
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.Store.GetEntry(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		writeDomainError(w, "Failed to get entry", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Factory.EntryToJSON(entry))
}

// PutEntry creates or replaces the entry of a date and returns it with its
// breakdown.
// PUT /api/entries/{date}
func (h *Handler) PutEntry(w http.ResponseWriter, r *http.Request) {
	date, ok := generic.ParseDate(chi.URLParam(r, "date"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", nil)
		return
	}

	body, err := h.readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	var ej factory.EntryJSON
	if err := json.Unmarshal(body, &ej); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if ej.Date != "" {
		if bodyDate, ok := generic.ParseDate(ej.Date); !ok || !bodyDate.Equal(date) {
			writeError(w, http.StatusBadRequest, "Entry date does not match the URL", nil)
			return
		}
	}
	ej.Date = date.String()

	entry := h.Factory.EntryFromJSON(ej)
	if err := factory.ValidateEntry(entry); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid entry", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.SaveEntry(ctx, *entry); err != nil {
		writeDomainError(w, "Failed to save entry", err)
		return
	}
	saved, err := h.Store.GetEntry(ctx, entry.Date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload entry", err)
		return
	}

	calc, err := h.calculator(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	b, err := calc.Compute(saved)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute breakdown", err)
		return
	}

	writeJSON(w, http.StatusOK, EntryResponseDTO{
		Entry:     h.Factory.EntryToJSON(saved),
		Breakdown: factory.BreakdownToJSON(b),
	})
}

// DeleteEntry removes the entry of a date.
// DELETE /api/entries/{date}
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteEntry(r.Context(), chi.URLParam(r, "date")); err != nil {
		writeDomainError(w, "Failed to delete entry", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// GetEntryBreakdown computes the breakdown of a stored entry.
// GET /api/entries/{date}/breakdown
func (h *Handler) GetEntryBreakdown(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entry, err := h.Store.GetEntry(ctx, chi.URLParam(r, "date"))
	if err != nil {
		writeDomainError(w, "Failed to get entry", err)
		return
	}
	calc, err := h.calculator(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	b, err := calc.Compute(entry)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute breakdown", err)
		return
	}
	writeJSON(w, http.StatusOK, factory.BreakdownToJSON(b))
}

// =============================================================================
// CALCULATION HANDLERS
// =============================================================================

// ComputeBreakdown computes a breakdown from an entry and settings supplied in
// the body, without touching stored data. Omitted settings mean all defaults.
// POST /api/breakdown
func (h *Handler) ComputeBreakdown(w http.ResponseWriter, r *http.Request) {
	body, err := h.readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	var req BreakdownRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.Entry) == 0 {
		writeError(w, http.StatusBadRequest, "entry is required", nil)
		return
	}

	entry, err := h.Factory.ParseEntry(req.Entry)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid entry", err)
		return
	}
	settings := &earnings.Settings{}
	if len(req.Settings) > 0 && string(req.Settings) != "null" {
		if settings, err = h.Factory.ParseSettings(req.Settings); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid settings", err)
			return
		}
	}

	var cal generic.HolidayCalendar = generic.ItalianCalendar{}
	if req.UseStoredHolidays {
		if cal, err = h.Store.Calendar(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load holidays", err)
			return
		}
	}

	b, err := earnings.ComputeDailyBreakdown(entry, settings, cal)
	if err != nil {
		writeDomainError(w, "Failed to compute breakdown", err)
		return
	}
	writeJSON(w, http.StatusOK, factory.BreakdownToJSON(b))
}

// GetSummary aggregates a calendar month.
// GET /api/summary/{year}/{month}?days=true
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	period, err := monthFromURL(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}
	summary, err := h.summarize(r.Context(), period)
	if err != nil {
		writeDomainError(w, "Failed to compute summary", err)
		return
	}
	withDays, _ := strconv.ParseBool(r.URL.Query().Get("days"))
	writeJSON(w, http.StatusOK, factory.SummaryToJSON(summary, withDays))
}

// GetMonthlyReport renders the monthly summary as PDF.
// GET /api/reports/{year}/{month}.pdf
func (h *Handler) GetMonthlyReport(w http.ResponseWriter, r *http.Request) {
	period, err := monthFromURL(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}
	summary, err := h.summarize(r.Context(), period)
	if err != nil {
		writeDomainError(w, "Failed to compute summary", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName(period)))
	if err := report.MonthlyPDF(w, summary); err != nil {
		h.Logger.Error("failed to render report", zap.String("period", period.String()), zap.Error(err))
	}
}

// =============================================================================
// HOLIDAY ENDPOINTS
// =============================================================================

// ListHolidays returns the custom holidays, or with ?year= the full calendar
// of that year (national + custom).
// GET /api/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if y := r.URL.Query().Get("year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil || year < 1900 || year > 2200 {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		cal, err := h.Store.Calendar(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to get holidays", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"holidays": toHolidayDTOs(cal.GetHolidays(year))})
		return
	}

	holidays, err := h.Store.GetAllHolidays(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get holidays", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"holidays": toHolidayDTOs(holidays)})
}

// CreateHoliday adds a custom holiday.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	body, err := h.readBody(w, r)
	if err == nil {
		err = json.Unmarshal(body, &req)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if req.Date == "" || strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Date and name are required", nil)
		return
	}
	date, ok := generic.ParseDate(req.Date)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", nil)
		return
	}

	saved, err := h.Store.SaveHoliday(r.Context(), generic.Holiday{
		Date:      date,
		Name:      strings.TrimSpace(req.Name),
		Recurring: req.Recurring,
	})
	if err != nil {
		writeDomainError(w, "Failed to create holiday", err)
		return
	}
	h.invalidate()

	writeJSON(w, http.StatusCreated, toHolidayDTO(saved))
}

// DeleteHoliday removes a custom holiday.
// DELETE /api/holidays/{id}
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "Failed to delete holiday", err)
		return
	}
	h.invalidate()
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// Health reports database reachability.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ResetDatabase clears all data.
// POST /api/scenarios/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.invalidate()
	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps sentinel errors to 404, 400 or 500.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	limit := h.MaxBodyBytes
	if limit <= 0 {
		limit = 1 << 20
	}
	return io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
}

// monthFromURL reads {year} and {month} path parameters.
func monthFromURL(r *http.Request) (generic.Period, error) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1900 || year > 2200 {
		return generic.Period{}, fmt.Errorf("%w: year %q", generic.ErrInvalidPeriod, chi.URLParam(r, "year"))
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		return generic.Period{}, fmt.Errorf("%w: month %q", generic.ErrInvalidPeriod, chi.URLParam(r, "month"))
	}
	return generic.MonthPeriod(year, time.Month(month)), nil
}
