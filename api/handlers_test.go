/*
handlers_test.go - HTTP tests for the API handlers

Every test drives the full chi router over an in-memory SQLite store:
- Entry create/read/delete and the cached breakdown
- Settings and holiday changes invalidating cached breakdowns
- Stateless breakdowns, monthly summaries and PDF reports
*/
package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/warp/earnings-engine/factory"
	"github.com/warp/earnings-engine/store/sqlite"
)

const officeDayJSON = `{
	"work_start_1": "08:00", "work_end_1": "12:00",
	"work_start_2": "13:00", "work_end_2": "17:00"
}`

func setupTestHandler(t *testing.T) *Handler {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := NewHandler(store, zap.NewNop())
	h.ReportDir = t.TempDir()
	return h
}

func serve(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	router := NewRouter(setupTestHandler(t), nil)

	rec := serve(t, router, http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

// =============================================================================
// ENTRIES
// =============================================================================

func TestEntry_PutGetDelete(t *testing.T) {
	router := NewRouter(setupTestHandler(t), nil)

	// GIVEN: A full office day saved through the API
	rec := serve(t, router, http.MethodPut, "/api/entries/2025-03-04", officeDayJSON)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: The response carries the stored entry and its breakdown
	resp := decode[EntryResponseDTO](t, rec)
	assert.NotEmpty(t, resp.Entry.ID)
	assert.Equal(t, "2025-03-04", resp.Entry.Date)
	assert.Equal(t, 109.19, resp.Breakdown.TotalEarnings)

	// AND: The entry can be read back, listed and recomputed
	rec = serve(t, router, http.MethodGet, "/api/entries/2025-03-04", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, resp.Entry.ID, decode[factory.EntryJSON](t, rec).ID)

	rec = serve(t, router, http.MethodGet, "/api/entries?from=2025-03-01&to=2025-03-31", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]factory.EntryJSON](t, rec), 1)

	rec = serve(t, router, http.MethodGet, "/api/entries/2025-03-04/breakdown", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 109.19, decode[factory.BreakdownJSON](t, rec).TotalEarnings)

	// AND: Deleting it makes it disappear
	rec = serve(t, router, http.MethodDelete, "/api/entries/2025-03-04", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = serve(t, router, http.MethodGet, "/api/entries/2025-03-04", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEntry_Rejections(t *testing.T) {
	router := NewRouter(setupTestHandler(t), nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"date mismatch", http.MethodPut, "/api/entries/2025-03-04", `{"date": "2025-03-05"}`, http.StatusBadRequest},
		{"bad url date", http.MethodPut, "/api/entries/2025-02-30", officeDayJSON, http.StatusBadRequest},
		{"bad clock", http.MethodPut, "/api/entries/2025-03-04", `{"work_start_1": "8 am"}`, http.StatusBadRequest},
		{"unknown completion", http.MethodPut, "/api/entries/2025-03-04", `{"day_completion_type": "strike"}`, http.StatusBadRequest},
		{"malformed body", http.MethodPut, "/api/entries/2025-03-04", `{`, http.StatusBadRequest},
		{"missing entry", http.MethodGet, "/api/entries/2025-03-04", "", http.StatusNotFound},
		{"missing breakdown", http.MethodGet, "/api/entries/2025-03-04/breakdown", "", http.StatusNotFound},
		{"delete missing", http.MethodDelete, "/api/entries/2025-03-04", "", http.StatusNotFound},
		{"get bad date", http.MethodGet, "/api/entries/yesterday", "", http.StatusBadRequest},
		{"bad range", http.MethodGet, "/api/entries?from=2025-03-31&to=2025-03-01", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode[ErrorResponse](t, rec).Error)
		})
	}
}

func TestEntry_BodyLimit(t *testing.T) {
	h := setupTestHandler(t)
	h.MaxBodyBytes = 16
	router := NewRouter(h, nil)

	rec := serve(t, router, http.MethodPut, "/api/entries/2025-03-04", officeDayJSON)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// SETTINGS
// =============================================================================

func TestSettings_UpdateInvalidatesBreakdowns(t *testing.T) {
	router := NewRouter(setupTestHandler(t), nil)

	// GIVEN: A 7-hour day computed with the default profile
	rec := serve(t, router, http.MethodPut, "/api/entries/2025-03-04",
		`{"work_start_1": "08:00", "work_end_1": "12:00", "work_start_2": "13:00", "work_end_2": "16:00"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 114.87, decode[EntryResponseDTO](t, rec).Breakdown.TotalEarnings)

	rec = serve(t, router, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 16.41, decode[SettingsDTO](t, rec).Resolved.BaseRate)

	// WHEN: The hourly rate changes
	rec = serve(t, router, http.MethodPut, "/api/settings", `{"contract": {"hourly_rate": 20}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	settings := decode[SettingsDTO](t, rec)
	assert.Equal(t, 20.0, settings.Resolved.BaseRate)
	assert.Equal(t, 109.19, settings.Resolved.DailyRate)
	assert.Equal(t, "22:00", settings.Resolved.StandbyNightStart)

	// THEN: The stored day is priced with the new rate
	rec = serve(t, router, http.MethodGet, "/api/entries/2025-03-04/breakdown", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 140.0, decode[factory.BreakdownJSON](t, rec).TotalEarnings)
}

func TestSettings_RejectsUnknownEnums(t *testing.T) {
	router := NewRouter(setupTestHandler(t), nil)

	rec := serve(t, router, http.MethodPut, "/api/settings", `{"travel_hours_setting": "EXCESS_AS_BONUS"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, router, http.MethodPut, "/api/settings", `{"standby": {"night_start": "22"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The stored profile is unchanged
	rec = serve(t, router, http.MethodGet, "/api/settings", "")
	assert.Equal(t, "EXCESS_AS_TRAVEL", decode[SettingsDTO](t, rec).Resolved.TravelHoursSetting)
}

// =============================================================================
// CALCULATION
// =============================================================================

func TestComputeBreakdown_Stateless(t *testing.T) {
	router := NewRouter(setupTestHandler(t), nil)

	tests := []struct {
		name  string
		body  string
		total float64
	}{
		{"defaults on a sunday", `{"entry": {"date": "2025-03-09", "work_start_1": "10:00", "work_end_1": "12:00"}}`, 42.666},
		{"null settings", `{"entry": {"date": "2025-03-09", "work_start_1": "10:00", "work_end_1": "12:00"}, "settings": null}`, 42.666},
		{"custom rate", `{"entry": {"date": "2025-03-04", "work_start_1": "08:00", "work_end_1": "12:00"}, "settings": {"contract": {"hourly_rate": 10}}}`, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, router, http.MethodPost, "/api/breakdown", tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.InDelta(t, tt.total, decode[factory.BreakdownJSON](t, rec).TotalEarnings, 1e-9)
		})
	}

	for _, body := range []string{
		`{}`,
		`{"entry": {"date": "2025-02-30"}}`,
		`{"entry": {"date": "2025-03-04"}, "settings": {"travel_allowance": {"activation_policy": "NEVER"}}}`,
	} {
		rec := serve(t, router, http.MethodPost, "/api/breakdown", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestComputeBreakdown_StoredHolidays(t *testing.T) {
	router := NewRouter(setupTestHandler(t), nil)

	rec := serve(t, router, http.MethodPost, "/api/holidays", `{"date": "2025-06-24", "name": "San Giovanni"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	entry := `{"date": "2025-06-24", "work_start_1": "08:00", "work_end_1": "12:00", "work_start_2": "13:00", "work_end_2": "17:00"}`

	rec = serve(t, router, http.MethodPost, "/api/breakdown", `{"entry": `+entry+`}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 109.19, decode[factory.BreakdownJSON](t, rec).TotalEarnings)

	rec = serve(t, router, http.MethodPost, "/api/breakdown", `{"entry": `+entry+`, "use_stored_holidays": true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode[factory.BreakdownJSON](t, rec)
	assert.True(t, out.Details.IsHoliday)
	assert.InDelta(t, 170.664, out.TotalEarnings, 1e-9)
}

func TestSummary(t *testing.T) {
	router := NewRouter(setupTestHandler(t), nil)

	// GIVEN: A full day, a 7-hour day and an April day
	require.Equal(t, http.StatusOK, serve(t, router, http.MethodPut, "/api/entries/2025-03-04", officeDayJSON).Code)
	require.Equal(t, http.StatusOK, serve(t, router, http.MethodPut, "/api/entries/2025-03-05",
		`{"work_start_1": "08:00", "work_end_1": "12:00", "work_start_2": "13:00", "work_end_2": "16:00"}`).Code)
	require.Equal(t, http.StatusOK, serve(t, router, http.MethodPut, "/api/entries/2025-04-01", officeDayJSON).Code)

	// WHEN: Summarizing March
	rec := serve(t, router, http.MethodGet, "/api/summary/2025/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[factory.SummaryJSON](t, rec)

	// THEN: Only March is counted and days are omitted by default
	assert.Equal(t, "2025-03-01", summary.From)
	assert.Equal(t, 2, summary.Counts.Worked)
	assert.Equal(t, 1, summary.Counts.Partial)
	assert.InDelta(t, 224.06, summary.TotalEarnings, 1e-9)
	assert.Empty(t, summary.Days)

	rec = serve(t, router, http.MethodGet, "/api/summary/2025/3?days=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[factory.SummaryJSON](t, rec).Days, 2)

	assert.Equal(t, http.StatusBadRequest, serve(t, router, http.MethodGet, "/api/summary/2025/13", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, router, http.MethodGet, "/api/summary/year/3", "").Code)
}

func TestMonthlyReport(t *testing.T) {
	router := NewRouter(setupTestHandler(t), nil)
	require.Equal(t, http.StatusOK, serve(t, router, http.MethodPut, "/api/entries/2025-03-04", officeDayJSON).Code)

	rec := serve(t, router, http.MethodGet, "/api/reports/2025/3.pdf", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "earnings-2025-03.pdf")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func TestHoliday_CreateListDelete(t *testing.T) {
	router := NewRouter(setupTestHandler(t), nil)

	// GIVEN: A stored day on a date that later becomes a holiday
	rec := serve(t, router, http.MethodPut, "/api/entries/2025-06-24", officeDayJSON)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 109.19, decode[EntryResponseDTO](t, rec).Breakdown.TotalEarnings)

	// WHEN: Adding a recurring custom holiday
	rec = serve(t, router, http.MethodPost, "/api/holidays", `{"date": "2024-06-24", "name": " San Giovanni ", "recurring": true}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[HolidayDTO](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "San Giovanni", created.Name)

	// THEN: It is listed alone, and inside the full calendar of a year
	rec = serve(t, router, http.MethodGet, "/api/holidays", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[map[string][]HolidayDTO](t, rec)["holidays"], 1)

	rec = serve(t, router, http.MethodGet, "/api/holidays?year=2025", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[map[string][]HolidayDTO](t, rec)["holidays"], 13)

	// AND: The cached breakdown of the stored day is recomputed
	rec = serve(t, router, http.MethodGet, "/api/entries/2025-06-24/breakdown", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 170.664, decode[factory.BreakdownJSON](t, rec).TotalEarnings, 1e-9)

	// AND: Deleting works once
	assert.Equal(t, http.StatusOK, serve(t, router, http.MethodDelete, "/api/holidays/"+created.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, serve(t, router, http.MethodDelete, "/api/holidays/"+created.ID, "").Code)

	rec = serve(t, router, http.MethodGet, "/api/entries/2025-06-24/breakdown", "")
	assert.Equal(t, 109.19, decode[factory.BreakdownJSON](t, rec).TotalEarnings)
}

func TestHoliday_Rejections(t *testing.T) {
	router := NewRouter(setupTestHandler(t), nil)

	assert.Equal(t, http.StatusBadRequest, serve(t, router, http.MethodPost, "/api/holidays", `{"date": "2025-06-24"}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, router, http.MethodPost, "/api/holidays", `{"date": "24/06/2025", "name": "x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, router, http.MethodGet, "/api/holidays?year=abc", "").Code)
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

func TestRequestLogger_LevelFollowsStatus(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := setupTestHandler(t)
	h.Logger = zap.New(core)
	router := NewRouter(h, nil)

	serve(t, router, http.MethodGet, "/api/health", "")
	serve(t, router, http.MethodGet, "/api/entries/2025-03-04", "")

	entries := logs.FilterMessage("request completed").All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, int64(http.StatusOK), entries[0].ContextMap()["status"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "/api/entries/2025-03-04", entries[1].ContextMap()["path"])
	assert.NotEmpty(t, entries[1].ContextMap()["request_id"])
}

func TestCORS_AllowsConfiguredOrigins(t *testing.T) {
	router := NewRouter(setupTestHandler(t), []string{"https://payroll.example"})

	req := httptest.NewRequest(http.MethodOptions, "/api/entries", nil)
	req.Header.Set("Origin", "https://payroll.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "https://payroll.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
