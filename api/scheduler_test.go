package api

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/earnings-engine/earnings"
	"github.com/warp/earnings-engine/generic"
	"github.com/warp/earnings-engine/store/sqlite"
)

func saveMarchDay(t *testing.T, h *Handler) {
	t.Helper()
	require.NoError(t, h.Store.SaveEntry(context.Background(), earnings.WorkEntry{
		Date:       "2025-03-04",
		WorkStart1: "08:00",
		WorkEnd1:   "12:00",
		WorkStart2: "13:00",
		WorkEnd2:   "17:00",
	}))
}

func TestScheduler_ClosesPreviousMonthOnce(t *testing.T) {
	// GIVEN: A March entry and a clock in early April
	h := setupTestHandler(t)
	saveMarchDay(t, h)
	s := NewMonthClosingScheduler(h)
	s.now = func() time.Time { return time.Date(2025, 4, 2, 1, 0, 0, 0, time.UTC) }

	// WHEN: The scheduler runs
	closing := s.RunNow(context.Background())

	// THEN: March is closed with its summary and report
	require.NotNil(t, closing)
	assert.Equal(t, sqlite.ClosingCompleted, closing.Status)
	assert.Equal(t, "2025-03-01", closing.PeriodStart.String())
	assert.Equal(t, generic.FormatEuro(generic.D("109.19")), closing.TotalEarnings)
	assert.Contains(t, closing.SummaryJSON, `"total_earnings":109.19`)
	assert.FileExists(t, closing.ReportPath)
	assert.Equal(t, "earnings-2025-03.pdf", filepath.Base(closing.ReportPath))

	// AND: A second run does nothing
	assert.Nil(t, s.RunNow(context.Background()))

	closings, err := h.Store.ListMonthClosings(context.Background())
	require.NoError(t, err)
	assert.Len(t, closings, 1)
}

func TestScheduler_RetriesFailedClosing(t *testing.T) {
	// GIVEN: A report directory that cannot be created
	h := setupTestHandler(t)
	saveMarchDay(t, h)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	h.ReportDir = filepath.Join(blocker, "reports")

	s := NewMonthClosingScheduler(h)
	s.now = func() time.Time { return time.Date(2025, 4, 2, 1, 0, 0, 0, time.UTC) }

	// WHEN: The scheduler runs
	closing := s.RunNow(context.Background())

	// THEN: The failure is recorded
	require.NotNil(t, closing)
	assert.Equal(t, sqlite.ClosingFailed, closing.Status)
	assert.NotEmpty(t, closing.Error)

	// AND: The next run retries and succeeds once the directory is usable
	h.ReportDir = t.TempDir()
	closing = s.RunNow(context.Background())
	require.NotNil(t, closing)
	assert.Equal(t, sqlite.ClosingCompleted, closing.Status)
	assert.Empty(t, closing.Error)

	stored, err := h.Store.GetMonthClosing(context.Background(), generic.MonthPeriod(2025, time.March))
	require.NoError(t, err)
	assert.Equal(t, sqlite.ClosingCompleted, stored.Status)
}

func TestScheduler_StartStop(t *testing.T) {
	h := setupTestHandler(t)
	s := NewMonthClosingScheduler(h)
	s.now = func() time.Time { return time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC) }

	// Start runs a check immediately; Stop waits for it
	s.Start()
	s.Stop()
	s.Stop()

	closing, err := h.Store.GetMonthClosing(context.Background(), generic.MonthPeriod(2024, time.December))
	require.NoError(t, err)
	require.NotNil(t, closing)
	assert.Equal(t, sqlite.ClosingCompleted, closing.Status)
}

func TestScheduler_Disabled(t *testing.T) {
	h := setupTestHandler(t)
	s := NewMonthClosingScheduler(h)
	s.Enabled = false

	s.Start()
	s.Stop()

	closings, err := h.Store.ListMonthClosings(context.Background())
	require.NoError(t, err)
	assert.Empty(t, closings)
}

func TestClosingEndpoints(t *testing.T) {
	h := setupTestHandler(t)
	saveMarchDay(t, h)
	router := NewRouter(h, nil)

	// WHEN: Closing March on demand
	rec := serve(t, router, http.MethodPost, "/api/closings/2025/3", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	closing := decode[MonthClosingDTO](t, rec)

	// THEN: The closing is completed and listed with its frozen summary
	assert.Equal(t, sqlite.ClosingCompleted, closing.Status)
	assert.NotEmpty(t, closing.CompletedAt)

	rec = serve(t, router, http.MethodGet, "/api/closings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]MonthClosingDTO](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "2025-03-31", list[0].PeriodEnd)
	assert.Contains(t, string(list[0].Summary), `"from":"2025-03-01"`)

	assert.Equal(t, http.StatusBadRequest, serve(t, router, http.MethodPost, "/api/closings/2025/0", "").Code)
}
