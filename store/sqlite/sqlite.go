/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Persists everything the earnings engine is fed with: work entries, the
  contract settings document and locally configured holidays. Breakdowns are
  never stored; they are recomputed from entries and settings on demand.
  Month closings record the frozen summary of a finished month.

INTERFACES IMPLEMENTED:
  earnings.EntryStore:    One work entry per calendar date
  earnings.SettingsStore: Single settings document

  Custom holidays (local patron saints, plant closures) are read through
  Calendar, which snapshots them together with the national calendar.

KEY TABLES:
  work_entries:   Entry documents keyed by date
  settings:       One row, versioned on every save
  holidays:       Custom holidays, optionally recurring
  month_closings: Frozen monthly summaries and report paths

DOCUMENT FORMAT:
  Entries and settings are stored as the same JSON documents the API accepts
  (see factory package), so schema changes in the engine never need a
  migration here.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. SQLite is opened in WAL mode so
  readers don't block the single writer.

USAGE:
  store, err := sqlite.New("./data/earnings.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  cal, _ := store.Calendar(ctx)
  summary, _ := earnings.AggregateStored(ctx, store, period, earnings.AggregateOptions{Calendar: cal})

SEE ALSO:
  - earnings/store.go: Interface definitions
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/earnings-engine/earnings"
	"github.com/warp/earnings-engine/factory"
	"github.com/warp/earnings-engine/generic"
)

// Store implements the storage interfaces using SQLite.
type Store struct {
	db      *sql.DB
	mu      sync.RWMutex
	factory *factory.Factory
}

var _ earnings.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, factory: factory.New()}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Work entries (one per calendar date)
	CREATE TABLE IF NOT EXISTS work_entries (
		date TEXT PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		entry_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Settings (single document)
	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		settings_json TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		updated_at TEXT NOT NULL
	);

	-- Custom holidays (national ones are computed)
	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		recurring BOOLEAN DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_holidays_date
		ON holidays(date);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_holidays_unique
		ON holidays(date, name);

	-- Month closings (frozen summaries)
	CREATE TABLE IF NOT EXISTS month_closings (
		id TEXT PRIMARY KEY,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		status TEXT NOT NULL,
		total_earnings TEXT,
		summary_json TEXT,
		report_path TEXT,
		error TEXT,
		started_at TEXT,
		completed_at TEXT,
		created_at TEXT NOT NULL,
		UNIQUE(period_start, period_end)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ENTRY STORE
// =============================================================================

// SaveEntry inserts or replaces the entry of entry.Date. A missing ID is
// generated; the ID of an existing row for the same date is kept.
func (s *Store) SaveEntry(ctx context.Context, entry earnings.WorkEntry) error {
	tp, ok := generic.ParseDate(entry.Date)
	if !ok {
		return &generic.FieldError{Field: "date", Value: entry.Date, Err: generic.ErrInvalidDate}
	}
	entry.Date = tp.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		var existing string
		err := s.db.QueryRowContext(ctx, "SELECT id FROM work_entries WHERE date = ?", entry.Date).Scan(&existing)
		switch {
		case err == nil:
			entry.ID = existing
		case errors.Is(err, sql.ErrNoRows):
			entry.ID = uuid.NewString()
		default:
			return err
		}
	}

	doc, err := s.factory.MarshalEntry(&entry)
	if err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}

	query := `
		INSERT INTO work_entries (date, id, entry_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			id = excluded.id,
			entry_json = excluded.entry_json,
			updated_at = excluded.updated_at
	`
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, query, entry.Date, entry.ID, string(doc), now, now)
	return err
}

// GetEntry retrieves the entry of a date.
func (s *Store) GetEntry(ctx context.Context, date string) (*earnings.WorkEntry, error) {
	tp, ok := generic.ParseDate(date)
	if !ok {
		return nil, &generic.FieldError{Field: "date", Value: date, Err: generic.ErrInvalidDate}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var doc string
	err := s.db.QueryRowContext(ctx, "SELECT entry_json FROM work_entries WHERE date = ?", tp.String()).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, generic.ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.factory.DecodeEntry([]byte(doc))
}

// ListEntries returns the entries of a period ordered by date.
func (s *Store) ListEntries(ctx context.Context, period generic.Period) ([]*earnings.WorkEntry, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT entry_json FROM work_entries WHERE date >= ? AND date <= ? ORDER BY date ASC",
		period.Start.String(), period.End.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*earnings.WorkEntry
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		e, err := s.factory.DecodeEntry([]byte(doc))
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteEntry removes the entry of a date.
func (s *Store) DeleteEntry(ctx context.Context, date string) error {
	tp, ok := generic.ParseDate(date)
	if !ok {
		return &generic.FieldError{Field: "date", Value: date, Err: generic.ErrInvalidDate}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM work_entries WHERE date = ?", tp.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return generic.ErrEntryNotFound
	}
	return nil
}

// =============================================================================
// SETTINGS STORE
// =============================================================================

// SaveSettings replaces the settings document and bumps its version.
func (s *Store) SaveSettings(ctx context.Context, settings earnings.Settings) error {
	doc, err := s.factory.MarshalSettings(&settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO settings (id, settings_json, version, updated_at)
		VALUES (1, ?, 1, ?)
		ON CONFLICT(id) DO UPDATE SET
			settings_json = excluded.settings_json,
			version = settings.version + 1,
			updated_at = excluded.updated_at
	`
	_, err = s.db.ExecContext(ctx, query, string(doc), time.Now().UTC().Format(time.RFC3339))
	return err
}

// GetSettings returns the stored settings, or an empty profile (all defaults).
func (s *Store) GetSettings(ctx context.Context) (*earnings.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var doc string
	err := s.db.QueryRowContext(ctx, "SELECT settings_json FROM settings WHERE id = 1").Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return &earnings.Settings{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.factory.ParseSettings([]byte(doc))
}

// SettingsVersion returns how many times settings were saved (0 = never).
func (s *Store) SettingsVersion(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var version int
	err := s.db.QueryRowContext(ctx, "SELECT version FROM settings WHERE id = 1").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return version, err
}

// =============================================================================
// HOLIDAY CALENDAR IMPLEMENTATION
// =============================================================================

// SaveHoliday saves a custom holiday. A missing ID is generated.
func (s *Store) SaveHoliday(ctx context.Context, h generic.Holiday) (generic.Holiday, error) {
	if h.Date.IsZero() {
		return h, &generic.FieldError{Field: "date", Value: "", Err: generic.ErrInvalidDate}
	}
	if strings.TrimSpace(h.Name) == "" {
		return h, &generic.InvalidArgumentError{Argument: "name", Reason: "must not be empty"}
	}
	if h.ID == "" {
		h.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO holidays (id, date, name, recurring, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date, name) DO UPDATE SET
			recurring = excluded.recurring
	`
	_, err := s.db.ExecContext(ctx, query,
		h.ID,
		h.Date.String(),
		h.Name,
		h.Recurring,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return h, err
	}

	// On conflict the existing row keeps its ID.
	err = s.db.QueryRowContext(ctx, "SELECT id FROM holidays WHERE date = ? AND name = ?", h.Date.String(), h.Name).Scan(&h.ID)
	return h, err
}

// DeleteHoliday deletes a custom holiday by ID.
func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM holidays WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return generic.ErrHolidayNotFound
	}
	return nil
}

// GetAllHolidays returns every custom holiday (for admin UI).
func (s *Store) GetAllHolidays(ctx context.Context) (generic.HolidayList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, date, name, recurring FROM holidays ORDER BY date ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays generic.HolidayList
	for rows.Next() {
		var h generic.Holiday
		var dateStr string
		if err := rows.Scan(&h.ID, &dateStr, &h.Name, &h.Recurring); err != nil {
			return nil, err
		}
		tp, ok := generic.ParseDate(dateStr)
		if !ok {
			continue
		}
		h.Date = tp
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// Calendar returns a snapshot of the national calendar plus the custom
// holidays, so a whole computation sees one consistent holiday table.
func (s *Store) Calendar(ctx context.Context) (generic.HolidayCalendar, error) {
	custom, err := s.GetAllHolidays(ctx)
	if err != nil {
		return nil, err
	}
	return generic.CompositeCalendar{generic.ItalianCalendar{}, custom}, nil
}

// =============================================================================
// MONTH CLOSINGS
// =============================================================================

// MonthClosing records the frozen summary of a finished month.
type MonthClosing struct {
	ID            string
	PeriodStart   generic.TimePoint
	PeriodEnd     generic.TimePoint
	Status        string // running, completed, failed
	TotalEarnings string
	SummaryJSON   string
	ReportPath    string
	Error         string
	StartedAt     *time.Time
	CompletedAt   *time.Time
	CreatedAt     time.Time
}

const (
	ClosingRunning   = "running"
	ClosingCompleted = "completed"
	ClosingFailed    = "failed"
)

// SaveMonthClosing inserts or updates the closing of a period.
func (s *Store) SaveMonthClosing(ctx context.Context, c MonthClosing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO month_closings (id, period_start, period_end, status, total_earnings,
			summary_json, report_path, error, started_at, completed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(period_start, period_end) DO UPDATE SET
			status = excluded.status,
			total_earnings = excluded.total_earnings,
			summary_json = excluded.summary_json,
			report_path = excluded.report_path,
			error = excluded.error,
			started_at = excluded.started_at,
			completed_at = excluded.completed_at
	`

	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.PeriodStart.String(), c.PeriodEnd.String(), c.Status,
		nullString(c.TotalEarnings), nullString(c.SummaryJSON), nullString(c.ReportPath), nullString(c.Error),
		nullTime(c.StartedAt), nullTime(c.CompletedAt),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetMonthClosing returns the closing of a period, or nil when none exists.
func (s *Store) GetMonthClosing(ctx context.Context, period generic.Period) (*MonthClosing, error) {
	closings, err := s.queryClosings(ctx,
		closingColumns+" WHERE period_start = ? AND period_end = ?",
		period.Start.String(), period.End.String(),
	)
	if err != nil || len(closings) == 0 {
		return nil, err
	}
	return &closings[0], nil
}

// ListMonthClosings returns closings, most recent period first.
func (s *Store) ListMonthClosings(ctx context.Context) ([]MonthClosing, error) {
	return s.queryClosings(ctx, closingColumns+" ORDER BY period_start DESC")
}

const closingColumns = `SELECT id, period_start, period_end, status, total_earnings, summary_json,
	report_path, error, started_at, completed_at, created_at FROM month_closings`

func (s *Store) queryClosings(ctx context.Context, query string, args ...any) ([]MonthClosing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var closings []MonthClosing
	for rows.Next() {
		var c MonthClosing
		var start, end, createdAt string
		var total, summary, report, errText, startedAt, completedAt sql.NullString
		if err := rows.Scan(&c.ID, &start, &end, &c.Status, &total, &summary,
			&report, &errText, &startedAt, &completedAt, &createdAt); err != nil {
			return nil, err
		}
		c.PeriodStart, _ = generic.ParseDate(start)
		c.PeriodEnd, _ = generic.ParseDate(end)
		c.TotalEarnings = total.String
		c.SummaryJSON = summary.String
		c.ReportPath = report.String
		c.Error = errText.String
		c.StartedAt = parseNullTime(startedAt)
		c.CompletedAt = parseNullTime(completedAt)
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		closings = append(closings, c)
	}
	return closings, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"work_entries", "settings", "holidays", "month_closings"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func parseNullTime(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339, ns.String)
	if err != nil {
		return nil
	}
	return &t
}
