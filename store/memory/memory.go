// Package memory provides an in-memory earnings.Store.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/earnings-engine/earnings"
	"github.com/warp/earnings-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	entries  map[string]earnings.WorkEntry
	settings *earnings.Settings
}

var _ earnings.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]earnings.WorkEntry),
	}
}

// SaveEntry stores a copy keyed by the normalized date.
func (m *Memory) SaveEntry(_ context.Context, entry earnings.WorkEntry) error {
	tp, ok := generic.ParseDate(entry.Date)
	if !ok {
		return &generic.FieldError{Field: "date", Value: entry.Date, Err: generic.ErrInvalidDate}
	}
	entry.Date = tp.String()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.Date] = earnings.CopyEntry(entry)
	return nil
}

func (m *Memory) GetEntry(_ context.Context, date string) (*earnings.WorkEntry, error) {
	tp, ok := generic.ParseDate(date)
	if !ok {
		return nil, &generic.FieldError{Field: "date", Value: date, Err: generic.ErrInvalidDate}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[tp.String()]
	if !ok {
		return nil, generic.ErrEntryNotFound
	}
	c := earnings.CopyEntry(e)
	return &c, nil
}

func (m *Memory) ListEntries(_ context.Context, period generic.Period) ([]*earnings.WorkEntry, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*earnings.WorkEntry
	for date, e := range m.entries {
		tp, _ := generic.ParseDate(date)
		if !period.Contains(tp) {
			continue
		}
		c := earnings.CopyEntry(e)
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result, nil
}

func (m *Memory) DeleteEntry(_ context.Context, date string) error {
	tp, ok := generic.ParseDate(date)
	if !ok {
		return &generic.FieldError{Field: "date", Value: date, Err: generic.ErrInvalidDate}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[tp.String()]; !ok {
		return generic.ErrEntryNotFound
	}
	delete(m.entries, tp.String())
	return nil
}

func (m *Memory) SaveSettings(_ context.Context, settings earnings.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = &settings
	return nil
}

// GetSettings returns the stored profile, or an empty one (all defaults).
// Pointer fields are shared with the stored profile; treat it as read-only.
func (m *Memory) GetSettings(_ context.Context) (*earnings.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.settings == nil {
		return &earnings.Settings{}, nil
	}
	s := *m.settings
	return &s, nil
}
