/*
store.go - Persistence interfaces consumed by the engine's callers

PURPOSE:
  The engine never reads or writes storage. These interfaces describe what
  the persistence collaborator must offer so that monthly aggregation, the
  API and the CLI can feed the engine without knowing the storage format.

KEY INTERFACES:
  EntryStore:    One WorkEntry per calendar date (the date is the key)
  SettingsStore: The single contract profile
  Store:         Both

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - store/memory/memory.go: In-memory for tests and the CLI

SEE ALSO:
  - monthly.go: Aggregate, fed by ListEntries
*/
package earnings

import (
	"context"

	"github.com/warp/earnings-engine/generic"
)

// EntryStore persists work entries keyed by date.
type EntryStore interface {
	// SaveEntry inserts or replaces the entry for entry.Date.
	SaveEntry(ctx context.Context, entry WorkEntry) error

	// GetEntry returns generic.ErrEntryNotFound when no entry exists.
	GetEntry(ctx context.Context, date string) (*WorkEntry, error)

	// ListEntries returns entries in [period.Start, period.End], ordered by date.
	ListEntries(ctx context.Context, period generic.Period) ([]*WorkEntry, error)

	// DeleteEntry returns generic.ErrEntryNotFound when no entry exists.
	DeleteEntry(ctx context.Context, date string) error
}

// SettingsStore persists the contract profile.
type SettingsStore interface {
	SaveSettings(ctx context.Context, settings Settings) error

	// GetSettings returns an empty profile (all defaults) when none was saved.
	GetSettings(ctx context.Context) (*Settings, error)
}

// Store is the full persistence collaborator.
type Store interface {
	EntryStore
	SettingsStore
}

// AggregateStored loads the period's entries and settings from s and
// aggregates them.
func AggregateStored(ctx context.Context, s Store, period generic.Period, opts AggregateOptions) (*MonthlySummary, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := s.ListEntries(ctx, period)
	if err != nil {
		return nil, err
	}
	return Aggregate(ctx, period, entries, settings, opts)
}

// CopyEntry returns a deep copy of e.
func CopyEntry(e WorkEntry) WorkEntry {
	if e.Interventions != nil {
		e.Interventions = append([]Intervention(nil), e.Interventions...)
	}
	if e.TravelAllowancePercent != nil {
		p := *e.TravelAllowancePercent
		e.TravelAllowancePercent = &p
	}
	return e
}
