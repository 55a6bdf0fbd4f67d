package earnings

import (
	"sync"

	json "github.com/goccy/go-json"

	"github.com/warp/earnings-engine/generic"
)

// CachedCalculator memoizes breakdowns by entry content for UI re-renders.
// The cache is advisory: a hit returns exactly what a miss would compute.
// Changing settings through SetSettings flushes it; Invalidate flushes it
// explicitly (e.g. after the holiday table changed).
type CachedCalculator struct {
	mu          sync.RWMutex
	calc        *Calculator
	settingsKey string
	entries     map[string]*DailyBreakdown
	hits        int
	misses      int
}

// NewCachedCalculator resolves settings and starts with an empty cache.
func NewCachedCalculator(settings *Settings, cal generic.HolidayCalendar) (*CachedCalculator, error) {
	calc, err := NewCalculator(settings, cal)
	if err != nil {
		return nil, err
	}
	key, _ := fingerprint(settings)
	return &CachedCalculator{
		calc:        calc,
		settingsKey: key,
		entries:     make(map[string]*DailyBreakdown),
	}, nil
}

// SetSettings swaps the settings profile; the cache is flushed when the
// profile differs from the current one.
func (c *CachedCalculator) SetSettings(settings *Settings) error {
	calc, err := NewCalculator(settings, c.Calendar())
	if err != nil {
		return err
	}
	key, ok := fingerprint(settings)

	c.mu.Lock()
	defer c.mu.Unlock()
	if ok && key == c.settingsKey {
		return nil
	}
	c.calc = calc
	c.settingsKey = key
	c.entries = make(map[string]*DailyBreakdown)
	return nil
}

// Calendar returns the holiday calendar in use.
func (c *CachedCalculator) Calendar() generic.HolidayCalendar {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.calc.Calendar()
}

// Invalidate drops every cached breakdown.
func (c *CachedCalculator) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*DailyBreakdown)
}

// Compute returns a copy of the cached breakdown or computes and stores it.
func (c *CachedCalculator) Compute(entry *WorkEntry) (*DailyBreakdown, error) {
	if entry == nil {
		return nil, &generic.InvalidArgumentError{Argument: "entry", Reason: "must not be nil"}
	}
	key, ok := fingerprint(entry)
	if !ok {
		// Unencodable entries bypass the cache.
		b, err := c.calculator().Compute(entry)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.misses++
		c.mu.Unlock()
		return b, nil
	}

	c.mu.RLock()
	cached, ok := c.entries[key]
	calc := c.calc
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return cached.Clone(), nil
	}

	b, err := calc.Compute(entry)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	// Settings may have changed while computing; only store under the same calculator.
	if c.calc == calc {
		c.entries[key] = b
	}
	c.misses++
	c.mu.Unlock()
	return b.Clone(), nil
}

// Stats returns hit and miss counters.
func (c *CachedCalculator) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// Len returns the number of cached breakdowns.
func (c *CachedCalculator) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *CachedCalculator) calculator() *Calculator {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.calc
}

var marshalKey = json.Marshal

// fingerprint serializes v; identical content gives identical keys.
// It reports false when v cannot be encoded.
func fingerprint(v any) (string, bool) {
	data, err := marshalKey(v)
	if err != nil {
		return "", false
	}
	return string(data), true
}
