package agent

import (
	"sort"
	"sync"

	"github.com/hailam/mlchess/internal/board"
)

// Recollection is what the agent remembers about one position.
type Recollection struct {
	TimesEncountered int     `json:"n"`
	AverageValue     float64 `json:"v"`
}

// Experience maps position keys to recollections. It is safe for
// concurrent use.
type Experience struct {
	mu      sync.RWMutex
	entries map[string]Recollection
}

// NewExperience returns an empty experience.
func NewExperience() *Experience {
	return &Experience{entries: make(map[string]Recollection)}
}

// ValueOf returns the remembered value of pos, or 0 if it was never seen.
func (e *Experience) ValueOf(pos *board.Position) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.entries[pos.Key()].AverageValue
}

// Lookup returns the recollection stored for pos.
func (e *Experience) Lookup(pos *board.Position) (Recollection, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r, ok := e.entries[pos.Key()]
	return r, ok
}

// Memorize folds value into the running mean for pos. A zero value for an
// unseen position carries no information and is not stored.
func (e *Experience) Memorize(pos *board.Position, value float64) {
	key := pos.Key()

	e.mu.Lock()
	defer e.mu.Unlock()

	r, ok := e.entries[key]
	if !ok && value == 0 {
		return
	}
	r.TimesEncountered++
	r.AverageValue += (value - r.AverageValue) / float64(r.TimesEncountered)
	e.entries[key] = r
}

// Len returns the number of remembered positions.
func (e *Experience) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.entries)
}

// Purge drops the least encountered positions until at most three quarters
// of threshold remain. It does nothing while Len() <= threshold and returns
// the number of dropped entries.
func (e *Experience) Purge(threshold int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.entries) <= threshold {
		return 0
	}
	keep := threshold * 3 / 4

	type kv struct {
		key string
		n   int
	}
	all := make([]kv, 0, len(e.entries))
	for k, r := range e.entries {
		all = append(all, kv{k, r.TimesEncountered})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].n != all[j].n {
			return all[i].n < all[j].n
		}
		return all[i].key < all[j].key
	})

	drop := len(all) - keep
	for _, x := range all[:drop] {
		delete(e.entries, x.key)
	}
	return drop
}

// Snapshot returns a copy of every recollection keyed by position key.
func (e *Experience) Snapshot() map[string]Recollection {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]Recollection, len(e.entries))
	for k, r := range e.entries {
		out[k] = r
	}
	return out
}

// Restore replaces the experience with entries.
func (e *Experience) Restore(entries map[string]Recollection) {
	m := make(map[string]Recollection, len(entries))
	for k, r := range entries {
		m[k] = r
	}
	e.mu.Lock()
	e.entries = m
	e.mu.Unlock()
}
