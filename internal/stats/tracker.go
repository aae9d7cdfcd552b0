// Package stats tracks query usage: a bounded recent-history list, per-query
// popularity counts, and a total interaction counter, persisted to SQLite.
package stats

import (
	"sort"
	"sync"

	"iconograph/internal/logging"
)

// DefaultRecentLimit bounds the recent-query history.
const DefaultRecentLimit = 10

// Snapshot is a point-in-time copy of the tracker state.
type Snapshot struct {
	RecentQueries     []string       `json:"recentQueries"`
	PopularQueries    map[string]int `json:"popularQueries"`
	TotalInteractions int            `json:"userInteractions"`
}

// QueryCount pairs a query with its popularity count.
type QueryCount struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// Tracker serializes concurrent query recording. State mutations happen only
// through RecordQuery; reads go through Snapshot and TopQueries.
type Tracker struct {
	mu      sync.Mutex
	recent  []string
	popular map[string]int
	total   int
	limit   int
	store   *Store
}

// NewTracker creates an empty tracker. A limit of zero or less falls back to
// the default. The store may be nil for in-memory-only tracking.
func NewTracker(limit int, store *Store) *Tracker {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	t := &Tracker{
		popular: make(map[string]int),
		limit:   limit,
		store:   store,
	}
	if store != nil {
		snap, err := store.Load()
		if err != nil {
			logging.StatsError("load persisted stats: %v", err)
		} else {
			t.recent = snap.RecentQueries
			if len(t.recent) > limit {
				t.recent = t.recent[:limit]
			}
			for q, n := range snap.PopularQueries {
				t.popular[q] = n
			}
			t.total = snap.TotalInteractions
		}
	}
	return t
}

// RecordQuery prepends the query to the recent list, bumps its popularity
// count, and increments the interaction total.
func (t *Tracker) RecordQuery(query string) {
	t.mu.Lock()
	t.recent = append([]string{query}, t.recent...)
	if len(t.recent) > t.limit {
		t.recent = t.recent[:t.limit]
	}
	t.popular[query]++
	t.total++
	snap := t.snapshotLocked()
	t.mu.Unlock()

	if t.store != nil {
		if err := t.store.Save(snap); err != nil {
			logging.StatsError("persist stats: %v", err)
		}
	}
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() Snapshot {
	recent := make([]string, len(t.recent))
	copy(recent, t.recent)
	popular := make(map[string]int, len(t.popular))
	for q, n := range t.popular {
		popular[q] = n
	}
	return Snapshot{
		RecentQueries:     recent,
		PopularQueries:    popular,
		TotalInteractions: t.total,
	}
}

// TopQueries returns the n most popular queries, highest count first. Ties
// break alphabetically so output is stable.
func (t *Tracker) TopQueries(n int) []QueryCount {
	snap := t.Snapshot()

	out := make([]QueryCount, 0, len(snap.PopularQueries))
	for q, c := range snap.PopularQueries {
		out = append(out, QueryCount{Query: q, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Query < out[j].Query
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
