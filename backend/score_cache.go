package main

import "sort"

const scoreCacheDefaultEntries = 200

type scoreKey struct {
	board string
	row   int
	col   int
}

type cacheSlot struct {
	value float64
	hits  uint32
}

// ScoreCacheEntry is the externally visible form of a cached value,
// used by the cache inspection endpoint and the persistence snapshot.
type ScoreCacheEntry struct {
	Board string  `json:"board"`
	Row   int     `json:"row"`
	Col   int     `json:"col"`
	Value float64 `json:"value"`
	Hits  uint32  `json:"hits"`
}

// ScoreCache memoizes move values by (board hash, row, col). It is
// bounded: storing into a full cache evicts the oldest inserted entry.
// The cache is private to one Scorer and relies on the caller for
// serialization.
type ScoreCache struct {
	capacity int
	slots    map[scoreKey]*cacheSlot
	order    []scoreKey
}

func NewScoreCache(capacity int) *ScoreCache {
	if capacity <= 0 {
		capacity = scoreCacheDefaultEntries
	}
	return &ScoreCache{
		capacity: capacity,
		slots:    make(map[scoreKey]*cacheSlot, capacity),
	}
}

func (sc *ScoreCache) Probe(board string, r, c int) (float64, bool) {
	slot, ok := sc.slots[scoreKey{board: board, row: r, col: c}]
	if !ok {
		return 0, false
	}
	slot.hits++
	return slot.value, true
}

func (sc *ScoreCache) Store(board string, r, c int, value float64) {
	key := scoreKey{board: board, row: r, col: c}
	if slot, ok := sc.slots[key]; ok {
		slot.value = value
		return
	}
	if len(sc.slots) >= sc.capacity {
		oldest := sc.order[0]
		sc.order = sc.order[1:]
		delete(sc.slots, oldest)
	}
	sc.slots[key] = &cacheSlot{value: value}
	sc.order = append(sc.order, key)
}

func (sc *ScoreCache) Clear() {
	sc.slots = make(map[scoreKey]*cacheSlot, sc.capacity)
	sc.order = nil
}

func (sc *ScoreCache) Count() int {
	return len(sc.slots)
}

func (sc *ScoreCache) Capacity() int {
	if sc == nil {
		return 0
	}
	return sc.capacity
}

// TopEntries returns cached values sorted by hit count for the cache
// inspection endpoint; ties keep insertion order.
func (sc *ScoreCache) TopEntries(offset, limit int) ([]ScoreCacheEntry, int) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	entries := sc.snapshotEntries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Hits > entries[j].Hits
	})
	total := len(entries)
	if offset >= total {
		return []ScoreCacheEntry{}, total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return entries[offset:end], total
}

// snapshotEntries dumps the cache in insertion order so that a restore
// replays Stores and lands in the same eviction order.
func (sc *ScoreCache) snapshotEntries() []ScoreCacheEntry {
	entries := make([]ScoreCacheEntry, 0, len(sc.slots))
	for _, key := range sc.order {
		slot, ok := sc.slots[key]
		if !ok {
			continue
		}
		entries = append(entries, ScoreCacheEntry{
			Board: key.board,
			Row:   key.row,
			Col:   key.col,
			Value: slot.value,
			Hits:  slot.hits,
		})
	}
	return entries
}

func (sc *ScoreCache) loadEntries(entries []ScoreCacheEntry) {
	sc.Clear()
	for _, e := range entries {
		sc.Store(e.Board, e.Row, e.Col, e.Value)
		if slot, ok := sc.slots[scoreKey{board: e.Board, row: e.Row, col: e.Col}]; ok {
			slot.hits = e.Hits
		}
	}
}
