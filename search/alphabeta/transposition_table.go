package alphabeta

import (
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"
)

const (
	TTExact = 0x01
	TTLower = 0x02
	TTUpper = 0x03
)

// Rough per-entry cost: the map slot plus the key in the eviction queue.
const entrySize = 48

type TableEntry struct {
	score int16
	flag  uint8
	depth uint8
}

func (t TableEntry) Score() int16 { return t.score }
func (t TableEntry) Flag() uint8  { return t.flag }
func (t TableEntry) Depth() uint8 { return t.depth }

// TranspositionTable maps a position key to the score found for it. It
// is bounded: once full, inserting a new key evicts the key that was
// inserted first. Overwriting an existing key does not change its place
// in line.
type TranspositionTable struct {
	table    map[uint64]TableEntry
	order    []uint64
	head     int
	capacity int

	created   uint64
	lookups   uint64
	hits      uint64
	evictions uint64
}

func NewTranspositionTable(capacity int) *TranspositionTable {
	if capacity < 1 {
		capacity = 1
	}
	return &TranspositionTable{
		table:    make(map[uint64]TableEntry, min(capacity, 1<<16)),
		order:    make([]uint64, 0, min(capacity, 1<<16)),
		capacity: capacity,
	}
}

// ttCapacity clamps the requested number of entries to a fraction of
// system memory.
func ttCapacity(requested int, fractionOfMemory float64) int {
	totalMem := memory.TotalMemory()
	if totalMem == 0 || fractionOfMemory <= 0 {
		return requested
	}
	allowed := int(fractionOfMemory * float64(totalMem) / entrySize)
	capacity := max(min(requested, allowed), 1)
	log.Debug().Int("requested", requested).
		Int("allowed", allowed).
		Int("num-elems", capacity).
		Uint64("total-system-memory-bytes", totalMem).
		Msg("transposition-table-size")
	return capacity
}

func (t *TranspositionTable) lookup(key uint64) (TableEntry, bool) {
	t.lookups++
	e, ok := t.table[key]
	if ok {
		t.hits++
	}
	return e, ok
}

func (t *TranspositionTable) store(key uint64, e TableEntry) {
	if _, ok := t.table[key]; !ok {
		if len(t.order) == t.capacity {
			delete(t.table, t.order[t.head])
			t.order[t.head] = key
			t.head = (t.head + 1) % t.capacity
			t.evictions++
		} else {
			t.order = append(t.order, key)
		}
	}
	t.table[key] = e
	t.created++
}

func (t *TranspositionTable) Len() int {
	return len(t.table)
}

func (t *TranspositionTable) Capacity() int {
	return t.capacity
}
