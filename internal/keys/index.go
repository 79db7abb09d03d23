// Package keys implements the key manager of §4.F: primary-key allocation
// (scalar contiguous, non-numeric scalar retry, composite Cartesian
// sampling) plus the unique_index auxiliary state shared by PK and UNIQUE
// enforcement in the row engine.
package keys

import (
	"strings"
	"sync"

	"github.com/dbfiller/dbfiller/internal/value"
)

// Manager owns the per-table pk_counter and unique_index auxiliary state of
// §3. Its methods are safe for concurrent use, so the table workers of one
// dependency level (§5) can share a Manager; each worker only touches its
// own table's entries.
type Manager struct {
	mu       sync.Mutex
	counters map[string]map[string]int64
	sets     map[string]map[string]map[string]struct{}
}

// NewManager returns an empty Manager with all auxiliary state seeded lazily
// per table.
func NewManager() *Manager {
	return &Manager{
		counters: make(map[string]map[string]int64),
		sets:     make(map[string]map[string]map[string]struct{}),
	}
}

// NextBlock allocates a contiguous range [start, start+n) from table.column's
// counter, starting at 1 on first use, and advances the counter by n.
func (m *Manager) NextBlock(table, column string, n int) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	cols, ok := m.counters[table]
	if !ok {
		cols = make(map[string]int64)
		m.counters[table] = cols
	}
	start := cols[column]
	if start == 0 {
		start = 1
	}
	cols[column] = start + int64(n)
	return start
}

// uniqueKey names which unique_index bucket a column tuple belongs to (PK
// or one UNIQUE constraint), keyed by its column names joined in the order
// given. tupleKey encodes one tuple of values within a bucket.
func uniqueKey(columns []string) string {
	return strings.Join(columns, "\x1f")
}

func tupleKey(values []value.Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		if v.IsNull() {
			parts[i] = "\x00NULL\x00"
		} else {
			parts[i] = v.Kind.String() + ":" + v.String()
		}
	}
	return strings.Join(parts, "\x1e")
}

// Contains reports whether the given tuple already occupies table's
// unique_index bucket for columns.
func (m *Manager) Contains(table string, columns []string, values []value.Value) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	buckets, ok := m.sets[table]
	if !ok {
		return false
	}
	set, ok := buckets[uniqueKey(columns)]
	if !ok {
		return false
	}
	_, found := set[tupleKey(values)]
	return found
}

// Insert records the tuple as occupying table's unique_index bucket for
// columns.
func (m *Manager) Insert(table string, columns []string, values []value.Value) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buckets, ok := m.sets[table]
	if !ok {
		buckets = make(map[string]map[string]struct{})
		m.sets[table] = buckets
	}
	key := uniqueKey(columns)
	set, ok := buckets[key]
	if !ok {
		set = make(map[string]struct{})
		buckets[key] = set
	}
	set[tupleKey(values)] = struct{}{}
}

// Remove drops the tuple from table's unique_index bucket for columns, used
// by the repair pass (§4.H) when a row is deleted.
func (m *Manager) Remove(table string, columns []string, values []value.Value) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buckets, ok := m.sets[table]
	if !ok {
		return
	}
	set, ok := buckets[uniqueKey(columns)]
	if !ok {
		return
	}
	delete(set, tupleKey(values))
}
