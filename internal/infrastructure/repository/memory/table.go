package memory

import "sync"

// table is a read-mostly keyed collection that remembers seed order.
type table[T any] struct {
	mu    sync.RWMutex
	rows  map[string]T
	order []string
}

func newTable[T any](rows []T, key func(T) string) *table[T] {
	t := &table[T]{
		rows:  make(map[string]T, len(rows)),
		order: make([]string, 0, len(rows)),
	}
	for _, row := range rows {
		id := key(row)
		if _, dup := t.rows[id]; !dup {
			t.order = append(t.order, id)
		}
		t.rows[id] = row
	}
	return t
}

func (t *table[T]) get(id string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	return row, ok
}

// filter returns matching rows in seed order. The result is never nil.
func (t *table[T]) filter(keep func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]T, 0)
	for _, id := range t.order {
		if row := t.rows[id]; keep(row) {
			out = append(out, row)
		}
	}
	return out
}
