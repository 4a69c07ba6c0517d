// Package ordered provides a map that remembers insertion order.
package ordered

// Map is a keyed collection that iterates in insertion order. Replacing an
// existing key keeps its position. The zero value is not usable; call New.
type Map[K comparable, V any] struct {
	keys  []K
	index map[K]int
	vals  map[K]V
}

func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		index: make(map[K]int),
		vals:  make(map[K]V),
	}
}

// FromSlice builds a Map from items in order, keyed by key. Later duplicates
// replace earlier ones in place.
func FromSlice[K comparable, V any](items []V, key func(V) K) *Map[K, V] {
	m := New[K, V]()
	for _, it := range items {
		m.Set(key(it), it)
	}
	return m
}

func (m *Map[K, V]) Len() int { return len(m.keys) }

func (m *Map[K, V]) Get(k K) (V, bool) {
	v, ok := m.vals[k]
	return v, ok
}

func (m *Map[K, V]) Has(k K) bool {
	_, ok := m.vals[k]
	return ok
}

// Set replaces the value in place when k exists and appends otherwise.
func (m *Map[K, V]) Set(k K, v V) {
	if _, ok := m.vals[k]; !ok {
		m.index[k] = len(m.keys)
		m.keys = append(m.keys, k)
	}
	m.vals[k] = v
}

// Delete removes k and reports whether it was present.
func (m *Map[K, V]) Delete(k K) bool {
	i, ok := m.index[k]
	if !ok {
		return false
	}
	delete(m.vals, k)
	delete(m.index, k)
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	for j := i; j < len(m.keys); j++ {
		m.index[m.keys[j]] = j
	}
	return true
}

// Update applies fn to every value in order and stores the result.
func (m *Map[K, V]) Update(fn func(V) V) {
	for _, k := range m.keys {
		m.vals[k] = fn(m.vals[k])
	}
}

// DeleteFunc removes every entry for which fn returns true.
func (m *Map[K, V]) DeleteFunc(fn func(V) bool) {
	kept := m.keys[:0]
	for _, k := range m.keys {
		if fn(m.vals[k]) {
			delete(m.vals, k)
			delete(m.index, k)
			continue
		}
		m.index[k] = len(kept)
		kept = append(kept, k)
	}
	clear(m.keys[len(kept):])
	m.keys = kept
}

// Values returns a copy of the values in order.
func (m *Map[K, V]) Values() []V {
	out := make([]V, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.vals[k])
	}
	return out
}

// Clear removes every entry.
func (m *Map[K, V]) Clear() {
	m.keys = nil
	clear(m.index)
	clear(m.vals)
}
