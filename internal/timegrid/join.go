package timegrid

import "time"

// Index joins timestamps by exact equality.
type Index struct {
	pos map[int64]int
}

// NewIndex indexes ts. The first occurrence of a duplicated timestamp wins.
func NewIndex(ts []time.Time) *Index {
	idx := &Index{pos: make(map[int64]int, len(ts))}
	for i, t := range ts {
		if t.IsZero() {
			continue
		}
		k := t.UnixNano()
		if _, ok := idx.pos[k]; !ok {
			idx.pos[k] = i
		}
	}
	return idx
}

// Lookup returns the row whose timestamp equals t.
func (x *Index) Lookup(t time.Time) (int, bool) {
	if t.IsZero() {
		return 0, false
	}
	i, ok := x.pos[t.UnixNano()]
	return i, ok
}

// Len reports how many distinct timestamps are indexed.
func (x *Index) Len() int { return len(x.pos) }
