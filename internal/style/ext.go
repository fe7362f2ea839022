package style

import (
	"iter"
	"maps"

	"github.com/gdamore/tcell/v2"
)

// ExtAttr holds attributes that do not fit the run map.
type ExtAttr struct {
	UnderlineColor tcell.Color
	URL            string
	BlockID        string
}

// IsZero reports whether no extended attribute is set.
func (a ExtAttr) IsZero() bool {
	return a == ExtAttr{}
}

// ExtIndex is a sparse cell-position → ExtAttr index.
// The zero value is not usable; use NewExtIndex.
type ExtIndex struct {
	attrs map[int]ExtAttr
}

// NewExtIndex creates an empty index.
func NewExtIndex() *ExtIndex {
	return &ExtIndex{attrs: make(map[int]ExtAttr)}
}

// Get returns the attributes at cell i.
func (x *ExtIndex) Get(i int) (ExtAttr, bool) {
	a, ok := x.attrs[i]
	return a, ok
}

// Set stores attrs at cell i. A zero ExtAttr clears the entry.
func (x *ExtIndex) Set(i int, a ExtAttr) {
	if a.IsZero() {
		delete(x.attrs, i)
		return
	}
	x.attrs[i] = a
}

// Len returns the number of cells carrying attributes.
func (x *ExtIndex) Len() int {
	return len(x.attrs)
}

// Insert opens a gap of n cells at position at, shifting later entries right.
func (x *ExtIndex) Insert(at, n int) {
	if n <= 0 || len(x.attrs) == 0 {
		return
	}
	shifted := make(map[int]ExtAttr, len(x.attrs))
	for k, v := range x.attrs {
		if k >= at {
			k += n
		}
		shifted[k] = v
	}
	x.attrs = shifted
}

// Delete removes entries in [start, end) and shifts later entries left.
func (x *ExtIndex) Delete(start, end int) {
	if end <= start || len(x.attrs) == 0 {
		return
	}
	n := end - start
	shifted := make(map[int]ExtAttr, len(x.attrs))
	for k, v := range x.attrs {
		switch {
		case k < start:
			shifted[k] = v
		case k >= end:
			shifted[k-n] = v
		}
	}
	x.attrs = shifted
}

// Slice returns a new index holding the entries of [start, end), rebased to 0.
func (x *ExtIndex) Slice(start, end int) *ExtIndex {
	out := NewExtIndex()
	for k, v := range x.attrs {
		if k >= start && k < end {
			out.attrs[k-start] = v
		}
	}
	return out
}

// Copy returns a deep copy of the index.
func (x *ExtIndex) Copy() *ExtIndex {
	return &ExtIndex{attrs: maps.Clone(x.attrs)}
}

// All yields every (cell, attributes) entry in unspecified order.
func (x *ExtIndex) All() iter.Seq2[int, ExtAttr] {
	return maps.All(x.attrs)
}
