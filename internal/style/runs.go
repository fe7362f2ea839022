package style

import (
	"fmt"
	"iter"
	"sort"
)

// Runs is the read contract for a run-length style map over a range of
// cells. Positions are relative to the start of the map.
type Runs interface {
	// Len returns the number of cells covered.
	Len() int

	// RunsIn yields (style, run length) pairs covering [start, end) in order.
	// Runs are clipped to the requested range.
	RunsIn(start, end int) iter.Seq2[ID, int]

	// ExternalAttributes returns the out-of-band attributes at cell i, if any.
	ExternalAttributes(i int) (ExtAttr, bool)
}

// Run is a contiguous range of cells sharing a style.
type Run struct {
	Style ID
	Len   int
}

// RunMap is an immutable run-length Runs implementation.
// Slicing a RunMap shares the underlying run list.
type RunMap struct {
	runs  []Run
	ends  []int // ends[i] is the cumulative cell count through runs[i]
	start int   // cells of runs[0] hidden by slicing
	n     int
	ext   *ExtIndex
}

// Uniform returns a map of n cells all styled id.
func Uniform(id ID, n int) *RunMap {
	if n <= 0 {
		return &RunMap{}
	}
	return &RunMap{
		runs: []Run{{Style: id, Len: n}},
		ends: []int{n},
		n:    n,
	}
}

// Len returns the number of cells covered.
func (m *RunMap) Len() int {
	return m.n
}

// RunCount returns the number of runs visible through this map.
func (m *RunMap) RunCount() int {
	if m.n == 0 {
		return 0
	}
	first := m.runIndex(0)
	last := m.runIndex(m.n - 1)
	return last - first + 1
}

// runIndex returns the index of the run holding cell i (map-relative).
func (m *RunMap) runIndex(i int) int {
	abs := i + m.start
	return sort.Search(len(m.ends), func(k int) bool { return m.ends[k] > abs })
}

// StyleAt returns the style of cell i in O(log runs).
func (m *RunMap) StyleAt(i int) ID {
	if i < 0 || i >= m.n {
		panic(fmt.Sprintf("style: index %d out of range [0, %d)", i, m.n))
	}
	return m.runs[m.runIndex(i)].Style
}

// RunsIn yields the clipped runs covering [start, end).
func (m *RunMap) RunsIn(start, end int) iter.Seq2[ID, int] {
	if start < 0 || end > m.n || start > end {
		panic(fmt.Sprintf("style: range [%d, %d) out of range [0, %d)", start, end, m.n))
	}
	return func(yield func(ID, int) bool) {
		if start == end {
			return
		}
		absStart := start + m.start
		absEnd := end + m.start
		for k := m.runIndex(start); k < len(m.runs) && absStart < absEnd; k++ {
			stop := min(m.ends[k], absEnd)
			if !yield(m.runs[k].Style, stop-absStart) {
				return
			}
			absStart = stop
		}
	}
}

// ExternalAttributes returns the extended attributes at cell i.
func (m *RunMap) ExternalAttributes(i int) (ExtAttr, bool) {
	if m.ext == nil {
		return ExtAttr{}, false
	}
	return m.ext.Get(i)
}

// Slice returns a map over [start, end) sharing this map's runs.
func (m *RunMap) Slice(start, end int) *RunMap {
	if start < 0 || end > m.n || start > end {
		panic(fmt.Sprintf("style: slice [%d, %d) out of range [0, %d)", start, end, m.n))
	}
	out := &RunMap{
		runs:  m.runs,
		ends:  m.ends,
		start: m.start + start,
		n:     end - start,
	}
	if m.ext != nil {
		out.ext = m.ext.Slice(start, end)
	}
	return out
}

// WithExternalAttributes returns a copy of the map that reports ext.
func (m *RunMap) WithExternalAttributes(ext *ExtIndex) *RunMap {
	out := *m
	out.ext = ext
	return &out
}

// RunMapBuilder accumulates runs, coalescing adjacent runs of equal style.
type RunMapBuilder struct {
	runs []Run
	ends []int
	n    int
}

// Add appends n cells of style id.
func (b *RunMapBuilder) Add(id ID, n int) {
	if n <= 0 {
		return
	}
	b.n += n
	if last := len(b.runs) - 1; last >= 0 && b.runs[last].Style == id {
		b.runs[last].Len += n
		b.ends[last] = b.n
		return
	}
	b.runs = append(b.runs, Run{Style: id, Len: n})
	b.ends = append(b.ends, b.n)
}

// Len returns the number of cells added so far.
func (b *RunMapBuilder) Len() int {
	return b.n
}

// Build returns the accumulated map. The builder is reset.
func (b *RunMapBuilder) Build() *RunMap {
	m := &RunMap{runs: b.runs, ends: b.ends, n: b.n}
	*b = RunMapBuilder{}
	return m
}
