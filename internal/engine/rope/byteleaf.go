package rope

import (
	"fmt"

	"github.com/dshills/cellrope/internal/cell"
	"github.com/dshills/cellrope/internal/charreg"
	"github.com/dshills/cellrope/internal/style"
)

// ByteLeaf is an immutable sequence storing one byte per cell. Styles
// come from a run map covering the same cells.
type ByteLeaf struct {
	bytes []byte
	runs  style.Runs
}

// NewByteLeaf wraps b without copying. The caller must not modify b
// afterwards. A nil runs styles every cell with style.Default.
func NewByteLeaf(b []byte, runs style.Runs) *ByteLeaf {
	if runs == nil {
		runs = style.Uniform(style.Default, len(b))
	}
	if runs.Len() != len(b) {
		panic(fmt.Sprintf("rope: byte leaf has %d cells but %d styled", len(b), runs.Len()))
	}
	return &ByteLeaf{bytes: b, runs: runs}
}

// ByteLeafString returns a leaf holding the bytes of s, all styled id.
func ByteLeafString(s string, id style.ID) *ByteLeaf {
	return NewByteLeaf([]byte(s), style.Uniform(id, len(s)))
}

// Len implements Sequence.
func (l *ByteLeaf) Len() int {
	return len(l.bytes)
}

// Bytes returns the backing bytes. The slice must not be modified.
func (l *ByteLeaf) Bytes() []byte {
	return l.bytes
}

// Runs returns the style runs.
func (l *ByteLeaf) Runs() style.Runs {
	return l.runs
}

// CellAt implements Sequence.
func (l *ByteLeaf) CellAt(i int) cell.Cell {
	checkIndex(i, len(l.bytes))
	c := cell.Cell{Code: uint16(l.bytes[i])}
	for id := range l.runs.RunsIn(i, i+1) {
		c.Style = id
	}
	return c
}

// Hydrate implements Sequence.
func (l *ByteLeaf) Hydrate(r Range) []cell.Cell {
	return hydrate(l, r)
}

func (l *ByteLeaf) appendCells(dst []cell.Cell, r Range) []cell.Cell {
	checkRange(r, len(l.bytes))
	i := r.Start
	for id, n := range l.runs.RunsIn(r.Start, r.End) {
		for _, b := range l.bytes[i : i+n] {
			dst = append(dst, cell.Cell{Code: uint16(b), Style: id})
		}
		i += n
	}
	return dst
}

// ExternalAttributes implements Sequence.
func (l *ByteLeaf) ExternalAttributes(i int) (style.ExtAttr, bool) {
	checkIndex(i, len(l.bytes))
	return l.runs.ExternalAttributes(i)
}

// BuildDeltaMapping implements Sequence. Bytes never expand.
func (l *ByteLeaf) BuildDeltaMapping(r Range, b *DeltaBuilder) {
	checkRange(r, len(l.bytes))
	b.appendBytes(l.bytes[r.Start:r.End])
}

// DeltaString implements Sequence.
func (l *ByteLeaf) DeltaString(r Range, res charreg.Resolver) *DeltaString {
	return deltaString(l, r, res)
}

// MutableClone implements Sequence. The leaf itself is shared.
func (l *ByteLeaf) MutableClone() *Rope {
	return mutableClone(l)
}

// HasEqualContent implements Sequence.
func (l *ByteLeaf) HasEqualContent(r Range, cells []cell.Cell) bool {
	return hasEqualContent(l, r, cells)
}

// Slice returns a leaf over the cells in r sharing the same storage.
func (l *ByteLeaf) Slice(r Range) *ByteLeaf {
	checkRange(r, len(l.bytes))
	var runs style.Runs
	if m, ok := l.runs.(*style.RunMap); ok {
		runs = m.Slice(r.Start, r.End)
	} else {
		var rb style.RunMapBuilder
		for id, n := range l.runs.RunsIn(r.Start, r.End) {
			rb.Add(id, n)
		}
		runs = rb.Build()
	}
	return &ByteLeaf{bytes: l.bytes[r.Start:r.End:r.End], runs: runs}
}

// ToFlat returns an owned FlatLeaf holding the same cells.
func (l *ByteLeaf) ToFlat() *FlatLeaf {
	f := &FlatLeaf{cells: l.appendCells(make([]cell.Cell, 0, len(l.bytes)), Range{End: len(l.bytes)})}
	for i := range l.bytes {
		if a, ok := l.runs.ExternalAttributes(i); ok {
			f.SetExternalAttributes(i, a)
		}
	}
	return f
}
