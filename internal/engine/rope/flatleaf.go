package rope

import (
	"slices"
	"time"

	"github.com/dshills/cellrope/internal/cell"
	"github.com/dshills/cellrope/internal/charreg"
	"github.com/dshills/cellrope/internal/style"
)

// LineMeta is line-level metadata carried by a FlatLeaf.
type LineMeta struct {
	Timestamp time.Time
	RTL       bool
}

// FlatLeaf is an owned, resizable cell buffer. It is the only sequence
// kind that supports in-place writes; callers must not write to a leaf
// another rope can see.
type FlatLeaf struct {
	cells []cell.Cell
	ext   *style.ExtIndex
	meta  LineMeta
}

// NewFlatLeaf returns a leaf holding a copy of cells.
func NewFlatLeaf(cells []cell.Cell) *FlatLeaf {
	return &FlatLeaf{cells: slices.Clone(cells)}
}

// Len implements Sequence.
func (f *FlatLeaf) Len() int {
	return len(f.cells)
}

// CellAt implements Sequence.
func (f *FlatLeaf) CellAt(i int) cell.Cell {
	checkIndex(i, len(f.cells))
	return f.cells[i]
}

// Hydrate implements Sequence.
func (f *FlatLeaf) Hydrate(r Range) []cell.Cell {
	return hydrate(f, r)
}

func (f *FlatLeaf) appendCells(dst []cell.Cell, r Range) []cell.Cell {
	checkRange(r, len(f.cells))
	return append(dst, f.cells[r.Start:r.End]...)
}

// ExternalAttributes implements Sequence.
func (f *FlatLeaf) ExternalAttributes(i int) (style.ExtAttr, bool) {
	checkIndex(i, len(f.cells))
	if f.ext == nil {
		return style.ExtAttr{}, false
	}
	return f.ext.Get(i)
}

// BuildDeltaMapping implements Sequence.
func (f *FlatLeaf) BuildDeltaMapping(r Range, b *DeltaBuilder) {
	checkRange(r, len(f.cells))
	for _, c := range f.cells[r.Start:r.End] {
		b.AppendCell(c)
	}
}

// DeltaString implements Sequence.
func (f *FlatLeaf) DeltaString(r Range, res charreg.Resolver) *DeltaString {
	return deltaString(f, r, res)
}

// MutableClone implements Sequence. The returned rope owns a deep copy.
func (f *FlatLeaf) MutableClone() *Rope {
	rp := New()
	if len(f.cells) > 0 {
		rp.appendOwned(f.Copy())
	}
	return rp
}

// HasEqualContent implements Sequence.
func (f *FlatLeaf) HasEqualContent(r Range, cells []cell.Cell) bool {
	checkRange(r, len(f.cells))
	return slices.Equal(f.cells[r.Start:r.End], cells)
}

// Meta returns the line metadata.
func (f *FlatLeaf) Meta() LineMeta {
	return f.meta
}

// SetMeta replaces the line metadata.
func (f *FlatLeaf) SetMeta(m LineMeta) {
	f.meta = m
}

// Delete removes the cells in r.
func (f *FlatLeaf) Delete(r Range) {
	checkRange(r, len(f.cells))
	if r.Empty() {
		return
	}
	f.cells = slices.Delete(f.cells, r.Start, r.End)
	if f.ext != nil {
		f.ext.Delete(r.Start, r.End)
	}
}

// Insert inserts cells before index at.
func (f *FlatLeaf) Insert(at int, cells ...cell.Cell) {
	checkRange(Range{Start: at, End: at}, len(f.cells))
	if len(cells) == 0 {
		return
	}
	f.cells = slices.Insert(f.cells, at, cells...)
	if f.ext != nil {
		f.ext.Insert(at, len(cells))
	}
}

// Append adds cells at the end.
func (f *FlatLeaf) Append(cells ...cell.Cell) {
	f.cells = append(f.cells, cells...)
}

// SetCell overwrites cell i.
func (f *FlatLeaf) SetCell(i int, c cell.Cell) {
	checkIndex(i, len(f.cells))
	f.cells[i] = c
}

// SetCode overwrites the code of cell i, keeping its style and every flag
// except the complex bit.
func (f *FlatLeaf) SetCode(i int, code uint16, complex bool) {
	checkIndex(i, len(f.cells))
	c := &f.cells[i]
	c.Code = code
	if complex {
		c.Flags |= cell.FlagComplex
	} else {
		c.Flags &^= cell.FlagComplex
	}
}

// SetExternalAttributes stores a for cell i. A zero a clears the entry.
func (f *FlatLeaf) SetExternalAttributes(i int, a style.ExtAttr) {
	checkIndex(i, len(f.cells))
	if f.ext == nil {
		if a.IsZero() {
			return
		}
		f.ext = style.NewExtIndex()
	}
	f.ext.Set(i, a)
}

// Copy returns a deep copy of the leaf.
func (f *FlatLeaf) Copy() *FlatLeaf {
	out := &FlatLeaf{cells: slices.Clone(f.cells), meta: f.meta}
	if f.ext != nil {
		out.ext = f.ext.Copy()
	}
	return out
}

// copyFrom builds an owned leaf holding the cells of r in s, external
// attributes included.
func copyFrom(s Sequence, r Range) *FlatLeaf {
	f := &FlatLeaf{cells: s.appendCells(make([]cell.Cell, 0, r.Len()), r)}
	for i := r.Start; i < r.End; i++ {
		if a, ok := s.ExternalAttributes(i); ok {
			f.SetExternalAttributes(i-r.Start, a)
		}
	}
	return f
}
