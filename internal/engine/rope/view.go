package rope

import (
	"github.com/dshills/cellrope/internal/cell"
	"github.com/dshills/cellrope/internal/charreg"
	"github.com/dshills/cellrope/internal/style"
)

// View is a zero-copy window onto a contiguous range of another sequence.
// The base of a View is never itself a View.
type View struct {
	base Sequence
	r    Range
}

// NewView returns a view of r within base. A View base is unwrapped and
// the ranges composed.
func NewView(base Sequence, r Range) *View {
	checkRange(r, base.Len())
	if v, ok := base.(*View); ok {
		return &View{base: v.base, r: r.Shift(v.r.Start)}
	}
	return &View{base: base, r: r}
}

// Base returns the viewed sequence.
func (v *View) Base() Sequence {
	return v.base
}

// Range returns the viewed range in base coordinates.
func (v *View) Range() Range {
	return v.r
}

func (v *View) toBase(r Range) Range {
	checkRange(r, v.r.Len())
	return r.Shift(v.r.Start)
}

// Len implements Sequence.
func (v *View) Len() int {
	return v.r.Len()
}

// CellAt implements Sequence.
func (v *View) CellAt(i int) cell.Cell {
	checkIndex(i, v.r.Len())
	return v.base.CellAt(v.r.Start + i)
}

// Hydrate implements Sequence.
func (v *View) Hydrate(r Range) []cell.Cell {
	return hydrate(v, r)
}

func (v *View) appendCells(dst []cell.Cell, r Range) []cell.Cell {
	return v.base.appendCells(dst, v.toBase(r))
}

// ExternalAttributes implements Sequence.
func (v *View) ExternalAttributes(i int) (style.ExtAttr, bool) {
	checkIndex(i, v.r.Len())
	return v.base.ExternalAttributes(v.r.Start + i)
}

// BuildDeltaMapping implements Sequence.
func (v *View) BuildDeltaMapping(r Range, b *DeltaBuilder) {
	v.base.BuildDeltaMapping(v.toBase(r), b)
}

// DeltaString implements Sequence.
func (v *View) DeltaString(r Range, res charreg.Resolver) *DeltaString {
	return deltaString(v, r, res)
}

// MutableClone implements Sequence. Views over immutable leaves stay
// shared; a FlatLeaf base is copied.
func (v *View) MutableClone() *Rope {
	rp := New()
	if v.r.Empty() {
		return rp
	}
	if _, ok := v.base.(*FlatLeaf); ok {
		rp.appendOwned(copyFrom(v.base, v.r))
		return rp
	}
	rp.Append(v)
	return rp
}

// HasEqualContent implements Sequence.
func (v *View) HasEqualContent(r Range, cells []cell.Cell) bool {
	return v.base.HasEqualContent(v.toBase(r), cells)
}
