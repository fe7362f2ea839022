package rope

import (
	"slices"

	"github.com/dshills/cellrope/internal/cell"
	"github.com/dshills/cellrope/internal/charreg"
	"github.com/dshills/cellrope/internal/style"
)

// Sequence is the read contract shared by every cell container.
//
// The set of implementations is closed: *ByteLeaf, *FlatLeaf, *View and
// *Rope. Ranges passed to any method must lie within [0, Len()].
type Sequence interface {
	// Len returns the number of cells.
	Len() int

	// CellAt returns the cell at index i.
	CellAt(i int) cell.Cell

	// Hydrate returns a dense copy of the cells in r.
	Hydrate(r Range) []cell.Cell

	// ExternalAttributes returns the out-of-band attributes of cell i.
	ExternalAttributes(i int) (style.ExtAttr, bool)

	// BuildDeltaMapping streams the cells of r into b.
	BuildDeltaMapping(r Range, b *DeltaBuilder)

	// DeltaString materializes the text of r.
	DeltaString(r Range, res charreg.Resolver) *DeltaString

	// MutableClone returns a rope holding the same cells that can be
	// mutated without affecting the receiver.
	MutableClone() *Rope

	// HasEqualContent reports whether the cells of r equal cells.
	HasEqualContent(r Range, cells []cell.Cell) bool

	// appendCells appends the cells of r to dst.
	appendCells(dst []cell.Cell, r Range) []cell.Cell
}

func hydrate(s Sequence, r Range) []cell.Cell {
	checkRange(r, s.Len())
	return s.appendCells(make([]cell.Cell, 0, r.Len()), r)
}

func deltaString(s Sequence, r Range, res charreg.Resolver) *DeltaString {
	checkRange(r, s.Len())
	b := NewDeltaBuilder(r.Len(), res, DefaultExpansionFactor)
	s.BuildDeltaMapping(r, b)
	return b.Build()
}

func mutableClone(s Sequence) *Rope {
	rp := New()
	rp.Append(s)
	return rp
}

func hasEqualContent(s Sequence, r Range, cells []cell.Cell) bool {
	checkRange(r, s.Len())
	if r.Len() != len(cells) {
		return false
	}
	scratch := getCells(r.Len())
	defer putCells(scratch)
	*scratch = s.appendCells((*scratch)[:0], r)
	return slices.Equal(*scratch, cells)
}

// fullRange returns the range covering all of s.
func fullRange(s Sequence) Range {
	return Range{End: s.Len()}
}
