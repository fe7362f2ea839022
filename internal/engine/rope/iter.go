package rope

import (
	"iter"

	"github.com/dshills/cellrope/internal/cell"
)

// Segments returns an iterator over the segment list. Ends are in
// visible coordinates. The sequences are for reading only: appending
// them to another rope lets later in-place writes on this rope show
// through.
func (r *Rope) Segments() iter.Seq2[int, Segment] {
	return func(yield func(int, Segment) bool) {
		for k, seg := range r.segs {
			seg.End -= r.dropped
			if !yield(k, seg) {
				return
			}
		}
	}
}

// Cells returns an iterator over the cells in rg with their indices.
// The rope must not be modified during iteration.
func (r *Rope) Cells(rg Range) iter.Seq2[int, cell.Cell] {
	checkRange(rg, r.Len())
	return func(yield func(int, cell.Cell) bool) {
		buf := getCells(0)
		defer putCells(buf)
		i := rg.Start
		r.walk(rg, func(seq Sequence, local Range) bool {
			*buf = seq.appendCells((*buf)[:0], local)
			for _, c := range *buf {
				if !yield(i, c) {
					return false
				}
				i++
			}
			return true
		})
	}
}

// CellIterator steps through the cells of a sequence one at a time.
type CellIterator struct {
	seq  Sequence
	r    Range
	pos  int
	cell cell.Cell
}

// NewCellIterator returns an iterator over the cells of s in r.
func NewCellIterator(s Sequence, r Range) *CellIterator {
	checkRange(r, s.Len())
	return &CellIterator{seq: s, r: r, pos: r.Start - 1}
}

// Next advances to the next cell.
// Returns true if there is a cell, false if iteration is complete.
func (it *CellIterator) Next() bool {
	if it.pos+1 >= it.r.End {
		it.pos = it.r.End
		return false
	}
	it.pos++
	it.cell = it.seq.CellAt(it.pos)
	return true
}

// Cell returns the current cell.
func (it *CellIterator) Cell() cell.Cell {
	return it.cell
}

// Index returns the index of the current cell.
func (it *CellIterator) Index() int {
	return it.pos
}
