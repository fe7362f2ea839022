package rope

import (
	"slices"

	"github.com/dshills/cellrope/internal/cell"
	"github.com/dshills/cellrope/internal/style"
)

// Append adds s at the end. A *Rope argument is spliced segment by
// segment; its leaves become shared.
func (r *Rope) Append(s Sequence) {
	r.Insert(r.Len(), s)
}

// AppendCells adds a copy of cells at the end.
func (r *Rope) AppendCells(cells ...cell.Cell) {
	if len(cells) > 0 {
		r.appendOwned(NewFlatLeaf(cells))
	}
}

// Insert inserts s before cell at.
func (r *Rope) Insert(at int, s Sequence) {
	n := r.Len()
	checkRange(Range{Start: at, End: at}, n)
	ps := pieces(s)
	if len(ps) == 0 {
		return
	}
	abs := at + r.dropped
	k := len(r.segs)
	if at < n {
		k = r.splitAt(abs)
	}
	segs, end := makeSegments(ps, abs)
	r.cache.Invalidate(Range{Start: at, End: n + end - abs})
	r.segs = slices.Insert(r.segs, k, segs...)
	r.shiftEnds(k+len(segs), end-abs)
	r.verify()
}

// Delete removes the cells in rg.
func (r *Rope) Delete(rg Range) {
	n := r.Len()
	checkRange(rg, n)
	if rg.Empty() {
		return
	}
	r.cache.Invalidate(Range{Start: rg.Start, End: n})
	switch {
	case rg.Start == 0 && rg.End == n:
		r.reset()
	case rg.Start == 0:
		r.deleteHead(rg.End + r.dropped)
	case rg.End == n:
		r.deleteTail(rg.Start + r.dropped)
	default:
		r.deleteMiddle(rg.Start+r.dropped, rg.End+r.dropped)
	}
	r.verify()
}

// deleteHead drops everything before abs. Later segments keep their
// ends; only dropped moves.
func (r *Rope) deleteHead(abs int) {
	k := r.splitAt(abs)
	stale := r.holdsOwned(r.segs[:k])
	clear(r.segs[:k])
	r.segs = r.segs[k:]
	r.dropped = abs
	if stale {
		r.pruneOwned()
	}
}

// deleteTail drops everything from abs on.
func (r *Rope) deleteTail(abs int) {
	k := r.splitAt(abs)
	stale := r.holdsOwned(r.segs[k:])
	clear(r.segs[k:])
	r.segs = r.segs[:k]
	if stale {
		r.pruneOwned()
	}
}

func (r *Rope) deleteMiddle(lo, hi int) {
	a := r.splitAt(lo)
	b := r.splitAt(hi)
	stale := r.holdsOwned(r.segs[a:b])
	r.segs = slices.Delete(r.segs, a, b)
	r.shiftEnds(a, lo-hi)
	if stale {
		r.pruneOwned()
	}
}

// Replace replaces the cells in rg with s in a single splice.
func (r *Rope) Replace(rg Range, s Sequence) {
	n := r.Len()
	checkRange(rg, n)
	ps := pieces(s)
	if rg.Empty() && len(ps) == 0 {
		return
	}
	lo, hi := rg.Start+r.dropped, rg.End+r.dropped
	a := r.splitAt(lo)
	b := r.splitAt(hi)
	segs, end := makeSegments(ps, lo)
	added := end - lo
	r.cache.Invalidate(Range{Start: rg.Start, End: max(n, n-rg.Len()+added)})

	stale := r.holdsOwned(r.segs[a:b])
	r.segs = slices.Replace(r.segs, a, b, segs...)
	r.shiftEnds(a+len(segs), added-rg.Len())
	if len(r.segs) == 0 {
		r.dropped = 0
	}
	if stale {
		r.pruneOwned()
	}
	r.verify()
}

// Truncate drops every cell from n on.
func (r *Rope) Truncate(n int) {
	r.Delete(Range{Start: n, End: r.Len()})
}

// Clear removes every cell.
func (r *Rope) Clear() {
	r.cache.Reset()
	r.reset()
}

// SetCell overwrites cell i.
func (r *Rope) SetCell(i int, c cell.Cell) {
	f, off := r.writable(i)
	f.SetCell(off, c)
	r.cache.Invalidate(Range{Start: i, End: i + 1})
}

// SetCode overwrites the code of cell i, keeping its style and every flag
// except the complex bit.
func (r *Rope) SetCode(i int, code uint16, complex bool) {
	f, off := r.writable(i)
	f.SetCode(off, code, complex)
	r.cache.Invalidate(Range{Start: i, End: i + 1})
}

// SetExternalAttributes stores a for cell i.
func (r *Rope) SetExternalAttributes(i int, a style.ExtAttr) {
	f, off := r.writable(i)
	f.SetExternalAttributes(off, a)
}

// writable returns an owned leaf holding cell i and the cell's offset in
// it, copying the containing segment first if the rope does not own it.
func (r *Rope) writable(i int) (*FlatLeaf, int) {
	checkIndex(i, r.Len())
	abs := i + r.dropped
	k := r.locate(abs)
	seg := r.segs[k]
	start := seg.End - seg.Seq.Len()
	off := abs - start

	if f := flatBase(seg.Seq); f != nil && r.owns(f) {
		if v, ok := seg.Seq.(*View); ok {
			off += v.r.Start
		}
		return f, off
	}

	f := copyFrom(seg.Seq, fullRange(seg.Seq))
	r.segs[k].Seq = f
	r.own(f)
	if r.onPromote != nil {
		r.onPromote(Range{Start: start - r.dropped, End: seg.End - r.dropped})
	}
	return f, off
}
