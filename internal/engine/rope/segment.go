package rope

import (
	"fmt"
	"slices"
	"sort"
)

// Segment is one entry of a rope's segment list. End is the cumulative
// cell count through this segment.
type Segment struct {
	Seq Sequence
	End int
}

// Start returns the index of the segment's first cell.
func (s Segment) Start() int {
	return s.End - s.Seq.Len()
}

// Internal positions are absolute: visible index plus r.dropped.

func (r *Rope) segStart(k int) int {
	return r.segs[k].Start()
}

func (r *Rope) lastEnd() int {
	if len(r.segs) == 0 {
		return r.dropped
	}
	return r.segs[len(r.segs)-1].End
}

// locate returns the segment holding absolute cell abs, or len(r.segs)
// if abs is at or past the end.
func (r *Rope) locate(abs int) int {
	return sort.Search(len(r.segs), func(k int) bool {
		return r.segs[k].End > abs
	})
}

// partition replaces segment k with two views split at off.
func (r *Rope) partition(k, off int) {
	seg := r.segs[k]
	n := seg.Seq.Len()
	if off <= 0 || off >= n {
		panic(fmt.Sprintf("rope: partition offset %d outside (0, %d)", off, n))
	}
	start := seg.End - n
	left := Segment{Seq: NewView(seg.Seq, Range{End: off}), End: start + off}
	right := Segment{Seq: NewView(seg.Seq, Range{Start: off, End: n}), End: seg.End}
	r.segs[k] = left
	r.segs = slices.Insert(r.segs, k+1, right)
}

// splitAt makes abs a segment boundary and returns the index of the
// segment starting there.
func (r *Rope) splitAt(abs int) int {
	k := r.locate(abs)
	if k == len(r.segs) {
		return k
	}
	if start := r.segStart(k); start != abs {
		r.partition(k, abs-start)
		return k + 1
	}
	return k
}

func (r *Rope) shiftEnds(from, delta int) {
	if delta == 0 {
		return
	}
	for k := from; k < len(r.segs); k++ {
		r.segs[k].End += delta
	}
}

// walk calls fn with each segment piece covering the visible range rg,
// in order, with the piece's range in segment coordinates.
func (r *Rope) walk(rg Range, fn func(seq Sequence, local Range) bool) {
	checkRange(rg, r.Len())
	lo, hi := rg.Start+r.dropped, rg.End+r.dropped
	for k := r.locate(lo); k < len(r.segs) && lo < hi; k++ {
		start := r.segStart(k)
		stop := min(r.segs[k].End, hi)
		if !fn(r.segs[k].Seq, Range{Start: lo - start, End: stop - start}) {
			return
		}
		lo = stop
	}
}

// share returns the pieces of rg for splicing into another rope. Leaves
// that leave the rope this way are no longer exclusively owned by it.
func (r *Rope) share(rg Range) []Sequence {
	var out []Sequence
	r.walk(rg, func(seq Sequence, local Range) bool {
		if f := flatBase(seq); f != nil {
			delete(r.owned, f)
		}
		if local.Start == 0 && local.End == seq.Len() {
			out = append(out, seq)
		} else {
			out = append(out, NewView(seq, local))
		}
		return true
	})
	return out
}

// pieces flattens s into leaf-level sequences.
func pieces(s Sequence) []Sequence {
	switch s := s.(type) {
	case *Rope:
		return s.share(fullRange(s))
	case *View:
		if base, ok := s.base.(*Rope); ok {
			return base.share(s.r)
		}
	}
	if s.Len() == 0 {
		return nil
	}
	return []Sequence{s}
}

// makeSegments lays out pieces starting at absolute position abs.
func makeSegments(pieces []Sequence, abs int) ([]Segment, int) {
	segs := make([]Segment, len(pieces))
	for i, p := range pieces {
		abs += p.Len()
		segs[i] = Segment{Seq: p, End: abs}
	}
	return segs, abs
}

// flatBase returns the FlatLeaf under seq, if any.
func flatBase(seq Sequence) *FlatLeaf {
	switch s := seq.(type) {
	case *FlatLeaf:
		return s
	case *View:
		if f, ok := s.base.(*FlatLeaf); ok {
			return f
		}
	}
	return nil
}

func (r *Rope) own(f *FlatLeaf) {
	if r.owned == nil {
		r.owned = make(map[*FlatLeaf]struct{})
	}
	r.owned[f] = struct{}{}
}

func (r *Rope) owns(f *FlatLeaf) bool {
	_, ok := r.owned[f]
	return ok
}

// holdsOwned reports whether any of segs is backed by an owned leaf.
func (r *Rope) holdsOwned(segs []Segment) bool {
	if len(r.owned) == 0 {
		return false
	}
	for _, seg := range segs {
		if f := flatBase(seg.Seq); f != nil && r.owns(f) {
			return true
		}
	}
	return false
}

// pruneOwned forgets owned leaves no segment references any more.
func (r *Rope) pruneOwned() {
	live := make(map[*FlatLeaf]struct{}, len(r.owned))
	for _, seg := range r.segs {
		if f := flatBase(seg.Seq); f != nil && r.owns(f) {
			live[f] = struct{}{}
		}
	}
	r.owned = live
}
