package rope

import (
	"errors"
	"fmt"

	"github.com/dshills/cellrope/internal/cell"
	"github.com/dshills/cellrope/internal/charreg"
	"github.com/dshills/cellrope/internal/style"
)

// ErrCorrupt is wrapped by every error CheckInvariants returns.
var ErrCorrupt = errors.New("rope: corrupt segment list")

// Rope is a mutable concatenation of cell sequences.
//
// Leaves appended to a rope are shared, not copied. Structural edits
// never write to a leaf; in-place writes go only to FlatLeaves the rope
// created itself and copy anything else first. The zero value is not
// usable; use New.
type Rope struct {
	segs    []Segment
	dropped int
	owned   map[*FlatLeaf]struct{}

	cache     TextCache
	resolver  charreg.Resolver
	factor    int
	check     bool
	onPromote func(Range)
}

// New creates an empty rope.
func New(opts ...Option) *Rope {
	r := &Rope{
		resolver: charreg.Literal,
		factor:   DefaultExpansionFactor,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FromCells creates a rope holding a copy of cells.
func FromCells(cells []cell.Cell, opts ...Option) *Rope {
	r := New(opts...)
	if len(cells) > 0 {
		r.appendOwned(NewFlatLeaf(cells))
	}
	return r
}

// FromBytes creates a rope over b, one cell per byte, styled id.
// b is not copied and must not be modified afterwards.
func FromBytes(b []byte, id style.ID, opts ...Option) *Rope {
	r := New(opts...)
	r.Append(NewByteLeaf(b, style.Uniform(id, len(b))))
	return r
}

// FromSequence creates a rope holding s.
func FromSequence(s Sequence, opts ...Option) *Rope {
	r := New(opts...)
	r.Append(s)
	return r
}

// Len implements Sequence.
func (r *Rope) Len() int {
	return r.lastEnd() - r.dropped
}

// Full returns the range covering the whole rope.
func (r *Rope) Full() Range {
	return Range{End: r.Len()}
}

// Resolver returns the registry Text uses.
func (r *Rope) Resolver() charreg.Resolver {
	return r.resolver
}

// CellAt implements Sequence.
func (r *Rope) CellAt(i int) cell.Cell {
	checkIndex(i, r.Len())
	abs := i + r.dropped
	k := r.locate(abs)
	return r.segs[k].Seq.CellAt(abs - r.segStart(k))
}

// Hydrate implements Sequence.
func (r *Rope) Hydrate(rg Range) []cell.Cell {
	return hydrate(r, rg)
}

func (r *Rope) appendCells(dst []cell.Cell, rg Range) []cell.Cell {
	r.walk(rg, func(seq Sequence, local Range) bool {
		dst = seq.appendCells(dst, local)
		return true
	})
	return dst
}

// ExternalAttributes implements Sequence.
func (r *Rope) ExternalAttributes(i int) (style.ExtAttr, bool) {
	checkIndex(i, r.Len())
	abs := i + r.dropped
	k := r.locate(abs)
	return r.segs[k].Seq.ExternalAttributes(abs - r.segStart(k))
}

// BuildDeltaMapping implements Sequence.
func (r *Rope) BuildDeltaMapping(rg Range, b *DeltaBuilder) {
	r.walk(rg, func(seq Sequence, local Range) bool {
		seq.BuildDeltaMapping(local, b)
		return true
	})
}

// DeltaString implements Sequence. The most recent result is cached
// until an edit overlaps its range.
func (r *Rope) DeltaString(rg Range, res charreg.Resolver) *DeltaString {
	checkRange(rg, r.Len())
	return r.cache.StringFor(rg, res, func() *DeltaString {
		b := NewDeltaBuilder(rg.Len(), res, r.factor)
		r.BuildDeltaMapping(rg, b)
		return b.Build()
	})
}

// Text returns the text of rg resolved with the rope's registry.
func (r *Rope) Text(rg Range) *DeltaString {
	return r.DeltaString(rg, r.resolver)
}

// Cache returns the rope's text cache.
func (r *Rope) Cache() *TextCache {
	return &r.cache
}

// HasEqualContent implements Sequence.
func (r *Rope) HasEqualContent(rg Range, cells []cell.Cell) bool {
	checkRange(rg, r.Len())
	if rg.Len() != len(cells) {
		return false
	}
	equal := true
	off := 0
	r.walk(rg, func(seq Sequence, local Range) bool {
		n := local.Len()
		equal = seq.HasEqualContent(local, cells[off:off+n])
		off += n
		return equal
	})
	return equal
}

// Equals reports whether both ropes hold the same cells.
func (r *Rope) Equals(other *Rope) bool {
	if r.Len() != other.Len() {
		return false
	}
	scratch := getCells(other.Len())
	defer putCells(scratch)
	*scratch = other.appendCells((*scratch)[:0], other.Full())
	return r.HasEqualContent(r.Full(), *scratch)
}

// MutableClone implements Sequence. FlatLeaves are deep-copied, with
// views of one leaf still sharing the copy; immutable leaves are shared.
// The clone keeps the receiver's options and cached text.
func (r *Rope) MutableClone() *Rope {
	out := &Rope{
		segs:      make([]Segment, len(r.segs)),
		dropped:   r.dropped,
		cache:     r.cache.clone(),
		resolver:  r.resolver,
		factor:    r.factor,
		check:     r.check,
		onPromote: r.onPromote,
	}
	copies := make(map[*FlatLeaf]*FlatLeaf)
	dup := func(f *FlatLeaf) *FlatLeaf {
		c, ok := copies[f]
		if !ok {
			c = f.Copy()
			copies[f] = c
			out.own(c)
		}
		return c
	}
	for k, seg := range r.segs {
		switch s := seg.Seq.(type) {
		case *FlatLeaf:
			seg.Seq = dup(s)
		case *View:
			if f, ok := s.base.(*FlatLeaf); ok {
				seg.Seq = &View{base: dup(f), r: s.r}
			}
		}
		out.segs[k] = seg
	}
	return out
}

// Compact replaces the segment list with a single owned FlatLeaf.
func (r *Rope) Compact() {
	if r.Len() == 0 {
		r.reset()
		return
	}
	f := copyFrom(r, r.Full())
	r.reset()
	r.appendOwned(f)
}

// SegmentCount returns the number of segments.
func (r *Rope) SegmentCount() int {
	return len(r.segs)
}

// DroppedHead returns the number of cells trimmed from the front since
// the rope was last emptied.
func (r *Rope) DroppedHead() int {
	return r.dropped
}

// CheckInvariants verifies the segment list.
func (r *Rope) CheckInvariants() error {
	if len(r.segs) == 0 && r.dropped != 0 {
		return fmt.Errorf("%w: empty rope with %d dropped cells", ErrCorrupt, r.dropped)
	}
	prev := r.dropped
	for k, seg := range r.segs {
		n := seg.Seq.Len()
		switch s := seg.Seq.(type) {
		case *Rope:
			return fmt.Errorf("%w: segment %d is a nested rope", ErrCorrupt, k)
		case *View:
			switch s.base.(type) {
			case *View, *Rope:
				return fmt.Errorf("%w: segment %d is a view over %T", ErrCorrupt, k, s.base)
			}
		}
		if n == 0 {
			return fmt.Errorf("%w: segment %d is empty", ErrCorrupt, k)
		}
		if seg.End != prev+n {
			return fmt.Errorf("%w: segment %d ends at %d, want %d", ErrCorrupt, k, seg.End, prev+n)
		}
		prev = seg.End
	}
	return nil
}

func (r *Rope) verify() {
	if !r.check {
		return
	}
	if err := r.CheckInvariants(); err != nil {
		panic(err.Error())
	}
}

func (r *Rope) reset() {
	clear(r.segs)
	r.segs = r.segs[:0]
	r.dropped = 0
	r.owned = nil
}

// appendOwned appends f and records that only this rope can see it.
func (r *Rope) appendOwned(f *FlatLeaf) {
	r.Append(f)
	r.own(f)
}

// String returns a debug summary.
func (r *Rope) String() string {
	return fmt.Sprintf("Rope{len=%d segs=%d dropped=%d}", r.Len(), len(r.segs), r.dropped)
}
