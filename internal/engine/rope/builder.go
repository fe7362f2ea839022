package rope

import (
	"github.com/dshills/cellrope/internal/cell"
	"github.com/dshills/cellrope/internal/style"
)

// MaxLeafCells is the largest leaf a Builder produces.
const MaxLeafCells = 512

// Builder provides efficient incremental construction of a rope.
// Byte writes coalesce into ByteLeaves and cell writes into FlatLeaves.
type Builder struct {
	leaves []Sequence

	bytes []byte
	runs  style.RunMapBuilder
	cells []cell.Cell

	total int
}

// NewBuilder creates a new rope builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WriteBytes appends one cell per byte, styled id.
func (b *Builder) WriteBytes(p []byte, id style.ID) {
	if len(p) == 0 {
		return
	}
	b.flushCells()
	b.total += len(p)
	for len(p) > 0 {
		take := min(len(p), MaxLeafCells-len(b.bytes))
		b.bytes = append(b.bytes, p[:take]...)
		b.runs.Add(id, take)
		p = p[take:]
		if len(b.bytes) >= MaxLeafCells {
			b.flushBytes()
		}
	}
}

// WriteString appends one cell per byte of s, styled id.
func (b *Builder) WriteString(s string, id style.ID) {
	b.WriteBytes([]byte(s), id)
}

// WriteCell appends a single cell.
func (b *Builder) WriteCell(c cell.Cell) {
	b.WriteCells(c)
}

// WriteCells appends cells.
func (b *Builder) WriteCells(cells ...cell.Cell) {
	if len(cells) == 0 {
		return
	}
	b.flushBytes()
	b.total += len(cells)
	for len(cells) > 0 {
		take := min(len(cells), MaxLeafCells-len(b.cells))
		b.cells = append(b.cells, cells[:take]...)
		cells = cells[take:]
		if len(b.cells) >= MaxLeafCells {
			b.flushCells()
		}
	}
}

func (b *Builder) flushBytes() {
	if len(b.bytes) == 0 {
		return
	}
	b.leaves = append(b.leaves, NewByteLeaf(b.bytes, b.runs.Build()))
	b.bytes = nil
}

func (b *Builder) flushCells() {
	if len(b.cells) == 0 {
		return
	}
	b.leaves = append(b.leaves, &FlatLeaf{cells: b.cells})
	b.cells = nil
}

// Len returns the total number of cells written.
func (b *Builder) Len() int {
	return b.total
}

// Reset clears the builder for reuse.
func (b *Builder) Reset() {
	*b = Builder{}
}

// Build creates the rope from accumulated data.
// After calling Build, the builder is reset.
func (b *Builder) Build(opts ...Option) *Rope {
	b.flushBytes()
	b.flushCells()
	r := New(opts...)
	for _, leaf := range b.leaves {
		if f, ok := leaf.(*FlatLeaf); ok {
			r.appendOwned(f)
			continue
		}
		r.Append(leaf)
	}
	b.Reset()
	return r
}
