package rope

import (
	"fmt"
	"sort"
	"sync"
	"unicode/utf16"

	"github.com/dshills/cellrope/internal/cell"
	"github.com/dshills/cellrope/internal/charreg"
)

// DefaultExpansionFactor is the number of UTF-16 units reserved per cell
// when a DeltaBuilder is sized. Clusters longer than this still fit; the
// buffer grows as usual.
const DefaultExpansionFactor = 3

// DeltaBuilder accumulates the text of a run of cells together with the
// unit-to-cell mapping. A builder is single use: Build hands its buffers
// to the returned DeltaString.
type DeltaBuilder struct {
	units    []uint16
	deltas   []int32
	resolver charreg.Resolver
	cells    int
	declared int
	done     bool
}

// NewDeltaBuilder returns a builder expecting exactly cells cells.
// A factor below one falls back to DefaultExpansionFactor.
func NewDeltaBuilder(cells int, res charreg.Resolver, factor int) *DeltaBuilder {
	if factor < 1 {
		factor = DefaultExpansionFactor
	}
	if res == nil {
		res = charreg.Literal
	}
	return &DeltaBuilder{
		units:    make([]uint16, 0, cells*factor),
		deltas:   make([]int32, 0, cells),
		resolver: res,
		declared: cells,
	}
}

func (b *DeltaBuilder) checkOpen() {
	if b.done {
		panic("rope: DeltaBuilder used after Build")
	}
}

// AppendCell adds one cell.
func (b *DeltaBuilder) AppendCell(c cell.Cell) {
	b.checkOpen()
	idx := b.cells
	b.cells++

	if c.IsPlaceholder() {
		return
	}
	if c.IsComplex() {
		if s, ok := b.resolver.Resolve(c.Code, true); ok {
			for _, r := range s {
				b.units = utf16.AppendRune(b.units, r)
				for len(b.deltas) < len(b.units) {
					b.deltas = append(b.deltas, int32(idx-len(b.deltas)))
				}
			}
			return
		}
	}
	b.deltas = append(b.deltas, int32(idx-len(b.units)))
	b.units = append(b.units, c.Code)
}

// appendBytes adds one simple cell per byte.
func (b *DeltaBuilder) appendBytes(p []byte) {
	b.checkOpen()
	for _, c := range p {
		b.deltas = append(b.deltas, int32(b.cells-len(b.units)))
		b.units = append(b.units, uint16(c))
		b.cells++
	}
}

// Cells returns the number of cells appended so far.
func (b *DeltaBuilder) Cells() int {
	return b.cells
}

// Build finalizes the builder. It panics if the number of appended cells
// differs from the count the builder was created with.
func (b *DeltaBuilder) Build() *DeltaString {
	b.checkOpen()
	if b.cells != b.declared {
		panic(fmt.Sprintf("rope: DeltaBuilder got %d cells, declared %d", b.cells, b.declared))
	}
	b.done = true
	ds := &DeltaString{units: b.units, deltas: b.deltas, cells: b.cells}
	b.units, b.deltas = nil, nil
	return ds
}

// DeltaString is materialized text with a per-unit mapping back to the
// cells it came from. For every unit t, the originating cell is
// t + Deltas()[t]. Values are immutable.
type DeltaString struct {
	units  []uint16
	deltas []int32
	cells  int

	once sync.Once
	str  string
}

// Units returns the UTF-16 text. The slice must not be modified.
func (d *DeltaString) Units() []uint16 {
	return d.units
}

// Deltas returns the per-unit cell offsets. The slice must not be modified.
func (d *DeltaString) Deltas() []int32 {
	return d.deltas
}

// Len returns the text length in UTF-16 units.
func (d *DeltaString) Len() int {
	return len(d.units)
}

// CellCount returns the number of cells the text was built from.
func (d *DeltaString) CellCount() int {
	return d.cells
}

// String returns the text as UTF-8.
func (d *DeltaString) String() string {
	d.once.Do(func() {
		d.str = string(utf16.Decode(d.units))
	})
	return d.str
}

// CellIndex returns the cell that produced unit t. t == Len() maps to
// CellCount().
func (d *DeltaString) CellIndex(t int) int {
	if t == len(d.units) {
		return d.cells
	}
	checkIndex(t, len(d.units))
	return t + int(d.deltas[t])
}

// TextOffset returns the first unit produced by cell c or by any cell
// after it. Cells that produced no text map to the next unit.
func (d *DeltaString) TextOffset(c int) int {
	if c < 0 || c > d.cells {
		panic(fmt.Sprintf("rope: cell %d out of range [0, %d]", c, d.cells))
	}
	return sort.Search(len(d.units), func(t int) bool {
		return t+int(d.deltas[t]) >= c
	})
}

// Substring returns the text produced by the cells in r.
func (d *DeltaString) Substring(r Range) string {
	checkRange(r, d.cells)
	return string(utf16.Decode(d.units[d.TextOffset(r.Start):d.TextOffset(r.End)]))
}
