// Package encode turns UTF-8 text into terminal cells.
//
// Text is split into grapheme clusters and measured. A cluster that is a
// single BMP code point outside the placeholder band becomes a simple
// cell; anything else is interned in a charreg.Table and stored as a
// complex reference. Double-width clusters take two columns: a lead cell
// flagged cell.FlagWideLead followed by a cell.DWCRight placeholder.
package encode

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/dshills/cellrope/internal/cell"
	"github.com/dshills/cellrope/internal/charreg"
	"github.com/dshills/cellrope/internal/engine/rope"
	"github.com/dshills/cellrope/internal/style"
)

// ErrNoRegistry is returned when text needs a complex cell but the
// Encoder has no registry to intern it in.
var ErrNoRegistry = errors.New("encode: complex cluster without a registry")

// Encoder converts strings to cells.
type Encoder struct {
	// Registry receives clusters that do not fit a simple cell.
	Registry *charreg.Table

	// AmbiguousWide treats East Asian ambiguous-width characters as wide.
	AmbiguousWide bool
}

// New returns an Encoder interning into reg.
func New(reg *charreg.Table, ambiguousWide bool) *Encoder {
	return &Encoder{Registry: reg, AmbiguousWide: ambiguousWide}
}

func (e *Encoder) condition() *runewidth.Condition {
	c := runewidth.NewCondition()
	c.EastAsianWidth = e.AmbiguousWide
	return c
}

// Width returns the number of columns s occupies.
func (e *Encoder) Width(s string) int {
	cond := e.condition()
	w := 0
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.StepString(s, state)
		if len(cluster) > 1 && isASCII(cluster) {
			w += len(cluster)
			continue
		}
		w += clusterWidth(cond, cluster)
	}
	return w
}

func clusterWidth(cond *runewidth.Condition, cluster string) int {
	if cond.StringWidth(cluster) >= 2 {
		return 2
	}
	return 1
}

// Cells encodes s styled id. On error no registry references are kept.
func (e *Encoder) Cells(s string, id style.ID) ([]cell.Cell, error) {
	cond := e.condition()
	out := make([]cell.Cell, 0, len(s))
	var interned []uint16

	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.StepString(s, state)

		// CR LF is one cluster; keep it one cell per byte like Leaf does.
		if len(cluster) > 1 && isASCII(cluster) {
			for i := 0; i < len(cluster); i++ {
				out = append(out, cell.Simple(rune(cluster[i])).WithStyle(id))
			}
			continue
		}

		c, err := e.clusterCell(cluster)
		if err != nil {
			e.release(interned)
			return nil, err
		}
		if c.IsComplex() {
			interned = append(interned, c.Code)
		}
		c.Style = id

		if clusterWidth(cond, cluster) == 2 {
			c.Flags |= cell.FlagWideLead
			out = append(out, c, cell.Placeholder(cell.DWCRight).WithStyle(id))
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (e *Encoder) clusterCell(cluster string) (cell.Cell, error) {
	r, size := utf8.DecodeRuneInString(cluster)
	if size == len(cluster) && r <= 0xFFFF && !cell.IsPrivateUse(r) {
		return cell.Simple(r), nil
	}
	if e.Registry == nil {
		return cell.Cell{}, fmt.Errorf("%w: %q", ErrNoRegistry, cluster)
	}
	code, err := e.Registry.Intern(cluster)
	if err != nil {
		return cell.Cell{}, fmt.Errorf("encode: intern %q: %w", cluster, err)
	}
	return cell.Complex(code), nil
}

func (e *Encoder) release(codes []uint16) {
	for _, code := range codes {
		e.Registry.Release(code)
	}
}

// Leaf encodes s as a rope leaf: a ByteLeaf when s is pure ASCII, a
// FlatLeaf otherwise.
func (e *Encoder) Leaf(s string, id style.ID) (rope.Sequence, error) {
	if isASCII(s) {
		return rope.ByteLeafString(s, id), nil
	}
	cells, err := e.Cells(s, id)
	if err != nil {
		return nil, err
	}
	return rope.NewFlatLeaf(cells), nil
}

// Write encodes s styled id and appends it to b. Runs of ASCII cells go
// in as bytes so the builder keeps them in ByteLeaves.
func (e *Encoder) Write(b *rope.Builder, s string, id style.ID) error {
	cells, err := e.Cells(s, id)
	if err != nil {
		return err
	}
	for len(cells) > 0 {
		n := 0
		for n < len(cells) && isByteCell(cells[n]) {
			n++
		}
		if n > 0 {
			p := make([]byte, n)
			for i := range p {
				p[i] = byte(cells[i].Code)
			}
			b.WriteBytes(p, id)
			cells = cells[n:]
			continue
		}
		for n < len(cells) && !isByteCell(cells[n]) {
			n++
		}
		b.WriteCells(cells[:n]...)
		cells = cells[n:]
	}
	return nil
}

func isByteCell(c cell.Cell) bool {
	return c.Flags == 0 && c.Code < utf8.RuneSelf
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
