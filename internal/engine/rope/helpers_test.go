package rope

import (
	"testing"
	"unicode/utf16"

	"github.com/dshills/cellrope/internal/cell"
	"github.com/dshills/cellrope/internal/charreg"
	"github.com/dshills/cellrope/internal/style"
)

// mapResolver is a fixed registry. It can resolve a code to the empty
// string, which a charreg.Table refuses to intern.
type mapResolver struct {
	m map[uint16]string
}

func (r *mapResolver) Resolve(code uint16, complex bool) (string, bool) {
	if !complex {
		return "", false
	}
	s, ok := r.m[code]
	return s, ok
}

const unresolvedCode = 9

var testResolver = &mapResolver{m: map[uint16]string{
	1: "😀",
	2: "\u00e9",
	3: "",
	4: "\U0001F469\u200d\U0001F4BB",
	5: "ß",
}}

// ascii returns one simple cell per byte of s.
func ascii(s string) []cell.Cell {
	return cell.FromBytes([]byte(s), style.Default)
}

// plain renders simple cells back to a string for comparisons.
func plain(cells []cell.Cell) string {
	out := make([]rune, len(cells))
	for i, c := range cells {
		out[i] = rune(c.Code)
	}
	return string(out)
}

// unitsFor is the reference text of a single cell.
func unitsFor(c cell.Cell, res charreg.Resolver) []uint16 {
	if c.IsPlaceholder() {
		return nil
	}
	if c.IsComplex() {
		if s, ok := res.Resolve(c.Code, true); ok {
			return utf16.Encode([]rune(s))
		}
	}
	return []uint16{c.Code}
}

// referenceText is the reference text of a run of cells.
func referenceText(cells []cell.Cell, res charreg.Resolver) []uint16 {
	var out []uint16
	for _, c := range cells {
		out = append(out, unitsFor(c, res)...)
	}
	return out
}

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}

func checkRope(t testing.TB, r *Rope, want []cell.Cell) {
	t.Helper()
	if err := r.CheckInvariants(); err != nil {
		t.Fatalf("invariants: %v", err)
	}
	if r.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", r.Len(), len(want))
	}
	if !r.HasEqualContent(r.Full(), want) {
		t.Fatalf("content = %v, want %v", r.Hydrate(r.Full()), want)
	}
}
