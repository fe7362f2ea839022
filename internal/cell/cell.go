// Package cell defines the fixed-size value stored in every terminal column.
//
// A Cell holds a 16-bit code and a handful of flags. When FlagComplex is
// set the code is a reference into a complex-character registry rather than
// a code point. Codes in the private-use band [PrivateBegin, PrivateEnd] on
// non-complex cells are placeholders: they occupy a column but contribute
// no text.
package cell

import (
	"fmt"

	"github.com/dshills/cellrope/internal/style"
)

// Private-use band reserved for non-content placeholders.
const (
	PrivateBegin uint16 = 0xF8F0
	PrivateEnd   uint16 = 0xF8FE

	// DWCRight is the right half of a double-width character.
	DWCRight uint16 = 0xF8F0
	// TabFiller pads the columns a tab advanced over.
	TabFiller uint16 = 0xF8F1
	// Bogus marks a cell whose content could not be represented.
	Bogus uint16 = 0xF8F2
	// DWCSkip fills the last column when a double-width character wrapped.
	DWCSkip uint16 = 0xF8F3
)

// Flags qualify how a cell's code is interpreted.
type Flags uint8

const (
	// FlagComplex marks Code as a registry reference.
	FlagComplex Flags = 1 << iota
	// FlagImage marks Code as an image tile reference.
	FlagImage
	// FlagWideLead marks the first column of a double-width character.
	FlagWideLead
	// FlagProtected marks a cell protected from selective erase.
	FlagProtected
	// FlagURL marks a cell whose hyperlink lives in the external attributes.
	FlagURL
)

// String returns a human-readable representation of the flags.
func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	names := []struct {
		flag Flags
		name string
	}{
		{FlagComplex, "complex"},
		{FlagImage, "image"},
		{FlagWideLead, "wide"},
		{FlagProtected, "protected"},
		{FlagURL, "url"},
	}
	out := ""
	for _, n := range names {
		if f&n.flag == 0 {
			continue
		}
		if out != "" {
			out += "|"
		}
		out += n.name
	}
	if out == "" {
		return "unknown"
	}
	return out
}

// Cell is one terminal column.
type Cell struct {
	Code  uint16
	Flags Flags
	Style style.ID
}

// Simple returns a cell holding the BMP code point r.
// Code points outside the BMP cannot be stored directly; they must be
// interned and stored as complex references.
func Simple(r rune) Cell {
	if r < 0 || r > 0xFFFF {
		panic(fmt.Sprintf("cell: code point %U does not fit a simple cell", r))
	}
	return Cell{Code: uint16(r)}
}

// Complex returns a cell referencing registry entry code.
func Complex(code uint16) Cell {
	return Cell{Code: code, Flags: FlagComplex}
}

// Placeholder returns a non-content cell with the given private-use code.
func Placeholder(code uint16) Cell {
	if code < PrivateBegin || code > PrivateEnd {
		panic(fmt.Sprintf("cell: %#04x is not in the private-use band", code))
	}
	return Cell{Code: code}
}

// FromBytes returns one simple cell per byte, all styled id.
func FromBytes(b []byte, id style.ID) []Cell {
	out := make([]Cell, len(b))
	for i, c := range b {
		out[i] = Cell{Code: uint16(c), Style: id}
	}
	return out
}

// WithStyle returns a copy of c styled id.
func (c Cell) WithStyle(id style.ID) Cell {
	c.Style = id
	return c
}

// IsComplex reports whether Code is a registry reference.
func (c Cell) IsComplex() bool {
	return c.Flags&FlagComplex != 0
}

// IsPlaceholder reports whether the cell occupies a column without content.
func (c Cell) IsPlaceholder() bool {
	return !c.IsComplex() && c.Code >= PrivateBegin && c.Code <= PrivateEnd
}

// IsPrivateUse reports whether r falls in the placeholder band and therefore
// cannot be stored as a simple cell without being misread.
func IsPrivateUse(r rune) bool {
	return r >= rune(PrivateBegin) && r <= rune(PrivateEnd)
}

// String returns a debug representation.
func (c Cell) String() string {
	switch {
	case c.IsComplex():
		return fmt.Sprintf("cx#%d/%s/s%d", c.Code, c.Flags, c.Style)
	case c.IsPlaceholder():
		return fmt.Sprintf("ph%#04x/s%d", c.Code, c.Style)
	default:
		return fmt.Sprintf("%q/%s/s%d", rune(c.Code), c.Flags, c.Style)
	}
}
