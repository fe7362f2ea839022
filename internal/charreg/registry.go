// Package charreg maps 16-bit reference codes to multi-code-point strings.
//
// Terminal cells hold a single 16-bit code. Grapheme clusters that do not
// fit (combining sequences, emoji with modifiers, anything outside the BMP)
// are interned here and the cell stores the returned code with the complex
// flag set.
package charreg

import (
	"errors"
	"math"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// Errors returned by Table operations.
var (
	// ErrRegistryFull indicates every 16-bit code is in use.
	ErrRegistryFull = errors.New("complex character registry is full")

	// ErrEmptyCluster indicates an attempt to intern an empty string.
	ErrEmptyCluster = errors.New("cannot intern an empty cluster")
)

// Resolver looks up the string a cell stands for.
//
// Resolve returns false for simple cells and for complex references the
// resolver does not know; callers treat the latter as literal code points.
// Implementations must be comparable (pointer types) because callers cache
// results keyed by resolver.
type Resolver interface {
	Resolve(code uint16, complex bool) (string, bool)
}

type literal struct{}

func (*literal) Resolve(uint16, bool) (string, bool) { return "", false }

// Literal never resolves anything; every complex reference degrades to its
// raw code.
var Literal Resolver = &literal{}

type entry struct {
	text string
	refs int
}

// Table is an interning registry. It is safe for concurrent use.
type Table struct {
	mu        sync.RWMutex
	entries   []entry
	codes     map[string]uint16
	free      []uint16
	normalize bool
	limit     int
}

// Option configures a Table.
type Option func(*Table)

// WithNormalization makes Intern NFC-normalize clusters first, so
// canonically equivalent spellings share a code.
func WithNormalization() Option {
	return func(t *Table) {
		t.normalize = true
	}
}

// WithLimit caps the number of live codes. Mostly useful in tests.
func WithLimit(n int) Option {
	return func(t *Table) {
		if n > 0 && n <= math.MaxUint16+1 {
			t.limit = n
		}
	}
}

// NewTable creates an empty registry.
func NewTable(opts ...Option) *Table {
	t := &Table{
		codes: make(map[string]uint16),
		limit: math.MaxUint16 + 1,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Intern returns the code for s, registering it on first use.
// Every successful call takes a reference that Release gives back.
func (t *Table) Intern(s string) (uint16, error) {
	if s == "" {
		return 0, ErrEmptyCluster
	}
	if t.normalize {
		s = norm.NFC.String(s)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if code, ok := t.codes[s]; ok {
		t.entries[code].refs++
		return code, nil
	}

	var code uint16
	switch {
	case len(t.free) > 0:
		code = t.free[len(t.free)-1]
		t.free = t.free[:len(t.free)-1]
		t.entries[code] = entry{text: s, refs: 1}
	case len(t.entries) < t.limit:
		code = uint16(len(t.entries))
		t.entries = append(t.entries, entry{text: s, refs: 1})
	default:
		return 0, ErrRegistryFull
	}
	t.codes[s] = code
	return code, nil
}

// Resolve implements Resolver.
func (t *Table) Resolve(code uint16, complex bool) (string, bool) {
	if !complex {
		return "", false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(code) >= len(t.entries) || t.entries[code].refs == 0 {
		return "", false
	}
	return t.entries[code].text, true
}

// Release drops one reference to code. When the last reference goes the
// code is recycled. Releasing an unknown code is a no-op.
func (t *Table) Release(code uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if int(code) >= len(t.entries) || t.entries[code].refs == 0 {
		return
	}
	e := &t.entries[code]
	e.refs--
	if e.refs > 0 {
		return
	}
	delete(t.codes, e.text)
	e.text = ""
	t.free = append(t.free, code)
}

// Stats describes registry occupancy.
type Stats struct {
	Live     int
	Free     int
	Capacity int
}

// Stats returns the current occupancy.
func (t *Table) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Stats{
		Live:     len(t.codes),
		Free:     len(t.free),
		Capacity: t.limit,
	}
}
