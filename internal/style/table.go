// Package style holds the style side of terminal line content.
//
// Cells never embed a full attribute record. They carry a compact ID that
// a Table maps back to a tcell.Style, and long runs of identically styled
// cells are described once by a run-length RunMap. Attributes too rare or
// too large to live in the run map (hyperlinks, underline colors) go into
// a sparse ExtIndex keyed by cell position.
package style

import (
	"sync"

	"github.com/gdamore/tcell/v2"
)

// ID is a compact token naming an interned style record.
type ID uint32

// Default is the ID of tcell.StyleDefault in every Table.
const Default ID = 0

// Table interns tcell.Style records and hands out stable IDs.
// A Table is safe for concurrent use; it is normally shared by every line
// of a terminal session.
type Table struct {
	mu     sync.RWMutex
	styles []tcell.Style
	ids    map[tcell.Style]ID
}

// NewTable creates a table with the default style pre-registered as Default.
func NewTable() *Table {
	t := &Table{
		styles: make([]tcell.Style, 0, 16),
		ids:    make(map[tcell.Style]ID, 16),
	}
	t.styles = append(t.styles, tcell.StyleDefault)
	t.ids[tcell.StyleDefault] = Default
	return t
}

// Intern returns the ID for st, registering it on first use.
func (t *Table) Intern(st tcell.Style) ID {
	t.mu.RLock()
	id, ok := t.ids[st]
	t.mu.RUnlock()
	if ok {
		return id
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// Re-check after acquiring the write lock
	if id, ok := t.ids[st]; ok {
		return id
	}
	id = ID(len(t.styles))
	t.styles = append(t.styles, st)
	t.ids[st] = id
	return id
}

// Lookup returns the style registered under id.
// Unknown IDs report false and tcell.StyleDefault.
func (t *Table) Lookup(id ID) (tcell.Style, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(id) >= len(t.styles) {
		return tcell.StyleDefault, false
	}
	return t.styles[id], true
}

// Len returns the number of interned styles, including Default.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.styles)
}
