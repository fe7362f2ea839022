package history

import (
	"errors"
	"sync"
	"time"

	"github.com/dshills/cellrope/internal/engine/rope"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultMaxEntries is used when New is given a non-positive limit.
const DefaultMaxEntries = 1000

type entry struct {
	command   Command
	timestamp time.Time
}

// Info describes a stacked command.
type Info struct {
	Description string
	Timestamp   time.Time
}

// History manages undo/redo state for a rope.
type History struct {
	mu sync.Mutex

	undoStack []entry
	redoStack []entry

	grouping  bool
	groupName string
	groupCmds []Command

	maxEntries int
}

// New creates a history keeping at most maxEntries undo units.
func New(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{maxEntries: maxEntries}
}

// Execute runs cmd on r and pushes it.
func (h *History) Execute(cmd Command, r *rope.Rope) error {
	if err := cmd.Execute(r); err != nil {
		return err
	}
	h.Push(cmd)
	return nil
}

// Push adds an already applied command to the undo stack and clears the
// redo stack.
func (h *History) Push(cmd Command) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		h.groupCmds = append(h.groupCmds, cmd)
		return
	}
	h.pushLocked(cmd)
}

func (h *History) pushLocked(cmd Command) {
	h.undoStack = append(h.undoStack, entry{command: cmd, timestamp: time.Now()})
	h.redoStack = nil

	if excess := len(h.undoStack) - h.maxEntries; excess > 0 {
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo reverses the most recent command.
func (h *History) Undo(r *rope.Rope) error {
	return h.move(r, &h.undoStack, &h.redoStack, ErrNothingToUndo, Command.Undo)
}

// Redo re-applies the most recently undone command.
func (h *History) Redo(r *rope.Rope) error {
	return h.move(r, &h.redoStack, &h.undoStack, ErrNothingToRedo, Command.Execute)
}

// move pops from src, runs fn and pushes onto dst. The entry stays on src
// if fn fails.
func (h *History) move(r *rope.Rope, src, dst *[]entry, empty error, fn func(Command, *rope.Rope) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(*src) == 0 {
		return empty
	}
	e := (*src)[len(*src)-1]
	if err := fn(e.command, r); err != nil {
		return err
	}
	*src = (*src)[:len(*src)-1]
	*dst = append(*dst, e)
	return nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	return h.UndoCount() > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	return h.RedoCount() > 0
}

// UndoCount returns the number of undo operations available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo operations available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// PeekUndo describes the next undo without performing it.
func (h *History) PeekUndo() (Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return Info{}, false
	}
	e := h.undoStack[len(h.undoStack)-1]
	return Info{Description: e.command.Description(), Timestamp: e.timestamp}, true
}

// BeginGroup starts a command group. Nested calls are ignored.
func (h *History) BeginGroup(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		return
	}
	h.grouping = true
	h.groupName = name
	h.groupCmds = nil
}

// EndGroup pushes everything since BeginGroup as one CompoundCommand.
func (h *History) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.grouping {
		return
	}
	h.grouping = false
	if len(h.groupCmds) > 0 {
		h.pushLocked(&CompoundCommand{Name: h.groupName, Commands: h.groupCmds})
	}
	h.groupCmds = nil
}

// CancelGroup drops the open group without adding to history.
// Note: Commands already executed still affect the rope!
func (h *History) CancelGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.grouping = false
	h.groupCmds = nil
}

// IsGrouping returns true if currently in a command group.
func (h *History) IsGrouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.grouping
}

// Clear removes all undo/redo history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = nil
	h.redoStack = nil
	h.grouping = false
	h.groupCmds = nil
}

// MaxEntries returns the maximum number of undo entries.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}
