package history

import (
	"errors"

	"github.com/dshills/cellrope/internal/engine/rope"
)

// GroupScope closes a group with defer:
//
//	defer h.GroupScope("retype").End()
type GroupScope struct {
	history *History
	active  bool
}

// GroupScope starts a new group scope.
func (h *History) GroupScope(name string) *GroupScope {
	h.BeginGroup(name)
	return &GroupScope{history: h, active: true}
}

// End ends the group scope. Only the first call has effect.
func (g *GroupScope) End() {
	if g.active {
		g.history.EndGroup()
		g.active = false
	}
}

// Cancel cancels the group scope without creating a compound command.
func (g *GroupScope) Cancel() {
	if g.active {
		g.history.CancelGroup()
		g.active = false
	}
}

// Transaction runs fn inside a group. If fn fails the group is cancelled.
func (h *History) Transaction(name string, fn func() error) error {
	h.BeginGroup(name)
	if err := fn(); err != nil {
		h.CancelGroup()
		return err
	}
	h.EndGroup()
	return nil
}

// Atomic runs fn inside a group and undoes its edits on r if fn fails.
// Inside an open group it just runs fn.
func (h *History) Atomic(name string, r *rope.Rope, fn func() error) error {
	if h.IsGrouping() {
		return fn()
	}
	h.BeginGroup(name)
	if err := fn(); err != nil {
		h.mu.Lock()
		partial := &CompoundCommand{Name: name, Commands: h.groupCmds}
		h.grouping = false
		h.groupCmds = nil
		h.mu.Unlock()

		if uerr := partial.Undo(r); uerr != nil {
			return errors.Join(err, uerr)
		}
		return err
	}
	h.EndGroup()
	return nil
}
