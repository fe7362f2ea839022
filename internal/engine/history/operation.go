package history

import (
	"errors"
	"fmt"
	"time"

	"github.com/dshills/cellrope/internal/engine/rope"
)

// ErrStale indicates an operation no longer fits the rope it is applied to.
var ErrStale = errors.New("operation does not fit the rope")

// Command is an undoable edit.
type Command interface {
	// Execute applies the command to r.
	Execute(r *rope.Rope) error

	// Undo reverses the command on r.
	Undo(r *rope.Rope) error

	// Description returns a human-readable description of the command.
	Description() string
}

// Operation replaces Old with New at At. Neither side may be modified
// once the operation is built.
type Operation struct {
	At  int
	Old rope.Sequence
	New rope.Sequence

	Timestamp time.Time
}

// Capture snapshots the cells of rg in r and pairs them with the
// replacement s, returning the operation that turns one into the other.
// It does not modify r. The caller must not modify s afterwards.
func Capture(r *rope.Rope, rg rope.Range, s rope.Sequence) *Operation {
	return &Operation{
		At:        rg.Start,
		Old:       rope.NewFlatLeaf(r.Hydrate(rg)),
		New:       s,
		Timestamp: time.Now(),
	}
}

// IsInsert reports whether the operation only adds cells.
func (op *Operation) IsInsert() bool {
	return op.Old.Len() == 0 && op.New.Len() > 0
}

// IsDelete reports whether the operation only removes cells.
func (op *Operation) IsDelete() bool {
	return op.Old.Len() > 0 && op.New.Len() == 0
}

// IsNoop reports whether the operation changes nothing.
func (op *Operation) IsNoop() bool {
	return op.Old.HasEqualContent(rope.Range{End: op.Old.Len()}, op.New.Hydrate(rope.Range{End: op.New.Len()}))
}

// CellsDelta returns the change in rope length.
func (op *Operation) CellsDelta() int {
	return op.New.Len() - op.Old.Len()
}

// Execute replaces Old with New.
func (op *Operation) Execute(r *rope.Rope) error {
	return splice(r, op.At, op.Old, op.New)
}

// Undo replaces New with Old.
func (op *Operation) Undo(r *rope.Rope) error {
	return splice(r, op.At, op.New, op.Old)
}

func splice(r *rope.Rope, at int, from, to rope.Sequence) error {
	rg := rope.Range{Start: at, End: at + from.Len()}
	if at < 0 || rg.End > r.Len() {
		return fmt.Errorf("%w: %v in %d cells", ErrStale, rg, r.Len())
	}
	r.Replace(rg, to)
	return nil
}

// Description returns "Insert", "Delete" or "Replace".
func (op *Operation) Description() string {
	switch {
	case op.IsInsert():
		return "Insert"
	case op.IsDelete():
		return "Delete"
	default:
		return "Replace"
	}
}

// CompoundCommand groups multiple commands as one undo unit.
type CompoundCommand struct {
	Name     string
	Commands []Command
}

// Execute runs all commands in order.
func (c *CompoundCommand) Execute(r *rope.Rope) error {
	for i, cmd := range c.Commands {
		if err := cmd.Execute(r); err != nil {
			// On error, try to undo what we've done
			for j := i - 1; j >= 0; j-- {
				_ = c.Commands[j].Undo(r)
			}
			return fmt.Errorf("compound command '%s' step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Undo reverses all commands in reverse order.
func (c *CompoundCommand) Undo(r *rope.Rope) error {
	for i := len(c.Commands) - 1; i >= 0; i-- {
		if err := c.Commands[i].Undo(r); err != nil {
			return fmt.Errorf("undo compound command '%s' step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Description returns the compound command's name.
func (c *CompoundCommand) Description() string {
	if c.Name != "" {
		return c.Name
	}
	if len(c.Commands) == 1 {
		return c.Commands[0].Description()
	}
	return fmt.Sprintf("%d operations", len(c.Commands))
}
