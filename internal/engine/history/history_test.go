package history

import (
	"errors"
	"testing"

	"github.com/dshills/cellrope/internal/cell"
	"github.com/dshills/cellrope/internal/engine/rope"
)

func text(r *rope.Rope) string {
	b := make([]rune, 0, r.Len())
	for _, c := range r.Cells(r.Full()) {
		b = append(b, rune(c.Code))
	}
	return string(b)
}

func leaf(s string) *rope.FlatLeaf {
	return rope.NewFlatLeaf(cell.FromBytes([]byte(s), 0))
}

// apply captures and executes a replacement of rg with s.
func apply(t *testing.T, h *History, r *rope.Rope, rg rope.Range, s string) {
	t.Helper()
	if err := h.Execute(Capture(r, rg, leaf(s)), r); err != nil {
		t.Fatalf("Execute: %v", err)
	}
}

func TestOperationKinds(t *testing.T) {
	r := rope.FromBytes([]byte("hello"), 0)

	tests := []struct {
		rg    rope.Range
		with  string
		desc  string
		delta int
		noop  bool
	}{
		{rope.Range{Start: 5, End: 5}, "!", "Insert", 1, false},
		{rope.Range{Start: 0, End: 2}, "", "Delete", -2, false},
		{rope.Range{Start: 1, End: 3}, "EL", "Replace", 0, false},
		{rope.Range{Start: 1, End: 3}, "el", "Replace", 0, true},
	}

	for _, tt := range tests {
		op := Capture(r, tt.rg, leaf(tt.with))
		if op.Description() != tt.desc {
			t.Errorf("%v -> %q: Description = %q, want %q", tt.rg, tt.with, op.Description(), tt.desc)
		}
		if op.CellsDelta() != tt.delta {
			t.Errorf("%v -> %q: CellsDelta = %d, want %d", tt.rg, tt.with, op.CellsDelta(), tt.delta)
		}
		if op.IsNoop() != tt.noop {
			t.Errorf("%v -> %q: IsNoop = %v", tt.rg, tt.with, op.IsNoop())
		}
		if op.Timestamp.IsZero() {
			t.Error("timestamp not set")
		}
	}
	if text(r) != "hello" {
		t.Errorf("Capture modified the rope: %q", text(r))
	}
}

func TestUndoRedo(t *testing.T) {
	r := rope.FromBytes([]byte("hello world"), 0)
	h := New(0)

	apply(t, h, r, rope.Range{Start: 0, End: 5}, "goodbye")
	apply(t, h, r, rope.Range{Start: 13, End: 13}, "!")
	if text(r) != "goodbye world!" {
		t.Fatalf("got %q", text(r))
	}

	if err := h.Undo(r); err != nil {
		t.Fatal(err)
	}
	if text(r) != "goodbye world" {
		t.Errorf("after one undo: %q", text(r))
	}
	if err := h.Undo(r); err != nil {
		t.Fatal(err)
	}
	if text(r) != "hello world" {
		t.Errorf("after two undos: %q", text(r))
	}
	if err := h.Undo(r); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("expected ErrNothingToUndo, got %v", err)
	}

	if err := h.Redo(r); err != nil {
		t.Fatal(err)
	}
	if text(r) != "goodbye world" {
		t.Errorf("after redo: %q", text(r))
	}
	if h.UndoCount() != 1 || h.RedoCount() != 1 {
		t.Errorf("counts = %d/%d, want 1/1", h.UndoCount(), h.RedoCount())
	}

	apply(t, h, r, rope.Range{Start: 0, End: 0}, ">")
	if h.CanRedo() {
		t.Error("a new command must clear the redo stack")
	}
	if err := h.Redo(r); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("expected ErrNothingToRedo, got %v", err)
	}
}

func TestUndoRestoresComplexCells(t *testing.T) {
	cells := []cell.Cell{cell.Simple('a'), cell.Complex(7), cell.Placeholder(cell.DWCRight), cell.Simple('b')}
	r := rope.FromCells(cells)
	h := New(10)

	apply(t, h, r, rope.Range{Start: 1, End: 3}, "")
	if err := h.Undo(r); err != nil {
		t.Fatal(err)
	}
	if !r.HasEqualContent(r.Full(), cells) {
		t.Errorf("undo restored %v, want %v", r.Hydrate(r.Full()), cells)
	}
}

func TestUndoAfterInPlaceWrite(t *testing.T) {
	r := rope.FromBytes([]byte("abc"), 0)
	h := New(10)
	apply(t, h, r, rope.Range{Start: 1, End: 1}, "XY")

	// Writing into the shared New snapshot must not corrupt the history.
	r.SetCell(1, cell.Simple('z'))
	if err := h.Undo(r); err != nil {
		t.Fatal(err)
	}
	if text(r) != "abc" {
		t.Errorf("got %q", text(r))
	}
	if err := h.Redo(r); err != nil {
		t.Fatal(err)
	}
	if text(r) != "aXYbc" {
		t.Errorf("redo replayed %q, want %q", text(r), "aXYbc")
	}
}

func TestStaleOperation(t *testing.T) {
	r := rope.FromBytes([]byte("abcdef"), 0)
	op := Capture(r, rope.Range{Start: 2, End: 6}, leaf(""))

	short := rope.FromBytes([]byte("a"), 0)
	if err := op.Execute(short); !errors.Is(err, ErrStale) {
		t.Errorf("expected ErrStale, got %v", err)
	}

	h := New(10)
	h.Push(op)
	if err := h.Undo(short); err == nil {
		t.Fatal("undo on a stale rope should fail")
	}
	if h.UndoCount() != 1 {
		t.Error("a failed undo must leave the entry on the stack")
	}
}

func TestMaxEntries(t *testing.T) {
	r := rope.New()
	h := New(3)
	for range 5 {
		apply(t, h, r, rope.Range{Start: r.Len(), End: r.Len()}, "x")
	}
	if h.UndoCount() != 3 || h.MaxEntries() != 3 {
		t.Errorf("UndoCount = %d, want 3", h.UndoCount())
	}
}

func TestGroups(t *testing.T) {
	r := rope.FromBytes([]byte("abc"), 0)
	h := New(10)

	h.BeginGroup("retype")
	h.BeginGroup("ignored")
	apply(t, h, r, rope.Range{Start: 0, End: 1}, "A")
	apply(t, h, r, rope.Range{Start: 2, End: 3}, "C")
	if !h.IsGrouping() || h.UndoCount() != 0 {
		t.Fatal("grouped commands should not be pushed yet")
	}
	h.EndGroup()

	if info, ok := h.PeekUndo(); !ok || info.Description != "retype" {
		t.Errorf("PeekUndo = %+v, %v", info, ok)
	}
	if err := h.Undo(r); err != nil {
		t.Fatal(err)
	}
	if text(r) != "abc" {
		t.Errorf("group undo left %q", text(r))
	}

	h.EndGroup() // no open group
	h.BeginGroup("empty")
	h.EndGroup()
	if h.UndoCount() != 0 {
		t.Error("an empty group must not be pushed")
	}
}

func TestGroupScopeAndTransaction(t *testing.T) {
	r := rope.FromBytes([]byte("abc"), 0)
	h := New(10)

	func() {
		defer h.GroupScope("scope").End()
		apply(t, h, r, rope.Range{Start: 0, End: 0}, "1")
		apply(t, h, r, rope.Range{Start: 0, End: 0}, "2")
	}()
	if h.UndoCount() != 1 {
		t.Errorf("UndoCount = %d, want 1", h.UndoCount())
	}

	boom := errors.New("boom")
	err := h.Transaction("fails", func() error {
		apply(t, h, r, rope.Range{Start: 0, End: 0}, "3")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Transaction returned %v", err)
	}
	if h.IsGrouping() || h.UndoCount() != 1 {
		t.Error("a failed transaction must not be pushed")
	}

	scope := h.GroupScope("cancelled")
	scope.Cancel()
	scope.End()
	if h.IsGrouping() {
		t.Error("Cancel should close the group")
	}

	h.Clear()
	if h.CanUndo() || h.CanRedo() {
		t.Error("Clear should empty both stacks")
	}
}

func TestCompoundDescription(t *testing.T) {
	op := &Operation{Old: leaf("a"), New: leaf("")}
	tests := []struct {
		c    *CompoundCommand
		want string
	}{
		{&CompoundCommand{Name: "x"}, "x"},
		{&CompoundCommand{Commands: []Command{op}}, "Delete"},
		{&CompoundCommand{Commands: []Command{op, op}}, "2 operations"},
	}
	for _, tt := range tests {
		if got := tt.c.Description(); got != tt.want {
			t.Errorf("Description = %q, want %q", got, tt.want)
		}
	}
}

func TestAtomicRollsBack(t *testing.T) {
	r := rope.FromBytes([]byte("abc"), 0)
	h := New(10)

	boom := errors.New("boom")
	err := h.Atomic("fails", r, func() error {
		apply(t, h, r, rope.Range{Start: 0, End: 1}, "X")
		apply(t, h, r, rope.Range{Start: 3, End: 3}, "YZ")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Atomic returned %v", err)
	}
	if text(r) != "abc" {
		t.Errorf("rollback left %q", text(r))
	}
	if h.CanUndo() || h.IsGrouping() {
		t.Error("a rolled back group must leave no history")
	}

	if err := h.Atomic("ok", r, func() error {
		apply(t, h, r, rope.Range{Start: 0, End: 0}, ">")
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if h.UndoCount() != 1 || text(r) != ">abc" {
		t.Errorf("UndoCount = %d, text = %q", h.UndoCount(), text(r))
	}
}
