// Package history provides undo/redo for rope edits.
//
// # Operations
//
// An Operation records one splice: the position, the cells that were
// removed and the sequence that replaced them. The removed cells are
// snapshotted into a FlatLeaf. Applying or reverting an operation shares
// either side into the rope without copying; later writes promote as
// usual, so the history never sees them.
//
// # History Stack
//
//	h := history.New(1000) // Max 1000 undo entries
//
//	op := history.Capture(r, rope.Range{Start: 2, End: 4}, leaf)
//	h.Execute(op, r)
//
//	h.Undo(r)
//	h.Redo(r)
//
// # Command Grouping
//
// Multiple commands can be grouped as a single undo unit:
//
//	h.BeginGroup("retype")
//	// ... multiple edits ...
//	h.EndGroup()
package history
