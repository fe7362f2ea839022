// Package rope stores terminal line content as a mutable rope of cell
// sequences.
//
// A line is a run of fixed-slot cells (see package cell). Content arrives
// as leaves of three kinds:
//
//   - ByteLeaf: one byte per cell plus a run-length style map; the ASCII
//     fast path. Immutable and cheap to slice.
//   - FlatLeaf: an owned, resizable []cell.Cell. The only kind that can be
//     written in place.
//   - View: a zero-copy window onto another sequence. Views never nest.
//
// A Rope concatenates leaves as an ordered list of segments, each carrying
// its cumulative cell count so that locating a column is a binary search.
// Splitting a segment produces two Views over the same leaf; deleting from
// the head only advances a dropped-head counter.
//
// Every sequence kind, the Rope included, satisfies Sequence. Text is
// materialized as a DeltaString: UTF-16 code units plus, for every unit,
// the offset between its index and the cell it came from, so translating
// between text offsets and columns is O(1) in one direction and O(log n)
// in the other.
//
// Basic usage:
//
//	r := rope.FromBytes([]byte("Hello world"), style.Default)
//	r.Insert(5, rope.NewFlatLeaf(cells))        // splice a cluster in
//	r.Delete(rope.Range{Start: 0, End: 6})       // O(1) head trim
//	ds := r.Text(r.Full())                       // UTF-16 + deltas, cached
//	col := ds.CellIndex(3)                       // text offset -> column
//
// Index and range arguments are trusted: an out-of-range argument is a
// programming error and panics. The package does no locking; a Rope is
// owned by one goroutine at a time, and MutableClone hands out an
// independent copy.
package rope
