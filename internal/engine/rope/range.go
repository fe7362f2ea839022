package rope

import "fmt"

// Range is a half-open range of cell indices [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of cells in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Empty reports whether the range covers no cells.
func (r Range) Empty() bool {
	return r.End <= r.Start
}

// Overlaps reports whether r and other share at least one cell.
func (r Range) Overlaps(other Range) bool {
	return r.Start < other.End && other.Start < r.End
}

// Contains reports whether i lies in the range.
func (r Range) Contains(i int) bool {
	return i >= r.Start && i < r.End
}

// Shift returns the range moved by delta cells.
func (r Range) Shift(delta int) Range {
	return Range{Start: r.Start + delta, End: r.End + delta}
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

// checkRange panics unless r lies within [0, n].
func checkRange(r Range, n int) {
	if r.Start < 0 || r.End > n || r.Start > r.End {
		panic(fmt.Sprintf("rope: range %v out of bounds [0, %d]", r, n))
	}
}

// checkIndex panics unless i lies within [0, n).
func checkIndex(i, n int) {
	if i < 0 || i >= n {
		panic(fmt.Sprintf("rope: index %d out of range [0, %d)", i, n))
	}
}
