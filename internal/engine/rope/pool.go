package rope

import (
	"sync"

	"github.com/dshills/cellrope/internal/cell"
)

// maxPooledCells caps the capacity of scratch buffers returned to the pool.
const maxPooledCells = 16 * 1024

// cellSlicePool holds scratch cell buffers for comparisons and iteration.
var cellSlicePool = sync.Pool{
	New: func() any {
		s := make([]cell.Cell, 0, 256)
		return &s
	},
}

// getCells retrieves an empty scratch buffer with room for at least n cells.
func getCells(n int) *[]cell.Cell {
	s := cellSlicePool.Get().(*[]cell.Cell)
	if cap(*s) < n {
		*s = make([]cell.Cell, 0, n)
	}
	*s = (*s)[:0]
	return s
}

// putCells returns a scratch buffer to the pool.
func putCells(s *[]cell.Cell) {
	if s == nil {
		return
	}
	// Only keep reasonably sized buffers
	if cap(*s) > maxPooledCells {
		return
	}
	*s = (*s)[:0]
	cellSlicePool.Put(s)
}
