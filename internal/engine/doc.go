// Package engine provides Line, the checked facade over a cell rope.
//
// The rope package treats bad offsets as programmer errors and panics.
// Line validates every offset first and reports ErrOffsetOutOfRange or
// ErrRangeInvalid instead, encodes UTF-8 text into cells, interns styles,
// and records every edit for undo.
//
// # Basic Usage
//
//	l, err := engine.New(engine.WithText("hello world"))
//	if err != nil {
//		return err
//	}
//
//	// Insert text with a style
//	bold := tcell.StyleDefault.Bold(true)
//	l.InsertText(0, "中 ", bold) // two columns plus a space
//
//	// Map between UTF-16 offsets and cells
//	c, _ := l.CellIndexForTextOffset(2)
//
//	// Undo the insertion
//	l.Undo()
//
// # Thread Safety
//
// A Line is not safe for concurrent use. Callers that share one must
// serialize access themselves. The registry and style table it uses are
// safe to share between lines.
package engine
