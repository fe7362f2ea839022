package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/cellrope/internal/cell"
	"github.com/dshills/cellrope/internal/charreg"
	"github.com/dshills/cellrope/internal/config"
	"github.com/dshills/cellrope/internal/engine/encode"
	"github.com/dshills/cellrope/internal/engine/history"
	"github.com/dshills/cellrope/internal/engine/rope"
	"github.com/dshills/cellrope/internal/logging"
	"github.com/dshills/cellrope/internal/style"
)

// Line is one line of terminal cells with checked edits and undo.
type Line struct {
	rope    *rope.Rope
	reg     *charreg.Table
	styles  *style.Table
	enc     *encode.Encoder
	history *history.History
	log     *logging.Logger

	// Configuration
	cfg     *config.Config
	maxUndo int

	// Initialization
	initText  string
	initStyle tcell.Style
}

// New creates a Line with the given options. It fails only when the
// initial text cannot be encoded.
func New(opts ...Option) (*Line, error) {
	l := &Line{
		log:       logging.Discard,
		cfg:       config.Default(),
		maxUndo:   history.DefaultMaxEntries,
		initStyle: tcell.StyleDefault,
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.reg == nil {
		l.reg = charreg.NewTable(registryOptions(l.cfg)...)
	}
	if l.styles == nil {
		l.styles = style.NewTable()
	}
	l.log = l.log.WithComponent("engine")
	l.enc = encode.New(l.reg, l.cfg.Registry.AmbiguousWide)
	l.history = history.New(l.maxUndo)

	log := l.log
	ropeOpts := []rope.Option{
		rope.WithResolver(l.reg),
		rope.WithExpansionFactor(l.cfg.Rope.ExpansionFactor),
		rope.WithInvariantChecks(l.cfg.Rope.CheckInvariants),
		rope.WithPromoteHook(func(rg rope.Range) {
			log.Debug("copy-on-write promoted cells %v", rg)
		}),
	}

	b := rope.NewBuilder()
	if l.initText != "" {
		err := l.enc.Write(b, l.initText, l.styles.Intern(l.initStyle))
		if err != nil {
			l.warnFull(err)
			return nil, err
		}
	}
	l.rope = b.Build(ropeOpts...)
	return l, nil
}

func registryOptions(cfg *config.Config) []charreg.Option {
	var opts []charreg.Option
	if cfg.Registry.Normalize {
		opts = append(opts, charreg.WithNormalization())
	}
	if cfg.Registry.Limit > 0 {
		opts = append(opts, charreg.WithLimit(cfg.Registry.Limit))
	}
	return opts
}

// Len returns the number of cells.
func (l *Line) Len() int {
	return l.rope.Len()
}

// Rope returns the underlying rope. Edits made directly on it bypass
// validation and history; a later Undo may then fail.
func (l *Line) Rope() *rope.Rope {
	return l.rope
}

// Registry returns the complex character registry.
func (l *Line) Registry() *charreg.Table {
	return l.reg
}

// Styles returns the style table.
func (l *Line) Styles() *style.Table {
	return l.styles
}

// ============================================================================
// Validation
// ============================================================================

func (l *Line) checkIndex(i int) error {
	if i < 0 || i >= l.rope.Len() {
		return fmt.Errorf("%w: cell %d not in [0, %d)", ErrOffsetOutOfRange, i, l.rope.Len())
	}
	return nil
}

func (l *Line) checkOffset(at int) error {
	if at < 0 || at > l.rope.Len() {
		return fmt.Errorf("%w: offset %d not in [0, %d]", ErrOffsetOutOfRange, at, l.rope.Len())
	}
	return nil
}

func (l *Line) checkRange(start, end int) (rope.Range, error) {
	if end < start {
		return rope.Range{}, fmt.Errorf("%w: [%d, %d)", ErrRangeInvalid, start, end)
	}
	if start < 0 || end > l.rope.Len() {
		return rope.Range{}, fmt.Errorf("%w: [%d, %d) not within [0, %d]", ErrOffsetOutOfRange, start, end, l.rope.Len())
	}
	return rope.Range{Start: start, End: end}, nil
}

// ============================================================================
// Reads
// ============================================================================

// CellAt returns cell i.
func (l *Line) CellAt(i int) (cell.Cell, error) {
	if err := l.checkIndex(i); err != nil {
		return cell.Cell{}, err
	}
	return l.rope.CellAt(i), nil
}

// Cells returns a copy of the cells in [start, end).
func (l *Line) Cells(start, end int) ([]cell.Cell, error) {
	rg, err := l.checkRange(start, end)
	if err != nil {
		return nil, err
	}
	return l.rope.Hydrate(rg), nil
}

// Style returns the style of cell i.
func (l *Line) Style(i int) (tcell.Style, error) {
	c, err := l.CellAt(i)
	if err != nil {
		return tcell.StyleDefault, err
	}
	st, _ := l.styles.Lookup(c.Style)
	return st, nil
}

// Text returns the whole line as a string. Wide-character placeholders
// contribute nothing.
func (l *Line) Text() string {
	return l.rope.Text(l.rope.Full()).String()
}

// TextRange returns the text of the cells in [start, end).
func (l *Line) TextRange(start, end int) (string, error) {
	rg, err := l.checkRange(start, end)
	if err != nil {
		return "", err
	}
	return l.rope.Text(rg).String(), nil
}

// CellIndexForTextOffset returns the cell that produced UTF-16 unit t of
// Text. t equal to the text length maps to Len.
func (l *Line) CellIndexForTextOffset(t int) (int, error) {
	ds := l.rope.Text(l.rope.Full())
	if t < 0 || t > ds.Len() {
		return 0, fmt.Errorf("%w: text offset %d not in [0, %d]", ErrOffsetOutOfRange, t, ds.Len())
	}
	return ds.CellIndex(t), nil
}

// TextOffsetForCell returns the UTF-16 offset in Text where cell c's text
// starts. c equal to Len maps to the text length.
func (l *Line) TextOffsetForCell(c int) (int, error) {
	if err := l.checkOffset(c); err != nil {
		return 0, err
	}
	return l.rope.Text(l.rope.Full()).TextOffset(c), nil
}

// ============================================================================
// Edits
// ============================================================================

func (l *Line) splice(rg rope.Range, seq rope.Sequence) error {
	return l.history.Execute(history.Capture(l.rope, rg, seq), l.rope)
}

func (l *Line) encodeText(s string, st tcell.Style) (rope.Sequence, error) {
	seq, err := l.enc.Leaf(s, l.styles.Intern(st))
	l.warnFull(err)
	return seq, err
}

func (l *Line) warnFull(err error) {
	if errors.Is(err, charreg.ErrRegistryFull) {
		stats := l.reg.Stats()
		l.log.WithField("live", stats.Live).Warn("complex character registry exhausted (capacity %d)", stats.Capacity)
	}
}

// Insert inserts a copy of cells before cell at.
func (l *Line) Insert(at int, cells []cell.Cell) error {
	if err := l.checkOffset(at); err != nil {
		return err
	}
	if len(cells) == 0 {
		return nil
	}
	return l.splice(rope.Range{Start: at, End: at}, rope.NewFlatLeaf(cells))
}

// InsertText encodes s in style st and inserts it before cell at.
func (l *Line) InsertText(at int, s string, st tcell.Style) error {
	if err := l.checkOffset(at); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	seq, err := l.encodeText(s, st)
	if err != nil {
		return err
	}
	return l.splice(rope.Range{Start: at, End: at}, seq)
}

// Delete removes the cells in [start, end).
func (l *Line) Delete(start, end int) error {
	rg, err := l.checkRange(start, end)
	if err != nil {
		return err
	}
	if rg.Empty() {
		return nil
	}
	return l.splice(rg, rope.NewFlatLeaf(nil))
}

// Replace swaps the cells in [start, end) for a copy of cells.
func (l *Line) Replace(start, end int, cells []cell.Cell) error {
	rg, err := l.checkRange(start, end)
	if err != nil {
		return err
	}
	if rg.Empty() && len(cells) == 0 {
		return nil
	}
	return l.splice(rg, rope.NewFlatLeaf(cells))
}

// ReplaceText swaps the cells in [start, end) for s encoded in style st.
func (l *Line) ReplaceText(start, end int, s string, st tcell.Style) error {
	rg, err := l.checkRange(start, end)
	if err != nil {
		return err
	}
	if rg.Empty() && s == "" {
		return nil
	}
	seq, err := l.encodeText(s, st)
	if err != nil {
		return err
	}
	return l.splice(rg, seq)
}

// Append adds a copy of cells at the end.
func (l *Line) Append(cells ...cell.Cell) error {
	if len(cells) == 0 {
		return nil
	}
	return l.splice(rope.Range{Start: l.Len(), End: l.Len()}, rope.NewFlatLeaf(cells))
}

// AppendText encodes s in style st and adds it at the end.
func (l *Line) AppendText(s string, st tcell.Style) error {
	return l.InsertText(l.Len(), s, st)
}

// SetCode rewrites the code of cell i in place, keeping its style and
// flags other than the complex bit.
func (l *Line) SetCode(i int, code uint16, complex bool) error {
	if err := l.checkIndex(i); err != nil {
		return err
	}
	old := l.rope.CellAt(i)
	l.rope.SetCode(i, code, complex)
	l.history.Push(&history.Operation{
		At:        i,
		Old:       rope.NewFlatLeaf([]cell.Cell{old}),
		New:       rope.NewFlatLeaf([]cell.Cell{l.rope.CellAt(i)}),
		Timestamp: time.Now(),
	})
	return nil
}

// ============================================================================
// History
// ============================================================================

// Undo reverses the most recent edit.
func (l *Line) Undo() error {
	return l.history.Undo(l.rope)
}

// Redo re-applies the most recently undone edit.
func (l *Line) Redo() error {
	return l.history.Redo(l.rope)
}

// CanUndo returns true if undo is available.
func (l *Line) CanUndo() bool {
	return l.history.CanUndo()
}

// CanRedo returns true if redo is available.
func (l *Line) CanRedo() bool {
	return l.history.CanRedo()
}

// Group runs fn so that all of its edits undo together. If fn fails its
// edits are rolled back.
func (l *Line) Group(name string, fn func() error) error {
	return l.history.Atomic(name, l.rope, fn)
}

// Clone returns an independent copy sharing the registry, style table and
// logger. The copy starts with an empty history.
func (l *Line) Clone() *Line {
	out := *l
	out.rope = l.rope.MutableClone()
	out.history = history.New(l.maxUndo)
	return &out
}
