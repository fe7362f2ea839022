package engine

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/cellrope/internal/cell"
	"github.com/dshills/cellrope/internal/config"
	"github.com/dshills/cellrope/internal/logging"
	"github.com/dshills/cellrope/internal/style"
)

func mustNew(t *testing.T, opts ...Option) *Line {
	t.Helper()
	l, err := New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return l
}

// ============================================================================
// Basic Operations
// ============================================================================

func TestNew(t *testing.T) {
	l := mustNew(t)
	if l.Len() != 0 {
		t.Errorf("expected empty line, got len %d", l.Len())
	}
	if l.Text() != "" {
		t.Errorf("expected empty text, got %q", l.Text())
	}
	if l.CanUndo() {
		t.Error("initial text must not be undoable")
	}
}

func TestNewWithText(t *testing.T) {
	content := "Hello, World!"
	l := mustNew(t, WithText(content))

	if l.Text() != content {
		t.Errorf("expected %q, got %q", content, l.Text())
	}
	if l.Len() != len(content) {
		t.Errorf("expected len %d, got %d", len(content), l.Len())
	}
}

func TestInsertText(t *testing.T) {
	l := mustNew(t, WithText("Hello"))
	bold := tcell.StyleDefault.Bold(true)

	if err := l.InsertText(0, "\u4e2d ", bold); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Text() != "\u4e2d Hello" {
		t.Errorf("got %q", l.Text())
	}
	if l.Len() != 8 {
		t.Errorf("wide character should take two cells, len = %d", l.Len())
	}

	c, _ := l.CellAt(1)
	if !c.IsPlaceholder() || c.Code != cell.DWCRight {
		t.Errorf("cell 1 = %v, want right-half placeholder", c)
	}
	for i, want := range []tcell.Style{bold, bold, bold, tcell.StyleDefault} {
		if st, err := l.Style(i); err != nil || st != want {
			t.Errorf("Style(%d) = %v, %v", i, st, err)
		}
	}
}

func TestTextPathsAgree(t *testing.T) {
	const input = "a\r\nb"
	initial := mustNew(t, WithText(input))
	inserted := mustNew(t)
	if err := inserted.InsertText(0, input, tcell.StyleDefault); err != nil {
		t.Fatal(err)
	}

	if initial.Len() != 4 || inserted.Len() != 4 {
		t.Fatalf("WithText len = %d, InsertText len = %d, want 4", initial.Len(), inserted.Len())
	}
	a, _ := initial.Cells(0, 4)
	b, _ := inserted.Cells(0, 4)
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("cell %d: WithText = %v, InsertText = %v", i, a[i], b[i])
		}
	}
	if initial.Text() != input {
		t.Errorf("Text() = %q", initial.Text())
	}
}

func TestAppendAndComplexText(t *testing.T) {
	l := mustNew(t, WithText("a"))
	if err := l.AppendText("\U0001F600", tcell.StyleDefault); err != nil {
		t.Fatal(err)
	}
	if err := l.Append(cell.Simple('z')); err != nil {
		t.Fatal(err)
	}

	if l.Text() != "a\U0001F600z" {
		t.Errorf("got %q", l.Text())
	}
	if l.Len() != 4 {
		t.Errorf("len = %d, want 4", l.Len())
	}
	c, _ := l.CellAt(1)
	if !c.IsComplex() || c.Flags&cell.FlagWideLead == 0 {
		t.Errorf("cell 1 = %v, want a wide complex lead", c)
	}
	if st := l.Registry().Stats(); st.Live != 1 {
		t.Errorf("registry holds %d codes, want 1", st.Live)
	}
}

func TestDeleteAndReplace(t *testing.T) {
	l := mustNew(t, WithText("Hello, World!"))

	if err := l.Delete(5, 12); err != nil {
		t.Fatal(err)
	}
	if l.Text() != "Hello!" {
		t.Errorf("after delete: %q", l.Text())
	}

	if err := l.ReplaceText(0, 5, "Bye", tcell.StyleDefault); err != nil {
		t.Fatal(err)
	}
	if l.Text() != "Bye!" {
		t.Errorf("after ReplaceText: %q", l.Text())
	}

	if err := l.Replace(3, 4, []cell.Cell{cell.Simple('?'), cell.Simple('?')}); err != nil {
		t.Fatal(err)
	}
	if l.Text() != "Bye??" {
		t.Errorf("after Replace: %q", l.Text())
	}

	if err := l.Insert(0, cell.FromBytes([]byte(">> "), 0)); err != nil {
		t.Fatal(err)
	}
	if l.Text() != ">> Bye??" {
		t.Errorf("after Insert: %q", l.Text())
	}
}

func TestNoopEditsAreNotRecorded(t *testing.T) {
	l := mustNew(t, WithText("abc"))

	for _, err := range []error{
		l.Insert(1, nil),
		l.InsertText(1, "", tcell.StyleDefault),
		l.Delete(2, 2),
		l.Replace(1, 1, nil),
		l.ReplaceText(1, 1, "", tcell.StyleDefault),
	} {
		if err != nil {
			t.Fatal(err)
		}
	}
	if err := l.Append(); err != nil {
		t.Fatal(err)
	}
	if l.CanUndo() {
		t.Error("no-op edits should not reach the history")
	}
}

func TestCellsAndTextRange(t *testing.T) {
	l := mustNew(t, WithText("Hello, World!"))

	cells, err := l.Cells(7, 12)
	if err != nil {
		t.Fatal(err)
	}
	if len(cells) != 5 || cells[0].Code != 'W' {
		t.Errorf("Cells(7, 12) = %v", cells)
	}

	text, err := l.TextRange(0, 5)
	if err != nil || text != "Hello" {
		t.Errorf("TextRange(0, 5) = %q, %v", text, err)
	}
}

func TestSetCode(t *testing.T) {
	l := mustNew(t, WithText("abc"))
	if err := l.SetCode(1, 'X', false); err != nil {
		t.Fatal(err)
	}
	if l.Text() != "aXc" {
		t.Errorf("got %q", l.Text())
	}
	if err := l.Undo(); err != nil {
		t.Fatal(err)
	}
	if l.Text() != "abc" {
		t.Errorf("undo of SetCode left %q", l.Text())
	}
}

// ============================================================================
// Offset Mapping
// ============================================================================

func TestOffsetMapping(t *testing.T) {
	l := mustNew(t)
	if err := l.AppendText("\u4e2d x\U0001F600", tcell.StyleDefault); err != nil {
		t.Fatal(err)
	}
	// cells:  0=中 1=placeholder 2=' ' 3='x' 4=😀 5=placeholder
	// units:  0=中 1=' ' 2='x' 3,4=😀
	if l.Len() != 6 {
		t.Fatalf("len = %d, want 6", l.Len())
	}

	cellFor := []int{0, 2, 3, 4, 4, 6}
	for u, want := range cellFor {
		got, err := l.CellIndexForTextOffset(u)
		if err != nil || got != want {
			t.Errorf("CellIndexForTextOffset(%d) = %d, %v; want %d", u, got, err, want)
		}
	}

	unitFor := []int{0, 1, 1, 2, 3, 5, 5}
	for c, want := range unitFor {
		got, err := l.TextOffsetForCell(c)
		if err != nil || got != want {
			t.Errorf("TextOffsetForCell(%d) = %d, %v; want %d", c, got, err, want)
		}
	}
}

// ============================================================================
// Errors
// ============================================================================

func TestOutOfRange(t *testing.T) {
	l := mustNew(t, WithText("Hello"))

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"insert past end", l.Insert(6, []cell.Cell{cell.Simple('x')}), ErrOffsetOutOfRange},
		{"insert negative", l.InsertText(-1, "x", tcell.StyleDefault), ErrOffsetOutOfRange},
		{"delete reversed", l.Delete(4, 2), ErrRangeInvalid},
		{"delete past end", l.Delete(0, 6), ErrOffsetOutOfRange},
		{"replace negative", l.Replace(-1, 2, nil), ErrOffsetOutOfRange},
		{"replace text reversed", l.ReplaceText(3, 1, "x", tcell.StyleDefault), ErrRangeInvalid},
		{"set code at len", l.SetCode(5, 'x', false), ErrOffsetOutOfRange},
	}

	for _, tt := range tests {
		if !errors.Is(tt.err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, tt.err)
		}
	}

	if _, err := l.CellAt(5); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("CellAt(5): %v", err)
	}
	if _, err := l.Cells(3, 2); !errors.Is(err, ErrRangeInvalid) {
		t.Errorf("Cells(3, 2): %v", err)
	}
	if _, err := l.TextRange(0, 9); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("TextRange(0, 9): %v", err)
	}
	if _, err := l.Style(-1); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("Style(-1): %v", err)
	}
	if _, err := l.CellIndexForTextOffset(6); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("CellIndexForTextOffset(6): %v", err)
	}
	if _, err := l.TextOffsetForCell(6); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("TextOffsetForCell(6): %v", err)
	}
	if l.Text() != "Hello" || l.CanUndo() {
		t.Error("failed edits must not change the line")
	}
}

func TestRegistryFull(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: logging.LevelWarn, Output: &buf})

	cfg := config.Default()
	cfg.Registry.Limit = 1
	l := mustNew(t, WithConfig(cfg), WithLogger(log))

	if err := l.AppendText("\U0001F600", tcell.StyleDefault); err != nil {
		t.Fatal(err)
	}
	err := l.AppendText("\U0001F601", tcell.StyleDefault)
	if !errors.Is(err, ErrRegistryFull) {
		t.Fatalf("expected ErrRegistryFull, got %v", err)
	}
	if l.Text() != "\U0001F600" {
		t.Errorf("failed append changed the line: %q", l.Text())
	}
	if !strings.Contains(buf.String(), "[WARN]") || !strings.Contains(buf.String(), "registry exhausted") {
		t.Errorf("expected a warning, log was %q", buf.String())
	}

	if _, err := New(WithConfig(cfg), WithText("e\u0301\u0301 \U0001F600")); !errors.Is(err, ErrRegistryFull) {
		t.Errorf("New with unencodable text: %v", err)
	}
}

// ============================================================================
// Undo/Redo
// ============================================================================

func TestUndoRedo(t *testing.T) {
	l := mustNew(t, WithText("Hello"))

	_ = l.AppendText(", World", tcell.StyleDefault)
	_ = l.Delete(0, 1)
	if l.Text() != "ello, World" {
		t.Fatalf("got %q", l.Text())
	}

	if err := l.Undo(); err != nil {
		t.Fatal(err)
	}
	if err := l.Undo(); err != nil {
		t.Fatal(err)
	}
	if l.Text() != "Hello" {
		t.Errorf("after undo: %q", l.Text())
	}
	if err := l.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("expected ErrNothingToUndo, got %v", err)
	}

	if err := l.Redo(); err != nil {
		t.Fatal(err)
	}
	if l.Text() != "Hello, World" {
		t.Errorf("after redo: %q", l.Text())
	}
	if !l.CanRedo() {
		t.Error("one redo should remain")
	}
	_ = l.Redo()
	if err := l.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("expected ErrNothingToRedo, got %v", err)
	}
}

func TestMaxUndoEntries(t *testing.T) {
	l := mustNew(t, WithMaxUndoEntries(2))
	for range 4 {
		if err := l.Append(cell.Simple('x')); err != nil {
			t.Fatal(err)
		}
	}
	undone := 0
	for l.Undo() == nil {
		undone++
	}
	if undone != 2 || l.Text() != "xx" {
		t.Errorf("undone = %d, text = %q", undone, l.Text())
	}
}

func TestGroup(t *testing.T) {
	l := mustNew(t, WithText("abc"))

	err := l.Group("upper", func() error {
		if err := l.SetCode(0, 'A', false); err != nil {
			return err
		}
		return l.ReplaceText(2, 3, "C", tcell.StyleDefault)
	})
	if err != nil {
		t.Fatal(err)
	}
	if l.Text() != "AbC" {
		t.Fatalf("got %q", l.Text())
	}
	_ = l.Undo()
	if l.Text() != "abc" || l.CanUndo() {
		t.Errorf("group should undo as one unit, got %q", l.Text())
	}

	err = l.Group("fails", func() error {
		if err := l.Append(cell.Simple('!')); err != nil {
			return err
		}
		return l.Delete(0, 99)
	})
	if !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("expected ErrOffsetOutOfRange, got %v", err)
	}
	if l.Text() != "abc" {
		t.Errorf("failed group should roll back, got %q", l.Text())
	}
}

// ============================================================================
// Clone, Sharing and Logging
// ============================================================================

func TestClone(t *testing.T) {
	l := mustNew(t, WithText("shared"))
	_ = l.AppendText("!", tcell.StyleDefault)

	c := l.Clone()
	if c.Text() != l.Text() {
		t.Fatalf("clone text %q, want %q", c.Text(), l.Text())
	}
	if c.CanUndo() {
		t.Error("clone should start with an empty history")
	}

	_ = c.SetCode(0, 'S', false)
	_ = c.Delete(1, 3)
	if l.Text() != "shared!" {
		t.Errorf("edits to the clone reached the original: %q", l.Text())
	}
	if c.Text() != "Sred!" {
		t.Errorf("clone text = %q", c.Text())
	}
	if c.Registry() != l.Registry() || c.Styles() != l.Styles() {
		t.Error("clone should share the registry and style table")
	}

	_ = l.Undo()
	if l.Text() != "shared" || c.Text() != "Sred!" {
		t.Errorf("undo on the original affected the clone: %q / %q", l.Text(), c.Text())
	}
}

func TestSharedStyles(t *testing.T) {
	styles := style.NewTable()
	red := tcell.StyleDefault.Foreground(tcell.ColorRed)

	a := mustNew(t, WithStyles(styles))
	b := mustNew(t, WithStyles(styles))
	_ = a.AppendText("a", red)
	_ = b.AppendText("b", red)

	ca, _ := a.CellAt(0)
	cb, _ := b.CellAt(0)
	if ca.Style != cb.Style || ca.Style == style.Default {
		t.Errorf("style IDs %d and %d should match and not be the default", ca.Style, cb.Style)
	}
	if styles.Len() != 2 {
		t.Errorf("styles.Len() = %d, want 2", styles.Len())
	}
}

func TestPromotionLogging(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: logging.LevelDebug, Output: &buf})

	l := mustNew(t, WithText("abc"), WithLogger(log))
	_ = l.SetCode(0, 'x', false)

	out := buf.String()
	if !strings.Contains(out, "copy-on-write promoted cells [0, 3)") {
		t.Errorf("expected a promotion line, log was %q", out)
	}
	if !strings.Contains(out, "component=engine") {
		t.Errorf("expected the engine component field, log was %q", out)
	}
}

func TestConfigApplies(t *testing.T) {
	cfg := config.Default()
	cfg.Rope.CheckInvariants = true
	cfg.Registry.AmbiguousWide = true

	l := mustNew(t, WithConfig(cfg), WithText("\u00a7"))
	if l.Len() != 2 {
		t.Errorf("ambiguous-width character should be wide, len = %d", l.Len())
	}
	if err := l.Rope().CheckInvariants(); err != nil {
		t.Error(err)
	}
}
