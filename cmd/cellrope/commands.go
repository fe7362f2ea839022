package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"unicode/utf16"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	"github.com/dshills/cellrope/internal/engine"
	"github.com/dshills/cellrope/internal/engine/rope"
)

// jsonDoc accumulates sjson writes and keeps the first error.
type jsonDoc struct {
	s   string
	err error
}

func newJSONDoc() *jsonDoc {
	return &jsonDoc{s: "{}"}
}

func (d *jsonDoc) set(path string, v any) {
	if d.err == nil {
		d.s, d.err = sjson.Set(d.s, path, v)
	}
}

func (d *jsonDoc) setRaw(path, raw string) {
	if d.err == nil {
		d.s, d.err = sjson.SetRaw(d.s, path, raw)
	}
}

func (d *jsonDoc) write(w io.Writer) error {
	if d.err != nil {
		return fmt.Errorf("building JSON: %w", d.err)
	}
	_, err := fmt.Fprintln(w, d.s)
	return err
}

func (a *app) cellsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cells [text]",
		Short: "Encode text and list the resulting cells",
		Long: `Encode text and list one cell per line: index, code, flags, style ID and
the text the cell stands for. Wide characters take two cells; the second
is a placeholder with no text.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := input(cmd, args)
			if err != nil {
				return err
			}
			l, err := a.line(text)
			if err != nil {
				return err
			}
			return a.writeCells(cmd.OutOrStdout(), l)
		},
	}
}

func (a *app) writeCells(w io.Writer, l *engine.Line) error {
	if a.jsonOut {
		cells, _ := l.Cells(0, l.Len())
		doc := newJSONDoc()
		doc.set("len", len(cells))
		doc.setRaw("cells", "[]")
		for i, c := range cells {
			text, _ := l.TextRange(i, i+1)
			p := fmt.Sprintf("cells.%d.", i)
			doc.set(p+"index", i)
			doc.set(p+"code", c.Code)
			doc.set(p+"flags", c.Flags.String())
			doc.set(p+"complex", c.IsComplex())
			doc.set(p+"placeholder", c.IsPlaceholder())
			doc.set(p+"style", c.Style)
			doc.set(p+"text", text)
		}
		return doc.write(w)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tCODE\tFLAGS\tSTYLE\tTEXT")
	r := l.Rope()
	for it := rope.NewCellIterator(r, r.Full()); it.Next(); {
		i, c := it.Index(), it.Cell()
		text, _ := l.TextRange(i, i+1)
		code := fmt.Sprintf("U+%04X", c.Code)
		if c.IsComplex() {
			code = fmt.Sprintf("#%d", c.Code)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%q\n", i, code, c.Flags, c.Style, text)
	}
	return tw.Flush()
}

func (a *app) textCmd() *cobra.Command {
	var start, end int
	cmd := &cobra.Command{
		Use:   "text [text]",
		Short: "Encode text and decode it back",
		Long: `Encode text into cells, then produce the text of a cell range again.
The default range is the whole line.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := input(cmd, args)
			if err != nil {
				return err
			}
			l, err := a.line(text)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("end") {
				end = l.Len()
			}
			out, err := l.TextRange(start, end)
			if err != nil {
				return err
			}

			if a.jsonOut {
				doc := newJSONDoc()
				doc.set("text", out)
				doc.set("start", start)
				doc.set("end", end)
				doc.set("cells", l.Len())
				doc.set("units", len(utf16.Encode([]rune(out))))
				return doc.write(cmd.OutOrStdout())
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().IntVar(&start, "start", 0, "first cell of the range")
	cmd.Flags().IntVar(&end, "end", 0, "cell after the last one in the range (default: line length)")
	return cmd
}

func (a *app) deltaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delta [text]",
		Short: "Show the UTF-16 unit to cell mapping",
		Long: `Encode text and print, for every UTF-16 unit of the decoded text, the cell
it came from and the delta between the two (cell minus unit).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := input(cmd, args)
			if err != nil {
				return err
			}
			l, err := a.line(text)
			if err != nil {
				return err
			}
			r := l.Rope()
			return a.writeDelta(cmd.OutOrStdout(), r.Text(r.Full()))
		},
	}
}

func (a *app) writeDelta(w io.Writer, ds *rope.DeltaString) error {
	units, deltas := ds.Units(), ds.Deltas()

	if a.jsonOut {
		doc := newJSONDoc()
		doc.set("text", ds.String())
		doc.set("cells", ds.CellCount())
		doc.setRaw("units", "[]")
		for t := range units {
			p := fmt.Sprintf("units.%d.", t)
			doc.set(p+"unit", t)
			doc.set(p+"value", units[t])
			doc.set(p+"cell", ds.CellIndex(t))
			doc.set(p+"delta", deltas[t])
		}
		return doc.write(w)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "UNIT\tVALUE\tCELL\tDELTA")
	for t := range units {
		fmt.Fprintf(tw, "%d\t%#04x\t%d\t%+d\n", t, units[t], ds.CellIndex(t), deltas[t])
	}
	return tw.Flush()
}

func (a *app) editCmd() *cobra.Command {
	var showSegments bool
	cmd := &cobra.Command{
		Use:   "edit text op...",
		Short: "Apply edits to encoded text",
		Long: `Encode text, apply each op in order and print the result.

Ops:
  insert:AT:TEXT           insert TEXT before cell AT
  delete:START:END         delete cells [START, END)
  replace:START:END:TEXT   replace cells [START, END) with TEXT
  set:I:CHAR               overwrite the code of cell I with CHAR
  undo, redo               step through the edit history

Examples:
  cellrope edit "hello world" delete:0:6 insert:5:!
  cellrope edit "abc" replace:1:2:中 undo --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.line(args[0])
			if err != nil {
				return err
			}
			st, err := a.style()
			if err != nil {
				return err
			}
			for _, op := range args[1:] {
				if err := applyOp(l, op, st); err != nil {
					return fmt.Errorf("%s: %w", op, err)
				}
				a.log.Debug("applied %s, %d cells", op, l.Len())
			}
			return a.writeEdit(cmd.OutOrStdout(), l, showSegments)
		},
	}
	cmd.Flags().BoolVar(&showSegments, "segments", false, "also list the rope segments")
	return cmd
}

func (a *app) writeEdit(w io.Writer, l *engine.Line, showSegments bool) error {
	r := l.Rope()

	if a.jsonOut {
		doc := newJSONDoc()
		doc.set("text", l.Text())
		doc.set("len", l.Len())
		doc.set("undo", l.CanUndo())
		doc.set("redo", l.CanRedo())
		if showSegments {
			doc.setRaw("segments", "[]")
			for k, seg := range r.Segments() {
				p := fmt.Sprintf("segments.%d.", k)
				doc.set(p+"kind", segmentKind(seg.Seq))
				doc.set(p+"start", seg.Start())
				doc.set(p+"end", seg.End)
			}
		}
		return doc.write(w)
	}

	fmt.Fprintln(w, l.Text())
	if showSegments {
		for k, seg := range r.Segments() {
			fmt.Fprintf(w, "segment %d: %s [%d, %d)\n", k, segmentKind(seg.Seq), seg.Start(), seg.End)
		}
	}
	return nil
}

func segmentKind(s rope.Sequence) string {
	switch s.(type) {
	case *rope.ByteLeaf:
		return "bytes"
	case *rope.FlatLeaf:
		return "flat"
	case *rope.View:
		return "view"
	default:
		return fmt.Sprintf("%T", s)
	}
}

// applyOp parses and applies one edit op.
func applyOp(l *engine.Line, op string, st tcell.Style) error {
	name, rest, _ := strings.Cut(op, ":")
	switch name {
	case "undo":
		return l.Undo()
	case "redo":
		return l.Redo()
	case "insert":
		at, text, err := intThenText(rest)
		if err != nil {
			return err
		}
		return l.InsertText(at, text, st)
	case "delete":
		start, end, _, err := twoInts(rest, false)
		if err != nil {
			return err
		}
		return l.Delete(start, end)
	case "replace":
		start, end, text, err := twoInts(rest, true)
		if err != nil {
			return err
		}
		return l.ReplaceText(start, end, text, st)
	case "set":
		i, text, err := intThenText(rest)
		if err != nil {
			return err
		}
		r := []rune(text)
		if len(r) != 1 || r[0] > 0xFFFF {
			return fmt.Errorf("set needs a single BMP character, got %q", text)
		}
		return l.SetCode(i, uint16(r[0]), false)
	default:
		return fmt.Errorf("unknown op %q", name)
	}
}

func intThenText(s string) (int, string, error) {
	num, text, ok := strings.Cut(s, ":")
	if !ok {
		return 0, "", fmt.Errorf("expected N:TEXT, got %q", s)
	}
	n, err := strconv.Atoi(num)
	return n, text, err
}

func twoInts(s string, withText bool) (int, int, string, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 || (withText && len(parts) != 3) || (!withText && len(parts) != 2) {
		return 0, 0, "", fmt.Errorf("malformed range %q", s)
	}
	a, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, "", err
	}
	b, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, "", err
	}
	text := ""
	if withText {
		text = parts[2]
	}
	return a, b, text, nil
}
