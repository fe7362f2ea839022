package engine

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/cellrope/internal/charreg"
	"github.com/dshills/cellrope/internal/config"
	"github.com/dshills/cellrope/internal/logging"
	"github.com/dshills/cellrope/internal/style"
)

// Option configures a Line during creation.
type Option func(*Line)

// WithText sets the initial content. It is not part of the undo history.
func WithText(text string) Option {
	return func(l *Line) {
		l.initText = text
	}
}

// WithTextStyle sets the style WithText encodes in.
func WithTextStyle(st tcell.Style) Option {
	return func(l *Line) {
		l.initStyle = st
	}
}

// WithRegistry shares a complex character registry between lines.
func WithRegistry(reg *charreg.Table) Option {
	return func(l *Line) {
		if reg != nil {
			l.reg = reg
		}
	}
}

// WithStyles shares a style table between lines.
func WithStyles(styles *style.Table) Option {
	return func(l *Line) {
		if styles != nil {
			l.styles = styles
		}
	}
}

// WithLogger sets the logger. Lines log nothing by default.
func WithLogger(log *logging.Logger) Option {
	return func(l *Line) {
		if log != nil {
			l.log = log
		}
	}
}

// WithConfig sets rope and registry tunables. The registry settings only
// apply when no registry is shared with WithRegistry.
func WithConfig(cfg *config.Config) Option {
	return func(l *Line) {
		if cfg != nil {
			l.cfg = cfg
		}
	}
}

// WithMaxUndoEntries sets the maximum number of undo history entries.
func WithMaxUndoEntries(max int) Option {
	return func(l *Line) {
		if max > 0 {
			l.maxUndo = max
		}
	}
}
