package engine

import (
	"errors"

	"github.com/dshills/cellrope/internal/charreg"
	"github.com/dshills/cellrope/internal/engine/history"
)

// Errors returned by engine operations.
var (
	// ErrOffsetOutOfRange indicates an offset is outside the line.
	ErrOffsetOutOfRange = errors.New("offset out of range")

	// ErrRangeInvalid indicates an invalid range (e.g., end < start).
	ErrRangeInvalid = errors.New("invalid range")

	// ErrRegistryFull is returned when text needs more complex codes than
	// the registry has left.
	ErrRegistryFull = charreg.ErrRegistryFull

	// ErrNothingToUndo indicates the undo stack is empty.
	ErrNothingToUndo = history.ErrNothingToUndo

	// ErrNothingToRedo indicates the redo stack is empty.
	ErrNothingToRedo = history.ErrNothingToRedo
)
