package engine

import (
	"strings"

	"github.com/renamekit/renamer/pkg/types"
)

// ToOffset maps a 1-based line/column source range onto the snapshot's
// 0-based offset space. Ranges computed against an older snapshot are
// rejected with a *OutOfRangeError instead of being silently misapplied.
func ToOffset(r types.SourceRange, snap types.Snapshot) (offset, length int, err error) {
	text := snap.Text()
	starts := lineStarts(text)

	start, err := offsetAt(text, starts, r.StartLine, r.StartColumn, snap)
	if err != nil {
		return 0, 0, err
	}
	end, err := offsetAt(text, starts, r.EndLine, r.EndColumn, snap)
	if err != nil {
		return 0, 0, err
	}
	if end < start {
		return 0, 0, &types.OutOfRangeError{
			Path:    snap.Path(),
			Version: snap.Version(),
			Line:    r.EndLine,
			Column:  r.EndColumn,
		}
	}

	return start, end - start, nil
}

// NarrowToTrailingIdentifier narrows a raw span that carries a qualification
// prefix (e.g. "Module.Helper.rename") down to the trailing identifier. When
// the old name is not a suffix of the span, the whole span is edited
// unmodified.
func NarrowToTrailingIdentifier(oldName, rawSpan string) (adjust, length int) {
	idx := strings.LastIndex(rawSpan, oldName)
	if idx >= 0 && idx+len(oldName) == len(rawSpan) {
		return idx, len(oldName)
	}
	return 0, len(rawSpan)
}

// lineStarts returns the 0-based offset of the first byte of every line
func lineStarts(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// offsetAt maps a 1-based line/column to an offset, validating against the
// snapshot's bounds. A column one past the end of a line is valid: ranges
// are end-exclusive.
func offsetAt(text string, starts []int, line, column int, snap types.Snapshot) (int, error) {
	outOfRange := &types.OutOfRangeError{
		Path:    snap.Path(),
		Version: snap.Version(),
		Line:    line,
		Column:  column,
	}

	if line < 1 || line > len(starts) || column < 1 {
		return 0, outOfRange
	}

	lineStart := starts[line-1]
	lineEnd := len(text)
	if line < len(starts) {
		lineEnd = starts[line] - 1 // exclude the newline
	}

	offset := lineStart + column - 1
	if offset > lineEnd {
		return 0, outOfRange
	}
	return offset, nil
}
