package engine

import "errors"

// ErrNoSymbolAtCaret is the normal disabled state: nothing under the caret.
var ErrNoSymbolAtCaret = errors.New("no symbol at caret")

// ErrAnalysisFailed means the checker reported no usages for the symbol.
// The operation aborts silently; only a diagnostic is logged.
var ErrAnalysisFailed = errors.New("usage analysis failed")

// ErrRenameAborted means the user dismissed the naming dialog before any
// edit was computed.
var ErrRenameAborted = errors.New("rename aborted")
