package engine

import (
	"sync"

	"github.com/renamekit/renamer/pkg/types"
)

// CaretState is the explicitly owned state cell behind the rename command's
// precondition. It is updated by two input events (caret moved, snapshot
// changed) and queried synchronously by CanRename. The engine is its single
// writer; the cell itself holds no behavior.
type CaretState struct {
	mu       sync.Mutex
	document string
	position types.Position
	symbol   *types.Symbol
	project  types.ProjectHandle
}

// NewCaretState creates an empty caret state
func NewCaretState() *CaretState {
	return &CaretState{}
}

// Set records the latest symbol context under the caret
func (s *CaretState) Set(document string, position types.Position, symbol *types.Symbol, project types.ProjectHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.document = document
	s.position = position
	s.symbol = symbol
	s.project = project
}

// State returns the last-known symbol context
func (s *CaretState) State() (document string, position types.Position, symbol *types.Symbol, project types.ProjectHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.document, s.position, s.symbol, s.project
}

// CanRename reports whether a symbol is currently located at the last-known
// caret position
func (s *CaretState) CanRename() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.symbol != nil
}

// ActiveDocument returns the document the caret was last seen in
func (s *CaretState) ActiveDocument() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.document, s.document != ""
}
