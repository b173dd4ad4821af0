package engine

import (
	"context"
	"fmt"

	"github.com/renamekit/renamer/pkg/types"
)

// SymbolLocator asks the checker for the symbol token spanning a buffer
// position. Side-effect-free; a nil symbol is the normal "nothing under the
// caret" case, not an error.
type SymbolLocator struct {
	service types.CompilerService
}

// NewSymbolLocator creates a symbol locator backed by the checker
func NewSymbolLocator(service types.CompilerService) *SymbolLocator {
	return &SymbolLocator{service: service}
}

// Locate returns the symbol at the position within the document, or nil
func (l *SymbolLocator) Locate(ctx context.Context, document string, position types.Position, project types.ProjectHandle) (*types.Symbol, error) {
	if project == nil {
		// No project metadata, no semantic resolution
		return nil, nil
	}

	symbol, err := l.service.ResolveSymbol(ctx, pathToURI(document), position)
	if err != nil {
		return nil, fmt.Errorf("symbol resolution failed: %w", err)
	}
	return symbol, nil
}
