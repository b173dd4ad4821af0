package types

import "context"

// CompilerService defines the interface to the external checker process,
// which provides symbol resolution and find-all-usages over the project
type CompilerService interface {
	// Start spawns the checker and initializes it for the workspace. The
	// project handle may be nil when no project metadata is available.
	Start(ctx context.Context, workspaceRoot string, project ProjectHandle) error
	Stop(ctx context.Context) error

	// ResolveSymbol returns the symbol token spanning the position, or nil
	// when there is nothing under the caret. A nil symbol is not an error.
	ResolveSymbol(ctx context.Context, uri string, position Position) (*Symbol, error)

	// FindAllUsages returns every occurrence of the symbol across the
	// project. The call blocks for the duration of semantic analysis.
	// A nil slice means the checker could not complete analysis.
	FindAllUsages(ctx context.Context, symbol *Symbol) ([]Location, error)
}
