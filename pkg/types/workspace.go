package types

import "time"

// ProjectHandle is an opaque handle to a loaded build-project description.
// The load timestamp records the load instant; handles never auto-revalidate,
// refreshing a stale handle is the caller's responsibility.
type ProjectHandle interface {
	Path() string
	LoadedAt() time.Time
	Stale() bool

	// SourceFiles returns the project's source files as absolute paths,
	// in project order
	SourceFiles() []string

	// CompilerArguments returns the checker invocation flags in their
	// deterministic order
	CompilerArguments() []string

	// References returns one "-r:<path>" entry per resolved reference,
	// referenced-project outputs before plain assembly references
	References() []string
}

// ProjectSystem defines the project-system collaborator
type ProjectSystem interface {
	// ProjectForDocument returns the project that owns the document, or
	// nil when the document belongs to no loadable project
	ProjectForDocument(path string) (ProjectHandle, error)
}
