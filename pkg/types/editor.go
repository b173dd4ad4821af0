package types

// Snapshot is an immutable, versioned view of a file's text content at one
// point in time. Snapshots are owned by the buffer host; consumers only
// compute offsets against them.
type Snapshot interface {
	Path() string
	Version() int
	Text() string
}

// UndoTransaction groups edits across one or more files into a single
// user-visible undo step
type UndoTransaction interface {
	ID() string
	Label() string
}

// BufferHost defines the editor-buffer collaborator: it owns all text
// buffers and the undo stack
type BufferHost interface {
	// SnapshotFor returns the current snapshot for the file, opening it
	// from disk if no buffer exists yet
	SnapshotFor(path string) (Snapshot, error)

	// ApplyReplacement replaces length bytes at offset with text and
	// returns the successor snapshot. The given snapshot must be the
	// buffer's current one; a superseded snapshot is rejected with a
	// *StaleSnapshotError.
	ApplyReplacement(snap Snapshot, offset, length int, text string) (Snapshot, error)

	// BeginUndoTransaction opens an undo transaction; every replacement
	// applied before the matching EndUndoTransaction belongs to it
	BeginUndoTransaction(label string) (UndoTransaction, error)

	// EndUndoTransaction closes the transaction on every exit path,
	// committing whatever edits were applied as one undo step
	EndUndoTransaction(txn UndoTransaction) error

	// ActivateDocument gives focus back to the document
	ActivateDocument(path string) error
}
