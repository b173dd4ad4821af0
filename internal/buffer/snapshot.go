package buffer

import "github.com/renamekit/renamer/pkg/types"

var _ types.Snapshot = &Snapshot{}

// Snapshot is an immutable, versioned view of a buffer's text. Applying a
// replacement never mutates a snapshot; it produces a successor with the
// version bumped.
type Snapshot struct {
	path    string
	version int
	text    string
}

func (s *Snapshot) Path() string { return s.path }

func (s *Snapshot) Version() int { return s.version }

func (s *Snapshot) Text() string { return s.text }
