package types

import "fmt"

// OutOfRangeError reports a line/column that falls outside the bounds of the
// snapshot it was translated against
type OutOfRangeError struct {
	Path    string
	Version int
	Line    int
	Column  int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("position %d:%d is out of range for %s (version %d)", e.Line, e.Column, e.Path, e.Version)
}

// StaleSnapshotError reports a replacement applied against a snapshot that
// has been superseded by a later edit
type StaleSnapshotError struct {
	Path    string
	Version int
	Current int
}

func (e *StaleSnapshotError) Error() string {
	return fmt.Sprintf("snapshot version %d of %s is stale (current version %d)", e.Version, e.Path, e.Current)
}

// EditApplyError reports a replacement the buffer host refused to apply
type EditApplyError struct {
	Path   string
	Reason string
	Err    error
}

func (e *EditApplyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot edit %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("cannot edit %s: %s", e.Path, e.Reason)
}

func (e *EditApplyError) Unwrap() error { return e.Err }
