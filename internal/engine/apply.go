package engine

import (
	"fmt"
	"log/slog"

	"github.com/renamekit/renamer/pkg/types"
)

// RenameSession carries one confirmed rename from the dialog to the editor.
// It is consumed synchronously and discarded after commit or failure.
type RenameSession struct {
	OriginDocument string
	OldName        string
	NewName        string
	Occurrences    *OccurrenceSet
}

// AppliedEdit describes one concrete replacement produced from an occurrence
type AppliedEdit struct {
	File    string
	Range   types.SourceRange // narrowed range, analysis-time display coordinates
	OldText string
	NewText string
}

// FileResult reports what happened to one file during a rename
type FileResult struct {
	File    string
	Before  string
	After   string
	Edits   []AppliedEdit
	Applied bool
	Err     error
}

// replacer produces the successor snapshot for one replacement. The editor
// passes the host's ApplyReplacement; previews pass a pure in-memory one.
type replacer func(snap types.Snapshot, offset, length int, text string) (types.Snapshot, error)

// MultiFileEditor applies computed replacement edits across buffers as a
// single logical, undoable transaction
type MultiFileEditor struct {
	host types.BufferHost
}

// NewMultiFileEditor creates an editor over the buffer host
func NewMultiFileEditor(host types.BufferHost) *MultiFileEditor {
	return &MultiFileEditor{host: host}
}

// ApplyRename commits the session's edits. Every file edit happens inside
// one undo transaction, which is released on every exit path. A failure in
// one file leaves that file unchanged and the operation moves on; files
// already processed are not rolled back beyond what the transaction's own
// undo provides.
func (e *MultiFileEditor) ApplyRename(session *RenameSession) ([]FileResult, error) {
	label := fmt.Sprintf("Rename '%s' to '%s'", session.OldName, session.NewName)
	txn, err := e.host.BeginUndoTransaction(label)
	if err != nil {
		return nil, fmt.Errorf("failed to open undo transaction: %w", err)
	}
	defer func() {
		if endErr := e.host.EndUndoTransaction(txn); endErr != nil {
			slog.Error("Failed to close undo transaction", "id", txn.ID(), "error", endErr)
		}
	}()

	var results []FileResult
	var firstErr error

	for _, file := range session.Occurrences.Files() {
		result, err := e.editFile(file, session, e.host.ApplyReplacement)
		if err != nil {
			slog.Error("Rename left file unchanged", "file", file, "error", err)
			results = append(results, FileResult{File: file, Err: err})
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		result.Applied = true
		results = append(results, result)
	}

	if firstErr != nil {
		return results, firstErr
	}

	if err := e.host.ActivateDocument(session.OriginDocument); err != nil {
		slog.Warn("Failed to re-activate origin document", "document", session.OriginDocument, "error", err)
	}

	return results, nil
}

// PreviewRename computes the session's edits without touching any buffer
func (e *MultiFileEditor) PreviewRename(session *RenameSession) ([]FileResult, error) {
	var results []FileResult

	for _, file := range session.Occurrences.Files() {
		result, err := e.editFile(file, session, previewReplacement)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	return results, nil
}

// editFile folds the file's occurrences left to right: each edit is applied
// to the snapshot produced by the previous one, with column positions
// corrected for earlier same-line edits. Edits are never computed up front
// against a single stale snapshot.
func (e *MultiFileEditor) editFile(file string, session *RenameSession, apply replacer) (FileResult, error) {
	// Re-fetch the current snapshot immediately before translation; the
	// translator fails fast if the buffer has drifted since analysis
	snap, err := e.host.SnapshotFor(file)
	if err != nil {
		return FileResult{}, err
	}
	before := snap.Text()

	lastLine := 0
	colDelta := 0
	var edits []AppliedEdit

	for _, r := range session.Occurrences.RangesFor(file) {
		if r.StartLine != lastLine {
			lastLine = r.StartLine
			colDelta = 0
		}

		shifted := r
		shifted.StartColumn += colDelta
		if shifted.EndLine == shifted.StartLine {
			shifted.EndColumn += colDelta
		}

		offset, length, err := ToOffset(shifted, snap)
		if err != nil {
			return FileResult{}, err
		}

		raw := snap.Text()[offset : offset+length]
		adjust, narrowed := NarrowToTrailingIdentifier(session.OldName, raw)
		offset += adjust
		oldText := raw[adjust : adjust+narrowed]

		next, err := apply(snap, offset, narrowed, session.NewName)
		if err != nil {
			return FileResult{}, err
		}
		snap = next
		colDelta += len(session.NewName) - narrowed

		edits = append(edits, AppliedEdit{
			File: file,
			Range: types.SourceRange{
				File:        file,
				StartLine:   r.StartLine,
				StartColumn: r.StartColumn + adjust,
				EndLine:     r.StartLine,
				EndColumn:   r.StartColumn + adjust + narrowed,
			},
			OldText: oldText,
			NewText: session.NewName,
		})
	}

	return FileResult{
		File:   file,
		Before: before,
		After:  snap.Text(),
		Edits:  edits,
	}, nil
}

// previewSnapshot is a detached snapshot used when computing edits without
// applying them
type previewSnapshot struct {
	path    string
	version int
	text    string
}

func (s *previewSnapshot) Path() string { return s.path }

func (s *previewSnapshot) Version() int { return s.version }

func (s *previewSnapshot) Text() string { return s.text }

func previewReplacement(snap types.Snapshot, offset, length int, text string) (types.Snapshot, error) {
	t := snap.Text()
	if offset < 0 || length < 0 || offset+length > len(t) {
		return nil, &types.EditApplyError{
			Path:   snap.Path(),
			Reason: fmt.Sprintf("replacement [%d,%d) exceeds buffer of %d bytes", offset, offset+length, len(t)),
		}
	}
	return &previewSnapshot{
		path:    snap.Path(),
		version: snap.Version(),
		text:    t[:offset] + text + t[offset+length:],
	}, nil
}
