package buffer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/renamekit/renamer/pkg/types"
)

var _ types.BufferHost = &Host{}
var _ types.UndoTransaction = &Transaction{}

// Transaction groups edits across files into one undoable step
type Transaction struct {
	id    string
	label string
}

func (t *Transaction) ID() string { return t.id }

func (t *Transaction) Label() string { return t.label }

type document struct {
	current  *Snapshot
	readOnly bool
}

// undoGroup records the pre-edit snapshot of every file touched inside one
// transaction
type undoGroup struct {
	label string
	saved map[string]*Snapshot
}

// Host owns all text buffers and the undo stack. At most one undo
// transaction is open at a time; replacements applied while it is open are
// committed together when it ends.
type Host struct {
	mu        sync.Mutex
	documents map[string]*document
	open      *Transaction
	openSaved map[string]*Snapshot
	undoStack []*undoGroup
	activeDoc string
}

// NewHost creates an empty buffer host
func NewHost() *Host {
	return &Host{
		documents: make(map[string]*document),
	}
}

// SnapshotFor returns the current snapshot for the file, loading the file
// from disk if no buffer exists yet
func (h *Host) SnapshotFor(path string) (types.Snapshot, error) {
	canonical, err := canonicalPath(path)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if doc, ok := h.documents[canonical]; ok {
		return doc.current, nil
	}

	data, err := os.ReadFile(canonical)
	if err != nil {
		return nil, fmt.Errorf("failed to open buffer for %s: %w", canonical, err)
	}

	readOnly := false
	if info, err := os.Stat(canonical); err == nil && info.Mode().Perm()&0200 == 0 {
		readOnly = true
	}

	doc := &document{
		current:  &Snapshot{path: canonical, version: 1, text: string(data)},
		readOnly: readOnly,
	}
	h.documents[canonical] = doc

	slog.Debug("Opened buffer", "path", canonical, "bytes", len(data), "read_only", readOnly)
	return doc.current, nil
}

// ApplyReplacement replaces length bytes at offset with text, returning the
// successor snapshot. The given snapshot must still be the buffer's current
// one.
func (h *Host) ApplyReplacement(snap types.Snapshot, offset, length int, text string) (types.Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	doc, ok := h.documents[snap.Path()]
	if !ok {
		return nil, &types.EditApplyError{Path: snap.Path(), Reason: "no open buffer"}
	}

	if doc.readOnly {
		return nil, &types.EditApplyError{Path: snap.Path(), Reason: "buffer is read-only"}
	}

	if snap.Version() != doc.current.version {
		return nil, &types.StaleSnapshotError{
			Path:    snap.Path(),
			Version: snap.Version(),
			Current: doc.current.version,
		}
	}

	old := doc.current.text
	if offset < 0 || length < 0 || offset+length > len(old) {
		return nil, &types.EditApplyError{
			Path:   snap.Path(),
			Reason: fmt.Sprintf("replacement [%d,%d) exceeds buffer of %d bytes", offset, offset+length, len(old)),
		}
	}

	if h.open != nil {
		// Only the first edit of a file inside a transaction records the
		// pre-image; undo restores the state before the whole group
		if _, saved := h.openSaved[snap.Path()]; !saved {
			h.openSaved[snap.Path()] = doc.current
		}
	}

	next := &Snapshot{
		path:    snap.Path(),
		version: doc.current.version + 1,
		text:    old[:offset] + text + old[offset+length:],
	}
	doc.current = next

	return next, nil
}

// BeginUndoTransaction opens an undo transaction. Nested transactions are
// rejected; no two operations may interleave edits into the same session.
func (h *Host) BeginUndoTransaction(label string) (types.UndoTransaction, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.open != nil {
		return nil, fmt.Errorf("undo transaction %q is already open", h.open.label)
	}

	txn := &Transaction{id: uuid.NewString(), label: label}
	h.open = txn
	h.openSaved = make(map[string]*Snapshot)

	slog.Debug("Opened undo transaction", "id", txn.id, "label", label)
	return txn, nil
}

// EndUndoTransaction closes the transaction, committing every edit applied
// since Begin as one undo step. Ending a transaction that touched no file is
// a no-op. Ending is idempotent for the currently open transaction only.
func (h *Host) EndUndoTransaction(txn types.UndoTransaction) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.open == nil || h.open.id != txn.ID() {
		return fmt.Errorf("undo transaction %s is not open", txn.ID())
	}

	if len(h.openSaved) > 0 {
		h.undoStack = append(h.undoStack, &undoGroup{
			label: h.open.label,
			saved: h.openSaved,
		})
	}

	slog.Debug("Closed undo transaction", "id", h.open.id, "files", len(h.openSaved))
	h.open = nil
	h.openSaved = nil

	return nil
}

// Undo reverts the most recent undo group: every file edited inside that
// transaction returns to its pre-transaction snapshot in one step
func (h *Host) Undo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return false
	}

	group := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]

	for path, snap := range group.saved {
		if doc, ok := h.documents[path]; ok {
			doc.current = &Snapshot{
				path:    path,
				version: doc.current.version + 1,
				text:    snap.text,
			}
		}
	}

	slog.Debug("Undid transaction", "label", group.label, "files", len(group.saved))
	return true
}

// ActivateDocument records the document as focused
func (h *Host) ActivateDocument(path string) error {
	canonical, err := canonicalPath(path)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.documents[canonical]; !ok {
		return fmt.Errorf("cannot activate %s: no open buffer", canonical)
	}
	h.activeDoc = canonical
	return nil
}

// ActiveDocument returns the currently focused document
func (h *Host) ActiveDocument() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.activeDoc, h.activeDoc != ""
}

// HasOpenTransaction reports whether an undo transaction is open
func (h *Host) HasOpenTransaction() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.open != nil
}

// SetReadOnly marks an open buffer as read-only
func (h *Host) SetReadOnly(path string, readOnly bool) error {
	canonical, err := canonicalPath(path)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	doc, ok := h.documents[canonical]
	if !ok {
		return fmt.Errorf("no open buffer for %s", canonical)
	}
	doc.readOnly = readOnly
	return nil
}

func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize %s: %w", path, err)
	}
	return filepath.Clean(abs), nil
}
