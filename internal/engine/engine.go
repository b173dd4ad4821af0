package engine

import (
	"context"
	"log/slog"

	"github.com/renamekit/renamer/pkg/types"
)

// Engine ties the rename pipeline together. It is stateless between
// invocations apart from the caret state cell; one rename is in flight at a
// time.
type Engine struct {
	service  types.CompilerService
	host     types.BufferHost
	projects types.ProjectSystem
	locator  *SymbolLocator
	usages   *UsageResolver
	editor   *MultiFileEditor
	caret    *CaretState
}

// New creates a rename engine over the three collaborators
func New(service types.CompilerService, host types.BufferHost, projects types.ProjectSystem) *Engine {
	return &Engine{
		service:  service,
		host:     host,
		projects: projects,
		locator:  NewSymbolLocator(service),
		usages:   NewUsageResolver(service),
		editor:   NewMultiFileEditor(host),
		caret:    NewCaretState(),
	}
}

// CaretMoved is the first input event of the caret state machine: it
// re-resolves the symbol context at the new position
func (e *Engine) CaretMoved(ctx context.Context, document string, position types.Position) {
	canonical, err := canonicalPath(document)
	if err != nil {
		slog.Warn("Ignoring caret move to unresolvable document", "document", document, "error", err)
		return
	}

	project, err := e.projects.ProjectForDocument(canonical)
	if err != nil {
		// A project that fails to load means "no project": the rename
		// command reports disabled instead of crashing
		slog.Warn("Project load failed, rename disabled", "document", canonical, "error", err)
		e.caret.Set(canonical, position, nil, nil)
		return
	}

	symbol, err := e.locator.Locate(ctx, canonical, position, project)
	if err != nil {
		slog.Warn("Symbol resolution failed, rename disabled", "document", canonical, "error", err)
		symbol = nil
	}

	e.caret.Set(canonical, position, symbol, project)
}

// SnapshotChanged is the second input event: the document's buffer changed,
// so the last-known symbol context is re-resolved at the same position
func (e *Engine) SnapshotChanged(ctx context.Context, document string) {
	canonical, err := canonicalPath(document)
	if err != nil {
		return
	}

	current, position, _, _ := e.caret.State()
	if current != canonical {
		return
	}
	e.CaretMoved(ctx, canonical, position)
}

// CanRename reports whether a symbol is located at the last-known caret
// position; it gates the rename command
func (e *Engine) CanRename() bool {
	return e.caret.CanRename()
}

// CaretSymbol returns the symbol under the last-known caret position
func (e *Engine) CaretSymbol() (string, *types.Symbol, bool) {
	document, _, symbol, _ := e.caret.State()
	if symbol == nil {
		return document, nil, false
	}
	return document, symbol, true
}

// RenameOutcome reports one completed (or previewed) rename
type RenameOutcome struct {
	CanonicalName string
	OldName       string
	NewName       string
	Files         []FileResult
}

// RenameAtCaret runs the whole pipeline, preserving the short-circuit
// order: symbol lookup, then usage lookup, then the naming dialog, then
// apply. Any absence along the chain abandons the operation with nothing
// applied.
func (e *Engine) RenameAtCaret(ctx context.Context, prompter types.Prompter) (*RenameOutcome, error) {
	document, _, symbol, _ := e.caret.State()
	if symbol == nil {
		return nil, ErrNoSymbolAtCaret
	}

	usage, err := e.usages.FindUsages(ctx, symbol)
	if err != nil {
		return nil, err
	}

	newName, ok := prompter.PromptForNewName(ctx, usage.DisplayText, symbol)
	if !ok {
		// Dialog dismissed: the operation is abandoned before any edit
		// exists
		slog.Debug("Rename dialog dismissed", "symbol", usage.CanonicalName)
		return nil, ErrRenameAborted
	}

	session := &RenameSession{
		OriginDocument: document,
		OldName:        usage.DisplayText,
		NewName:        newName,
		Occurrences:    usage.Occurrences,
	}

	files, err := e.editor.ApplyRename(session)
	outcome := &RenameOutcome{
		CanonicalName: usage.CanonicalName,
		OldName:       usage.DisplayText,
		NewName:       newName,
		Files:         files,
	}
	if err != nil {
		return outcome, err
	}

	slog.Info("Rename committed",
		"symbol", usage.CanonicalName,
		"new_name", newName,
		"files", len(files),
		"occurrences", usage.Occurrences.Len())

	return outcome, nil
}

// PreviewAtCaret computes the edits the rename would make without applying
// anything
func (e *Engine) PreviewAtCaret(ctx context.Context, newName string) (*RenameOutcome, error) {
	document, _, symbol, _ := e.caret.State()
	if symbol == nil {
		return nil, ErrNoSymbolAtCaret
	}

	usage, err := e.usages.FindUsages(ctx, symbol)
	if err != nil {
		return nil, err
	}

	session := &RenameSession{
		OriginDocument: document,
		OldName:        usage.DisplayText,
		NewName:        newName,
		Occurrences:    usage.Occurrences,
	}

	files, err := e.editor.PreviewRename(session)
	if err != nil {
		return nil, err
	}

	return &RenameOutcome{
		CanonicalName: usage.CanonicalName,
		OldName:       usage.DisplayText,
		NewName:       newName,
		Files:         files,
	}, nil
}
