package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/renamekit/renamer/internal/engine"
	"github.com/renamekit/renamer/internal/results"
	"github.com/renamekit/renamer/pkg/types"

	"github.com/mark3labs/mcp-go/mcp"
)

// RenameSymbolTool runs the rename-symbol-at-caret command
type RenameSymbolTool struct {
	engine *engine.Engine
	config types.Config
}

// NewRenameSymbolTool creates a new rename symbol tool
func NewRenameSymbolTool(eng *engine.Engine, config types.Config) *RenameSymbolTool {
	return &RenameSymbolTool{
		engine: eng,
		config: config,
	}
}

// GetTool returns the MCP tool definition
func (t *RenameSymbolTool) GetTool() mcp.Tool {
	tool := mcp.NewTool(ToolRenameSymbol,
		mcp.WithDescription("Rename the symbol at the caret across the project, as one undoable step"),
		mcp.WithString("new_name", mcp.Required(), mcp.Description("New name for the symbol")),
		mcp.WithBoolean("preview", mcp.Description("Compute the edits without applying them")),
	)
	return tool
}

// Handle processes the tool request. Every failure surfaces as "nothing
// changed": the engine converts faults to diagnostics and never leaves the
// undo stack open.
func (t *RenameSymbolTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	newName := mcp.ParseString(req, "new_name", "")
	if newName == "" {
		return mcp.NewToolResultError("new_name parameter is required"), nil
	}

	if !IsValidIdentifier(newName) {
		return mcp.NewToolResultError(fmt.Sprintf("'%s' is not a valid identifier", newName)), nil
	}

	preview := mcp.ParseBoolean(req, "preview", false)

	slog.Debug("MCP tool called",
		"tool", ToolRenameSymbol,
		"new_name", newName,
		"preview", preview)

	var outcome *engine.RenameOutcome
	var err error
	if preview {
		outcome, err = t.engine.PreviewAtCaret(ctx, newName)
	} else {
		outcome, err = t.engine.RenameAtCaret(ctx, staticPrompter{newName: newName})
	}

	switch {
	case errors.Is(err, engine.ErrNoSymbolAtCaret):
		return mcp.NewToolResultError("No renameable symbol at the caret position."), nil
	case errors.Is(err, engine.ErrAnalysisFailed):
		slog.Warn("Rename aborted: usage analysis failed", "new_name", newName)
		return mcp.NewToolResultError("Rename aborted: the checker could not analyze the symbol's usages."), nil
	case err != nil && outcome == nil:
		slog.Error("Rename failed", "new_name", newName, "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to rename symbol: %v", err)), nil
	}

	toolResult := results.RenameSymbolToolResult{
		Arguments: results.RenameSymbolToolArgs{
			NewName: newName,
			Preview: preview,
		},
		Symbol:    outcome.CanonicalName,
		FileEdits: make([]results.FileEdit, 0, len(outcome.Files)),
	}

	applied := 0
	totalEdits := 0
	for _, fileResult := range outcome.Files {
		fileEdit := results.FileEdit{
			File:    GetRelativePath(fileResult.File, t.config.WorkspaceRoot),
			Applied: fileResult.Applied,
			Edits:   make([]results.Edit, 0, len(fileResult.Edits)),
		}

		if fileResult.Err != nil {
			fileEdit.Error = fileResult.Err.Error()
		}

		for _, edit := range fileResult.Edits {
			fileEdit.Edits = append(fileEdit.Edits, results.Edit{
				StartLine:      edit.Range.StartLine,
				StartCharacter: edit.Range.StartColumn,
				EndLine:        edit.Range.EndLine,
				EndCharacter:   edit.Range.EndColumn,
				OldText:        edit.OldText,
				NewText:        edit.NewText,
			})
			totalEdits++
		}

		if unified, diffErr := results.UnifiedDiff(fileEdit.File, fileResult.Before, fileResult.After); diffErr == nil {
			fileEdit.UnifiedDiff = unified
		} else {
			slog.Warn("Failed to render diff", "file", fileEdit.File, "error", diffErr)
		}

		if fileResult.Applied {
			applied++
		}
		toolResult.FileEdits = append(toolResult.FileEdits, fileEdit)
	}

	switch {
	case preview:
		toolResult.Message = fmt.Sprintf("Preview: renaming '%s' to '%s' would make %d edits across %d files.",
			outcome.OldName, newName, totalEdits, len(outcome.Files))
	case err != nil:
		toolResult.Message = fmt.Sprintf("Rename partially failed: %d of %d files were edited. Undo reverts all applied edits in one step.",
			applied, len(outcome.Files))
	default:
		toolResult.Message = fmt.Sprintf("Renamed '%s' to '%s' with %d edits across %d files, grouped into one undo step.",
			outcome.OldName, newName, totalEdits, len(outcome.Files))
	}

	jsonBytes, marshalErr := json.MarshalIndent(toolResult, "", "  ")
	if marshalErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal tool result into JSON: %v", marshalErr)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}
