package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/renamekit/renamer/internal/engine"
	"github.com/renamekit/renamer/internal/results"
	"github.com/renamekit/renamer/pkg/types"

	"github.com/mark3labs/mcp-go/mcp"
)

// MoveCaretTool feeds the caret-moved event into the engine's state machine
type MoveCaretTool struct {
	engine *engine.Engine
	config types.Config
}

// NewMoveCaretTool creates a new move caret tool
func NewMoveCaretTool(eng *engine.Engine, config types.Config) *MoveCaretTool {
	return &MoveCaretTool{
		engine: eng,
		config: config,
	}
}

// GetTool returns the MCP tool definition
func (t *MoveCaretTool) GetTool() mcp.Tool {
	tool := mcp.NewTool(ToolMoveCaret,
		mcp.WithDescription("Move the caret to a position in a source file, updating the rename precondition"),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Path to the source file")),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("Line number (1-based)")),
		mcp.WithNumber("character", mcp.Required(), mcp.Description("Character position (1-based)")),
	)
	return tool
}

// Handle processes the tool request
func (t *MoveCaretTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filePath := mcp.ParseString(req, "file_path", "")
	if filePath == "" {
		return mcp.NewToolResultError("file_path parameter is required"), nil
	}

	position, ok := getPosition(req)
	if !ok {
		return mcp.NewToolResultError("line and character must be positive (1-based)"), nil
	}

	path := ResolvePath(filePath, t.config.WorkspaceRoot)

	slog.Debug("MCP tool called",
		"tool", ToolMoveCaret,
		"file", path,
		"line", position.Line,
		"character", position.Character)

	t.engine.CaretMoved(ctx, path, position)

	toolResult := results.MoveCaretToolResult{
		File:      GetRelativePath(path, t.config.WorkspaceRoot),
		Line:      position.Line + 1,
		Character: position.Character + 1,
	}

	if _, symbol, ok := t.engine.CaretSymbol(); ok {
		toolResult.SymbolFound = true
		toolResult.Symbol = symbol.Name
		toolResult.Message = fmt.Sprintf("Caret is on symbol '%s'.", symbol.Name)
	} else {
		toolResult.Message = "No symbol at the caret position."
	}

	jsonBytes, err := json.MarshalIndent(toolResult, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal tool result into JSON: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}
