package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/renamekit/renamer/internal/engine"
	"github.com/renamekit/renamer/internal/results"
	"github.com/renamekit/renamer/pkg/types"

	"github.com/mark3labs/mcp-go/mcp"
)

// CanRenameTool exposes the rename precondition query
type CanRenameTool struct {
	engine *engine.Engine
	config types.Config
}

// NewCanRenameTool creates a new can rename tool
func NewCanRenameTool(eng *engine.Engine, config types.Config) *CanRenameTool {
	return &CanRenameTool{
		engine: eng,
		config: config,
	}
}

// GetTool returns the MCP tool definition
func (t *CanRenameTool) GetTool() mcp.Tool {
	tool := mcp.NewTool(ToolCanRename,
		mcp.WithDescription("Report whether a renameable symbol is located at the last-known caret position"),
	)
	return tool
}

// Handle processes the tool request
func (t *CanRenameTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	toolResult := results.CanRenameToolResult{}

	if document, symbol, ok := t.engine.CaretSymbol(); ok {
		toolResult.CanRename = true
		toolResult.Document = GetRelativePath(document, t.config.WorkspaceRoot)
		toolResult.Symbol = symbol.Name
	}

	jsonBytes, err := json.MarshalIndent(toolResult, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal tool result into JSON: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}
