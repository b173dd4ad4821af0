package tools

import (
	"context"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/renamekit/renamer/pkg/types"
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool names
const (
	ToolMoveCaret    = "move_caret"
	ToolCanRename    = "can_rename"
	ToolRenameSymbol = "rename_symbol"
)

// ResolvePath makes a tool-supplied path absolute against the workspace root
func ResolvePath(path string, workspaceRoot string) string {
	path = strings.TrimPrefix(path, "file://")
	if !filepath.IsAbs(path) {
		path = filepath.Join(workspaceRoot, path)
	}
	return filepath.Clean(path)
}

// GetRelativePath converts an absolute path to a path relative to the
// workspace root
func GetRelativePath(absolutePath, workspaceRoot string) string {
	if rel, err := filepath.Rel(workspaceRoot, absolutePath); err == nil {
		return rel
	}
	return filepath.Base(absolutePath)
}

// getPosition extracts a display position (1-based) from an MCP request and
// converts it to the checker's 0-based coordinates
func getPosition(req mcp.CallToolRequest) (types.Position, bool) {
	line := int(mcp.ParseFloat64(req, "line", 0))
	character := int(mcp.ParseFloat64(req, "character", 0))
	if line < 1 || character < 1 {
		return types.Position{}, false
	}
	return types.Position{
		Line:      line - 1,
		Character: character - 1,
	}, true
}

// IsValidIdentifier checks whether the name is a plain identifier in the
// target language: a letter or underscore followed by letters, digits,
// underscores or apostrophes
func IsValidIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if unicode.IsLetter(r) || r == '_' {
			continue
		}
		if i > 0 && (unicode.IsDigit(r) || r == '\'') {
			continue
		}
		return false
	}
	return true
}

// staticPrompter stands in for the host's naming dialog: the host already
// collected the new name, so the prompt returns it unconditionally
type staticPrompter struct {
	newName string
}

var _ types.Prompter = staticPrompter{}

func (p staticPrompter) PromptForNewName(ctx context.Context, currentText string, symbol *types.Symbol) (string, bool) {
	return p.newName, true
}
