package results

// RenameSymbolToolResult represents the result of renaming the symbol at
// the caret
type RenameSymbolToolResult struct {
	Message   string               `json:"message"`
	Arguments RenameSymbolToolArgs `json:"arguments"`
	Symbol    string               `json:"symbol,omitempty"`
	FileEdits []FileEdit           `json:"file_edits,omitempty"`
}

// RenameSymbolToolArgs represents the input arguments for the rename tool
type RenameSymbolToolArgs struct {
	NewName string `json:"new_name"`
	Preview bool   `json:"preview,omitempty"`
}

// FileEdit represents the edits applied to a single file
type FileEdit struct {
	File        string `json:"file"`
	Applied     bool   `json:"applied"`
	Edits       []Edit `json:"edits"`
	UnifiedDiff string `json:"unified_diff,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Edit represents a single text edit
type Edit struct {
	StartLine      int    `json:"start_line"`      // Display line (1-indexed)
	StartCharacter int    `json:"start_character"` // Display character (1-indexed)
	EndLine        int    `json:"end_line"`        // Display line (1-indexed)
	EndCharacter   int    `json:"end_character"`   // Display character (1-indexed)
	OldText        string `json:"old_text"`        // The text being replaced
	NewText        string `json:"new_text"`        // The replacement text
}

// CanRenameToolResult represents the rename precondition state
type CanRenameToolResult struct {
	CanRename bool   `json:"can_rename"`
	Document  string `json:"document,omitempty"`
	Symbol    string `json:"symbol,omitempty"`
}

// MoveCaretToolResult represents the caret state after a move
type MoveCaretToolResult struct {
	Message     string `json:"message"`
	File        string `json:"file"`
	Line        int    `json:"line"`      // Display line (1-indexed)
	Character   int    `json:"character"` // Display character (1-indexed)
	SymbolFound bool   `json:"symbol_found"`
	Symbol      string `json:"symbol,omitempty"`
}
