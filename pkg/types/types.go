package types

// Position represents a position in a text document, using the checker's
// 0-based line/character coordinates
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range represents a range in a text document
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Location represents a location in a text document
type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

// Symbol represents a symbol token resolved by the checker
type Symbol struct {
	// Name is the canonical (fully qualified) name of the symbol
	Name string `json:"name"`
	// DisplayText is the text of the token under the caret
	DisplayText string `json:"displayText"`
	// Location is the location of the token the symbol was resolved from
	Location Location `json:"location"`
}

// SourceRange is a textual range as reported by the checker, addressed to a
// file by absolute path with 1-based display coordinates. Immutable once
// produced.
type SourceRange struct {
	File        string `json:"file"`
	StartLine   int    `json:"start_line"`
	StartColumn int    `json:"start_column"`
	EndLine     int    `json:"end_line"`
	EndColumn   int    `json:"end_column"`
}
