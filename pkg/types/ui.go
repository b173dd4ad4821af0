package types

import "context"

// Prompter defines the UI collaborator that collects the new name from the
// user. It is modal from the engine's perspective.
type Prompter interface {
	// PromptForNewName returns the chosen name, or ok=false when the user
	// dismissed the dialog
	PromptForNewName(ctx context.Context, currentText string, symbol *Symbol) (newName string, ok bool)
}
