package types

// Config represents the configuration for the renamer server
type Config struct {
	CheckerPath   string `json:"checker_path,omitempty"`
	WorkspaceRoot string `json:"workspace_root"`
	ProjectPath   string `json:"project_path,omitempty"`
	LogLevel      string `json:"log_level,omitempty"`
}
