package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		workspaceRoot string
		expected      string
	}{
		{
			name:          "relative path joined to workspace root",
			path:          "src/A.fs",
			workspaceRoot: "/workspace",
			expected:      "/workspace/src/A.fs",
		},
		{
			name:          "absolute path kept as-is",
			path:          "/elsewhere/B.fs",
			workspaceRoot: "/workspace",
			expected:      "/elsewhere/B.fs",
		},
		{
			name:          "file URI stripped",
			path:          "file:///workspace/src/A.fs",
			workspaceRoot: "/workspace",
			expected:      "/workspace/src/A.fs",
		},
		{
			name:          "dot segments cleaned",
			path:          "src/../A.fs",
			workspaceRoot: "/workspace",
			expected:      "/workspace/A.fs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolvePath(tt.path, tt.workspaceRoot))
		})
	}
}

func TestGetRelativePath(t *testing.T) {
	assert.Equal(t, "src/A.fs", GetRelativePath("/workspace/src/A.fs", "/workspace"))
	assert.Equal(t, "A.fs", GetRelativePath("/workspace/A.fs", "/workspace"))
}

func TestIsValidIdentifier(t *testing.T) {
	valid := []string{"x", "rename", "camelCase", "_private", "with_underscore", "x'", "x2", "état"}
	for _, name := range valid {
		assert.True(t, IsValidIdentifier(name), "%q should be valid", name)
	}

	invalid := []string{"", "2fast", "'leading", "has space", "has-dash", "A.x", "new!"}
	for _, name := range invalid {
		assert.False(t, IsValidIdentifier(name), "%q should be invalid", name)
	}
}
