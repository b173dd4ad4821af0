package msbuild

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/renamekit/renamer/pkg/types"
)

const projectExtension = ".fsproj"

var _ types.ProjectSystem = &Locator{}

// Locator implements the project-system collaborator: it maps a document to
// the project that owns it by walking ancestor directories up to the
// workspace root, and serves handles out of the shared cache.
type Locator struct {
	workspaceRoot string
	projectPath   string // optional pinned project, skips the walk
	cache         *Cache
}

// NewLocator creates a project locator for the workspace
func NewLocator(workspaceRoot, projectPath string, cache *Cache) *Locator {
	return &Locator{
		workspaceRoot: workspaceRoot,
		projectPath:   projectPath,
		cache:         cache,
	}
}

// ProjectForDocument returns the project that owns the document. A load
// failure is surfaced to the caller as an error, which the rename command
// treats as "no project, rename disabled".
func (l *Locator) ProjectForDocument(path string) (types.ProjectHandle, error) {
	if l.projectPath != "" {
		return l.cache.Get(l.projectPath)
	}

	dir := filepath.Dir(path)
	for {
		if projFile, ok := findProjectFile(dir); ok {
			return l.cache.Get(projFile)
		}
		if dir == l.workspaceRoot || dir == filepath.Dir(dir) {
			break
		}
		dir = filepath.Dir(dir)
	}

	slog.Debug("No project file found for document", "document", path, "workspace_root", l.workspaceRoot)
	return nil, nil
}

func findProjectFile(dir string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), projectExtension) {
			return filepath.Join(dir, entry.Name()), true
		}
	}
	return "", false
}
