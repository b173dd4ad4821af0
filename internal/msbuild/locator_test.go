package msbuild

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectForDocument_WalksToNearestProject(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "src", "deep")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	rootProj := writeProject(t, root, "Root.fsproj", `<Project></Project>`)
	srcProj := writeProject(t, filepath.Join(root, "src"), "Src.fsproj", `<Project></Project>`)

	cache := NewCache()
	defer cache.Close()
	locator := NewLocator(root, "", cache)

	// A document deep in the tree binds to the nearest ancestor project
	h, err := locator.ProjectForDocument(filepath.Join(nested, "Impl.fs"))
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, srcProj, h.Path())

	// A document at the root binds to the root project
	h, err = locator.ProjectForDocument(filepath.Join(root, "Program.fs"))
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, rootProj, h.Path())
}

func TestProjectForDocument_NoProjectFound(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "docs")
	require.NoError(t, os.Mkdir(sub, 0o755))

	cache := NewCache()
	defer cache.Close()
	locator := NewLocator(root, "", cache)

	h, err := locator.ProjectForDocument(filepath.Join(sub, "Notes.fs"))
	require.NoError(t, err)
	assert.Nil(t, h)
}

func TestProjectForDocument_StopsAtWorkspaceRoot(t *testing.T) {
	outer := t.TempDir()
	writeProject(t, outer, "Outer.fsproj", `<Project></Project>`)
	root := filepath.Join(outer, "workspace")
	require.NoError(t, os.Mkdir(root, 0o755))

	cache := NewCache()
	defer cache.Close()
	locator := NewLocator(root, "", cache)

	// The project above the workspace root is out of bounds
	h, err := locator.ProjectForDocument(filepath.Join(root, "Program.fs"))
	require.NoError(t, err)
	assert.Nil(t, h)
}

func TestProjectForDocument_PinnedProject(t *testing.T) {
	root := t.TempDir()
	pinned := writeProject(t, root, "Pinned.fsproj", `<Project></Project>`)
	other := filepath.Join(root, "elsewhere")
	require.NoError(t, os.Mkdir(other, 0o755))
	writeProject(t, other, "Other.fsproj", `<Project></Project>`)

	cache := NewCache()
	defer cache.Close()
	locator := NewLocator(root, pinned, cache)

	// The pinned project wins regardless of where the document lives
	h, err := locator.ProjectForDocument(filepath.Join(other, "Impl.fs"))
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, pinned, h.Path())
}

func TestProjectForDocument_PinnedProjectLoadFailure(t *testing.T) {
	root := t.TempDir()

	cache := NewCache()
	defer cache.Close()
	locator := NewLocator(root, filepath.Join(root, "Gone.fsproj"), cache)

	_, err := locator.ProjectForDocument(filepath.Join(root, "Program.fs"))
	var loadErr *LoadError
	assert.ErrorAs(t, err, &loadErr)
}
