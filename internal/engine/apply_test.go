package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/renamekit/renamer/internal/buffer"
	"github.com/renamekit/renamer/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func occurrenceSetOf(ranges ...types.SourceRange) *OccurrenceSet {
	byFile := make(map[string][]types.SourceRange)
	var files []string
	for _, r := range ranges {
		if _, ok := byFile[r.File]; !ok {
			files = append(files, r.File)
		}
		byFile[r.File] = append(byFile[r.File], r)
	}
	return &OccurrenceSet{files: files, ranges: byFile}
}

func spanOn(file string, line, startCol, endCol int) types.SourceRange {
	return types.SourceRange{
		File:        file,
		StartLine:   line,
		StartColumn: startCol,
		EndLine:     line,
		EndColumn:   endCol,
	}
}

func TestApplyRename_FoldMatchesReverseApplication(t *testing.T) {
	// counter + counter2 + counter on one line, counter on another: the
	// new name is longer than the old one, so later same-line offsets
	// shift as earlier edits land
	content := "let counter = counter + f counter\nprintfn \"%d\" counter\n"
	dir := t.TempDir()
	path := writeFile(t, dir, "Main.fs", content)

	ranges := []types.SourceRange{
		spanOn(path, 1, 5, 12),
		spanOn(path, 1, 15, 22),
		spanOn(path, 1, 27, 34),
		spanOn(path, 2, 14, 21),
	}

	session := &RenameSession{
		OriginDocument: path,
		OldName:        "counter",
		NewName:        "totalCount",
		Occurrences:    occurrenceSetOf(ranges...),
	}

	host := buffer.NewHost()
	editor := NewMultiFileEditor(host)
	results, err := editor.ApplyRename(session)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Cross-check: applying the same edits in reverse order against the
	// original text needs no offset translation at all
	starts := lineStarts(content)
	expected := content
	for i := len(ranges) - 1; i >= 0; i-- {
		r := ranges[i]
		so := starts[r.StartLine-1] + r.StartColumn - 1
		eo := starts[r.EndLine-1] + r.EndColumn - 1
		expected = expected[:so] + "totalCount" + expected[eo:]
	}

	snap, err := host.SnapshotFor(path)
	require.NoError(t, err)
	assert.Equal(t, expected, snap.Text())
	assert.Equal(t, "let totalCount = totalCount + f totalCount\nprintfn \"%d\" totalCount\n", snap.Text())
}

func TestApplyRename_NarrowsQualifiedSpans(t *testing.T) {
	content := "open A\nlet y = A.x + A.x\n"
	dir := t.TempDir()
	path := writeFile(t, dir, "B.fs", content)

	// The checker reports the qualified spans "A.x"
	session := &RenameSession{
		OriginDocument: path,
		OldName:        "x",
		NewName:        "z",
		Occurrences: occurrenceSetOf(
			spanOn(path, 2, 9, 12),
			spanOn(path, 2, 15, 18),
		),
	}

	host := buffer.NewHost()
	results, err := NewMultiFileEditor(host).ApplyRename(session)
	require.NoError(t, err)

	snap, err := host.SnapshotFor(path)
	require.NoError(t, err)
	assert.Equal(t, "open A\nlet y = A.z + A.z\n", snap.Text())

	require.Len(t, results[0].Edits, 2)
	assert.Equal(t, "x", results[0].Edits[0].OldText)
	assert.Equal(t, "z", results[0].Edits[0].NewText)
}

func TestApplyRename_StaleRangeAbortsFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Short.fs", "x\n")

	// Analysis claims an occurrence far beyond the buffer's bounds
	session := &RenameSession{
		OriginDocument: path,
		OldName:        "x",
		NewName:        "y",
		Occurrences:    occurrenceSetOf(spanOn(path, 40, 1, 2)),
	}

	host := buffer.NewHost()
	_, err := NewMultiFileEditor(host).ApplyRename(session)

	var oor *types.OutOfRangeError
	require.ErrorAs(t, err, &oor)

	// The transaction was still released and the file is untouched
	assert.False(t, host.HasOpenTransaction())
	snap, err := host.SnapshotFor(path)
	require.NoError(t, err)
	assert.Equal(t, "x\n", snap.Text())
}

func TestApplyRename_ReadOnlyFileLeavesOthersApplied(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "A.fs", "let x = 1\n")
	second := writeFile(t, dir, "B.fs", "let y = x\n")

	host := buffer.NewHost()
	_, err := host.SnapshotFor(second)
	require.NoError(t, err)
	require.NoError(t, host.SetReadOnly(second, true))

	session := &RenameSession{
		OriginDocument: first,
		OldName:        "x",
		NewName:        "z",
		Occurrences: occurrenceSetOf(
			spanOn(first, 1, 5, 6),
			spanOn(second, 1, 9, 10),
		),
	}

	results, err := NewMultiFileEditor(host).ApplyRename(session)

	var applyErr *types.EditApplyError
	require.ErrorAs(t, err, &applyErr)
	assert.False(t, host.HasOpenTransaction())

	// First file was edited, the read-only one was left unchanged: the
	// documented partial-failure limitation
	require.Len(t, results, 2)
	assert.True(t, results[0].Applied)
	assert.False(t, results[1].Applied)

	snapA, _ := host.SnapshotFor(first)
	assert.Equal(t, "let z = 1\n", snapA.Text())
	snapB, _ := host.SnapshotFor(second)
	assert.Equal(t, "let y = x\n", snapB.Text())
}

func TestPreviewRename_LeavesBuffersUntouched(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "A.fs", "let x = 1\n")

	host := buffer.NewHost()
	before, err := host.SnapshotFor(path)
	require.NoError(t, err)

	session := &RenameSession{
		OriginDocument: path,
		OldName:        "x",
		NewName:        "z",
		Occurrences:    occurrenceSetOf(spanOn(path, 1, 5, 6)),
	}

	results, err := NewMultiFileEditor(host).PreviewRename(session)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "let z = 1\n", results[0].After)
	assert.False(t, results[0].Applied)
	assert.False(t, host.HasOpenTransaction())

	after, err := host.SnapshotFor(path)
	require.NoError(t, err)
	assert.Equal(t, before.Version(), after.Version())
	assert.True(t, strings.Contains(after.Text(), "let x = 1"))
}
