package results

import (
	"fmt"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// UnifiedDiff renders the before/after texts of one file as a unified diff.
// Rename edits replace identifiers in place, so the two texts have the same
// line count and every contiguous run of differing lines becomes one hunk.
func UnifiedDiff(path, before, after string) (string, error) {
	if before == after {
		return "", nil
	}

	origLines := strings.Split(before, "\n")
	newLines := strings.Split(after, "\n")
	if len(origLines) != len(newLines) {
		return "", fmt.Errorf("line count changed for %s: %d -> %d", path, len(origLines), len(newLines))
	}

	var hunks []*diff.Hunk
	for i := 0; i < len(origLines); {
		if origLines[i] == newLines[i] {
			i++
			continue
		}

		start := i
		for i < len(origLines) && origLines[i] != newLines[i] {
			i++
		}

		var body strings.Builder
		for _, line := range origLines[start:i] {
			body.WriteString("-" + line + "\n")
		}
		for _, line := range newLines[start:i] {
			body.WriteString("+" + line + "\n")
		}

		hunks = append(hunks, &diff.Hunk{
			OrigStartLine: int32(start + 1),
			OrigLines:     int32(i - start),
			NewStartLine:  int32(start + 1),
			NewLines:      int32(i - start),
			Body:          []byte(body.String()),
		})
	}

	fileDiff := &diff.FileDiff{
		OrigName: "a/" + path,
		NewName:  "b/" + path,
		Hunks:    hunks,
	}

	out, err := diff.PrintFileDiff(fileDiff)
	if err != nil {
		return "", fmt.Errorf("failed to print diff for %s: %w", path, err)
	}
	return string(out), nil
}
