package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/renamekit/renamer/pkg/types"
)

// OccurrenceSet maps absolute file paths to the ordered occurrences of a
// symbol within each file. It is built once per rename operation and never
// mutated afterwards.
type OccurrenceSet struct {
	files  []string
	ranges map[string][]types.SourceRange
}

// Files returns the affected files in deterministic order
func (s *OccurrenceSet) Files() []string {
	return s.files
}

// RangesFor returns the occurrences within one file, in appearance order
func (s *OccurrenceSet) RangesFor(file string) []types.SourceRange {
	return s.ranges[file]
}

// Len returns the total occurrence count across all files
func (s *OccurrenceSet) Len() int {
	n := 0
	for _, rs := range s.ranges {
		n += len(rs)
	}
	return n
}

// UsageResult is the outcome of one usage query
type UsageResult struct {
	CanonicalName string
	DisplayText   string
	Occurrences   *OccurrenceSet
}

// UsageResolver turns a located symbol into the set of places to edit
type UsageResolver struct {
	service types.CompilerService
}

// NewUsageResolver creates a usage resolver backed by the checker
func NewUsageResolver(service types.CompilerService) *UsageResolver {
	return &UsageResolver{service: service}
}

// FindUsages issues exactly one usage query and normalizes the result:
// occurrences are grouped by canonicalized file path so the same physical
// file is never treated as two targets, deduplicated, and ordered by
// appearance. Never returns partial results.
func (r *UsageResolver) FindUsages(ctx context.Context, symbol *types.Symbol) (*UsageResult, error) {
	locations, err := r.service.FindAllUsages(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("usage query failed: %w", err)
	}
	if locations == nil {
		slog.Debug("Checker reported no usages", "symbol", symbol.Name)
		return nil, ErrAnalysisFailed
	}

	ranges := make(map[string][]types.SourceRange)
	seen := make(map[types.SourceRange]bool)

	for _, loc := range locations {
		path, err := canonicalPath(uriToPath(loc.URI))
		if err != nil {
			slog.Warn("Skipping usage with unresolvable path", "uri", loc.URI, "error", err)
			continue
		}

		// Checker coordinates are 0-based; occurrences carry 1-based
		// display coordinates
		sr := types.SourceRange{
			File:        path,
			StartLine:   loc.Range.Start.Line + 1,
			StartColumn: loc.Range.Start.Character + 1,
			EndLine:     loc.Range.End.Line + 1,
			EndColumn:   loc.Range.End.Character + 1,
		}
		if seen[sr] {
			continue
		}
		seen[sr] = true
		ranges[path] = append(ranges[path], sr)
	}

	files := make([]string, 0, len(ranges))
	for file, rs := range ranges {
		files = append(files, file)
		sort.Slice(rs, func(i, j int) bool {
			if rs[i].StartLine != rs[j].StartLine {
				return rs[i].StartLine < rs[j].StartLine
			}
			return rs[i].StartColumn < rs[j].StartColumn
		})
	}
	sort.Strings(files)

	result := &UsageResult{
		CanonicalName: symbol.Name,
		DisplayText:   symbol.DisplayText,
		Occurrences:   &OccurrenceSet{files: files, ranges: ranges},
	}

	slog.Debug("Resolved usages",
		"symbol", symbol.Name,
		"files", len(files),
		"occurrences", result.Occurrences.Len())

	return result, nil
}

func pathToURI(path string) string {
	if strings.HasPrefix(path, "file://") {
		return path
	}
	return "file://" + path
}

func uriToPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}

func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}
