// Package validate defines the static-analysis finding model and the
// reports produced by the validate-fix loop.
package validate

import (
	"context"
	"errors"
	"sort"
)

// ErrUnavailable is returned when the validator tool cannot run at all
// (missing binary, timeout). It aborts the loop; unresolved findings do not.
var ErrUnavailable = errors.New("validator unavailable")

// Finding is one reported issue, scoped to a file. Findings are ephemeral:
// recomputed every scan, never persisted.
type Finding struct {
	FilePath string `json:"file_path"`
	Line     int    `json:"line"`
	RuleID   string `json:"rule_id"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// Scanner runs static analysis over a whole output tree.
type Scanner interface {
	Scan(ctx context.Context, treeRoot string) ([]Finding, error)
}

// GroupByFile buckets findings by file path.
func GroupByFile(findings []Finding) map[string][]Finding {
	grouped := make(map[string][]Finding)
	for _, f := range findings {
		grouped[f.FilePath] = append(grouped[f.FilePath], f)
	}
	return grouped
}

// SortedFiles returns the grouped file paths in lexicographic order.
// Deterministic ordering is the only reproducibility the engine can offer
// around a non-deterministic generator.
func SortedFiles(grouped map[string][]Finding) []string {
	files := make([]string, 0, len(grouped))
	for f := range grouped {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}
