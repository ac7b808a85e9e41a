// Package plan defines the migration plan document: the human-editable
// list of conversion units the planner reconciles into the checklist.
package plan

import (
	"fmt"

	"github.com/felixgeelhaar/porter/pkg/domain/checklist"
	"github.com/felixgeelhaar/porter/pkg/domain/conversion"
)

// Entry is one required conversion unit in the plan.
type Entry struct {
	Category   checklist.Category `yaml:"category" json:"category"`
	SourcePath string             `yaml:"source_path" json:"source_path"`
	TargetPath string             `yaml:"target_path" json:"target_path"`
}

// Key returns the checklist key the entry maps to.
func (e Entry) Key() checklist.Key {
	return checklist.Key{SourcePath: e.SourcePath, TargetPath: e.TargetPath}
}

// Document is the migration plan. Humans may edit it between runs; the
// planner only ever adds missing units to the checklist, so edits can
// extend but never silently destroy completed work.
type Document struct {
	Version    int                   `yaml:"version" json:"version"`
	Technology conversion.Technology `yaml:"technology" json:"technology"`
	Units      []Entry               `yaml:"units" json:"units"`
}

// Validate checks the document's structural invariants: known technology,
// valid categories, non-empty paths, no duplicate (source, target) pairs.
func (d *Document) Validate() error {
	if !d.Technology.IsValid() {
		return fmt.Errorf("plan technology %q is not supported", d.Technology)
	}

	seen := make(map[checklist.Key]bool, len(d.Units))
	for i, u := range d.Units {
		if !u.Category.IsValid() {
			return fmt.Errorf("plan unit %d: invalid category %q", i, u.Category)
		}
		if u.SourcePath == "" {
			return fmt.Errorf("plan unit %d: empty source path (use %q for generated files)", i, checklist.NoSource)
		}
		if u.TargetPath == "" {
			return fmt.Errorf("plan unit %d: empty target path", i)
		}
		k := u.Key()
		if seen[k] {
			return fmt.Errorf("plan unit %d: duplicate pair %s", i, k)
		}
		seen[k] = true
	}
	return nil
}
