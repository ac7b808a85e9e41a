package storage

import (
	"fmt"
	"os"

	"github.com/felixgeelhaar/porter/pkg/domain/plan"
	"gopkg.in/yaml.v3"
)

// SavePlan writes the migration plan document.
func (r *FilesystemRepository) SavePlan(doc *plan.Document) error {
	if doc == nil {
		return fmt.Errorf("plan document is nil")
	}

	path, err := r.ResolvePath(PlanFile)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	return writeFileAtomic(path, data, 0600)
}

// LoadPlan reads the migration plan document. Returns (nil, nil) when no
// plan exists yet.
func (r *FilesystemRepository) LoadPlan() (*plan.Document, error) {
	path, err := r.ResolvePath(PlanFile)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	var doc plan.Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}

	return &doc, nil
}
