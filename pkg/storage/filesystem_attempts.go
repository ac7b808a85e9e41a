package storage

import (
	"encoding/json"
	"fmt"
	"os"
)

// attemptsDoc persists per-file fix attempt counters. Durability matters:
// a crash mid-round must not grant a file extra budget on resume.
type attemptsDoc struct {
	RunID    string         `json:"run_id"`
	Attempts map[string]int `json:"attempts"`
}

// SaveAttempts writes the attempt counters for the current run.
func (r *FilesystemRepository) SaveAttempts(runID string, attempts map[string]int) error {
	path, err := r.ResolvePath(AttemptsFile)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(attemptsDoc{RunID: runID, Attempts: attempts}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal attempts: %w", err)
	}

	return writeFileAtomic(path, data, 0600)
}

// LoadAttempts reads the persisted counters. A missing file means a fresh
// run with zeroed budgets.
func (r *FilesystemRepository) LoadAttempts() (runID string, attempts map[string]int, err error) {
	path, err := r.ResolvePath(AttemptsFile)
	if err != nil {
		return "", nil, err
	}

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", map[string]int{}, nil
		}
		return "", nil, fmt.Errorf("failed to read attempts file: %w", err)
	}

	var doc attemptsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", nil, fmt.Errorf("failed to unmarshal attempts: %w", err)
	}
	if doc.Attempts == nil {
		doc.Attempts = map[string]int{}
	}

	return doc.RunID, doc.Attempts, nil
}

// ResetAttempts clears all counters at the start of a fresh pipeline run.
func (r *FilesystemRepository) ResetAttempts(runID string) error {
	return r.SaveAttempts(runID, map[string]int{})
}
