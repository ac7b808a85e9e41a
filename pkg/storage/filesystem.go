package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/porter/pkg/domain/checklist"
	"gopkg.in/yaml.v3"
)

const PorterDir = ".porter"
const ChecklistFile = "checklist.yaml"
const PlanFile = "plan.yaml"
const AttemptsFile = "attempts.json"
const EventsFile = "events.jsonl"
const ConfigFile = "config.yaml"

// FilesystemRepository persists engine state under <root>/.porter. The
// checklist file is the resumption anchor and must stay human-readable and
// diffable; everything is written atomically.
type FilesystemRepository struct {
	root        string
	retryConfig retry.Config
}

func NewFilesystemRepository(root string) *FilesystemRepository {
	return &FilesystemRepository{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Root returns the workspace root directory.
func (r *FilesystemRepository) Root() string {
	return r.root
}

// ResolvePath ensures the path is within the .porter directory and prevents traversal.
func (r *FilesystemRepository) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	baseDir := filepath.Join(r.root, PorterDir)
	fullPath := filepath.Join(baseDir, filename)
	cleanPath := filepath.Clean(fullPath)

	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}

	return cleanPath, nil
}

func (r *FilesystemRepository) Initialize() error {
	path := filepath.Join(r.root, PorterDir)
	if err := os.MkdirAll(path, 0700); err != nil {
		return fmt.Errorf("failed to create .porter directory: %w", err)
	}
	return nil
}

func (r *FilesystemRepository) IsInitialized() bool {
	_, err := os.Stat(filepath.Join(r.root, PorterDir))
	return err == nil
}

// checklistDoc is the on-disk shape of the ledger.
type checklistDoc struct {
	Version int              `yaml:"version"`
	Items   []checklist.Item `yaml:"items"`
}

// SaveItems writes the full checklist. Implements checklist.Persister.
// Write is atomic (temp file + rename) so a crash mid-flush never corrupts
// the ledger.
func (r *FilesystemRepository) SaveItems(items []checklist.Item) error {
	path, err := r.ResolvePath(ChecklistFile)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(checklistDoc{Version: 1, Items: items})
	if err != nil {
		return fmt.Errorf("failed to marshal checklist: %w", err)
	}

	return writeFileAtomic(path, data, 0600)
}

// LoadItems reads the checklist ledger. A missing file is an empty ledger,
// not an error: the first run starts from nothing.
func (r *FilesystemRepository) LoadItems() ([]checklist.Item, error) {
	retryer := retry.New[[]checklist.Item](r.retryConfig)

	return retryer.Do(context.Background(), func(ctx context.Context) ([]checklist.Item, error) {
		path, err := r.ResolvePath(ChecklistFile)
		if err != nil {
			return nil, err
		}

		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to read checklist file: %w", err)
		}

		var doc checklistDoc
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal checklist: %w", err)
		}

		return doc.Items, nil
	})
}

func writeFileAtomic(path string, data []byte, mode os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
