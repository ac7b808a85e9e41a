package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeEvent describes a change to a file in the converted tree.
type ChangeEvent struct {
	Path       string
	ChangeType string // "create", "write", "remove", "rename"
}

// artifactExtensions are the file types produced by a conversion. Changes to
// anything else in the tree are ignored.
var artifactExtensions = map[string]bool{
	".yml":  true,
	".yaml": true,
	".j2":   true,
	".cfg":  true,
}

// TreeWatcher watches a converted tree and invokes a callback after changes
// settle. Editor save storms collapse into a single invocation.
type TreeWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func(ChangeEvent)
}

// NewTreeWatcher creates a watcher for conversion artifacts.
func NewTreeWatcher(debounce time.Duration, onChange func(ChangeEvent)) (*TreeWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if debounce == 0 {
		debounce = 500 * time.Millisecond
	}
	return &TreeWatcher{
		watcher:  w,
		debounce: debounce,
		onChange: onChange,
	}, nil
}

// WatchRecursive adds a directory and all its subdirectories to the watcher,
// skipping hidden directories such as .porter and .git.
func (w *TreeWatcher) WatchRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if name := filepath.Base(path); strings.HasPrefix(name, ".") && path != root {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// Run starts the event loop. It blocks until the context is cancelled.
func (w *TreeWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	var lastEvent ChangeEvent
	debouncer := NewDebouncer(w.debounce, func() {
		if w.onChange != nil {
			w.onChange(lastEvent)
		}
	})
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			changeType := opToChangeType(event.Op)
			if changeType == "" {
				continue
			}

			// New directories need their own watch for nested artifacts.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.WatchRecursive(event.Name)
				}
			}

			if !IsArtifact(event.Name) {
				continue
			}

			lastEvent = ChangeEvent{Path: event.Name, ChangeType: changeType}
			debouncer.Trigger()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// IsArtifact reports whether a path looks like a conversion artifact.
func IsArtifact(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return artifactExtensions[filepath.Ext(base)]
}

func opToChangeType(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Rename):
		return "rename"
	default:
		return ""
	}
}
