package checklist

import (
	"fmt"
	"time"
)

// NoSource is the sentinel source path for items with no source analogue,
// such as purely generated structural files (ansible.cfg, inventory stubs).
const NoSource = "NONE"

// Key identifies an item by its (source, target) pair.
type Key struct {
	SourcePath string `json:"source_path" yaml:"source_path"`
	TargetPath string `json:"target_path" yaml:"target_path"`
}

func (k Key) String() string {
	return fmt.Sprintf("%s -> %s", k.SourcePath, k.TargetPath)
}

// Note is one append-only audit entry on an item. Seq is a logical
// timestamp scoped to the item; notes are never rewritten.
type Note struct {
	Seq  int       `json:"seq" yaml:"seq"`
	Time time.Time `json:"time" yaml:"time"`
	Text string    `json:"text" yaml:"text"`
}

// Item is one source-to-target conversion unit tracked by the engine.
type Item struct {
	Category   Category `json:"category" yaml:"category"`
	SourcePath string   `json:"source_path" yaml:"source_path"`
	TargetPath string   `json:"target_path" yaml:"target_path"`
	Status     Status   `json:"status" yaml:"status"`
	Notes      []Note   `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Key returns the item's primary key.
func (i *Item) Key() Key {
	return Key{SourcePath: i.SourcePath, TargetPath: i.TargetPath}
}

// HasSource reports whether the item has a source artifact to read.
func (i *Item) HasSource() bool {
	return i.SourcePath != "" && i.SourcePath != NoSource
}

// AppendNote adds an audit entry with the next logical timestamp.
func (i *Item) AppendNote(text string) {
	seq := 1
	if n := len(i.Notes); n > 0 {
		seq = i.Notes[n-1].Seq + 1
	}
	i.Notes = append(i.Notes, Note{Seq: seq, Time: time.Now().UTC(), Text: text})
}

// Validate checks structural invariants before an item enters the store.
func (i *Item) Validate() error {
	if !i.Category.IsValid() {
		return fmt.Errorf("invalid category: %s", i.Category)
	}
	if i.SourcePath == "" {
		return fmt.Errorf("source path is empty (use %q for generated files)", NoSource)
	}
	if i.TargetPath == "" {
		return fmt.Errorf("target path is empty")
	}
	if !i.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", i.Status)
	}
	return nil
}
