package checklist

import (
	"errors"
	"testing"
)

type recordingPersister struct {
	saves [][]Item
	err   error
}

func (p *recordingPersister) SaveItems(items []Item) error {
	if p.err != nil {
		return p.err
	}
	p.saves = append(p.saves, items)
	return nil
}

func newItem(source, target string, category Category) Item {
	return Item{
		Category:   category,
		SourcePath: source,
		TargetPath: target,
		Status:     StatusPending,
	}
}

func TestStoreAdd(t *testing.T) {
	p := &recordingPersister{}
	s := NewStore(nil, p)

	item := newItem("recipes/default.rb", "roles/converted/tasks/main.yml", CategoryRecipeTask)
	if err := s.Add(item); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(p.saves) != 1 {
		t.Errorf("expected 1 flush, got %d", len(p.saves))
	}

	err := s.Add(item)
	var dup *DuplicateKeyError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateKeyError, got %v", err)
	}
	if dup.Key != item.Key() {
		t.Errorf("duplicate key = %v, want %v", dup.Key, item.Key())
	}
}

func TestStoreAddRejectsInvalidItems(t *testing.T) {
	s := NewStore(nil, nil)

	tests := []struct {
		name string
		item Item
	}{
		{"empty source", Item{Category: CategoryRecipeTask, TargetPath: "a.yml", Status: StatusPending}},
		{"empty target", Item{Category: CategoryRecipeTask, SourcePath: "a.rb", Status: StatusPending}},
		{"bad category", Item{Category: "nope", SourcePath: "a.rb", TargetPath: "a.yml", Status: StatusPending}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Add(tt.item); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestStoreUpdateStatus(t *testing.T) {
	s := NewStore(nil, nil)
	item := newItem("a.rb", "a.yml", CategoryRecipeTask)
	if err := s.Add(item); err != nil {
		t.Fatal(err)
	}

	if err := s.UpdateStatus(item.Key(), StatusComplete, "converted"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	got, _ := s.Get(item.Key())
	if got.Status != StatusComplete {
		t.Errorf("status = %s, want complete", got.Status)
	}
	if len(got.Notes) != 1 || got.Notes[0].Text != "converted" {
		t.Errorf("expected one note 'converted', got %+v", got.Notes)
	}

	// Completed items cannot go back to pending.
	err := s.UpdateStatus(item.Key(), StatusPending, "undo")
	var trans *TransitionError
	if !errors.As(err, &trans) {
		t.Fatalf("expected TransitionError, got %v", err)
	}

	// The failed transition must not have recorded a note.
	got, _ = s.Get(item.Key())
	if len(got.Notes) != 1 {
		t.Errorf("failed transition appended a note: %+v", got.Notes)
	}
}

func TestStoreUpdateStatusNotFound(t *testing.T) {
	s := NewStore(nil, nil)
	err := s.UpdateStatus(Key{SourcePath: "x", TargetPath: "y"}, StatusComplete, "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreAnnotateAppendsMonotonicSeq(t *testing.T) {
	s := NewStore(nil, nil)
	item := newItem("a.rb", "a.yml", CategoryRecipeTask)
	if err := s.Add(item); err != nil {
		t.Fatal(err)
	}

	for _, note := range []string{"first", "second", "third"} {
		if err := s.Annotate(item.Key(), note); err != nil {
			t.Fatal(err)
		}
	}

	got, _ := s.Get(item.Key())
	if len(got.Notes) != 3 {
		t.Fatalf("expected 3 notes, got %d", len(got.Notes))
	}
	for i, n := range got.Notes {
		if n.Seq != i+1 {
			t.Errorf("note %d seq = %d, want %d", i, n.Seq, i+1)
		}
	}
}

func TestStoreClaims(t *testing.T) {
	s := NewStore(nil, nil)
	item := newItem("a.rb", "a.yml", CategoryRecipeTask)
	if err := s.Add(item); err != nil {
		t.Fatal(err)
	}

	if !s.Claim(item.Key()) {
		t.Fatal("first claim should succeed")
	}
	if s.Claim(item.Key()) {
		t.Error("second claim should fail")
	}

	s.Release(item.Key())
	if !s.Claim(item.Key()) {
		t.Error("claim after release should succeed")
	}

	s.ReleaseAll()
	if !s.Claim(item.Key()) {
		t.Error("claim after ReleaseAll should succeed")
	}

	if s.Claim(Key{SourcePath: "x", TargetPath: "y"}) {
		t.Error("claiming an unknown key should fail")
	}
}

func TestStoreSeedsIgnoreDuplicates(t *testing.T) {
	item := newItem("a.rb", "a.yml", CategoryRecipeTask)
	s := NewStore([]Item{item, item}, nil)
	if n := len(s.List()); n != 1 {
		t.Errorf("expected 1 item, got %d", n)
	}
}

func TestStoreCountByStatus(t *testing.T) {
	s := NewStore(nil, nil)
	a := newItem("a.rb", "a.yml", CategoryRecipeTask)
	b := newItem("b.rb", "b.yml", CategoryRecipeTask)
	if err := s.Add(a); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(b); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateStatus(a.Key(), StatusComplete, "done"); err != nil {
		t.Fatal(err)
	}

	counts := s.CountByStatus()
	if counts[StatusComplete] != 1 || counts[StatusPending] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
}

func TestSortItems(t *testing.T) {
	items := []Item{
		newItem("r.rb", "roles/converted/tasks/b.yml", CategoryRecipeTask),
		newItem("r2.rb", "roles/converted/tasks/a.yml", CategoryRecipeTask),
		newItem(NoSource, "ansible.cfg", CategoryStructure),
		newItem("t.erb", "roles/converted/templates/t.j2", CategoryTemplate),
	}
	SortItems(items)

	wantOrder := []string{
		"ansible.cfg",
		"roles/converted/templates/t.j2",
		"roles/converted/tasks/a.yml",
		"roles/converted/tasks/b.yml",
	}
	for i, want := range wantOrder {
		if items[i].TargetPath != want {
			t.Errorf("position %d = %s, want %s", i, items[i].TargetPath, want)
		}
	}
}

func TestStoreFindByTarget(t *testing.T) {
	s := NewStore(nil, nil)
	item := newItem("a.rb", "roles/converted/tasks/main.yml", CategoryRecipeTask)
	if err := s.Add(item); err != nil {
		t.Fatal(err)
	}

	got, ok := s.FindByTarget("roles/converted/tasks/main.yml")
	if !ok || got.SourcePath != "a.rb" {
		t.Errorf("FindByTarget = %+v, %v", got, ok)
	}
	if _, ok := s.FindByTarget("nope.yml"); ok {
		t.Error("expected no match")
	}
}
