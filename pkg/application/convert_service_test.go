package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/felixgeelhaar/porter/pkg/domain/checklist"
	"github.com/felixgeelhaar/porter/pkg/domain/conversion"
	"github.com/felixgeelhaar/porter/pkg/domain/generate"
	"github.com/felixgeelhaar/porter/pkg/storage"
)

// fakeGenerator scripts per-target outcomes. A nil entry means success with
// a default artifact.
type fakeGenerator struct {
	mu       sync.Mutex
	fail     map[string]error  // target -> error
	output   map[string][]byte // target -> artifact
	calls    []string
	fixCalls []string
}

func (g *fakeGenerator) ID() string { return "fake" }

func (g *fakeGenerator) Generate(ctx context.Context, unit conversion.Unit, genCtx generate.Context, mode generate.Mode) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if mode == generate.ModeFix {
		g.fixCalls = append(g.fixCalls, unit.TargetPath)
	} else {
		g.calls = append(g.calls, unit.TargetPath)
	}

	if err, ok := g.fail[unit.TargetPath]; ok {
		return nil, generate.Failed(err)
	}
	if out, ok := g.output[unit.TargetPath]; ok {
		return out, nil
	}
	return []byte("---\n- name: ok\n"), nil
}

func (g *fakeGenerator) createCalls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

type convertFixture struct {
	root    string
	store   *checklist.Store
	gen     *fakeGenerator
	service *ConvertService
	opts    Options
}

func newConvertFixture(t *testing.T, gen *fakeGenerator) *convertFixture {
	t.Helper()

	root := t.TempDir()
	repo := storage.NewFilesystemRepository(root)
	if err := repo.Initialize(); err != nil {
		t.Fatal(err)
	}

	opts := Options{
		SourceDir: filepath.Join(root, "source"),
		TargetDir: filepath.Join(root, "output"),
		Workers:   2,
	}
	if err := os.MkdirAll(opts.SourceDir, 0700); err != nil {
		t.Fatal(err)
	}

	store := checklist.NewStore(nil, repo)
	return &convertFixture{
		root:    root,
		store:   store,
		gen:     gen,
		service: NewConvertService(store, gen, nil, zerolog.Nop(), opts),
		opts:    opts,
	}
}

func (f *convertFixture) addItem(t *testing.T, source, target string, category checklist.Category) checklist.Key {
	t.Helper()
	item := checklist.Item{Category: category, SourcePath: source, TargetPath: target, Status: checklist.StatusPending}
	if source != checklist.NoSource {
		path := filepath.Join(f.opts.SourceDir, source)
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("package 'nginx'"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.store.Add(item); err != nil {
		t.Fatal(err)
	}
	return item.Key()
}

func TestRunPendingConvertsAndRecordsFailures(t *testing.T) {
	gen := &fakeGenerator{fail: map[string]error{
		"roles/converted/tasks/broken.yml": errors.New("model refused"),
	}}
	f := newConvertFixture(t, gen)

	okKey := f.addItem(t, "recipes/default.rb", "roles/converted/tasks/default.yml", checklist.CategoryRecipeTask)
	brokenKey := f.addItem(t, "recipes/broken.rb", "roles/converted/tasks/broken.yml", checklist.CategoryRecipeTask)
	cfgKey := f.addItem(t, checklist.NoSource, "ansible.cfg", checklist.CategoryStructure)

	report, err := f.service.RunPending(context.Background(), conversion.TechChef)
	if err != nil {
		t.Fatalf("RunPending: %v", err)
	}

	if report.Completed != 2 || report.Errored != 1 {
		t.Errorf("report = %+v", report)
	}
	if _, ok := report.Failures["roles/converted/tasks/broken.yml"]; !ok {
		t.Errorf("failure reason missing: %v", report.Failures)
	}

	for _, key := range []checklist.Key{okKey, cfgKey} {
		item, _ := f.store.Get(key)
		if item.Status != checklist.StatusComplete {
			t.Errorf("%s status = %s, want complete", key, item.Status)
		}
	}
	item, _ := f.store.Get(brokenKey)
	if item.Status != checklist.StatusError {
		t.Errorf("broken item status = %s, want error", item.Status)
	}

	// Successful artifacts land on disk.
	if _, err := os.Stat(filepath.Join(f.opts.TargetDir, "ansible.cfg")); err != nil {
		t.Errorf("artifact not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(f.opts.TargetDir, "roles/converted/tasks/broken.yml")); !os.IsNotExist(err) {
		t.Error("failed unit must not leave an artifact")
	}
}

func TestRunPendingRetriesOnlyErroredItems(t *testing.T) {
	gen := &fakeGenerator{fail: map[string]error{
		"roles/converted/tasks/broken.yml": errors.New("model refused"),
	}}
	f := newConvertFixture(t, gen)

	f.addItem(t, "recipes/default.rb", "roles/converted/tasks/default.yml", checklist.CategoryRecipeTask)
	brokenKey := f.addItem(t, "recipes/broken.rb", "roles/converted/tasks/broken.yml", checklist.CategoryRecipeTask)

	if _, err := f.service.RunPending(context.Background(), conversion.TechChef); err != nil {
		t.Fatal(err)
	}

	// Second pass: generator now succeeds for the broken item.
	gen.mu.Lock()
	gen.fail = nil
	gen.calls = nil
	gen.mu.Unlock()

	report, err := f.service.RunPending(context.Background(), conversion.TechChef)
	if err != nil {
		t.Fatal(err)
	}

	calls := gen.createCalls()
	if len(calls) != 1 || calls[0] != "roles/converted/tasks/broken.yml" {
		t.Errorf("second pass calls = %v, want only the errored item", calls)
	}
	if report.Completed != 1 || report.Skipped != 1 {
		t.Errorf("second pass report = %+v", report)
	}

	item, _ := f.store.Get(brokenKey)
	if item.Status != checklist.StatusComplete {
		t.Errorf("retried item status = %s, want complete", item.Status)
	}
}

func TestRunPendingRejectsEmptyArtifacts(t *testing.T) {
	gen := &fakeGenerator{output: map[string][]byte{
		"roles/converted/tasks/default.yml": {},
	}}
	f := newConvertFixture(t, gen)
	key := f.addItem(t, "recipes/default.rb", "roles/converted/tasks/default.yml", checklist.CategoryRecipeTask)

	report, err := f.service.RunPending(context.Background(), conversion.TechChef)
	if err != nil {
		t.Fatal(err)
	}
	if report.Errored != 1 {
		t.Errorf("report = %+v", report)
	}

	item, _ := f.store.Get(key)
	if item.Status != checklist.StatusError {
		t.Errorf("status = %s, want error", item.Status)
	}
}

func TestRunPendingMarksUnreadableSourceAsError(t *testing.T) {
	gen := &fakeGenerator{}
	f := newConvertFixture(t, gen)

	item := checklist.Item{Category: checklist.CategoryRecipeTask, SourcePath: "recipes/ghost.rb", TargetPath: "roles/converted/tasks/ghost.yml", Status: checklist.StatusPending}
	if err := f.store.Add(item); err != nil {
		t.Fatal(err)
	}

	report, err := f.service.RunPending(context.Background(), conversion.TechChef)
	if err != nil {
		t.Fatal(err)
	}
	if report.Errored != 1 {
		t.Errorf("report = %+v", report)
	}
	if len(gen.createCalls()) != 0 {
		t.Error("generator must not be called for unreadable sources")
	}
}

func TestRunPendingRequiresTechnology(t *testing.T) {
	f := newConvertFixture(t, &fakeGenerator{})
	if _, err := f.service.RunPending(context.Background(), ""); err == nil {
		t.Error("expected error for unresolved technology")
	}
}

func TestRunPendingProcessesCategoriesInOrder(t *testing.T) {
	gen := &fakeGenerator{}
	f := newConvertFixture(t, gen)

	// Added out of order on purpose.
	f.addItem(t, "recipes/default.rb", "roles/converted/tasks/default.yml", checklist.CategoryRecipeTask)
	f.addItem(t, checklist.NoSource, "ansible.cfg", checklist.CategoryStructure)
	f.addItem(t, "templates/nginx.conf.erb", "roles/converted/templates/nginx.conf.j2", checklist.CategoryTemplate)

	if _, err := f.service.RunPending(context.Background(), conversion.TechChef); err != nil {
		t.Fatal(err)
	}

	calls := gen.createCalls()
	want := []string{
		"ansible.cfg",
		"roles/converted/templates/nginx.conf.j2",
		"roles/converted/tasks/default.yml",
	}
	if fmt.Sprint(calls) != fmt.Sprint(want) {
		t.Errorf("dispatch order = %v, want %v", calls, want)
	}
}
