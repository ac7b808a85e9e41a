package validate

import (
	"reflect"
	"testing"
)

func TestGroupByFile(t *testing.T) {
	findings := []Finding{
		{FilePath: "b.yml", RuleID: "yaml[indentation]"},
		{FilePath: "a.yml", RuleID: "name[missing]"},
		{FilePath: "b.yml", RuleID: "risky-shell-pipe"},
	}

	grouped := GroupByFile(findings)
	if len(grouped) != 2 {
		t.Fatalf("expected 2 files, got %d", len(grouped))
	}
	if len(grouped["b.yml"]) != 2 {
		t.Errorf("b.yml should carry 2 findings, got %d", len(grouped["b.yml"]))
	}
}

func TestSortedFiles(t *testing.T) {
	grouped := map[string][]Finding{
		"c.yml": nil,
		"a.yml": nil,
		"b.yml": nil,
	}
	got := SortedFiles(grouped)
	want := []string{"a.yml", "b.yml", "c.yml"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFixReportUnresolved(t *testing.T) {
	report := &FixReport{
		Outcome: OutcomeExhausted,
		Rounds:  4,
		Files: []FileResult{
			{FilePath: "clean.yml", Attempts: 1},
			{FilePath: "broken.yml", Attempts: 3, Exhausted: true, Unresolved: []Finding{{FilePath: "broken.yml", RuleID: "syntax-check"}}},
		},
	}

	unresolved := report.Unresolved()
	if len(unresolved) != 1 {
		t.Fatalf("expected 1 unresolved file, got %d", len(unresolved))
	}
	if unresolved[0].FilePath != "broken.yml" {
		t.Errorf("unresolved file = %s, want broken.yml", unresolved[0].FilePath)
	}
}
