package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/porter/pkg/domain/conversion"
	"github.com/felixgeelhaar/porter/pkg/domain/generate"
	"github.com/felixgeelhaar/porter/pkg/domain/validate"
)

type fakeCompleter struct {
	text    string
	err     error
	lastReq CompletionRequest
}

func (f *fakeCompleter) ID() string { return "fake:model" }

func (f *fakeCompleter) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &CompletionResponse{Text: f.text}, nil
}

func TestExtractArtifact(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"fenced yaml", "Here you go:\n```yaml\n---\n- name: x\n```\ndone", "---\n- name: x\n"},
		{"fenced no info string", "```\n[defaults]\n```", "[defaults]\n"},
		{"bare response", "---\n- name: x", "---\n- name: x"},
		{"empty", "", ""},
		{"whitespace only", "  \n\t", ""},
		{"empty fenced block", "```yaml\n\n```", ""},
		{"unterminated fence", "```yaml\n- name: x\n", "- name: x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractArtifact(tt.text); got != tt.want {
				t.Errorf("extractArtifact(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestGeneratorProducesArtifact(t *testing.T) {
	completer := &fakeCompleter{text: "```yaml\n---\n- name: install nginx\n```"}
	gen := NewGenerator(completer)

	unit := conversion.Unit{
		SourcePath: "recipes/default.rb",
		TargetPath: "roles/converted/tasks/default.yml",
		Category:   "recipe-task",
		Technology: conversion.TechChef,
		Content:    "package 'nginx'",
	}
	genCtx := generate.Context{TargetSchema: "ansible/tasks@2.16"}

	out, err := gen.Generate(context.Background(), unit, genCtx, generate.ModeCreate)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(out) != "---\n- name: install nginx\n" {
		t.Errorf("artifact = %q", out)
	}

	if !strings.Contains(completer.lastReq.System, "Chef") {
		t.Errorf("system prompt missing technology: %q", completer.lastReq.System)
	}
	if !strings.Contains(completer.lastReq.Prompt, "package 'nginx'") {
		t.Errorf("user prompt missing source content: %q", completer.lastReq.Prompt)
	}
}

func TestGeneratorFixModeIncludesFindings(t *testing.T) {
	completer := &fakeCompleter{text: "```yaml\n---\n- name: fixed\n```"}
	gen := NewGenerator(completer)

	unit := conversion.Unit{TargetPath: "roles/converted/tasks/main.yml", Category: "recipe-task", Technology: conversion.TechChef}
	genCtx := generate.Context{
		TargetSchema: "ansible/tasks@2.16",
		Existing:     "---\n- debug: msg=hi\n",
		Findings: []validate.Finding{
			{FilePath: "roles/converted/tasks/main.yml", Line: 2, RuleID: "name[missing]", Message: "All tasks should be named"},
		},
	}

	if _, err := gen.Generate(context.Background(), unit, genCtx, generate.ModeFix); err != nil {
		t.Fatal(err)
	}

	prompt := completer.lastReq.Prompt
	if !strings.Contains(prompt, "name[missing]") {
		t.Errorf("fix prompt missing rule ID: %q", prompt)
	}
	if !strings.Contains(prompt, "- debug: msg=hi") {
		t.Errorf("fix prompt missing current artifact: %q", prompt)
	}
}

func TestGeneratorWrapsCompleterErrors(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("rate limited")}
	gen := NewGenerator(completer)

	_, err := gen.Generate(context.Background(), conversion.Unit{Technology: conversion.TechChef}, generate.Context{}, generate.ModeCreate)
	if !errors.Is(err, generate.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestGeneratorEmptyCompletionYieldsNoArtifact(t *testing.T) {
	completer := &fakeCompleter{text: "```yaml\n```"}
	gen := NewGenerator(completer)

	out, err := gen.Generate(context.Background(), conversion.Unit{Technology: conversion.TechChef}, generate.Context{}, generate.ModeCreate)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Errorf("expected empty artifact, got %q", out)
	}
}
