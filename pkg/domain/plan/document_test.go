package plan

import (
	"testing"

	"github.com/felixgeelhaar/porter/pkg/domain/checklist"
	"github.com/felixgeelhaar/porter/pkg/domain/conversion"
)

func validDoc() *Document {
	return &Document{
		Version:    1,
		Technology: conversion.TechChef,
		Units: []Entry{
			{Category: checklist.CategoryStructure, SourcePath: checklist.NoSource, TargetPath: "ansible.cfg"},
			{Category: checklist.CategoryRecipeTask, SourcePath: "recipes/default.rb", TargetPath: "roles/converted/tasks/main.yml"},
		},
	}
}

func TestDocumentValidate(t *testing.T) {
	if err := validDoc().Validate(); err != nil {
		t.Fatalf("valid document rejected: %v", err)
	}
}

func TestDocumentValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Document)
	}{
		{"unknown technology", func(d *Document) { d.Technology = "terraform" }},
		{"invalid category", func(d *Document) { d.Units[0].Category = "misc" }},
		{"empty source", func(d *Document) { d.Units[0].SourcePath = "" }},
		{"empty target", func(d *Document) { d.Units[1].TargetPath = "" }},
		{"duplicate pair", func(d *Document) { d.Units = append(d.Units, d.Units[1]) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDoc()
			tt.mutate(doc)
			if err := doc.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestEntryKey(t *testing.T) {
	e := Entry{Category: checklist.CategoryTemplate, SourcePath: "t.erb", TargetPath: "t.j2"}
	k := e.Key()
	if k.SourcePath != "t.erb" || k.TargetPath != "t.j2" {
		t.Errorf("unexpected key: %+v", k)
	}
}
