package application

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/felixgeelhaar/porter/pkg/domain"
	"github.com/felixgeelhaar/porter/pkg/domain/checklist"
	"github.com/felixgeelhaar/porter/pkg/domain/conversion"
	"github.com/felixgeelhaar/porter/pkg/domain/plan"
)

// planSchemaJSON guards the hand-editable plan document before it touches
// the checklist. Humans edit plan.yaml between runs; a malformed edit should
// fail loudly here, not corrupt the ledger.
const planSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["technology", "units"],
  "properties": {
    "version": { "type": "integer" },
    "technology": { "enum": ["chef", "puppet", "salt"] },
    "units": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["category", "source_path", "target_path"],
        "properties": {
          "category": { "enum": ["structure", "attributes", "static-file", "template", "recipe-task"] },
          "source_path": { "type": "string", "minLength": 1 },
          "target_path": { "type": "string", "minLength": 1 }
        }
      }
    }
  }
}`

var planSchemaLoader = gojsonschema.NewStringLoader(planSchemaJSON)

// PlanService is the planner: it reconciles the migration plan document
// against the checklist store, only ever adding missing units.
type PlanService struct {
	repo      domain.WorkspaceRepository
	store     *checklist.Store
	audit     domain.AuditLogger
	sourceDir string
}

func NewPlanService(repo domain.WorkspaceRepository, store *checklist.Store, audit domain.AuditLogger, sourceDir string) *PlanService {
	return &PlanService{repo: repo, store: store, audit: audit, sourceDir: sourceDir}
}

// ReconcileResult reports what reconciliation changed.
type ReconcileResult struct {
	Added          int
	AlreadyPresent int
	MissingSources []string
}

// Reconcile loads the plan document, validates it, and adds a pending item
// for every (category, source, target) triple absent from the store.
// Existing items are left completely untouched, statuses and notes included,
// and items are never removed: the existing checklist is authoritative over
// a freshly parsed plan. Running twice against the same plan is a no-op the
// second time.
func (s *PlanService) Reconcile(ctx context.Context) (*ReconcileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := s.repo.LoadPlan()
	if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("no plan found; run 'porter plan generate' or write %s", filepath.Join(".porter", "plan.yaml"))
	}

	if err := s.validateDocument(doc); err != nil {
		return nil, err
	}

	result := &ReconcileResult{}
	for _, unit := range doc.Units {
		if _, ok := s.store.Get(unit.Key()); ok {
			result.AlreadyPresent++
			continue
		}

		item := checklist.Item{
			Category:   unit.Category,
			SourcePath: unit.SourcePath,
			TargetPath: unit.TargetPath,
			Status:     checklist.StatusPending,
		}

		// Units with a missing source are still planned; the conversion
		// loop owns the resulting error when it cannot read the source.
		if item.HasSource() {
			if _, err := os.Stat(filepath.Join(s.sourceDir, unit.SourcePath)); err != nil {
				item.AppendNote(fmt.Sprintf("plan references source %s which does not exist on disk", unit.SourcePath))
				result.MissingSources = append(result.MissingSources, unit.SourcePath)
			}
		}

		if err := s.store.Add(item); err != nil {
			return nil, fmt.Errorf("add checklist item %s: %w", unit.Key(), err)
		}
		result.Added++
	}

	if s.audit != nil {
		_ = s.audit.Log("plan.reconcile", "cli", map[string]interface{}{
			"added":           result.Added,
			"already_present": result.AlreadyPresent,
			"missing_sources": len(result.MissingSources),
		})
	}

	return result, nil
}

// validateDocument checks the plan against the JSON schema plus the domain
// invariants the schema cannot express (duplicate keys).
func (s *PlanService) validateDocument(doc *plan.Document) error {
	res, err := gojsonschema.Validate(planSchemaLoader, gojsonschema.NewGoLoader(docAsGeneric(doc)))
	if err != nil {
		return fmt.Errorf("validate plan schema: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("plan document is invalid: %s", strings.Join(msgs, "; "))
	}

	return doc.Validate()
}

// docAsGeneric converts the document to the generic shape gojsonschema
// expects from a Go loader.
func docAsGeneric(doc *plan.Document) map[string]interface{} {
	units := make([]interface{}, 0, len(doc.Units))
	for _, u := range doc.Units {
		units = append(units, map[string]interface{}{
			"category":    string(u.Category),
			"source_path": u.SourcePath,
			"target_path": u.TargetPath,
		})
	}
	return map[string]interface{}{
		"version":    doc.Version,
		"technology": string(doc.Technology),
		"units":      units,
	}
}

// Generate scans the source tree and writes a fresh plan document when none
// exists. When a plan already exists it is left alone unless force is set;
// either way the checklist is only ever extended through Reconcile, so a
// regenerated plan can never regress completed work.
func (s *PlanService) Generate(ctx context.Context, tech conversion.Technology, force bool) (*plan.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if existing, err := s.repo.LoadPlan(); err != nil {
		return nil, err
	} else if existing != nil && !force {
		return existing, nil
	}

	if !tech.IsValid() {
		detected, err := conversion.DetectTechnology(s.sourceDir)
		if err != nil {
			return nil, err
		}
		tech = detected
	}

	doc := &plan.Document{Version: 1, Technology: tech}

	// Structural files have no source analogue.
	doc.Units = append(doc.Units,
		plan.Entry{Category: checklist.CategoryStructure, SourcePath: checklist.NoSource, TargetPath: "ansible.cfg"},
		plan.Entry{Category: checklist.CategoryStructure, SourcePath: checklist.NoSource, TargetPath: filepath.Join("roles", "converted", "meta", "main.yml")},
	)

	entries, err := s.scanSource(tech)
	if err != nil {
		return nil, err
	}
	doc.Units = append(doc.Units, entries...)

	if err := s.repo.SavePlan(doc); err != nil {
		return nil, fmt.Errorf("save plan: %w", err)
	}

	if s.audit != nil {
		_ = s.audit.Log("plan.generate", "cli", map[string]interface{}{
			"technology": string(tech),
			"units":      len(doc.Units),
		})
	}

	return doc, nil
}

// scanSource maps source files to target triples by technology convention.
func (s *PlanService) scanSource(tech conversion.Technology) ([]plan.Entry, error) {
	var entries []plan.Entry

	err := filepath.Walk(s.sourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if name := info.Name(); name == ".git" || name == ".porter" {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(s.sourceDir, path)
		if err != nil {
			return nil
		}

		if entry, ok := classifySource(tech, rel); ok {
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan source tree: %w", err)
	}

	sort.Slice(entries, func(a, b int) bool {
		if entries[a].Category != entries[b].Category {
			return entries[a].Category.OrderIndex() < entries[b].Category.OrderIndex()
		}
		return entries[a].TargetPath < entries[b].TargetPath
	})

	return entries, nil
}

// classifySource assigns one source file to a conversion category and target
// path. Files outside the conventions are skipped.
func classifySource(tech conversion.Technology, rel string) (plan.Entry, bool) {
	base := filepath.Base(rel)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	role := filepath.Join("roles", "converted")

	switch tech {
	case conversion.TechChef:
		switch {
		case strings.HasPrefix(rel, "attributes/") && strings.HasSuffix(rel, ".rb"):
			return plan.Entry{Category: checklist.CategoryAttributes, SourcePath: rel, TargetPath: filepath.Join(role, "defaults", "main.yml")}, true
		case strings.HasPrefix(rel, "files/"):
			return plan.Entry{Category: checklist.CategoryStaticFile, SourcePath: rel, TargetPath: filepath.Join(role, "files", base)}, true
		case strings.HasPrefix(rel, "templates/") && strings.HasSuffix(rel, ".erb"):
			return plan.Entry{Category: checklist.CategoryTemplate, SourcePath: rel, TargetPath: filepath.Join(role, "templates", stem+".j2")}, true
		case strings.HasPrefix(rel, "recipes/") && strings.HasSuffix(rel, ".rb"):
			return plan.Entry{Category: checklist.CategoryRecipeTask, SourcePath: rel, TargetPath: filepath.Join(role, "tasks", stem+".yml")}, true
		}
	case conversion.TechPuppet:
		switch {
		case strings.HasPrefix(rel, "files/"):
			return plan.Entry{Category: checklist.CategoryStaticFile, SourcePath: rel, TargetPath: filepath.Join(role, "files", base)}, true
		case strings.HasPrefix(rel, "templates/") && (strings.HasSuffix(rel, ".erb") || strings.HasSuffix(rel, ".epp")):
			return plan.Entry{Category: checklist.CategoryTemplate, SourcePath: rel, TargetPath: filepath.Join(role, "templates", stem+".j2")}, true
		case strings.HasPrefix(rel, "manifests/") && strings.HasSuffix(rel, ".pp"):
			return plan.Entry{Category: checklist.CategoryRecipeTask, SourcePath: rel, TargetPath: filepath.Join(role, "tasks", stem+".yml")}, true
		}
	case conversion.TechSalt:
		switch {
		case strings.HasSuffix(rel, ".jinja") || strings.HasPrefix(rel, "templates/"):
			return plan.Entry{Category: checklist.CategoryTemplate, SourcePath: rel, TargetPath: filepath.Join(role, "templates", stem+".j2")}, true
		case base == "top.sls":
			return plan.Entry{Category: checklist.CategoryStructure, SourcePath: rel, TargetPath: "site.yml"}, true
		case strings.HasSuffix(rel, ".sls"):
			return plan.Entry{Category: checklist.CategoryRecipeTask, SourcePath: rel, TargetPath: filepath.Join(role, "tasks", stem+".yml")}, true
		}
	}

	return plan.Entry{}, false
}
