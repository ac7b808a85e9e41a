package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/felixgeelhaar/statekit"
	"github.com/rs/zerolog"

	"github.com/felixgeelhaar/porter/pkg/domain"
	"github.com/felixgeelhaar/porter/pkg/domain/checklist"
	"github.com/felixgeelhaar/porter/pkg/domain/conversion"
	"github.com/felixgeelhaar/porter/pkg/domain/generate"
	"github.com/felixgeelhaar/porter/pkg/domain/validate"
)

// Macro states of the validate-fix loop, per output tree.
const (
	treeStateScanning  = "scanning"
	treeStateFixing    = "fixing"
	treeStateConverged = "converged"
	treeStateExhausted = "exhausted"
)

// treeContext carries no data; the machine exists to make the loop's
// legal transitions explicit and testable.
type treeContext struct{}

// newTreeMachine builds the scanning/fixing/converged/exhausted machine.
func newTreeMachine() (*statekit.Interpreter[treeContext], error) {
	builder := statekit.NewMachine[treeContext]("validate-fix").
		WithInitial(statekit.StateID(treeStateScanning)).
		WithContext(treeContext{})

	builder.State(treeStateScanning).
		On("findings").Target(treeStateFixing).
		On("clean").Target(treeStateConverged).
		On("spent").Target(treeStateExhausted).
		Done()

	builder.State(treeStateFixing).
		On("rescan").Target(treeStateScanning).
		Done()

	builder.State(treeStateConverged).Done()
	builder.State(treeStateExhausted).Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build validate-fix machine: %w", err)
	}

	interp := statekit.NewInterpreter(machine)
	interp.Start()
	return interp, nil
}

// FixService is the validate-fix loop: scan the whole tree, group findings
// by file, spend bounded fix attempts per file, re-scan, until the tree is
// clean or every remaining finding belongs to an exhausted file.
type FixService struct {
	repo    domain.WorkspaceRepository
	store   *checklist.Store
	gen     generate.Generator
	scanner validate.Scanner
	audit   domain.AuditLogger
	log     zerolog.Logger
	opts    Options
}

func NewFixService(repo domain.WorkspaceRepository, store *checklist.Store, gen generate.Generator, scanner validate.Scanner, audit domain.AuditLogger, log zerolog.Logger, opts Options) *FixService {
	return &FixService{
		repo:    repo,
		store:   store,
		gen:     gen,
		scanner: scanner,
		audit:   audit,
		log:     log,
		opts:    opts.withDefaults(),
	}
}

// Run drives the loop to a terminal state. Exhausted is a normal outcome
// carried in the report; only I/O failures and validator unavailability
// return an error. Attempt counters are persisted every round so a crash
// mid-run cannot grant extra budget on resume; they reset only when the
// caller starts a fresh pipeline run.
func (s *FixService) Run(ctx context.Context, runID string, tech conversion.Technology) (*validate.FixReport, error) {
	machine, err := newTreeMachine()
	if err != nil {
		return nil, err
	}

	defer s.store.ReleaseAll()

	_, attempts, err := s.repo.LoadAttempts()
	if err != nil {
		return nil, fmt.Errorf("load attempt counters: %w", err)
	}

	excluded := make(map[string]bool)
	for file, n := range attempts {
		if n > s.opts.MaxAttempts {
			excluded[file] = true
		}
	}

	report := &validate.FixReport{}
	var lastFindings map[string][]validate.Finding

	for current(machine) == treeStateScanning {
		report.Rounds++

		findings, err := s.scanTree(ctx)
		if err != nil {
			return nil, err
		}

		s.verifyExpectedTargets()

		if len(findings) == 0 {
			send(machine, "clean")
			break
		}

		lastFindings = validate.GroupByFile(findings)
		files := validate.SortedFiles(lastFindings)

		// Spend one attempt per affected file; files over budget are
		// excluded from this and all later rounds.
		var fixable []string
		for _, file := range files {
			if excluded[file] {
				continue
			}
			attempts[file]++
			if attempts[file] > s.opts.MaxAttempts {
				excluded[file] = true
				s.markExhausted(file)
				continue
			}
			fixable = append(fixable, file)
		}

		// The loop never runs more than MaxAttempts+1 rounds, even when a
		// fix pushes findings onto files no earlier scan reported. Attempts
		// charged in a round that dispatches nothing are handed back.
		if report.Rounds > s.opts.MaxAttempts && len(fixable) > 0 {
			for _, file := range fixable {
				attempts[file]--
			}
			fixable = nil
		}

		if err := s.repo.SaveAttempts(runID, attempts); err != nil {
			return nil, fmt.Errorf("persist attempt counters: %w", err)
		}

		if len(fixable) == 0 {
			send(machine, "spent")
			break
		}

		send(machine, "findings")
		s.fixRound(ctx, fixable, lastFindings, tech)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		send(machine, "rescan")
	}

	report.Outcome = validate.OutcomeConverged
	if current(machine) == treeStateExhausted {
		report.Outcome = validate.OutcomeExhausted
	}
	report.Files = buildFileResults(attempts, excluded, lastFindings, report.Outcome)

	if s.audit != nil {
		_ = s.audit.Log("validate.run", "engine", map[string]interface{}{
			"run_id":  runID,
			"outcome": string(report.Outcome),
			"rounds":  report.Rounds,
		})
	}

	return report, nil
}

func current(m *statekit.Interpreter[treeContext]) string {
	return string(m.State().Value)
}

func send(m *statekit.Interpreter[treeContext], event string) {
	m.Send(statekit.Event{Type: statekit.EventType(event)})
}

// scanTree runs one whole-tree validator pass. Scanning is sequential with
// respect to the tree; a fix to one file can introduce errors elsewhere, so
// partial scans are never trusted.
func (s *FixService) scanTree(ctx context.Context) ([]validate.Finding, error) {
	scanCtx, cancel := context.WithTimeout(ctx, s.opts.ValidateTimeout)
	defer cancel()

	findings, err := s.scanner.Scan(scanCtx, s.opts.TargetDir)
	if err != nil {
		if errors.Is(err, validate.ErrUnavailable) || scanCtx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", validate.ErrUnavailable, err)
		}
		return nil, fmt.Errorf("scan output tree: %w", err)
	}
	return findings, nil
}

// verifyExpectedTargets demotes items whose target file vanished. Only this
// loop ever sets missing.
func (s *FixService) verifyExpectedTargets() {
	for _, item := range s.store.List() {
		if item.Status != checklist.StatusComplete && item.Status != checklist.StatusPending {
			continue
		}
		if item.Status == checklist.StatusPending {
			// Not yet generated; nothing to verify.
			continue
		}
		if _, err := os.Stat(filepath.Join(s.opts.TargetDir, item.TargetPath)); os.IsNotExist(err) {
			if uerr := s.store.UpdateStatus(item.Key(), checklist.StatusMissing, "expected target file is absent"); uerr == nil {
				s.log.Warn().Str("target", item.TargetPath).Msg("expected target missing")
			}
		}
	}
}

// fixRound dispatches in-budget files to concurrent fix attempts, bounded
// by the worker count. File order is deterministic; dispatch order is what
// re-runs can reproduce even though generation cannot be.
func (s *FixService) fixRound(ctx context.Context, files []string, grouped map[string][]validate.Finding, tech conversion.Technology) {
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.opts.Workers)

	for _, file := range files {
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(file string) {
			defer wg.Done()
			defer func() { <-sem }()
			s.fixOne(ctx, file, grouped[file], tech)
		}(file)
	}

	wg.Wait()
}

// fixOne re-invokes the generator in fix mode for a single file. An empty
// result is a failed attempt, never a fix: the artifact on disk is kept.
func (s *FixService) fixOne(ctx context.Context, file string, findings []validate.Finding, tech conversion.Technology) {
	fullPath := filepath.Join(s.opts.TargetDir, file)

	existing, err := os.ReadFile(fullPath)
	if err != nil && !os.IsNotExist(err) {
		s.log.Warn().Str("file", file).Err(err).Msg("read artifact for fix")
		return
	}

	item, hasItem := s.store.FindByTarget(file)

	var unit conversion.Unit
	if hasItem {
		unit = conversion.UnitFromItem(item, tech)
		if item.HasSource() {
			if src, rerr := os.ReadFile(filepath.Join(s.opts.SourceDir, item.SourcePath)); rerr == nil {
				unit.Content = string(src)
			}
		}
	} else {
		// Validator flagged a file the checklist does not track; fix it
		// anyway, the finding list is all the context there is.
		unit = conversion.Unit{TargetPath: file, Category: checklist.CategoryRecipeTask, Technology: tech, SourcePath: checklist.NoSource}
	}

	genCtx := generate.Context{
		TargetSchema: schemaForCategory(string(unit.Category)),
		Findings:     findings,
		Existing:     string(existing),
	}

	callCtx, cancel := context.WithTimeout(ctx, s.opts.GenerateTimeout)
	artifact, err := s.gen.Generate(callCtx, unit, genCtx, generate.ModeFix)
	cancel()

	if err != nil || len(artifact) == 0 {
		reason := "generator returned an empty fix"
		if err != nil {
			reason = fmt.Sprintf("fix attempt failed: %v", err)
		}
		s.log.Warn().Str("file", file).Str("reason", reason).Msg("fix attempt failed")
		if hasItem {
			_ = s.store.Annotate(item.Key(), reason)
		}
		return
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0700); err != nil {
		s.log.Warn().Str("file", file).Err(err).Msg("create target dir for fix")
		return
	}
	if err := os.WriteFile(fullPath, artifact, 0600); err != nil {
		s.log.Warn().Str("file", file).Err(err).Msg("write fixed artifact")
		return
	}

	s.log.Info().Str("file", file).Int("findings", len(findings)).Msg("fix applied")

	if hasItem && item.Status != checklist.StatusComplete {
		_ = s.store.UpdateStatus(item.Key(), checklist.StatusComplete, fmt.Sprintf("fixed by %s after findings: %s", s.gen.ID(), summarizeRules(findings)))
	}
}

// markExhausted records the terminal per-file state on the checklist.
func (s *FixService) markExhausted(file string) {
	note := fmt.Sprintf("exhausted after %d attempts", s.opts.MaxAttempts)
	s.log.Warn().Str("file", file).Msg(note)

	item, ok := s.store.FindByTarget(file)
	if !ok {
		return
	}
	if item.Status == checklist.StatusError {
		_ = s.store.Annotate(item.Key(), note)
		return
	}
	_ = s.store.UpdateStatus(item.Key(), checklist.StatusError, note)
}

// buildFileResults assembles the per-file report: attempts spent, exhaustion,
// and the exact unresolved findings from the final scan.
func buildFileResults(attempts map[string]int, excluded map[string]bool, lastFindings map[string][]validate.Finding, outcome validate.Outcome) []validate.FileResult {
	var results []validate.FileResult
	for _, file := range validate.SortedFiles(lastFindings) {
		spent := attempts[file]
		if excluded[file] {
			// The exhausting increment is bookkeeping, not an attempt made.
			spent--
		}
		result := validate.FileResult{
			FilePath:  file,
			Attempts:  spent,
			Exhausted: excluded[file],
		}
		if outcome == validate.OutcomeExhausted {
			result.Unresolved = lastFindings[file]
		}
		results = append(results, result)
	}
	return results
}

func summarizeRules(findings []validate.Finding) string {
	seen := make(map[string]bool)
	out := ""
	for _, f := range findings {
		if seen[f.RuleID] {
			continue
		}
		seen[f.RuleID] = true
		if out != "" {
			out += ", "
		}
		out += f.RuleID
	}
	return out
}
