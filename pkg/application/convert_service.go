package application

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/felixgeelhaar/porter/pkg/domain"
	"github.com/felixgeelhaar/porter/pkg/domain/checklist"
	"github.com/felixgeelhaar/porter/pkg/domain/conversion"
	"github.com/felixgeelhaar/porter/pkg/domain/generate"
)

// ConvertService is the conversion loop: it drains pending (and previously
// errored) checklist items through the generator, one category at a time.
type ConvertService struct {
	store *checklist.Store
	gen   generate.Generator
	audit domain.AuditLogger
	log   zerolog.Logger
	opts  Options
}

func NewConvertService(store *checklist.Store, gen generate.Generator, audit domain.AuditLogger, log zerolog.Logger, opts Options) *ConvertService {
	return &ConvertService{
		store: store,
		gen:   gen,
		audit: audit,
		log:   log,
		opts:  opts.withDefaults(),
	}
}

// ConvertReport summarizes one conversion pass.
type ConvertReport struct {
	Completed int
	Errored   int
	Skipped   int
	Failures  map[string]string // target path -> reason
}

// RunPending processes every pending item in category order. Categories are
// barriers: a later category's generation context may reference earlier
// outputs, so it starts only after the previous category drained. Within a
// category, items run on a bounded worker pool; each worker claims its item
// first so no item is ever processed twice concurrently. One failing unit
// never aborts the batch, and the loop itself never retries: retrying is the
// validate-fix loop's job, driven by concrete findings.
func (s *ConvertService) RunPending(ctx context.Context, tech conversion.Technology) (*ConvertReport, error) {
	if !tech.IsValid() {
		return nil, fmt.Errorf("technology not resolved: %q", tech)
	}

	defer s.store.ReleaseAll()

	report := &ConvertReport{Failures: make(map[string]string)}
	var mu sync.Mutex

	items := s.store.List()
	checklist.SortItems(items)

	for _, category := range checklist.CategoryOrder() {
		var wg sync.WaitGroup
		sem := make(chan struct{}, s.opts.Workers)

		for _, item := range items {
			if item.Category != category {
				continue
			}
			if item.Status != checklist.StatusPending && item.Status != checklist.StatusError {
				mu.Lock()
				report.Skipped++
				mu.Unlock()
				continue
			}

			select {
			case <-ctx.Done():
				wg.Wait()
				return report, ctx.Err()
			case sem <- struct{}{}:
			}

			if !s.store.Claim(item.Key()) {
				<-sem
				continue
			}

			wg.Add(1)
			go func(item checklist.Item) {
				defer wg.Done()
				defer func() { <-sem }()
				defer s.store.Release(item.Key())

				completed, reason := s.convertOne(ctx, item, tech)

				mu.Lock()
				defer mu.Unlock()
				if completed {
					report.Completed++
				} else {
					report.Errored++
					report.Failures[item.TargetPath] = reason
				}
			}(item)
		}

		wg.Wait()

		if err := ctx.Err(); err != nil {
			return report, err
		}
	}

	if s.audit != nil {
		_ = s.audit.Log("convert.run", "engine", map[string]interface{}{
			"completed": report.Completed,
			"errored":   report.Errored,
			"skipped":   report.Skipped,
		})
	}

	return report, nil
}

// convertOne generates and writes a single artifact, then records the
// outcome on the checklist. Returns (false, reason) on failure.
func (s *ConvertService) convertOne(ctx context.Context, item checklist.Item, tech conversion.Technology) (bool, string) {
	unit := conversion.UnitFromItem(item, tech)

	if item.HasSource() {
		data, err := os.ReadFile(filepath.Join(s.opts.SourceDir, item.SourcePath))
		if err != nil {
			return s.markError(item, fmt.Sprintf("read source: %v", err))
		}
		unit.Content = string(data)
	}

	genCtx := generate.Context{TargetSchema: schemaForCategory(string(item.Category))}

	callCtx, cancel := context.WithTimeout(ctx, s.opts.GenerateTimeout)
	artifact, err := s.gen.Generate(callCtx, unit, genCtx, generate.ModeCreate)
	cancel()
	if err != nil {
		return s.markError(item, fmt.Sprintf("generate: %v", err))
	}
	if len(artifact) == 0 {
		return s.markError(item, "generator returned an empty artifact")
	}

	targetPath := filepath.Join(s.opts.TargetDir, item.TargetPath)
	if err := os.MkdirAll(filepath.Dir(targetPath), 0700); err != nil {
		return s.markError(item, fmt.Sprintf("create target dir: %v", err))
	}
	if err := os.WriteFile(targetPath, artifact, 0600); err != nil {
		return s.markError(item, fmt.Sprintf("write target: %v", err))
	}

	note := fmt.Sprintf("converted by %s", s.gen.ID())
	if err := s.store.UpdateStatus(item.Key(), checklist.StatusComplete, note); err != nil {
		return false, fmt.Sprintf("mark complete: %v", err)
	}

	s.log.Info().
		Str("category", string(item.Category)).
		Str("target", item.TargetPath).
		Msg("unit converted")

	return true, ""
}

func (s *ConvertService) markError(item checklist.Item, reason string) (bool, string) {
	s.log.Warn().
		Str("target", item.TargetPath).
		Str("reason", reason).
		Msg("unit conversion failed")

	if item.Status == checklist.StatusError {
		// Already errored; a repeat failure is audit trail, not a transition.
		_ = s.store.Annotate(item.Key(), reason)
		return false, reason
	}
	if err := s.store.UpdateStatus(item.Key(), checklist.StatusError, reason); err != nil {
		return false, fmt.Sprintf("%s (and mark error failed: %v)", reason, err)
	}
	return false, reason
}
