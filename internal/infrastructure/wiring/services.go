package wiring

import (
	"fmt"

	"github.com/felixgeelhaar/porter/internal/infrastructure/config"
	"github.com/felixgeelhaar/porter/internal/infrastructure/githost"
	"github.com/felixgeelhaar/porter/internal/infrastructure/lint"
	"github.com/felixgeelhaar/porter/pkg/ai"
	"github.com/felixgeelhaar/porter/pkg/application"
	"github.com/felixgeelhaar/porter/pkg/domain/generate"
)

// AppServices exposes the application layer services wired together with a
// workspace.
type AppServices struct {
	Workspace *Workspace
	Config    *config.Config
	Options   application.Options
	Plan      *application.PlanService
	Convert   *application.ConvertService
	Fix       *application.FixService
	Generator generate.Generator

	// Cleanup stops plugin child processes. Always safe to call.
	Cleanup func()
}

// BuildAppServices constructs the full service set for a workspace root.
func BuildAppServices(root string) (*AppServices, error) {
	workspace, err := NewWorkspace(root)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	gen, cleanup, err := LoadGenerator(cfg)
	var loadErr error
	if err != nil {
		// Commands that never generate (status, publish) still need the
		// service set, so fall back rather than fail outright.
		loadErr = fmt.Errorf("generator config fallback: %w", err)
		fallback, fallbackErr := ai.NewProviderGenerator("ollama", "llama3")
		if fallbackErr != nil {
			return nil, fmt.Errorf("fallback generator failed: %w", fallbackErr)
		}
		gen, cleanup = fallback, func() {}
	}

	opts := cfg.Options(root)
	scanner := lint.NewAnsibleLint()

	return &AppServices{
		Workspace: workspace,
		Config:    cfg,
		Options:   opts,
		Plan:      application.NewPlanService(workspace.Repo, workspace.Store, workspace.Audit, opts.SourceDir),
		Convert:   application.NewConvertService(workspace.Store, gen, workspace.Audit, workspace.Log, opts),
		Fix:       application.NewFixService(workspace.Repo, workspace.Store, gen, scanner, workspace.Audit, workspace.Log, opts),
		Generator: gen,
		Cleanup:   cleanup,
	}, loadErr
}

// BuildPublishService wires the GitHub-backed publish path. The token is
// supplied by the caller; it is never read from workspace configuration.
func (s *AppServices) BuildPublishService(host *githost.GitHub) *application.PublishService {
	return application.NewPublishService(host, s.Workspace.Audit, s.Workspace.Log, s.Options)
}
