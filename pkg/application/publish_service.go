package application

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/felixgeelhaar/porter/pkg/domain"
	"github.com/felixgeelhaar/porter/pkg/domain/publish"
)

// PublishService externalizes the output tree. The decision is pure
// (publish.Decide); this service performs the existence reads and the
// decided action through the host adapter.
type PublishService struct {
	host  publish.Host
	audit domain.AuditLogger
	log   zerolog.Logger
	opts  Options
}

func NewPublishService(host publish.Host, audit domain.AuditLogger, log zerolog.Logger, opts Options) *PublishService {
	return &PublishService{host: host, audit: audit, log: log, opts: opts.withDefaults()}
}

// Publish creates whatever is missing and pushes the output tree. It fails
// with BranchExistsError when the branch already exists: overwriting could
// discard unrelated work already pushed there, so the engine refuses.
func (s *PublishService) Publish(ctx context.Context, target publish.Target, message string) error {
	repoExists, err := s.host.RepositoryExists(ctx, target.Owner, target.Repo)
	if err != nil {
		return fmt.Errorf("check repository existence: %w", err)
	}

	branchExists := false
	if repoExists {
		branchExists, err = s.host.BranchExists(ctx, target.Owner, target.Repo, target.Branch)
		if err != nil {
			return fmt.Errorf("check branch existence: %w", err)
		}
	}

	action, err := publish.Decide(target, repoExists, branchExists)
	if err != nil {
		if s.audit != nil {
			_ = s.audit.Log("publish.rejected", "engine", map[string]interface{}{
				"target": target.String(),
				"reason": err.Error(),
			})
		}
		return err
	}

	s.log.Info().Str("target", target.String()).Str("action", string(action)).Msg("publishing")

	if action == publish.ActionCreateRepositoryAndBranch {
		if err := s.host.CreateRepository(ctx, target.Owner, target.Repo); err != nil {
			return fmt.Errorf("create repository: %w", err)
		}
	}

	if err := s.host.CreateBranch(ctx, target.Owner, target.Repo, target.Branch); err != nil {
		return fmt.Errorf("create branch: %w", err)
	}

	if err := s.host.Push(ctx, target, s.opts.TargetDir, message); err != nil {
		return fmt.Errorf("push output tree: %w", err)
	}

	if s.audit != nil {
		_ = s.audit.Log("publish.pushed", "engine", map[string]interface{}{
			"target": target.String(),
			"action": string(action),
		})
	}

	return nil
}
