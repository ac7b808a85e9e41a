// Package wiring assembles the application services for a workspace root.
package wiring

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/felixgeelhaar/porter/pkg/application"
	"github.com/felixgeelhaar/porter/pkg/domain/checklist"
	"github.com/felixgeelhaar/porter/pkg/storage"
)

// Workspace bundles core infrastructure dependencies.
type Workspace struct {
	Repo  *storage.FilesystemRepository
	Store *checklist.Store
	Audit *application.AuditService
	Log   zerolog.Logger
}

// NewWorkspace loads the ledger from disk and wires the audit trail. The
// returned store persists back through the same repository.
func NewWorkspace(root string) (*Workspace, error) {
	repo := storage.NewFilesystemRepository(root)

	items, err := repo.LoadItems()
	if err != nil {
		return nil, fmt.Errorf("failed to load checklist: %w", err)
	}

	return &Workspace{
		Repo:  repo,
		Store: checklist.NewStore(items, repo),
		Audit: application.NewAuditService(repo),
		Log:   newLogger(),
	}, nil
}

func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if v := os.Getenv("PORTER_LOG_LEVEL"); v != "" {
		if parsed, err := zerolog.ParseLevel(v); err == nil {
			level = parsed
		}
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)
}
