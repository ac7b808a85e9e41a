package domain

import (
	"github.com/felixgeelhaar/porter/pkg/domain/checklist"
	"github.com/felixgeelhaar/porter/pkg/domain/plan"
)

// WorkspaceRepository is the persistence contract for a porter workspace.
// The filesystem implementation lives in pkg/storage; tests supply stubs.
type WorkspaceRepository interface {
	Root() string
	Initialize() error
	IsInitialized() bool

	LoadItems() ([]checklist.Item, error)
	SaveItems(items []checklist.Item) error

	LoadPlan() (*plan.Document, error)
	SavePlan(doc *plan.Document) error

	LoadAttempts() (runID string, attempts map[string]int, err error)
	SaveAttempts(runID string, attempts map[string]int) error
	ResetAttempts(runID string) error

	RecordEvent(event Event) error
	LoadEvents() ([]Event, error)
}
