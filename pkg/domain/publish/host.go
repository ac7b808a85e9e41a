package publish

import "context"

// Host is the adapter contract for the external system of record. The
// engine only ever reads the two existence facts and performs the decided
// action; it never forces anything.
type Host interface {
	RepositoryExists(ctx context.Context, owner, repo string) (bool, error)
	BranchExists(ctx context.Context, owner, repo, branch string) (bool, error)

	// CreateRepository creates the repository with a default branch.
	CreateRepository(ctx context.Context, owner, repo string) error

	// CreateBranch creates branch from the repository's default branch.
	CreateBranch(ctx context.Context, owner, repo, branch string) error

	// Push commits the tree at dir to the branch.
	Push(ctx context.Context, target Target, dir, message string) error
}
