// Package publish contains the pure publish decision. The I/O that checks
// existence and performs the action lives in the githost adapter.
package publish

import "fmt"

// Target identifies where results are externalized.
type Target struct {
	Owner  string
	Repo   string
	Branch string
}

func (t Target) String() string {
	return fmt.Sprintf("%s/%s@%s", t.Owner, t.Repo, t.Branch)
}

// State is derived from the two existence facts the machine reads.
type State string

const (
	StateNoRepository           State = "no_repository"
	StateRepositoryNoBranch     State = "repository_no_branch"
	StateRepositoryBranchExists State = "repository_branch_exists"
)

// Action is what the publisher should perform.
type Action string

const (
	ActionCreateRepositoryAndBranch Action = "create_repository_and_branch"
	ActionCreateBranch              Action = "create_branch"
)

// BranchExistsError is the publish-time refusal: the engine never
// force-overwrites an existing branch, since silent overwrite could discard
// unrelated work already pushed there.
type BranchExistsError struct {
	Target Target
}

func (e *BranchExistsError) Error() string {
	return fmt.Sprintf("branch already exists: %s", e.Target)
}

// Classify derives the state from the two existence facts.
func Classify(repoExists, branchExists bool) State {
	switch {
	case !repoExists:
		return StateNoRepository
	case !branchExists:
		return StateRepositoryNoBranch
	default:
		return StateRepositoryBranchExists
	}
}

// Decide is the pure transition function: given the existence facts, it
// returns the action to take or refuses with BranchExistsError.
func Decide(target Target, repoExists, branchExists bool) (Action, error) {
	switch Classify(repoExists, branchExists) {
	case StateNoRepository:
		return ActionCreateRepositoryAndBranch, nil
	case StateRepositoryNoBranch:
		return ActionCreateBranch, nil
	default:
		return "", &BranchExistsError{Target: target}
	}
}
