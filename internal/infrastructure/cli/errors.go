package cli

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/porter/pkg/domain/checklist"
	"github.com/felixgeelhaar/porter/pkg/domain/publish"
	"github.com/felixgeelhaar/porter/pkg/domain/validate"
)

// ExitCodeExhausted signals that the validate-fix loop ran out of attempts
// with findings still open.
const ExitCodeExhausted = 2

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var dupErr *checklist.DuplicateKeyError
	if errors.As(err, &dupErr) {
		return NewCLIError(
			dupErr.Error(),
			"The checklist already tracks this source/target pair; edit .porter/plan.yaml if the mapping changed",
			err,
		)
	}

	var transErr *checklist.TransitionError
	if errors.As(err, &transErr) {
		return NewCLIError(
			transErr.Error(),
			"Check item history with 'porter status'",
			err,
		)
	}

	var branchErr *publish.BranchExistsError
	if errors.As(err, &branchErr) {
		return NewCLIError(
			branchErr.Error(),
			"Pick a different branch with --branch, or delete the remote branch first",
			err,
		)
	}

	switch {
	case errors.Is(err, checklist.ErrNotFound):
		return NewCLIError("checklist item not found", "Run 'porter plan' to reconcile the ledger", err)
	case errors.Is(err, validate.ErrUnavailable):
		return NewCLIError("validation tool unavailable", "Install ansible-lint and make sure it is on PATH", err)
	}

	return err
}
