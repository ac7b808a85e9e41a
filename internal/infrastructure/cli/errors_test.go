package cli

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/felixgeelhaar/porter/pkg/domain/checklist"
	"github.com/felixgeelhaar/porter/pkg/domain/publish"
	"github.com/felixgeelhaar/porter/pkg/domain/validate"
)

func TestMapErrorKnownDomainErrors(t *testing.T) {
	key := checklist.Key{SourcePath: "recipes/default.rb", TargetPath: "roles/converted/tasks/default.yml"}

	tests := []struct {
		name     string
		err      error
		wantHint string
	}{
		{
			name:     "duplicate key",
			err:      &checklist.DuplicateKeyError{Key: key},
			wantHint: "already tracks",
		},
		{
			name:     "invalid transition",
			err:      &checklist.TransitionError{Key: key, From: checklist.StatusComplete, To: checklist.StatusPending},
			wantHint: "porter status",
		},
		{
			name:     "branch exists",
			err:      &publish.BranchExistsError{Target: publish.Target{Owner: "acme", Repo: "infra", Branch: "conversion"}},
			wantHint: "--branch",
		},
		{
			name:     "item not found",
			err:      checklist.ErrNotFound,
			wantHint: "porter plan",
		},
		{
			name:     "validator unavailable",
			err:      fmt.Errorf("scan: %w", validate.ErrUnavailable),
			wantHint: "ansible-lint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := MapError(tt.err)

			var cliErr *CLIError
			if !errors.As(mapped, &cliErr) {
				t.Fatalf("expected CLIError, got %T: %v", mapped, mapped)
			}
			if cliErr.ExitCode != 1 {
				t.Errorf("ExitCode = %d, want 1", cliErr.ExitCode)
			}
			if !strings.Contains(cliErr.Hint, tt.wantHint) {
				t.Errorf("hint %q missing %q", cliErr.Hint, tt.wantHint)
			}
			if !errors.Is(mapped, tt.err) && !errors.As(mapped, new(*CLIError)) {
				t.Errorf("mapped error should wrap the original")
			}
		})
	}
}

func TestMapErrorPassthrough(t *testing.T) {
	if got := MapError(nil); got != nil {
		t.Errorf("MapError(nil) = %v", got)
	}

	plain := errors.New("something else")
	if got := MapError(plain); got != plain {
		t.Errorf("unmapped error should pass through, got %v", got)
	}
}

func TestCLIErrorUnwrap(t *testing.T) {
	inner := checklist.ErrNotFound
	err := NewCLIError("lookup failed", "", inner)

	if !errors.Is(err, checklist.ErrNotFound) {
		t.Error("CLIError should unwrap to the inner error")
	}
	if got := err.Error(); !strings.Contains(got, "lookup failed") || !strings.Contains(got, "not found") {
		t.Errorf("Error() = %q", got)
	}
}

func TestSplitRepo(t *testing.T) {
	owner, repo, err := splitRepo("acme/infra")
	if err != nil || owner != "acme" || repo != "infra" {
		t.Errorf("splitRepo = %s/%s, %v", owner, repo, err)
	}

	for _, bad := range []string{"acme", "acme/", "/infra", "a/b/c", ""} {
		if _, _, err := splitRepo(bad); err == nil {
			t.Errorf("splitRepo(%q) should fail", bad)
		}
	}
}

