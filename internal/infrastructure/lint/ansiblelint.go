// Package lint wraps ansible-lint as the engine's validator. Raw tool
// output is normalized into file-scoped findings; tool failures surface as
// validator-unavailable, which aborts the loop rather than spending budgets.
package lint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/porter/pkg/domain/validate"
)

// AnsibleLint runs the ansible-lint binary over an output tree.
type AnsibleLint struct {
	// Binary overrides the executable name, for tests.
	Binary string
}

var _ validate.Scanner = (*AnsibleLint)(nil)

func NewAnsibleLint() *AnsibleLint {
	return &AnsibleLint{Binary: "ansible-lint"}
}

// issue is the code-climate style record ansible-lint emits with -f json.
type issue struct {
	Type        string `json:"type"`
	CheckName   string `json:"check_name"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Location    struct {
		Path  string `json:"path"`
		Lines struct {
			Begin int `json:"begin"`
		} `json:"lines"`
	} `json:"location"`
}

// Scan runs one whole-tree pass. Exit code 2 means findings were reported
// and is not an error; a missing binary or timeout is ErrUnavailable.
func (l *AnsibleLint) Scan(ctx context.Context, treeRoot string) ([]validate.Finding, error) {
	binary := l.Binary
	if binary == "" {
		binary = "ansible-lint"
	}

	// #nosec G204 -- binary is a fixed tool name, treeRoot a local directory
	cmd := exec.CommandContext(ctx, binary, "-f", "json", ".")
	cmd.Dir = treeRoot

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %v", validate.ErrUnavailable, ctx.Err())
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// ansible-lint exits 2 when violations were found.
			if exitErr.ExitCode() != 2 {
				return nil, fmt.Errorf("%w: %s exited %d: %s", validate.ErrUnavailable, binary, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
			}
		} else {
			return nil, fmt.Errorf("%w: %v", validate.ErrUnavailable, err)
		}
	}

	return parseIssues(stdout.Bytes())
}

func parseIssues(data []byte) ([]validate.Finding, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var issues []issue
	if err := json.Unmarshal(data, &issues); err != nil {
		return nil, fmt.Errorf("parse ansible-lint output: %w", err)
	}

	findings := make([]validate.Finding, 0, len(issues))
	for _, is := range issues {
		if is.Type != "" && is.Type != "issue" {
			continue
		}
		findings = append(findings, validate.Finding{
			FilePath: filepath.ToSlash(is.Location.Path),
			Line:     is.Location.Lines.Begin,
			RuleID:   is.CheckName,
			Message:  is.Description,
			Severity: is.Severity,
		})
	}

	return findings, nil
}
