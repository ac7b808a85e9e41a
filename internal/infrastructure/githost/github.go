// Package githost implements the publish host against the GitHub API.
// Existence checks and ref creation go through the REST client; the tree
// push shells out to git, which already knows how to pack and upload.
package githost

import (
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"strings"

	"github.com/google/go-github/v69/github"
	"golang.org/x/oauth2"

	"github.com/felixgeelhaar/porter/pkg/domain/publish"
)

type GitHub struct {
	client *github.Client
	token  string
}

var _ publish.Host = (*GitHub)(nil)

// NewGitHub builds a host using the given API token.
func NewGitHub(ctx context.Context, token string) *GitHub {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &GitHub{
		client: github.NewClient(oauth2.NewClient(ctx, ts)),
		token:  token,
	}
}

// NewGitHubWithClient injects a custom client (for tests).
func NewGitHubWithClient(client *github.Client) *GitHub {
	return &GitHub{client: client}
}

func (g *GitHub) RepositoryExists(ctx context.Context, owner, repo string) (bool, error) {
	_, resp, err := g.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("get repository %s/%s: %w", owner, repo, err)
	}
	return true, nil
}

func (g *GitHub) BranchExists(ctx context.Context, owner, repo, branch string) (bool, error) {
	_, resp, err := g.client.Git.GetRef(ctx, owner, repo, "refs/heads/"+branch)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("get ref %s: %w", branch, err)
	}
	return true, nil
}

func (g *GitHub) CreateRepository(ctx context.Context, owner, repo string) error {
	// Empty org string creates under the authenticated user.
	org := ""
	if owner != "" {
		if user, _, err := g.client.Users.Get(ctx, ""); err == nil && user.GetLogin() != owner {
			org = owner
		}
	}

	_, _, err := g.client.Repositories.Create(ctx, org, &github.Repository{
		Name:     github.Ptr(repo),
		Private:  github.Ptr(true),
		AutoInit: github.Ptr(true),
	})
	if err != nil {
		return fmt.Errorf("create repository %s/%s: %w", owner, repo, err)
	}
	return nil
}

func (g *GitHub) CreateBranch(ctx context.Context, owner, repo, branch string) error {
	repository, _, err := g.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return fmt.Errorf("get repository %s/%s: %w", owner, repo, err)
	}

	base := repository.GetDefaultBranch()
	if base == "" {
		base = "main"
	}

	baseRef, _, err := g.client.Git.GetRef(ctx, owner, repo, "refs/heads/"+base)
	if err != nil {
		return fmt.Errorf("get default branch ref %s: %w", base, err)
	}

	_, resp, err := g.client.Git.CreateRef(ctx, owner, repo, &github.Reference{
		Ref:    github.Ptr("refs/heads/" + branch),
		Object: &github.GitObject{SHA: baseRef.Object.SHA},
	})
	if err != nil {
		// The branch racing into existence between check and create still
		// means "already exists"; surface it as such.
		if resp != nil && resp.StatusCode == http.StatusUnprocessableEntity {
			return &publish.BranchExistsError{Target: publish.Target{Owner: owner, Repo: repo, Branch: branch}}
		}
		return fmt.Errorf("create branch %s: %w", branch, err)
	}
	return nil
}

// Push commits the tree at dir and pushes it to the target branch. Push is
// only ever invoked on a branch this same publish action created, so the
// forced ref update cannot discard anyone else's work.
func (g *GitHub) Push(ctx context.Context, target publish.Target, dir, message string) error {
	remote := fmt.Sprintf("https://x-access-token:%s@github.com/%s/%s.git", g.token, target.Owner, target.Repo)

	steps := [][]string{
		{"init", "-q"},
		{"checkout", "-q", "-B", target.Branch},
		{"add", "-A"},
		{"commit", "-q", "-m", message},
		{"push", "-q", "-f", remote, "HEAD:refs/heads/" + target.Branch},
	}

	for _, args := range steps {
		if err := runGit(ctx, dir, g.token, args...); err != nil {
			return err
		}
	}
	return nil
}

func runGit(ctx context.Context, dir, secret string, args ...string) error {
	// #nosec G204 -- args are fixed git subcommands plus validated target data
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	out, err := cmd.CombinedOutput()
	if err != nil {
		redacted := string(out)
		if secret != "" {
			redacted = strings.ReplaceAll(redacted, secret, "***")
		}
		return fmt.Errorf("git %s: %v: %s", args[0], err, strings.TrimSpace(redacted))
	}
	return nil
}
