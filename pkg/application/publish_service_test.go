package application

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/felixgeelhaar/porter/pkg/domain/publish"
)

// fakeHost records the actions the publisher performs.
type fakeHost struct {
	repoExists   bool
	branchExists bool

	createdRepo   bool
	createdBranch bool
	pushed        bool
	pushedDir     string
}

func (h *fakeHost) RepositoryExists(ctx context.Context, owner, repo string) (bool, error) {
	return h.repoExists, nil
}

func (h *fakeHost) BranchExists(ctx context.Context, owner, repo, branch string) (bool, error) {
	return h.branchExists, nil
}

func (h *fakeHost) CreateRepository(ctx context.Context, owner, repo string) error {
	h.createdRepo = true
	return nil
}

func (h *fakeHost) CreateBranch(ctx context.Context, owner, repo, branch string) error {
	h.createdBranch = true
	return nil
}

func (h *fakeHost) Push(ctx context.Context, target publish.Target, dir, message string) error {
	h.pushed = true
	h.pushedDir = dir
	return nil
}

func publishTarget() publish.Target {
	return publish.Target{Owner: "acme", Repo: "infra-ansible", Branch: "conversion"}
}

func TestPublishCreatesRepositoryWhenAbsent(t *testing.T) {
	host := &fakeHost{}
	svc := NewPublishService(host, nil, zerolog.Nop(), Options{TargetDir: "/tmp/out"})

	if err := svc.Publish(context.Background(), publishTarget(), "converted"); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if !host.createdRepo || !host.createdBranch || !host.pushed {
		t.Errorf("host actions = %+v", host)
	}
	if host.pushedDir != "/tmp/out" {
		t.Errorf("pushed dir = %s", host.pushedDir)
	}
}

func TestPublishCreatesBranchOnly(t *testing.T) {
	host := &fakeHost{repoExists: true}
	svc := NewPublishService(host, nil, zerolog.Nop(), Options{TargetDir: "/tmp/out"})

	if err := svc.Publish(context.Background(), publishTarget(), "converted"); err != nil {
		t.Fatal(err)
	}

	if host.createdRepo {
		t.Error("existing repository must not be recreated")
	}
	if !host.createdBranch || !host.pushed {
		t.Errorf("host actions = %+v", host)
	}
}

func TestPublishRefusesExistingBranch(t *testing.T) {
	host := &fakeHost{repoExists: true, branchExists: true}
	svc := NewPublishService(host, nil, zerolog.Nop(), Options{TargetDir: "/tmp/out"})

	err := svc.Publish(context.Background(), publishTarget(), "converted")
	var refused *publish.BranchExistsError
	if !errors.As(err, &refused) {
		t.Fatalf("expected BranchExistsError, got %v", err)
	}

	if host.createdRepo || host.createdBranch || host.pushed {
		t.Errorf("refusal must perform no actions: %+v", host)
	}
}
