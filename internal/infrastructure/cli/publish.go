package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/porter/internal/infrastructure/githost"
	"github.com/felixgeelhaar/porter/pkg/domain/publish"
)

var (
	publishRepo    string
	publishBranch  string
	publishMessage string
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Push the converted tree to a GitHub repository branch",
	Long: `Creates the repository if it does not exist, creates the target
branch, and pushes the converted tree to it. Publishing refuses to touch a
branch that already exists; it never force-pushes over prior work.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token := os.Getenv("GITHUB_TOKEN")
		if token == "" {
			return NewCLIError("GITHUB_TOKEN is not set", "Export a token with repo scope before publishing", nil)
		}

		owner, repo, err := splitRepo(publishRepo)
		if err != nil {
			return err
		}

		services, err := buildServices()
		if err != nil {
			return MapError(err)
		}
		defer services.Cleanup()

		ctx := cmd.Context()
		host := githost.NewGitHub(ctx, token)
		svc := services.BuildPublishService(host)

		target := publish.Target{Owner: owner, Repo: repo, Branch: publishBranch}
		if err := svc.Publish(ctx, target, publishMessage); err != nil {
			return MapError(err)
		}

		fmt.Printf("Published to %s/%s@%s\n", owner, repo, publishBranch)
		return nil
	},
}

func splitRepo(s string) (string, string, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", NewCLIError(
			fmt.Sprintf("invalid repository %q", s),
			"Use --repo owner/name",
			nil,
		)
	}
	return parts[0], parts[1], nil
}

func init() {
	publishCmd.Flags().StringVar(&publishRepo, "repo", "", "target repository as owner/name")
	publishCmd.Flags().StringVar(&publishBranch, "branch", "conversion", "target branch name")
	publishCmd.Flags().StringVar(&publishMessage, "message", "Converted to Ansible", "commit message")
	_ = publishCmd.MarkFlagRequired("repo")
	RootCmd.AddCommand(publishCmd)
}
