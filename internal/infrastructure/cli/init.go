package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	infraconfig "github.com/felixgeelhaar/porter/internal/infrastructure/config"
	"github.com/felixgeelhaar/porter/pkg/application"
	"github.com/felixgeelhaar/porter/pkg/storage"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a porter workspace in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, _ := os.Getwd()
		repo := storage.NewFilesystemRepository(cwd)

		if repo.IsInitialized() {
			fmt.Println("Workspace already initialized")
			return nil
		}

		if err := repo.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize workspace: %w", err)
		}

		if err := infraconfig.Save(cwd, infraconfig.Default()); err != nil {
			return err
		}

		audit := application.NewAuditService(repo)
		_ = audit.Log("workspace.init", "cli", nil)

		fmt.Printf("Initialized porter workspace in %s/%s\n", cwd, storage.PorterDir)
		fmt.Println("Edit .porter/config.yaml to pick a provider, then run 'porter plan'")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(initCmd)
}
