package cli

import (
	"fmt"
	"os"

	"github.com/felixgeelhaar/porter/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/porter/pkg/domain/conversion"
)

// buildServices wires the application services for the current directory.
// A generator fallback warning is printed but does not fail the command.
func buildServices() (*wiring.AppServices, error) {
	cwd, _ := os.Getwd()
	services, err := wiring.BuildAppServices(cwd)
	if services == nil {
		return nil, err
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	if !services.Workspace.Repo.IsInitialized() {
		services.Cleanup()
		return nil, NewCLIError("workspace not initialized", "Run 'porter init' first", nil)
	}
	return services, nil
}

// resolveTechnology picks the source technology: an explicit flag wins, then
// the recorded plan, then marker detection on the source tree.
func resolveTechnology(services *wiring.AppServices, flag string) (conversion.Technology, error) {
	if flag != "" {
		return conversion.ParseTechnology(flag)
	}

	if doc, err := services.Workspace.Repo.LoadPlan(); err == nil && doc != nil && doc.Technology.IsValid() {
		return doc.Technology, nil
	}

	return conversion.DetectTechnology(services.Options.SourceDir)
}
