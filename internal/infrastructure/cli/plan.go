package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	planForce bool
	planTech  string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate the conversion plan and reconcile it into the checklist",
	Long: `Scans the source tree, writes .porter/plan.yaml, and reconciles the
plan into the checklist. Reconciliation is add-only: items already tracked
keep their status and history, and items missing from the plan are left
untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := buildServices()
		if err != nil {
			return MapError(err)
		}
		defer services.Cleanup()

		tech, err := resolveTechnology(services, planTech)
		if err != nil {
			return MapError(err)
		}

		ctx := cmd.Context()
		doc, err := services.Plan.Generate(ctx, tech, planForce)
		if err != nil {
			return MapError(err)
		}

		result, err := services.Plan.Reconcile(ctx)
		if err != nil {
			return MapError(err)
		}

		fmt.Printf("Plan: %d units (%s)\n", len(doc.Units), tech.DisplayName())
		fmt.Printf("Checklist: %d added, %d already tracked\n", result.Added, result.AlreadyPresent)
		for _, src := range result.MissingSources {
			fmt.Printf("  missing source: %s\n", src)
		}
		return nil
	},
}

func init() {
	planCmd.Flags().BoolVar(&planForce, "force", false, "regenerate the plan even if one exists")
	planCmd.Flags().StringVar(&planTech, "technology", "", "source technology (chef, puppet, salt); detected when omitted")
	RootCmd.AddCommand(planCmd)
}
