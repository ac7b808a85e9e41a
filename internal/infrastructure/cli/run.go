package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/porter/pkg/domain/validate"
)

var runTech string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Plan, convert, and validate in one pass",
	Long: `Runs the full pipeline: reconcile the plan into the checklist,
convert pending items, then validate and fix the tree. Attempt counters are
reset at the start, so every run gets the full fix budget.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := buildServices()
		if err != nil {
			return MapError(err)
		}
		defer services.Cleanup()

		tech, err := resolveTechnology(services, runTech)
		if err != nil {
			return MapError(err)
		}

		ctx := cmd.Context()
		runID := uuid.New().String()
		if err := services.Workspace.Repo.ResetAttempts(runID); err != nil {
			return MapError(err)
		}

		doc, err := services.Plan.Generate(ctx, tech, false)
		if err != nil {
			return MapError(err)
		}
		result, err := services.Plan.Reconcile(ctx)
		if err != nil {
			return MapError(err)
		}
		fmt.Printf("Plan: %d units, %d newly tracked\n", len(doc.Units), result.Added)

		report, err := services.Convert.RunPending(ctx, tech)
		if err != nil {
			return MapError(err)
		}
		fmt.Printf("Converted: %d  Errored: %d  Skipped: %d\n", report.Completed, report.Errored, report.Skipped)

		fixReport, err := services.Fix.Run(ctx, runID, tech)
		if err != nil {
			return MapError(err)
		}
		printFixReport(fixReport)

		if fixReport.Outcome == validate.OutcomeExhausted {
			return &CLIError{
				Message:  "validation exhausted its fix attempts",
				Hint:     "Fix the remaining findings by hand, then rerun 'porter validate'",
				ExitCode: ExitCodeExhausted,
			}
		}
		if report.Errored > 0 {
			return NewCLIError(
				fmt.Sprintf("%d items failed to convert", report.Errored),
				"Rerun 'porter run' to retry errored items",
				nil,
			)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runTech, "technology", "", "source technology (chef, puppet, salt); detected when omitted")
	RootCmd.AddCommand(runCmd)
}
