package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/porter/pkg/domain/validate"
)

var (
	validateTech  string
	validateFresh bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the converted tree and fix findings with bounded attempts",
	Long: `Scans the whole converted tree with ansible-lint and feeds findings
back to the generator, one fix attempt per affected file per round. Files
that stay broken after the attempt limit are excluded and their checklist
items marked errored. The loop ends converged (clean scan) or exhausted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := buildServices()
		if err != nil {
			return MapError(err)
		}
		defer services.Cleanup()

		tech, err := resolveTechnology(services, validateTech)
		if err != nil {
			return MapError(err)
		}

		runID := uuid.New().String()
		if validateFresh {
			if err := services.Workspace.Repo.ResetAttempts(runID); err != nil {
				return MapError(err)
			}
		}

		report, err := services.Fix.Run(cmd.Context(), runID, tech)
		if err != nil {
			return MapError(err)
		}

		printFixReport(report)
		if report.Outcome == validate.OutcomeExhausted {
			return &CLIError{
				Message:  "validation exhausted its fix attempts",
				Hint:     "Fix the remaining findings by hand, then rerun 'porter validate'",
				ExitCode: ExitCodeExhausted,
			}
		}
		return nil
	},
}

func printFixReport(report *validate.FixReport) {
	fmt.Printf("Validation %s after %d round(s)\n", report.Outcome, report.Rounds)
	for _, f := range report.Unresolved() {
		fmt.Printf("  %s: %d finding(s) after %d attempt(s)\n", f.FilePath, len(f.Unresolved), f.Attempts)
	}
}

func init() {
	validateCmd.Flags().StringVar(&validateTech, "technology", "", "source technology (chef, puppet, salt); detected when omitted")
	validateCmd.Flags().BoolVar(&validateFresh, "fresh", false, "reset persisted attempt counters before running")
	RootCmd.AddCommand(validateCmd)
}
