package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var convertTech string

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert pending checklist items to Ansible artifacts",
	Long: `Processes every pending (and previously errored) checklist item in
category order: structure first, then attributes, static files, templates,
and recipes or tasks. Each item gets exactly one generation attempt per
invocation; failed items stay in the ledger and are retried on the next run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := buildServices()
		if err != nil {
			return MapError(err)
		}
		defer services.Cleanup()

		tech, err := resolveTechnology(services, convertTech)
		if err != nil {
			return MapError(err)
		}

		report, err := services.Convert.RunPending(cmd.Context(), tech)
		if err != nil {
			return MapError(err)
		}

		fmt.Printf("Converted: %d  Errored: %d  Skipped: %d\n", report.Completed, report.Errored, report.Skipped)
		for target, reason := range report.Failures {
			fmt.Printf("  %s: %s\n", target, reason)
		}
		if report.Errored > 0 {
			return NewCLIError(
				fmt.Sprintf("%d items failed to convert", report.Errored),
				"Rerun 'porter convert' to retry errored items",
				nil,
			)
		}
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertTech, "technology", "", "source technology (chef, puppet, salt); detected when omitted")
	RootCmd.AddCommand(convertCmd)
}
