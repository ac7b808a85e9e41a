package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var auditVerify bool

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show the hash-chained audit timeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := buildServices()
		if err != nil {
			return MapError(err)
		}
		defer services.Cleanup()

		if auditVerify {
			tampered, err := services.Workspace.Audit.VerifyIntegrity()
			if err != nil {
				return MapError(err)
			}
			if len(tampered) > 0 {
				for _, t := range tampered {
					fmt.Printf("tampered: %s\n", t)
				}
				return NewCLIError("audit trail integrity check failed", "The events log was modified outside porter", nil)
			}
			fmt.Println("Audit trail integrity: OK")
			return nil
		}

		events, err := services.Workspace.Audit.GetTimeline()
		if err != nil {
			return MapError(err)
		}
		for _, ev := range events {
			fmt.Printf("%s  %-18s %s\n", ev.Timestamp.Format("2006-01-02 15:04:05"), ev.Action, ev.Actor)
		}
		return nil
	},
}

func init() {
	auditCmd.Flags().BoolVar(&auditVerify, "verify", false, "verify the hash chain instead of printing the timeline")
	RootCmd.AddCommand(auditCmd)
}
