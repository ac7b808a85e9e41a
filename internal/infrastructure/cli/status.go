package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/porter/pkg/domain/checklist"
)

var (
	statusFilter string
	statusJSON   bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the conversion checklist and its progress",
	Long: `Show the conversion checklist and its progress.

Use flags to filter items:
  --status, -s  Filter by status (pending,complete,missing,error)
  --json        Output in JSON format

Examples:
  porter status
  porter status -s error,missing
  porter status --json`,
	RunE: runStatusCmd,
}

type statusJSONOutput struct {
	Total  int              `json:"total"`
	Counts map[string]int   `json:"counts"`
	Items  []checklist.Item `json:"items"`
}

func runStatusCmd(cmd *cobra.Command, args []string) error {
	services, err := buildServices()
	if err != nil {
		return MapError(err)
	}
	defer services.Cleanup()

	items := services.Workspace.Store.List()
	counts := services.Workspace.Store.CountByStatus()

	if statusFilter != "" {
		wanted := map[checklist.Status]bool{}
		for _, s := range strings.Split(statusFilter, ",") {
			wanted[checklist.Status(strings.TrimSpace(s))] = true
		}
		filtered := items[:0]
		for _, item := range items {
			if wanted[item.Status] {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	if statusJSON {
		out := statusJSONOutput{
			Total:  len(items),
			Counts: map[string]int{},
			Items:  items,
		}
		for status, n := range counts {
			out.Counts[string(status)] = n
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	fmt.Printf("Checklist: %d items (%d complete, %d pending, %d error, %d missing)\n\n",
		total,
		counts[checklist.StatusComplete],
		counts[checklist.StatusPending],
		counts[checklist.StatusError],
		counts[checklist.StatusMissing],
	)

	for _, item := range items {
		marker := " "
		switch item.Status {
		case checklist.StatusComplete:
			marker = "✓"
		case checklist.StatusError:
			marker = "✗"
		case checklist.StatusMissing:
			marker = "?"
		}
		fmt.Printf("%s [%-11s] %-12s %s\n", marker, item.Category, item.Status, item.TargetPath)
		if len(item.Notes) > 0 {
			last := item.Notes[len(item.Notes)-1]
			fmt.Printf("      last: %s\n", last.Text)
		}
	}
	return nil
}

func init() {
	statusCmd.Flags().StringVarP(&statusFilter, "status", "s", "", "filter by status (comma-separated)")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output in JSON format")
	RootCmd.AddCommand(statusCmd)
}
