package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/porter/internal/infrastructure/lint"
	"github.com/felixgeelhaar/porter/internal/infrastructure/watch"
	"github.com/felixgeelhaar/porter/pkg/domain/validate"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the converted tree and rescan on changes",
	Long: `Watches the converted tree and reruns the lint scan whenever an
artifact changes. Findings are printed but nothing is auto-fixed; use
'porter validate' for the bounded fix loop.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := buildServices()
		if err != nil {
			return MapError(err)
		}
		defer services.Cleanup()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		scanner := lint.NewAnsibleLint()
		treeRoot := services.Options.TargetDir

		rescan := func(trigger string) {
			scanCtx, cancel := context.WithTimeout(ctx, services.Options.ValidateTimeout)
			defer cancel()

			findings, err := scanner.Scan(scanCtx, treeRoot)
			if err != nil {
				fmt.Printf("scan failed: %v\n", MapError(err))
				return
			}
			if len(findings) == 0 {
				fmt.Printf("[%s] clean\n", trigger)
				return
			}
			fmt.Printf("[%s] %d finding(s):\n", trigger, len(findings))
			for _, f := range validate.SortedFiles(validate.GroupByFile(findings)) {
				fmt.Printf("  %s\n", f)
			}
		}

		watcher, err := watch.NewTreeWatcher(watchDebounce, func(ev watch.ChangeEvent) {
			rescan(fmt.Sprintf("%s %s", ev.ChangeType, ev.Path))
		})
		if err != nil {
			return err
		}
		if err := watcher.WatchRecursive(treeRoot); err != nil {
			return err
		}

		fmt.Printf("Watching %s (ctrl+c to stop)\n", treeRoot)
		rescan("initial")

		if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "settle window before rescanning")
	RootCmd.AddCommand(watchCmd)
}
