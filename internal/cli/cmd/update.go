package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var updateWatch bool

var updateCmd = &cobra.Command{
	Use:   "update [list]",
	Short: "Fetch fresh rules for filter lists",
	Long: `Fetch and parse fresh rules for every enabled filter list, or for a
single named list. Lists that fail to download keep their current rules.

With --watch the command keeps running and refreshes on the interval
configured in filtering.update_interval_hours, reloading the config file
when it changes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().BoolVar(&updateWatch, "watch", false, "keep running and refresh periodically")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if updateWatch {
		if len(args) > 0 {
			return fmt.Errorf("--watch refreshes all lists; a list name cannot be given")
		}
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Println(theme.Subtle.Render("watching for updates, ctrl-c to stop"))
		if err := application.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	}

	if len(args) == 1 {
		if err := application.RefreshList(ctx, args[0]); err != nil {
			return err
		}
	} else if err := application.RefreshAll(ctx); err != nil {
		// Partial failures are reported but lists that refreshed are kept.
		fmt.Println(theme.Subtle.Render(err.Error()))
	}

	return runLists(cmd, nil)
}
