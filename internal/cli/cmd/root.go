// Package cmd provides the Cobra CLI commands for sw3do.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sw3do/sw3do-browser/internal/app"
	"github.com/sw3do/sw3do-browser/internal/cli/styles"
)

// BuildInfo carries the ldflags-injected build metadata from main.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

var (
	application *app.App
	theme       = styles.NewTheme()
	buildInfo   = BuildInfo{Version: "dev"}

	rootCmd = &cobra.Command{
		Use:   "sw3do",
		Short: "Content filtering and site shields for the sw3do browser",
		Long: `sw3do manages the browser's request-filtering engine from the command line.

Filter lists are fetched in EasyList format, parsed into block/allow/hide
rules and cached locally. Per-site shields control which protections apply
to each domain, with block counters aggregated into global statistics.

Use 'sw3do check' to classify a URL against the current rules, or explore
the subcommands for list, shield and statistics management.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "completion", "version":
				return nil
			}

			var err error
			application, err = app.New(cmd.Context())
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if application != nil {
				_ = application.Close()
			}
		},
	}
)

// SetBuildInfo records the build metadata injected by main.
func SetBuildInfo(info BuildInfo) {
	buildInfo = info
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
