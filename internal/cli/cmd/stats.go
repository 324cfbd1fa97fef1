package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	statsJSON  bool
	statsReset bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show global blocking statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
	statsCmd.Flags().BoolVar(&statsReset, "reset", false, "zero all counters before showing them")
}

func runStats(cmd *cobra.Command, _ []string) error {
	if statsReset {
		application.Engine.ResetStats()
		if err := application.SaveState(cmd.Context()); err != nil {
			return err
		}
	}

	stats := application.Engine.Stats()

	if statsJSON {
		out, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Println(theme.Title.Render("blocking statistics"))
	fmt.Println(theme.KeyValue("ads blocked", strconv.FormatUint(stats.TotalAdsBlocked, 10)))
	fmt.Println(theme.KeyValue("trackers blocked", strconv.FormatUint(stats.TotalTrackersBlocked, 10)))
	fmt.Println(theme.KeyValue("scripts blocked", strconv.FormatUint(stats.TotalScriptsBlocked, 10)))
	fmt.Println(theme.KeyValue("bandwidth saved", formatBytes(stats.BandwidthSaved)))
	fmt.Println(theme.KeyValue("since", stats.LastReset.Format("2006-01-02 15:04:05")))
	return nil
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
