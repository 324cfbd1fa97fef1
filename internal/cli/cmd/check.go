package cmd

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/sw3do/sw3do-browser/internal/shield"
)

var (
	checkType   string
	checkOrigin string
	checkJSON   bool
)

var checkCmd = &cobra.Command{
	Use:   "check <url>",
	Short: "Classify a URL against the loaded filter rules",
	Long: `Classify a request URL the way the browser's interception layer would.

The origin defaults to the URL's own host, making the request first-party.
Pass --origin to simulate a third-party request from another page.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkType, "type", shield.ResourceOther, "resource type (script, image, stylesheet, xmlhttprequest, subdocument, document, other)")
	checkCmd.Flags().StringVar(&checkOrigin, "origin", "", "origin domain of the requesting page")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "output as JSON")
}

func runCheck(_ *cobra.Command, args []string) error {
	rawURL := args[0]

	origin := checkOrigin
	if origin == "" {
		if parsed, err := url.Parse(rawURL); err == nil {
			origin = parsed.Hostname()
		}
	}

	blocked := false
	if application.FilteringEnabled() {
		blocked = application.Engine.ShouldBlock(rawURL, checkType, origin)
	}

	if checkJSON {
		out, err := json.MarshalIndent(map[string]any{
			"url":     rawURL,
			"type":    checkType,
			"origin":  origin,
			"blocked": blocked,
			"enabled": application.FilteringEnabled(),
			"shields": application.Engine.GetShields(origin),
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	badge := theme.AllowedBadge()
	if blocked {
		badge = theme.BlockedBadge()
	}
	fmt.Printf("%s %s\n", badge, theme.Normal.Render(rawURL))
	fmt.Println(theme.KeyValue("type", checkType))
	fmt.Println(theme.KeyValue("origin", origin))
	if !application.FilteringEnabled() {
		fmt.Println(theme.Subtle.Render("filtering is disabled in the configuration"))
	}
	return nil
}
