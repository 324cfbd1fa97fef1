package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sw3do/sw3do-browser/internal/shield"
)

var (
	shieldsJSON bool

	shieldAds         bool
	shieldTrackers    bool
	shieldThirdParty  bool
	shieldFingerprint bool
	shieldHTTPSOnly   bool
)

var shieldsCmd = &cobra.Command{
	Use:   "shields <domain>",
	Short: "Show the shield configuration for a domain",
	Long: `Show the shield configuration and block counters for a domain.

Domains without a stored configuration report the defaults; they are only
persisted once changed with 'shields set'.`,
	Args: cobra.ExactArgs(1),
	RunE: runShieldsGet,
}

var shieldsSetCmd = &cobra.Command{
	Use:   "set <domain>",
	Short: "Store the shield configuration for a domain",
	Args:  cobra.ExactArgs(1),
	RunE:  runShieldsSet,
}

var shieldsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every domain with a stored shield configuration",
	RunE:  runShieldsList,
}

func init() {
	rootCmd.AddCommand(shieldsCmd)
	shieldsCmd.AddCommand(shieldsSetCmd, shieldsListCmd)

	shieldsCmd.PersistentFlags().BoolVar(&shieldsJSON, "json", false, "output as JSON")

	defaults := shield.DefaultSiteShields("")
	shieldsSetCmd.Flags().BoolVar(&shieldAds, "ads", defaults.AdBlocking, "block ads")
	shieldsSetCmd.Flags().BoolVar(&shieldTrackers, "trackers", defaults.TrackerBlocking, "block trackers")
	shieldsSetCmd.Flags().BoolVar(&shieldThirdParty, "third-party-cookies", defaults.ThirdPartyCookies, "block third-party cookies")
	shieldsSetCmd.Flags().BoolVar(&shieldFingerprint, "fingerprinting", defaults.FingerprintingProtection, "fingerprinting protection")
	shieldsSetCmd.Flags().BoolVar(&shieldHTTPSOnly, "https-only", defaults.HTTPSOnly, "upgrade to https")
}

func runShieldsGet(_ *cobra.Command, args []string) error {
	s := application.Engine.GetShields(args[0])
	return printShields(s)
}

func runShieldsSet(cmd *cobra.Command, args []string) error {
	domain := args[0]

	// Start from the current (or default) state so counters survive.
	s := application.Engine.GetShields(domain)
	s.AdBlocking = shieldAds
	s.TrackerBlocking = shieldTrackers
	s.ThirdPartyCookies = shieldThirdParty
	s.FingerprintingProtection = shieldFingerprint
	s.HTTPSOnly = shieldHTTPSOnly

	application.Engine.UpdateShields(domain, s)
	if err := application.SaveState(cmd.Context()); err != nil {
		return err
	}
	return printShields(application.Engine.GetShields(domain))
}

func runShieldsList(_ *cobra.Command, _ []string) error {
	all := application.Engine.AllShields()

	if shieldsJSON {
		out, err := json.MarshalIndent(all, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	table := theme.NewTable("DOMAIN", "ADS", "TRACKERS", "3P COOKIES", "BLOCKED")
	for _, s := range all {
		table.AddRow(
			s.Domain,
			onOff(s.AdBlocking),
			onOff(s.TrackerBlocking),
			onOff(s.ThirdPartyCookies),
			strconv.FormatUint(s.AdsBlocked+s.TrackersBlocked+s.ScriptsBlocked, 10),
		)
	}
	fmt.Print(table.Render())
	return nil
}

func printShields(s shield.SiteShields) error {
	if shieldsJSON {
		out, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Println(theme.Title.Render(s.Domain))
	fmt.Println(theme.KeyValue("ad blocking", onOff(s.AdBlocking)))
	fmt.Println(theme.KeyValue("tracker blocking", onOff(s.TrackerBlocking)))
	fmt.Println(theme.KeyValue("third-party cookies blocked", onOff(s.ThirdPartyCookies)))
	fmt.Println(theme.KeyValue("fingerprinting protection", onOff(s.FingerprintingProtection)))
	fmt.Println(theme.KeyValue("https only", onOff(s.HTTPSOnly)))
	fmt.Println(theme.KeyValue("ads blocked", strconv.FormatUint(s.AdsBlocked, 10)))
	fmt.Println(theme.KeyValue("trackers blocked", strconv.FormatUint(s.TrackersBlocked, 10)))
	fmt.Println(theme.KeyValue("scripts blocked", strconv.FormatUint(s.ScriptsBlocked, 10)))
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
