package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var listsJSON bool

var listsCmd = &cobra.Command{
	Use:   "lists",
	Short: "Show registered filter lists",
	RunE:  runLists,
}

var listsEnableCmd = &cobra.Command{
	Use:   "enable <name>",
	Short: "Enable a filter list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setListEnabled(cmd, args[0], true)
	},
}

var listsDisableCmd = &cobra.Command{
	Use:   "disable <name>",
	Short: "Disable a filter list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setListEnabled(cmd, args[0], false)
	},
}

func init() {
	rootCmd.AddCommand(listsCmd)
	listsCmd.AddCommand(listsEnableCmd, listsDisableCmd)

	listsCmd.Flags().BoolVar(&listsJSON, "json", false, "output as JSON")
}

func runLists(_ *cobra.Command, _ []string) error {
	infos := application.Engine.Lists()

	if listsJSON {
		out, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	table := theme.NewTable("NAME", "STATE", "RULES", "UPDATED")
	for _, info := range infos {
		updated := "never"
		if !info.LastUpdated.IsZero() {
			updated = info.LastUpdated.Format("2006-01-02 15:04")
		}
		table.AddRow(
			info.Name,
			theme.EnabledBadge(info.Enabled),
			strconv.Itoa(info.RuleCount),
			updated,
		)
	}
	fmt.Print(table.Render())
	return nil
}

func setListEnabled(cmd *cobra.Command, name string, enabled bool) error {
	if err := application.Engine.SetListEnabled(name, enabled); err != nil {
		return err
	}
	if err := application.SaveState(cmd.Context()); err != nil {
		return err
	}
	fmt.Printf("%s %s\n", theme.EnabledBadge(enabled), theme.Normal.Render(name))
	return nil
}
