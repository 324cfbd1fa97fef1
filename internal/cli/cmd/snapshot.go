package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sw3do/sw3do-browser/internal/shield"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the full engine state to a JSON snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		data, err := shield.MarshalSnapshot(application.Engine.Export())
		if err != nil {
			return err
		}
		if err := os.WriteFile(args[0], data, 0o644); err != nil {
			return err
		}
		fmt.Println(theme.KeyValue("exported", args[0]))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the engine state from a JSON snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		snap, err := shield.UnmarshalSnapshot(data)
		if err != nil {
			return err
		}
		if err := application.Engine.Import(snap); err != nil {
			return err
		}
		if err := application.SaveState(cmd.Context()); err != nil {
			return err
		}
		fmt.Println(theme.KeyValue("imported", args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)
}
