package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sw3do/sw3do-browser/internal/config"
)

var configSchema bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().BoolVar(&configSchema, "schema", false, "regenerate the JSON schema next to the config file")
}

func runConfig(_ *cobra.Command, _ []string) error {
	configDir, err := config.GetConfigDir()
	if err != nil {
		return err
	}

	if configSchema {
		if err := config.GenerateSchemaFile(); err != nil {
			return fmt.Errorf("generate schema: %w", err)
		}
		fmt.Println(theme.KeyValue("schema", filepath.Join(configDir, "config.schema.json")))
		return nil
	}

	out, err := json.MarshalIndent(application.Config.Get(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(theme.KeyValue("config file", filepath.Join(configDir, "config.toml")))
	fmt.Println(string(out))
	return nil
}
