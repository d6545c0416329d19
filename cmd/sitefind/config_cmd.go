package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/igusev/sitefind/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage sitefind configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an example configuration file",
	Long: `Write a commented example configuration to
~/.config/sitefind/config.yaml.example. Rename it to config.yaml to use it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.CreateExampleConfig()
		if err != nil {
			return fmt.Errorf("failed to write example config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓ Example configuration written to "+path))
		fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Rename it to config.yaml to activate it."))
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}
