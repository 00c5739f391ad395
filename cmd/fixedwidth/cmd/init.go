/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/fixedwidth/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a service configuration",
	Long: `Create a fixedwidth service configuration with a generated client API key.

This command will:
- Write the configuration file with secure permissions
- Create the layouts directory
- Print the client API key

Examples:
  fixedwidth init
  fixedwidth init --config ./fixedwidth.yaml --layouts-dir ./layouts`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		layoutsDir, _ := cmd.Flags().GetString("layouts-dir")
		force, _ := cmd.Flags().GetBool("force")

		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		cfg, err := initializeConfig(configPath, layoutsDir, force)
		if err != nil {
			return err
		}

		cmd.Printf("✅ Configuration created at %s\n", configPath)
		cmd.Printf("Layouts directory: %s\n", cfg.LayoutsDir)
		cmd.Printf("Client API key: %s\n", cfg.Security.ClientAPIKey)
		cmd.Printf("\nYou can now start the server with:\n")
		cmd.Printf("  fixedwidth serve --config %s\n", configPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().String("config", "", "Path to config file (default: OS-specific location)")
	initCmd.Flags().String("layouts-dir", "./layouts", "Directory holding layout specs")
	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration")
}

// initializeConfig bootstraps a configuration and its layouts directory
func initializeConfig(configPath, layoutsDir string, force bool) (*config.Config, error) {
	if config.ConfigExists(configPath) && !force {
		return nil, fmt.Errorf("configuration already exists at %s, use --force to overwrite", configPath)
	}

	cfg, err := config.BootstrapConfig(configPath, layoutsDir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.LayoutsDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create layouts directory: %w", err)
	}

	return cfg, nil
}
