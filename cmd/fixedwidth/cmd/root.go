/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/fixedwidth/pkg/di"
	"github.com/ssargent/fixedwidth/pkg/logging"
)

var container *di.Container

// SetContainer injects the dependency container used by the commands
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fixedwidth",
	Short: "fixedwidth - fixed-width record codec",
	Long: `fixedwidth generates and parses fixed-width positional records.

A layout spec (YAML or JSON) names each field with its type, starting
position and length. Records are generated from JSON objects and parsed
back into JSON, either from the command line or over HTTP with 'serve'.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		format, _ := cmd.Flags().GetString("log-format")

		logger, err := logging.New(level, format)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		logging.SetLogger(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	_ = logging.Logger().Sync()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "Log format (json or console)")
}
