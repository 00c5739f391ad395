/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssargent/fixedwidth/pkg/codec"
	"github.com/ssargent/fixedwidth/pkg/logging"
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse a fixed-width record into JSON",
	Long: `Parse one fixed-width record into a JSON object.

The input must be exactly one record, with or without its record ending.

Examples:
  fixedwidth parse --spec members.yaml --input member.dat
  printf '00042Ada     \n' | fixedwidth parse --spec members.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		specPath, _ := cmd.Flags().GetString("spec")
		inputPath, _ := cmd.Flags().GetString("input")

		layout, err := codec.LoadLayout(specPath)
		if err != nil {
			return fmt.Errorf("failed to load spec %s: %w", specPath, err)
		}

		in, closeInput, err := openInput(inputPath)
		if err != nil {
			return err
		}
		defer closeInput()

		if err := parseRecord(layout, in, cmd.OutOrStdout()); err != nil {
			return err
		}
		logging.Logger().Debug("record parsed", zap.String("spec", specPath))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringP("spec", "s", "", "Layout spec file (YAML or JSON)")
	parseCmd.Flags().StringP("input", "i", "-", "Record input file, - for stdin")
	if err := parseCmd.MarkFlagRequired("spec"); err != nil {
		panic(err)
	}
}

// parseRecord parses the whole of r as one record and writes it as JSON
func parseRecord(layout *codec.Layout, r io.Reader, w io.Writer) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	record, err := layout.Parse(data)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(record)
}
