/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssargent/fixedwidth/pkg/codec"
	"github.com/ssargent/fixedwidth/pkg/logging"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a fixed-width record from JSON",
	Long: `Generate one fixed-width record from a JSON object.

The record is written to stdout exactly as generated, including its record
ending. Numbers keep their exact digits.

Examples:
  echo '{"id": 42, "name": "Ada"}' | fixedwidth generate --spec members.yaml
  fixedwidth generate --spec members.yaml --input member.json > member.dat`,
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

		if err := generateRecord(layout, in, cmd.OutOrStdout()); err != nil {
			return err
		}
		logging.Logger().Debug("record generated", zap.String("spec", specPath), zap.Int("bytes", layout.TotalLength()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringP("spec", "s", "", "Layout spec file (YAML or JSON)")
	generateCmd.Flags().StringP("input", "i", "-", "JSON input file, - for stdin")
	if err := generateCmd.MarkFlagRequired("spec"); err != nil {
		panic(err)
	}
}

// generateRecord reads one JSON object from r and writes its record to w
func generateRecord(layout *codec.Layout, r io.Reader, w io.Writer) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var record codec.Record
	if err := dec.Decode(&record); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("no JSON object in input")
		}
		return fmt.Errorf("invalid JSON input: %w", err)
	}
	if dec.More() {
		return fmt.Errorf("input holds more than one JSON value")
	}

	buf, err := layout.Generate(record)
	if err != nil {
		return err
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// openInput opens path for reading, with "-" or "" meaning stdin
func openInput(path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return os.Stdin, func() {}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
