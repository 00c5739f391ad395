/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ssargent/fixedwidth/pkg/codec"
)

// layoutCmd represents the layout command
var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Compile a spec and show its layout",
	Long: `Compile a layout spec and print the resulting field positions.

Compilation errors are reported with their kind, so this command doubles as
a spec linter.

Examples:
  fixedwidth layout --spec members.yaml
  fixedwidth layout --spec members.yaml --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		specPath, _ := cmd.Flags().GetString("spec")
		format, _ := cmd.Flags().GetString("format")

		layout, err := codec.LoadLayout(specPath)
		if err != nil {
			return fmt.Errorf("failed to load spec %s: %w", specPath, err)
		}

		name := strings.TrimSuffix(filepath.Base(specPath), filepath.Ext(specPath))
		return outputLayout(cmd.OutOrStdout(), name, layout, format)
	},
}

func init() {
	rootCmd.AddCommand(layoutCmd)

	layoutCmd.Flags().StringP("spec", "s", "", "Layout spec file (YAML or JSON)")
	layoutCmd.Flags().StringP("format", "o", "table", "Output format (table or json)")
	if err := layoutCmd.MarkFlagRequired("spec"); err != nil {
		panic(err)
	}
}

// layoutField is the printed form of a compiled field. Positions are 1-based
// and inclusive.
type layoutField struct {
	Key      string          `json:"key"`
	Type     codec.FieldType `json:"type"`
	Start    int             `json:"start"`
	End      int             `json:"end"`
	Length   int             `json:"length"`
	Required bool            `json:"required"`
	Fixed    any             `json:"fixed_value,omitempty"`
	Default  any             `json:"default_value,omitempty"`
	Allowed  []any           `json:"possible_values,omitempty"`
}

type layoutInfo struct {
	Name         string        `json:"name"`
	Encoding     string        `json:"encoding"`
	Length       int           `json:"length"`
	TotalLength  int           `json:"total_length"`
	RecordEnding string        `json:"record_ending"`
	Fields       []layoutField `json:"fields"`
}

func newLayoutInfo(name string, layout *codec.Layout) layoutInfo {
	info := layoutInfo{
		Name:         name,
		Encoding:     layout.Encoding(),
		Length:       layout.Length(),
		TotalLength:  layout.TotalLength(),
		RecordEnding: layout.RecordEnding(),
	}
	for _, f := range layout.Fields() {
		info.Fields = append(info.Fields, layoutField{
			Key:      f.Key,
			Type:     f.Type,
			Start:    f.StartIndex + 1,
			End:      f.EndIndex,
			Length:   f.Length,
			Required: f.Required,
			Fixed:    f.FixedValue,
			Default:  f.DefaultValue,
			Allowed:  f.PossibleValues,
		})
	}
	return info
}

// outputLayout displays a compiled layout
func outputLayout(w io.Writer, name string, layout *codec.Layout, format string) error {
	info := newLayoutInfo(name, layout)

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	case "table", "":
		return outputLayoutTable(w, info)
	}
	return fmt.Errorf("unknown output format %q", format)
}

// outputLayoutTable displays a layout in table format
func outputLayoutTable(out io.Writer, info layoutInfo) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Layout:\t%s\n", info.Name)
	fmt.Fprintf(w, "Encoding:\t%s\n", info.Encoding)
	fmt.Fprintf(w, "Record length:\t%d\n", info.Length)
	fmt.Fprintf(w, "Total length:\t%d (ending %q)\n", info.TotalLength, info.RecordEnding)
	fmt.Fprintln(w)

	if len(info.Fields) == 0 {
		fmt.Fprintln(w, "No fields defined")
		return w.Flush()
	}

	fmt.Fprintln(w, "KEY\tTYPE\tSTART\tEND\tLENGTH\tREQUIRED\tCONSTRAINT")
	for _, f := range info.Fields {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%t\t%s\n",
			f.Key, f.Type, f.Start, f.End, f.Length, f.Required, constraint(f))
	}

	return w.Flush()
}

func constraint(f layoutField) string {
	switch {
	case f.Fixed != nil:
		return fmt.Sprintf("fixed=%v", f.Fixed)
	case len(f.Allowed) > 0:
		parts := make([]string, len(f.Allowed))
		for i, v := range f.Allowed {
			parts[i] = fmt.Sprint(v)
		}
		return "one of " + strings.Join(parts, "|")
	case f.Default != nil:
		return fmt.Sprintf("default=%v", f.Default)
	}
	return "-"
}
