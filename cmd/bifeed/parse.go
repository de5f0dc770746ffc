// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bifeed/internal/export"
	"github.com/pdiddy/bifeed/internal/parse"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Extract program records from a local feed document",
	Long: `Parse runs the legacy-compatible extraction engine over a local feed
file and prints the accepted records. The scanner tolerates malformed
input: blocks missing required fields, URLs without the program marker,
and duplicate (ref, url) pairs are counted and skipped, never fatal.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().String("format", "table", "output format: table, json, yaml, or csv")

	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading feed %s: %w", args[0], err)
	}

	out := parse.Parse(string(data), parse.DefaultSchema(), os.Stderr)
	if !out.EndMarkerFound {
		fmt.Fprintln(os.Stderr, "warning: no terminal document marker, scanned full text")
	}
	if out.DroppedTail {
		fmt.Fprintln(os.Stderr, "warning: trailing unclosed block discarded")
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "table", "":
		export.FormatTable(out.Records, out.Stats, os.Stdout)
		return nil
	case "json":
		return export.FormatJSON(out.Records, os.Stdout)
	case "yaml":
		return export.FormatYAML(out.Records, os.Stdout)
	case "csv":
		return export.WriteCSV(os.Stdout, out.Records)
	default:
		return fmt.Errorf("unsupported format %q: use table, json, yaml, or csv", format)
	}
}
