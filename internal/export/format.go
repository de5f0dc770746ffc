// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bifeed/pkg/types"
)

// FormatTable writes records as a human-readable table to w, followed by
// the run counters.
func FormatTable(records []types.ProgramRecord, stats types.RunStats, w io.Writer) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No programs extracted.")
		fmt.Fprintf(w, "\nscanned: %d, skipped: %d, duplicates: %d\n",
			stats.Scanned, stats.Skipped(), stats.DuplicatesSkipped)
		return
	}

	fmt.Fprintf(w, "%-4s  %-12s  %-30s  %-20s  %-5s  %-4s  %s\n",
		"Rank", "Ref", "Name", "City", "Zip", "Dept", "Image")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for i, r := range records {
		fmt.Fprintf(w, "%-4d  %-12s  %-30s  %-20s  %-5s  %-4s  %s\n",
			i+1,
			clip(r.Ref, 12),
			clip(r.Name, 30),
			clip(r.City, 20),
			clip(r.ZipCode, 5),
			r.Department,
			clip(r.Image, 40))
	}

	fmt.Fprintf(w, "\n%d programs", len(records))
	if stats.DuplicatesSkipped > 0 {
		fmt.Fprintf(w, " (%d duplicates skipped)", stats.DuplicatesSkipped)
	}
	fmt.Fprintln(w)
}

// FormatJSON writes records as indented JSON to w.
func FormatJSON(records []types.ProgramRecord, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// FormatYAML writes records as YAML to w.
func FormatYAML(records []types.ProgramRecord, w io.Writer) error {
	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
