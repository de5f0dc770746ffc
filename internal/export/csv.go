// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders program records for the downstream consumers:
// the fully-quoted CSV the import activity ingests, XLSX for hand
// inspection, and table/JSON/YAML previews on the CLI.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/bifeed/pkg/types"
)

// Columns is the fixed output column order. The import activity maps
// columns by header name but the legacy file always emitted this order.
var Columns = []string{
	"Program_URL",
	"Program_Ref",
	"Program_Name",
	"Program_City",
	"Program_ZipCode",
	"Program_Department",
	"Program_Arguments",
	"Scraping_Date",
	"Scraping_Status",
	"Error_Message",
	"Program_Image",
}

// row flattens a record into Columns order.
func row(r types.ProgramRecord) []string {
	return []string{
		r.URL,
		r.Ref,
		r.Name,
		r.City,
		r.ZipCode,
		r.Department,
		r.Arguments,
		r.CapturedAt.Format(types.ScrapeDateLayout),
		r.Status,
		r.ErrorMessage,
		r.Image,
	}
}

// WriteCSV writes records in the legacy CSV shape: every field quoted,
// embedded quotes doubled, CRLF row terminators. encoding/csv quotes only
// when necessary, which changes bytes the import activity has consumed
// for years, so the quoting is spelled out here.
func WriteCSV(w io.Writer, records []types.ProgramRecord) error {
	if err := writeCSVRow(w, Columns); err != nil {
		return err
	}
	for _, r := range records {
		if err := writeCSVRow(w, row(r)); err != nil {
			return err
		}
	}
	return nil
}

func writeCSVRow(w io.Writer, fields []string) error {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	_, err := fmt.Fprintf(w, "%s\r\n", strings.Join(quoted, ","))
	return err
}
