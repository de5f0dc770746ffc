// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/bifeed/pkg/types"
)

const xlsxSheet = "Programs"

// WriteXLSX writes records to an XLSX workbook at path, one sheet, same
// columns as the CSV.
func WriteXLSX(path string, records []types.ProgramRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(xlsxSheet)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	for i, h := range Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(xlsxSheet, cell, h); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for rowIdx, r := range records {
		for colIdx, v := range row(r) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(xlsxSheet, cell, v); err != nil {
				return fmt.Errorf("writing row %d: %w", rowIdx+1, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
