package datasets

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExportDashboardXLSX writes the dashboard dataset as a spreadsheet, one
// header row followed by the data.
func ExportDashboardXLSX(path string, rows []DashboardRow) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Dashboard"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for col, name := range DashboardHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("datasets: building cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("datasets: writing header: %w", err)
		}
	}

	for i, row := range rows {
		values := []any{row.Date, row.OS, row.Country, row.Device, row.Operator, row.Count}
		for col, val := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("datasets: building cell name: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return fmt.Errorf("datasets: writing row: %w", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("datasets: saving %s: %w", path, err)
	}
	return nil
}
