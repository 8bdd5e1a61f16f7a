package output

import (
	"fmt"
	"io"

	"github.com/iwvelando/payment-plan/internal/schedule"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet the plan is written to.
const SheetName = "Plan"

// WriteXLSX writes the schedule as an Excel workbook with the same layout as
// WriteCSV. Cells hold text so that the workbook reads back exactly.
func WriteXLSX(w io.Writer, s *schedule.Schedule) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, record := range Records(s) {
		if record == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := make([]interface{}, len(record))
		for j, v := range record {
			row[j] = v
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "G", 18); err != nil {
		return err
	}
	return f.Write(w)
}
