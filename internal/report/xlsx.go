package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExportXLSX renders the view as a single-sheet workbook with a TOTAL
// footer row. Amounts are written as numbers so spreadsheet formulas
// keep working on the export. An empty view produces no output.
func ExportXLSX(v View) ([]byte, error) {
	if v.Empty() {
		return nil, nil
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, c := range v.columns() {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("build xlsx for %s: %w", v.Title, err)
		}
		if err := f.SetCellValue(sheet, cell, c); err != nil {
			return nil, fmt.Errorf("build xlsx for %s: %w", v.Title, err)
		}
	}

	row := 2
	for _, t := range v.reversed() {
		cells := []any{t.DisplayDate()}
		if v.WithCategory {
			cells = append(cells, categoryCell(t))
		}
		cells = append(cells, t.Name, t.Amount.InexactFloat64())
		if err := setRow(f, sheet, row, cells); err != nil {
			return nil, fmt.Errorf("build xlsx for %s: %w", v.Title, err)
		}
		row++
	}

	footer := make([]any, len(v.columns()))
	for i := range footer {
		footer[i] = ""
	}
	footer[len(footer)-2] = "TOTAL"
	footer[len(footer)-1] = v.Total().InexactFloat64()
	if err := setRow(f, sheet, row, footer); err != nil {
		return nil, fmt.Errorf("build xlsx for %s: %w", v.Title, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx for %s: %w", v.Title, err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, cells []any) error {
	for i, val := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, val); err != nil {
			return err
		}
	}
	return nil
}
