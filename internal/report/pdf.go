package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"badhige/internal/core"
)

const pdfRowLimitY = 270.0

// ExportPDF renders the view as a paginated A4 table. The footer row
// carries the filtered total. An empty view produces no output.
func ExportPDF(v View, now time.Time) ([]byte, error) {
	if v.Empty() {
		return nil, nil
	}

	widths := pdfWidths(v.WithCategory)
	cols := v.columns()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, v.Title, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, "Generated "+now.Format("02-Jan-2006 15:04"), "", 1, "C", false, 0, "")
	if v.PeriodFrom != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("Period: %s to %s", v.PeriodFrom, v.PeriodTo), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	writeHeader := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for i, c := range cols {
			pdf.CellFormat(widths[i], 8, c, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 10)
	}
	writeHeader()

	for _, t := range v.reversed() {
		if pdf.GetY() > pdfRowLimitY {
			pdf.AddPage()
			writeHeader()
		}
		cells := []string{t.DisplayDate()}
		if v.WithCategory {
			cells = append(cells, categoryCell(t))
		}
		cells = append(cells, t.Name, t.Amount.StringFixed(2))
		for i, c := range cells {
			align := "L"
			if i == len(cells)-1 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 7, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 10)
	labelWidth := 0.0
	for _, w := range widths[:len(widths)-1] {
		labelWidth += w
	}
	pdf.CellFormat(labelWidth, 8, "TOTAL", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[len(widths)-1], 8, core.FormatAmount(v.Total()), "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf for %s: %w", v.Title, err)
	}
	return buf.Bytes(), nil
}

func pdfWidths(withCategory bool) []float64 {
	if withCategory {
		return []float64{30, 40, 85, 35}
	}
	return []float64{35, 115, 40}
}
