package spreadsheet

import (
	"fmt"

	"github.com/fieldsales/backend/internal/domain/report"
	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of an XLSX workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Exporter writes reports as workbooks
type Exporter struct{}

// NewExporter creates an exporter
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export writes rep on one sheet: header row, grand total, then the
// dimension rows. Integer cells stay numeric; ratios and N/A are text.
// The caller closes the returned workbook.
func (e *Exporter) Export(sheetName string, rep *report.Report) (_ *excelize.File, err error) {
	f := excelize.NewFile()
	defer func() {
		if err != nil {
			_ = f.Close()
		}
	}()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeCells(f, sheetName, rep); err != nil {
		return nil, err
	}
	if err := layout(f, sheetName, len(rep.Columns)); err != nil {
		return nil, fmt.Errorf("failed to style sheet: %w", err)
	}
	return f, nil
}

func writeCells(f *excelize.File, sheet string, rep *report.Report) error {
	for i, row := range rep.Sequence() {
		for j, cell := range row.Cells() {
			axis, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			var v any = cell.String()
			if cell.Kind() == report.KindInt {
				v = cell.IntValue()
			}
			if err := f.SetCellValue(sheet, axis, v); err != nil {
				return fmt.Errorf("failed to write %s: %w", axis, err)
			}
		}
	}
	return nil
}

// layout bolds the header and total rows and sizes the columns
func layout(f *excelize.File, sheet string, columns int) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 2, 2, totalStyle); err != nil {
		return err
	}

	last, err := excelize.ColumnNumberToName(max(columns, 1))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 22); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "B", last, 14)
}
