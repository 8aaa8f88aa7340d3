package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of a workbook export.
type Sheet struct {
	Name    string
	Columns []string
	Widths  []float64
	Rows    [][]interface{}
}

// Workbook writes the sheets into an .xlsx file with a bold, frozen header row.
func (e *Exporter) Workbook(sheets ...Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F2F5F9"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("workbook: header style: %w", err)
	}

	for si, sh := range sheets {
		index, err := f.NewSheet(sh.Name)
		if err != nil {
			return nil, fmt.Errorf("workbook: create sheet %s: %w", sh.Name, err)
		}
		if si == 0 {
			f.SetActiveSheet(index)
		}
		for col, header := range sh.Columns {
			cell, err := excelize.CoordinatesToCellName(col+1, 1)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sh.Name, cell, header); err != nil {
				return nil, fmt.Errorf("workbook: header %s: %w", cell, err)
			}
			if err := f.SetCellStyle(sh.Name, cell, cell, headerStyle); err != nil {
				return nil, fmt.Errorf("workbook: header style %s: %w", cell, err)
			}
			if col < len(sh.Widths) && sh.Widths[col] > 0 {
				name, _ := excelize.ColumnNumberToName(col + 1)
				if err := f.SetColWidth(sh.Name, name, name, sh.Widths[col]); err != nil {
					return nil, fmt.Errorf("workbook: column width: %w", err)
				}
			}
		}
		for r, row := range sh.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(sh.Name, cell, &row); err != nil {
				return nil, fmt.Errorf("workbook: row %d: %w", r+2, err)
			}
		}
		if err := f.SetPanes(sh.Name, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return nil, fmt.Errorf("workbook: freeze header: %w", err)
		}
	}
	keepDefault := len(sheets) == 0
	for _, sh := range sheets {
		keepDefault = keepDefault || sh.Name == "Sheet1"
	}
	if !keepDefault {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("workbook: drop default sheet: %w", err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("workbook: write: %w", err)
	}
	return buf.Bytes(), nil
}
