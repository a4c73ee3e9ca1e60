package report

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"

	"pmr-generator/internal/pmr"
)

// exportColumns is the column order of the on-screen filtered table. Both
// delimited and spreadsheet exports derive from the same rows, so content
// is identical across formats and the screen.
var exportColumns = []string{
	"COFOG",
	"MDA",
	"Programme / Project",
	"Output Target",
	"Actual Output",
	"Output Performance",
	"Planned Performance",
	"Approved Budget",
	"Budget Released",
	"Budget Performance",
	"TPR Score",
	"Tracking Status",
	"Remarks",
}

func exportRows(v pmr.View) [][]string {
	rows := make([][]string, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		r := v.Record(i)
		rows = append(rows, []string{
			r.Sector,
			r.Agency,
			r.Programme,
			numOrBlank(r.OutputTarget),
			numOrBlank(r.OutputActual),
			pctOrBlank(r.OutputPerf),
			pctOrBlank(r.PlannedPerf),
			numOrBlank(r.ApprovedBudget),
			numOrBlank(r.ReleasedBudget),
			pctOrBlank(r.BudgetPerf),
			pctOrBlank(r.TrackingScore),
			string(r.Status),
			r.Remarks,
		})
	}
	return rows
}

func pctOrBlank(m pmr.Maybe) string {
	if !m.Valid {
		return ""
	}
	return fmt.Sprintf("%.1f%%", m.Value*100)
}

// WriteCSV serializes the filtered view as delimited text.
func WriteCSV(v pmr.View) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportColumns); err != nil {
		return nil, err
	}
	if err := w.WriteAll(exportRows(v)); err != nil {
		return nil, err
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// WriteXLSX serializes the filtered view as a single-sheet workbook, on a
// tab named like the source's PMR sheet.
func WriteXLSX(v pmr.View) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "PMR"
	f.SetSheetName("Sheet1", sheet)

	for i, col := range exportColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return nil, err
		}
	}
	for ri, row := range exportRows(v) {
		for ci, val := range row {
			cell, err := excelize.CoordinatesToCellName(ci+1, ri+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
