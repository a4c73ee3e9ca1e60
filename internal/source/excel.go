package source

import (
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"pmr-generator/internal/pmr"
)

// SheetName is the tab the PMR dataset must live on in an XLSX upload.
const SheetName = "PMR"

// ParseXLSX reads the PMR sheet of an Excel upload into a raw table.
// A workbook without a PMR sheet is a schema mismatch, not a parse error:
// the file opened fine, it just isn't a PMR workbook.
func ParseXLSX(r io.Reader) (pmr.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return pmr.Table{}, pmr.SourceUnavailablef("unreadable XLSX: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil || len(rows) == 0 {
		return pmr.Table{}, pmr.SchemaMismatchf("sheet %q not found in workbook", SheetName)
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}
	return pmr.Table{Headers: headers, Rows: rows[1:]}, nil
}
