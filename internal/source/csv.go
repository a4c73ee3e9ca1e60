package source

import (
	"encoding/csv"
	"io"
	"strings"

	"pmr-generator/internal/pmr"
)

// ParseCSV reads a delimited upload into a raw table. A CSV file carries no
// sheet names, so it is treated as the PMR sheet directly. Ragged rows are
// tolerated; short rows read as missing cells downstream.
func ParseCSV(r io.Reader) (pmr.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var t pmr.Table
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return pmr.Table{}, pmr.SourceUnavailablef("malformed CSV: %v", err)
		}
		if t.Headers == nil {
			headers := make([]string, len(rec))
			for i, h := range rec {
				headers[i] = strings.TrimSpace(h)
			}
			t.Headers = headers
			continue
		}
		t.Rows = append(t.Rows, rec)
	}
	if t.Headers == nil {
		return pmr.Table{}, pmr.SourceUnavailablef("empty CSV input")
	}
	return t, nil
}
