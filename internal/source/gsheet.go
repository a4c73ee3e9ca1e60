package source

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"pmr-generator/internal/pmr"
)

var sheetIDRe = regexp.MustCompile(`/d/([a-zA-Z0-9-_]+)`)

// SheetFetcher pulls a published Google Sheets document as CSV via the gviz
// export endpoint, always from the PMR tab.
type SheetFetcher struct {
	Client *http.Client
}

// NewSheetFetcher builds a fetcher with the given timeout.
func NewSheetFetcher(timeout time.Duration) *SheetFetcher {
	return &SheetFetcher{Client: &http.Client{Timeout: timeout}}
}

// ExportURL extracts the spreadsheet ID from a share link and returns the
// CSV export URL. An unrecognizable link is a SourceUnavailable.
func ExportURL(link string) (string, error) {
	m := sheetIDRe.FindStringSubmatch(link)
	if m == nil {
		return "", pmr.SourceUnavailablef("invalid Google Sheets URL %q", link)
	}
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:csv&sheet=%s", m[1], SheetName), nil
}

// Fetch downloads and parses the sheet.
func (f *SheetFetcher) Fetch(ctx context.Context, link string) (pmr.Table, error) {
	exportURL, err := ExportURL(link)
	if err != nil {
		return pmr.Table{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exportURL, nil)
	if err != nil {
		return pmr.Table{}, pmr.SourceUnavailablef("bad request for %q: %v", link, err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return pmr.Table{}, pmr.SourceUnavailablef("cannot reach %q: %v", link, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return pmr.Table{}, pmr.SourceUnavailablef("%q returned status %d", link, resp.StatusCode)
	}
	return ParseCSV(resp.Body)
}
