package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

// ProgressFunc receives one callback per section as the renderer works
// through the document. May be nil.
type ProgressFunc func(index, total int, title string)

// RenderPDF draws the composed sections into a paginated A4 document:
// italic running header, page-number footer, auto page breaks. Chart
// sections are rasterized to PNG and embedded. This is the long-running
// path; callers wanting responsiveness run it on a worker (see Runner).
func RenderPDF(sections []Section, opts Options, chartWidth, chartHeight int, progress ProgressFunc) ([]byte, error) {
	orient := "P"
	if opts.Landscape {
		orient = "L"
	}
	pdf := fpdf.New(orient, "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)

	headerText := fmt.Sprintf("%s Y%d PMR | %s", opts.Period.Quarter, opts.Period.Year, opts.Report.Department)
	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 10, headerText, "", 1, "C", false, 0, "")
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	for i, sec := range sections {
		if progress != nil {
			progress(i, len(sections), sec.Title)
		}
		switch sec.Kind {
		case SectionTitle:
			renderCoverPage(pdf, sec)
		case SectionText:
			renderTextPage(pdf, sec)
		case SectionTable:
			renderTablePage(pdf, sec)
		case SectionChart:
			if err := renderChartPage(pdf, sec, chartWidth, chartHeight, i); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func renderCoverPage(pdf *fpdf.Fpdf, sec Section) {
	pdf.AddPage()
	pdf.Ln(60)
	pdf.SetFont("Arial", "B", 28)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 15, sec.Title, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 16)
	pdf.SetTextColor(80, 80, 80)
	pdf.Ln(8)
	for _, line := range sec.Lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		pdf.CellFormat(0, 10, line, "", 1, "C", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
}

func renderTextPage(pdf *fpdf.Fpdf, sec Section) {
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 10, sec.Title, "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	for _, line := range sec.Lines {
		pdf.MultiCell(0, 8, line, "", "L", false)
	}
}

func renderTablePage(pdf *fpdf.Fpdf, sec Section) {
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, sec.Title, "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "B", 10)
	pdf.MultiCell(0, 6, strings.Join(sec.Columns, " | "), "", "L", false)
	pdf.SetFont("Arial", "", 10)
	for _, row := range sec.Rows {
		pdf.MultiCell(0, 6, strings.Join(row, " | "), "", "L", false)
	}
}

func renderChartPage(pdf *fpdf.Fpdf, sec Section, chartWidth, chartHeight, index int) error {
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, sec.Title, "", 1, "L", false, 0, "")

	png, err := RenderPNG(sec.Chart, chartWidth, chartHeight)
	if err != nil {
		return fmt.Errorf("chart %q: %w", sec.Title, err)
	}
	name := fmt.Sprintf("chart-%d", index)
	imgOpts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, imgOpts, bytes.NewReader(png))
	pdf.ImageOptions(name, 15, 0, 180, 0, true, imgOpts, 0, "")
	return nil
}
