package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders datasets into tabular PDF pages, one page per dataset.
type PDFExporter struct {
	title string
}

// NewPDFExporter constructs a PDF exporter with a document title.
func NewPDFExporter(title string) *PDFExporter {
	return &PDFExporter{title: title}
}

// ContentType reports the MIME type of rendered output.
func (e *PDFExporter) ContentType() string {
	return "application/pdf"
}

// Render creates a landscape PDF with the document title and a table per dataset.
func (e *PDFExporter) Render(datasets ...Dataset) ([]byte, error) {
	if len(datasets) == 0 {
		return nil, fmt.Errorf("pdf requires at least one dataset")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetTitle(e.title, true)

	const tableWidth = 277.0
	for _, data := range datasets {
		if len(data.Headers) == 0 {
			return nil, fmt.Errorf("pdf requires at least one header")
		}
		pdf.AddPage()

		if e.title != "" {
			pdf.SetFont("Arial", "B", 14)
			pdf.CellFormat(0, 10, strings.ToUpper(e.title), "", 1, "C", false, 0, "")
		}
		if data.Title != "" {
			pdf.SetFont("Arial", "B", 12)
			pdf.CellFormat(0, 8, data.Title, "", 1, "L", false, 0, "")
			pdf.Ln(3)
		}

		pdf.SetFont("Arial", "B", 10)
		colWidth := tableWidth / float64(len(data.Headers))
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 8)
		for _, row := range data.Rows {
			for _, header := range data.Headers {
				pdf.CellFormat(colWidth, 7, row[header], "1", 0, "C", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
