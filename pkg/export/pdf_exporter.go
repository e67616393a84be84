package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders multi-line notes into a printable PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// RenderNote lays the note out line by line, preserving its blank-line
// structure. Section labels (lines ending in ":") are emphasised.
func (e *PDFExporter) RenderNote(title, note string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	for _, line := range strings.Split(note, "\n") {
		if line == "" {
			pdf.Ln(4)
			continue
		}
		if strings.HasSuffix(line, ":") && !strings.Contains(line, ": ") {
			pdf.SetFont("Arial", "B", 11)
		} else {
			pdf.SetFont("Arial", "", 10)
		}
		pdf.MultiCell(0, 6, line, "", "L", false)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
