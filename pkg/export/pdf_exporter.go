package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders datasets into a basic tabular PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ContentType reports the MIME type of rendered output.
func (e *PDFExporter) ContentType() string { return "application/pdf" }

// Extension reports the file extension of rendered output.
func (e *PDFExporter) Extension() string { return "pdf" }

// Render creates a landscape PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(strings.ToUpper(title)), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 9)
	colWidth := 277.0 / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, tr(header), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, tr(truncate(row[header], 48)), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return output(pdf)
}

// Guide is a printable project guide.
type Guide struct {
	Title            string
	Description      string
	Meta             []string
	Materials        []string
	Steps            []string
	LearningOutcomes []string
	VideoURL         string
}

// RenderGuide lays out a single project guide on portrait pages.
func (e *PDFExporter) RenderGuide(g Guide) ([]byte, error) {
	if strings.TrimSpace(g.Title) == "" {
		return nil, fmt.Errorf("guide requires a title")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 18)
	pdf.MultiCell(0, 9, tr(g.Title), "", "L", false)
	pdf.Ln(2)

	if len(g.Meta) > 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.MultiCell(0, 6, tr(strings.Join(g.Meta, "  |  ")), "", "L", false)
		pdf.Ln(3)
	}

	pdf.SetFont("Arial", "", 11)
	pdf.MultiCell(0, 6, tr(g.Description), "", "L", false)

	section := func(heading string, items []string, numbered bool) {
		if len(items) == 0 {
			return
		}
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 13)
		pdf.CellFormat(0, 8, tr(heading), "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		for i, item := range items {
			bullet := "-"
			if numbered {
				bullet = fmt.Sprintf("%d.", i+1)
			}
			pdf.MultiCell(0, 6, tr(fmt.Sprintf("%s %s", bullet, item)), "", "L", false)
		}
	}

	section("Materials", g.Materials, false)
	section("Steps", g.Steps, true)
	section("Learning Outcomes", g.LearningOutcomes, false)

	if g.VideoURL != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "U", 10)
		pdf.SetTextColor(0, 0, 200)
		pdf.CellFormat(0, 6, tr(g.VideoURL), "", 1, "L", false, 0, g.VideoURL)
	}

	return output(pdf)
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
