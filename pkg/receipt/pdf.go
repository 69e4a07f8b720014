package receipt

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

// Page geometry in points on a Letter page.
const (
	pageWidth   = 612.0
	titleY      = 42.0
	firstLineY  = 92.0
	lineSpacing = 20.0
	lineX       = 100.0
	rightMargin = 40.0
	ellipsis    = "..."
)

// Exporter renders a View into a single page PDF.
type Exporter struct {
	Compress bool
	Logo     *Logo
}

// Build lays out the receipt. The document always has exactly one page:
// automatic page breaks are off and over-long values are cut with an
// ellipsis.
func (e *Exporter) Build(v View) (*fpdf.Fpdf, error) {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetCompression(e.Compress)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(Title, false)
	pdf.SetCreator("rationdist", false)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if e.Logo != nil {
		e.Logo.draw(pdf)
	}

	pdf.SetFont("Helvetica", "B", 16)
	tw := pdf.GetStringWidth(Title)
	pdf.Text((pageWidth-tw)/2, titleY, Title)

	pdf.SetFont("Helvetica", "", 12)
	maxWidth := pageWidth - lineX - rightMargin
	for i, l := range v.Lines() {
		text := fitWidth(pdf, tr(l.Label+": "+l.Value), maxWidth)
		pdf.Text(lineX, firstLineY+lineSpacing*float64(i), text)
	}

	if pdf.Err() {
		return nil, fmt.Errorf("build receipt pdf: %w", pdf.Error())
	}
	return pdf, nil
}

// Write streams the rendered receipt to w.
func (e *Exporter) Write(w io.Writer, v View) error {
	pdf, err := e.Build(v)
	if err != nil {
		return err
	}
	return pdf.Output(w)
}

// Bytes renders the receipt into memory.
func (e *Exporter) Bytes(v View) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Write(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fitWidth trims s until it fits maxWidth with the ellipsis appended. s is
// already cp1252 encoded so trimming bytes is safe.
func fitWidth(pdf *fpdf.Fpdf, s string, maxWidth float64) string {
	if pdf.GetStringWidth(s) <= maxWidth {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+ellipsis) > maxWidth {
		s = s[:len(s)-1]
	}
	return s + ellipsis
}
