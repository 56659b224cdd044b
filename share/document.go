package share

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/jung-kurt/gofpdf"
)

// Format is the file format of a rendered document.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// ErrUnknownFormat indicates an unsupported document format.
var ErrUnknownFormat = errors.New("unknown document format")

// ParseFormat maps a format name to a Format. The empty string is PDF.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatPDF, nil
	case FormatPDF, FormatDOCX:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

const (
	pdfMargin     = 40.0
	pdfLineHeight = 15.0
	pdfLineLength = 110
	pdfFontSize   = 11.0

	docxFont     = "Times New Roman"
	docxFontSize = 12
)

// Render writes text as a document of the given format into dir and
// returns its path. The file name is derived from title.
func Render(format Format, title, text, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, DocumentName(title, format))

	var err error
	switch format {
	case FormatPDF, "":
		err = RenderPDF(text, path)
	case FormatDOCX:
		err = RenderDOCX(title, text, path)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

// DocumentName returns a unique file name for a document titled title.
func DocumentName(title string, format Format) string {
	if format == "" {
		format = FormatPDF
	}
	name := slug.Make(title)
	if name == "" {
		name = "output"
	}
	return fmt.Sprintf("%s-%s.%s", name, uuid.NewString()[:8], format)
}

// RenderPDF writes text to an A4 PDF, one line per input line. Lines are
// cut at 110 characters and a new page starts when the bottom margin is
// reached.
func RenderPDF(text, path string) error {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetFont("Helvetica", "", pdfFontSize)
	translate := pdf.UnicodeTranslatorFromDescriptor("")
	_, height := pdf.GetPageSize()

	pdf.AddPage()
	y := pdfMargin
	for _, line := range strings.Split(text, "\n") {
		pdf.Text(pdfMargin, y, translate(truncate(line, pdfLineLength)))
		y += pdfLineHeight
		if y > height-pdfMargin {
			pdf.AddPage()
			y = pdfMargin
		}
	}
	return pdf.OutputFileAndClose(path)
}

// RenderDOCX writes text to a DOCX file with a bold title paragraph
// followed by one paragraph per non-blank line.
func RenderDOCX(title, text, path string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	doc.AddParagraph("").AddText(title).Font(docxFont).Size(docxFontSize + 4).Bold(true)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		doc.AddParagraph("").AddText(line).Font(docxFont).Size(docxFontSize).Color("000000")
	}
	return doc.SaveTo(path)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
