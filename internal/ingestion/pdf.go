package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/dslipak/pdf"
)

// PDFReader extracts text from PDF files.
type PDFReader struct{}

// NewPDFReader returns a PDF reader.
func NewPDFReader() *PDFReader {
	return &PDFReader{}
}

// Read extracts the plain text of every page in order.
func (r *PDFReader) Read(_ context.Context, path string) (text string, err error) {
	if _, statErr := os.Stat(path); statErr != nil {
		return "", &ReadError{Path: path, Cause: statErr}
	}

	// The underlying parser panics on malformed files.
	defer func() {
		if p := recover(); p != nil {
			text = ""
			err = &ParseError{Path: path, Format: ".pdf", Message: fmt.Sprintf("malformed PDF: %v", p)}
		}
	}()

	doc, err := pdf.Open(path)
	if err != nil {
		return "", &ParseError{Path: path, Format: ".pdf", Message: "failed to open document", Cause: err}
	}

	content, err := doc.GetPlainText()
	if err != nil {
		return "", &ParseError{Path: path, Format: ".pdf", Message: "failed to extract text", Cause: err}
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(content); err != nil {
		return "", &ParseError{Path: path, Format: ".pdf", Message: "failed to read text stream", Cause: err}
	}
	return buf.String(), nil
}
