package ingestion

import (
	"archive/zip"
	"context"
	"io"
	"regexp"
	"strings"
)

const docxDocumentEntry = "word/document.xml"

var docxTagPattern = regexp.MustCompile(`<[^>]*>`)

// docxEntityReplacer decodes the entities Word emits into document.xml.
var docxEntityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
)

// DOCXReader extracts text from Office Open XML documents by reading
// word/document.xml out of the zip container and stripping the markup.
type DOCXReader struct{}

// NewDOCXReader returns a DOCX reader.
func NewDOCXReader() *DOCXReader {
	return &DOCXReader{}
}

// Read extracts the document text. Paragraph boundaries become
// newlines so downstream cleanup sees the original line structure.
func (r *DOCXReader) Read(_ context.Context, path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", &ParseError{Path: path, Format: ".docx", Message: "not a valid docx archive", Cause: err}
	}
	defer archive.Close()

	for _, file := range archive.File {
		if file.Name != docxDocumentEntry {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", &ParseError{Path: path, Format: ".docx", Message: "failed to open document entry", Cause: err}
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", &ParseError{Path: path, Format: ".docx", Message: "failed to read document entry", Cause: err}
		}
		return docxToText(string(content)), nil
	}

	return "", &ParseError{Path: path, Format: ".docx", Message: "archive has no " + docxDocumentEntry}
}

func docxToText(xml string) string {
	// Paragraph ends and explicit breaks carry line structure; tabs keep
	// columns apart.
	xml = strings.ReplaceAll(xml, "</w:p>", "\n")
	xml = strings.ReplaceAll(xml, "<w:br/>", "\n")
	xml = strings.ReplaceAll(xml, "<w:tab/>", "\t")
	text := docxTagPattern.ReplaceAllString(xml, "")
	return docxEntityReplacer.Replace(text)
}
