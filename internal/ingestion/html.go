package ingestion

import (
	"context"
	"os"

	"github.com/PuerkitoBio/goquery"
)

// HTMLReader extracts visible text from HTML exports of resumes. Not
// part of the default format set; callers opt in by registering it.
type HTMLReader struct{}

// NewHTMLReader returns an HTML reader.
func NewHTMLReader() *HTMLReader {
	return &HTMLReader{}
}

// Read parses the file and returns the body text with scripts, styles,
// and page chrome removed.
func (r *HTMLReader) Read(_ context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &ReadError{Path: path, Cause: err}
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return "", &ParseError{Path: path, Format: ".html", Message: "failed to parse HTML", Cause: err}
	}

	doc.Find("script, style, noscript, nav, footer, header").Remove()

	body := doc.Find("body")
	if body.Length() == 0 {
		return doc.Text(), nil
	}
	return body.Text(), nil
}
