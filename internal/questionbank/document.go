package questionbank

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrDocumentNotFound is returned when the question book source path
// does not exist.
var ErrDocumentNotFound = errors.New("question book document not found")

// Document is the parser's input: the question book reduced to an
// ordered list of paragraph text runs. Styling, tables and any other
// structural metadata are not carried.
type Document struct {
	// Source is the originating path, used in error messages.
	Source string

	// Paragraphs are the text runs in document order.
	Paragraphs []string
}

// LoadDocument reads a question book from disk. Plain-text files are
// split into one paragraph per line; .html/.htm files have their
// paragraph and heading runs extracted in document order.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("read question book: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return parseHTMLDocument(path, string(data))
	default:
		return &Document{
			Source:     path,
			Paragraphs: strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n"),
		}, nil
	}
}

// parseHTMLDocument extracts paragraph-level runs from an HTML export
// of the question book. Headings, paragraphs and list items each become
// one run; everything else is ignored.
func parseHTMLDocument(source, html string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse HTML question book: %w", err)
	}

	var paragraphs []string
	doc.Find("h1, h2, h3, h4, p, li").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		// List items render without their bullet; restore the marker the
		// classifier expects.
		if goquery.NodeName(sel) == "li" && !strings.HasPrefix(text, "-") {
			text = "- " + text
		}
		paragraphs = append(paragraphs, text)
	})

	return &Document{Source: source, Paragraphs: paragraphs}, nil
}

// ParseFile loads and parses a question book in one step.
func ParseFile(path string) ([]Record, error) {
	doc, err := LoadDocument(path)
	if err != nil {
		return nil, err
	}
	return Parse(doc)
}
