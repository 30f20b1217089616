// Package pdfio is the layout-extraction collaborator: it turns a PDF byte
// stream into per-page sequences of positioned text tokens, the exact shape
// the row classifier consumes.
package pdfio

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"

	"github.com/mlstools/rosterparse/pkg/layout"
)

// ExtractFile reads a PDF from disk and returns its pages as token sequences
// in document order.
func ExtractFile(path string) ([][]layout.Token, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	return extract(reader)
}

// ExtractBytes reads a PDF held in memory, as the HTTP surface receives it.
func ExtractBytes(data []byte) ([][]layout.Token, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	return extract(reader)
}

// Extract reads a PDF from any random-access source.
func Extract(r io.ReaderAt, size int64) ([][]layout.Token, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	return extract(reader)
}

func extract(reader *pdf.Reader) ([][]layout.Token, error) {
	pages := make([][]layout.Token, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, nil)
			continue
		}
		content := page.Content()
		tokens := make([]layout.Token, 0, len(content.Text))
		for _, t := range content.Text {
			tokens = append(tokens, layout.Token{Text: t.S, X: t.X, Y: t.Y, W: t.W})
		}
		pages = append(pages, tokens)
	}
	return pages, nil
}
