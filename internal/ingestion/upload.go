package ingestion

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/fumiama/go-docx"
	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/charmap"
)

// FromUpload extracts text from an uploaded .txt, .docx or .pdf document
func FromUpload(filename string, data []byte) (string, *Metadata, error) {
	if filename == "" && len(data) == 0 {
		return "", nil, &ExtractionError{Source: SourceUpload, Message: "no file supplied", Cause: ErrSourceMissing}
	}

	var (
		text string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".txt":
		text, err = decodePlainText(data)
	case ".docx":
		text, err = docxText(data)
	case ".pdf":
		text, err = pdfText(data)
	default:
		return "", nil, &ExtractionError{
			Source:  SourceUpload,
			Message: fmt.Sprintf("cannot read %q files", ext),
			Cause:   ErrUnsupportedFormat,
		}
	}
	if err != nil {
		return "", nil, &ExtractionError{Source: SourceUpload, Message: "could not read " + filename, Cause: err}
	}

	cleaned := CleanText(text)
	if cleaned == "" {
		return "", nil, &ExtractionError{Source: SourceUpload, Message: filename + " contains no text"}
	}

	metadata := NewMetadata(SourceUpload, cleaned)
	metadata.Filename = filename
	return cleaned, metadata, nil
}

// decodePlainText reads UTF-8, falling back to Latin-1 for anything else
func decodePlainText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode text: %w", err)
	}
	return string(decoded), nil
}

// docxText returns the body paragraphs and table cells joined by newlines
func docxText(data []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("not a DOCX archive: %w", err)
	}

	var lines []string
	for _, item := range doc.Document.Body.Items {
		switch v := item.(type) {
		case *docx.Paragraph:
			lines = append(lines, v.String())
		case *docx.Table:
			lines = append(lines, tableLines(v)...)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// tableLines flattens a table to one line per cell paragraph, row by row
func tableLines(t *docx.Table) []string {
	var lines []string
	for _, row := range t.TableRows {
		for _, cell := range row.TableCells {
			for _, p := range cell.Paragraphs {
				lines = append(lines, p.String())
			}
		}
	}
	return lines
}

// pdfText returns the plain text of every page joined by newlines
func pdfText(data []byte) (text string, err error) {
	// The PDF reader panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("not a PDF document: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i, err)
		}
		pages = append(pages, content)
	}
	return strings.Join(pages, "\n"), nil
}
