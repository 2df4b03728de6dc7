package ingestion

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestFromUpload_Text(t *testing.T) {
	text, meta, err := FromUpload("advert.TXT", []byte("\xef\xbb\xbfPolicy Advisor\r\nGrade: SEO"))
	require.NoError(t, err)
	assert.Equal(t, "Policy Advisor\nGrade: SEO", text)
	assert.Equal(t, SourceUpload, meta.Source)
	assert.Equal(t, "advert.TXT", meta.Filename)
}

func TestFromUpload_TextLatin1Fallback(t *testing.T) {
	text, _, err := FromUpload("advert.txt", []byte("Salary \xa338,000"))
	require.NoError(t, err)
	assert.Equal(t, "Salary £38,000", text)
}

func TestFromUpload_Docx(t *testing.T) {
	data := buildDocx(t,
		`<w:p><w:r><w:t>Policy </w:t></w:r><w:r><w:t>Advisor</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>Grade:</w:t><w:tab/><w:t>SEO</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t xml:space="preserve">- Draft briefings</w:t></w:r></w:p>`)

	text, _, err := FromUpload("advert.docx", data)
	require.NoError(t, err)
	assert.Equal(t, "Policy Advisor\nGrade: SEO\n- Draft briefings", text)
}

func TestFromUpload_DocxMissingBody(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	_, err := w.Create("word/styles.xml")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, _, err = FromUpload("advert.docx", buf.Bytes())
	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, SourceUpload, extractionErr.Source)
}

func TestFromUpload_CorruptFiles(t *testing.T) {
	for _, name := range []string{"advert.docx", "advert.pdf"} {
		t.Run(name, func(t *testing.T) {
			_, _, err := FromUpload(name, []byte("definitely not a document"))
			var extractionErr *ExtractionError
			require.ErrorAs(t, err, &extractionErr)
			assert.Equal(t, SourceUpload, extractionErr.Source)
		})
	}
}

func TestFromUpload_UnsupportedFormat(t *testing.T) {
	_, _, err := FromUpload("advert.odt", []byte("text"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFromUpload_EmptyDocument(t *testing.T) {
	_, _, err := FromUpload("advert.txt", []byte("  \n "))
	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Contains(t, extractionErr.Message, "no text")
}

func TestFromUpload_NoFile(t *testing.T) {
	_, _, err := FromUpload("", nil)
	assert.ErrorIs(t, err, ErrSourceMissing)
}
