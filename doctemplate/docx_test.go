package doctemplate_test

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/jrsteele09/signature-studio/doctemplate"
	"github.com/jrsteele09/signature-studio/internal/errors"
	"github.com/stretchr/testify/require"
)

// buildDocx zips the given parts into a document.
func buildDocx(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(w, content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func readPart(t *testing.T, doc []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(doc), int64(len(doc)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			require.NoError(t, err)
			defer rc.Close()
			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			return string(data)
		}
	}
	t.Fatalf("part %s not found", name)
	return ""
}

const wordNS = `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`

func TestFallback(t *testing.T) {
	doc, err := doctemplate.Fallback()
	require.NoError(t, err)
	require.NotEmpty(t, doc)

	names, err := doctemplate.Placeholders(doc)
	require.NoError(t, err)
	require.Equal(t, doctemplate.StandardPlaceholders, names)

	text, err := doctemplate.Text(doc)
	require.NoError(t, err)
	require.Contains(t, text, "T. {phone}")
}

func TestFill(t *testing.T) {
	doc, err := doctemplate.Fallback()
	require.NoError(t, err)

	filled, err := doctemplate.Fill(doc, map[string]string{
		"fullName": "Jeanne Martin",
		"jobTitle": "R&D <lead>",
		"phone":    "06 12 34 56 78",
	})
	require.NoError(t, err)

	text, err := doctemplate.Text(filled)
	require.NoError(t, err)
	require.Contains(t, text, "Jeanne Martin")
	require.Contains(t, text, "R&D <lead>")
	require.Contains(t, text, "T. 06 12 34 56 78")
	// Markers without a value stay literal.
	require.Contains(t, text, "{email}")

	xml := readPart(t, filled, "word/document.xml")
	require.Contains(t, xml, "R&amp;D &lt;lead&gt;")

	names, err := doctemplate.Placeholders(filled)
	require.NoError(t, err)
	require.Equal(t, []string{"address", "postalCode", "city", "email"}, names)
}

func TestFill_SplitRunsAndHeaders(t *testing.T) {
	doc := buildDocx(t, map[string]string{
		"word/document.xml": wordNS +
			`<w:p><w:pPr><w:jc w:val="left"/></w:pPr><w:r><w:t>Hello {first</w:t></w:r><w:r><w:rPr><w:b/></w:rPr><w:t>Name}</w:t></w:r><w:r><w:t>!</w:t></w:r></w:p>` +
			`</w:body></w:document>`,
		"word/header1.xml": `<w:hdr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:p><w:r><w:t>{company}</w:t></w:r></w:p></w:hdr>`,
		"word/media/logo.xml": `<w:p><w:r><w:t>{firstName}</w:t></w:r></w:p>`,
	})

	filled, err := doctemplate.Fill(doc, map[string]string{"firstName": "Jeanne", "company": "Acme"})
	require.NoError(t, err)

	text, err := doctemplate.Text(filled)
	require.NoError(t, err)
	require.Equal(t, "Hello Jeanne!", text)
	require.Contains(t, readPart(t, filled, "word/header1.xml"), ">Acme</w:t>")
	// Parts outside the body, headers and footers are copied untouched.
	require.Contains(t, readPart(t, filled, "word/media/logo.xml"), "{firstName}")
}

func TestDocx_InvalidDocument(t *testing.T) {
	_, err := doctemplate.Fill([]byte("not a zip"), nil)
	require.ErrorIs(t, err, errors.ErrInvalidTemplate)
	_, err = doctemplate.Placeholders([]byte("not a zip"))
	require.ErrorIs(t, err, errors.ErrInvalidTemplate)
	_, err = doctemplate.Text(buildDocx(t, map[string]string{"other.xml": "<x/>"}))
	require.ErrorIs(t, err, errors.ErrInvalidTemplate)
}

func TestText_KeepsEmptyParagraphs(t *testing.T) {
	doc := buildDocx(t, map[string]string{
		"word/document.xml": wordNS +
			`<w:p><w:r><w:t>Line one</w:t></w:r></w:p>` +
			`<w:p w:rsidR="00A1"/>` +
			`<w:p w:rsidR="00A2" ><w:r><w:t>Line three</w:t></w:r></w:p>` +
			`<w:p><w:r><w:t>{first</w:t></w:r></w:p><w:p/><w:p><w:r><w:t>Name}</w:t></w:r></w:p>` +
			`</w:body></w:document>`,
	})

	text, err := doctemplate.Text(doc)
	require.NoError(t, err)
	require.Equal(t, "Line one\n\nLine three\n{first\n\nName}", text)

	// A marker never spans an empty paragraph.
	names, err := doctemplate.Placeholders(doc)
	require.NoError(t, err)
	require.Empty(t, names)

	filled, err := doctemplate.Fill(doc, map[string]string{"firstName": "Jeanne"})
	require.NoError(t, err)
	xml := readPart(t, filled, "word/document.xml")
	require.Contains(t, xml, `<w:p w:rsidR="00A1"/>`)
	require.NotContains(t, xml, "Jeanne")
}
