package doctemplate

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/jrsteele09/signature-studio/internal/errors"
)

const documentPart = "word/document.xml"

var (
	// An empty paragraph may be self-closing: <w:p w:rsidR="00A1"/>
	paragraphRe   = regexp.MustCompile(`(?s)<w:p(?:\s[^>]*)?/>|<w:p(?:\s[^>]*[^/>])?\s*>.*?</w:p>`)
	textNodeRe    = regexp.MustCompile(`<w:t(\s[^>]*)?>([^<]*)</w:t>`)
	placeholderRe = regexp.MustCompile(`\{([A-Za-z][A-Za-z0-9_]*)\}`)
)

// StandardPlaceholders are the markers of the fallback document, in order.
var StandardPlaceholders = []string{"fullName", "jobTitle", "phone", "address", "postalCode", "city", "email"}

// Fallback builds a minimal Word document carrying the standard placeholders.
func Fallback() ([]byte, error) {
	lines := []string{"{fullName}", "{jobTitle}", "T. {phone}", "{address}, {postalCode} {city}", "{email}"}

	var body strings.Builder
	for _, line := range lines {
		body.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
		body.WriteString(line)
		body.WriteString(`</w:t></w:r></w:p>`)
	}

	parts := []struct{ name, content string }{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{documentPart, fmt.Sprintf(documentXML, body.String())},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("failed to build fallback template: %w", err)
		}
		if _, err := io.WriteString(w, p.content); err != nil {
			return nil, fmt.Errorf("failed to build fallback template: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build fallback template: %w", err)
	}
	return buf.Bytes(), nil
}

// Fill replaces {name} markers in the body, headers and footers with the
// XML-escaped values from data. Markers without a value are left as they are.
// A marker split over several runs is replaced into its first run.
func Fill(doc []byte, data map[string]string) ([]byte, error) {
	zr, err := openDocx(doc)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range zr.File {
		if !isTextPart(f.Name) {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("failed to copy %s: %w", f.Name, err)
			}
			continue
		}

		content, err := readPart(f)
		if err != nil {
			return nil, err
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: zip.Deflate, Modified: f.Modified})
		if err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f.Name, err)
		}
		if _, err := io.WriteString(w, fillXML(content, data)); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish document: %w", err)
	}
	return buf.Bytes(), nil
}

// Placeholders lists the distinct marker names of doc in order of appearance.
func Placeholders(doc []byte) ([]string, error) {
	zr, err := openDocx(doc)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	names := []string{}
	for _, f := range zr.File {
		if !isTextPart(f.Name) {
			continue
		}
		content, err := readPart(f)
		if err != nil {
			return nil, err
		}
		for _, p := range paragraphRe.FindAllString(content, -1) {
			text, _ := paragraphText(p)
			for _, m := range placeholderRe.FindAllStringSubmatch(text, -1) {
				if !seen[m[1]] {
					seen[m[1]] = true
					names = append(names, m[1])
				}
			}
		}
	}
	return names, nil
}

// Text returns the plain text of the document body, one line per paragraph.
func Text(doc []byte) (string, error) {
	zr, err := openDocx(doc)
	if err != nil {
		return "", err
	}
	for _, f := range zr.File {
		if f.Name != documentPart {
			continue
		}
		content, err := readPart(f)
		if err != nil {
			return "", err
		}
		var lines []string
		for _, p := range paragraphRe.FindAllString(content, -1) {
			text, _ := paragraphText(p)
			lines = append(lines, html.UnescapeString(text))
		}
		return strings.Join(lines, "\n"), nil
	}
	return "", errors.Wrapf(errors.ErrInvalidTemplate, "no %s", documentPart)
}

type textNode struct {
	start, end int // offsets of the node text within the paragraph
	offset     int // offset of the node text within the joined paragraph text
	attrs      string
	text       string
}

// paragraphText joins the escaped text of every w:t node of a paragraph.
func paragraphText(p string) (string, []textNode) {
	var (
		joined strings.Builder
		nodes  []textNode
	)
	for _, m := range textNodeRe.FindAllStringSubmatchIndex(p, -1) {
		node := textNode{start: m[0], end: m[1], offset: joined.Len(), text: p[m[4]:m[5]]}
		if m[2] >= 0 {
			node.attrs = p[m[2]:m[3]]
		}
		nodes = append(nodes, node)
		joined.WriteString(node.text)
	}
	return joined.String(), nodes
}

func fillXML(content string, data map[string]string) string {
	return paragraphRe.ReplaceAllStringFunc(content, func(p string) string {
		return fillParagraph(p, data)
	})
}

type replacement struct {
	start, end int
	value      string
}

func fillParagraph(p string, data map[string]string) string {
	text, nodes := paragraphText(p)
	var reps []replacement
	for _, m := range placeholderRe.FindAllStringSubmatchIndex(text, -1) {
		value, ok := data[text[m[2]:m[3]]]
		if !ok {
			continue
		}
		reps = append(reps, replacement{start: m[0], end: m[1], value: escapeXML(value)})
	}
	if len(reps) == 0 {
		return p
	}

	var out strings.Builder
	last := 0
	for _, n := range nodes {
		var (
			nodeText strings.Builder
			replaced bool
		)
		for i := 0; i < len(n.text); i++ {
			pos := n.offset + i
			r, inside := covering(reps, pos)
			if !inside {
				nodeText.WriteByte(n.text[i])
				continue
			}
			if pos == r.start {
				nodeText.WriteString(r.value)
				replaced = true
			}
		}
		if nodeText.String() == n.text && !replaced {
			continue
		}
		attrs := n.attrs
		if replaced && !strings.Contains(attrs, "xml:space") {
			attrs += ` xml:space="preserve"`
		}
		out.WriteString(p[last:n.start])
		out.WriteString("<w:t" + attrs + ">" + nodeText.String() + "</w:t>")
		last = n.end
	}
	out.WriteString(p[last:])
	return out.String()
}

func covering(reps []replacement, pos int) (replacement, bool) {
	for _, r := range reps {
		if pos >= r.start && pos < r.end {
			return r, true
		}
	}
	return replacement{}, false
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func openDocx(doc []byte) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidTemplate, "not a Word document: %v", err)
	}
	return zr, nil
}

func readPart(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", errors.Wrapf(errors.ErrInvalidTemplate, "open %s: %v", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInvalidTemplate, "read %s: %v", f.Name, err)
	}
	return string(data), nil
}

func isTextPart(name string) bool {
	if name == documentPart {
		return true
	}
	if !strings.HasPrefix(name, "word/") || !strings.HasSuffix(name, ".xml") {
		return false
	}
	base := strings.TrimPrefix(name, "word/")
	return !strings.Contains(base, "/") && (strings.HasPrefix(base, "header") || strings.HasPrefix(base, "footer"))
}
