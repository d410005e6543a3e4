// Package testutil builds DOCX fixtures for tests.
package testutil

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// TB is the part of testing.TB the builders need. Both *testing.T and
// *rapid.T satisfy it.
type TB interface {
	Helper()
	Fatalf(format string, args ...interface{})
}

const namespaces = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
	`xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing" ` +
	`xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
	`xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture" ` +
	`xmlns:v="urn:schemas-microsoft-com:vml" ` +
	`xmlns:o="urn:schemas-microsoft-com:office:office"`

var refTypes = []string{"default", "first", "even"}

// DOCX describes a fixture package.
type DOCX struct {
	// Body is the content of w:body, without the final w:sectPr.
	Body string
	// Headers and Footers are the contents of w:hdr and w:ftr parts,
	// referenced from the final section as default, first and even.
	Headers []string
	Footers []string
	// RawHeaders are complete header parts written verbatim, e.g. to
	// exercise malformed XML. They are referenced after Headers.
	RawHeaders []string
}

// BuildDOCX assembles a minimal but complete DOCX package.
func BuildDOCX(tb TB, d DOCX) []byte {
	tb.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	write := func(name, content string) {
		w, err := zw.Create(name)
		if err != nil {
			tb.Fatalf("creating %s: %v", name, err)
		}
		if _, err := io.WriteString(w, content); err != nil {
			tb.Fatalf("writing %s: %v", name, err)
		}
	}

	var overrides, rels, refs strings.Builder
	headers := make([]string, 0, len(d.Headers)+len(d.RawHeaders))
	for _, h := range d.Headers {
		headers = append(headers, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+"\n"+
			`<w:hdr `+namespaces+`>`+h+`</w:hdr>`)
	}
	headers = append(headers, d.RawHeaders...)

	for i, content := range headers {
		name := fmt.Sprintf("header%d.xml", i+1)
		id := fmt.Sprintf("rIdH%d", i+1)
		write("word/"+name, content)
		fmt.Fprintf(&overrides, `<Override PartName="/word/%s" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"/>`, name)
		fmt.Fprintf(&rels, `<Relationship Id="%s" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/header" Target="%s"/>`, id, name)
		fmt.Fprintf(&refs, `<w:headerReference w:type="%s" r:id="%s"/>`, refTypes[i%len(refTypes)], id)
	}
	for i, f := range d.Footers {
		name := fmt.Sprintf("footer%d.xml", i+1)
		id := fmt.Sprintf("rIdF%d", i+1)
		write("word/"+name, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+"\n"+
			`<w:ftr `+namespaces+`>`+f+`</w:ftr>`)
		fmt.Fprintf(&overrides, `<Override PartName="/word/%s" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"/>`, name)
		fmt.Fprintf(&rels, `<Relationship Id="%s" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer" Target="%s"/>`, id, name)
		fmt.Fprintf(&refs, `<w:footerReference w:type="%s" r:id="%s"/>`, refTypes[i%len(refTypes)], id)
	}

	write("[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>`+
		overrides.String()+`
</Types>`)

	write("_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`)

	write("word/_rels/document.xml.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`+
		rels.String()+`</Relationships>`)

	write("word/document.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document `+namespaces+`><w:body>`+d.Body+`<w:sectPr>`+refs.String()+`</w:sectPr></w:body></w:document>`)

	if err := zw.Close(); err != nil {
		tb.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

func escape(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

// Run returns a w:r holding text.
func Run(text string) string {
	return `<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">` + escape(text) + `</w:t></w:r>`
}

// P returns a w:p with one run per text.
func P(texts ...string) string {
	var b strings.Builder
	b.WriteString("<w:p>")
	for _, t := range texts {
		b.WriteString(Run(t))
	}
	b.WriteString("</w:p>")
	return b.String()
}

// PTexts returns a w:p with a single run holding one w:t per text.
func PTexts(texts ...string) string {
	var b strings.Builder
	b.WriteString("<w:p><w:r>")
	for _, t := range texts {
		b.WriteString(`<w:t xml:space="preserve">` + escape(t) + `</w:t>`)
	}
	b.WriteString("</w:r></w:p>")
	return b.String()
}

// Table wraps content in a single-cell table.
func Table(content string) string {
	return `<w:tbl><w:tr><w:tc>` + content + `</w:tc></w:tr></w:tbl>`
}

// Drawing returns a paragraph holding an inline DrawingML image.
func Drawing(name string) string {
	return `<w:p><w:r><w:drawing><wp:inline><wp:docPr id="1" name="` + escape(name) + `"/>` +
		`<a:graphic><a:graphicData><pic:pic><pic:blipFill><a:blip r:embed="rIdImg"/></pic:blipFill></pic:pic></a:graphicData></a:graphic>` +
		`</wp:inline></w:drawing></w:r></w:p>`
}

// Pict returns a paragraph holding a legacy VML picture.
func Pict(name string) string {
	return `<w:p><w:r><w:pict><v:shape id="` + escape(name) + `"><v:imagedata r:id="rIdImg" o:title=""/></v:shape></w:pict></w:r></w:p>`
}

// PictTextBox returns a paragraph holding a legacy VML shape whose text box
// contains the given paragraphs.
func PictTextBox(paragraphs ...string) string {
	return `<w:p><w:r><w:pict><v:shape><v:textbox><w:txbxContent>` +
		strings.Join(paragraphs, "") +
		`</w:txbxContent></v:textbox></v:shape></w:pict></w:r></w:p>`
}

// ReadPart returns the content of a part of a DOCX package.
func ReadPart(tb TB, data []byte, name string) string {
	tb.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		tb.Fatalf("opening zip: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			tb.Fatalf("opening %s: %v", name, err)
		}
		defer rc.Close()
		content, err := io.ReadAll(rc)
		if err != nil {
			tb.Fatalf("reading %s: %v", name, err)
		}
		return string(content)
	}
	tb.Fatalf("part %s not found", name)
	return ""
}

// ReplacePart returns a copy of a DOCX package with the named part's
// content passed through fn. Every other entry is copied unchanged.
func ReplacePart(tb TB, data []byte, name string, fn func(string) string) []byte {
	tb.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		tb.Fatalf("opening zip: %v", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	found := false
	for _, f := range zr.File {
		if f.Name != name {
			if err := zw.Copy(f); err != nil {
				tb.Fatalf("copying %s: %v", f.Name, err)
			}
			continue
		}
		found = true
		w, err := zw.Create(name)
		if err != nil {
			tb.Fatalf("creating %s: %v", name, err)
		}
		if _, err := io.WriteString(w, fn(ReadPart(tb, data, name))); err != nil {
			tb.Fatalf("writing %s: %v", name, err)
		}
	}
	if !found {
		tb.Fatalf("part %s not found", name)
	}
	if err := zw.Close(); err != nil {
		tb.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

// RebindRelationshipPrefix rewrites word/document.xml so the relationships
// namespace is bound to prefix instead of "r".
func RebindRelationshipPrefix(tb TB, data []byte, prefix string) []byte {
	tb.Helper()

	return ReplacePart(tb, data, "word/document.xml", func(s string) string {
		return strings.NewReplacer(
			`xmlns:r="`, `xmlns:`+prefix+`="`,
			` r:id="`, ` `+prefix+`:id="`,
			` r:embed="`, ` `+prefix+`:embed="`,
		).Replace(s)
	})
}
