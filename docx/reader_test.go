package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OmarSalvatierra99/cleandoc/internal/testutil"
)

func openFixture(t *testing.T, d testutil.DOCX) *Document {
	t.Helper()

	doc, err := OpenBytes(testutil.BuildDOCX(t, d))
	if err != nil {
		t.Fatalf("OpenBytes() error = %v", err)
	}
	return doc
}

func paragraphTexts(doc *Document) []string {
	var texts []string
	for _, p := range doc.Paragraphs() {
		texts = append(texts, p.Text())
	}
	return texts
}

func TestOpen(t *testing.T) {
	data := testutil.BuildDOCX(t, testutil.DOCX{Body: testutil.P("Hello World")})
	path := filepath.Join(t.TempDir(), "test.docx")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if doc.Body() == nil {
		t.Error("body should not be nil")
	}
	if doc.Main().Kind != MainPart {
		t.Errorf("Main().Kind = %v, want %v", doc.Main().Kind, MainPart)
	}
}

func TestOpen_NotFound(t *testing.T) {
	_, err := Open("/nonexistent/file.docx")
	if err == nil {
		t.Error("Open() should return error for nonexistent file")
	}
}

func TestOpenBytes_InvalidZip(t *testing.T) {
	_, err := OpenBytes([]byte("not a zip file"))
	if err == nil {
		t.Error("OpenBytes() should return error for invalid ZIP")
	}
}

func TestOpenBytes_MissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("[Content_Types].xml")
	w.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
</Types>`))
	zw.Close()

	_, err := OpenBytes(buf.Bytes())
	if err == nil {
		t.Fatal("OpenBytes() should return error when document.xml is missing")
	}
	if !strings.Contains(err.Error(), "word/document.xml") {
		t.Errorf("error = %v, want mention of word/document.xml", err)
	}
}

func TestOpenBytes_MalformedDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"[Content_Types].xml": `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
		"word/document.xml":   `<w:document xmlns:w="x"><w:body><w:p></w:body>`,
	} {
		w, _ := zw.Create(name)
		w.Write([]byte(content))
	}
	zw.Close()

	if _, err := OpenBytes(buf.Bytes()); err == nil {
		t.Error("OpenBytes() should return error for malformed document.xml")
	}
}

func TestOpenReader(t *testing.T) {
	data := testutil.BuildDOCX(t, testutil.DOCX{Body: testutil.P("one") + testutil.P("two")})

	doc, err := OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	if got := paragraphTexts(doc); strings.Join(got, "|") != "one|two" {
		t.Errorf("paragraphs = %q, want [one two]", got)
	}
}

func TestDocument_Paragraphs(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "simple paragraphs",
			body: testutil.P("First") + testutil.P("Second"),
			want: []string{"First", "Second"},
		},
		{
			name: "multiple runs",
			body: testutil.P("Hello ", "World"),
			want: []string{"Hello World"},
		},
		{
			name: "table paragraphs are not body paragraphs",
			body: testutil.P("Before") + testutil.Table(testutil.P("Cell")) + testutil.P("After"),
			want: []string{"Before", "After"},
		},
		{
			name: "empty paragraph",
			body: `<w:p/>`,
			want: []string{""},
		},
		{
			name: "hyperlink runs",
			body: `<w:p><w:r><w:t>See </w:t></w:r><w:hyperlink r:id="rId9"><w:r><w:t>link</w:t></w:r></w:hyperlink></w:p>`,
			want: []string{"See link"},
		},
		{
			name: "tabs and breaks",
			body: `<w:p><w:r><w:t>a</w:t><w:tab/><w:t>b</w:t><w:br/><w:t>c</w:t><w:br w:type="page"/></w:r></w:p>`,
			want: []string{"a\tb\nc"},
		},
		{
			name: "text box paragraphs are not body paragraphs",
			body: testutil.PictTextBox(testutil.P("boxed")),
			want: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := openFixture(t, testutil.DOCX{Body: tt.body})
			got := paragraphTexts(doc)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d paragraphs %q, want %d %q", len(got), got, len(tt.want), tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("paragraph %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDocument_Sections(t *testing.T) {
	doc := openFixture(t, testutil.DOCX{
		Body:    testutil.P("body"),
		Headers: []string{testutil.P("default header"), testutil.P("first header")},
		Footers: []string{testutil.P("footer")},
	})

	sections := doc.Sections()
	if len(sections) != 1 {
		t.Fatalf("len(Sections()) = %d, want 1", len(sections))
	}
	s := sections[0]
	if len(s.Headers) != 2 {
		t.Fatalf("len(Headers) = %d, want 2", len(s.Headers))
	}
	if s.Header().Name != "word/header1.xml" {
		t.Errorf("Header().Name = %q, want word/header1.xml", s.Header().Name)
	}
	if s.Footer().Name != "word/footer1.xml" {
		t.Errorf("Footer().Name = %q, want word/footer1.xml", s.Footer().Name)
	}
	for _, h := range s.Headers {
		if !h.Loaded() {
			t.Errorf("header %s not loaded: %v", h.Name, h.Err)
		}
		if h.Kind != HeaderPart || !h.Root.Is(KindHeader) {
			t.Errorf("header %s has kind %v root %s", h.Name, h.Kind, h.Root.Tag())
		}
	}
}

func TestDocument_SectionsWithOtherPrefix(t *testing.T) {
	data := testutil.BuildDOCX(t, testutil.DOCX{
		Body:    testutil.P("body"),
		Headers: []string{testutil.P("header")},
		Footers: []string{testutil.P("footer")},
	})
	data = testutil.RebindRelationshipPrefix(t, data, "rel")
	if xml := testutil.ReadPart(t, data, "word/document.xml"); strings.Contains(xml, " r:id=") {
		t.Fatalf("fixture still uses the r prefix:\n%s", xml)
	}

	doc, err := OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes() error = %v", err)
	}
	headers, footers := doc.Headers(), doc.Footers()
	if len(headers) != 1 || headers[0].Name != "word/header1.xml" {
		t.Errorf("Headers() = %v, want word/header1.xml", headers)
	}
	if len(footers) != 1 || footers[0].Name != "word/footer1.xml" {
		t.Errorf("Footers() = %v, want word/footer1.xml", footers)
	}
}

func TestRun_TextBreakTypeByNamespace(t *testing.T) {
	tests := []struct {
		name string
		br   string
		want string
	}{
		{"w prefix page break", `<w:br w:type="page"/>`, "ab"},
		{"other prefix page break", `<w:br xmlns:x="` + nsW + `" x:type="page"/>`, "ab"},
		{"foreign type attribute", `<w:br xmlns:x="urn:example" x:type="page"/>`, "a\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `<w:p><w:r><w:t>a</w:t>` + tt.br + `<w:t>b</w:t></w:r></w:p>`
			doc := openFixture(t, testutil.DOCX{Body: body})
			if got := doc.Paragraphs()[0].Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDocument_SectionInheritance(t *testing.T) {
	// The first section carries its own references; the second has none and
	// inherits them.
	body := `<w:p><w:pPr><w:sectPr><w:headerReference w:type="default" r:id="rIdH1"/></w:sectPr></w:pPr>` +
		`<w:r><w:t>first section</w:t></w:r></w:p>` + testutil.P("second section")
	doc := openFixture(t, testutil.DOCX{Body: body, Headers: []string{testutil.P("h")}})

	// Remove the trailing section's own references to force inheritance.
	last := doc.Body().Children()
	sectPr := last[len(last)-1]
	for _, ref := range sectPr.Children() {
		ref.Detach()
	}
	doc.sections = nil
	doc.parseSections()

	sections := doc.Sections()
	if len(sections) != 2 {
		t.Fatalf("len(Sections()) = %d, want 2", len(sections))
	}
	if sections[1].Header() == nil || sections[1].Header().Name != "word/header1.xml" {
		t.Errorf("second section should inherit word/header1.xml, got %+v", sections[1].Header())
	}
	if got := len(doc.Headers()); got != 1 {
		t.Errorf("len(Headers()) = %d, want 1 distinct region", got)
	}
}

func TestDocument_MalformedHeader(t *testing.T) {
	doc := openFixture(t, testutil.DOCX{
		Body:       testutil.P("body"),
		Headers:    []string{testutil.P("good")},
		RawHeaders: []string{`<w:hdr xmlns:w="x"><w:p>`},
	})

	headers := doc.Headers()
	if len(headers) != 2 {
		t.Fatalf("len(Headers()) = %d, want 2", len(headers))
	}
	if !headers[0].Loaded() {
		t.Errorf("good header failed to load: %v", headers[0].Err)
	}
	if headers[1].Loaded() || headers[1].Err == nil {
		t.Error("malformed header should carry a load error")
	}

	// The malformed part is copied through unchanged.
	out, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	if got := testutil.ReadPart(t, out, "word/header2.xml"); got != `<w:hdr xmlns:w="x"><w:p>` {
		t.Errorf("malformed header rewritten: %q", got)
	}
}

func TestNode_Detach(t *testing.T) {
	doc := openFixture(t, testutil.DOCX{Body: testutil.P("keep") + testutil.P("drop")})

	paras := doc.Paragraphs()
	if err := paras[1].Detach(); err != nil {
		t.Fatalf("Detach() error = %v", err)
	}
	if paras[1].Attached() {
		t.Error("detached paragraph still reports a parent")
	}
	if err := paras[1].Detach(); !errors.Is(err, ErrDetached) {
		t.Errorf("second Detach() error = %v, want ErrDetached", err)
	}
	if got := paragraphTexts(doc); len(got) != 1 || got[0] != "keep" {
		t.Errorf("paragraphs after detach = %q, want [keep]", got)
	}
}

func TestNode_Queries(t *testing.T) {
	body := testutil.Table(testutil.Drawing("in table")) +
		testutil.Drawing("loose") +
		testutil.PictTextBox(testutil.P("boxed one"), testutil.P("boxed two"))
	doc := openFixture(t, testutil.DOCX{Body: body})
	root := doc.Root()

	drawings := root.FindDescendants(KindDrawing)
	if len(drawings) != 2 {
		t.Fatalf("len(drawings) = %d, want 2", len(drawings))
	}
	if !drawings[0].HasAncestor(KindTable) {
		t.Error("first drawing should have a table ancestor")
	}
	if drawings[1].HasAncestor(KindTable) {
		t.Error("second drawing should not have a table ancestor")
	}

	picts := root.FindDescendants(KindPicture)
	if len(picts) != 1 || !picts[0].HasDescendant(KindTextBox) {
		t.Fatal("expected one picture wrapping a text box")
	}

	nested := root.FindNested(KindTextBox, KindParagraph)
	if len(nested) != 2 {
		t.Fatalf("len(FindNested) = %d, want 2", len(nested))
	}
	p, ok := AsParagraph(nested[1])
	if !ok || p.Text() != "boxed two" {
		t.Errorf("second text box paragraph = %q", p.Text())
	}

	if !nested[0].Parent().Is(KindTextBox) {
		t.Errorf("parent of text box paragraph = %s", nested[0].Parent().Tag())
	}
	if nested[0].Same(nested[1]) || !nested[0].Same(root.FindNested(KindTextBox, KindParagraph)[0]) {
		t.Error("Same() should compare element identity")
	}
}

func TestRun_SetText(t *testing.T) {
	body := `<w:p><w:r><w:rPr><w:i/></w:rPr><w:t>old</w:t><w:tab/><w:t>text</w:t><w:drawing/></w:r></w:p>`
	doc := openFixture(t, testutil.DOCX{Body: body})

	run := doc.Paragraphs()[0].Runs()[0]
	run.SetText(" new\tvalue\nline")

	if got := run.Text(); got != " new\tvalue\nline" {
		t.Errorf("Text() = %q", got)
	}

	var tags []string
	for _, c := range run.Children() {
		tags = append(tags, c.Tag())
	}
	want := "w:rPr w:t w:tab w:t w:br w:t w:drawing"
	if got := strings.Join(tags, " "); got != want {
		t.Errorf("children = %q, want %q", got, want)
	}
	if run.Children()[1].Attr("xml:space") != "preserve" {
		t.Error("leading space should be preserved")
	}

	run.SetText("")
	if got := run.Text(); got != "" {
		t.Errorf("Text() after clearing = %q", got)
	}
	if n := len(run.Children()); n != 2 {
		t.Errorf("cleared run should keep rPr and drawing, has %d children", n)
	}
}

func TestDocument_Save(t *testing.T) {
	data := testutil.BuildDOCX(t, testutil.DOCX{
		Body:    testutil.P("alpha") + testutil.P("beta"),
		Headers: []string{testutil.P("header")},
	})
	doc, err := OpenBytes(data)
	if err != nil {
		t.Fatal(err)
	}

	doc.Paragraphs()[0].Runs()[0].SetText("gamma")
	doc.Paragraphs()[1].Detach()

	out, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	reopened, err := OpenBytes(out)
	if err != nil {
		t.Fatalf("reopening saved package: %v", err)
	}
	if got := paragraphTexts(reopened); len(got) != 1 || got[0] != "gamma" {
		t.Errorf("paragraphs = %q, want [gamma]", got)
	}
	if !strings.Contains(testutil.ReadPart(t, out, "word/document.xml"), "<w:b/>") {
		t.Error("run formatting was lost")
	}

	for _, name := range []string{"[Content_Types].xml", "_rels/.rels", "word/_rels/document.xml.rels"} {
		if testutil.ReadPart(t, out, name) != testutil.ReadPart(t, data, name) {
			t.Errorf("untouched part %s changed", name)
		}
	}

	// The input slice is never written to.
	if !bytes.Equal(data, testutil.BuildDOCX(t, testutil.DOCX{
		Body:    testutil.P("alpha") + testutil.P("beta"),
		Headers: []string{testutil.P("header")},
	})) {
		t.Error("input bytes were modified")
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindParagraph, "p"},
		{KindDrawing, "drawing"},
		{KindPicture, "pict"},
		{KindTextBox, "txbxContent"},
		{KindOther, "other"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestPartKind_String(t *testing.T) {
	tests := []struct {
		kind PartKind
		want string
	}{
		{MainPart, "document"},
		{HeaderPart, "header"},
		{FooterPart, "footer"},
		{PartKind(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("PartKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
