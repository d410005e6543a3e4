// Package docx provides mutable access to DOCX (Office Open XML) documents.
//
// A Document keeps the original ZIP package and parses word/document.xml and
// every header and footer part into an XML tree that can be walked and edited
// in place through Node handles. Save writes a fresh package: edited parts
// are re-serialised and every other part is copied through untouched.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"github.com/beevik/etree"
)

// Document is a loaded DOCX package.
type Document struct {
	zipReader *zip.Reader
	rels      *relationshipsXML
	main      *Part
	body      *Node
	trees     map[string]*etree.Document
	parts     map[string]*Part
	sections  []*Section
}

// Open opens a DOCX file for editing.
func Open(filename string) (*Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return OpenBytes(data)
}

// OpenReader reads a whole DOCX package from r.
func OpenReader(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading package: %w", err)
	}
	return OpenBytes(data)
}

// OpenBytes parses a DOCX package held in memory. The slice is not modified.
func OpenBytes(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}

	d := &Document{
		zipReader: zr,
		trees:     make(map[string]*etree.Document),
		parts:     make(map[string]*Part),
	}

	// Validate required files exist
	if err := d.validate(); err != nil {
		return nil, err
	}

	// Parse relationships first (needed for header and footer lookup)
	if err := d.parseRelationships(); err != nil {
		return nil, fmt.Errorf("parsing relationships: %w", err)
	}

	// Parse document.xml
	if err := d.parseDocument(); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	d.parseSections()

	return d, nil
}

// validate checks that required DOCX files exist.
func (d *Document) validate() error {
	required := []string{
		contentTypesPart,
		mainDocumentPart,
	}

	fileMap := make(map[string]bool)
	for _, f := range d.zipReader.File {
		fileMap[f.Name] = true
	}

	for _, name := range required {
		if !fileMap[name] {
			return fmt.Errorf("missing required file: %s", name)
		}
	}

	return nil
}

// getFile returns a zip.File by name.
func (d *Document) getFile(name string) *zip.File {
	for _, f := range d.zipReader.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// getFileContent reads the content of a file from the ZIP archive.
func (d *Document) getFileContent(name string) ([]byte, error) {
	f := d.getFile(name)
	if f == nil {
		return nil, fmt.Errorf("file not found: %s", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// parseRelationships parses the document relationships file.
func (d *Document) parseRelationships() error {
	data, err := d.getFileContent(documentRelsPart)
	if err != nil {
		// Relationships file is optional
		return nil
	}

	d.rels = &relationshipsXML{}
	return xml.Unmarshal(data, d.rels)
}

// parseTree reads and parses an XML part.
func (d *Document) parseTree(name string) (*etree.Document, error) {
	data, err := d.getFileContent(name)
	if err != nil {
		return nil, err
	}

	tree := etree.NewDocument()
	tree.ReadSettings.PreserveCData = true
	if err := tree.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("unmarshaling %s: %w", name, err)
	}
	if tree.Root() == nil {
		return nil, fmt.Errorf("unmarshaling %s: no root element", name)
	}
	return tree, nil
}

// parseDocument parses the main document content.
func (d *Document) parseDocument() error {
	tree, err := d.parseTree(mainDocumentPart)
	if err != nil {
		return err
	}

	root := newNode(tree.Root())
	for _, c := range root.Children() {
		if c.Is(KindBody) {
			d.body = c
			break
		}
	}
	if d.body == nil {
		return fmt.Errorf("document.xml has no body")
	}

	d.trees[mainDocumentPart] = tree
	d.main = &Part{Name: mainDocumentPart, Kind: MainPart, Root: root}
	return nil
}

// loadPart parses a header or footer part once. Parse failures are kept on
// the Part rather than failing the whole document.
func (d *Document) loadPart(name string, kind PartKind) *Part {
	if p, ok := d.parts[name]; ok {
		return p
	}

	p := &Part{Name: name, Kind: kind}
	tree, err := d.parseTree(name)
	if err != nil {
		p.Err = err
	} else {
		d.trees[name] = tree
		p.Root = newNode(tree.Root())
	}
	d.parts[name] = p
	return p
}

// parseSections collects the section properties in body order and resolves
// their header and footer references. A section without references of a
// kind inherits the previous section's regions, as Word does.
func (d *Document) parseSections() {
	var sectPrs []*etree.Element
	for _, c := range d.body.el.ChildElements() {
		switch c.Tag {
		case "p":
			if pPr := c.SelectElement("pPr"); pPr != nil {
				if s := pPr.SelectElement("sectPr"); s != nil {
					sectPrs = append(sectPrs, s)
				}
			}
		case "sectPr":
			sectPrs = append(sectPrs, c)
		}
	}

	var prevHeaders, prevFooters []*Part
	for i, s := range sectPrs {
		sec := &Section{Index: i}
		for _, ref := range s.ChildElements() {
			var kind PartKind
			switch ref.Tag {
			case "headerReference":
				kind = HeaderPart
			case "footerReference":
				kind = FooterPart
			default:
				continue
			}

			name, ok := d.rels.target(attrNS(ref, nsR, "id"))
			if !ok {
				continue
			}
			part := d.loadPart(name, kind)
			if kind == HeaderPart {
				sec.Headers = append(sec.Headers, part)
			} else {
				sec.Footers = append(sec.Footers, part)
			}
		}

		if len(sec.Headers) == 0 {
			sec.Headers = prevHeaders
		}
		if len(sec.Footers) == 0 {
			sec.Footers = prevFooters
		}
		prevHeaders, prevFooters = sec.Headers, sec.Footers
		d.sections = append(d.sections, sec)
	}
}

// Root returns the w:document element.
func (d *Document) Root() *Node {
	return d.main.Root
}

// Body returns the w:body element.
func (d *Document) Body() *Node {
	return d.body
}

// Main returns the main document part.
func (d *Document) Main() *Part {
	return d.main
}

// Paragraphs returns the body's top-level paragraphs in document order.
// Paragraphs inside tables or text boxes are not included. The slice is a
// snapshot: detaching paragraphs does not alter it.
func (d *Document) Paragraphs() []*Paragraph {
	var paras []*Paragraph
	for _, c := range d.body.Children() {
		if p, ok := AsParagraph(c); ok {
			paras = append(paras, p)
		}
	}
	return paras
}

// Sections returns the document's sections in body order.
func (d *Document) Sections() []*Section {
	return d.sections
}

// Headers returns every distinct header region referenced by any section,
// in section order.
func (d *Document) Headers() []*Part {
	return d.regions(func(s *Section) []*Part { return s.Headers })
}

// Footers returns every distinct footer region referenced by any section,
// in section order.
func (d *Document) Footers() []*Part {
	return d.regions(func(s *Section) []*Part { return s.Footers })
}

func (d *Document) regions(of func(*Section) []*Part) []*Part {
	seen := make(map[string]bool)
	var parts []*Part
	for _, s := range d.sections {
		for _, p := range of(s) {
			if seen[p.Name] {
				continue
			}
			seen[p.Name] = true
			parts = append(parts, p)
		}
	}
	return parts
}
