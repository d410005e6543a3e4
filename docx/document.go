package docx

import (
	"encoding/xml"
	"path"
	"strings"
)

// XML namespaces used in DOCX files
const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsRel = "http://schemas.openxmlformats.org/package/2006/relationships"
)

// Relationship types for header and footer parts.
const (
	relTypeHeader = nsR + "/header"
	relTypeFooter = nsR + "/footer"
)

// Well-known part names.
const (
	contentTypesPart = "[Content_Types].xml"
	mainDocumentPart = "word/document.xml"
	documentRelsPart = "word/_rels/document.xml.rels"
)

// relationshipsXML represents _rels/*.rels files
type relationshipsXML struct {
	XMLName       xml.Name          `xml:"Relationships"`
	Relationships []relationshipXML `xml:"Relationship"`
}

// relationshipXML represents a single relationship.
type relationshipXML struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"` // External or empty (internal)
}

// target resolves the relationship id to a part name inside the package.
// Targets of document.xml.rels are relative to word/ unless absolute.
func (rels *relationshipsXML) target(id string) (string, bool) {
	if rels == nil || id == "" {
		return "", false
	}
	for _, rel := range rels.Relationships {
		if rel.ID != id || strings.EqualFold(rel.TargetMode, "External") {
			continue
		}
		if strings.HasPrefix(rel.Target, "/") {
			return strings.TrimPrefix(rel.Target, "/"), true
		}
		return path.Join("word", rel.Target), true
	}
	return "", false
}

// PartKind identifies the role of an XML part within the package.
type PartKind int

const (
	// MainPart is word/document.xml.
	MainPart PartKind = iota
	// HeaderPart is a word/header*.xml part.
	HeaderPart
	// FooterPart is a word/footer*.xml part.
	FooterPart
)

// String returns the string representation of the part kind.
func (k PartKind) String() string {
	switch k {
	case MainPart:
		return "document"
	case HeaderPart:
		return "header"
	case FooterPart:
		return "footer"
	default:
		return "unknown"
	}
}

// Part is an XML part of the package loaded as a mutable tree.
// Root is nil when the part could not be parsed; Err then holds the reason
// and the original bytes are written back unchanged on Save.
type Part struct {
	Name string
	Kind PartKind
	Root *Node
	Err  error
}

// Loaded reports whether the part was parsed successfully.
func (p *Part) Loaded() bool {
	return p != nil && p.Err == nil && p.Root != nil
}

// Section is one document section, delimited by a w:sectPr element.
type Section struct {
	Index   int
	Headers []*Part
	Footers []*Part
}

// Header returns the section's first header region, or nil.
func (s *Section) Header() *Part {
	if len(s.Headers) == 0 {
		return nil
	}
	return s.Headers[0]
}

// Footer returns the section's first footer region, or nil.
func (s *Section) Footer() *Part {
	if len(s.Footers) == 0 {
		return nil
	}
	return s.Footers[0]
}
