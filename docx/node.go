package docx

import (
	"errors"
	"strings"
	"unicode"

	"github.com/beevik/etree"
)

// ErrDetached is returned when a node without a parent is detached.
var ErrDetached = errors.New("docx: node has no parent")

// Kind classifies a node by the content it carries. Matching is done on the
// element's local name only, so DrawingML a:p, a:t and a:tbl count as
// paragraphs, text and tables too; the redaction passes rely on that.
type Kind int

const (
	// KindOther is any element without a dedicated kind.
	KindOther Kind = iota
	// KindBody is the document body (w:body).
	KindBody
	// KindParagraph is a paragraph (w:p).
	KindParagraph
	// KindRun is a text run (w:r).
	KindRun
	// KindText is a raw text node (w:t).
	KindText
	// KindTable is a table (w:tbl).
	KindTable
	// KindDrawing is a DrawingML image carrier (w:drawing).
	KindDrawing
	// KindPicture is a legacy VML picture carrier (w:pict).
	KindPicture
	// KindTextBox is text box content (w:txbxContent).
	KindTextBox
	// KindHyperlink is a hyperlink wrapping runs (w:hyperlink).
	KindHyperlink
	// KindHeader is the root of a header part (w:hdr).
	KindHeader
	// KindFooter is the root of a footer part (w:ftr).
	KindFooter
)

var kindByTag = map[string]Kind{
	"body":        KindBody,
	"p":           KindParagraph,
	"r":           KindRun,
	"t":           KindText,
	"tbl":         KindTable,
	"drawing":     KindDrawing,
	"pict":        KindPicture,
	"txbxContent": KindTextBox,
	"hyperlink":   KindHyperlink,
	"hdr":         KindHeader,
	"ftr":         KindFooter,
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	for tag, kind := range kindByTag {
		if kind == k {
			return tag
		}
	}
	return "other"
}

// Node is a handle on one element of a part's XML tree.
// Handles are cheap; two handles on the same element compare equal with Same.
type Node struct {
	el *etree.Element
}

func newNode(el *etree.Element) *Node {
	if el == nil {
		return nil
	}
	return &Node{el: el}
}

// Kind returns the node's content kind.
func (n *Node) Kind() Kind {
	return kindByTag[n.el.Tag]
}

// Tag returns the qualified tag, e.g. "w:p".
func (n *Node) Tag() string {
	return n.el.FullTag()
}

// Is reports whether the node is of the given kind.
func (n *Node) Is(kind Kind) bool {
	return n.Kind() == kind
}

// Same reports whether both handles refer to the same element.
func (n *Node) Same(other *Node) bool {
	return n != nil && other != nil && n.el == other.el
}

// Children returns the node's child elements in document order.
func (n *Node) Children() []*Node {
	children := n.el.ChildElements()
	nodes := make([]*Node, 0, len(children))
	for _, c := range children {
		nodes = append(nodes, newNode(c))
	}
	return nodes
}

// Parent returns the parent element, or nil for a detached node or a root.
func (n *Node) Parent() *Node {
	return newNode(n.el.Parent())
}

// Attached reports whether the node still has a parent.
func (n *Node) Attached() bool {
	return n.el.Parent() != nil
}

// Detach removes the node, and everything under it, from its parent.
func (n *Node) Detach() error {
	parent := n.el.Parent()
	if parent == nil {
		return ErrDetached
	}
	if parent.RemoveChild(n.el) == nil {
		return ErrDetached
	}
	return nil
}

// FindDescendants returns every descendant of the given kind, at any depth,
// in document order. The node itself is not included.
func (n *Node) FindDescendants(kind Kind) []*Node {
	var found []*Node
	walk(n.el, func(el *etree.Element) {
		if kindByTag[el.Tag] == kind {
			found = append(found, newNode(el))
		}
	})
	return found
}

// FindNested returns every descendant of the given kind that lies inside a
// container of the given kind, in document order and without duplicates
// when containers nest.
func (n *Node) FindNested(container, kind Kind) []*Node {
	var found []*Node
	var visit func(el *etree.Element, inside bool)
	visit = func(el *etree.Element, inside bool) {
		for _, c := range el.ChildElements() {
			k := kindByTag[c.Tag]
			if inside && k == kind {
				found = append(found, newNode(c))
			}
			visit(c, inside || k == container)
		}
	}
	visit(n.el, false)
	return found
}

// HasDescendant reports whether any descendant is of the given kind.
func (n *Node) HasDescendant(kind Kind) bool {
	var stack []*etree.Element
	stack = append(stack, n.el.ChildElements()...)
	for len(stack) > 0 {
		el := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if kindByTag[el.Tag] == kind {
			return true
		}
		stack = append(stack, el.ChildElements()...)
	}
	return false
}

// HasAncestor reports whether any ancestor is of the given kind.
func (n *Node) HasAncestor(kind Kind) bool {
	for p := n.el.Parent(); p != nil; p = p.Parent() {
		if kindByTag[p.Tag] == kind {
			return true
		}
	}
	return false
}

// Text returns the character data directly held by the node. For text
// nodes this is the node's literal text.
func (n *Node) Text() string {
	return n.el.Text()
}

// SetText replaces the node's character data. Leading or trailing
// whitespace is marked with xml:space="preserve" so Word keeps it.
func (n *Node) SetText(text string) {
	n.el.SetText(text)
	if needsPreserve(text) {
		n.el.CreateAttr("xml:space", "preserve")
	}
}

// Attr returns the value of the attribute with the given qualified key.
func (n *Node) Attr(key string) string {
	return n.el.SelectAttrValue(key, "")
}

// attrNS returns the value of the attribute key in namespace ns, whatever
// prefix the document binds to ns.
func attrNS(el *etree.Element, ns, key string) string {
	for i := range el.Attr {
		a := &el.Attr[i]
		if a.Key == key && a.NamespaceURI() == ns {
			return a.Value
		}
	}
	return ""
}

func needsPreserve(text string) bool {
	if text == "" {
		return false
	}
	return strings.TrimFunc(text, unicode.IsSpace) != text
}

// walk visits every descendant of el in document order.
func walk(el *etree.Element, fn func(el *etree.Element)) {
	for _, c := range el.ChildElements() {
		fn(c)
		walk(c, fn)
	}
}
