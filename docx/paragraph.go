package docx

import (
	"strings"

	"github.com/beevik/etree"
)

// runContainers are paragraph children whose w:r children count as the
// paragraph's own runs.
var runContainers = map[string]bool{
	"hyperlink": true,
	"ins":       true,
	"smartTag":  true,
}

// Paragraph is a typed view of a w:p node.
type Paragraph struct {
	*Node
}

// AsParagraph returns a paragraph view of n, or false when n is not a paragraph.
func AsParagraph(n *Node) (*Paragraph, bool) {
	if n == nil || !n.Is(KindParagraph) {
		return nil, false
	}
	return &Paragraph{Node: n}, true
}

// Runs returns the paragraph's runs in order: direct w:r children and
// runs wrapped in hyperlinks, insertions and smart tags.
func (p *Paragraph) Runs() []*Run {
	var runs []*Run
	for _, c := range p.el.ChildElements() {
		switch {
		case c.Tag == "r":
			runs = append(runs, &Run{Node: newNode(c)})
		case runContainers[c.Tag]:
			for _, gc := range c.ChildElements() {
				if gc.Tag == "r" {
					runs = append(runs, &Run{Node: newNode(gc)})
				}
			}
		}
	}
	return runs
}

// Text returns the concatenated text of all runs.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs() {
		sb.WriteString(r.Text())
	}
	return sb.String()
}

// TextNodes returns every raw text node under the paragraph, at any depth.
func (p *Paragraph) TextNodes() []*Node {
	return p.FindDescendants(KindText)
}

// Run is a typed view of a w:r node. Its formatting (w:rPr) and any
// non-text content such as drawings or field characters is opaque and
// left untouched by SetText.
type Run struct {
	*Node
}

// Text returns the run's text. Tabs and line breaks are rendered as "\t"
// and "\n".
func (r *Run) Text() string {
	var sb strings.Builder
	for _, c := range r.el.ChildElements() {
		switch c.Tag {
		case "t":
			sb.WriteString(c.Text())
		case "tab", "ptab":
			sb.WriteString("\t")
		case "br":
			if t := attrNS(c, nsW, "type"); t == "" || t == "textWrapping" {
				sb.WriteString("\n")
			}
		case "cr":
			sb.WriteString("\n")
		case "noBreakHyphen":
			sb.WriteString("-")
		}
	}
	return sb.String()
}

// isRunText reports whether a run child contributes to the run's text.
func isRunText(el *etree.Element) bool {
	switch el.Tag {
	case "t", "tab", "ptab", "br", "cr", "noBreakHyphen":
		return true
	}
	return false
}

// SetText replaces the run's text content with text. The new content is
// written where the old text began; tabs and newlines become w:tab and w:br
// elements. An empty string leaves the run without text.
func (r *Run) SetText(text string) {
	at := -1
	for _, c := range r.el.ChildElements() {
		if !isRunText(c) {
			continue
		}
		if at < 0 {
			at = c.Index()
		}
		r.el.RemoveChild(c)
	}
	if at < 0 {
		at = len(r.el.Child)
	}

	for _, el := range r.textElements(text) {
		r.el.InsertChildAt(at, el)
		at++
	}
}

// textElements spells text as a sequence of w:t, w:tab and w:br elements.
func (r *Run) textElements(text string) []*etree.Element {
	var els []*etree.Element
	var chunk strings.Builder
	flush := func() {
		if chunk.Len() == 0 {
			return
		}
		t := etree.NewElement(r.qualify("t"))
		(&Node{el: t}).SetText(chunk.String())
		els = append(els, t)
		chunk.Reset()
	}

	for _, ch := range text {
		switch ch {
		case '\t':
			flush()
			els = append(els, etree.NewElement(r.qualify("tab")))
		case '\n':
			flush()
			els = append(els, etree.NewElement(r.qualify("br")))
		default:
			chunk.WriteRune(ch)
		}
	}
	flush()
	return els
}

// qualify prefixes tag with the run's own namespace prefix.
func (r *Run) qualify(tag string) string {
	if r.el.Space == "" {
		return tag
	}
	return r.el.Space + ":" + tag
}
