package clean

import (
	"strings"

	"github.com/OmarSalvatierra99/cleandoc/docx"
)

// redactTextboxes strips institutional markers from text box paragraphs in
// the body and in every header and footer region.
func (r *run) redactTextboxes() {
	r.redactTextboxesIn(r.doc.Main())
	for _, region := range r.doc.Headers() {
		r.redactTextboxesIn(region)
	}
	for _, region := range r.doc.Footers() {
		r.redactTextboxesIn(region)
	}
}

func (r *run) redactTextboxesIn(part *docx.Part) {
	if !part.Loaded() {
		return
	}

	for _, node := range part.Root.FindNested(docx.KindTextBox, docx.KindParagraph) {
		p, _ := docx.AsParagraph(node)
		texts := p.TextNodes()
		if len(texts) == 0 {
			continue
		}

		var parts []string
		for _, t := range texts {
			if s := t.Text(); s != "" {
				parts = append(parts, normalizeWhitespace(s))
			}
		}
		original := strings.Join(parts, " ")

		candidate := r.patterns.Redact(original)
		if candidate == original {
			continue
		}

		texts[0].SetText(candidate)
		for _, t := range texts[1:] {
			t.SetText("")
		}
		r.stats.TextboxesCleaned++
		r.logger.Debug("cleaned text box", "part", part.Name, "before", original, "after", candidate)

		if candidate == "" && p.Attached() {
			if err := p.Detach(); err != nil {
				r.stats.recordError(r.logger, "removing text box paragraph in %s: %v", part.Name, err)
			}
		}
	}
}
