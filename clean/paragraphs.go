package clean

// redactParagraphs strips institutional markers from body paragraphs. A
// paragraph left with text keeps it in its first run; a paragraph left
// empty is removed.
func (r *run) redactParagraphs() {
	for i, p := range r.doc.Paragraphs() {
		text := p.Text()
		if !r.patterns.Matches(text) {
			continue
		}

		cleaned := r.patterns.Redact(text)
		if cleaned == "" {
			if err := p.Detach(); err != nil {
				r.stats.recordError(r.logger, "removing paragraph %d: %v", i, err)
				continue
			}
			r.stats.ParagraphsRemoved++
			r.logger.Debug("removed paragraph", "index", i, "text", text)
			continue
		}

		runs := p.Runs()
		if len(runs) == 0 {
			continue
		}
		runs[0].SetText(cleaned)
		for _, extra := range runs[1:] {
			extra.SetText("")
		}
		r.stats.InstitutionalParagraphsCleaned++
		r.logger.Debug("cleaned paragraph", "index", i, "before", text, "after", cleaned)
	}
}
