package clean

// removeSignatureSection deletes every body paragraph from the first one
// carrying the sentinel marker to the end of the document. Paragraphs are
// detached from the last one backwards.
func (r *run) removeSignatureSection() {
	paras := r.doc.Paragraphs()

	start := -1
	for i, p := range paras {
		if r.patterns.IsSentinel(p.Text()) {
			start = i
			break
		}
	}
	if start < 0 {
		r.logger.Debug("no signature section found")
		return
	}

	for j := len(paras) - 1; j >= start; j-- {
		if err := paras[j].Detach(); err != nil {
			r.stats.recordError(r.logger, "removing signature paragraph %d: %v", j, err)
		}
	}

	removed := len(paras) - start
	r.stats.SignatureSectionRemoved = true
	r.stats.ParagraphsRemoved += removed
	r.logger.Info("removed signature section", "from", start, "paragraphs", removed)
}
