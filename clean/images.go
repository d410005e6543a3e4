package clean

import "github.com/OmarSalvatierra99/cleandoc/docx"

// pruneHeaderImages removes decorative images from every header region.
// Images inside tables are kept, as are legacy pictures that wrap a text
// box since those carry text rather than decoration.
func (r *run) pruneHeaderImages() {
	for _, region := range r.doc.Headers() {
		if !region.Loaded() {
			continue
		}
		r.pruneRegion(region)
	}
}

func (r *run) pruneRegion(region *docx.Part) {
	for _, drawing := range region.Root.FindDescendants(docx.KindDrawing) {
		if drawing.HasAncestor(docx.KindTable) {
			r.logger.Debug("keeping image inside table", "region", region.Name)
			continue
		}
		if err := drawing.Detach(); err != nil {
			r.stats.recordError(r.logger, "removing header image from %s: %v", region.Name, err)
			continue
		}
		r.stats.ImagesRemoved++
		r.logger.Debug("removed drawing", "region", region.Name)
	}

	for _, pict := range region.Root.FindDescendants(docx.KindPicture) {
		if pict.HasAncestor(docx.KindTable) {
			r.logger.Debug("keeping picture inside table", "region", region.Name)
			continue
		}
		if pict.HasDescendant(docx.KindTextBox) {
			r.logger.Debug("keeping picture with text box", "region", region.Name)
			continue
		}
		if err := pict.Detach(); err != nil {
			r.stats.recordError(r.logger, "removing header picture from %s: %v", region.Name, err)
			continue
		}
		r.stats.ImagesRemoved++
		r.logger.Debug("removed picture", "region", region.Name)
	}
}
