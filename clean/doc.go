// Package clean removes institutional boilerplate from DOCX documents.
//
// A Cleaner runs four passes over a loaded document, always in this order:
//
//  1. Header images: every DrawingML or VML image in a header region is
//     removed, except images inside tables and VML pictures that wrap a
//     text box.
//  2. Body paragraphs: the institution and directorate names are removed
//     from top-level body paragraphs. The remaining text is written to the
//     paragraph's first run and the other runs are emptied; a paragraph
//     left without text is removed.
//  3. Text boxes: the same markers are removed from every text box
//     paragraph in the body, headers and footers.
//  4. Signature section: the first body paragraph containing the "Elaboró"
//     marker, and every paragraph after it, is removed.
//
// Everything except the body's unmarked paragraphs may change; unmarked
// paragraphs before the signature section are never touched.
//
// Basic usage:
//
//	res, err := clean.Default().Clean(ctx, data, "report.docx")
//	if err != nil {
//	    // the document could not be loaded or saved
//	}
//	os.WriteFile("clean.docx", res.Data, 0644)
//	fmt.Println(res.Stats.ImagesRemoved, res.Stats.ParagraphsRemoved)
//
// Failures that affect a single element (a header part that does not
// parse, an element that cannot be detached) are recorded in Stats.Errors
// and the remaining elements are still processed.
package clean
