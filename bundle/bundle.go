// Package bundle packages cleaned documents for delivery: a single
// document as is, several as a ZIP archive with a statistics summary per
// document.
package bundle

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	"github.com/OmarSalvatierra99/cleandoc/clean"
)

// ArchiveName is the download name of a multi-document archive.
const ArchiveName = "cleandoc_limpios.zip"

const outputPrefix = "limpia_"

// File is one cleaned document ready for delivery.
type File struct {
	// Name is the sanitised name of the uploaded document.
	Name  string
	Data  []byte
	Stats *clean.Stats
}

// OutputName returns the delivery name of a cleaned document.
func OutputName(name string) string {
	return outputPrefix + name
}

// StatsName returns the name of the statistics entry for a document.
func StatsName(name string) string {
	return OutputName(name) + "_stats.txt"
}

const (
	heavyRule = "═══════════════════════════════════════════════════════════════"
	lightRule = "─────────────────────────────────────────────────────────────"
)

// FormatStats renders the statistics summary stored next to each document
// in an archive.
func FormatStats(name string, stats *clean.Stats) string {
	if stats == nil {
		stats = &clean.Stats{}
	}

	status := "Completado exitosamente"
	errLine := ""
	if stats.HasErrors() {
		status = "Completado con advertencias"
		errLine = fmt.Sprintf("Errores: %d", stats.ErrorCount())
	}
	signature := "No"
	if stats.SignatureSectionRemoved {
		signature = "Sí"
	}

	var b strings.Builder
	b.WriteString(heavyRule + "\n")
	b.WriteString("CleanDoc - Estadísticas de Limpieza\n")
	b.WriteString(heavyRule + "\n\n")
	fmt.Fprintf(&b, "Archivo: %s\n\n", name)
	b.WriteString("Elementos eliminados/limpiados:\n")
	b.WriteString(lightRule + "\n")
	fmt.Fprintf(&b, "  • Imágenes de encabezados eliminadas: %d\n", stats.ImagesRemoved)
	fmt.Fprintf(&b, "  • Párrafos institucionales limpiados: %d\n", stats.InstitutionalParagraphsCleaned)
	fmt.Fprintf(&b, "  • Textboxes limpiados: %d\n", stats.TextboxesCleaned)
	fmt.Fprintf(&b, "  • Sección de firmas eliminada: %s\n", signature)
	fmt.Fprintf(&b, "  • Total de párrafos eliminados: %d\n\n", stats.ParagraphsRemoved)
	fmt.Fprintf(&b, "Estado: %s\n", status)
	b.WriteString(errLine + "\n\n")
	b.WriteString(heavyRule + "\n")
	b.WriteString("© Órgano de Fiscalización Superior del Estado de Tlaxcala\n")
	b.WriteString("Sistema CleanDoc v2.0\n")
	b.WriteString(heavyRule)
	return b.String()
}

// WriteArchive writes every file and its statistics summary to w as a
// deflated ZIP archive.
func WriteArchive(w io.Writer, files []File) error {
	zw := zip.NewWriter(w)

	for _, f := range files {
		if err := writeEntry(zw, OutputName(f.Name), f.Data); err != nil {
			return err
		}
		if err := writeEntry(zw, StatsName(f.Name), []byte(FormatStats(f.Name, f.Stats))); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}
	return nil
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// Summary aggregates the statistics of a batch.
type Summary struct {
	Files              int
	ImagesRemoved      int
	ParagraphsCleaned  int
	TextboxesCleaned   int
	ParagraphsRemoved  int
	SignaturesRemoved  int
	DocumentsWithError int
}

// Totals sums the statistics of files.
func Totals(files []File) Summary {
	s := Summary{Files: len(files)}
	for _, f := range files {
		if f.Stats == nil {
			continue
		}
		s.ImagesRemoved += f.Stats.ImagesRemoved
		s.ParagraphsCleaned += f.Stats.InstitutionalParagraphsCleaned
		s.TextboxesCleaned += f.Stats.TextboxesCleaned
		s.ParagraphsRemoved += f.Stats.ParagraphsRemoved
		if f.Stats.SignatureSectionRemoved {
			s.SignaturesRemoved++
		}
		if f.Stats.HasErrors() {
			s.DocumentsWithError++
		}
	}
	return s
}

// Fields returns the summary as alternating keys and values for
// structured logging.
func (s Summary) Fields() []interface{} {
	return []interface{}{
		"files", s.Files,
		"images_removed", s.ImagesRemoved,
		"paragraphs_cleaned", s.ParagraphsCleaned,
		"textboxes_cleaned", s.TextboxesCleaned,
		"paragraphs_removed", s.ParagraphsRemoved,
		"signatures_removed", s.SignaturesRemoved,
		"documents_with_errors", s.DocumentsWithError,
	}
}
