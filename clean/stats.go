package clean

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// Stats records what one Clean call changed. A fresh Stats is created for
// every document.
type Stats struct {
	ImagesRemoved                  int      `json:"images_removed"`
	InstitutionalParagraphsCleaned int      `json:"institutional_paragraphs_cleaned"`
	TextboxesCleaned               int      `json:"textboxes_cleaned"`
	SignatureSectionRemoved        bool     `json:"signature_section_removed"`
	ParagraphsRemoved              int      `json:"paragraphs_removed"`
	Errors                         []string `json:"errors,omitempty"`
}

// HasErrors reports whether any recoverable error was recorded.
func (s *Stats) HasErrors() bool {
	return len(s.Errors) > 0
}

// ErrorCount returns the number of recoverable errors recorded.
func (s *Stats) ErrorCount() int {
	return len(s.Errors)
}

// Changed reports whether the document was modified in any way.
func (s *Stats) Changed() bool {
	return s.ImagesRemoved > 0 ||
		s.InstitutionalParagraphsCleaned > 0 ||
		s.TextboxesCleaned > 0 ||
		s.SignatureSectionRemoved ||
		s.ParagraphsRemoved > 0
}

// Fields returns the counters as alternating keys and values for
// structured logging.
func (s *Stats) Fields() []interface{} {
	return []interface{}{
		"images_removed", s.ImagesRemoved,
		"institutional_paragraphs_cleaned", s.InstitutionalParagraphsCleaned,
		"textboxes_cleaned", s.TextboxesCleaned,
		"signature_section_removed", s.SignatureSectionRemoved,
		"paragraphs_removed", s.ParagraphsRemoved,
		"has_errors", s.HasErrors(),
		"error_count", s.ErrorCount(),
	}
}

// recordError appends a recoverable error and logs it.
func (s *Stats) recordError(logger *log.Logger, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error(msg)
	s.Errors = append(s.Errors, msg)
}
