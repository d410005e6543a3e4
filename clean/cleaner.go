package clean

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/OmarSalvatierra99/cleandoc/docx"
	"github.com/charmbracelet/log"
)

// Result is a cleaned document and the statistics of its cleaning.
type Result struct {
	Filename string
	Data     []byte
	Stats    *Stats
}

// Cleaner runs the redaction passes over documents. It holds only
// configuration, so one Cleaner may clean many documents concurrently.
type Cleaner struct {
	patterns *Patterns
	logger   *log.Logger
}

// Option configures a Cleaner.
type Option func(*Cleaner)

// WithPatterns replaces the built-in marker set.
func WithPatterns(p *Patterns) Option {
	return func(c *Cleaner) {
		if p != nil {
			c.patterns = p
		}
	}
}

// WithLogger sets the logger used for progress and recoverable errors.
func WithLogger(logger *log.Logger) Option {
	return func(c *Cleaner) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns a Cleaner using the default patterns and logger unless
// overridden by opts.
func New(opts ...Option) *Cleaner {
	c := &Cleaner{
		patterns: DefaultPatterns(),
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultCleaner = New()

// Default returns the shared Cleaner with default settings.
func Default() *Cleaner {
	return defaultCleaner
}

// Patterns returns the marker set in use.
func (c *Cleaner) Patterns() *Patterns {
	return c.patterns
}

// run holds the state of a single Clean call.
type run struct {
	doc      *docx.Document
	patterns *Patterns
	logger   *log.Logger
	stats    *Stats
}

// Clean loads a DOCX package, redacts it and returns the new package.
// Failures to load or save the document are returned as a
// *ProcessingError and no output is produced; failures on single elements
// are recorded in the result's Stats.
func (c *Cleaner) Clean(ctx context.Context, data []byte, filename string) (*Result, error) {
	logger := c.logger.With("file", displayName(filename))
	logger.Info("cleaning document")

	doc, err := docx.OpenBytes(data)
	if err != nil {
		return nil, c.fail(logger, filename, fmt.Errorf("loading document: %w", err))
	}

	stats, err := c.apply(ctx, doc, logger)
	if err != nil {
		return nil, c.fail(logger, filename, err)
	}

	out, err := doc.Bytes()
	if err != nil {
		return nil, c.fail(logger, filename, fmt.Errorf("saving document: %w", err))
	}

	logger.Info("document cleaned", stats.Fields()...)
	return &Result{Filename: filename, Data: out, Stats: stats}, nil
}

// CleanReader reads a whole document from r and cleans it.
func (c *Cleaner) CleanReader(ctx context.Context, r io.Reader, filename string) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ProcessingError{Filename: filename, Err: fmt.Errorf("reading document: %w", err)}
	}
	return c.Clean(ctx, data, filename)
}

// CleanFile reads and cleans the document at path.
func (c *Cleaner) CleanFile(ctx context.Context, path string) (*Result, error) {
	name := filepath.Base(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ProcessingError{Filename: name, Err: fmt.Errorf("reading document: %w", err)}
	}
	return c.Clean(ctx, data, name)
}

// CleanDocument runs every pass over an already loaded document and
// returns the statistics. The document is modified in place.
func (c *Cleaner) CleanDocument(ctx context.Context, doc *docx.Document) (*Stats, error) {
	return c.apply(ctx, doc, c.logger)
}

func (c *Cleaner) apply(ctx context.Context, doc *docx.Document, logger *log.Logger) (*Stats, error) {
	r := &run{
		doc:      doc,
		patterns: c.patterns,
		logger:   logger,
		stats:    &Stats{},
	}

	for _, region := range append(doc.Headers(), doc.Footers()...) {
		if !region.Loaded() {
			r.stats.recordError(logger, "loading %s %s: %v", region.Kind, region.Name, region.Err)
		}
	}

	// The signature pass must run last: it matches on text left by the
	// earlier passes.
	passes := []struct {
		name string
		fn   func()
	}{
		{"header images", r.pruneHeaderImages},
		{"body paragraphs", r.redactParagraphs},
		{"text boxes", r.redactTextboxes},
		{"signature section", r.removeSignatureSection},
	}
	for _, pass := range passes {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("before %s: %w", pass.name, err)
		}
		logger.Debug("running pass", "pass", pass.name)
		pass.fn()
	}

	return r.stats, nil
}

func (c *Cleaner) fail(logger *log.Logger, filename string, err error) error {
	perr := &ProcessingError{Filename: filename, Err: err}
	logger.Error("document failed", "err", err)
	return perr
}

func displayName(filename string) string {
	if filename == "" {
		return "unnamed"
	}
	return filename
}
