package cleandoc

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/OmarSalvatierra99/cleandoc/clean"
	"github.com/OmarSalvatierra99/cleandoc/format"
	"github.com/charmbracelet/log"
)

// Job provides a fluent interface for cleaning one DOCX document.
// Each configuration method returns a new Job instance, making it safe
// for concurrent use and allowing method chaining.
type Job struct {
	// Source
	filename string
	name     string
	data     []byte
	loaded   bool

	// Configuration
	options CleanOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Job with a copy of options. The
// document bytes are never modified, so they are shared.
func (j *Job) clone() *Job {
	return &Job{
		filename: j.filename,
		name:     j.name,
		data:     j.data,
		loaded:   j.loaded,
		options:  j.options.clone(),
		err:      j.err,
	}
}

// Phrases replaces the marker phrases. Empty arguments keep the built-in
// phrase. Phrases are regular expressions matched case-insensitively,
// with any run of whitespace between words.
func (j *Job) Phrases(org, dir, sentinel string) *Job {
	n := j.clone()
	n.options.orgPhrase = org
	n.options.dirPhrase = dir
	n.options.sentinelPhrase = sentinel
	return n
}

// Patterns uses a precompiled pattern set. It takes precedence over
// Phrases.
func (j *Job) Patterns(p *clean.Patterns) *Job {
	n := j.clone()
	n.options.patterns = p
	return n
}

// Logger sets the logger used while cleaning.
func (j *Job) Logger(logger *log.Logger) *Job {
	n := j.clone()
	n.options.logger = logger
	return n
}

// Name returns the name used in logs and errors.
func (j *Job) Name() string {
	if j.name != "" {
		return j.name
	}
	return filepath.Base(j.filename)
}

// ensureData reads the source file if not already loaded and checks that
// it is a DOCX package.
func (j *Job) ensureData() ([]byte, error) {
	if j.err != nil {
		return nil, j.err
	}
	data := j.data
	if !j.loaded {
		if j.filename == "" {
			return nil, fmt.Errorf("no filename specified")
		}
		b, err := os.ReadFile(j.filename)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", j.filename, err)
		}
		data = b
	}

	f, err := format.DetectFromReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("detecting format of %s: %w", j.Name(), err)
	}
	if f != format.DOCX {
		return nil, fmt.Errorf("%s is not a DOCX document (detected %s)", j.Name(), f)
	}
	return data, nil
}

// Clean runs every cleaning pass and returns the new document with its
// statistics. The source is never modified.
func (j *Job) Clean(ctx context.Context) (*clean.Result, error) {
	data, err := j.ensureData()
	if err != nil {
		return nil, err
	}
	c, err := j.options.cleaner()
	if err != nil {
		return nil, err
	}
	return c.Clean(ctx, data, j.Name())
}

// Stats cleans the document and returns only the statistics.
func (j *Job) Stats(ctx context.Context) (*clean.Stats, error) {
	res, err := j.Clean(ctx)
	if err != nil {
		return nil, err
	}
	return res.Stats, nil
}

// Bytes cleans the document and returns the new package.
func (j *Job) Bytes(ctx context.Context) ([]byte, error) {
	res, err := j.Clean(ctx)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// WriteTo cleans the document and writes the result to path.
func (j *Job) WriteTo(ctx context.Context, path string) (*clean.Stats, error) {
	res, err := j.Clean(ctx)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, res.Data, 0644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}
	return res.Stats, nil
}
