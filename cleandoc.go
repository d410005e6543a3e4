// Package cleandoc provides a fluent API for removing institutional
// boilerplate from DOCX documents.
//
// Basic usage:
//
//	res, err := cleandoc.Open("cedula.docx").Clean(ctx)
//	if err != nil {
//	    // handle error
//	}
//	os.WriteFile("limpia_cedula.docx", res.Data, 0644)
//
// With options:
//
//	stats, err := cleandoc.Open("cedula.docx").
//	    Phrases("ACME CORP", "BRANCH OFFICE", "Signed").
//	    Logger(logger).
//	    WriteTo(ctx, "out.docx")
//
// For lower-level control, the clean and docx packages are also available.
package cleandoc

import (
	"bytes"
	"io"
)

// Open returns a Job for the DOCX file at filename. The file is read when
// a terminal operation such as Clean runs.
//
// Example:
//
//	res, err := cleandoc.Open("cedula.docx").Clean(ctx)
func Open(filename string) *Job {
	return &Job{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromBytes returns a Job for a document already in memory. name is used
// for logging and error messages only.
func FromBytes(name string, data []byte) *Job {
	return &Job{
		name:    name,
		data:    data,
		loaded:  true,
		options: defaultOptions(),
	}
}

// FromReader reads the whole of r and returns a Job for it. A read error
// is reported by the first terminal operation.
func FromReader(name string, r io.Reader) *Job {
	var buf bytes.Buffer
	_, err := buf.ReadFrom(r)
	j := FromBytes(name, buf.Bytes())
	j.err = err
	return j
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	res := cleandoc.Must(cleandoc.Open("cedula.docx").Clean(ctx))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
