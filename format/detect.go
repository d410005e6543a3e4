// Package format provides container format detection for uploaded documents.
package format

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

// Format represents a recognised container format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// ZIP indicates a ZIP archive whose contents were not identified.
	ZIP
	// DOCX indicates a Microsoft Word (.docx) document.
	DOCX
	// XLSX indicates a Microsoft Excel (.xlsx) document.
	XLSX
	// PPTX indicates a Microsoft PowerPoint (.pptx) document.
	PPTX
	// ODT indicates an OpenDocument Text (.odt) document.
	ODT
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case ZIP:
		return "ZIP"
	case DOCX:
		return "DOCX"
	case XLSX:
		return "XLSX"
	case PPTX:
		return "PPTX"
	case ODT:
		return "ODT"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case ZIP:
		return ".zip"
	case DOCX:
		return ".docx"
	case XLSX:
		return ".xlsx"
	case PPTX:
		return ".pptx"
	case ODT:
		return ".odt"
	default:
		return ""
	}
}

// MimeType returns the media type used when serving the format.
func (f Format) MimeType() string {
	switch f {
	case ZIP:
		return "application/zip"
	case DOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case PPTX:
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case ODT:
		return "application/vnd.oasis.opendocument.text"
	default:
		return "application/octet-stream"
	}
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".zip":
		return ZIP
	case ".docx":
		return DOCX
	case ".xlsx":
		return XLSX
	case ".pptx":
		return PPTX
	case ".odt":
		return ODT
	default:
		return Unknown
	}
}

// zipSignatures are the record signatures a ZIP archive may start with:
// local file header, end of central directory (empty archive) and a
// spanned-archive data descriptor.
var zipSignatures = [][]byte{
	{'P', 'K', 0x03, 0x04},
	{'P', 'K', 0x05, 0x06},
	{'P', 'K', 0x07, 0x08},
}

// IsZIP reports whether data starts with a ZIP signature.
func IsZIP(data []byte) bool {
	for _, sig := range zipSignatures {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

// DetectFromMagic checks file magic bytes to determine format.
// Every OOXML and OpenDocument file is a ZIP archive, so magic bytes alone
// can only tell ZIP from Unknown; use DetectFromReader to look inside.
func DetectFromMagic(data []byte) Format {
	if len(data) < 4 {
		return Unknown
	}
	if IsZIP(data) {
		return ZIP
	}
	return Unknown
}

// DetectFromReader inspects the content to determine format.
// This is more reliable than extension-based detection and can
// distinguish between different ZIP-based formats (DOCX, XLSX, PPTX, ODT).
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, 4)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	if DetectFromMagic(magic[:n]) != ZIP {
		return Unknown, nil
	}
	return detectZIPFormat(r, size)
}

// detectZIPFormat inspects a ZIP archive to determine if it's DOCX, XLSX, PPTX, ODT, etc.
func detectZIPFormat(r io.ReaderAt, size int64) (Format, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, err
	}

	// Check for OpenDocument Format first (has mimetype file at the start)
	for _, f := range zr.File {
		if f.Name == "mimetype" {
			rc, err := f.Open()
			if err == nil {
				data := make([]byte, 256)
				n, _ := rc.Read(data)
				rc.Close()
				if strings.Contains(string(data[:n]), "application/vnd.oasis.opendocument.text") {
					return ODT, nil
				}
			}
		}
	}

	// Check for Office Open XML markers
	for _, f := range zr.File {
		switch {
		case f.Name == "[Content_Types].xml":
			continue
		case strings.HasPrefix(f.Name, "word/"):
			return DOCX, nil
		case strings.HasPrefix(f.Name, "xl/"):
			return XLSX, nil
		case strings.HasPrefix(f.Name, "ppt/"):
			return PPTX, nil
		}
	}

	return ZIP, nil
}
